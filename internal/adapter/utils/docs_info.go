package utils

//run redis
//docker run -p 6379:6379 -d redis

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs

//environment
//GEMINI_API_KEY=... (or LLM_PROVIDER=openai OPENAI_API_KEY=...)
//AUTH_TOKEN=... or NO_AUTH_BYPASS=true for local runs
