package config

import (
	"log/slog"
	"time"
)

const (
	LOG_LEVEL_PROD              = slog.LevelInfo
	TRACE_ID_KEY                = "traceId"
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 4
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second
	// MCP tool calls answer in the same response, so the write budget covers a full generation.
	MCPWriteTimeout = GenerationTimeout + 30*time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//job execution budgets
	GenerationTimeout  = 60 * time.Second
	LoadTimeout        = 2 * time.Minute
	PageExtractTimeout = 10 * time.Second

	//uploads
	MaxUploadSize      = 32 << 20 //32mb
	TemporaryDataDir   = "temporary_data"
	DefaultMaxDocChars = 2_000_000

	DefaultDocumentsRoot = "documents"

	//llm
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	GeminiModelName = "gemini-3-flash-preview"
	OpenAIModelName = "gpt-4o-mini"

	// sampling is fixed - faithfulness over creativity
	ModelTemperature float32 = 0.1
	ModelTopP        float32 = 0.8
	ModelTopK        int32   = 40

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
	LLMRequestTimeout   = 90 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore     = 0
	RedisMessageStore = 1

	//redis timeouts
	RedisJobStoreTTL = 24 * time.Hour
	//conversation never outlives the session
	RedisMessageStoreTTL = 12 * time.Hour
	RedisPingTimeout     = 3 * time.Second

	//mcp
	MCPServerName    = "doubt-solver"
	MCPServerVersion = "1.0.0"
)
