package openaiLLM

import (
	"context"
	"fmt"
	"net/http"

	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
	"github.com/akolanti/DoubtSolver/internal/llm"
	"github.com/akolanti/DoubtSolver/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Options struct {
	APIKey     string
	ModelName  string
	BaseURL    string
	HTTPClient *http.Client
}

type llmClient struct {
	client    openai.Client
	modelName string
	logger    *logger_i.Logger
}

// NewOpenAIClient talks to any OpenAI-compatible chat completions endpoint.
// Top-k has no equivalent there and is dropped.
func NewOpenAIClient(opts Options) (llm.Provider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", llm.ErrMissingCredential)
	}
	if opts.ModelName == "" {
		opts.ModelName = config.OpenAIModelName
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		requestOpts = append(requestOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	logger := logger_i.NewLogger("llm_openai").With("model", opts.ModelName)
	logger.Info("OpenAI client created")
	return &llmClient{
		client:    openai.NewClient(requestOpts...),
		modelName: opts.ModelName,
		logger:    logger,
	}, nil
}

func (c *llmClient) Generate(ctx context.Context, req chatModel.GenerationRequest) (string, error) {
	log := c.logger.WithTrace(ctx, config.TRACE_ID_KEY)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Turns)+1)
	messages = append(messages, openai.SystemMessage(req.InstructionBlock))
	for _, turn := range req.Turns {
		if turn.Role == chatModel.TurnModel {
			messages = append(messages, openai.AssistantMessage(turn.Text))
		} else {
			messages = append(messages, openai.UserMessage(turn.Text))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.modelName),
		Messages:    messages,
		Temperature: openai.Float(float64(req.Sampling.Temperature)),
		TopP:        openai.Float(float64(req.Sampling.TopP)),
	})
	if err != nil {
		log.Error("OpenAI completion failed", "error", err)
		return "", fmt.Errorf("%w: %w", llm.ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		log.Warn("OpenAI returned no choices")
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
