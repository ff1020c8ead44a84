package gemini

import (
	"context"
	"fmt"
	"net/http"

	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
	"github.com/akolanti/DoubtSolver/internal/llm"
	"github.com/akolanti/DoubtSolver/pkg/logger_i"
	"google.golang.org/genai"
)

type Options struct {
	APIKey    string
	ModelName string
	// BaseURL overrides the Gemini endpoint, used by tests.
	BaseURL    string
	HTTPClient *http.Client
}

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewGeminiClient(ctx context.Context, opts Options) (llm.Provider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", llm.ErrMissingCredential)
	}
	if opts.ModelName == "" {
		opts.ModelName = config.GeminiModelName
	}

	cc := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	logger := logger_i.NewLogger("llm_gemini").With("model", opts.ModelName)
	logger.Info("Gemini client created")
	return &llmClient{client: c, modelName: opts.ModelName, logger: logger}, nil
}

func (c *llmClient) Generate(ctx context.Context, req chatModel.GenerationRequest) (string, error) {
	log := c.logger.WithTrace(ctx, config.TRACE_ID_KEY)

	contents := make([]*genai.Content, 0, len(req.Turns))
	for _, turn := range req.Turns {
		contents = append(contents, genai.NewContentFromText(turn.Text, toGenaiRole(turn.Role)))
	}

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.InstructionBlock, genai.RoleUser),
		Temperature:       genai.Ptr(req.Sampling.Temperature),
		TopP:              genai.Ptr(req.Sampling.TopP),
		TopK:              genai.Ptr(float32(req.Sampling.TopK)),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, contentConfig)
	if err != nil {
		log.Error("Gemini generate failed", "error", err)
		return "", fmt.Errorf("%w: %w", llm.ErrGenerationFailed, err)
	}

	text := result.Text()
	log.Debug("Gemini reply received", "turns", len(contents), "chars", len(text))
	return text, nil
}

func toGenaiRole(r chatModel.TurnRole) genai.Role {
	if r == chatModel.TurnModel {
		return genai.RoleModel
	}
	return genai.RoleUser
}
