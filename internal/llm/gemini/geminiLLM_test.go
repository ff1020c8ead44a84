package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
	"github.com/akolanti/DoubtSolver/internal/llm"
	"github.com/akolanti/DoubtSolver/internal/llm/gemini"
)

type part struct {
	Text string `json:"text"`
}

type geminiRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []part `json:"parts"`
	} `json:"contents"`
	SystemInstruction struct {
		Parts []part `json:"parts"`
	} `json:"systemInstruction"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
		TopP        float64 `json:"topP"`
		TopK        float64 `json:"topK"`
	} `json:"generationConfig"`
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) llm.Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := gemini.NewGeminiClient(context.Background(), gemini.Options{
		APIKey:     "test-key",
		ModelName:  "gemini-test",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	return p
}

var request = chatModel.GenerationRequest{
	InstructionBlock: "INSTRUCTIONS\nCONTEXT:\n---\nNewton's First Law: ...\n---\n",
	Turns: []chatModel.Turn{
		{Role: chatModel.TurnUser, Text: "What is X?"},
		{Role: chatModel.TurnModel, Text: "X is Y"},
		{Role: chatModel.TurnUser, Text: "What is Newton's First Law?"},
	},
	Sampling: chatModel.SamplingParams{Temperature: 0.1, TopP: 0.8, TopK: 40},
}

func TestGenerate_SendsRequestAndReturnsText(t *testing.T) {
	var got geminiRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "gemini-test:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"### Law\n- An object stays at rest **unless** acted upon."}]},"finishReason":"STOP"}]}`))
	})

	text, err := p.Generate(context.Background(), request)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "### Law\n- An object stays at rest **unless** acted upon." {
		t.Errorf("text got %q", text)
	}

	if len(got.Contents) != 3 {
		t.Fatalf("contents got %d, want 3", len(got.Contents))
	}
	wantRoles := []string{"user", "model", "user"}
	for i, c := range got.Contents {
		if c.Role != wantRoles[i] || c.Parts[0].Text != request.Turns[i].Text {
			t.Errorf("content %d got %+v", i, c)
		}
	}
	if len(got.SystemInstruction.Parts) == 0 || got.SystemInstruction.Parts[0].Text != request.InstructionBlock {
		t.Errorf("system instruction got %+v", got.SystemInstruction)
	}
	gc := got.GenerationConfig
	if math.Abs(gc.Temperature-0.1) > 1e-6 || math.Abs(gc.TopP-0.8) > 1e-6 || gc.TopK != 40 {
		t.Errorf("sampling got %+v", gc)
	}
}

func TestGenerate_EmptyCandidatesIsEmptyReply(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	text, err := p.Generate(context.Background(), request)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty reply, got %q", text)
	}
}

func TestGenerate_RemoteErrorIsGenerationFailure(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := p.Generate(context.Background(), request)
	if !errors.Is(err, llm.ErrGenerationFailed) {
		t.Fatalf("err got %v, want ErrGenerationFailed", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestNewGeminiClient_MissingKey(t *testing.T) {
	_, err := gemini.NewGeminiClient(context.Background(), gemini.Options{})
	if !errors.Is(err, llm.ErrMissingCredential) {
		t.Errorf("err got %v, want ErrMissingCredential", err)
	}
}
