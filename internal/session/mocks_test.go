package session_test

import (
	"context"
	"sync/atomic"

	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
	"github.com/akolanti/DoubtSolver/internal/domain/commonModels"
	"github.com/akolanti/DoubtSolver/internal/loader"
)

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, req chatModel.GenerationRequest) (string, error)
	calls      atomic.Int32
}

func (m *MockLLM) Generate(ctx context.Context, req chatModel.GenerationRequest) (string, error) {
	m.calls.Add(1)
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, req)
	}
	return "mocked llm response", nil
}

func (m *MockLLM) Calls() int {
	return int(m.calls.Load())
}

// MockLoader implements session.DocumentLoader
type MockLoader struct {
	OnLoad func(ctx context.Context, src loader.Source) (loader.Extraction, error)
}

func (m *MockLoader) Load(ctx context.Context, src loader.Source) (loader.Extraction, error) {
	if m.OnLoad != nil {
		return m.OnLoad(ctx, src)
	}
	return loader.Extraction{Text: "default document text", PageCount: 1, ContentType: commonModels.TXT}, nil
}

// GatedStore wraps a MessageStore. While Gate is set, Append waits for it to be closed
// and Entered is signalled first. FailAppend makes Append fail instead.
type GatedStore struct {
	chatModel.MessageStore
	Gate       chan struct{}
	Entered    chan struct{}
	FailAppend error
}

func (g *GatedStore) Append(ctx context.Context, sessionId string, msg chatModel.Message) error {
	if g.FailAppend != nil {
		return g.FailAppend
	}
	if gate := g.Gate; gate != nil {
		g.Entered <- struct{}{}
		<-gate
	}
	return g.MessageStore.Append(ctx, sessionId, msg)
}
