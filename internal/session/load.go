package session

import (
	"context"
	"path/filepath"
	"time"

	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
	"github.com/akolanti/DoubtSolver/internal/loader"
	"github.com/akolanti/DoubtSolver/internal/metrics"
)

// BeginLoad marks src as the document being loaded. The active document stays usable
// until RunLoad succeeds.
func (s *Session) BeginLoad(src loader.Source) error {
	if src.Name == "" {
		src.Name = filepath.Base(src.Path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isLoading {
		return ErrLoadInProgress
	}
	s.isLoading = true
	s.pendingLoad = &src
	s.lastError = ""
	return nil
}

// RunLoad extracts the pending source. On success the document is replaced wholesale and
// the conversation cleared. On failure the previous document stays active and the error
// is kept as LastError.
func (s *Session) RunLoad(ctx context.Context) (chatModel.Document, error) {
	s.mu.Lock()
	if s.pendingLoad == nil {
		s.mu.Unlock()
		return chatModel.Document{}, ErrNothingPending
	}
	src := *s.pendingLoad
	s.mu.Unlock()

	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("document", src.Name)

	start := time.Now()
	ext, err := s.loader.Load(ctx, src)
	metrics.CaptureExecutionMetrics("document_load", time.Since(start))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false
	s.pendingLoad = nil

	if err != nil {
		s.lastError = err.Error()
		metrics.CountDocumentLoad("failure")
		log.Warn("Document load failed, keeping previous document", "error", err, "previous", s.document.Name)
		return chatModel.Document{}, err
	}

	s.document = chatModel.Document{
		Name:        src.Name,
		Text:        ext.Text,
		PageCount:   ext.PageCount,
		ContentType: ext.ContentType,
		LoadedAt:    s.now(),
	}
	metrics.CountDocumentLoad("success")
	log.Info("Document loaded", "pages", ext.PageCount, "bytes", len(ext.Text))

	if err = s.conversation.Clear(context.WithoutCancel(ctx)); err != nil {
		log.Error("Could not clear conversation after load", "error", err)
	}
	return s.document, nil
}

func (s *Session) LoadDocument(ctx context.Context, src loader.Source) (chatModel.Document, error) {
	if err := s.BeginLoad(src); err != nil {
		return chatModel.Document{}, err
	}
	return s.RunLoad(ctx)
}
