package llm

import (
	"context"
	"errors"

	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
)

// ErrGenerationFailed wraps every failure of the remote call. Callers do not retry.
var ErrGenerationFailed = errors.New("generation failed")

var ErrMissingCredential = config.ErrMissingCredential

// Provider performs one atomic completion call. An empty string with a nil error is a
// valid (empty) reply.
type Provider interface {
	Generate(ctx context.Context, req chatModel.GenerationRequest) (string, error)
}

type unavailable struct {
	cause error
}

// Unavailable returns a Provider that fails every call at once, without any network I/O.
// Used when the credential check at startup fails.
func Unavailable(cause error) Provider {
	if cause == nil {
		cause = ErrMissingCredential
	}
	return &unavailable{cause: cause}
}

func (u *unavailable) Generate(context.Context, chatModel.GenerationRequest) (string, error) {
	return "", u.cause
}
