package job

import (
	"context"

	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
	"github.com/akolanti/DoubtSolver/internal/domain/jobModel"
	"github.com/akolanti/DoubtSolver/internal/session"
)

// Processor finishes the work a handler accepted. *session.Session satisfies it.
type Processor interface {
	ResolveReply(ctx context.Context) (session.Reply, error)
	RunLoad(ctx context.Context) (chatModel.Document, error)
}

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
	}
}
