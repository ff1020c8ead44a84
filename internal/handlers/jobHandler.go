package handlers

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/domain/jobModel"
	"github.com/akolanti/DoubtSolver/internal/job"
	"github.com/akolanti/DoubtSolver/internal/metrics"
	"github.com/akolanti/DoubtSolver/internal/session"
	"github.com/akolanti/DoubtSolver/pkg/logger_i"
)

var (
	handlerInstance *JobHandler
	logJH           = logger_i.NewLogger("JobHandler")
)

type JobHandler struct {
	service *job.Service
	session *session.Session
}

func InitJobHandler(jobService *job.Service, sess *session.Session) {
	handlerInstance = &JobHandler{service: jobService, session: sess}
	logJH.Info("Starting job handler", "session", sess.Id())
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// pushToJobChannel records the job as queued and hands it to the worker pool.
func (h *JobHandler) pushToJobChannel(ctx context.Context, newJob newJobData) jobModel.Job {
	log := logJH.With("traceId", newJob.traceId, "jobId", newJob.id)

	_job := jobModel.Job{
		Id:          newJob.id,
		SessionId:   h.session.Id(),
		TraceId:     newJob.traceId,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
	}
	if newJob.isDocumentLoad {
		_job.JobType = jobModel.JobTypeLoad
		_job.CurrentStep = jobModel.LoadInit
		_job.JobPayload.DocumentName = newJob.documentName
		_job.JobPayload.SourcePath = newJob.documentSource
	} else {
		_job.JobType = jobModel.JobTypeQuery
		_job.CurrentStep = jobModel.QueryInit
		_job.JobPayload.Question = newJob.message
	}

	if err := h.service.JobStore.SaveJob(ctx, _job); err != nil {
		log.Error("Could not save queued job", "error", err)
	}

	metrics.IncrementJobsInQueue()
	h.service.JobChannel <- _job // blocking send keeps the system from being overwhelmed
	log.Info("Created new job", "type", _job.JobType)

	// a load ties up a worker for a while, so it always asks for another one
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobModel.JobTypeLoad {
		metrics.StartDispatcherSignalCount()
		select {
		case h.service.DispatcherChannel <- true:
		default:
			log.Debug("Dispatcher signal already pending")
		}
	}
	return _job
}
