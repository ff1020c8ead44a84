package worker

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/akolanti/DoubtSolver/internal/config"
	jobmodel "github.com/akolanti/DoubtSolver/internal/domain/jobModel"
	"github.com/akolanti/DoubtSolver/internal/loader"
	"github.com/akolanti/DoubtSolver/internal/metrics"
	"github.com/akolanti/DoubtSolver/internal/session"
	"github.com/akolanti/DoubtSolver/pkg/logger_i"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.JobType), time.Since(start))
	}()

	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, jobTimeout(job.JobType))
	defer cancel()
	log := logger.With("traceId", job.TraceId, "jobId", job.Id)
	log.Debug("Processing job", "type", job.JobType)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	switch job.JobType {
	case jobmodel.JobTypeLoad:
		job.CurrentStep = jobmodel.LoadProcessing
		job = loadDocument(ctx, job, log)
	default:
		job.CurrentStep = jobmodel.LLMCall
		job = resolveQuery(ctx, job, log)
	}

	job.EndTime = time.Now()
	if job.Status == jobmodel.JobStatusError {
		saveJobState(ctx, job, jobmodel.JobStatusError)
		return
	}
	job.CurrentStep = jobmodel.Complete
	saveJobState(ctx, job, jobmodel.JobStatusComplete)
}

func jobTimeout(jobType jobmodel.JobType) time.Duration {
	if jobType == jobmodel.JobTypeLoad {
		return config.LoadTimeout
	}
	// the session bounds the provider call itself; this leaves room for the store round trips
	return config.GenerationTimeout + 10*time.Second
}

func removeWorker(reason string) {
	releaseWorker(reason, atomic.AddInt64(&currentWorkerCount, -1))
}

func releaseWorker(reason string, remaining int64) {
	workerWaitGroup.Done()
	logger.Info("Removed worker", "reason", reason, "workerCount", remaining)
	metrics.DecrementActiveWorkerCount()
}

func loadDocument(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) jobmodel.Job {
	if job.JobPayload.SourcePath != "" {
		defer func() {
			if err := os.Remove(job.JobPayload.SourcePath); err != nil && !os.IsNotExist(err) {
				log.Warn("Could not remove uploaded file", "path", job.JobPayload.SourcePath, "error", err)
			}
		}()
	}

	doc, err := _processor.RunLoad(ctx)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, loader.ErrLoadFailure) {
			code = http.StatusUnprocessableEntity
		}
		return jobError(job, err, code, err.Error(), false, log)
	}

	job.JobPayload.DocumentName = doc.Name
	job.JobPayload.PageCount = doc.PageCount
	job.JobPayload.Characters = utf8.RuneCountInString(doc.Text)
	return job
}

func resolveQuery(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) jobmodel.Job {
	reply, err := _processor.ResolveReply(ctx)
	if err != nil {
		return jobError(job, err, http.StatusInternalServerError, "Internal Server Error", true, log)
	}

	job.JobPayload.Answer = reply.Message.Content
	if reply.Outcome == session.OutcomeFailed {
		return jobError(job, reply.Cause, http.StatusBadGateway, "Generation failed", false, log)
	}
	return job
}

func jobError(job jobmodel.Job, err error, code int, message string, canRetry bool, log *logger_i.Logger) jobmodel.Job {
	log.Error(message, "error", err)
	job.Error = jobmodel.JobError{
		Code:    code,
		Message: message,
		Retry:   canRetry,
	}
	job.Status = jobmodel.JobStatusError
	job.CurrentStep = jobmodel.Error
	return job
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(context.WithoutCancel(ctx), job); err != nil {
		logger.Error("Failed to update job state", "jobId", job.Id, "err", err)
	}
}
