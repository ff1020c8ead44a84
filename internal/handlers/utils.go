package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/DoubtSolver/internal/adapter"
	"github.com/akolanti/DoubtSolver/internal/adapter/utils"
	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/domain/jobModel"
	"github.com/akolanti/DoubtSolver/internal/session"
)

// technically only the job handler needs this, it keeps request parsing apart from job creation
type newJobData struct {
	id             string
	message        string
	traceId        string
	isDocumentLoad bool
	documentName   string
	documentSource string
}

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// status is already sent, nothing left to do but log
		logRH.Error("Error encoding response", "error", err)
	}
}

func traceIdFrom(ctx context.Context) string {
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return trace
}

func validateId(id string, traceId string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return GetJobStatus(id, traceId)
}

func validateContext(ctx context.Context) bool {
	if handlerInstance == nil {
		logRH.Error("Job handler not initialised")
		return false
	}
	if ctx.Err() != nil {
		logRH.Warn("context error", "traceId", traceIdFrom(ctx), "error", ctx.Err())
		return false
	}
	return true
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

// sessionErrorStatus maps a rejected submission to its HTTP status.
func sessionErrorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrBlankQuestion), errors.Is(err, session.ErrNoDocument):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrAwaitingReply), errors.Is(err, session.ErrLoadInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func getTargetDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, config.TemporaryDataDir)
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}

func createJob(ctx context.Context, w http.ResponseWriter, newJob newJobData) {
	newJob.id = utils.GetNewUUID()
	newJob.traceId = traceIdFrom(ctx)
	handlerInstance.pushToJobChannel(ctx, newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}
