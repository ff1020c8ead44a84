package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/DoubtSolver/internal/adapter"
	"github.com/akolanti/DoubtSolver/internal/adapter/utils"
	"github.com/akolanti/DoubtSolver/internal/api"
	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/loader"
	"github.com/akolanti/DoubtSolver/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ChatHandler godoc
// @Summary      Ask a question about the loaded document
// @Description  Records the question and queues the generation call. Only one question can be outstanding at a time.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest      true  "Question"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Blank question or no document loaded"
// @Failure      409      {object}  api.JobResponse      "A reply is still outstanding"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request", "remote", request.RemoteAddr)
		return
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the Chat handler reader", "error", err)
		}
	}(request.Body)

	var requestData api.ChatRequest
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		logRH.Warn("Bad Chat Request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	if _, err := handlerInstance.session.SubmitQuestion(request.Context(), requestData.Message); err != nil {
		logRH.Warn("Question rejected", "error", err)
		WriteErrorResponse(w, sessionErrorStatus(err), "", err.Error())
		return
	}
	createJob(request.Context(), w, newJobData{message: requestData.Message})
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a question or document load job. Answers carry their formatted blocks.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(idString, traceIdFrom(r.Context()))

	logRH.Debug("Get Status Request", "URL path", r.URL.Path)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// PostDocumentHandler godoc
// @Summary      Upload the document to study
// @Description  Receives a PDF, plain text, markdown or DOCX file via multipart/form-data and queues a load job. A successful load replaces the active document and clears the conversation.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_name  formData  string  false  "Display name, defaults to the file name"
// @Param        document       formData  file    true   "The file to load"
// @Success      202  {object}  api.InitJobResponse "Accepted"
// @Failure      400  {object}  api.JobResponse "Missing file or file too large"
// @Failure      409  {object}  api.JobResponse "Another document is still loading"
// @Failure      500  {object}  api.JobResponse "Storage or write error"
// @Router       /documents [post]
func PostDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	docName := r.FormValue("document_name")
	if docName == "" {
		docName = filepath.Base(fileMetadata.Filename)
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fileMetadata.Filename))
	tempFilePath := filepath.Join(targetDir, filename)
	if err = saveUpload(fileReader, tempFilePath); err != nil {
		logRH.Error("Could not store upload", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}

	src := loader.Source{
		Name:      docName,
		Path:      tempFilePath,
		MediaType: fileMetadata.Header.Get("Content-Type"),
	}
	if err = handlerInstance.session.BeginLoad(src); err != nil {
		_ = os.Remove(tempFilePath)
		WriteErrorResponse(w, sessionErrorStatus(err), docName, err.Error())
		return
	}
	createJob(r.Context(), w, newJobData{isDocumentLoad: true, documentName: docName, documentSource: tempFilePath})
}

func saveUpload(src io.Reader, path string) error {
	destinationFileWriter, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err = io.Copy(destinationFileWriter, src); err != nil {
		destinationFileWriter.Close()
		_ = os.Remove(path)
		return err
	}
	return destinationFileWriter.Close()
}

// GetSessionHandler godoc
// @Summary      Session snapshot
// @Description  The active document, loading state, awaiting-reply flag and the conversation with formatted assistant replies.
// @Tags         Session
// @Produce      json
// @Success      200  {object}  api.SessionResponse
// @Router       /session [get]
func GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	state, err := handlerInstance.session.Snapshot(r.Context())
	if err != nil {
		logRH.Error("Could not read session", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not read session")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponse(state))
}

// ClearConversationHandler godoc
// @Summary      Clear the conversation
// @Description  Empties the conversation log. An outstanding reply is not cancelled.
// @Tags         Session
// @Success      204
// @Failure      500  {object}  api.JobResponse
// @Router       /conversation [delete]
func ClearConversationHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	if err := handlerInstance.session.ClearConversation(r.Context()); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not clear conversation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
