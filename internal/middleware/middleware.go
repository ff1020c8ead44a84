package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/DoubtSolver/internal/handlers"
	"github.com/akolanti/DoubtSolver/internal/metrics"
	"github.com/akolanti/DoubtSolver/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
	// polling requests are authenticated but not rate limited
	polling bool
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type Options struct {
	AuthToken    string
	NoAuthBypass bool
	// Zero values fall back to config.RATE_LIMIT_PER_SECOND and config.BURST_RATE_LIMIT_PER_SECOND.
	RequestsPerSecond float64
	Burst             int
}

var (
	authToken    string
	noAuthBypass bool
)

// InitMiddleware must run before the server accepts requests.
func InitMiddleware(opts Options) {
	authToken = opts.AuthToken
	noAuthBypass = opts.NoAuthBypass
	limiterInstance = newLimiterFromOptions(opts)
	if noAuthBypass {
		logger_i.NewLogger("middleware").Warn("Authentication is bypassed")
	}
}

var GetHandler = Wrap(handlers.GetHandler)

var ChatHandler = Wrap(handlers.ChatHandler)
var GetStatusHandler = WrapPolling(handlers.GetStatusHandler)
var PostDocumentHandler = Wrap(handlers.PostDocumentHandler)
var GetSessionHandler = WrapPolling(handlers.GetSessionHandler)
var ClearConversationHandler = Wrap(handlers.ClearConversationHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, false)
}

// WrapPolling is Wrap without the rate limiter, for the read only endpoints a client
// polls while a job runs (/status/{id}, /session).
func WrapPolling(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, true)
}

func wrap(next http.HandlerFunc, polling bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec, polling: polling})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

// WrapHandler applies the same chain to a mounted handler such as the MCP endpoint.
func WrapHandler(next http.Handler) http.Handler {
	return Wrap(next.ServeHTTP)
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		return re //stop if auth fails
	}
	if re.polling {
		return re
	}
	return rateLimiter(re)
}
