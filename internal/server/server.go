package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/akolanti/DoubtSolver/internal/adapter/utils"
	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/customHttpClient"
	"github.com/akolanti/DoubtSolver/internal/middleware"
	"github.com/akolanti/DoubtSolver/pkg/logger_i"
	"github.com/rs/cors"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type Options struct {
	ListenAddr         string
	CorsAllowedOrigins []string
	// MCPHandler is mounted at /mcp when set.
	MCPHandler http.Handler
	// MCPWriteTimeout replaces the server write timeout on /mcp requests. Zero means config.MCPWriteTimeout.
	MCPWriteTimeout time.Duration
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

// NewHandler builds the routed, CORS-wrapped handler without starting a listener.
func NewHandler(opts Options) http.Handler {
	r := utils.NewRouter()

	r.Router.Get("/", middleware.GetHandler)
	r.Router.Post("/chat", middleware.ChatHandler)
	r.Router.Get("/status/{id}", middleware.GetStatusHandler)
	r.Router.Post("/documents", middleware.PostDocumentHandler)
	r.Router.Get("/session", middleware.GetSessionHandler)
	r.Router.Delete("/conversation", middleware.ClearConversationHandler)
	if opts.MCPHandler != nil {
		timeout := opts.MCPWriteTimeout
		if timeout <= 0 {
			timeout = config.MCPWriteTimeout
		}
		r.Router.Handle("/mcp", withWriteDeadline(timeout, middleware.WrapHandler(opts.MCPHandler)))
	}

	return cors.New(cors.Options{
		AllowedOrigins: opts.CorsAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Trace-Id", "Mcp-Session-Id"},
		ExposedHeaders: []string{"X-Trace-Id", "Mcp-Session-Id"},
	}).Handler(r.Router)
}

// withWriteDeadline lets a handler answer after the server wide WriteTimeout. ask_question
// writes its result only once generation finishes.
func withWriteDeadline(timeout time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := http.NewResponseController(w).SetWriteDeadline(time.Now().Add(timeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			initLogger()
			_logger.Warn("Could not extend write deadline", "path", r.URL.Path, "error", err)
		}
		next.ServeHTTP(w, r)
	})
}

func initLogger() {
	if _logger == nil {
		_logger = logger_i.NewLogger("Server")
	}
}

func CreateServer(opts Options) {
	initLogger()

	server = &http.Server{
		Addr:         opts.ListenAddr,
		Handler:      NewHandler(opts),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", opts.ListenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", opts.ListenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	initLogger()
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "error", err)
			}
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		customHttpClient.CloseIdleConnections()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
