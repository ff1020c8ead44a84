// @title           Doubt Solver API
// @version         1.0
// @description     Upload one study document and ask questions answered strictly from its text.
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DoubtSolver/internal/adapter/utils"
	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/conversation"
	"github.com/akolanti/DoubtSolver/internal/customHttpClient"
	"github.com/akolanti/DoubtSolver/internal/data/redisStore"
	"github.com/akolanti/DoubtSolver/internal/data/store"
	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
	jobmodel "github.com/akolanti/DoubtSolver/internal/domain/jobModel"
	"github.com/akolanti/DoubtSolver/internal/handlers"
	"github.com/akolanti/DoubtSolver/internal/job"
	"github.com/akolanti/DoubtSolver/internal/llm"
	"github.com/akolanti/DoubtSolver/internal/llm/gemini"
	"github.com/akolanti/DoubtSolver/internal/llm/openaiLLM"
	"github.com/akolanti/DoubtSolver/internal/loader"
	"github.com/akolanti/DoubtSolver/internal/mcpServer"
	"github.com/akolanti/DoubtSolver/internal/middleware"
	"github.com/akolanti/DoubtSolver/internal/server"
	"github.com/akolanti/DoubtSolver/internal/session"
	"github.com/akolanti/DoubtSolver/internal/worker"
	"github.com/akolanti/DoubtSolver/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	cfg := config.Load()

	logger_i.Init(cfg.IsProd, cfg.LogLevel)
	var logger = logger_i.NewLogger("main")
	if err := cfg.ValidateLimits(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	redisOpts := redisStore.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	var messageStore chatModel.MessageStore
	redisJobs := store.GetRedisJobStore(serviceContext, redisOpts)
	redisMessages := store.GetRedisMessageStore(serviceContext, redisOpts)
	if redisJobs == nil || redisMessages == nil {
		logger.Error("Redis stores are offline, falling back to memory")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		messageStore = store.InitMessageStore()
	} else {
		serviceConfig.JobStore = redisJobs
		messageStore = redisMessages
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	provider := newProvider(serviceContext, cfg, logger)

	docSession := session.New(
		conversation.New(messageStore, utils.GetNewUUID()),
		provider,
		loader.New(cfg.MaxDocumentChars),
		session.WithGenerationTimeout(config.GenerationTimeout),
	)

	handlers.InitJobHandler(service, docSession)
	middleware.InitMiddleware(middleware.Options{
		AuthToken:         cfg.AuthToken,
		NoAuthBypass:      cfg.NoAuthBypass,
		RequestsPerSecond: cfg.RateLimitPerSecond,
		Burst:             cfg.RateLimitBurst,
	})

	//init worker pool
	worker.InitServices(service, docSession)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(server.Options{
		ListenAddr:         listenAddr,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
		MCPHandler:         mcpServer.NewHandler(mcpServer.NewServer(docSession, mcpServer.Options{DocumentsRoot: cfg.DocumentsRoot})),
	})

	<-stopExecution
	logger.Info("Server stopped")
}

// newProvider never fails: without a usable credential every question is answered with
// the operational error reply.
func newProvider(ctx context.Context, cfg *config.Config, logger *logger_i.Logger) llm.Provider {
	if err := cfg.Validate(); err != nil {
		logger.Error("Generation disabled", "error", err)
		return llm.Unavailable(err)
	}

	httpClient := customHttpClient.NewPooledClient(config.LLMRequestTimeout)
	var (
		provider llm.Provider
		err      error
	)
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		provider, err = openaiLLM.NewOpenAIClient(openaiLLM.Options{
			APIKey:     cfg.OpenAIAPIKey,
			ModelName:  cfg.OpenAIModel,
			BaseURL:    cfg.OpenAIBaseURL,
			HTTPClient: httpClient,
		})
	default:
		provider, err = gemini.NewGeminiClient(ctx, gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			ModelName:  cfg.GeminiModel,
			HTTPClient: httpClient,
		})
	}
	if err != nil {
		logger.Error("Could not create generation client", "provider", cfg.LLMProvider, "error", err)
		return llm.Unavailable(err)
	}
	logger.Info("Generation client ready", "provider", cfg.LLMProvider)
	return provider
}
