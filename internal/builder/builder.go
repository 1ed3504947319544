package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gravywork/assessment-backend/internal/api"
	assessmentapi "github.com/gravywork/assessment-backend/internal/api/assessment"
	webhookapi "github.com/gravywork/assessment-backend/internal/api/webhook"
	"github.com/gravywork/assessment-backend/internal/callflow"
	"github.com/gravywork/assessment-backend/internal/catalog"
	"github.com/gravywork/assessment-backend/internal/config"
	"github.com/gravywork/assessment-backend/internal/integration/gemini"
	"github.com/gravywork/assessment-backend/internal/integration/speech"
	"github.com/gravywork/assessment-backend/internal/integration/telephony"
	"github.com/gravywork/assessment-backend/internal/pkg/validator"
	"github.com/gravywork/assessment-backend/internal/repository"
	"github.com/gravywork/assessment-backend/internal/scoring"
	"github.com/gravywork/assessment-backend/internal/transcribe"
	"go.uber.org/zap"
)

// telephonyConnector is the full surface both telephony implementations
// provide: outbound calls for the call-flow, recording downloads for
// the transcription pipeline.
type telephonyConnector interface {
	callflow.Telephony
	transcribe.RecordingFetcher
}

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Load the role catalog (question sequences and scoring rubrics)
	cat, err := catalog.Load(cfg.RolesFile)
	if err != nil {
		return nil, fmt.Errorf("load role catalog: %w", err)
	}
	logger.Info("Role catalog loaded",
		zap.String("path", cfg.RolesFile),
		zap.Strings("roles", cat.Roles()),
	)

	// Initialize object storage and external connectors (with mock support)
	var store repository.ObjectStore
	var telephonyConn telephonyConnector
	var speechProvider transcribe.SpeechProvider
	var evaluator scoring.Evaluator

	if cfg.EnableMocks {
		logger.Info("Using in-memory storage and mock connectors for external services")
		store = repository.NewMemoryStore()
		telephonyConn = telephony.NewMockConnector(logger)
		speechProvider = speech.NewMockConnector(logger)
		evaluator = gemini.NewMockClient(logger)
	} else {
		logger.Info("Using real connectors for external services")
		store, err = repository.NewMinioStore(cfg.StorageCfg)
		if err != nil {
			return nil, fmt.Errorf("setup object storage: %w", err)
		}
		telephonyConn = telephony.NewConnector(cfg.TelephonyConnectorCfg, logger)
		speechProvider = speech.NewConnector(cfg.SpeechConnectorCfg, logger)
		evaluator, err = gemini.NewClient(ctx, cfg.ModelCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("setup evaluation client: %w", err)
		}
	}

	// Initialize repositories
	sessionStore := repository.NewSessionStore(store)
	responseArchive := repository.NewResponseArchive(store)
	transcriptStore := repository.NewTranscriptStore(store)
	resultStore := repository.NewResultStore(store)
	indexStore := repository.NewIndexStore(store)
	logger.Info("Repositories initialized")

	// Initialize validators
	assessmentValidator := validator.NewAssessmentValidator(cat)
	logger.Info("Validators initialized")

	// Initialize use cases
	callflowUC := callflow.NewUsecase(
		cat,
		sessionStore,
		responseArchive,
		telephonyConn,
		cfg.CallFlowCfg,
		cfg.PublicBaseURL,
		cfg.MediaBaseURL,
	)

	transcriber := transcribe.NewCoordinator(
		speechProvider,
		telephonyConn,
		responseArchive,
		transcriptStore,
		cfg.SpeechConnectorCfg,
	)

	scoringUC := scoring.NewUsecase(
		cat,
		sessionStore,
		resultStore,
		indexStore,
		transcriber,
		evaluator,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	assessmentHandler := assessmentapi.NewHandler(callflowUC, scoringUC, assessmentValidator)
	webhookHandler := webhookapi.NewHandler(callflowUC, scoringUC)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(assessmentHandler, webhookHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sweeper := callflow.NewSweeper(sessionStore, cfg.SweeperCfg, logger)

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:  server,
		sweeper: sweeper,
		logger:  logger,
	}, nil
}
