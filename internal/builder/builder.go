package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aminanvary/Gemini-File-Search/internal/api"
	chatapi "github.com/aminanvary/Gemini-File-Search/internal/api/chat"
	fileapi "github.com/aminanvary/Gemini-File-Search/internal/api/file"
	storeapi "github.com/aminanvary/Gemini-File-Search/internal/api/store"
	"github.com/aminanvary/Gemini-File-Search/internal/config"
	"github.com/aminanvary/Gemini-File-Search/internal/integration/filesearch"
	"github.com/aminanvary/Gemini-File-Search/internal/pkg/validator"
	"go.uber.org/zap"
)

func Build() (*App, error) {
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

	// Initialize the upstream connector (with mock support)
	var fsAPI filesearch.API
	if cfg.EnableMocks {
		logger.Info("Using mock connector for the file-search service")
		fsAPI = filesearch.NewMockConnector(logger)
	} else {
		logger.Info("Using real connector for the file-search service")
		fsAPI = filesearch.NewConnector(cfg.FileSearchCfg, logger)
	}

	// List endpoints are cached briefly to absorb dashboard polling
	fsAPI = filesearch.NewListCache(fsAPI, cfg.ListCacheTTL)

	// Initialize validators
	reqValidator := validator.NewValidator(cfg.FileUploadCfg)
	logger.Info("Validators initialized")

	// Setup API handlers
	chatHandler := chatapi.NewHandler(fsAPI, reqValidator)
	storeHandler := storeapi.NewHandler(fsAPI, cfg.FileSearchCfg.ImportPoll, reqValidator)
	fileHandler := fileapi.NewHandler(fsAPI, cfg.FileUploadCfg, reqValidator)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(chatHandler, storeHandler, fileHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server. WriteTimeout stays unset: it would cut off SSE
	// responses that stream longer than the window.
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}
