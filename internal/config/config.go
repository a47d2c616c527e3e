package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	pkgRetry "github.com/aminanvary/Gemini-File-Search/internal/pkg/retry"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Upstream file-search service configuration
	FileSearchCfg FileSearchConnectorConfig `envPrefix:"FILESEARCH_"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// TTL for cached store/file listings served to the dashboard
	ListCacheTTL time.Duration `env:"LIST_CACHE_TTL" envDefault:"30s"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// FileSearchConnectorConfig configures the connector to the upstream
// generative-AI file-search service.
type FileSearchConnectorConfig struct {
	HTTPClientConfig
	// APIKey is sent as x-goog-api-key on every upstream call.
	APIKey string `env:"API_KEY"`
	// UploadURL is the media-upload base. Derived from the service URL
	// when empty.
	UploadURL string `env:"UPLOAD_URL"`
	// PageSize for upstream list calls.
	PageSize int `env:"PAGE_SIZE" envDefault:"20"`
	// ImportPoll drives polling of import operations: Delay between polls,
	// Attempts bounds the wall clock (attempts * delay).
	ImportPoll pkgRetry.RetryConfig `envPrefix:"IMPORT_POLL_"`
	Retry      pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"104857600"`  // 100 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"134217728"` // 128 MiB multipart memory cap
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.FileSearchCfg.PageSize < 1 || cfg.FileSearchCfg.PageSize > 100 {
		errors = append(errors, fmt.Sprintf("FILESEARCH_PAGE_SIZE must be between 1 and 100, got %d", cfg.FileSearchCfg.PageSize))
	}

	if cfg.FileSearchCfg.ImportPoll.Attempts < 1 {
		errors = append(errors, fmt.Sprintf("FILESEARCH_IMPORT_POLL_ATTEMPTS must be at least 1, got %d", cfg.FileSearchCfg.ImportPoll.Attempts))
	}

	if cfg.FileUploadCfg.MaxFileSize < 1 {
		errors = append(errors, fmt.Sprintf("FILE_UPLOAD_MAX_FILE_SIZE must be positive, got %d", cfg.FileUploadCfg.MaxFileSize))
	}

	if !cfg.EnableMocks && cfg.FileSearchCfg.APIKey == "" {
		errors = append(errors, "FILESEARCH_API_KEY must be set unless ENABLE_MOCKS=true")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
