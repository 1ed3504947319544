package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/gravywork/assessment-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// PublicBaseURL is the externally reachable URL of this service.
	// The telephony provider posts webhooks back to it.
	PublicBaseURL string `env:"PUBLIC_BASE_URL,notEmpty"`

	// MediaBaseURL hosts the pre-recorded question audio files.
	MediaBaseURL string `env:"MEDIA_BASE_URL,notEmpty"`

	// RolesFile points at the JSON role definitions (sequences and rubrics).
	RolesFile string `env:"ROLES_FILE" envDefault:"internal/config/assessment_roles.json"`

	// Object storage configuration
	StorageCfg StorageConfig `envPrefix:"STORAGE_"`

	// External service configurations
	TelephonyConnectorCfg TelephonyConnectorConfig `envPrefix:"TELEPHONY_"`
	SpeechConnectorCfg    SpeechConnectorConfig    `envPrefix:"SPEECH_"`
	ModelCfg              ModelConfig              `envPrefix:"MODEL_"`

	// Call flow configuration
	CallFlowCfg CallFlowConfig `envPrefix:"CALL_"`

	// Session sweeper configuration
	SweeperCfg SweeperConfig `envPrefix:"SWEEPER_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS,notEmpty"`

	// Environment (set from flag, not from env var)
	Environment string
}

// StorageConfig holds object store connection settings
type StorageConfig struct {
	Endpoint  string `env:"ENDPOINT,notEmpty"`
	AccessKey string `env:"ACCESS_KEY,notEmpty"`
	SecretKey string `env:"SECRET_KEY,notEmpty"`
	Bucket    string `env:"BUCKET,notEmpty"`
	Region    string `env:"REGION" envDefault:"us-east-1"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"true"`
}

// TelephonyConnectorConfig holds outbound-call provider settings
type TelephonyConnectorConfig struct {
	HTTPClientConfig
	AccountSID string               `env:"ACCOUNT_SID,notEmpty"`
	AuthToken  string               `env:"AUTH_TOKEN,notEmpty"`
	FromNumber string               `env:"FROM_NUMBER,notEmpty"`
	Retry      pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// SpeechConnectorConfig holds async transcription provider settings
type SpeechConnectorConfig struct {
	HTTPClientConfig
	SubmitEndpoint string               `env:"SUBMIT_ENDPOINT,notEmpty"`
	JobEndpoint    string               `env:"JOB_ENDPOINT,notEmpty"`
	LanguageCode   string               `env:"LANGUAGE_CODE" envDefault:"en-US"`
	PollInterval   time.Duration        `env:"POLL_INTERVAL" envDefault:"5s"`
	MaxWait        time.Duration        `env:"MAX_WAIT" envDefault:"5m"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// ModelConfig holds evaluation model settings
type ModelConfig struct {
	APIKey          string  `env:"API_KEY,notEmpty"`
	Model           string  `env:"NAME" envDefault:"gemini-2.0-flash"`
	Temperature     float32 `env:"TEMPERATURE" envDefault:"0.2"`
	MaxOutputTokens int32   `env:"MAX_OUTPUT_TOKENS" envDefault:"8192"`
}

// CallFlowConfig tunes the interactive call behaviour
type CallFlowConfig struct {
	// RecordTimeoutSeconds is how long the provider waits for speech
	// before closing the recording window.
	RecordTimeoutSeconds int `env:"RECORD_TIMEOUT_SECONDS" envDefault:"5"`

	// MaxRecordingSeconds bounds a single answer recording.
	MaxRecordingSeconds int `env:"MAX_RECORDING_SECONDS" envDefault:"120"`

	// RetryRecordingSeconds bounds the re-prompt recording after an
	// apparently unanswered question.
	RetryRecordingSeconds int `env:"RETRY_RECORDING_SECONDS" envDefault:"120"`

	FinishKeys  string `env:"FINISH_KEYS" envDefault:"#*"`
	RepeatDigit string `env:"REPEAT_DIGIT" envDefault:"*"`

	// ReplayWindow is how long a recording callback is remembered so
	// provider retries of the same delivery get the identical markup back.
	ReplayWindow time.Duration `env:"REPLAY_WINDOW" envDefault:"10m"`
}

// SweeperConfig tunes the stale session sweeper
type SweeperConfig struct {
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	Interval   time.Duration `env:"INTERVAL" envDefault:"15m"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT,notEmpty"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT,notEmpty"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE,notEmpty"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT,notEmpty"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT,notEmpty"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
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

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errs []string

	if cfg.CallFlowCfg.RecordTimeoutSeconds < 1 || cfg.CallFlowCfg.RecordTimeoutSeconds > 30 {
		errs = append(errs, fmt.Sprintf("CALL_RECORD_TIMEOUT_SECONDS must be between 1 and 30, got %d", cfg.CallFlowCfg.RecordTimeoutSeconds))
	}

	if cfg.CallFlowCfg.MaxRecordingSeconds < 10 || cfg.CallFlowCfg.MaxRecordingSeconds > 600 {
		errs = append(errs, fmt.Sprintf("CALL_MAX_RECORDING_SECONDS must be between 10 and 600, got %d", cfg.CallFlowCfg.MaxRecordingSeconds))
	}

	if cfg.CallFlowCfg.RepeatDigit != "" && !strings.Contains(cfg.CallFlowCfg.FinishKeys, cfg.CallFlowCfg.RepeatDigit) {
		errs = append(errs, fmt.Sprintf("CALL_REPEAT_DIGIT %q must be one of CALL_FINISH_KEYS %q", cfg.CallFlowCfg.RepeatDigit, cfg.CallFlowCfg.FinishKeys))
	}

	if cfg.SweeperCfg.SessionTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("SWEEPER_SESSION_TTL must be at least 1m, got %s", cfg.SweeperCfg.SessionTTL))
	}

	if cfg.SpeechConnectorCfg.PollInterval <= 0 || cfg.SpeechConnectorCfg.PollInterval >= cfg.SpeechConnectorCfg.MaxWait {
		errs = append(errs, fmt.Sprintf("SPEECH_POLL_INTERVAL must be positive and below SPEECH_MAX_WAIT(%s), got %s", cfg.SpeechConnectorCfg.MaxWait, cfg.SpeechConnectorCfg.PollInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errs, "\n  - "))
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
