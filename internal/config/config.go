package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Pipeline PipelineConfig
	Delivery DeliveryConfig
	Auth     AuthConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// PipelineConfig holds job pipeline tuning knobs
type PipelineConfig struct {
	// Concurrency bounds simultaneous job handlers in one orchestrator run
	Concurrency int
	// MaxJobsPerRun caps how many jobs one orchestrator run claims
	MaxJobsPerRun int
	// ProcessTimeout is the soft deadline for one orchestrator run; the run
	// stops claiming new jobs as it approaches and returns partial stats
	ProcessTimeout time.Duration
	// StaleClaimTimeout requeues processing jobs whose last update is older
	// than this (crash recovery)
	StaleClaimTimeout time.Duration
	// TriggerInterval is how often the external scheduler (or the built-in
	// runners) fires a pipeline cycle
	TriggerInterval time.Duration
	// AlertSpacingFraction derives the per-campaign minimum alert spacing
	// from TriggerInterval (0.8 -> 80% of the interval)
	AlertSpacingFraction float64
	// AlertSendLimit caps how many alerts one dispatch cycle sends
	AlertSendLimit int
	// RunnersEnabled starts the built-in periodic runners instead of relying
	// on an external scheduler hitting the trigger endpoints
	RunnersEnabled bool
}

// DeliveryConfig holds alert delivery transport settings
type DeliveryConfig struct {
	// Transport selects the outbound channel: "log" or "webhook"
	Transport  string
	WebhookURL string
	Timeout    time.Duration
}

// AuthConfig holds OAuth handshake state settings
type AuthConfig struct {
	// StateTTL bounds how long an issued OAuth/PKCE state stays consumable
	StateTTL time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Env:          getEnv("SERVER_ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			// Must exceed PIPELINE_PROCESS_TIMEOUT: /v1/pipeline/process runs
			// a full orchestrator cycle synchronously
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 75*time.Second),
		},
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "beacon"),
			Database:  getEnv("DB_DATABASE", "main"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		Pipeline: PipelineConfig{
			Concurrency:          getIntEnv("PIPELINE_CONCURRENCY", 5),
			MaxJobsPerRun:        getIntEnv("PIPELINE_MAX_JOBS", 25),
			ProcessTimeout:       getDurationEnv("PIPELINE_PROCESS_TIMEOUT", 55*time.Second),
			StaleClaimTimeout:    getDurationEnv("PIPELINE_STALE_CLAIM_TIMEOUT", 10*time.Minute),
			TriggerInterval:      getDurationEnv("PIPELINE_TRIGGER_INTERVAL", 5*time.Minute),
			AlertSpacingFraction: getFloatEnv("PIPELINE_ALERT_SPACING_FRACTION", 0.8),
			AlertSendLimit:       getIntEnv("PIPELINE_ALERT_SEND_LIMIT", 20),
			RunnersEnabled:       getBoolEnv("PIPELINE_RUNNERS_ENABLED", false),
		},
		Delivery: DeliveryConfig{
			Transport:  getEnv("DELIVERY_TRANSPORT", "log"),
			WebhookURL: getEnv("DELIVERY_WEBHOOK_URL", ""),
			Timeout:    getDurationEnv("DELIVERY_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			StateTTL: getDurationEnv("AUTH_STATE_TTL", 10*time.Minute),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// AlertSpacing derives the per-campaign minimum interval between sent alerts
func (c *Config) AlertSpacing() time.Duration {
	return time.Duration(float64(c.Pipeline.TriggerInterval) * c.Pipeline.AlertSpacingFraction)
}

// Validate checks the loaded configuration and reports every problem it
// finds, joined into a single error. A nil return means the config is usable.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	required := []struct {
		name, value string
	}{
		{"SERVER_PORT", c.Server.Port},
		{"DB_HOST", c.Database.Host},
		{"DB_PORT", c.Database.Port},
		{"DB_NAMESPACE", c.Database.Namespace},
		{"DB_DATABASE", c.Database.Database},
	}
	for _, r := range required {
		if r.value == "" {
			fail("%s must not be empty", r.name)
		}
	}

	switch c.Server.Env {
	case "development", "production", "test":
	default:
		fail("SERVER_ENV must be one of development, production, test; got %q", c.Server.Env)
	}

	if c.Pipeline.Concurrency <= 0 {
		fail("PIPELINE_CONCURRENCY must be at least 1, got %d", c.Pipeline.Concurrency)
	}
	if c.Pipeline.MaxJobsPerRun <= 0 {
		fail("PIPELINE_MAX_JOBS must be at least 1, got %d", c.Pipeline.MaxJobsPerRun)
	}
	if c.Pipeline.StaleClaimTimeout <= 0 {
		fail("PIPELINE_STALE_CLAIM_TIMEOUT must be a positive duration")
	}
	if c.Pipeline.TriggerInterval <= 0 {
		fail("PIPELINE_TRIGGER_INTERVAL must be a positive duration")
	}
	if f := c.Pipeline.AlertSpacingFraction; f <= 0 || f > 1 {
		fail("PIPELINE_ALERT_SPACING_FRACTION must be in (0, 1], got %v", f)
	}
	// The process endpoint runs a whole orchestrator cycle before responding,
	// so the HTTP write deadline has to outlast the cycle deadline.
	if c.Server.WriteTimeout <= c.Pipeline.ProcessTimeout {
		fail("SERVER_WRITE_TIMEOUT must exceed PIPELINE_PROCESS_TIMEOUT")
	}

	switch c.Delivery.Transport {
	case "log":
	case "webhook":
		if c.Delivery.WebhookURL == "" {
			fail("DELIVERY_WEBHOOK_URL must be set when DELIVERY_TRANSPORT is webhook")
		}
	default:
		fail("DELIVERY_TRANSPORT must be log or webhook, got %q", c.Delivery.Transport)
	}

	if c.Auth.StateTTL <= 0 {
		fail("AUTH_STATE_TTL must be a positive duration")
	}

	return errors.Join(errs...)
}

// Env readers: an unset variable yields the default; a malformed value also
// falls back rather than failing the boot.

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getBoolEnv(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getFloatEnv(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
