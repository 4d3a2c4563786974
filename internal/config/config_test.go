package config

import (
	"strings"
	"testing"
	"time"
)

// ===========================================================================
// Test Helpers
// ===========================================================================

// validConfig returns a config that passes validation, for tests to break
// one field at a time.
func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			Env:          "development",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 75 * time.Second,
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      "8000",
			Namespace: "beacon",
			Database:  "main",
			User:      "root",
			Password:  "root",
		},
		Pipeline: PipelineConfig{
			Concurrency:          5,
			MaxJobsPerRun:        25,
			ProcessTimeout:       55 * time.Second,
			StaleClaimTimeout:    10 * time.Minute,
			TriggerInterval:      5 * time.Minute,
			AlertSpacingFraction: 0.8,
			AlertSendLimit:       20,
		},
		Delivery: DeliveryConfig{
			Transport: "log",
			Timeout:   10 * time.Second,
		},
		Auth: AuthConfig{
			StateTTL: 10 * time.Minute,
		},
	}
}

// ===========================================================================
// Validation
// ===========================================================================

func TestConfig_Validate_ValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("expected valid config to pass validation, got: %v", err)
	}
}

func TestConfig_Validate_MissingServerPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing SERVER_PORT")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("expected error to mention SERVER_PORT, got: %v", err)
	}
}

func TestConfig_Validate_InvalidEnv(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Env = "staging"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown SERVER_ENV")
	}
	if !strings.Contains(err.Error(), "SERVER_ENV") {
		t.Errorf("expected error to mention SERVER_ENV, got: %v", err)
	}
}

func TestConfig_Validate_WriteTimeoutMustExceedProcessTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Pipeline.ProcessTimeout = 55 * time.Second

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when write timeout does not cover a process cycle")
	}
	if !strings.Contains(err.Error(), "SERVER_WRITE_TIMEOUT") {
		t.Errorf("expected error to mention SERVER_WRITE_TIMEOUT, got: %v", err)
	}
}

func TestConfig_Validate_NonPositiveConcurrency(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Concurrency = 0

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "PIPELINE_CONCURRENCY") {
		t.Errorf("expected PIPELINE_CONCURRENCY error, got: %v", err)
	}
}

func TestConfig_Validate_SpacingFractionBounds(t *testing.T) {
	for _, fraction := range []float64{0, -0.1, 1.5} {
		cfg := validConfig()
		cfg.Pipeline.AlertSpacingFraction = fraction

		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "PIPELINE_ALERT_SPACING_FRACTION") {
			t.Errorf("fraction %v: expected PIPELINE_ALERT_SPACING_FRACTION error, got: %v", fraction, err)
		}
	}
}

func TestConfig_Validate_WebhookTransportRequiresURL(t *testing.T) {
	cfg := validConfig()
	cfg.Delivery.Transport = "webhook"
	cfg.Delivery.WebhookURL = ""

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DELIVERY_WEBHOOK_URL") {
		t.Errorf("expected DELIVERY_WEBHOOK_URL error, got: %v", err)
	}

	cfg.Delivery.WebhookURL = "https://hooks.example.com/beacon"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected webhook transport with URL to validate, got: %v", err)
	}
}

func TestConfig_Validate_UnknownTransport(t *testing.T) {
	cfg := validConfig()
	cfg.Delivery.Transport = "carrier-pigeon"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DELIVERY_TRANSPORT") {
		t.Errorf("expected DELIVERY_TRANSPORT error, got: %v", err)
	}
}

func TestConfig_Validate_NonPositiveStateTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.StateTTL = 0

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "AUTH_STATE_TTL") {
		t.Errorf("expected AUTH_STATE_TTL error, got: %v", err)
	}
}

func TestConfig_Validate_CollectsAllFailures(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = ""
	cfg.Database.Host = ""
	cfg.Pipeline.MaxJobsPerRun = 0
	cfg.Delivery.Transport = "smoke-signals"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected aggregated validation error")
	}
	for _, field := range []string{"SERVER_PORT", "DB_HOST", "PIPELINE_MAX_JOBS", "DELIVERY_TRANSPORT"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected aggregated error to mention %s, got: %v", field, err)
		}
	}
}

// ===========================================================================
// Loading
// ===========================================================================

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Pipeline.Concurrency != 5 {
		t.Errorf("expected default concurrency 5, got %d", cfg.Pipeline.Concurrency)
	}
	if cfg.Pipeline.StaleClaimTimeout != 10*time.Minute {
		t.Errorf("expected default stale claim timeout 10m, got %v", cfg.Pipeline.StaleClaimTimeout)
	}
	if cfg.Delivery.Transport != "log" {
		t.Errorf("expected default transport log, got %s", cfg.Delivery.Transport)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got: %v", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PIPELINE_CONCURRENCY", "12")
	t.Setenv("PIPELINE_TRIGGER_INTERVAL", "90s")
	t.Setenv("PIPELINE_RUNNERS_ENABLED", "true")
	t.Setenv("DELIVERY_TRANSPORT", "webhook")
	t.Setenv("DELIVERY_WEBHOOK_URL", "https://hooks.example.com/beacon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Pipeline.Concurrency != 12 {
		t.Errorf("expected concurrency 12, got %d", cfg.Pipeline.Concurrency)
	}
	if cfg.Pipeline.TriggerInterval != 90*time.Second {
		t.Errorf("expected trigger interval 90s, got %v", cfg.Pipeline.TriggerInterval)
	}
	if !cfg.Pipeline.RunnersEnabled {
		t.Error("expected runners enabled")
	}
	if cfg.Delivery.WebhookURL == "" {
		t.Error("expected webhook URL to be read")
	}
}

func TestLoad_MalformedValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("PIPELINE_CONCURRENCY", "lots")
	t.Setenv("PIPELINE_TRIGGER_INTERVAL", "soon")
	t.Setenv("PIPELINE_ALERT_SPACING_FRACTION", "most")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Pipeline.Concurrency != 5 {
		t.Errorf("expected fallback concurrency 5, got %d", cfg.Pipeline.Concurrency)
	}
	if cfg.Pipeline.TriggerInterval != 5*time.Minute {
		t.Errorf("expected fallback trigger interval 5m, got %v", cfg.Pipeline.TriggerInterval)
	}
	if cfg.Pipeline.AlertSpacingFraction != 0.8 {
		t.Errorf("expected fallback spacing fraction 0.8, got %v", cfg.Pipeline.AlertSpacingFraction)
	}
}

// ===========================================================================
// Derived Settings
// ===========================================================================

func TestConfig_AlertSpacing_DerivedFromTriggerInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.TriggerInterval = 5 * time.Minute
	cfg.Pipeline.AlertSpacingFraction = 0.8

	if got := cfg.AlertSpacing(); got != 4*time.Minute {
		t.Errorf("expected spacing 4m, got %v", got)
	}
}

func TestConfig_EnvironmentPredicates(t *testing.T) {
	cfg := validConfig()

	if !cfg.IsDevelopment() {
		t.Error("expected development predicate to hold")
	}
	if cfg.IsProduction() {
		t.Error("expected production predicate to be false")
	}

	cfg.Server.Env = "production"
	if !cfg.IsProduction() {
		t.Error("expected production predicate to hold")
	}
}
