package config

import (
	"github.com/pkg/errors"
)

// ObservabilityConfig groups all configuration related to telemetry and runtime visibility.
//
// This includes:
//   - logging settings (format, level)
//   - APM/tracing provider settings (New Relic here)
//
// Keys are flat under "observability" so a single RELAY_OBSERVABILITY_ prefix
// addresses every field, e.g. RELAY_OBSERVABILITY_LOG_LEVEL.
type ObservabilityConfig struct {
	// ServiceName identifies this service in logs/traces/APM dashboards.
	// Always forced to ServiceName by LoadConfig.
	ServiceName string `koanf:"service_name" validate:"required"`

	// Environment is a label used to split telemetry by environment.
	// Always derived from Primary.Env by LoadConfig.
	Environment string `koanf:"environment" validate:"required"`

	// LogLevel is the verbosity threshold (debug/info/warn/error).
	// Empty means "pick by environment", see GetLogLevel.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the output format for logs ("json" or "console").
	LogFormat string `koanf:"log_format"`

	// NewRelicLicenseKey is the New Relic ingest key. Empty means "not configured".
	NewRelicLicenseKey string `koanf:"new_relic_license_key"`

	// NewRelicAppLogForwardingEnabled forwards application logs to New Relic.
	NewRelicAppLogForwardingEnabled bool `koanf:"new_relic_app_log_forwarding_enabled"`

	// NewRelicDistributedTracingEnabled enables distributed tracing across
	// the relay and the outbound call.
	NewRelicDistributedTracingEnabled bool `koanf:"new_relic_distributed_tracing_enabled"`

	// NewRelicDebugLogging enables agent debug output.
	NewRelicDebugLogging bool `koanf:"new_relic_debug_logging"`
}

// DefaultObservabilityConfig provides a safe set of defaults.
//
// Used before the environment is applied and whenever Config.Observability is nil.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: ServiceName,
		Environment: "development",

		LogLevel:  "",
		LogFormat: "json",

		NewRelicLicenseKey:                "",
		NewRelicAppLogForwardingEnabled:   true,
		NewRelicDistributedTracingEnabled: true,
		NewRelicDebugLogging:              false, // Disabled by default to avoid mixed log formats
	}
}

// Validate applies custom validation rules that go beyond struct tags.
//
// Returns:
//   - nil if configuration is valid
//   - an error describing the first validation failure
func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return errors.New("service_name is required")
	}

	validLevels := map[string]bool{
		"":      true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.LogLevel] {
		return errors.Errorf("invalid log_level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.LogFormat] {
		return errors.Errorf("invalid log_format: %s (must be one of: json, console)", c.LogFormat)
	}

	return nil
}

// GetLogLevel returns the effective log level to use at runtime.
//
// It supports "defaulting by environment":
//   - In production: default to "info" if no level is set.
//   - Elsewhere: default to "debug" if no level is set.
func (c *ObservabilityConfig) GetLogLevel() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}

	if c.IsProduction() {
		return "info"
	}

	return "debug"
}

// IsProduction reports whether the application is running in production mode.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}

// NewRelicEnabled reports whether a license key was supplied.
func (c *ObservabilityConfig) NewRelicEnabled() bool {
	return c.NewRelicLicenseKey != ""
}
