// Package config manages environment variables.
//
// It reads variables from the `.env` file (and `env.local` as a fallback),
// loads them into structured Go types (struct), and
// validates the blocks the server cannot start without so they
// can be reused accross the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from `.env` / `env.local`).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad server config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	pkgerrors "github.com/pkg/errors"
)

/*
	`koanf` reads config sources and unmarshals them into the Config struct.

	Key idea in this file:
	- Vapi credentials keep their well-known names: VAPI_PRIVATE_KEY -> vapi.private_key
	- PORT is read unprefixed -> server.port
	- Everything else uses the RELAY_ prefix, and the first "_" after the prefix
	  becomes the nesting delimiter:
	  RELAY_SERVER_READ_TIMEOUT -> server.read_timeout -> Config.Server.ReadTimeout
*/

// DefaultEnvFiles are loaded in order. Earlier files win, and the process
// environment wins over all of them.
var DefaultEnvFiles = EnvFiles()

// EnvFiles lists `.env` and `env.local` in the working directory, followed by
// the `env.local` that sits next to the running binary.
func EnvFiles() []string {
	files := []string{".env", "env.local"}

	exe, err := os.Executable()
	if err != nil {
		return files
	}

	local := filepath.Join(filepath.Dir(exe), "env.local")
	if abs, err := filepath.Abs("env.local"); err == nil && abs == local {
		return files
	}

	return append(files, local)
}

const (
	// ServiceName identifies this service in logs and APM dashboards.
	ServiceName = "call-relay"

	// DefaultPort is used when PORT is not set.
	DefaultPort = "3000"

	// DefaultVapiBaseURL is the public Vapi API host.
	DefaultVapiBaseURL = "https://api.vapi.ai"

	// PublicKeyPrefix marks a client-safe Vapi key that must never be used server side.
	PublicKeyPrefix = "pk_"
)

// Config is the root configuration object for the application.
//
// The `validate:"required"` tags are used by go-playground/validator.
// Vapi is deliberately not validated here: missing credentials are reported
// per request by the call endpoint, so the server still starts and serves
// its page, health and preflight routes.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Vapi          VapiConfig           `koanf:"vapi"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are seconds.
type ServerConfig struct {
	Port         string `koanf:"port" validate:"required"`
	ReadTimeout  int    `koanf:"read_timeout" validate:"required"`
	WriteTimeout int    `koanf:"write_timeout" validate:"required"`
	IdleTimeout  int    `koanf:"idle_timeout" validate:"required"`

	// IndexFile is the static page served at "/".
	IndexFile string `koanf:"index_file" validate:"required"`
}

// VapiConfig stores the credentials for the call-placement API.
//
// PrivateKey must be the secret (sk_) key. Putting it in env is common,
// but you still need to protect your `.env` file in deployments.
type VapiConfig struct {
	PrivateKey    string `koanf:"private_key"`
	AssistantID   string `koanf:"assistant_id"`
	PhoneNumberID string `koanf:"phone_number_id"`
	BaseURL       string `koanf:"base_url"`
}

// IsComplete reports whether all three credentials are present.
func (v VapiConfig) IsComplete() bool {
	return v.PrivateKey != "" && v.AssistantID != "" && v.PhoneNumberID != ""
}

// HasPublicKey reports whether PrivateKey is actually a publishable key.
func (v VapiConfig) HasPublicKey() bool {
	return strings.HasPrefix(v.PrivateKey, PublicKeyPrefix)
}

// Default returns the configuration used before any environment is applied.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:         DefaultPort,
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
			IndexFile:    "static/index.html",
		},
		Vapi: VapiConfig{
			BaseURL: DefaultVapiBaseURL,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig loads configuration from env files and the process environment,
// unmarshals it over the defaults, validates it, and returns the result.
//
// Behavior summary:
//   - Loads envFiles (DefaultEnvFiles when none given), missing files are skipped
//   - Reads VAPI_*, PORT and RELAY_* variables through koanf
//   - Unmarshals on top of Default()
//   - Validates the server and observability blocks
//   - Forces observability service name + environment
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}

	// godotenv.Load never overwrites variables that are already set, so the
	// order of envFiles is the order of precedence.
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, pkgerrors.Wrapf(err, "could not load env file %s", file)
		}
	}

	// The "." is the key-path delimiter koanf uses to represent nesting.
	k := koanf.New(".")

	err := k.Load(env.Provider("VAPI_", ".", func(s string) string {
		return "vapi." + strings.ToLower(strings.TrimPrefix(s, "VAPI_"))
	}), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "could not load vapi env variables")
	}

	// An empty key tells the provider to skip the variable, so only PORT itself
	// survives this prefix match.
	err = k.Load(env.Provider("PORT", ".", func(s string) string {
		if s != "PORT" {
			return ""
		}
		return "server.port"
	}), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "could not load port env variable")
	}

	err = k.Load(env.Provider("RELAY_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "RELAY_")), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "could not load relay env variables")
	}

	// Unmarshal on top of the defaults: keys that are absent keep their default value.
	mainConfig := Default()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, pkgerrors.Wrap(err, "could not unmarshal main config")
	}

	if mainConfig.Vapi.BaseURL == "" {
		mainConfig.Vapi.BaseURL = DefaultVapiBaseURL
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, pkgerrors.Wrap(err, "config validation failed")
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Force service name and environment values regardless of what user set.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, pkgerrors.Wrap(err, "invalid observability config")
	}

	return mainConfig, nil
}
