package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variable names understood by Load.
const (
	EnvAPIKey       = "NLB_API_KEY"
	EnvAppCode      = "NLB_APP_CODE"
	EnvBaseURL      = "NLB_API_BASE"
	EnvTimeoutMS    = "REQUEST_TIMEOUT_MS"
	EnvMaxAttempts  = "NLB_MAX_ATTEMPTS"
	EnvRateLimitRPS = "NLB_RATE_LIMIT_RPS"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFormat    = "LOG_FORMAT"
	EnvLogOutput    = "LOG_OUTPUT"
	EnvTransport    = "MCP_TRANSPORT"
	EnvHost         = "MCP_HOST"
	EnvPort         = "MCP_PORT"
)

var envKeys = []string{
	EnvAPIKey, EnvAppCode, EnvBaseURL, EnvTimeoutMS, EnvMaxAttempts, EnvRateLimitRPS,
	EnvLogLevel, EnvLogFormat, EnvLogOutput, EnvTransport, EnvHost, EnvPort,
}

// LoadOptions controls where Load looks for settings
type LoadOptions struct {
	// ConfigPath is an optional YAML or JSON file
	ConfigPath string

	// EnvFile is loaded into the process environment; a missing file is ignored
	EnvFile string

	// Viper may carry command-line flags bound under the env key names.
	// A fresh instance is used when nil.
	Viper *viper.Viper
}

// Load builds the configuration from defaults, an optional file, the .env
// file and finally the environment (or bound flags), then validates it.
func Load(opts LoadOptions) (*Config, error) {
	cfg := DefaultConfig()
	if opts.ConfigPath != "" {
		loaded, err := LoadConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.EnvFile != "" {
		// godotenv never overrides variables already set in the environment
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := opts.Viper
	if v == nil {
		v = viper.New()
	}
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	applyOverrides(cfg, v)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyOverrides(cfg *Config, v *viper.Viper) {
	if v.IsSet(EnvAPIKey) {
		cfg.Catalogue.APIKey = strings.TrimSpace(v.GetString(EnvAPIKey))
	}
	if v.IsSet(EnvAppCode) {
		cfg.Catalogue.AppCode = strings.TrimSpace(v.GetString(EnvAppCode))
	}
	if v.IsSet(EnvBaseURL) {
		cfg.Catalogue.BaseURL = strings.TrimSpace(v.GetString(EnvBaseURL))
	}
	if v.IsSet(EnvTimeoutMS) {
		cfg.Catalogue.TimeoutMS = v.GetInt(EnvTimeoutMS)
	}
	if v.IsSet(EnvMaxAttempts) {
		cfg.Catalogue.Retry.MaxAttempts = v.GetInt(EnvMaxAttempts)
	}
	if v.IsSet(EnvRateLimitRPS) {
		cfg.Catalogue.RateLimitRPS = v.GetFloat64(EnvRateLimitRPS)
	}
	if v.IsSet(EnvLogLevel) {
		cfg.Log.Level = v.GetString(EnvLogLevel)
	}
	if v.IsSet(EnvLogFormat) {
		cfg.Log.Format = v.GetString(EnvLogFormat)
	}
	if v.IsSet(EnvLogOutput) {
		cfg.Log.Output = v.GetString(EnvLogOutput)
	}
	if v.IsSet(EnvTransport) {
		cfg.MCPServer.Transport.Type = strings.ToLower(v.GetString(EnvTransport))
	}
	if v.IsSet(EnvHost) {
		cfg.MCPServer.Transport.Host = v.GetString(EnvHost)
	}
	if v.IsSet(EnvPort) {
		cfg.MCPServer.Transport.Port = v.GetInt(EnvPort)
	}
}
