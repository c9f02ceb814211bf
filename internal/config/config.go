package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// DefaultBaseURL is the public NLB Catalogue v2 endpoint.
const DefaultBaseURL = "https://openweb.nlb.gov.sg/api/v2/Catalogue"

// Config holds the complete application configuration
type Config struct {
	// Application information
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`

	// Upstream catalogue API
	Catalogue CatalogueConfig `yaml:"catalogue" json:"catalogue"`

	// MCP Server configuration
	MCPServer MCPServerConfig `yaml:"mcp_server" json:"mcp_server"`

	// Logging configuration
	Log LogConfig `yaml:"log" json:"log"`
}

// CatalogueConfig holds the upstream API credentials and call budget
type CatalogueConfig struct {
	APIKey    string `yaml:"api_key" json:"api_key"`
	AppCode   string `yaml:"app_code" json:"app_code"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	UserAgent string `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`

	// TimeoutMS is the per-call budget in milliseconds
	TimeoutMS int `yaml:"timeout_ms" json:"timeout_ms"`

	// RateLimitRPS caps outbound requests per second; 0 disables the limiter
	RateLimitRPS float64 `yaml:"rate_limit_rps,omitempty" json:"rate_limit_rps,omitempty"`

	Retry RetryConfig `yaml:"retry" json:"retry"`
}

// RetryConfig holds the retry policy for upstream calls
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait" json:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait" json:"max_wait"`
}

// MCPServerConfig holds MCP server configuration
type MCPServerConfig struct {
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Transport   TransportConfig `yaml:"transport" json:"transport"`
	Tools       ToolsConfig     `yaml:"tools,omitempty" json:"tools,omitempty"`
}

// TransportConfig holds transport configuration for MCP server
type TransportConfig struct {
	Type string `yaml:"type" json:"type"` // stdio, sse
	Host string `yaml:"host,omitempty" json:"host,omitempty"`
	Port int    `yaml:"port,omitempty" json:"port,omitempty"`
}

// ToolsConfig holds tools configuration for MCP server
type ToolsConfig struct {
	Enabled  []string `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Disabled []string `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// LogConfig controls the logger built in internal/logging
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // text, json
	Output string `yaml:"output" json:"output"` // stdout, stderr or a file path
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Name:    "nlb-mcp",
		Version: "0.1.0",
		Catalogue: CatalogueConfig{
			BaseURL:   DefaultBaseURL,
			UserAgent: "nlb-mcp/0.1.0",
			TimeoutMS: 10000,
			Retry: RetryConfig{
				MaxAttempts: 3,
				InitialWait: 300 * time.Millisecond,
				MaxWait:     2 * time.Second,
			},
		},
		MCPServer: MCPServerConfig{
			Description: "MCP server for the NLB library catalogue",
			Transport: TransportConfig{
				Type: "stdio",
				Host: "localhost",
				Port: 8080,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			// stdout carries the stdio transport
			Output: "stderr",
		},
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch filepath.Ext(configPath) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", filepath.Ext(configPath))
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name is required")
	}
	if c.Version == "" {
		return fmt.Errorf("application version is required")
	}

	if err := c.Catalogue.Validate(); err != nil {
		return err
	}

	switch c.MCPServer.Transport.Type {
	case "stdio":
	case "sse":
		if c.MCPServer.Transport.Port <= 0 || c.MCPServer.Transport.Port > 65535 {
			return fmt.Errorf("invalid port for sse transport: %d", c.MCPServer.Transport.Port)
		}
	default:
		return fmt.Errorf("unsupported transport type: %s", c.MCPServer.Transport.Type)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Log.Format)
	}

	return nil
}

// Validate checks credentials and the call budget
func (c *CatalogueConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("NLB_API_KEY is required")
	}
	if c.AppCode == "" {
		return fmt.Errorf("NLB_APP_CODE is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid catalogue base URL: %q", c.BaseURL)
	}

	if c.TimeoutMS <= 0 {
		return fmt.Errorf("request timeout must be > 0 ms, got %d", c.TimeoutMS)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit must be >= 0, got %v", c.RateLimitRPS)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be >= 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.MaxWait < c.Retry.InitialWait {
		return fmt.Errorf("retry max_wait (%s) is shorter than initial_wait (%s)", c.Retry.MaxWait, c.Retry.InitialWait)
	}

	return nil
}

// Timeout returns the per-call budget
func (c *CatalogueConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// IsToolEnabled checks if a tool is enabled based on configuration
func (t ToolsConfig) IsToolEnabled(toolName string) bool {
	for _, disabled := range t.Disabled {
		if disabled == toolName {
			return false
		}
	}

	// An empty enabled list means every tool
	if len(t.Enabled) == 0 {
		return true
	}

	for _, enabled := range t.Enabled {
		if enabled == toolName {
			return true
		}
	}
	return false
}
