package server

import (
	"fmt"
	"time"

	"nlb-mcp/internal/config"
)

// Config holds the configuration for the MCP server
type Config struct {
	// Server information
	Name        string
	Version     string
	Description string

	// Transport configuration
	Transport TransportConfig

	// Tool configuration
	Tools config.ToolsConfig

	// Resource configuration
	EnableResources bool

	// Upstream details surfaced in the usage resource
	BaseURL string
	Timeout time.Duration
}

// TransportConfig defines the transport layer configuration
type TransportConfig struct {
	Type string // stdio, sse

	// For SSE transport
	Host string
	Port int

	// Grace period for in-flight SSE sessions on shutdown
	ShutdownTimeout time.Duration
}

// Addr returns host:port for network transports.
func (t TransportConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// NewConfigFromUnified creates a server Config from the unified config
func NewConfigFromUnified(cfg *config.Config) *Config {
	return &Config{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Description: cfg.MCPServer.Description,
		Transport: TransportConfig{
			Type:            cfg.MCPServer.Transport.Type,
			Host:            cfg.MCPServer.Transport.Host,
			Port:            cfg.MCPServer.Transport.Port,
			ShutdownTimeout: 5 * time.Second,
		},
		Tools:           cfg.MCPServer.Tools,
		EnableResources: true,
		BaseURL:         cfg.Catalogue.BaseURL,
		Timeout:         cfg.Catalogue.Timeout(),
	}
}

// DefaultConfig returns a default server configuration for testing
func DefaultConfig() *Config {
	return NewConfigFromUnified(config.DefaultConfig())
}

// IsToolEnabled checks if a tool is enabled based on configuration
func (c *Config) IsToolEnabled(toolName string) bool {
	return c.Tools.IsToolEnabled(toolName)
}
