// Package server hosts the catalogue tools, resources and prompts on an MCP
// server and serves it over stdio or SSE.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"nlb-mcp/internal/logging"
)

// New builds an MCP server with every enabled tool, the resources and the
// prompts registered.
func New(cfg *Config, svc CatalogueService, logger logging.Logger) (*server.MCPServer, *ToolManager, error) {
	mcpServer := server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions(cfg.Description),
		server.WithRecovery(),
	)

	toolManager := NewToolManager(svc, cfg, logger)
	if err := toolManager.RegisterTools(mcpServer); err != nil {
		return nil, nil, fmt.Errorf("failed to register tools: %w", err)
	}

	promptManager := NewPromptManager(svc, cfg)
	if err := promptManager.RegisterPrompts(mcpServer); err != nil {
		return nil, nil, fmt.Errorf("failed to register prompts: %w", err)
	}

	resourceManager := NewResourceManager(svc, cfg)
	if err := resourceManager.RegisterResources(mcpServer); err != nil {
		return nil, nil, fmt.Errorf("failed to register resources: %w", err)
	}

	return mcpServer, toolManager, nil
}
