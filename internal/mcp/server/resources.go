package server

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"nlb-mcp/internal/jsonutil"
)

// Resource URIs.
const (
	ResourceUsage    = "nlb://usage"
	ResourceBranches = "nlb://branches"
)

//go:embed usage.md
var usageGuide string

// ResourceManager manages MCP resources for the catalogue tools
type ResourceManager struct {
	svc    CatalogueService
	config *Config
}

// NewResourceManager creates a new resource manager
func NewResourceManager(svc CatalogueService, config *Config) *ResourceManager {
	return &ResourceManager{
		svc:    svc,
		config: config,
	}
}

// RegisterResources registers all available resources with the MCP server
func (rm *ResourceManager) RegisterResources(s *server.MCPServer) error {
	if !rm.config.EnableResources {
		return nil
	}

	usageResource := mcp.NewResource(
		ResourceUsage,
		"usage",
		mcp.WithResourceDescription("Usage guide for NLB MCP tools"),
		mcp.WithMIMEType("text/markdown"),
	)
	s.AddResource(usageResource, rm.handleUsageResource)

	branchesResource := mcp.NewResource(
		ResourceBranches,
		"branches",
		mcp.WithResourceDescription("Library branch codes and names"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(branchesResource, rm.handleBranchesResource)

	return nil
}

func (rm *ResourceManager) handleUsageResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     usageGuide,
		},
	}, nil
}

func (rm *ResourceManager) handleBranchesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text, err := jsonutil.Encode(rm.svc.ListBranches(""), false)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal branches: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     text,
		},
	}, nil
}
