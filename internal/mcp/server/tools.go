package server

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"nlb-mcp/internal/branches"
	"nlb-mcp/internal/jsonutil"
	"nlb-mcp/internal/logging"
	"nlb-mcp/internal/normalize"
	"nlb-mcp/internal/service"
)

// Tool names exposed to MCP clients.
const (
	ToolHealthCheck          = "health_check"
	ToolSearchTitles         = "search_titles"
	ToolSearchTitlesAdvanced = "search_titles_advanced"
	ToolAvailabilityByTitle  = "availability_by_title"
	ToolAvailabilityAtBranch = "availability_at_branch"
	ToolListBranches         = "list_branches"
)

// CatalogueService is the domain layer behind the tools.
type CatalogueService interface {
	Health() map[string]interface{}
	SearchTitles(ctx context.Context, q service.SearchQuery) (*service.TitleListing, error)
	SearchTitlesAdvanced(ctx context.Context, q service.AdvancedQuery) (*service.TitleListing, error)
	AvailabilityByTitle(ctx context.Context, q service.AvailabilityQuery) ([]normalize.Availability, error)
	AvailabilityAtBranch(ctx context.Context, q service.AvailabilityQuery) ([]normalize.Availability, error)
	ListBranches(filter string) []branches.Branch
}

// ToolManager manages MCP tools for catalogue operations
type ToolManager struct {
	svc        CatalogueService
	config     *Config
	logger     logging.Logger
	registered []string
}

// NewToolManager creates a new tool manager
func NewToolManager(svc CatalogueService, config *Config, logger logging.Logger) *ToolManager {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &ToolManager{
		svc:    svc,
		config: config,
		logger: logger,
	}
}

// RegisterTools registers all enabled tools with the MCP server
func (tm *ToolManager) RegisterTools(s *server.MCPServer) error {
	identifierOpts := []mcp.ToolOption{
		mcp.WithString("bib_id",
			mcp.Description("Bibliographic record number (BRN) from a search result"),
		),
		mcp.WithString("isbn",
			mcp.Description("ISBN of the title"),
		),
		mcp.WithString("control_no",
			mcp.Description("Catalogue control number"),
		),
	}

	tools := []struct {
		tool    mcp.Tool
		handler server.ToolHandlerFunc
	}{
		{
			mcp.NewTool(ToolHealthCheck,
				mcp.WithDescription("Validate config and startup readiness."),
			),
			tm.handleHealthCheck,
		},
		{
			mcp.NewTool(ToolSearchTitles,
				mcp.WithDescription("Search NLB catalogue by keyword (BRN/ISBN/Title/Author/Subject)."),
				mcp.WithString("keywords",
					mcp.Required(),
					mcp.Description("Free-text keywords"),
				),
				mcp.WithNumber("limit",
					mcp.Description("Maximum results to request (1-100)"),
				),
				mcp.WithString("sort_fields",
					mcp.Description("Upstream sort expression, at most 100 characters"),
				),
				mcp.WithString("source",
					mcp.Description("Restrict results to a source collection"),
				),
			),
			tm.handleSearchTitles,
		},
		{
			mcp.NewTool(ToolSearchTitlesAdvanced,
				mcp.WithDescription("Fielded search for titles with optional author/subject/ISBN filters and pagination."),
				mcp.WithString("keywords", mcp.Description("Free-text keywords")),
				mcp.WithString("title", mcp.Description("Title words")),
				mcp.WithString("author", mcp.Description("Author name")),
				mcp.WithString("subject", mcp.Description("Subject heading")),
				mcp.WithString("isbn", mcp.Description("ISBN")),
				mcp.WithNumber("limit", mcp.Description("Maximum results to request (1-100)")),
				mcp.WithString("sort_fields", mcp.Description("Upstream sort expression, at most 100 characters")),
				mcp.WithNumber("set_id", mcp.Description("setId from a previous page")),
				mcp.WithNumber("offset", mcp.Description("nextRecordsOffset from a previous page")),
			),
			tm.handleSearchTitlesAdvanced,
		},
		{
			mcp.NewTool(ToolAvailabilityByTitle, append([]mcp.ToolOption{
				mcp.WithDescription("Get item availability for a title/ISBN with branch breakdown."),
				mcp.WithString("branch_id",
					mcp.Description("Optional branch code to narrow the result"),
				),
			}, identifierOpts...)...),
			tm.handleAvailabilityByTitle,
		},
		{
			mcp.NewTool(ToolAvailabilityAtBranch, append([]mcp.ToolOption{
				mcp.WithDescription("Get item availability for a title/ISBN at a specific branch."),
				mcp.WithString("branch_id",
					mcp.Required(),
					mcp.Description("Branch code, see list_branches"),
				),
			}, identifierOpts...)...),
			tm.handleAvailabilityAtBranch,
		},
		{
			mcp.NewTool(ToolListBranches,
				mcp.WithDescription("List branch codes and names (C005 Library Location). Optional substring filter via 'filter'."),
				mcp.WithString("filter",
					mcp.Description("Case-insensitive substring of the code or name"),
				),
			),
			tm.handleListBranches,
		},
	}

	for _, t := range tools {
		if !tm.config.IsToolEnabled(t.tool.Name) {
			tm.logger.Debug("tool disabled", logging.String("tool", t.tool.Name))
			continue
		}
		s.AddTool(t.tool, t.handler)
		tm.registered = append(tm.registered, t.tool.Name)
	}
	return nil
}

// Registered returns the names of the tools added by RegisterTools.
func (tm *ToolManager) Registered() []string {
	return append([]string(nil), tm.registered...)
}

func (tm *ToolManager) handleHealthCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return tm.result(tm.svc.Health())
}

func (tm *ToolManager) handleSearchTitles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keywords, err := request.RequireString("keywords")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit, err := optionalInt(request, "limit")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	listing, err := tm.svc.SearchTitles(ctx, service.SearchQuery{
		Keywords:   keywords,
		Limit:      limit,
		SortFields: request.GetString("sort_fields", ""),
		Source:     request.GetString("source", ""),
	})
	if err != nil {
		return tm.failure(ToolSearchTitles, err), nil
	}
	return tm.result(listing)
}

func (tm *ToolManager) handleSearchTitlesAdvanced(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := service.AdvancedQuery{
		Keywords:   request.GetString("keywords", ""),
		Title:      request.GetString("title", ""),
		Author:     request.GetString("author", ""),
		Subject:    request.GetString("subject", ""),
		ISBN:       request.GetString("isbn", ""),
		SortFields: request.GetString("sort_fields", ""),
	}

	var err error
	for _, arg := range []struct {
		name string
		dst  **int
	}{{"limit", &q.Limit}, {"set_id", &q.SetID}, {"offset", &q.Offset}} {
		if *arg.dst, err = optionalInt(request, arg.name); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	listing, err := tm.svc.SearchTitlesAdvanced(ctx, q)
	if err != nil {
		return tm.failure(ToolSearchTitlesAdvanced, err), nil
	}
	return tm.result(listing)
}

func (tm *ToolManager) handleAvailabilityByTitle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := tm.svc.AvailabilityByTitle(ctx, availabilityQuery(request))
	if err != nil {
		return tm.failure(ToolAvailabilityByTitle, err), nil
	}
	return tm.result(items)
}

func (tm *ToolManager) handleAvailabilityAtBranch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := tm.svc.AvailabilityAtBranch(ctx, availabilityQuery(request))
	if err != nil {
		return tm.failure(ToolAvailabilityAtBranch, err), nil
	}
	return tm.result(items)
}

func (tm *ToolManager) handleListBranches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return tm.result(tm.svc.ListBranches(request.GetString("filter", "")))
}

func availabilityQuery(request mcp.CallToolRequest) service.AvailabilityQuery {
	return service.AvailabilityQuery{
		BibID:     request.GetString("bib_id", ""),
		ISBN:      request.GetString("isbn", ""),
		ControlNo: request.GetString("control_no", ""),
		BranchID:  request.GetString("branch_id", ""),
	}
}

// result encodes v as the JSON text content of a successful call.
func (tm *ToolManager) result(v interface{}) (*mcp.CallToolResult, error) {
	text, err := jsonutil.Encode(v, false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// failure turns a service error into a tool error result. Validation
// messages pass through untouched.
func (tm *ToolManager) failure(tool string, err error) *mcp.CallToolResult {
	if !service.IsValidation(err) {
		tm.logger.Warn("tool call failed", logging.String("tool", tool), logging.Err(err))
	}
	return mcp.NewToolResultError(err.Error())
}

// optionalInt reads an integer argument that may be absent. JSON clients
// send numbers as float64; some send numeric strings.
func optionalInt(request mcp.CallToolRequest, name string) (*int, error) {
	raw, ok := request.GetArguments()[name]
	if !ok || raw == nil {
		return nil, nil
	}

	var n int
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%s must be an integer", name)
		}
		// saturate; ClampLimit caps oversized values
		v = math.Max(math.Min(v, math.MaxInt32), math.MinInt32)
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(max(min(v, math.MaxInt32), math.MinInt32))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseInt(s, 10, 32)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("%s must be an integer", name)
		}
		n = int(parsed)
	default:
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &n, nil
}
