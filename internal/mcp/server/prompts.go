package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// PromptFindBookNearby walks an assistant from a search to branch availability.
const PromptFindBookNearby = "find_book_nearby"

// PromptManager manages MCP prompts
type PromptManager struct {
	svc    CatalogueService
	config *Config
}

// NewPromptManager creates a new prompt manager
func NewPromptManager(svc CatalogueService, config *Config) *PromptManager {
	return &PromptManager{
		svc:    svc,
		config: config,
	}
}

// RegisterPrompts registers all available prompts with the MCP server
func (pm *PromptManager) RegisterPrompts(s *server.MCPServer) error {
	findBookPrompt := mcp.NewPrompt(PromptFindBookNearby,
		mcp.WithPromptDescription("Find a book and check whether a nearby branch has a copy"),
		mcp.WithArgument("query",
			mcp.ArgumentDescription("Title, author or keywords of the book"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("branch",
			mcp.ArgumentDescription("Preferred branch name or code"),
		),
	)
	s.AddPrompt(findBookPrompt, pm.handleFindBookPrompt)

	return nil
}

func (pm *PromptManager) handleFindBookPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	query := getStringArg(req.Params.Arguments, "query", "")
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	branch := getStringArg(req.Params.Arguments, "branch", "")

	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("Help me find \"%s\" in the NLB catalogue.\n\n", query))
	prompt.WriteString("Steps:\n")
	prompt.WriteString(fmt.Sprintf("1. Call %s with keywords \"%s\" and pick the best matching title.\n", ToolSearchTitles, query))
	prompt.WriteString(fmt.Sprintf("   If nothing fits, retry with %s using title or author.\n", ToolSearchTitlesAdvanced))

	if branch == "" {
		prompt.WriteString(fmt.Sprintf("2. Call %s with the record's brn as bib_id.\n", ToolAvailabilityByTitle))
		prompt.WriteString("3. Summarise which branches have copies available.\n")
	} else {
		matches := pm.svc.ListBranches(branch)
		switch len(matches) {
		case 0:
			prompt.WriteString(fmt.Sprintf("2. No branch matches \"%s\"; call %s to choose one.\n", branch, ToolListBranches))
		case 1:
			prompt.WriteString(fmt.Sprintf("2. Call %s with branch_id \"%s\" (%s) and the record's brn as bib_id.\n",
				ToolAvailabilityAtBranch, matches[0].Code, matches[0].Name))
		default:
			codes := make([]string, 0, len(matches))
			for _, b := range matches {
				codes = append(codes, fmt.Sprintf("%s (%s)", b.Code, b.Name))
			}
			prompt.WriteString(fmt.Sprintf("2. \"%s\" matches several branches: %s. Ask which one, then call %s.\n",
				branch, strings.Join(codes, ", "), ToolAvailabilityAtBranch))
		}
		prompt.WriteString(fmt.Sprintf("3. If no copy is available there, fall back to %s for all branches.\n", ToolAvailabilityByTitle))
	}

	return mcp.NewGetPromptResult(
		"Find a book near me",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(prompt.String())),
		},
	), nil
}

func getStringArg(args map[string]string, key, defaultValue string) string {
	if v := strings.TrimSpace(args[key]); v != "" {
		return v
	}
	return defaultValue
}
