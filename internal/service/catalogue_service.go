package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"nlb-mcp/internal/branches"
	"nlb-mcp/internal/catalogue"
	"nlb-mcp/internal/config"
	"nlb-mcp/internal/logging"
	"nlb-mcp/internal/normalize"
)

// Catalogue is the upstream API the service calls.
type Catalogue interface {
	SearchTitles(ctx context.Context, p catalogue.SearchTitlesParams) (interface{}, error)
	GetTitles(ctx context.Context, p catalogue.GetTitlesParams) (interface{}, error)
	GetAvailabilityInfo(ctx context.Context, p catalogue.AvailabilityParams) (interface{}, error)
	Health() map[string]interface{}
}

// SearchQuery holds the inputs of a keyword search.
type SearchQuery struct {
	Keywords   string `json:"keywords"`
	Limit      *int   `json:"limit,omitempty"`
	SortFields string `json:"sort_fields,omitempty"`
	Source     string `json:"source,omitempty"`
}

// AdvancedQuery holds the inputs of a fielded search.
type AdvancedQuery struct {
	Keywords   string `json:"keywords,omitempty"`
	Title      string `json:"title,omitempty"`
	Author     string `json:"author,omitempty"`
	Subject    string `json:"subject,omitempty"`
	ISBN       string `json:"isbn,omitempty"`
	Limit      *int   `json:"limit,omitempty"`
	SortFields string `json:"sort_fields,omitempty"`
	SetID      *int   `json:"set_id,omitempty"` // from a previous page
	Offset     *int   `json:"offset,omitempty"` // from a previous page
}

// AvailabilityQuery identifies a title and optionally a branch.
type AvailabilityQuery struct {
	BibID     string `json:"bib_id,omitempty"`
	ISBN      string `json:"isbn,omitempty"`
	ControlNo string `json:"control_no,omitempty"`
	BranchID  string `json:"branch_id,omitempty"`
}

// CatalogueService implements the catalogue tools on top of the upstream
// client, the normalizer and the branch directory.
type CatalogueService struct {
	client   Catalogue
	branches *branches.Directory
	logger   logging.Logger
	newID    func() string
}

// NewCatalogueService creates a CatalogueService. A nil logger disables logging.
func NewCatalogueService(client Catalogue, dir *branches.Directory, logger logging.Logger) *CatalogueService {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &CatalogueService{
		client:   client,
		branches: dir,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// NewFromConfig wires the upstream client and the built-in branch directory.
func NewFromConfig(cfg *config.Config, logger logging.Logger) (*CatalogueService, error) {
	if logger == nil {
		logger = logging.NewNoop()
	}
	dir, err := branches.Default()
	if err != nil {
		return nil, err
	}

	client := catalogue.NewClient(cfg.Catalogue, catalogue.WithLogger(logger.With(logging.String("component", "catalogue"))))
	return NewCatalogueService(client, dir, logger.With(logging.String("component", "service"))), nil
}

// Health reports readiness without calling the catalogue.
func (s *CatalogueService) Health() map[string]interface{} {
	return s.client.Health()
}

// SearchTitles runs a keyword search and returns the top titles.
func (s *CatalogueService) SearchTitles(ctx context.Context, q SearchQuery) (*TitleListing, error) {
	if blank(q.Keywords) {
		return nil, invalid("keywords is required")
	}
	limit, err := ClampLimit(q.Limit)
	if err != nil {
		return nil, err
	}
	sortFields, err := ValidateSort(q.SortFields)
	if err != nil {
		return nil, err
	}

	log := s.begin("search_titles",
		logging.Bool("has_keywords", true),
		logging.Bool("has_source", !blank(q.Source)),
	)

	raw, err := s.client.SearchTitles(ctx, catalogue.SearchTitlesParams{
		Keywords:   strings.TrimSpace(q.Keywords),
		Source:     strings.TrimSpace(q.Source),
		Limit:      limitValue(limit),
		SortFields: sortFields,
	})
	if err != nil {
		log.Error("search_titles failed", err)
		return nil, err
	}

	listing := NewTitleListing(normalize.Titles(raw), MaxTitles)
	log.Debug("search_titles done", logging.Int("titles", len(listing.Titles)))
	return &listing, nil
}

// SearchTitlesAdvanced runs a fielded search with optional paging.
func (s *CatalogueService) SearchTitlesAdvanced(ctx context.Context, q AdvancedQuery) (*TitleListing, error) {
	if blank(q.Keywords) && blank(q.Title) && blank(q.Author) && blank(q.Subject) && blank(q.ISBN) {
		return nil, invalid("Provide at least one search field: keywords, title, author, subject, or isbn")
	}
	limit, err := ClampLimit(q.Limit)
	if err != nil {
		return nil, err
	}
	sortFields, err := ValidateSort(q.SortFields)
	if err != nil {
		return nil, err
	}
	if err := validateOffset("set_id", q.SetID); err != nil {
		return nil, err
	}
	if err := validateOffset("offset", q.Offset); err != nil {
		return nil, err
	}

	log := s.begin("search_titles_advanced",
		logging.Bool("has_keywords", !blank(q.Keywords)),
		logging.Bool("has_title", !blank(q.Title)),
		logging.Bool("has_author", !blank(q.Author)),
		logging.Bool("has_subject", !blank(q.Subject)),
		logging.Bool("has_isbn", !blank(q.ISBN)),
	)

	raw, err := s.client.GetTitles(ctx, catalogue.GetTitlesParams{
		Keywords:   strings.TrimSpace(q.Keywords),
		Title:      strings.TrimSpace(q.Title),
		Author:     strings.TrimSpace(q.Author),
		Subject:    strings.TrimSpace(q.Subject),
		ISBN:       strings.TrimSpace(q.ISBN),
		Limit:      limitValue(limit),
		SortFields: sortFields,
		SetID:      q.SetID,
		Offset:     q.Offset,
	})
	if err != nil {
		log.Error("search_titles_advanced failed", err)
		return nil, err
	}

	listing := NewTitleListing(normalize.Titles(raw), MaxTitles)
	log.Debug("search_titles_advanced done", logging.Int("titles", len(listing.Titles)))
	return &listing, nil
}

// AvailabilityByTitle lists item availability across branches, or at one
// branch when BranchID is set.
func (s *CatalogueService) AvailabilityByTitle(ctx context.Context, q AvailabilityQuery) ([]normalize.Availability, error) {
	if err := ValidateIdentifiers(q.BibID, q.ISBN, q.ControlNo); err != nil {
		return nil, err
	}

	log := s.begin("availability_by_title",
		logging.Bool("has_bib", !blank(q.BibID)),
		logging.Bool("has_isbn", !blank(q.ISBN)),
		logging.Bool("has_control", !blank(q.ControlNo)),
		logging.Bool("has_branch", !blank(q.BranchID)),
	)
	return s.availability(ctx, log, "availability_by_title", q)
}

// AvailabilityAtBranch lists item availability at a single branch.
func (s *CatalogueService) AvailabilityAtBranch(ctx context.Context, q AvailabilityQuery) ([]normalize.Availability, error) {
	if blank(q.BranchID) {
		return nil, invalid("branch_id is required")
	}
	if err := ValidateIdentifiers(q.BibID, q.ISBN, q.ControlNo); err != nil {
		return nil, err
	}

	log := s.begin("availability_at_branch",
		logging.Bool("has_bib", !blank(q.BibID)),
		logging.Bool("has_isbn", !blank(q.ISBN)),
		logging.Bool("has_control", !blank(q.ControlNo)),
		logging.String("branch", strings.TrimSpace(q.BranchID)),
	)
	if s.branches != nil {
		if _, ok := s.branches.Find(q.BranchID); !ok {
			log.Warn("branch not in directory")
		}
	}
	return s.availability(ctx, log, "availability_at_branch", q)
}

func (s *CatalogueService) availability(ctx context.Context, log logging.Logger, tool string, q AvailabilityQuery) ([]normalize.Availability, error) {
	raw, err := s.client.GetAvailabilityInfo(ctx, catalogue.AvailabilityParams{
		BID:       strings.TrimSpace(q.BibID),
		ISBN:      strings.TrimSpace(q.ISBN),
		ControlNo: strings.TrimSpace(q.ControlNo),
		BranchID:  strings.TrimSpace(q.BranchID),
	})
	if err != nil {
		log.Error(tool+" failed", err)
		return nil, err
	}

	items := normalize.Items(raw)
	log.Debug(tool+" done", logging.Int("items", len(items)))
	return items, nil
}

// ListBranches returns branch codes and names, optionally filtered by a
// case-insensitive substring of either.
func (s *CatalogueService) ListBranches(filter string) []branches.Branch {
	if s.branches == nil {
		return []branches.Branch{}
	}
	return s.branches.Filter(filter)
}

// begin tags a tool invocation with a fresh request id and logs the call.
func (s *CatalogueService) begin(tool string, fields ...logging.Field) logging.Logger {
	log := s.logger.With(logging.String("request_id", s.newID()), logging.String("tool", tool))
	log.Info("tool "+tool+" called", fields...)
	return log
}
