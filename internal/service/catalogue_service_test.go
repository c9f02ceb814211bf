package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nlb-mcp/internal/branches"
	"nlb-mcp/internal/catalogue"
	"nlb-mcp/internal/config"
	"nlb-mcp/internal/logging"
)

// fakeCatalogue records calls and replays canned payloads.
type fakeCatalogue struct {
	payload interface{}
	err     error

	searchCalls []catalogue.SearchTitlesParams
	titleCalls  []catalogue.GetTitlesParams
	availCalls  []catalogue.AvailabilityParams
}

func (f *fakeCatalogue) SearchTitles(_ context.Context, p catalogue.SearchTitlesParams) (interface{}, error) {
	f.searchCalls = append(f.searchCalls, p)
	return f.payload, f.err
}

func (f *fakeCatalogue) GetTitles(_ context.Context, p catalogue.GetTitlesParams) (interface{}, error) {
	f.titleCalls = append(f.titleCalls, p)
	return f.payload, f.err
}

func (f *fakeCatalogue) GetAvailabilityInfo(_ context.Context, p catalogue.AvailabilityParams) (interface{}, error) {
	f.availCalls = append(f.availCalls, p)
	return f.payload, f.err
}

func (f *fakeCatalogue) Health() map[string]interface{} {
	return map[string]interface{}{"status": "ok"}
}

func (f *fakeCatalogue) calls() int {
	return len(f.searchCalls) + len(f.titleCalls) + len(f.availCalls)
}

func payload(t *testing.T, s string) interface{} {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v interface{}
	require.NoError(t, dec.Decode(&v))
	return v
}

func newTestService(t *testing.T, fake *fakeCatalogue) *CatalogueService {
	t.Helper()
	dir, err := branches.Default()
	require.NoError(t, err)
	return NewCatalogueService(fake, dir, nil)
}

func intPtr(n int) *int { return &n }

func titlesPayload(n int) string {
	items := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, fmt.Sprintf(`{"title":"Book %c","records":[{"brn":%d,"format":{"code":"BK","name":"Book"},"availability":true}]}`, 'A'+i-1, i))
	}
	return fmt.Sprintf(`{"totalRecords":42,"count":%d,"hasMoreRecords":true,"nextRecordsOffset":%d,"setId":7,"titles":[%s]}`, n, n, strings.Join(items, ","))
}

func TestSearchTitles_TrimsToTopTitles(t *testing.T) {
	fake := &fakeCatalogue{payload: payload(t, titlesPayload(8))}
	svc := newTestService(t, fake)

	got, err := svc.SearchTitles(context.Background(), SearchQuery{Keywords: "  dune  ", Limit: intPtr(500), Source: " nlb "})
	require.NoError(t, err)

	require.Len(t, fake.searchCalls, 1)
	assert.Equal(t, catalogue.SearchTitlesParams{Keywords: "dune", Source: "nlb", Limit: 100}, fake.searchCalls[0])

	require.Len(t, got.Titles, MaxTitles)
	assert.Equal(t, "Book A", got.Titles[0].Title)
	assert.Equal(t, "Book E", got.Titles[4].Title)
	require.NotNil(t, got.Count)
	assert.Equal(t, int64(MaxTitles), *got.Count)
	assert.Equal(t, int64(42), *got.TotalRecords)
	assert.Equal(t, int64(7), *got.SetID)

	rec := got.Titles[0].Records[0]
	assert.Equal(t, int64(1), *rec.BRN)
	assert.Equal(t, "Book", rec.Format)
	assert.True(t, *rec.Availability)
}

func TestSearchTitles_CountBelowCapKept(t *testing.T) {
	fake := &fakeCatalogue{payload: payload(t, titlesPayload(2))}
	svc := newTestService(t, fake)

	got, err := svc.SearchTitles(context.Background(), SearchQuery{Keywords: "x"})
	require.NoError(t, err)
	assert.Len(t, got.Titles, 2)
	assert.Equal(t, int64(2), *got.Count)
	assert.Equal(t, 0, fake.searchCalls[0].Limit)
}

func TestSearchTitles_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query SearchQuery
		want  string
	}{
		{"missing keywords", SearchQuery{Keywords: "  "}, "keywords is required"},
		{"zero limit", SearchQuery{Keywords: "a", Limit: intPtr(0)}, "limit must be >= 1"},
		{"negative limit", SearchQuery{Keywords: "a", Limit: intPtr(-3)}, "limit must be >= 1"},
		{"long sort", SearchQuery{Keywords: "a", SortFields: strings.Repeat("x", 101)}, "sort_fields too long; max 100 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCatalogue{}
			svc := newTestService(t, fake)

			_, err := svc.SearchTitles(context.Background(), tt.query)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, tt.want, err.Error())
			assert.Zero(t, fake.calls())
		})
	}
}

func TestSearchTitles_UpstreamErrorUnchanged(t *testing.T) {
	upstream := &catalogue.StatusError{StatusCode: 503, Status: "Service Unavailable"}
	fake := &fakeCatalogue{err: upstream}
	svc := newTestService(t, fake)

	_, err := svc.SearchTitles(context.Background(), SearchQuery{Keywords: "a"})
	assert.Same(t, upstream, err)
	assert.False(t, IsValidation(err))
}

func TestSearchTitlesAdvanced(t *testing.T) {
	fake := &fakeCatalogue{payload: payload(t, titlesPayload(3))}
	svc := newTestService(t, fake)

	got, err := svc.SearchTitlesAdvanced(context.Background(), AdvancedQuery{
		Author:     " Herbert ",
		Subject:    "science fiction",
		Limit:      intPtr(10),
		SortFields: "title",
		SetID:      intPtr(0),
		Offset:     intPtr(20),
	})
	require.NoError(t, err)
	assert.Len(t, got.Titles, 3)

	require.Len(t, fake.titleCalls, 1)
	call := fake.titleCalls[0]
	assert.Equal(t, "Herbert", call.Author)
	assert.Equal(t, "science fiction", call.Subject)
	assert.Equal(t, 10, call.Limit)
	assert.Equal(t, "title", call.SortFields)
	require.NotNil(t, call.SetID)
	assert.Equal(t, 0, *call.SetID)
	assert.Equal(t, 20, *call.Offset)
}

func TestSearchTitlesAdvanced_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query AdvancedQuery
		want  string
	}{
		{"no fields", AdvancedQuery{Limit: intPtr(5)}, "Provide at least one search field: keywords, title, author, subject, or isbn"},
		{"bad limit", AdvancedQuery{Title: "x", Limit: intPtr(0)}, "limit must be >= 1"},
		{"bad offset", AdvancedQuery{Title: "x", Offset: intPtr(-1)}, "offset must be >= 0"},
		{"bad set id", AdvancedQuery{Title: "x", SetID: intPtr(-2)}, "set_id must be >= 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCatalogue{}
			svc := newTestService(t, fake)

			_, err := svc.SearchTitlesAdvanced(context.Background(), tt.query)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.Zero(t, fake.calls())
		})
	}
}

func TestAvailabilityByTitle(t *testing.T) {
	fake := &fakeCatalogue{payload: payload(t, `{"items":[
	  {"branchName":"Tampines Regional Library","status":"Available","available":1,"total":1},
	  {"status":"On Loan"}
	]}`)}
	svc := newTestService(t, fake)

	got, err := svc.AvailabilityByTitle(context.Background(), AvailabilityQuery{ISBN: " 9780441013593 "})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Tampines Regional Library", got[0].Branch)
	assert.Equal(t, "Unknown branch", got[1].Branch)

	assert.Equal(t, catalogue.AvailabilityParams{ISBN: "9780441013593"}, fake.availCalls[0])
}

func TestAvailabilityByTitle_NoIdentifiers(t *testing.T) {
	fake := &fakeCatalogue{}
	svc := newTestService(t, fake)

	_, err := svc.AvailabilityByTitle(context.Background(), AvailabilityQuery{BranchID: "TRL"})
	require.Error(t, err)
	assert.Equal(t, "Provide at least one identifier: bib_id, isbn, or control_no", err.Error())
	assert.Zero(t, fake.calls())
}

func TestAvailabilityAtBranch(t *testing.T) {
	fake := &fakeCatalogue{payload: payload(t, `{"Result":{"Items":[{"BranchID":"TRL","Status":"Available"}]}}`)}
	svc := newTestService(t, fake)

	got, err := svc.AvailabilityAtBranch(context.Background(), AvailabilityQuery{BibID: "12345", BranchID: " TRL "})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "TRL", got[0].Branch)
	assert.Equal(t, catalogue.AvailabilityParams{BID: "12345", BranchID: "TRL"}, fake.availCalls[0])
}

func TestAvailabilityAtBranch_Validation(t *testing.T) {
	fake := &fakeCatalogue{}
	svc := newTestService(t, fake)

	_, err := svc.AvailabilityAtBranch(context.Background(), AvailabilityQuery{BibID: "1"})
	require.Error(t, err)
	assert.Equal(t, "branch_id is required", err.Error())

	_, err = svc.AvailabilityAtBranch(context.Background(), AvailabilityQuery{BranchID: "TRL"})
	require.Error(t, err)
	assert.Equal(t, "Provide at least one identifier: bib_id, isbn, or control_no", err.Error())

	assert.Zero(t, fake.calls())
}

func TestListBranches(t *testing.T) {
	svc := newTestService(t, &fakeCatalogue{})

	all := svc.ListBranches("")
	assert.NotEmpty(t, all)

	regional := svc.ListBranches("REGIONAL")
	require.NotEmpty(t, regional)
	for _, b := range regional {
		assert.Contains(t, strings.ToLower(b.Name), "regional")
	}

	assert.Empty(t, svc.ListBranches("no such branch"))
	assert.Empty(t, NewCatalogueService(&fakeCatalogue{}, nil, nil).ListBranches(""))
}

func TestHealth(t *testing.T) {
	svc := newTestService(t, &fakeCatalogue{})
	assert.Equal(t, "ok", svc.Health()["status"])
}

func TestRequestIDLogged(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWithWriter(&buf, "debug", "json")
	require.NoError(t, err)

	fake := &fakeCatalogue{payload: payload(t, `{"titles":[]}`)}
	svc := NewCatalogueService(fake, nil, logger)
	svc.newID = func() string { return "req-1" }

	_, err = svc.SearchTitles(context.Background(), SearchQuery{Keywords: "secret words"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"tool":"search_titles"`)
	assert.Contains(t, out, `"has_keywords":true`)
	assert.NotContains(t, out, "secret words")
}

func TestValidationHelpers(t *testing.T) {
	got, err := ClampLimit(nil)
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = ClampLimit(intPtr(500))
	require.NoError(t, err)
	assert.Equal(t, 100, *got)

	got, err = ClampLimit(intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, 1, *got)

	_, err = ClampLimit(intPtr(0))
	assert.True(t, IsValidation(err))

	s, err := ValidateSort(strings.Repeat("a", 100))
	assert.NoError(t, err)
	assert.Len(t, s, 100)

	// length counts characters, not bytes
	_, err = ValidateSort(strings.Repeat("é", 100))
	assert.NoError(t, err)
	_, err = ValidateSort(strings.Repeat("é", 101))
	assert.True(t, IsValidation(err))

	assert.NoError(t, ValidateIdentifiers("", "", "C1"))
	assert.Error(t, ValidateIdentifiers(" ", "", ""))

	assert.False(t, IsValidation(errors.New("other")))
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Catalogue.APIKey = "k"
	cfg.Catalogue.AppCode = "a"

	svc, err := NewFromConfig(cfg, nil)
	require.NoError(t, err)

	health := svc.Health()
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, config.DefaultBaseURL, health["baseUrl"])
	assert.Equal(t, int64(10000), health["timeoutMs"])
	assert.NotEmpty(t, svc.ListBranches(""))
}
