package command

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nlb-mcp/internal/branches"
	"nlb-mcp/internal/normalize"
	"nlb-mcp/internal/service"
)

type mockService struct {
	searches   []service.SearchQuery
	advanced   []service.AdvancedQuery
	byTitle    []service.AvailabilityQuery
	atBranch   []service.AvailabilityQuery
	listing    *service.TitleListing
	items      []normalize.Availability
	err        error
	lastFilter string
}

func (m *mockService) Health() map[string]interface{} {
	return map[string]interface{}{"status": "ok"}
}

func (m *mockService) SearchTitles(_ context.Context, q service.SearchQuery) (*service.TitleListing, error) {
	m.searches = append(m.searches, q)
	return m.listing, m.err
}

func (m *mockService) SearchTitlesAdvanced(_ context.Context, q service.AdvancedQuery) (*service.TitleListing, error) {
	m.advanced = append(m.advanced, q)
	return m.listing, m.err
}

func (m *mockService) AvailabilityByTitle(_ context.Context, q service.AvailabilityQuery) ([]normalize.Availability, error) {
	m.byTitle = append(m.byTitle, q)
	return m.items, m.err
}

func (m *mockService) AvailabilityAtBranch(_ context.Context, q service.AvailabilityQuery) ([]normalize.Availability, error) {
	m.atBranch = append(m.atBranch, q)
	return m.items, m.err
}

func (m *mockService) ListBranches(filter string) []branches.Branch {
	m.lastFilter = filter
	return []branches.Branch{{Code: "TRL", Name: "Tampines Regional Library"}}
}

func newHandler(m *mockService) (*Handler, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Handler{Svc: m, State: &ReplState{}, Out: &buf}, &buf
}

func int64Ptr(n int64) *int64 { return &n }
func boolPtr(b bool) *bool    { return &b }

func TestHandler_Search(t *testing.T) {
	m := &mockService{listing: &service.TitleListing{Titles: []service.BriefTitle{{Title: "Dune", Records: []service.BriefRecord{}}}}}
	h, out := newHandler(m)

	assert.True(t, h.Execute(`search frank herbert dune --limit=5 --source=nlb`))
	require.Len(t, m.searches, 1)
	assert.Equal(t, "frank herbert dune", m.searches[0].Keywords)
	assert.Equal(t, 5, *m.searches[0].Limit)
	assert.Equal(t, "nlb", m.searches[0].Source)
	assert.Equal(t, `{"titles":[{"title":"Dune","records":[]}]}`+"\n", out.String())
}

func TestHandler_SearchUsageAndErrors(t *testing.T) {
	m := &mockService{err: errors.New("limit must be >= 1")}
	h, out := newHandler(m)

	h.Execute("search")
	assert.Contains(t, out.String(), "Usage: search")

	out.Reset()
	h.Execute("search x --limit=abc")
	assert.Contains(t, out.String(), "--limit must be an integer")
	assert.Empty(t, m.searches)

	out.Reset()
	h.Execute("search x --limit=0")
	assert.Equal(t, "Search failed: limit must be >= 1\n", out.String())
}

func TestHandler_AdvancedAndNext(t *testing.T) {
	m := &mockService{listing: &service.TitleListing{
		HasMoreRecords:    boolPtr(true),
		NextRecordsOffset: int64Ptr(5),
		SetID:             int64Ptr(77),
		Titles:            []service.BriefTitle{},
	}}
	h, _ := newHandler(m)

	h.Execute(`advanced --author="Frank Herbert" --subject=fiction --limit=5`)
	require.Len(t, m.advanced, 1)
	assert.Equal(t, "Frank Herbert", m.advanced[0].Author)
	assert.Equal(t, "fiction", m.advanced[0].Subject)
	assert.Nil(t, m.advanced[0].Offset)

	h.Execute("next")
	require.Len(t, m.advanced, 2)
	assert.Equal(t, "Frank Herbert", m.advanced[1].Author)
	assert.Equal(t, 5, *m.advanced[1].Offset)
	assert.Equal(t, 77, *m.advanced[1].SetID)
}

func TestHandler_NextWithoutMore(t *testing.T) {
	m := &mockService{listing: &service.TitleListing{HasMoreRecords: boolPtr(false), NextRecordsOffset: int64Ptr(5)}}
	h, out := newHandler(m)

	h.Execute("next")
	assert.Contains(t, out.String(), "No further page")

	h.Execute("advanced dune")
	assert.Equal(t, "dune", m.advanced[0].Keywords)

	out.Reset()
	h.Execute("next")
	assert.Contains(t, out.String(), "No further page")
	assert.Len(t, m.advanced, 1)
}

func TestHandler_Avail(t *testing.T) {
	m := &mockService{items: []normalize.Availability{{Branch: "Unknown branch"}}}
	h, out := newHandler(m)

	h.Execute("avail 12345")
	require.Len(t, m.byTitle, 1)
	assert.Equal(t, "12345", m.byTitle[0].BibID)
	assert.Equal(t, `[{"branch":"Unknown branch"}]`+"\n", out.String())

	h.Execute("avail --isbn=978 --branch=TRL")
	require.Len(t, m.atBranch, 1)
	assert.Equal(t, service.AvailabilityQuery{ISBN: "978", BranchID: "TRL"}, m.atBranch[0])

	out.Reset()
	h.Execute("avail a b")
	assert.Contains(t, out.String(), "Usage: avail")
}

func TestHandler_BranchesHealthPretty(t *testing.T) {
	m := &mockService{}
	h, out := newHandler(m)

	h.Execute("branches tampines regional")
	assert.Equal(t, "tampines regional", m.lastFilter)
	assert.Contains(t, out.String(), `"code":"TRL"`)

	out.Reset()
	h.Execute("pretty on")
	assert.True(t, h.State.Pretty)
	h.Execute("health")
	assert.Contains(t, out.String(), "{\n  \"status\": \"ok\"\n}")

	h.Execute("pretty")
	assert.False(t, h.State.Pretty)

	out.Reset()
	h.Execute("pretty maybe")
	assert.Contains(t, out.String(), "Usage: pretty")
}

func TestHandler_ExitHelpUnknown(t *testing.T) {
	h, out := newHandler(&mockService{})

	assert.True(t, h.Execute(""))
	assert.True(t, h.Execute("help"))
	assert.Contains(t, out.String(), "Commands:")

	out.Reset()
	assert.True(t, h.Execute("frobnicate"))
	assert.Equal(t, "Unknown command\n", out.String())

	out.Reset()
	assert.True(t, h.Execute(`search "unterminated`))
	assert.Contains(t, out.String(), "unterminated quote")

	assert.False(t, h.Execute("exit"))
	assert.False(t, h.Execute("QUIT"))
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"search dune", []string{"search", "dune"}},
		{`advanced --author="Frank Herbert"`, []string{"advanced", "--author=Frank Herbert"}},
		{`search "the left hand"   of`, []string{"search", "the left hand", "of"}},
		{"  spaced\tout  ", []string{"spaced", "out"}},
		{`empty ""`, []string{"empty", ""}},
	}
	for _, tt := range tests {
		got, err := Split(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := Split(`a "b`)
	assert.Error(t, err)
}

func TestParseFlags(t *testing.T) {
	args, flags := parseFlags(strings.Fields("dune --Limit=3 --pretty -- --title=x=y"))
	assert.Equal(t, []string{"dune", "--"}, args)
	assert.Equal(t, map[string]string{"limit": "3", "pretty": "", "title": "x=y"}, flags)
}
