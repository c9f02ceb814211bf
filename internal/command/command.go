// Package command parses and runs the interactive catalogue commands.
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"nlb-mcp/internal/branches"
	"nlb-mcp/internal/jsonutil"
	"nlb-mcp/internal/normalize"
	"nlb-mcp/internal/service"
)

// Catalogue is the service surface the commands drive.
type Catalogue interface {
	Health() map[string]interface{}
	SearchTitles(ctx context.Context, q service.SearchQuery) (*service.TitleListing, error)
	SearchTitlesAdvanced(ctx context.Context, q service.AdvancedQuery) (*service.TitleListing, error)
	AvailabilityByTitle(ctx context.Context, q service.AvailabilityQuery) ([]normalize.Availability, error)
	AvailabilityAtBranch(ctx context.Context, q service.AvailabilityQuery) ([]normalize.Availability, error)
	ListBranches(filter string) []branches.Branch
}

type ReplState struct {
	Pretty bool
	// Paging cursor from the last advanced search, used by "next"
	LastQuery  *service.AdvancedQuery
	LastSetID  *int64
	NextOffset *int64
}

type Handler struct {
	Svc     Catalogue
	State   *ReplState
	Out     io.Writer
	Timeout time.Duration // per command; 0 means no deadline
}

func (h *Handler) out() io.Writer {
	if h.Out == nil {
		return os.Stdout
	}
	return h.Out
}

func (h *Handler) state() *ReplState {
	if h.State == nil {
		h.State = &ReplState{}
	}
	return h.State
}

func (h *Handler) context() (context.Context, context.CancelFunc) {
	if h.Timeout > 0 {
		return context.WithTimeout(context.Background(), h.Timeout)
	}
	return context.WithCancel(context.Background())
}

// Execute runs one command line and reports whether the REPL should continue.
func (h *Handler) Execute(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return true
	}
	parts, err := Split(input)
	if err != nil {
		fmt.Fprintf(h.out(), "Parse failed: %v\n", err)
		return true
	}
	args, flags := parseFlags(parts[1:])
	w := h.out()

	switch strings.ToLower(parts[0]) {
	case "search":
		if len(args) == 0 {
			fmt.Fprintln(w, "Usage: search <keywords> [--limit=N] [--sort=FIELDS] [--source=SRC]")
			return true
		}
		limit, err := intFlag(flags, "limit")
		if err != nil {
			fmt.Fprintln(w, err)
			return true
		}
		ctx, cancel := h.context()
		defer cancel()
		listing, err := h.Svc.SearchTitles(ctx, service.SearchQuery{
			Keywords:   strings.Join(args, " "),
			Limit:      limit,
			SortFields: flags["sort"],
			Source:     flags["source"],
		})
		if err != nil {
			fmt.Fprintf(w, "Search failed: %v\n", err)
			return true
		}
		h.print(listing)

	case "advanced":
		q := service.AdvancedQuery{
			Keywords:   flags["keywords"],
			Title:      flags["title"],
			Author:     flags["author"],
			Subject:    flags["subject"],
			ISBN:       flags["isbn"],
			SortFields: flags["sort"],
		}
		if len(args) > 0 && q.Keywords == "" {
			q.Keywords = strings.Join(args, " ")
		}
		for _, f := range []struct {
			name string
			dst  **int
		}{{"limit", &q.Limit}, {"set", &q.SetID}, {"offset", &q.Offset}} {
			if *f.dst, err = intFlag(flags, f.name); err != nil {
				fmt.Fprintln(w, err)
				return true
			}
		}
		h.advanced(q)

	case "next":
		s := h.state()
		if s.LastQuery == nil || s.NextOffset == nil {
			fmt.Fprintln(w, "No further page; run 'advanced' first")
			return true
		}
		q := *s.LastQuery
		q.Offset = intPtr(int(*s.NextOffset))
		if s.LastSetID != nil {
			q.SetID = intPtr(int(*s.LastSetID))
		}
		h.advanced(q)

	case "avail":
		q := service.AvailabilityQuery{
			BibID:     flags["bib"],
			ISBN:      flags["isbn"],
			ControlNo: flags["control"],
			BranchID:  flags["branch"],
		}
		if len(args) == 1 && q.BibID == "" {
			q.BibID = args[0]
		} else if len(args) > 1 {
			fmt.Fprintln(w, "Usage: avail [<bib_id>] [--isbn=ISBN] [--control=NO] [--branch=CODE]")
			return true
		}
		ctx, cancel := h.context()
		defer cancel()
		var items []normalize.Availability
		if q.BranchID != "" {
			items, err = h.Svc.AvailabilityAtBranch(ctx, q)
		} else {
			items, err = h.Svc.AvailabilityByTitle(ctx, q)
		}
		if err != nil {
			fmt.Fprintf(w, "Availability failed: %v\n", err)
			return true
		}
		h.print(items)

	case "branches":
		h.print(h.Svc.ListBranches(strings.Join(args, " ")))

	case "health":
		h.print(h.Svc.Health())

	case "pretty":
		s := h.state()
		switch {
		case len(args) == 0:
			s.Pretty = !s.Pretty
		case args[0] == "on":
			s.Pretty = true
		case args[0] == "off":
			s.Pretty = false
		default:
			fmt.Fprintln(w, "Usage: pretty [on|off]")
			return true
		}
		fmt.Fprintf(w, "Pretty output: %v\n", s.Pretty)

	case "help":
		fmt.Fprint(w, HelpText)

	case "exit", "quit":
		return false

	default:
		fmt.Fprintln(w, "Unknown command")
	}
	return true
}

func (h *Handler) advanced(q service.AdvancedQuery) {
	ctx, cancel := h.context()
	defer cancel()

	listing, err := h.Svc.SearchTitlesAdvanced(ctx, q)
	if err != nil {
		fmt.Fprintf(h.out(), "Search failed: %v\n", err)
		return
	}

	s := h.state()
	s.LastQuery = &q
	s.LastSetID = listing.SetID
	s.NextOffset = nil
	if listing.HasMoreRecords != nil && *listing.HasMoreRecords {
		s.NextOffset = listing.NextRecordsOffset
	}
	h.print(listing)
}

func (h *Handler) print(v interface{}) {
	text, err := jsonutil.Encode(v, h.state().Pretty)
	if err != nil {
		fmt.Fprintf(h.out(), "Encode failed: %v\n", err)
		return
	}
	fmt.Fprintln(h.out(), text)
}

// HelpText lists the commands.
const HelpText = `Commands:
  search <keywords> [--limit=N] [--sort=FIELDS] [--source=SRC]
  advanced [--title=T] [--author=A] [--subject=S] [--isbn=I] [--keywords=K] [--limit=N] [--set=N] [--offset=N]
  next                       Fetch the next page of the last advanced search
  avail [<bib_id>] [--isbn=ISBN] [--control=NO] [--branch=CODE]
  branches [filter]          List branch codes, optionally filtered
  health                     Show configuration status
  pretty [on|off]            Toggle indented JSON output
  help                       Show this help
  exit, quit                 Leave
Quote values that contain spaces: --author="Frank Herbert"
`

// parseFlags separates --name=value and --name flags from positional words.
func parseFlags(parts []string) ([]string, map[string]string) {
	var args []string
	flags := map[string]string{}
	for _, p := range parts {
		if !strings.HasPrefix(p, "--") || len(p) == 2 {
			args = append(args, p)
			continue
		}
		name, value, _ := strings.Cut(p[2:], "=")
		flags[strings.ToLower(name)] = value
	}
	return args, flags
}

func intFlag(flags map[string]string, name string) (*int, error) {
	v, ok := flags[name]
	if !ok || v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("--%s must be an integer", name)
	}
	return &n, nil
}

func intPtr(n int) *int { return &n }

// Split breaks a command line into words, honouring double quotes.
func Split(input string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range input {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case (r == ' ' || r == '\t') && !inQuote:
			if started {
				words = append(words, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if started {
		words = append(words, cur.String())
	}
	return words, nil
}
