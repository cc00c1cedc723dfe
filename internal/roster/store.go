// Package roster keeps finalized interview snapshots for the interviewer
// dashboard. Entries are keyed by email when present, otherwise by id.
package roster

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/jonathan/interview-assistant/internal/types"
)

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("roster entry not found")

// Store is a roster backend.
type Store interface {
	// Upsert replaces the entry for the same candidate in place, or
	// prepends a new one. A matched entry keeps its id.
	Upsert(ctx context.Context, entry types.RosterEntry) (types.RosterEntry, error)
	List(ctx context.Context, filter Filter) ([]types.RosterEntry, error)
	Get(ctx context.Context, id string) (types.RosterEntry, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// SortField selects the dashboard ordering.
type SortField string

// Sort fields. SortNone keeps roster order, newest candidate first.
const (
	SortNone  SortField = ""
	SortScore SortField = "score"
	SortDate  SortField = "date"
	SortName  SortField = "name"
)

// Valid reports whether f is a known sort field.
func (f SortField) Valid() bool {
	switch f {
	case SortNone, SortScore, SortDate, SortName:
		return true
	}
	return false
}

// Filter narrows and orders a listing.
type Filter struct {
	// Search is a case-insensitive substring of name or email.
	Search string
	Sort   SortField
	Desc   bool
	// Limit caps the result; zero means no cap.
	Limit int
}

// Matches reports whether e passes the search term.
func (f Filter) Matches(e *types.RosterEntry) bool {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Name), term) ||
		strings.Contains(strings.ToLower(e.Email), term)
}

// Apply filters and sorts entries in roster order. The input is not modified.
func (f Filter) Apply(entries []types.RosterEntry) []types.RosterEntry {
	out := make([]types.RosterEntry, 0, len(entries))
	for i := range entries {
		if f.Matches(&entries[i]) {
			out = append(out, entries[i])
		}
	}

	var less func(a, b *types.RosterEntry) bool
	switch f.Sort {
	case SortScore:
		less = func(a, b *types.RosterEntry) bool { return a.Score() < b.Score() }
	case SortDate:
		less = func(a, b *types.RosterEntry) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortName:
		less = func(a, b *types.RosterEntry) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool {
			if f.Desc {
				return less(&out[j], &out[i])
			}
			return less(&out[i], &out[j])
		})
	}

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
