package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/interview-assistant/internal/roster"
	"github.com/jonathan/interview-assistant/internal/types"
)

// maxRosterLimit caps a single listing.
const maxRosterLimit = 500

// RosterSummary is one row of the dashboard listing.
type RosterSummary struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	FinalScore *int              `json:"finalScore"`
	Summary    string            `json:"summary"`
	ResumeMeta *types.ResumeMeta `json:"resumeMeta,omitempty"`
	CreatedAt  string            `json:"createdAt"`
}

// RosterListResponse is the dashboard listing.
type RosterListResponse struct {
	Candidates []RosterSummary `json:"candidates"`
	Count      int             `json:"count"`
}

func summarize(e types.RosterEntry) RosterSummary {
	return RosterSummary{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Phone:      e.Phone,
		FinalScore: e.FinalScore,
		Summary:    e.Summary,
		ResumeMeta: e.ResumeMeta,
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// parseRosterFilter reads ?search=&sort=score|date|name&order=asc|desc&limit=.
func parseRosterFilter(r *http.Request) (roster.Filter, error) {
	q := r.URL.Query()
	filter := roster.Filter{
		Search: q.Get("search"),
		Sort:   roster.SortField(strings.ToLower(q.Get("sort"))),
	}
	if !filter.Sort.Valid() {
		return filter, &ErrValidation{Field: "sort", Message: "must be one of score, date, name"}
	}

	switch strings.ToLower(q.Get("order")) {
	case "", "asc":
	case "desc":
		filter.Desc = true
	default:
		return filter, &ErrValidation{Field: "order", Message: "must be asc or desc"}
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxRosterLimit {
			return filter, &ErrValidation{Field: "limit", Message: "must be between 1 and " + strconv.Itoa(maxRosterLimit)}
		}
		filter.Limit = limit
	}
	return filter, nil
}

// handleListRoster lists finalized candidates.
func (s *Server) handleListRoster(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRosterFilter(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	entries, err := s.roster.List(r.Context(), filter)
	if err != nil {
		s.fail(w, err)
		return
	}

	resp := RosterListResponse{Candidates: make([]RosterSummary, 0, len(entries))}
	for _, e := range entries {
		resp.Candidates = append(resp.Candidates, summarize(e))
	}
	resp.Count = len(resp.Candidates)
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleGetRosterEntry returns one candidate with questions, answers,
// scores and the chat transcript.
func (s *Server) handleGetRosterEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.roster.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, entry)
}

// handleDeleteRosterEntry removes one candidate.
func (s *Server) handleDeleteRosterEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.roster.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClearRoster removes every candidate.
func (s *Server) handleClearRoster(w http.ResponseWriter, r *http.Request) {
	if err := s.roster.Clear(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
