package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-assistant/internal/roster"
	"github.com/jonathan/interview-assistant/internal/types"
)

// CandidateStore is a roster.Store backed by the candidates table. Roster
// order is insertion order, newest first; replacing an entry keeps its slot.
type CandidateStore struct {
	db *DB
}

// Candidates returns the roster store for db.
func (db *DB) Candidates() *CandidateStore {
	return &CandidateStore{db: db}
}

var _ roster.Store = (*CandidateStore)(nil)

const candidateColumns = `id, name, email, phone, final_score, summary, created_at,
	resume_meta, questions, answers, scores, messages`

// details holds the JSONB columns in encoded form.
type details struct {
	resumeMeta []byte
	questions  []byte
	answers    []byte
	scores     []byte
	messages   []byte
}

func encodeDetails(e *types.RosterEntry) (*details, error) {
	var d details
	var err error
	if e.ResumeMeta != nil {
		if d.resumeMeta, err = json.Marshal(e.ResumeMeta); err != nil {
			return nil, fmt.Errorf("failed to marshal resume meta: %w", err)
		}
	}
	if d.questions, err = marshalList(e.Questions); err != nil {
		return nil, fmt.Errorf("failed to marshal questions: %w", err)
	}
	if d.answers, err = marshalList(e.Answers); err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}
	if d.scores, err = marshalList(e.Scores); err != nil {
		return nil, fmt.Errorf("failed to marshal scores: %w", err)
	}
	if d.messages, err = marshalList(e.Messages); err != nil {
		return nil, fmt.Errorf("failed to marshal messages: %w", err)
	}
	return &d, nil
}

// marshalList encodes nil slices as [] so the NOT NULL columns stay arrays.
func marshalList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

func (d *details) decodeInto(e *types.RosterEntry) error {
	if len(d.resumeMeta) > 0 {
		var meta types.ResumeMeta
		if err := json.Unmarshal(d.resumeMeta, &meta); err != nil {
			return fmt.Errorf("failed to unmarshal resume meta: %w", err)
		}
		e.ResumeMeta = &meta
	}
	if err := json.Unmarshal(d.questions, &e.Questions); err != nil {
		return fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(d.answers, &e.Answers); err != nil {
		return fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	if err := json.Unmarshal(d.scores, &e.Scores); err != nil {
		return fmt.Errorf("failed to unmarshal scores: %w", err)
	}
	if err := json.Unmarshal(d.messages, &e.Messages); err != nil {
		return fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	return nil
}

func scanCandidate(row pgx.Row) (types.RosterEntry, error) {
	var e types.RosterEntry
	var d details
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.FinalScore, &e.Summary, &e.CreatedAt,
		&d.resumeMeta, &d.questions, &d.answers, &d.scores, &d.messages)
	if err != nil {
		return types.RosterEntry{}, err
	}
	if err := d.decodeInto(&e); err != nil {
		return types.RosterEntry{}, err
	}
	return e, nil
}

// conflictTarget names the unique index a concurrent insert of the same
// candidate collides with.
func conflictTarget(email string) string {
	if email != "" {
		return "(email) WHERE email <> ''"
	}
	return "(id)"
}

// insertCandidateSQL inserts a row or, when another transaction inserted the
// same candidate first, updates that row in place and returns its id.
func insertCandidateSQL(email string) string {
	return `INSERT INTO candidates (id, name, email, phone, final_score, summary, created_at,
		resume_meta, questions, answers, scores, messages)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	 ON CONFLICT ` + conflictTarget(email) + ` DO UPDATE SET
		name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone,
		final_score = EXCLUDED.final_score, summary = EXCLUDED.summary, created_at = EXCLUDED.created_at,
		resume_meta = EXCLUDED.resume_meta, questions = EXCLUDED.questions, answers = EXCLUDED.answers,
		scores = EXCLUDED.scores, messages = EXCLUDED.messages
	 RETURNING id`
}

// Upsert replaces the first matching candidate in roster order or inserts a
// new row. Matching uses email when both sides have one, otherwise id.
func (s *CandidateStore) Upsert(ctx context.Context, entry types.RosterEntry) (types.RosterEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	d, err := encodeDetails(&entry)
	if err != nil {
		return types.RosterEntry{}, err
	}

	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return types.RosterEntry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var existingID string
	err = tx.QueryRow(ctx,
		`SELECT id FROM candidates
		 WHERE (email <> '' AND $2 <> '' AND email = $2)
		    OR ((email = '' OR $2 = '') AND id = $1)
		 ORDER BY seq DESC LIMIT 1
		 FOR UPDATE`,
		entry.ID, entry.Email,
	).Scan(&existingID)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = tx.QueryRow(ctx, insertCandidateSQL(entry.Email),
			entry.ID, entry.Name, entry.Email, entry.Phone, entry.FinalScore, entry.Summary, entry.CreatedAt,
			d.resumeMeta, d.questions, d.answers, d.scores, d.messages,
		).Scan(&entry.ID)
		if err != nil {
			return types.RosterEntry{}, fmt.Errorf("failed to insert candidate: %w", err)
		}
	case err != nil:
		return types.RosterEntry{}, fmt.Errorf("failed to find candidate: %w", err)
	default:
		entry.ID = existingID
		_, err = tx.Exec(ctx,
			`UPDATE candidates SET name = $2, email = $3, phone = $4, final_score = $5, summary = $6,
				created_at = $7, resume_meta = $8, questions = $9, answers = $10, scores = $11, messages = $12
			 WHERE id = $1`,
			entry.ID, entry.Name, entry.Email, entry.Phone, entry.FinalScore, entry.Summary, entry.CreatedAt,
			d.resumeMeta, d.questions, d.answers, d.scores, d.messages,
		)
		if err != nil {
			return types.RosterEntry{}, fmt.Errorf("failed to update candidate: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return types.RosterEntry{}, fmt.Errorf("failed to commit candidate: %w", err)
	}
	return entry, nil
}

// orderClause maps a sort field onto SQL. Roster order breaks ties.
func orderClause(f roster.Filter) string {
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	switch f.Sort {
	case roster.SortScore:
		return fmt.Sprintf("COALESCE(final_score, 0) %s, seq DESC", dir)
	case roster.SortDate:
		return fmt.Sprintf("created_at %s, seq DESC", dir)
	case roster.SortName:
		return fmt.Sprintf("LOWER(name) %s, seq DESC", dir)
	default:
		return "seq DESC"
	}
}

// likePattern escapes LIKE metacharacters in a search term.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}

// List retrieves candidates with optional search, ordering and limit
func (s *CandidateStore) List(ctx context.Context, filter roster.Filter) ([]types.RosterEntry, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE 1=1`
	args := []any{}
	argNum := 1

	if strings.TrimSpace(filter.Search) != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", argNum, argNum)
		args = append(args, likePattern(filter.Search))
		argNum++
	}

	query += " ORDER BY " + orderClause(filter)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	rows, err := s.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	entries := []types.RosterEntry{}
	for rows.Next() {
		e, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return entries, nil
}

// Get retrieves a candidate by id
func (s *CandidateStore) Get(ctx context.Context, id string) (types.RosterEntry, error) {
	e, err := scanCandidate(s.db.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return types.RosterEntry{}, roster.ErrNotFound
	}
	if err != nil {
		return types.RosterEntry{}, fmt.Errorf("failed to get candidate: %w", err)
	}
	return e, nil
}

// Delete removes a candidate by id
func (s *CandidateStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if result.RowsAffected() == 0 {
		return roster.ErrNotFound
	}
	return nil
}

// Clear removes every candidate
func (s *CandidateStore) Clear(ctx context.Context) error {
	if _, err := s.db.pool.Exec(ctx, `DELETE FROM candidates`); err != nil {
		return fmt.Errorf("failed to clear candidates: %w", err)
	}
	return nil
}
