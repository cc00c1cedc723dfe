package roster

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/interview-assistant/internal/state"
	"github.com/jonathan/interview-assistant/internal/types"
)

// MemoryStore keeps the roster in process, newest candidate first. When
// backed by a state.Store the whole roster is written on every change.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []types.RosterEntry
	backing state.Store
	key     string
}

// NewMemoryStore returns an empty, unpersisted roster.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// LoadMemoryStore restores the roster section from st and persists every
// later change back to it.
func LoadMemoryStore(ctx context.Context, st state.Store) (*MemoryStore, error) {
	m := &MemoryStore{backing: st, key: state.SectionRoster}
	if _, err := state.LoadJSON(ctx, st, m.key, &m.entries); err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	return m, nil
}

func (m *MemoryStore) Upsert(ctx context.Context, entry types.RosterEntry) (types.RosterEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	next := slices.Clone(m.entries)
	idx := slices.IndexFunc(next, func(e types.RosterEntry) bool { return e.SameCandidate(&entry) })
	if idx >= 0 {
		entry.ID = next[idx].ID
		next[idx] = entry
	} else {
		next = slices.Insert(next, 0, entry)
	}

	if err := m.persist(ctx, next); err != nil {
		return types.RosterEntry{}, err
	}
	m.entries = next
	return entry, nil
}

func (m *MemoryStore) List(_ context.Context, filter Filter) ([]types.RosterEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return filter.Apply(m.entries), nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (types.RosterEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return types.RosterEntry{}, ErrNotFound
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(m.entries), func(e types.RosterEntry) bool { return e.ID == id })
	if len(next) == len(m.entries) {
		return ErrNotFound
	}
	if err := m.persist(ctx, next); err != nil {
		return err
	}
	m.entries = next
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.persist(ctx, []types.RosterEntry{}); err != nil {
		return err
	}
	m.entries = nil
	return nil
}

func (m *MemoryStore) persist(ctx context.Context, entries []types.RosterEntry) error {
	if m.backing == nil {
		return nil
	}
	if entries == nil {
		entries = []types.RosterEntry{}
	}
	if err := state.SaveJSON(ctx, m.backing, m.key, entries); err != nil {
		return fmt.Errorf("failed to persist roster: %w", err)
	}
	return nil
}
