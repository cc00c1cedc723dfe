// Package state persists application state sections: the candidate's
// interview, the UI state and the roster. Each section is an opaque JSON
// document written on every change and read once at startup.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Section names.
const (
	SectionCandidate = "candidate"
	SectionSession   = "session"
	SectionRoster    = "roster"
)

// ErrNotFound is returned by Load when a section has never been saved.
var ErrNotFound = errors.New("state section not found")

// Store reads and writes named sections.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Key scopes a section to an owner such as a server-side session id.
func Key(section, owner string) string {
	if owner == "" {
		return section
	}
	return section + "-" + owner
}

// LoadJSON decodes a section into v. found is false when nothing was saved.
func LoadJSON(ctx context.Context, s Store, key string, v any) (found bool, err error) {
	data, err := s.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode state %q: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and writes it as a section.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode state %q: %w", key, err)
	}
	return s.Save(ctx, key, data)
}
