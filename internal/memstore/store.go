// Package memstore keeps each tenant's workspace in memory and implements the
// repository interfaces by dispatching workspace actions.
package memstore

import (
	"context"
	"sync"

	"github.com/valislegal/valis/internal/workspace"
)

// Store holds one workspace.State per tenant. State only changes through
// workspace.Reduce, one action batch at a time.
type Store struct {
	mu      sync.Mutex
	tenants map[string]workspace.State
}

// New creates an empty store.
func New() *Store {
	return &Store{tenants: map[string]workspace.State{}}
}

// Snapshot returns the current state of a tenant. The caller must not modify
// the slices of the returned value.
func (s *Store) Snapshot(tenantID string) workspace.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tenants[tenantID]
}

// Dispatch applies actions atomically: either all of them take effect or none.
func (s *Store) Dispatch(ctx context.Context, tenantID string, actions ...workspace.Action) (workspace.State, error) {
	if err := ctx.Err(); err != nil {
		return workspace.State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := workspace.ReduceAll(s.tenants[tenantID], actions...)
	if err != nil {
		return s.tenants[tenantID], err
	}
	s.tenants[tenantID] = next
	return next, nil
}

// Repositories returns the repository adapters backed by the store.
func (s *Store) Repositories() Repositories {
	return Repositories{
		Projects:    &ProjectRepository{store: s},
		Collections: &CollectionRepository{store: s},
		Documents:   &DocumentRepository{store: s},
		Activity:    &ActivityRepository{store: s},
		Messages:    &MessageRepository{store: s},
		Drafts:      &DraftRepository{store: s},
	}
}

// Repositories groups the adapters of one store.
type Repositories struct {
	Projects    *ProjectRepository
	Collections *CollectionRepository
	Documents   *DocumentRepository
	Activity    *ActivityRepository
	Messages    *MessageRepository
	Drafts      *DraftRepository
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
