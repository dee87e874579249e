package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const lockStripes = 64

// Backend is the durable key-value surface a Store persists into.
// Get returns nil, nil when the key is absent.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store persists one bounded history list per client.
type Store struct {
	backend Backend
	log     *slog.Logger
	locks   [lockStripes]sync.Mutex
}

// NewStore constructs a Store over the given backend.
func NewStore(backend Backend, log *slog.Logger) *Store {
	return &Store{backend: backend, log: log}
}

func key(client string) string {
	return "history:" + client
}

// Load returns the client's history. Absent, unreadable or malformed content
// yields an empty list; failures are logged, never returned.
func (s *Store) Load(ctx context.Context, client string) List {
	list, err := s.load(ctx, client)
	if err != nil {
		s.log.Warn("history read failed", "client", client, "err", err)
		return List{}
	}
	return list
}

// load reports backend failures so callers about to write can back off.
// A missing key or malformed content is an empty list, not an error.
func (s *Store) load(ctx context.Context, client string) (List, error) {
	raw, err := s.backend.Get(ctx, key(client))
	if err != nil {
		return nil, fmt.Errorf("reading history for %s: %w", client, err)
	}
	if raw == nil {
		return List{}, nil
	}

	var list List
	if err := json.Unmarshal(raw, &list); err != nil {
		s.log.Warn("discarding malformed history", "client", client, "err", err)
		return List{}, nil
	}
	if list == nil {
		return List{}, nil
	}
	return list, nil
}

// Save replaces the client's persisted history with list.
func (s *Store) Save(ctx context.Context, client string, list List) error {
	if list == nil {
		list = List{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshaling history for %s: %w", client, err)
	}
	if err := s.backend.Put(ctx, key(client), b); err != nil {
		return fmt.Errorf("saving history for %s: %w", client, err)
	}
	return nil
}

// Record merges e into the client's history, persists it and returns the new list.
// Nothing is written when the current list cannot be read.
func (s *Store) Record(ctx context.Context, client string, e Entry) (List, error) {
	mu := s.lock(client)
	mu.Lock()
	defer mu.Unlock()

	prev, err := s.load(ctx, client)
	if err != nil {
		return nil, err
	}

	list := Merge(prev, e)
	if err := s.Save(ctx, client, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Clear persists an empty history for the client.
func (s *Store) Clear(ctx context.Context, client string) error {
	mu := s.lock(client)
	mu.Lock()
	defer mu.Unlock()

	return s.Save(ctx, client, List{})
}

// lock serialises read-modify-write cycles for one client within this process.
func (s *Store) lock(client string) *sync.Mutex {
	return &s.locks[xxhash.Sum64String(client)%lockStripes]
}
