// Package memory implements the character store as an in-process map. It
// backs tests and throwaway sessions, and doubles as the reference
// implementation of the store contract.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/arkhamdesk/sheetvault/internal/sheet/domain"
	"github.com/arkhamdesk/sheetvault/internal/sheet/store"
)

type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
	active  string
}

func NewStore() *Store {
	return &Store{records: make(map[string][]byte)}
}

func (s *Store) Close() error { return nil }

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Characters() store.Characters { return (*charactersRepo)(s) }

type charactersRepo Store

// Put serializes the record so the store never aliases the caller's copy,
// matching what the real backends do.
func (r *charactersRepo) Put(ctx context.Context, rec domain.CharacterRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("memory: record has no id")
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("memory: marshal record: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = payload
	return nil
}

func (r *charactersRepo) Get(ctx context.Context, id string) (domain.CharacterRecord, error) {
	r.mu.RLock()
	payload, ok := r.records[id]
	r.mu.RUnlock()
	if !ok {
		return domain.CharacterRecord{}, store.ErrNotFound
	}

	var rec domain.CharacterRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domain.CharacterRecord{}, fmt.Errorf("memory: unmarshal record %s: %w", id, err)
	}
	return rec, nil
}

func (r *charactersRepo) List(ctx context.Context) ([]domain.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Summary, 0, len(r.records))
	for id, payload := range r.records {
		var rec domain.CharacterRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("memory: unmarshal record %s: %w", id, err)
		}
		out = append(out, rec.Summarize())
	}
	return out, nil
}

func (r *charactersRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return false, nil
	}
	delete(r.records, id)
	if r.active == id {
		r.active = ""
	}
	return true, nil
}

func (r *charactersRepo) SetActive(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = id
	return nil
}

func (r *charactersRepo) GetActive(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == "" {
		return "", store.ErrNotFound
	}
	return r.active, nil
}
