// Package redis implements the character store on a Redis backend. All
// records live as JSON blobs in a single hash under a fixed namespace key,
// with the active record id tracked under a separate key, so a shared or
// hosted Redis can serve the same capability set as the local sqlite file.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arkhamdesk/sheetvault/internal/sheet/domain"
	"github.com/arkhamdesk/sheetvault/internal/sheet/store"
	"github.com/go-redis/redis/v8"
)

const (
	charactersKey = "sheetvault:characters"
	activeKey     = "sheetvault:active"

	dialTimeout = 5 * time.Second
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

type Store struct {
	client *redis.Client
}

func NewStore(cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, mapUnavailable(err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return mapUnavailable(s.client.Ping(ctx).Err())
}

// ApplyMigrations is a no-op; Redis has no schema to prepare.
func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Characters() store.Characters { return &charactersRepo{client: s.client} }

type charactersRepo struct {
	client *redis.Client
}

func (r *charactersRepo) Put(ctx context.Context, rec domain.CharacterRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("redis: record has no id")
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: marshal record: %w", err)
	}

	return mapUnavailable(r.client.HSet(ctx, charactersKey, rec.ID, payload).Err())
}

func (r *charactersRepo) Get(ctx context.Context, id string) (domain.CharacterRecord, error) {
	payload, err := r.client.HGet(ctx, charactersKey, id).Result()
	if err != nil {
		return domain.CharacterRecord{}, mapNotFound(err)
	}

	var rec domain.CharacterRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return domain.CharacterRecord{}, fmt.Errorf("redis: unmarshal record %s: %w", id, err)
	}
	return rec, nil
}

func (r *charactersRepo) List(ctx context.Context) ([]domain.Summary, error) {
	entries, err := r.client.HGetAll(ctx, charactersKey).Result()
	if err != nil {
		return nil, mapUnavailable(err)
	}

	out := make([]domain.Summary, 0, len(entries))
	for id, payload := range entries {
		var rec domain.CharacterRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("redis: unmarshal record %s: %w", id, err)
		}
		out = append(out, rec.Summarize())
	}
	return out, nil
}

func (r *charactersRepo) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := r.client.HDel(ctx, charactersKey, id).Result()
	if err != nil {
		return false, mapUnavailable(err)
	}
	if removed == 0 {
		return false, nil
	}

	// Clear the active pointer if it referenced the deleted record.
	current, err := r.client.Get(ctx, activeKey).Result()
	if err == nil && current == id {
		if err := r.client.Del(ctx, activeKey).Err(); err != nil {
			return true, mapUnavailable(err)
		}
	} else if err != nil && !errors.Is(err, redis.Nil) {
		return true, mapUnavailable(err)
	}
	return true, nil
}

func (r *charactersRepo) SetActive(ctx context.Context, id string) error {
	return mapUnavailable(r.client.Set(ctx, activeKey, id, 0).Err())
}

func (r *charactersRepo) GetActive(ctx context.Context) (string, error) {
	id, err := r.client.Get(ctx, activeKey).Result()
	if err != nil {
		return "", mapNotFound(err)
	}
	return id, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, redis.Nil) {
		return store.ErrNotFound
	}
	return mapUnavailable(err)
}

func mapUnavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}
