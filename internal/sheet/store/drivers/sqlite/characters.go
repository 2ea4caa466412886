package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/arkhamdesk/sheetvault/internal/sheet/domain"
)

// activeKey is the session-table key that tracks the record currently being
// edited, kept separate from the records themselves.
const activeKey = "active_character"

// charactersRepo stores each record as one JSON blob per row. The name and
// modified columns are denormalized copies used by List so listing does not
// unmarshal every payload.
type charactersRepo struct {
	db *sql.DB
}

func (r *charactersRepo) Put(ctx context.Context, rec domain.CharacterRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("sqlite: record has no id")
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("sqlite: marshal record: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO characters (id, name, modified, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			modified = excluded.modified,
			payload = excluded.payload
	`, rec.ID, rec.Basic.Name, rec.Modified.UTC(), string(payload))
	return mapUnavailable(err)
}

func (r *charactersRepo) Get(ctx context.Context, id string) (domain.CharacterRecord, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM characters WHERE id = ?`, id,
	).Scan(&payload)
	if err != nil {
		return domain.CharacterRecord{}, mapNotFound(err)
	}

	var rec domain.CharacterRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return domain.CharacterRecord{}, fmt.Errorf("sqlite: unmarshal record %s: %w", id, err)
	}
	return rec, nil
}

func (r *charactersRepo) List(ctx context.Context) ([]domain.Summary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, modified FROM characters`,
	)
	if err != nil {
		return nil, mapUnavailable(err)
	}
	defer rows.Close()

	var out []domain.Summary
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.Modified); err != nil {
			return nil, mapUnavailable(err)
		}
		if s.Name == "" {
			s.Name = domain.FallbackName
		}
		out = append(out, s)
	}
	return out, mapUnavailable(rows.Err())
}

func (r *charactersRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return false, mapUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapUnavailable(err)
	}

	if n > 0 {
		// Clear the active pointer if it referenced the deleted record.
		_, err = r.db.ExecContext(ctx,
			`DELETE FROM session WHERE key = ? AND value = ?`, activeKey, id)
		if err != nil {
			return true, mapUnavailable(err)
		}
	}
	return n > 0, nil
}

func (r *charactersRepo) SetActive(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, activeKey, id)
	return mapUnavailable(err)
}

func (r *charactersRepo) GetActive(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM session WHERE key = ?`, activeKey,
	).Scan(&id)
	if err != nil {
		return "", mapNotFound(err)
	}
	return id, nil
}
