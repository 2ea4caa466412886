package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arkhamdesk/sheetvault/internal/sheet/derive"
	"github.com/arkhamdesk/sheetvault/internal/sheet/domain"
	"github.com/arkhamdesk/sheetvault/internal/sheet/store"
	"github.com/arkhamdesk/sheetvault/internal/sheet/validate"
	"github.com/arkhamdesk/sheetvault/pkg/idx"
	"github.com/arkhamdesk/sheetvault/pkg/slogx"
)

var (
	ErrValidation = errors.New("record failed validation")
	ErrParse      = errors.New("malformed character sheet")
)

// CharacterService owns record identity and timestamps. Everything below it
// (the store) deals in fully-formed records; everything above it (scheduler,
// CLI) never touches the backend directly.
type CharacterService struct {
	Store store.Store
}

// Save persists a record and marks it active. A record without an id gets a
// fresh ULID and creation timestamp; modified always advances, even when two
// saves land within clock resolution.
func (s *CharacterService) Save(ctx context.Context, rec domain.CharacterRecord) (string, error) {
	log := slogx.FromContext(ctx)

	// 1. Reject out-of-range fields before anything touches the backend.
	if err := validateRecord(rec); err != nil {
		log.Warn("save rejected by validation", slog.Any("error", err))
		return "", err
	}

	// 2. Derived attributes are a function of the characteristics; recompute
	// so the stored copy can never disagree with its inputs.
	derive.Apply(&rec)

	// 3. Assign identity on first save. Created is stamped independently of
	// the id: a caller that adopted a server-assigned id but never saw the
	// timestamps must not overwrite the stored creation time with zero.
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = idx.New().String()
	}
	if rec.Created.IsZero() {
		rec.Created = now
	}
	if rec.Version == 0 {
		rec.Version = domain.SchemaVersion
	}

	// 4. Stamp modified, strictly after the previous value.
	if !now.After(rec.Modified) {
		now = rec.Modified.Add(time.Millisecond)
	}
	rec.Modified = now

	// 5. Persist and mark as the active record.
	chars := s.Store.Characters()
	if err := chars.Put(ctx, rec); err != nil {
		log.Error("failed to persist record",
			slog.String("record_id", rec.ID),
			slog.Any("error", err),
		)
		return "", err
	}
	if err := chars.SetActive(ctx, rec.ID); err != nil {
		log.Error("failed to mark record active",
			slog.String("record_id", rec.ID),
			slog.Any("error", err),
		)
		return "", err
	}

	log.Debug("record saved",
		slog.String("record_id", rec.ID),
		slog.Time("modified", rec.Modified),
	)
	return rec.ID, nil
}

// Load fetches a record by id. Missing ids return store.ErrNotFound.
func (s *CharacterService) Load(ctx context.Context, id string) (domain.CharacterRecord, error) {
	return s.Store.Characters().Get(ctx, id)
}

// List returns a summary for every persisted record.
func (s *CharacterService) List(ctx context.Context) ([]domain.Summary, error) {
	return s.Store.Characters().List(ctx)
}

// Delete removes a record, reporting whether one existed.
func (s *CharacterService) Delete(ctx context.Context, id string) (bool, error) {
	existed, err := s.Store.Characters().Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if existed {
		slogx.FromContext(ctx).Info("record deleted", slog.String("record_id", id))
	}
	return existed, nil
}

// Active returns the id of the record the session is editing, or
// store.ErrNotFound when nothing has been saved yet.
func (s *CharacterService) Active(ctx context.Context) (string, error) {
	return s.Store.Characters().GetActive(ctx)
}

// Export renders a record as pretty-printed JSON, identity and timestamps
// included, for human inspection and later re-import.
func (s *CharacterService) Export(ctx context.Context, id string) (string, error) {
	rec, err := s.Store.Characters().Get(ctx, id)
	if err != nil {
		return "", err
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal record %s: %w", id, err)
	}
	return string(out), nil
}

// Import parses an exported sheet and persists it under a fresh identity so
// an import can never collide with the record it was exported from. Unknown
// fields in the text are ignored, which lets newer exports load here.
func (s *CharacterService) Import(ctx context.Context, text string) (string, error) {
	log := slogx.FromContext(ctx)

	var rec domain.CharacterRecord
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		log.Warn("import rejected", slog.Any("error", err))
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}

	oldID := rec.ID
	rec.ID = ""
	if rec.Created.IsZero() {
		rec.Created = time.Now().UTC()
	}

	newID, err := s.Save(ctx, rec)
	if err != nil {
		return "", err
	}

	log.Info("record imported",
		slog.String("record_id", newID),
		slog.String("exported_id", oldID),
	)
	return newID, nil
}

// validateRecord applies the field range rules to every filled-in numeric
// field. Derived attributes are not checked here; they are recomputed on
// save.
func validateRecord(rec domain.CharacterRecord) error {
	if rec.Basic.Age != nil {
		if res := validate.Check(validate.KindAge, *rec.Basic.Age); !res.Valid {
			return fmt.Errorf("%w: %s", ErrValidation, res.Reason)
		}
	}

	c := rec.Intermediate.Characteristics
	for name, v := range map[string]*int{
		"str": c.STR, "con": c.CON, "siz": c.SIZ,
		"dex": c.DEX, "app": c.APP, "int": c.INT,
		"pow": c.POW, "edu": c.EDU, "luck": c.LUCK,
	} {
		if v == nil {
			continue
		}
		if res := validate.Check(validate.KindCharacteristic, *v); !res.Valid {
			return fmt.Errorf("%w: %s: %s", ErrValidation, name, res.Reason)
		}
	}

	if sc := rec.Intermediate.SanCurrent; sc != nil {
		if res := validate.Check(validate.KindSanity, *sc); !res.Valid {
			return fmt.Errorf("%w: %s", ErrValidation, res.Reason)
		}
	}

	return nil
}
