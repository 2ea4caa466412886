package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/arkhamdesk/sheetvault/internal/sheet/domain"
	"github.com/arkhamdesk/sheetvault/internal/sheet/store"
	"github.com/arkhamdesk/sheetvault/internal/sheet/store/drivers/memory"
	"github.com/arkhamdesk/sheetvault/internal/sheet/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

// newBackends returns one store per driver the suite should hold for. The
// service must behave identically over all of them.
func newBackends(t *testing.T) map[string]store.Store {
	t.Helper()

	sq, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })
	require.NoError(t, sq.ApplyMigrations())

	return map[string]store.Store{
		"sqlite": sq,
		"memory": memory.NewStore(),
	}
}

func sampleRecord() domain.CharacterRecord {
	rec := domain.CharacterRecord{}
	rec.Basic.Name = "Harvey Walters"
	rec.Basic.Occupation = "Journalist"
	rec.Basic.Age = domain.Int(42)
	rec.Intermediate.Characteristics = domain.Characteristics{
		STR:  domain.Int(40),
		CON:  domain.Int(60),
		SIZ:  domain.Int(50),
		DEX:  domain.Int(45),
		APP:  domain.Int(55),
		INT:  domain.Int(85),
		POW:  domain.Int(55),
		EDU:  domain.Int(88),
		LUCK: domain.Int(40),
	}
	rec.Advanced.Gear = []string{"notebook", "revolver"}
	return rec
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for name, st := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			svc := &CharacterService{Store: st}
			ctx := context.Background()

			id, err := svc.Save(ctx, sampleRecord())
			require.NoError(t, err)
			require.NotEmpty(t, id)

			loaded, err := svc.Load(ctx, id)
			require.NoError(t, err)
			require.Equal(t, id, loaded.ID)
			require.Equal(t, "Harvey Walters", loaded.Basic.Name)
			require.Equal(t, []string{"notebook", "revolver"}, loaded.Advanced.Gear)
			require.False(t, loaded.Modified.IsZero())
			require.False(t, loaded.Created.IsZero())

			// Derived attributes were computed on save.
			require.Equal(t, 11, loaded.Intermediate.Derived.HP)
			require.Equal(t, 11, loaded.Intermediate.Derived.MP)
			require.Equal(t, 55, loaded.Intermediate.Derived.San)
			require.NotNil(t, loaded.Intermediate.SanCurrent)
			require.Equal(t, 55, *loaded.Intermediate.SanCurrent)

			// Re-save: identity stable, modified strictly advances.
			prev := loaded.Modified
			id2, err := svc.Save(ctx, loaded)
			require.NoError(t, err)
			require.Equal(t, id, id2)

			again, err := svc.Load(ctx, id)
			require.NoError(t, err)
			require.True(t, again.Modified.After(prev), "modified must strictly increase on every save")
		})
	}
}

func TestSaveStampsCreatedWhenOnlyIDIsKnown(t *testing.T) {
	for name, st := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			svc := &CharacterService{Store: st}
			ctx := context.Background()

			// An interactive session keeps its own copy of the record and
			// adopts just the assigned id after the first autosave. The next
			// save then carries an id but a zero creation time; it must not
			// wipe the stored timestamp.
			id, err := svc.Save(ctx, sampleRecord())
			require.NoError(t, err)

			live := sampleRecord()
			live.ID = id
			require.True(t, live.Created.IsZero())

			_, err = svc.Save(ctx, live)
			require.NoError(t, err)

			loaded, err := svc.Load(ctx, id)
			require.NoError(t, err)
			require.False(t, loaded.Created.IsZero(), "created must survive subsequent autosaves")
		})
	}
}

func TestSaveRejectsOutOfRangeFields(t *testing.T) {
	for name, st := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			svc := &CharacterService{Store: st}
			ctx := context.Background()

			rec := sampleRecord()
			rec.Intermediate.Characteristics.STR = domain.Int(150)
			_, err := svc.Save(ctx, rec)
			require.ErrorIs(t, err, ErrValidation)

			rec = sampleRecord()
			rec.Basic.Age = domain.Int(12)
			_, err = svc.Save(ctx, rec)
			require.ErrorIs(t, err, ErrValidation)

			// Nothing was persisted.
			list, err := svc.List(ctx)
			require.NoError(t, err)
			require.Empty(t, list)
		})
	}
}

func TestListUsesFallbackName(t *testing.T) {
	for name, st := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			svc := &CharacterService{Store: st}
			ctx := context.Background()

			rec := sampleRecord()
			rec.Basic.Name = ""
			id, err := svc.Save(ctx, rec)
			require.NoError(t, err)

			list, err := svc.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			require.Equal(t, id, list[0].ID)
			require.Equal(t, domain.FallbackName, list[0].Name)
		})
	}
}

func TestDeleteReportsExistence(t *testing.T) {
	for name, st := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			svc := &CharacterService{Store: st}
			ctx := context.Background()

			existed, err := svc.Delete(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
			require.NoError(t, err)
			require.False(t, existed, "deleting a missing id is a no-op, not an error")

			id, err := svc.Save(ctx, sampleRecord())
			require.NoError(t, err)

			existed, err = svc.Delete(ctx, id)
			require.NoError(t, err)
			require.True(t, existed)

			_, err = svc.Load(ctx, id)
			require.ErrorIs(t, err, store.ErrNotFound)

			// The active pointer no longer references the deleted record.
			_, err = svc.Active(ctx)
			require.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestActiveTracksLastSaved(t *testing.T) {
	for name, st := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			svc := &CharacterService{Store: st}
			ctx := context.Background()

			_, err := svc.Active(ctx)
			require.ErrorIs(t, err, store.ErrNotFound)

			first, err := svc.Save(ctx, sampleRecord())
			require.NoError(t, err)

			second, err := svc.Save(ctx, sampleRecord())
			require.NoError(t, err)
			require.NotEqual(t, first, second)

			active, err := svc.Active(ctx)
			require.NoError(t, err)
			require.Equal(t, second, active)
		})
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	for name, st := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			svc := &CharacterService{Store: st}
			ctx := context.Background()

			id, err := svc.Save(ctx, sampleRecord())
			require.NoError(t, err)

			text, err := svc.Export(ctx, id)
			require.NoError(t, err)
			require.Contains(t, text, "\n  ", "export must be pretty-printed")
			require.Contains(t, text, id)

			newID, err := svc.Import(ctx, text)
			require.NoError(t, err)
			require.NotEqual(t, id, newID, "import must mint a fresh identity")

			original, err := svc.Load(ctx, id)
			require.NoError(t, err)
			imported, err := svc.Load(ctx, newID)
			require.NoError(t, err)

			// Field-equal apart from identity and the re-stamped modified.
			imported.ID = original.ID
			imported.Modified = original.Modified
			require.Equal(t, original, imported)
		})
	}
}

func TestExportMissingRecord(t *testing.T) {
	for name, st := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			svc := &CharacterService{Store: st}
			_, err := svc.Export(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
			require.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestImportRejectsMalformedText(t *testing.T) {
	for name, st := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			svc := &CharacterService{Store: st}
			ctx := context.Background()

			_, err := svc.Import(ctx, "{not json")
			require.ErrorIs(t, err, ErrParse)

			// No partial state was created.
			list, err := svc.List(ctx)
			require.NoError(t, err)
			require.Empty(t, list)
		})
	}
}

func TestImportIgnoresUnknownFields(t *testing.T) {
	for name, st := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			svc := &CharacterService{Store: st}
			ctx := context.Background()

			id, err := svc.Save(ctx, sampleRecord())
			require.NoError(t, err)
			text, err := svc.Export(ctx, id)
			require.NoError(t, err)

			// Simulate an export from a newer revision of the format.
			var blob map[string]any
			require.NoError(t, json.Unmarshal([]byte(text), &blob))
			blob["spellbook"] = []string{"Elder Sign"}
			future, err := json.Marshal(blob)
			require.NoError(t, err)

			newID, err := svc.Import(ctx, string(future))
			require.NoError(t, err)

			imported, err := svc.Load(ctx, newID)
			require.NoError(t, err)
			require.Equal(t, "Harvey Walters", imported.Basic.Name)
		})
	}
}
