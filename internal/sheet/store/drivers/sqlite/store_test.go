package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/arkhamdesk/sheetvault/internal/sheet/domain"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}

func TestPutOverwritesListingColumns(t *testing.T) {
	st := newTestStore(t)
	chars := st.Characters()
	ctx := context.Background()

	rec := domain.CharacterRecord{
		ID:       "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Modified: time.Now().UTC().Truncate(time.Second),
	}
	rec.Basic.Name = "Before"
	require.NoError(t, chars.Put(ctx, rec))

	rec.Basic.Name = "After"
	rec.Modified = rec.Modified.Add(time.Minute)
	require.NoError(t, chars.Put(ctx, rec))

	// List reads the denormalized columns, not the payload; they must have
	// been rewritten along with it.
	list, err := chars.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "After", list[0].Name)
	require.WithinDuration(t, rec.Modified, list[0].Modified, time.Second)
}

func TestPutRequiresID(t *testing.T) {
	st := newTestStore(t)
	err := st.Characters().Put(context.Background(), domain.CharacterRecord{})
	require.Error(t, err)
}
