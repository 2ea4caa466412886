package derive

import (
	"testing"

	"github.com/arkhamdesk/sheetvault/internal/sheet/domain"
	"github.com/stretchr/testify/require"
)

func chars(str, con, siz, dex, pow int) domain.Characteristics {
	return domain.Characteristics{
		STR: domain.Int(str),
		CON: domain.Int(con),
		SIZ: domain.Int(siz),
		DEX: domain.Int(dex),
		POW: domain.Int(pow),
	}
}

func TestRecalculate(t *testing.T) {
	t.Parallel()

	t.Run("hp is floor of con plus siz over ten", func(t *testing.T) {
		d, ok := Recalculate(Input{Characteristics: chars(50, 60, 50, 50, 50)})
		require.True(t, ok)
		require.Equal(t, 11, d.HP)
	})

	t.Run("mp is floor of pow over five", func(t *testing.T) {
		d, ok := Recalculate(Input{Characteristics: chars(50, 50, 50, 50, 55)})
		require.True(t, ok)
		require.Equal(t, 11, d.MP)
	})

	t.Run("san starts equal to pow", func(t *testing.T) {
		d, ok := Recalculate(Input{Characteristics: chars(50, 50, 50, 50, 65)})
		require.True(t, ok)
		require.Equal(t, 65, d.San)
	})

	t.Run("missing required characteristic reports not ok", func(t *testing.T) {
		c := chars(50, 50, 50, 50, 50)
		c.SIZ = nil
		d, ok := Recalculate(Input{Characteristics: c})
		require.False(t, ok)
		require.Equal(t, domain.Derived{}, d)
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		in := Input{Characteristics: chars(70, 60, 55, 45, 80), Age: domain.Int(42)}
		first, ok := Recalculate(in)
		require.True(t, ok)
		for i := 0; i < 10; i++ {
			again, ok := Recalculate(in)
			require.True(t, ok)
			require.Equal(t, first, again)
		}
	})
}

func TestBuildAndDamageBonus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		sum   int
		build int
		db    string
	}{
		{2, -2, "-2"},
		{10, -2, "-2"},
		{64, -2, "-2"},
		{65, -1, "-1"},
		{84, -1, "-1"},
		{85, 0, "0"},
		{124, 0, "0"},
		{125, 1, "+1D4"},
		{164, 1, "+1D4"},
		{165, 2, "+1D6"},
		{204, 2, "+1D6"},
		{205, 3, "+2D6"},
		{284, 3, "+2D6"},
		{285, 4, "+3D6"},
		{365, 5, "+4D6"},
		{445, 6, "+5D6"},
		{524, 6, "+5D6"},
	}

	for _, tc := range cases {
		build, db := BuildAndDamageBonus(tc.sum)
		require.Equal(t, tc.build, build, "sum %d", tc.sum)
		require.Equal(t, tc.db, db, "sum %d", tc.sum)
	}
}

func TestMovement(t *testing.T) {
	t.Parallel()

	t.Run("both dex and str below siz", func(t *testing.T) {
		require.Equal(t, 7, Movement(40, 40, 60, nil))
	})

	t.Run("both dex and str above siz", func(t *testing.T) {
		require.Equal(t, 9, Movement(70, 70, 50, nil))
	})

	t.Run("mixed ordering", func(t *testing.T) {
		require.Equal(t, 8, Movement(70, 40, 50, nil))
		require.Equal(t, 8, Movement(50, 50, 50, nil))
	})

	t.Run("age deductions", func(t *testing.T) {
		require.Equal(t, 8, Movement(70, 70, 50, domain.Int(39)))
		require.Equal(t, 8, Movement(70, 70, 50, domain.Int(40)))
		require.Equal(t, 7, Movement(70, 70, 50, domain.Int(50)))
		require.Equal(t, 6, Movement(70, 70, 50, domain.Int(65)))
		require.Equal(t, 5, Movement(70, 70, 50, domain.Int(79)))
		require.Equal(t, 4, Movement(70, 70, 50, domain.Int(80)))
	})

	t.Run("deduction stacks on a low base", func(t *testing.T) {
		require.Equal(t, 2, Movement(40, 40, 60, domain.Int(85)))
	})
}

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("initializes sanCurrent once", func(t *testing.T) {
		rec := domain.CharacterRecord{}
		rec.Intermediate.Characteristics = chars(50, 50, 50, 50, 60)

		require.True(t, Apply(&rec))
		require.NotNil(t, rec.Intermediate.SanCurrent)
		require.Equal(t, 60, *rec.Intermediate.SanCurrent)

		// Player spends sanity; a later recompute must not reset it.
		rec.Intermediate.SanCurrent = domain.Int(44)
		require.True(t, Apply(&rec))
		require.Equal(t, 44, *rec.Intermediate.SanCurrent)
	})

	t.Run("incomplete sheet zeroes derived block", func(t *testing.T) {
		rec := domain.CharacterRecord{}
		rec.Intermediate.Characteristics.STR = domain.Int(50)

		require.False(t, Apply(&rec))
		require.Equal(t, domain.Derived{}, rec.Intermediate.Derived)
		require.Nil(t, rec.Intermediate.SanCurrent)
	})
}
