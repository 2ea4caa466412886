// Package derive computes the attributes of a sheet that are never entered
// directly: hit points, magic points, starting sanity, movement rate, build
// and damage bonus. Everything here is a pure function of the rolled
// characteristics (plus age for movement), so recomputing from the same
// inputs always yields the same result.
package derive

import (
	"strconv"

	"github.com/arkhamdesk/sheetvault/internal/sheet/domain"
)

// Input carries the fields the calculator reads. Age is optional; when nil no
// age deduction is applied to movement.
type Input struct {
	Characteristics domain.Characteristics
	Age             *int
}

// buildTier maps a STR+SIZ sum range to a build score and damage bonus
// expression. Evaluated first-match, so the order matters.
type buildTier struct {
	minSum int
	maxSum int
	build  int
	db     string
}

// Standard seventh edition build table. Sums above the last tier gain one
// build and one damage die per further 80 points; Recalculate extends the
// table arithmetically rather than listing tiers nobody rolls.
var buildTiers = []buildTier{
	{2, 64, -2, "-2"},
	{65, 84, -1, "-1"},
	{85, 124, 0, "0"},
	{125, 164, 1, "+1D4"},
	{165, 204, 2, "+1D6"},
	{205, 284, 3, "+2D6"},
	{285, 364, 4, "+3D6"},
	{365, 444, 5, "+4D6"},
	{445, 524, 6, "+5D6"},
}

// Recalculate computes the derived block from the rolled characteristics.
// It reports ok=false when any required characteristic (STR, CON, SIZ, DEX,
// POW) is still unset, so a partially filled sheet renders blanks instead of
// crashing.
func Recalculate(in Input) (domain.Derived, bool) {
	c := in.Characteristics
	if c.STR == nil || c.CON == nil || c.SIZ == nil || c.DEX == nil || c.POW == nil {
		return domain.Derived{}, false
	}

	build, db := BuildAndDamageBonus(*c.STR + *c.SIZ)

	d := domain.Derived{
		HP:    (*c.CON + *c.SIZ) / 10,
		MP:    *c.POW / 5,
		San:   *c.POW,
		Mov:   Movement(*c.STR, *c.DEX, *c.SIZ, in.Age),
		Build: build,
		DB:    db,
	}
	return d, true
}

// BuildAndDamageBonus looks up the build score and damage bonus expression
// for a STR+SIZ sum.
func BuildAndDamageBonus(sum int) (build int, db string) {
	for _, t := range buildTiers {
		if sum >= t.minSum && sum <= t.maxSum {
			return t.build, t.db
		}
	}
	last := buildTiers[len(buildTiers)-1]
	if sum > last.maxSum {
		extra := (sum - last.maxSum + 79) / 80
		build = last.build + extra
		return build, "+" + strconv.Itoa(build-1) + "D6"
	}
	// Sums below 2 cannot occur with in-range characteristics; clamp to the
	// weakest tier so malformed input still renders something sane.
	return buildTiers[0].build, buildTiers[0].db
}

// Movement derives the base movement rate from the relative ordering of DEX,
// STR and SIZ, then applies the age deduction.
func Movement(str, dex, siz int, age *int) int {
	mov := 8
	switch {
	case dex < siz && str < siz:
		mov = 7
	case dex > siz && str > siz:
		mov = 9
	}

	if age != nil {
		switch {
		case *age >= 80:
			mov -= 5
		case *age >= 70:
			mov -= 4
		case *age >= 60:
			mov -= 3
		case *age >= 50:
			mov -= 2
		case *age >= 40:
			mov -= 1
		}
	}

	if mov < 1 {
		mov = 1
	}
	return mov
}

// Apply recomputes the derived block in place on a record and initializes
// SanCurrent the first time sanity becomes known. Returns ok=false (record
// untouched except for a zeroed derived block) when inputs are incomplete.
func Apply(rec *domain.CharacterRecord) bool {
	d, ok := Recalculate(Input{
		Characteristics: rec.Intermediate.Characteristics,
		Age:             rec.Basic.Age,
	})
	rec.Intermediate.Derived = d
	if ok && rec.Intermediate.SanCurrent == nil {
		rec.Intermediate.SanCurrent = domain.Int(d.San)
	}
	return ok
}
