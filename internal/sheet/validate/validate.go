// Package validate holds the field range rules. Rules are a fixed table keyed
// by field kind; checks are pure and stateless so the UI can run them on every
// keystroke without side effects.
package validate

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKind enumerates the numeric field families on the sheet.
type FieldKind string

const (
	KindCharacteristic FieldKind = "characteristic"
	KindAge            FieldKind = "age"
	KindSanity         FieldKind = "sanity"
)

type rule struct {
	min int
	max int
}

var rules = map[FieldKind]rule{
	KindCharacteristic: {min: 0, max: 100},
	KindAge:            {min: 15, max: 99},
	KindSanity:         {min: 0, max: 99},
}

// Result reports whether a value passed and, when it did not, why.
type Result struct {
	Valid  bool
	Reason string
}

// Check validates an already-parsed integer against the rule for kind.
func Check(kind FieldKind, value int) Result {
	r, ok := rules[kind]
	if !ok {
		return Result{Reason: fmt.Sprintf("unknown field kind %q", kind)}
	}
	if value < r.min || value > r.max {
		return Result{Reason: fmt.Sprintf("%s must be between %d and %d", kind, r.min, r.max)}
	}
	return Result{Valid: true}
}

// CheckString parses raw form input and validates it. Non-numeric input for a
// numeric field is rejected, not coerced.
func CheckString(kind FieldKind, raw string) (int, Result) {
	raw = strings.TrimSpace(raw)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, Result{Reason: fmt.Sprintf("%s must be a whole number", kind)}
	}
	return v, Check(kind, v)
}
