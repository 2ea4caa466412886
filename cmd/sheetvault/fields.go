package main

import (
	"fmt"
	"strings"

	"github.com/arkhamdesk/sheetvault/internal/sheet/domain"
	"github.com/arkhamdesk/sheetvault/internal/sheet/validate"
)

// applyField routes one "field value" edit onto the record, validating
// numeric input before it lands. Field names mirror the sheet tabs.
func applyField(rec *domain.CharacterRecord, field, value string) error {
	field = strings.ToLower(strings.TrimSpace(field))

	switch field {
	case "name":
		rec.Basic.Name = value
	case "player":
		rec.Basic.Player = value
	case "occupation":
		rec.Basic.Occupation = value
	case "gender":
		rec.Basic.Gender = value
	case "residence":
		rec.Basic.Residence = value
	case "birthplace":
		rec.Basic.Birthplace = value
	case "age":
		v, res := validate.CheckString(validate.KindAge, value)
		if !res.Valid {
			return fmt.Errorf("%s", res.Reason)
		}
		rec.Basic.Age = domain.Int(v)
	case "str", "con", "siz", "dex", "app", "int", "pow", "edu", "luck":
		v, res := validate.CheckString(validate.KindCharacteristic, value)
		if !res.Valid {
			return fmt.Errorf("%s: %s", field, res.Reason)
		}
		setCharacteristic(&rec.Intermediate.Characteristics, field, v)
	case "san":
		v, res := validate.CheckString(validate.KindSanity, value)
		if !res.Valid {
			return fmt.Errorf("%s", res.Reason)
		}
		rec.Intermediate.SanCurrent = domain.Int(v)
	case "backstory":
		rec.Advanced.Backstory = value
	case "traits":
		rec.Advanced.Traits = value
	case "notes":
		rec.Advanced.Notes = value
	case "gear":
		rec.Advanced.Gear = splitGear(value)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

func setCharacteristic(c *domain.Characteristics, field string, v int) {
	switch field {
	case "str":
		c.STR = domain.Int(v)
	case "con":
		c.CON = domain.Int(v)
	case "siz":
		c.SIZ = domain.Int(v)
	case "dex":
		c.DEX = domain.Int(v)
	case "app":
		c.APP = domain.Int(v)
	case "int":
		c.INT = domain.Int(v)
	case "pow":
		c.POW = domain.Int(v)
	case "edu":
		c.EDU = domain.Int(v)
	case "luck":
		c.LUCK = domain.Int(v)
	}
}

func splitGear(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
