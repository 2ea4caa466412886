package domain

import "time"

// SchemaVersion is stamped into every record so future revisions can migrate
// old exports on import.
const SchemaVersion = 1

// CharacterRecord is a full investigator sheet. The UI session owns the live
// record; storage drivers only ever hold a serialized copy of it.
type CharacterRecord struct {
	ID       string    `json:"id"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Version  int       `json:"version"`

	Basic        BasicInfo    `json:"basic"`
	Intermediate Intermediate `json:"intermediate"`
	Advanced     Advanced     `json:"advanced"`
}

// BasicInfo holds the identity tab of the sheet.
type BasicInfo struct {
	Name       string `json:"name,omitempty"`
	Player     string `json:"player,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	Age        *int   `json:"age,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Residence  string `json:"residence,omitempty"`
	Birthplace string `json:"birthplace,omitempty"`
}

// Intermediate holds the characteristics tab: rolled characteristics plus the
// attributes derived from them.
type Intermediate struct {
	Characteristics Characteristics `json:"characteristics"`

	// Derived is recomputed from Characteristics on every edit, never
	// entered by the user.
	Derived Derived `json:"derived"`

	// SanCurrent starts equal to Derived.San and is adjusted by the player
	// as sanity is lost or regained.
	SanCurrent *int `json:"sanCurrent,omitempty"`
}

// Characteristics are the nine rolled stats, each 0-100. A nil field means the
// player has not filled it in yet, which is distinct from an explicit zero.
type Characteristics struct {
	STR  *int `json:"str,omitempty"`
	CON  *int `json:"con,omitempty"`
	SIZ  *int `json:"siz,omitempty"`
	DEX  *int `json:"dex,omitempty"`
	APP  *int `json:"app,omitempty"`
	INT  *int `json:"int,omitempty"`
	POW  *int `json:"pow,omitempty"`
	EDU  *int `json:"edu,omitempty"`
	LUCK *int `json:"luck,omitempty"`
}

// Derived are the computed attributes. DB is kept as the dice expression shown
// on the sheet ("+1D4", "-2", "0").
type Derived struct {
	HP    int    `json:"hp"`
	MP    int    `json:"mp"`
	San   int    `json:"san"`
	Mov   int    `json:"mov"`
	Build int    `json:"build"`
	DB    string `json:"db"`
}

// Advanced holds the backstory tab.
type Advanced struct {
	Backstory string   `json:"backstory,omitempty"`
	Traits    string   `json:"traits,omitempty"`
	Gear      []string `json:"gear,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// Summary is the listing projection of a record.
type Summary struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Modified time.Time `json:"modified"`
}

// Clone returns a deep copy so that stored records and scheduler snapshots
// never alias the live record.
func (r CharacterRecord) Clone() CharacterRecord {
	out := r
	out.Basic.Age = clonePtr(r.Basic.Age)
	out.Intermediate.Characteristics = r.Intermediate.Characteristics.Clone()
	out.Intermediate.SanCurrent = clonePtr(r.Intermediate.SanCurrent)
	if r.Advanced.Gear != nil {
		out.Advanced.Gear = make([]string, len(r.Advanced.Gear))
		copy(out.Advanced.Gear, r.Advanced.Gear)
	}
	return out
}

// Clone returns a copy with fresh pointers.
func (c Characteristics) Clone() Characteristics {
	return Characteristics{
		STR:  clonePtr(c.STR),
		CON:  clonePtr(c.CON),
		SIZ:  clonePtr(c.SIZ),
		DEX:  clonePtr(c.DEX),
		APP:  clonePtr(c.APP),
		INT:  clonePtr(c.INT),
		POW:  clonePtr(c.POW),
		EDU:  clonePtr(c.EDU),
		LUCK: clonePtr(c.LUCK),
	}
}

// FallbackName is shown in listings for records whose name is still blank.
const FallbackName = "Unnamed Investigator"

// DisplayName returns the sheet name or a fallback for unnamed records.
func (r CharacterRecord) DisplayName() string {
	if r.Basic.Name == "" {
		return FallbackName
	}
	return r.Basic.Name
}

// Summarize builds the listing projection for the record.
func (r CharacterRecord) Summarize() Summary {
	return Summary{ID: r.ID, Name: r.DisplayName(), Modified: r.Modified}
}

func clonePtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Int is a convenience for building optional fields in one expression.
func Int(v int) *int { return &v }
