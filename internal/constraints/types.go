package constraints

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Difficulty is the playing-difficulty tag of a voicing
type Difficulty string

const (
	Beginner      Difficulty = "beginner"
	Intermediate  Difficulty = "intermediate"
	Advanced      Difficulty = "advanced"
	AnyDifficulty Difficulty = "any"
)

var difficulties = []Difficulty{Beginner, Intermediate, Advanced, AnyDifficulty}

// ParseDifficulty parses a difficulty name, case-insensitively
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range difficulties {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid difficulty %q (expected beginner, intermediate, advanced or any)", s)
}

// Rank orders concrete difficulties from 0 (beginner) to 2 (advanced); any is -1
func (d Difficulty) Rank() int {
	switch d {
	case Beginner:
		return 0
	case Intermediate:
		return 1
	case Advanced:
		return 2
	}
	return -1
}

func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// VoicingType restricts the shape family of a voicing
type VoicingType string

const (
	Open        VoicingType = "open"
	Barre       VoicingType = "barre"
	DropVoicing VoicingType = "dropVoicing"
	AnyVoicing  VoicingType = "any"
)

var voicingTypes = []VoicingType{Open, Barre, DropVoicing, AnyVoicing}

// ParseVoicingType parses a voicing type name, case-insensitively
func ParseVoicingType(s string) (VoicingType, error) {
	for _, v := range voicingTypes {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid voicing type %q (expected open, barre, dropVoicing or any)", s)
}

func (v VoicingType) MarshalText() ([]byte, error) {
	return []byte(v), nil
}

func (v *VoicingType) UnmarshalText(text []byte) error {
	parsed, err := ParseVoicingType(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FretWindow is an inclusive fret range
type FretWindow struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// UnmarshalJSON accepts {"min":a,"max":b} or [a,b]
func (w *FretWindow) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var pair []int
		if err := json.Unmarshal(trimmed, &pair); err != nil {
			return fmt.Errorf("invalid fret window: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("invalid fret window: expected [min, max], got %d values", len(pair))
		}
		w.Min, w.Max = pair[0], pair[1]
		return nil
	}

	type plain FretWindow
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return fmt.Errorf("invalid fret window: %w", err)
	}
	*w = FretWindow(p)
	return nil
}

func (w FretWindow) String() string {
	return fmt.Sprintf("[%d,%d]", w.Min, w.Max)
}

// Constraint keys
const (
	KeyDifficulty   = "difficulty"
	KeyVoicingType  = "voicingType"
	KeyFretWindow   = "fretWindow"
	KeyAllowMuted   = "allowMuted"
	KeyMaxSpan      = "maxSpan"
	KeyStringSubset = "stringSubset"
)

// Constraints is a partial set of playability constraints.
// A nil field means the key is absent, i.e. unconstrained.
type Constraints struct {
	Difficulty   *Difficulty  `json:"difficulty,omitempty"`
	VoicingType  *VoicingType `json:"voicingType,omitempty"`
	FretWindow   *FretWindow  `json:"fretWindow,omitempty"`
	AllowMuted   *bool        `json:"allowMuted,omitempty"`
	MaxSpan      *int         `json:"maxSpan,omitempty"`
	StringSubset []int        `json:"stringSubset,omitempty"`
}

// Ptr returns a pointer to v, for filling optional fields
func Ptr[T any](v T) *T {
	return &v
}

// Keys lists the keys present, in canonical order
func (c Constraints) Keys() []string {
	var keys []string
	if c.Difficulty != nil {
		keys = append(keys, KeyDifficulty)
	}
	if c.VoicingType != nil {
		keys = append(keys, KeyVoicingType)
	}
	if c.FretWindow != nil {
		keys = append(keys, KeyFretWindow)
	}
	if c.AllowMuted != nil {
		keys = append(keys, KeyAllowMuted)
	}
	if c.MaxSpan != nil {
		keys = append(keys, KeyMaxSpan)
	}
	if c.StringSubset != nil {
		keys = append(keys, KeyStringSubset)
	}
	return keys
}

// IsEmpty reports whether no key is present
func (c Constraints) IsEmpty() bool {
	return len(c.Keys()) == 0
}

// Merge overlays extracted on explicit. Extracted keys win on collision:
// free text is the user's most recent intent.
func Merge(explicit, extracted Constraints) Constraints {
	merged := explicit.clone()
	if extracted.Difficulty != nil {
		merged.Difficulty = Ptr(*extracted.Difficulty)
	}
	if extracted.VoicingType != nil {
		merged.VoicingType = Ptr(*extracted.VoicingType)
	}
	if extracted.FretWindow != nil {
		merged.FretWindow = Ptr(*extracted.FretWindow)
	}
	if extracted.AllowMuted != nil {
		merged.AllowMuted = Ptr(*extracted.AllowMuted)
	}
	if extracted.MaxSpan != nil {
		merged.MaxSpan = Ptr(*extracted.MaxSpan)
	}
	if extracted.StringSubset != nil {
		merged.StringSubset = append([]int{}, extracted.StringSubset...)
	}
	return merged
}

func (c Constraints) clone() Constraints {
	out := Constraints{}
	if c.Difficulty != nil {
		out.Difficulty = Ptr(*c.Difficulty)
	}
	if c.VoicingType != nil {
		out.VoicingType = Ptr(*c.VoicingType)
	}
	if c.FretWindow != nil {
		out.FretWindow = Ptr(*c.FretWindow)
	}
	if c.AllowMuted != nil {
		out.AllowMuted = Ptr(*c.AllowMuted)
	}
	if c.MaxSpan != nil {
		out.MaxSpan = Ptr(*c.MaxSpan)
	}
	if c.StringSubset != nil {
		out.StringSubset = append([]int{}, c.StringSubset...)
	}
	return out
}
