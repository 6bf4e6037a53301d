package voicing

import (
	"encoding/json"
	"strconv"

	"github.com/Conceptual-Machines/chordsmith-api/internal/constraints"
	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
)

// Fret is a per-string state: Muted, 0 for open, n > 0 for fretted
type Fret int

// Muted marks a string that does not sound
const Muted Fret = -1

// IsSounded reports whether the string sounds
func (f Fret) IsSounded() bool {
	return f >= 0
}

// IsFretted reports whether a finger presses the string
func (f Fret) IsFretted() bool {
	return f > 0
}

// MarshalJSON writes muted strings as null
func (f Fret) MarshalJSON() ([]byte, error) {
	if f < 0 {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(f))), nil
}

func (f *Fret) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Muted
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = Fret(n)
	return nil
}

// Finger is a fretting-hand finger, 1 (index) to 4 (pinky), or 5 (thumb side) on keyboard.
// Zero means no finger and is written as null.
type Finger int

func (f Finger) MarshalJSON() ([]byte, error) {
	if f == 0 {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(f))), nil
}

func (f *Finger) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = Finger(n)
	return nil
}

// Barre is one finger pressing a run of strings at the same fret
type Barre struct {
	Fret       int    `json:"fret"`
	FromString int    `json:"fromString"`
	ToString   int    `json:"toString"`
	Finger     Finger `json:"finger"`
}

// Strings is the number of strings the barre covers
func (b Barre) Strings() int {
	return b.ToString - b.FromString + 1
}

// Shape is one playable voicing
type Shape struct {
	Instrument instrument.Kind `json:"instrument"`
	Chord      string          `json:"chord"`
	Root       int             `json:"root"`
	RootName   string          `json:"rootName"`

	// Fretted instruments, lowest string first
	Frets   []Fret   `json:"frets,omitempty"`
	Fingers []Finger `json:"fingers,omitempty"`
	Barres  []Barre  `json:"barres,omitempty"`

	// Keyboard, ascending MIDI
	Keys []int `json:"keys,omitempty"`

	Notes         []string               `json:"notes"`
	MIDINotes     []int                  `json:"midiNotes"`
	Difficulty    constraints.Difficulty `json:"difficulty"`
	Position      int                    `json:"position"`
	PositionLabel string                 `json:"positionLabel"`
	Span          int                    `json:"span"`
	Inversion     int                    `json:"inversion"`
	Score         float64                `json:"score"`
	Tip           string                 `json:"tip,omitempty"`
}

// HasBarre reports whether any finger covers more than one string
func (s *Shape) HasBarre() bool {
	return len(s.Barres) > 0
}

// Pattern is the fret-per-string (or key) signature used for deduplication
func (s *Shape) Pattern() string {
	var b []byte
	if len(s.Frets) > 0 {
		for i, f := range s.Frets {
			if i > 0 {
				b = append(b, '-')
			}
			if f < 0 {
				b = append(b, 'x')
			} else {
				b = strconv.AppendInt(b, int64(f), 10)
			}
		}
		return string(b)
	}
	for i, k := range s.Keys {
		if i > 0 {
			b = append(b, '-')
		}
		b = strconv.AppendInt(b, int64(k), 10)
	}
	return string(b)
}
