package preview

import "sort"

// RhythmTemplate defines timing and accent patterns for one cycle
type RhythmTemplate struct {
	Name string
	// Offsets within a cycle, in beats
	Offsets []float64
	// Velocity multipliers for accents (1.0 = normal)
	Accents []float64
	// Fraction of the gap to the next hit that the note sounds for
	Articulation float64
	// Cycle length in beats
	Cycle float64
	// Order picks notes one at a time instead of striking the whole chord
	Order noteOrder
}

type noteOrder int

const (
	together noteOrder = iota
	ascending
	alberti
)

// Rhythm template constants
const (
	articulationFull    = 1.0
	articulationHigh    = 0.9
	articulationMidHigh = 0.85
	articulationShort   = 0.4
	articulationOverlap = 1.1
)

var rhythmTemplates = map[string]RhythmTemplate{
	"whole": {
		Name:         "whole",
		Offsets:      []float64{0},
		Accents:      []float64{1.0},
		Articulation: articulationFull,
		Cycle:        4,
	},
	"half": {
		Name:         "half",
		Offsets:      []float64{0, 2},
		Accents:      []float64{1.0, 0.9},
		Articulation: articulationFull,
		Cycle:        4,
	},
	"quarters": {
		Name:         "quarters",
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{1.0, 0.8, 0.9, 0.8},
		Articulation: articulationHigh,
		Cycle:        4,
	},
	"8ths": {
		Name:         "8ths",
		Offsets:      []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5},
		Accents:      []float64{1.0, 0.7, 0.9, 0.7, 0.95, 0.7, 0.9, 0.7},
		Articulation: articulationMidHigh,
		Cycle:        4,
	},
	"offbeat": {
		Name:         "offbeat",
		Offsets:      []float64{0.5, 1.5, 2.5, 3.5},
		Accents:      []float64{0.9, 0.85, 0.9, 0.85},
		Articulation: articulationMidHigh,
		Cycle:        4,
	},
	"syncopated": {
		Name:         "syncopated",
		Offsets:      []float64{0, 0.5, 1.5, 2, 3, 3.5},
		Accents:      []float64{1.0, 0.8, 0.9, 0.85, 0.95, 0.8},
		Articulation: articulationMidHigh,
		Cycle:        4,
	},
	"waltz": {
		Name:         "waltz",
		Offsets:      []float64{0, 1, 2},
		Accents:      []float64{1.0, 0.7, 0.75},
		Articulation: articulationHigh,
		Cycle:        3,
	},
	"broken": {
		Name:         "broken",
		Offsets:      []float64{0, 0.5, 1, 1.5},
		Accents:      []float64{1.0, 0.8, 0.85, 0.75},
		Articulation: articulationHigh,
		Cycle:        2,
		Order:        ascending,
	},
	"alberti": {
		Name:         "alberti",
		Offsets:      []float64{0, 0.5, 1, 1.5},
		Accents:      []float64{1.0, 0.7, 0.85, 0.7},
		Articulation: articulationMidHigh,
		Cycle:        2,
		Order:        alberti,
	},
	"staccato": {
		Name:         "staccato",
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{1.0, 0.9, 0.95, 0.9},
		Articulation: articulationShort,
		Cycle:        4,
	},
	"legato": {
		Name:         "legato",
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{0.9, 0.85, 0.9, 0.85},
		Articulation: articulationOverlap,
		Cycle:        4,
	},
}

// GetRhythmTemplate returns a rhythm template by name
func GetRhythmTemplate(name string) (RhythmTemplate, bool) {
	tmpl, ok := rhythmTemplates[name]
	return tmpl, ok
}

// Styles lists every accepted style name, sorted
func Styles() []string {
	names := []string{StyleBlock, StyleStrum, StyleArpeggio}
	for name := range rhythmTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// pick returns the note for the i-th hit of a cycle
func (o noteOrder) pick(notes []int, i int) int {
	if o == alberti && len(notes) >= 3 {
		// low, high, middle, high
		pattern := []int{0, len(notes) - 1, len(notes) / 2, len(notes) - 1}
		return notes[pattern[i%len(pattern)]]
	}
	return notes[i%len(notes)]
}

// IsStyle reports whether name is an accepted style
func IsStyle(name string) bool {
	switch name {
	case StyleBlock, StyleStrum, StyleArpeggio:
		return true
	}
	_, ok := rhythmTemplates[name]
	return ok
}
