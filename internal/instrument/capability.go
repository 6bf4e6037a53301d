package instrument

import (
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
	"github.com/Conceptual-Machines/chordsmith-api/pkg/embedded"
)

// Capability describes the physical limits of one instrument.
// Fretted fields are zero for keyed instruments and vice versa.
type Capability struct {
	Kind   Kind   `json:"kind"`
	Family Family `json:"family"`

	// Fretted
	Tuning      []int    `json:"tuning,omitempty"` // MIDI, lowest string first
	TuningNames []string `json:"tuningNames,omitempty"`
	StringNames []string `json:"stringNames,omitempty"`
	MaxFret     int      `json:"maxFret,omitempty"`
	MaxStretch  int      `json:"maxStretch,omitempty"`
	MinSounded  int      `json:"minSounded,omitempty"`

	// Keyed
	LowestKey  int `json:"lowestKey,omitempty"`
	HighestKey int `json:"highestKey,omitempty"`
	MaxReach   int `json:"maxReach,omitempty"`

	MaxFingers     int      `json:"maxFingers"`
	ConstraintKeys []string `json:"constraintKeys"`
	VoicingTypes   []string `json:"voicingTypes"`
}

// IsFretted reports whether the instrument uses the string/fret search
func (c *Capability) IsFretted() bool {
	return c.Family == Fretted
}

// StringCount is the number of strings, zero for keyed instruments
func (c *Capability) StringCount() int {
	return len(c.Tuning)
}

// SupportsKey reports whether a constraint key is meaningful on this instrument
func (c *Capability) SupportsKey(key string) bool {
	return contains(c.ConstraintKeys, key)
}

// SupportsVoicingType reports whether the voicing type can be produced on this instrument
func (c *Capability) SupportsVoicingType(voicingType string) bool {
	return voicingType == "any" || contains(c.VoicingTypes, voicingType)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Table is the read-only capability table, loaded once at startup
type Table struct {
	Version int
	byKind  map[Kind]*Capability
	order   []Kind
}

// Get returns the capability for a kind
func (t *Table) Get(kind Kind) (*Capability, error) {
	c, ok := t.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not in the capability table", ErrUnknownInstrument, kind)
	}
	return c, nil
}

// Lookup parses an instrument name and returns its capability
func (t *Table) Lookup(name string) (*Capability, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return t.Get(kind)
}

// All returns every capability in table order
func (t *Table) All() []*Capability {
	out := make([]*Capability, 0, len(t.order))
	for _, kind := range t.order {
		out = append(out, t.byKind[kind])
	}
	return out
}

type tableFile struct {
	Version     int              `yaml:"version"`
	Instruments []instrumentFile `yaml:"instruments"`
}

type instrumentFile struct {
	Kind           string   `yaml:"kind"`
	Family         string   `yaml:"family"`
	Tuning         []string `yaml:"tuning"`
	MaxFret        int      `yaml:"maxFret"`
	MaxFingers     int      `yaml:"maxFingers"`
	MaxStretch     int      `yaml:"maxStretch"`
	MinSounded     int      `yaml:"minSounded"`
	LowestKey      string   `yaml:"lowestKey"`
	HighestKey     string   `yaml:"highestKey"`
	MaxReach       int      `yaml:"maxReach"`
	ConstraintKeys []string `yaml:"constraintKeys"`
	VoicingTypes   []string `yaml:"voicingTypes"`
}

// Load parses and checks a capability table.
// Any malformed entry is an error: the table is static data and must be fixed at the source.
func Load(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse capability table: %w", err)
	}
	if len(file.Instruments) == 0 {
		return nil, fmt.Errorf("capability table has no instruments")
	}

	table := &Table{
		Version: file.Version,
		byKind:  make(map[Kind]*Capability, len(file.Instruments)),
	}
	for i, entry := range file.Instruments {
		c, err := entry.toCapability()
		if err != nil {
			return nil, fmt.Errorf("capability table entry %d: %w", i, err)
		}
		if _, dup := table.byKind[c.Kind]; dup {
			return nil, fmt.Errorf("capability table entry %d: duplicate instrument %q", i, c.Kind)
		}
		table.byKind[c.Kind] = c
		table.order = append(table.order, c.Kind)
	}

	return table, nil
}

func (f instrumentFile) toCapability() (*Capability, error) {
	kind, err := ParseKind(f.Kind)
	if err != nil {
		return nil, err
	}
	if f.MaxFingers <= 0 {
		return nil, fmt.Errorf("%s: maxFingers must be positive", kind)
	}

	c := &Capability{
		Kind:           kind,
		Family:         Family(f.Family),
		MaxFingers:     f.MaxFingers,
		ConstraintKeys: f.ConstraintKeys,
		VoicingTypes:   f.VoicingTypes,
	}

	switch c.Family {
	case Fretted:
		if len(f.Tuning) == 0 {
			return nil, fmt.Errorf("%s: fretted instrument has an empty tuning", kind)
		}
		if f.MaxFret <= 0 {
			return nil, fmt.Errorf("%s: maxFret must be positive", kind)
		}
		if f.MaxStretch <= 0 {
			return nil, fmt.Errorf("%s: maxStretch must be positive", kind)
		}
		for _, name := range f.Tuning {
			midi, err := theory.NoteNameToMIDI(name)
			if err != nil {
				return nil, fmt.Errorf("%s: bad tuning: %w", kind, err)
			}
			c.Tuning = append(c.Tuning, midi)
			c.TuningNames = append(c.TuningNames, name)
		}
		c.MaxFret = f.MaxFret
		c.MaxStretch = f.MaxStretch
		c.MinSounded = f.MinSounded
		if c.MinSounded <= 0 || c.MinSounded > len(c.Tuning) {
			return nil, fmt.Errorf("%s: minSounded must be between 1 and %d", kind, len(c.Tuning))
		}
		c.StringNames = stringNames(c.Tuning)

	case Keyed:
		low, err := theory.NoteNameToMIDI(f.LowestKey)
		if err != nil {
			return nil, fmt.Errorf("%s: bad lowestKey: %w", kind, err)
		}
		high, err := theory.NoteNameToMIDI(f.HighestKey)
		if err != nil {
			return nil, fmt.Errorf("%s: bad highestKey: %w", kind, err)
		}
		if high <= low {
			return nil, fmt.Errorf("%s: highestKey must be above lowestKey", kind)
		}
		if f.MaxReach <= 0 {
			return nil, fmt.Errorf("%s: maxReach must be positive", kind)
		}
		c.LowestKey = low
		c.HighestKey = high
		c.MaxReach = f.MaxReach

	default:
		return nil, fmt.Errorf("%s: unknown family %q", kind, f.Family)
	}

	return c, nil
}

// stringNames labels strings by pitch class, adding "low"/"high" where a name repeats
func stringNames(tuning []int) []string {
	counts := make(map[theory.PitchClass]int, len(tuning))
	for _, midi := range tuning {
		counts[theory.PitchClassOf(midi)]++
	}

	names := make([]string, len(tuning))
	for i, midi := range tuning {
		pc := theory.PitchClassOf(midi)
		name := pc.Name(false)
		if counts[pc] > 1 {
			switch i {
			case 0:
				name = "low " + name
			case len(tuning) - 1:
				name = "high " + name
			}
		}
		names[i] = name
	}
	return names
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the embedded capability table
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Load(embedded.InstrumentsYAML)
	})
	return defaultTable, defaultErr
}
