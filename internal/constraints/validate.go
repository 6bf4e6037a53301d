package constraints

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

const minDropVoicingTones = 4

// ValidationResult lists every conflict found, with one suggestion per conflict in the same order
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	Conflicts   []string `json:"conflicts"`
	Suggestions []string `json:"suggestions"`
}

func (r *ValidationResult) add(conflict, suggestion string) {
	r.Conflicts = append(r.Conflicts, conflict)
	r.Suggestions = append(r.Suggestions, suggestion)
	r.Valid = false
}

// Err converts an invalid result into a CONSTRAINT_CONFLICT error, nil when valid
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return models.NewGenerationError(
		models.CodeConstraintConflict,
		strings.Join(r.Conflicts, "; "),
		append([]string{}, r.Suggestions...),
	)
}

// Validate checks merged constraints against an instrument's physical limits.
// All violations are accumulated. chord may be nil, in which case checks that depend
// on the chord's tone count are skipped.
func Validate(c Constraints, capability *instrument.Capability, chord *theory.ResolvedChord) ValidationResult {
	result := ValidationResult{Valid: true, Conflicts: []string{}, Suggestions: []string{}}

	checkFretWindow(&result, c, capability)
	checkBarreWindow(&result, c, capability)
	checkMaxSpan(&result, c, capability)
	checkStringCount(&result, capability, chord)
	checkBeginnerBarre(&result, c)
	checkStringSubset(&result, c, capability, chord)
	checkSupported(&result, c, capability)
	checkDropVoicing(&result, c, chord)

	return result
}

func checkFretWindow(r *ValidationResult, c Constraints, capability *instrument.Capability) {
	if c.FretWindow == nil {
		return
	}
	w := *c.FretWindow
	if !capability.IsFretted() {
		r.add(
			fmt.Sprintf("%s has no frets, so fretWindow %s cannot apply", capability.Kind, w),
			fmt.Sprintf("Remove fretWindow for %s requests", capability.Kind),
		)
		return
	}
	if w.Min < 0 || w.Max > capability.MaxFret || w.Min > w.Max {
		r.add(
			fmt.Sprintf("fretWindow %s is outside the %s range 0-%d", w, capability.Kind, capability.MaxFret),
			fmt.Sprintf("Use a fretWindow between 0 and %d with min no greater than max", capability.MaxFret),
		)
	}
}

func checkBarreWindow(r *ValidationResult, c Constraints, capability *instrument.Capability) {
	if !capability.IsFretted() || c.VoicingType == nil || *c.VoicingType != Barre || c.FretWindow == nil {
		return
	}
	if c.FretWindow.Min < 1 {
		r.add(
			fmt.Sprintf("barre voicings need a fretted position but fretWindow %s starts at the nut", *c.FretWindow),
			fmt.Sprintf("Raise the fretWindow minimum to 1 or higher (e.g. [1,%d])", max(c.FretWindow.Max, 5)),
		)
	}
}

func checkMaxSpan(r *ValidationResult, c Constraints, capability *instrument.Capability) {
	if c.MaxSpan == nil || !capability.IsFretted() {
		return
	}
	if span := *c.MaxSpan; span < 0 {
		r.add(
			fmt.Sprintf("maxSpan %d is negative", span),
			"Set maxSpan to 0 or more",
		)
	}
}

// checkStringCount catches chords with more required tones than the instrument has
// strings. Each string sounds one note, so no span or window setting can help.
func checkStringCount(r *ValidationResult, capability *instrument.Capability, chord *theory.ResolvedChord) {
	if chord == nil || !capability.IsFretted() {
		return
	}
	required, available := chord.RequiredCount(), capability.StringCount()
	if required > available {
		r.add(
			fmt.Sprintf("%s needs %d strings for its required tones but %s has %d", chord.Name, required, capability.Kind, available),
			"Choose a chord with fewer required tones or use keyboard",
		)
	}
}

func checkBeginnerBarre(r *ValidationResult, c Constraints) {
	if c.Difficulty == nil || c.VoicingType == nil {
		return
	}
	if *c.Difficulty == Beginner && *c.VoicingType == Barre {
		r.add(
			"beginner difficulty conflicts with barre voicings: barre chords are never tagged beginner",
			"Drop the difficulty filter or set voicingType to open",
		)
	}
}

func checkStringSubset(r *ValidationResult, c Constraints, capability *instrument.Capability, chord *theory.ResolvedChord) {
	if c.StringSubset == nil || !capability.IsFretted() {
		return
	}

	total := capability.StringCount()
	seen := make(map[int]bool, len(c.StringSubset))
	for _, idx := range c.StringSubset {
		if idx < 0 || idx >= total {
			r.add(
				fmt.Sprintf("stringSubset index %d is outside the %s's strings 0-%d", idx, capability.Kind, total-1),
				fmt.Sprintf("Use string indices between 0 (%s) and %d (%s)", capability.StringNames[0], total-1, capability.StringNames[total-1]),
			)
			return
		}
		seen[idx] = true
	}

	need := 1
	name := "a chord"
	if chord != nil {
		need = chord.RequiredCount()
		name = chord.Name
	}
	if len(seen) < need {
		r.add(
			fmt.Sprintf("stringSubset has %d strings but %s needs %d required tones", len(seen), name, need),
			fmt.Sprintf("Include at least %d strings in stringSubset", need),
		)
	}
}

func checkSupported(r *ValidationResult, c Constraints, capability *instrument.Capability) {
	for _, key := range c.Keys() {
		if key == KeyFretWindow {
			continue
		}
		if !capability.SupportsKey(key) {
			r.add(
				fmt.Sprintf("%s is not meaningful for %s", key, capability.Kind),
				fmt.Sprintf("Remove %s for %s requests", key, capability.Kind),
			)
		}
	}

	if c.VoicingType != nil && capability.SupportsKey(KeyVoicingType) && !capability.SupportsVoicingType(string(*c.VoicingType)) {
		r.add(
			fmt.Sprintf("%s voicings are not available on %s", *c.VoicingType, capability.Kind),
			fmt.Sprintf("Use voicingType %s or any", strings.Join(capability.VoicingTypes, ", ")),
		)
	}
}

func checkDropVoicing(r *ValidationResult, c Constraints, chord *theory.ResolvedChord) {
	if chord == nil || c.VoicingType == nil || *c.VoicingType != DropVoicing {
		return
	}
	if n := chord.DistinctCount(); n < minDropVoicingTones {
		r.add(
			fmt.Sprintf("drop voicings need %d distinct chord tones but %s has %d", minDropVoicingTones, chord.Name, n),
			"Set voicingType to open or any, or choose a seventh chord",
		)
	}
}
