package voicing

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/chordsmith-api/internal/constraints"
	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

// lessonTip derives a short practice tip from the shape alone, so it is reproducible
func lessonTip(shape *Shape, chord *theory.ResolvedChord, capability *instrument.Capability) string {
	if !capability.IsFretted() {
		return keyboardTip(shape, chord)
	}

	var parts []string

	if shape.Position == 0 || shape.PositionLabel == "open position" {
		parts = append(parts, fmt.Sprintf("%s in open position.", shape.Chord))
	} else {
		parts = append(parts, fmt.Sprintf("%s in %s, starting at fret %d.", shape.Chord, shape.PositionLabel, shape.Position))
	}

	for _, b := range shape.Barres {
		parts = append(parts, fmt.Sprintf("Barre fret %d with your %s finger from the %s string to the %s string.",
			b.Fret, fingerName(b.Finger), capability.StringNames[b.FromString], capability.StringNames[b.ToString]))
	}

	if s, ok := rootString(shape, chord, capability); ok {
		if shape.Frets[s] == 0 {
			parts = append(parts, fmt.Sprintf("The root %s is the open %s string.", chord.RootName, capability.StringNames[s]))
		} else {
			parts = append(parts, fmt.Sprintf("The root %s sits on the %s string at fret %d.", chord.RootName, capability.StringNames[s], shape.Frets[s]))
		}
	}

	var muted, open []string
	for s, f := range shape.Frets {
		switch {
		case f == Muted:
			muted = append(muted, capability.StringNames[s])
		case f == 0:
			open = append(open, capability.StringNames[s])
		}
	}
	if len(open) > 0 {
		parts = append(parts, fmt.Sprintf("Let the open %s ring.", plural(open, "string")))
	}
	if len(muted) > 0 {
		parts = append(parts, fmt.Sprintf("Mute the %s.", plural(muted, "string")))
	}

	switch shape.Difficulty {
	case constraints.Beginner:
		parts = append(parts, "A good shape to start with.")
	case constraints.Intermediate:
		parts = append(parts, "Keep your thumb low behind the neck to reach every fret cleanly.")
	case constraints.Advanced:
		parts = append(parts, fmt.Sprintf("Practice slowly: this shape spans %d frets.", shape.Span+1))
	}

	return strings.Join(parts, " ")
}

func keyboardTip(shape *Shape, chord *theory.ResolvedChord) string {
	fingers := make([]string, len(shape.Fingers))
	for i, f := range shape.Fingers {
		fingers[i] = fmt.Sprintf("%d", f)
	}

	parts := []string{
		fmt.Sprintf("%s in %s: play %s with right-hand fingers %s.",
			shape.Chord, shape.PositionLabel, strings.Join(shape.Notes, " "), strings.Join(fingers, "-")),
	}
	if shape.Inversion > 0 && chord.Bass == nil {
		parts = append(parts, fmt.Sprintf("The root %s is not in the bass, which smooths movement from nearby chords.", chord.RootName))
	}
	switch shape.Difficulty {
	case constraints.Beginner:
		parts = append(parts, "The hand stays in one position.")
	case constraints.Intermediate:
		parts = append(parts, fmt.Sprintf("Stretch across %d semitones without lifting your wrist.", shape.Span))
	case constraints.Advanced:
		parts = append(parts, fmt.Sprintf("A wide reach of %d semitones: practice it slowly.", shape.Span))
	}
	return strings.Join(parts, " ")
}

// rootString finds the lowest string sounding the root
func rootString(shape *Shape, chord *theory.ResolvedChord, capability *instrument.Capability) (int, bool) {
	for s, f := range shape.Frets {
		if !f.IsSounded() {
			continue
		}
		if theory.PitchClassOf(capability.Tuning[s]+int(f)) == chord.Root {
			return s, true
		}
	}
	return 0, false
}

func fingerName(f Finger) string {
	switch f {
	case 1:
		return "first"
	case 2:
		return "second"
	case 3:
		return "third"
	case 4:
		return "fourth"
	}
	return "thumb"
}

func plural(names []string, noun string) string {
	if len(names) == 1 {
		return names[0] + " " + noun
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1] + " " + noun + "s"
}
