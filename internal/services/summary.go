package services

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/chordsmith-api/internal/constraints"
	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
	"github.com/Conceptual-Machines/chordsmith-api/internal/voicing"
)

// summarize builds the deterministic one-paragraph description of a result
func summarize(chord *theory.ResolvedChord, capability *instrument.Capability, c constraints.Constraints, shapes []voicing.Shape) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Found %d %s voicings for %s", len(shapes), chord.Name, capability.Kind)
	if applied := describeConstraints(c); applied != "" {
		fmt.Fprintf(&b, " (%s)", applied)
	}
	b.WriteString(".")

	if len(shapes) > 0 {
		best := shapes[0]
		fmt.Fprintf(&b, " The best-ranked is %s in %s, rated %s.", best.Pattern(), best.PositionLabel, best.Difficulty)
	}
	return b.String()
}

func describeConstraints(c constraints.Constraints) string {
	var parts []string
	if c.Difficulty != nil && *c.Difficulty != constraints.AnyDifficulty {
		parts = append(parts, string(*c.Difficulty))
	}
	if c.VoicingType != nil && *c.VoicingType != constraints.AnyVoicing {
		parts = append(parts, string(*c.VoicingType))
	}
	if c.FretWindow != nil {
		parts = append(parts, fmt.Sprintf("frets %d-%d", c.FretWindow.Min, c.FretWindow.Max))
	}
	if c.MaxSpan != nil {
		parts = append(parts, fmt.Sprintf("span at most %d", *c.MaxSpan))
	}
	if c.AllowMuted != nil && !*c.AllowMuted {
		parts = append(parts, "no muted strings")
	}
	if c.StringSubset != nil {
		parts = append(parts, fmt.Sprintf("%d strings", len(c.StringSubset)))
	}
	return strings.Join(parts, ", ")
}
