package printer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
	"github.com/Conceptual-Machines/chordsmith-api/internal/voicing"
)

// Voicing prints one ranked shape: a header line, a tab diagram for fretted
// instruments, the sounded notes and the lesson tip when present
func Voicing(w io.Writer, rank int, shape *voicing.Shape, capability *instrument.Capability) {
	bold.Fprintf(w, "%d. %s", rank, shape.Pattern())
	faint.Fprintf(w, "  %s, %s, score %.2f\n", shape.PositionLabel, shape.Difficulty, shape.Score)

	if capability != nil && capability.IsFretted() && len(shape.Frets) > 0 {
		for _, line := range Tab(shape, capability.StringNames) {
			fmt.Fprintf(w, "   %s\n", line)
		}
	}

	fmt.Fprintf(w, "   notes: %s\n", strings.Join(shape.Notes, " "))
	if shape.Tip != "" {
		cyan.Fprintf(w, "   tip: %s\n", shape.Tip)
	}
}

// Tab renders a fretted shape as tablature, highest string on top.
// Each line is "<string> |<fret or x>|".
func Tab(shape *voicing.Shape, stringNames []string) []string {
	width := 1
	nameWidth := 1
	for i, f := range shape.Frets {
		if n := len(strconv.Itoa(int(f))); f.IsSounded() && n > width {
			width = n
		}
		if i < len(stringNames) && len(stringNames[i]) > nameWidth {
			nameWidth = len(stringNames[i])
		}
	}

	lines := make([]string, 0, len(shape.Frets))
	for i := len(shape.Frets) - 1; i >= 0; i-- {
		name := strconv.Itoa(i)
		if i < len(stringNames) {
			name = stringNames[i]
		}

		cell := "x"
		if f := shape.Frets[i]; f.IsSounded() {
			cell = strconv.Itoa(int(f))
		}
		lines = append(lines, fmt.Sprintf("%-*s |-%s%s-|", nameWidth, name, strings.Repeat("-", width-len(cell)), cell))
	}
	return lines
}
