package voicing

import (
	"fmt"
	"math"
	"sort"

	"github.com/Conceptual-Machines/chordsmith-api/internal/constraints"
	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

const (
	MinCount     = 3
	MaxCount     = 4
	DefaultCount = 4

	// candidates whose lowest fretted positions are this close are considered the same region
	diversityDistance = 1
)

// Options controls result size and annotation
type Options struct {
	Count  int
	Lesson bool
}

// ClampCount forces a requested count into [MinCount, MaxCount]. Zero means DefaultCount.
func ClampCount(n int) int {
	switch {
	case n == 0:
		return DefaultCount
	case n < MinCount:
		return MinCount
	case n > MaxCount:
		return MaxCount
	}
	return n
}

// Result is a ranked selection plus search statistics
type Result struct {
	Shapes     []Shape `json:"voicings"`
	Candidates int     `json:"candidates"`
	Explored   int     `json:"explored"`
}

type candidate struct {
	shape   Shape
	pattern string
}

// Search enumerates, scores and ranks voicings of chord on an instrument.
// The constraints must already have passed validation. When nothing survives the
// filters the error is a NO_VOICINGS_FOUND GenerationError.
func Search(chord *theory.ResolvedChord, capability *instrument.Capability, c constraints.Constraints, opts Options) (*Result, error) {
	if chord == nil || capability == nil {
		return nil, fmt.Errorf("search needs a chord and an instrument")
	}

	var (
		cands    []candidate
		explored int
	)
	switch capability.Family {
	case instrument.Fretted:
		cands, explored = newFrettedSearch(chord, capability, c).run()
	case instrument.Keyed:
		cands, explored = newKeyboardSearch(chord, capability, c).run()
	default:
		return nil, fmt.Errorf("unsupported instrument family %q for %s", capability.Family, capability.Kind)
	}

	cands = dedupe(cands)
	if len(cands) == 0 {
		return nil, noVoicingsError(chord, capability, c)
	}
	sortCandidates(cands)

	selected := selectDiverse(cands, ClampCount(opts.Count))
	shapes := make([]Shape, 0, len(selected))
	for _, cand := range selected {
		shape := cand.shape
		if opts.Lesson {
			shape.Tip = lessonTip(&shape, chord, capability)
		}
		shapes = append(shapes, shape)
	}

	return &Result{
		Shapes:     shapes,
		Candidates: len(cands),
		Explored:   explored,
	}, nil
}

// dedupe keeps the best-scoring instance of each pattern, in first-seen order
func dedupe(cands []candidate) []candidate {
	index := make(map[string]int, len(cands))
	out := make([]candidate, 0, len(cands))
	for _, cand := range cands {
		if i, seen := index[cand.pattern]; seen {
			if cand.shape.Score < out[i].shape.Score {
				out[i] = cand
			}
			continue
		}
		index[cand.pattern] = len(out)
		out = append(out, cand)
	}
	return out
}

func sortCandidates(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := &cands[i], &cands[j]
		if a.shape.Score != b.shape.Score {
			return a.shape.Score < b.shape.Score
		}
		if a.shape.Position != b.shape.Position {
			return a.shape.Position < b.shape.Position
		}
		return a.pattern < b.pattern
	})
}

// selectDiverse takes the best candidates while skipping ones in an already-used
// region, then relaxes diversity if that leaves fewer than MinCount.
func selectDiverse(cands []candidate, count int) []candidate {
	used := make([]bool, len(cands))
	var picked []int

	for i := range cands {
		if len(picked) == count {
			break
		}
		if tooClose(cands, picked, i) {
			continue
		}
		picked = append(picked, i)
		used[i] = true
	}

	floor := min(MinCount, count)
	for i := range cands {
		if len(picked) >= floor {
			break
		}
		if !used[i] {
			picked = append(picked, i)
			used[i] = true
		}
	}

	sort.Ints(picked)
	out := make([]candidate, 0, len(picked))
	for _, i := range picked {
		out = append(out, cands[i])
	}
	return out
}

func tooClose(cands []candidate, picked []int, i int) bool {
	for _, p := range picked {
		d := cands[i].shape.Position - cands[p].shape.Position
		if d < 0 {
			d = -d
		}
		if d <= diversityDistance {
			return true
		}
	}
	return false
}

func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}

// noVoicingsError suggests relaxing whichever constraints were in force
func noVoicingsError(chord *theory.ResolvedChord, capability *instrument.Capability, c constraints.Constraints) error {
	var suggestions []string
	if c.MaxSpan != nil {
		suggestions = append(suggestions, fmt.Sprintf("Relax maxSpan (currently %d); try %d", *c.MaxSpan, max(*c.MaxSpan+2, 3)))
	}
	if c.FretWindow != nil {
		suggestions = append(suggestions, fmt.Sprintf("Widen the fret window beyond %s, e.g. [0,%d]", *c.FretWindow, min(capability.MaxFret, max(c.FretWindow.Max+5, 12))))
	}
	if c.AllowMuted != nil && !*c.AllowMuted {
		suggestions = append(suggestions, "Allow muted strings")
	}
	if c.StringSubset != nil {
		suggestions = append(suggestions, "Use more strings or drop the stringSubset")
	}
	if c.Difficulty != nil && *c.Difficulty != constraints.AnyDifficulty {
		suggestions = append(suggestions, fmt.Sprintf("Drop the %s difficulty filter", *c.Difficulty))
	}
	if c.VoicingType != nil && *c.VoicingType != constraints.AnyVoicing {
		suggestions = append(suggestions, fmt.Sprintf("Drop the %s voicing type filter", *c.VoicingType))
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, fmt.Sprintf("Try a simpler chord than %s or another instrument", chord.Name))
	}

	return models.NewGenerationError(
		models.CodeNoVoicingsFound,
		fmt.Sprintf("no playable %s voicings of %s satisfy the constraints", capability.Kind, chord.Name),
		suggestions,
	)
}

// isDrop2 reports whether four ascending pitches form a drop-2 voicing:
// raising the bass an octave yields a close voicing with the raised note third from the top.
func isDrop2(midi []int) bool {
	if len(midi) != 4 {
		return false
	}
	raised := midi[0] + 12
	return midi[2] < raised && raised < midi[3] && midi[3]-midi[1] < 12
}

// inversionOf is the index in the chord's tone list of the bass pitch class
func inversionOf(chord *theory.ResolvedChord, bass theory.PitchClass) int {
	for i, tone := range chord.Tones {
		if chord.PitchClassOfTone(tone) == bass {
			return i
		}
	}
	return 0
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
