package voicing

import (
	"math"

	"github.com/Conceptual-Machines/chordsmith-api/internal/constraints"
	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

const (
	middleC              = 60
	minKeyboardKeys      = 3
	maxPitchClassDoubles = 2

	centreWeight    = 0.25
	keySpanWeight   = 0.5
	inversionWeight = 1.5

	beginnerMaxReach      = 9
	beginnerMaxInversion  = 1
	beginnerMaxKeys       = 4
	intermediateMaxReach  = 12
	intermediateInversion = 2
)

// rightHandFingers is the usual block-chord fingering by number of keys
var rightHandFingers = map[int][]Finger{
	2: {1, 5},
	3: {1, 3, 5},
	4: {1, 2, 3, 5},
	5: {1, 2, 3, 4, 5},
}

type keyboardSearch struct {
	chord      *theory.ResolvedChord
	capability *instrument.Capability
	c          constraints.Constraints

	keys     []int // every chord-tone key in range, ascending
	required uint16
	tones    uint16
	minKeys  int
	maxKeys  int
}

func newKeyboardSearch(chord *theory.ResolvedChord, capability *instrument.Capability, c constraints.Constraints) *keyboardSearch {
	ks := &keyboardSearch{
		chord:      chord,
		capability: capability,
		c:          c,
		required:   chord.RequiredSet(),
		tones:      chord.ToneSet(),
		minKeys:    max(chord.RequiredCount(), minKeyboardKeys),
		maxKeys:    capability.MaxFingers,
	}
	for k := capability.LowestKey; k <= capability.HighestKey; k++ {
		if ks.tones&(1<<uint(theory.PitchClassOf(k))) != 0 {
			ks.keys = append(ks.keys, k)
		}
	}
	return ks
}

// keyState is a partial key set, as indices into keys
type keyState struct {
	chosen []int
	next   int
	counts [12]int
}

func (ks *keyboardSearch) run() ([]candidate, int) {
	stack := []keyState{{}}
	explored := 0
	var cands []candidate

	for len(stack) > 0 {
		st := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		explored++

		if len(st.chosen) >= ks.minKeys {
			if cand, ok := ks.evaluate(st.chosen); ok {
				cands = append(cands, cand)
			}
		}
		if len(st.chosen) == ks.maxKeys {
			continue
		}

		for i := len(ks.keys) - 1; i >= st.next; i-- {
			key := ks.keys[i]
			pc := theory.PitchClassOf(key)
			if len(st.chosen) > 0 && key-ks.keys[st.chosen[0]] > ks.capability.MaxReach {
				continue
			}
			if len(st.chosen) == 0 && ks.chord.Bass != nil && pc != *ks.chord.Bass {
				continue
			}
			if st.counts[pc] >= maxPitchClassDoubles {
				continue
			}

			child := keyState{
				chosen: append(append(make([]int, 0, len(st.chosen)+1), st.chosen...), i),
				next:   i + 1,
				counts: st.counts,
			}
			child.counts[pc]++
			stack = append(stack, child)
		}
	}

	return cands, explored
}

func (ks *keyboardSearch) evaluate(chosen []int) (candidate, bool) {
	chord := ks.chord

	keys := make([]int, len(chosen))
	notes := make([]string, len(chosen))
	var sounded uint16
	for i, idx := range chosen {
		keys[i] = ks.keys[idx]
		notes[i] = theory.MIDIToNoteName(keys[i], chord.PreferFlats())
		sounded |= 1 << uint(theory.PitchClassOf(keys[i]))
	}
	if sounded&ks.required != ks.required {
		return candidate{}, false
	}

	bass := theory.PitchClassOf(keys[0])
	inversion := inversionOf(chord, bass)
	span := keys[len(keys)-1] - keys[0]

	difficulty := classifyKeyboard(span, inversion, len(keys))
	if !difficultyAllowed(ks.c, difficulty) {
		return candidate{}, false
	}

	if vt := ks.c.VoicingType; vt != nil {
		switch *vt {
		case constraints.Open:
			if !skipsChordTone(chosen) {
				return candidate{}, false
			}
		case constraints.DropVoicing:
			if len(keys) != 4 || theory.PopCount(sounded) != 4 || !isDrop2(keys) {
				return candidate{}, false
			}
		case constraints.Barre:
			return candidate{}, false
		}
	}

	centre := float64(keys[0]+keys[len(keys)-1]) / 2
	score := centreWeight * math.Abs(centre-middleC)
	score += keySpanWeight * float64(span)
	if chord.Bass == nil {
		score += inversionWeight * float64(inversion)
	}
	score += doublingWeight * float64(len(keys)-theory.PopCount(sounded))
	score += missingToneWeight * float64(theory.PopCount(ks.tones&^ks.required&^sounded))

	label := "root position"
	if inversion > 0 {
		label = ordinal(inversion) + " inversion"
	}

	shape := Shape{
		Instrument:    ks.capability.Kind,
		Chord:         chord.Name,
		Root:          int(chord.Root),
		RootName:      chord.RootName,
		Keys:          keys,
		Fingers:       append([]Finger{}, rightHandFingers[len(keys)]...),
		Notes:         notes,
		MIDINotes:     append([]int{}, keys...),
		Difficulty:    difficulty,
		Position:      keys[0],
		PositionLabel: label,
		Span:          span,
		Inversion:     inversion,
		Score:         roundScore(score),
	}
	return candidate{shape: shape, pattern: shape.Pattern()}, true
}

// skipsChordTone reports whether some chord-tone key lies between two adjacent chosen keys
func skipsChordTone(chosen []int) bool {
	for i := 1; i < len(chosen); i++ {
		if chosen[i]-chosen[i-1] > 1 {
			return true
		}
	}
	return false
}

func classifyKeyboard(span, inversion, keys int) constraints.Difficulty {
	switch {
	case span <= beginnerMaxReach && inversion <= beginnerMaxInversion && keys <= beginnerMaxKeys:
		return constraints.Beginner
	case span <= intermediateMaxReach && inversion <= intermediateInversion:
		return constraints.Intermediate
	}
	return constraints.Advanced
}
