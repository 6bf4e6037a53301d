package voicing

import (
	"sort"

	"github.com/Conceptual-Machines/chordsmith-api/internal/constraints"
	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

// Score weights, lower is better
const (
	spanWeight         = 1.5
	mutedWeight        = 1.0
	interiorMuteWeight = 1.0
	doublingWeight     = 0.5
	missingToneWeight  = 0.75
	invertedBassWeight = 4.0
	barreWeight        = 1.0
)

// Difficulty thresholds for fretted shapes
const (
	beginnerMaxSpan        = 2
	beginnerMaxFretted     = 3
	intermediateMaxSpan    = 4
	intermediateMaxBarres  = 1
	openPositionMaxFret    = 4
	dropVoicingStringCount = 4
)

const noFret = -1

// node is one partial assignment: strings[0..depth) have states
type node struct {
	parent  int
	depth   int
	fret    Fret
	sounded uint16
	count   int
	minFret int // lowest fretted fret, noFret when none
	maxFret int
}

type frettedSearch struct {
	chord      *theory.ResolvedChord
	capability *instrument.Capability
	c          constraints.Constraints

	strings    []int // in scope, lowest first
	inScope    []bool
	windowMin  int
	windowMax  int
	spanLimit  int
	minSounded int
	required   uint16
	tones      uint16

	states [][]Fret // candidate states per in-scope string
	reach  []uint16 // pitch classes reachable from strings[i:]
}

func newFrettedSearch(chord *theory.ResolvedChord, capability *instrument.Capability, c constraints.Constraints) *frettedSearch {
	fs := &frettedSearch{
		chord:      chord,
		capability: capability,
		c:          c,
		windowMin:  0,
		windowMax:  capability.MaxFret,
		spanLimit:  capability.MaxStretch,
		required:   chord.RequiredSet(),
		tones:      chord.ToneSet(),
		inScope:    make([]bool, capability.StringCount()),
	}

	if c.FretWindow != nil {
		fs.windowMin = max(c.FretWindow.Min, 0)
		fs.windowMax = min(c.FretWindow.Max, capability.MaxFret)
	}
	if c.MaxSpan != nil {
		fs.spanLimit = min(*c.MaxSpan, capability.MaxStretch)
	}

	if c.StringSubset != nil {
		for _, s := range c.StringSubset {
			if s >= 0 && s < len(fs.inScope) {
				fs.inScope[s] = true
			}
		}
	} else {
		for s := range fs.inScope {
			fs.inScope[s] = true
		}
	}
	for s, ok := range fs.inScope {
		if ok {
			fs.strings = append(fs.strings, s)
		}
	}
	fs.minSounded = min(capability.MinSounded, len(fs.strings))

	allowMute := c.AllowMuted == nil || *c.AllowMuted
	fs.states = make([][]Fret, len(fs.strings))
	for i, s := range fs.strings {
		fs.states[i] = fs.stringStates(s, allowMute)
	}

	fs.reach = make([]uint16, len(fs.strings)+1)
	for i := len(fs.strings) - 1; i >= 0; i-- {
		fs.reach[i] = fs.reach[i+1]
		for _, f := range fs.states[i] {
			if f.IsSounded() {
				fs.reach[i] |= fs.pitchBit(fs.strings[i], f)
			}
		}
	}

	return fs
}

// stringStates lists open, fretted then muted states that sound only chord tones
func (fs *frettedSearch) stringStates(s int, allowMute bool) []Fret {
	var states []Fret
	if fs.windowMin == 0 && fs.pitchBit(s, 0)&fs.tones != 0 {
		states = append(states, 0)
	}
	for f := max(fs.windowMin, 1); f <= fs.windowMax; f++ {
		if fs.pitchBit(s, Fret(f))&fs.tones != 0 {
			states = append(states, Fret(f))
		}
	}
	if allowMute {
		states = append(states, Muted)
	}
	return states
}

func (fs *frettedSearch) pitchBit(s int, f Fret) uint16 {
	return 1 << uint(theory.PitchClassOf(fs.capability.Tuning[s]+int(f)))
}

// run walks the assignment tree depth-first on an explicit stack
func (fs *frettedSearch) run() ([]candidate, int) {
	arena := []node{{parent: -1, minFret: noFret, maxFret: noFret}}
	stack := []int{0}
	explored := 0
	var cands []candidate

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := arena[idx]
		explored++

		if n.depth == len(fs.strings) {
			if cand, ok := fs.evaluate(fs.fretsOf(arena, idx)); ok {
				cands = append(cands, cand)
			}
			continue
		}

		s := fs.strings[n.depth]
		remaining := len(fs.strings) - n.depth - 1
		states := fs.states[n.depth]
		// push in reverse so the first state is explored first
		for i := len(states) - 1; i >= 0; i-- {
			child, ok := fs.extend(n, idx, s, states[i], remaining)
			if !ok {
				continue
			}
			arena = append(arena, child)
			stack = append(stack, len(arena)-1)
		}
	}

	return cands, explored
}

// extend applies one string state and reports whether the branch can still succeed
func (fs *frettedSearch) extend(n node, idx, s int, f Fret, remaining int) (node, bool) {
	child := node{
		parent:  idx,
		depth:   n.depth + 1,
		fret:    f,
		sounded: n.sounded,
		count:   n.count,
		minFret: n.minFret,
		maxFret: n.maxFret,
	}

	if f.IsSounded() {
		child.sounded |= fs.pitchBit(s, f)
		child.count++
	}
	if f.IsFretted() {
		if child.minFret == noFret || int(f) < child.minFret {
			child.minFret = int(f)
		}
		if int(f) > child.maxFret {
			child.maxFret = int(f)
		}
		if child.maxFret-child.minFret > fs.spanLimit {
			return child, false
		}
	}

	missing := fs.required &^ child.sounded
	if theory.PopCount(missing) > remaining {
		return child, false
	}
	if missing&^fs.reach[child.depth] != 0 {
		return child, false
	}
	if child.count+remaining < fs.minSounded {
		return child, false
	}

	return child, true
}

func (fs *frettedSearch) fretsOf(arena []node, leaf int) []Fret {
	frets := make([]Fret, fs.capability.StringCount())
	for i := range frets {
		frets[i] = Muted
	}
	for idx := leaf; arena[idx].parent >= 0; idx = arena[idx].parent {
		n := arena[idx]
		frets[fs.strings[n.depth-1]] = n.fret
	}
	return frets
}

// evaluate turns a complete assignment into a scored candidate, or rejects it
func (fs *frettedSearch) evaluate(frets []Fret) (candidate, bool) {
	chord, capability := fs.chord, fs.capability

	var (
		sounded      uint16
		midi         []int
		notes        []string
		soundedCount int
		openCount    int
		frettedCount int
		mutedInScope int
		lowestFret   = noFret
		highestFret  = noFret
		first, last  = -1, -1
	)
	for s, f := range frets {
		if !f.IsSounded() {
			if fs.inScope[s] {
				mutedInScope++
			}
			continue
		}
		pitch := capability.Tuning[s] + int(f)
		sounded |= 1 << uint(theory.PitchClassOf(pitch))
		midi = append(midi, pitch)
		notes = append(notes, chord.SpellPitch(theory.PitchClassOf(pitch)))
		soundedCount++
		if first < 0 {
			first = s
		}
		last = s
		if f == 0 {
			openCount++
			continue
		}
		frettedCount++
		if lowestFret == noFret || int(f) < lowestFret {
			lowestFret = int(f)
		}
		highestFret = max(highestFret, int(f))
	}

	if sounded&fs.required != fs.required || soundedCount < max(fs.minSounded, chord.RequiredCount()) {
		return candidate{}, false
	}

	sortedMIDI := append([]int{}, midi...)
	sort.Ints(sortedMIDI)
	bass := theory.PitchClassOf(sortedMIDI[0])
	if chord.Bass != nil && bass != *chord.Bass {
		return candidate{}, false
	}

	fingers, barres, ok := assignFingers(frets, capability.MaxFingers)
	if !ok {
		return candidate{}, false
	}

	span := 0
	if frettedCount > 0 {
		span = highestFret - lowestFret
	}
	difficulty := classifyFretted(len(barres), span, frettedCount)
	if !difficultyAllowed(fs.c, difficulty) {
		return candidate{}, false
	}

	interiorMutes := 0
	for s := first + 1; s < last; s++ {
		if !frets[s].IsSounded() && fs.inScope[s] {
			interiorMutes++
		}
	}

	if vt := fs.c.VoicingType; vt != nil {
		switch *vt {
		case constraints.Open:
			if openCount == 0 || len(barres) > 0 {
				return candidate{}, false
			}
		case constraints.Barre:
			if len(barres) == 0 || openCount > 0 {
				return candidate{}, false
			}
		case constraints.DropVoicing:
			adjacent := soundedCount == dropVoicingStringCount && last-first+1 == dropVoicingStringCount
			if !adjacent || theory.PopCount(sounded) != dropVoicingStringCount || !isDrop2(sortedMIDI) {
				return candidate{}, false
			}
		}
	}

	position := 0
	if frettedCount > 0 {
		position = lowestFret
	}

	score := 0.0
	if frettedCount > 0 {
		score += float64(max(lowestFret-fs.windowMin, 0))
	}
	score += spanWeight * float64(span)
	muteCost := mutedWeight
	if fs.c.AllowMuted != nil && *fs.c.AllowMuted {
		muteCost = 0
	}
	score += muteCost * float64(mutedInScope)
	score += interiorMuteWeight * float64(interiorMutes)
	score += doublingWeight * float64(soundedCount-theory.PopCount(sounded))
	score += missingToneWeight * float64(theory.PopCount(fs.tones&^fs.required&^sounded))
	if chord.Bass == nil && bass != chord.Root {
		score += invertedBassWeight
	}
	score += barreWeight * float64(len(barres))

	shape := Shape{
		Instrument:    capability.Kind,
		Chord:         chord.Name,
		Root:          int(chord.Root),
		RootName:      chord.RootName,
		Frets:         frets,
		Fingers:       fingers,
		Barres:        barres,
		Notes:         notes,
		MIDINotes:     midi,
		Difficulty:    difficulty,
		Position:      position,
		PositionLabel: frettedPositionLabel(position, openCount),
		Span:          span,
		Inversion:     inversionOf(chord, bass),
		Score:         roundScore(score),
	}
	return candidate{shape: shape, pattern: shape.Pattern()}, true
}

func classifyFretted(barres, span, fretted int) constraints.Difficulty {
	switch {
	case barres == 0 && span <= beginnerMaxSpan && fretted <= beginnerMaxFretted:
		return constraints.Beginner
	case span <= intermediateMaxSpan && barres <= intermediateMaxBarres:
		return constraints.Intermediate
	}
	return constraints.Advanced
}

// difficultyAllowed applies an explicit difficulty as an exact-match filter
func difficultyAllowed(c constraints.Constraints, d constraints.Difficulty) bool {
	if c.Difficulty == nil || *c.Difficulty == constraints.AnyDifficulty {
		return true
	}
	return *c.Difficulty == d
}

func frettedPositionLabel(position, openStrings int) string {
	if position == 0 || (openStrings > 0 && position <= openPositionMaxFret) {
		return "open position"
	}
	return ordinal(position) + " position"
}
