package voicing

import "sort"

const minFullBarreStrings = 4

type position struct {
	str  int
	fret int
}

// frettedPositions returns the pressed positions ordered by fret, then string
func frettedPositions(frets []Fret) []position {
	var positions []position
	for s, f := range frets {
		if f.IsFretted() {
			positions = append(positions, position{str: s, fret: int(f)})
		}
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].fret != positions[j].fret {
			return positions[i].fret < positions[j].fret
		}
		return positions[i].str < positions[j].str
	})
	return positions
}

// assignFingers numbers the fretted positions 1..n in (fret, string) order.
// When there are more positions than fingers, or the shape is a classic full barre,
// finger 1 bars the lowest fret and the remaining positions get fingers 2 and up,
// merging adjacent same-fret strings into partial barres if still short of fingers.
// If the lowest fret cannot be barred, every run of adjacent same-fret strings
// becomes one finger unit instead.
// ok is false when no assignment fits the hand.
func assignFingers(frets []Fret, maxFingers int) ([]Finger, []Barre, bool) {
	positions := frettedPositions(frets)
	if len(positions) == 0 {
		return make([]Finger, len(frets)), nil, true
	}

	if len(positions) <= maxFingers && !isFullBarreShape(frets, positions) {
		fingers := make([]Finger, len(frets))
		for i, p := range positions {
			fingers[p.str] = Finger(i + 1)
		}
		return fingers, nil, true
	}

	if fingers, barres, ok := barreAssignment(frets, positions, maxFingers); ok {
		return fingers, barres, true
	}

	units := sameFretRuns(positions)
	if len(units) > maxFingers {
		return nil, nil, false
	}
	fingers := make([]Finger, len(frets))
	return fingers, numberUnits(fingers, units, 1), true
}

func barreAssignment(frets []Fret, positions []position, maxFingers int) ([]Finger, []Barre, bool) {
	barre, ok := lowestFretBarre(frets, positions)
	if !ok {
		return nil, nil, false
	}

	fingers := make([]Finger, len(frets))
	var rest []position
	for _, p := range positions {
		if p.fret == barre.Fret && p.str >= barre.FromString && p.str <= barre.ToString {
			fingers[p.str] = 1
			continue
		}
		rest = append(rest, p)
	}

	units := groupUnits(rest, maxFingers-1)
	if units == nil {
		return nil, nil, false
	}
	return fingers, append([]Barre{barre}, numberUnits(fingers, units, 2)...), true
}

// numberUnits gives each unit the next finger starting at first and returns a
// barre for every unit spanning more than one string.
func numberUnits(fingers []Finger, units [][]position, first Finger) []Barre {
	var barres []Barre
	for i, unit := range units {
		finger := first + Finger(i)
		for _, p := range unit {
			fingers[p.str] = finger
		}
		if len(unit) > 1 {
			barres = append(barres, Barre{
				Fret:       unit[0].fret,
				FromString: unit[0].str,
				ToString:   unit[len(unit)-1].str,
				Finger:     finger,
			})
		}
	}
	return barres
}

// sameFretRuns splits (fret, string) ordered positions into maximal runs of
// adjacent strings pressed at the same fret.
func sameFretRuns(positions []position) [][]position {
	var runs [][]position
	for _, p := range positions {
		if n := len(runs); n > 0 {
			last := runs[n-1][len(runs[n-1])-1]
			if last.fret == p.fret && last.str+1 == p.str {
				runs[n-1] = append(runs[n-1], p)
				continue
			}
		}
		runs = append(runs, []position{p})
	}
	return runs
}

// lowestFretBarre lays finger 1 across every string between the first and last
// string pressed at the lowest fret. Strings under the barre must all be fretted.
func lowestFretBarre(frets []Fret, positions []position) (Barre, bool) {
	minFret := positions[0].fret
	lo, hi := -1, -1
	for _, p := range positions {
		if p.fret != minFret {
			continue
		}
		if lo < 0 || p.str < lo {
			lo = p.str
		}
		if p.str > hi {
			hi = p.str
		}
	}
	if lo == hi {
		return Barre{}, false
	}
	for s := lo; s <= hi; s++ {
		if !frets[s].IsFretted() {
			return Barre{}, false
		}
	}
	return Barre{Fret: minFret, FromString: lo, ToString: hi, Finger: 1}, true
}

// isFullBarreShape matches the movable E- and A-form shapes: the outermost fretted
// strings share the lowest fret, every string between them is fretted, and something
// is fretted higher.
func isFullBarreShape(frets []Fret, positions []position) bool {
	minFret := positions[0].fret
	lowest, highest := len(frets), -1
	higher := false
	for _, p := range positions {
		if p.str < lowest {
			lowest = p.str
		}
		if p.str > highest {
			highest = p.str
		}
		if p.fret > minFret {
			higher = true
		}
	}
	if !higher || highest-lowest+1 < minFullBarreStrings {
		return false
	}
	if int(frets[lowest]) != minFret || int(frets[highest]) != minFret {
		return false
	}
	for s := lowest; s <= highest; s++ {
		if !frets[s].IsFretted() {
			return false
		}
	}
	return true
}

// groupUnits packs positions into at most limit finger units, merging same-fret
// neighbours. Returns nil when they cannot fit.
func groupUnits(rest []position, limit int) [][]position {
	units := make([][]position, 0, len(rest))
	for _, p := range rest {
		units = append(units, []position{p})
	}

	for len(units) > limit {
		merged := false
		for i := 0; i+1 < len(units); i++ {
			a, b := units[i], units[i+1]
			if a[0].fret != b[0].fret || a[len(a)-1].str+1 != b[0].str {
				continue
			}
			joined := make([]position, 0, len(a)+len(b))
			joined = append(joined, a...)
			joined = append(joined, b...)

			next := make([][]position, 0, len(units)-1)
			next = append(next, units[:i]...)
			next = append(next, joined)
			next = append(next, units[i+2:]...)
			units = next
			merged = true
			break
		}
		if !merged {
			return nil
		}
	}
	return units
}
