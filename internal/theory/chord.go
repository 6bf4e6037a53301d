package theory

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
)

const minToneCountForOmittableFifth = 4

// Tone is one interval class of a resolved chord
type Tone struct {
	Interval int    `json:"interval"`
	Degree   string `json:"degree"`
	Required bool   `json:"required"`
}

// ResolvedChord is a parsed chord symbol
type ResolvedChord struct {
	Symbol   string      `json:"symbol"`
	Name     string      `json:"name"`
	Root     PitchClass  `json:"root"`
	RootName string      `json:"rootName"`
	Quality  string      `json:"quality"`
	Tones    []Tone      `json:"tones"`
	Bass     *PitchClass `json:"bass,omitempty"`
	BassName string      `json:"bassName,omitempty"`

	preferFlats bool
}

// PitchClassOfTone returns the absolute pitch class of a tone
func (c *ResolvedChord) PitchClassOfTone(t Tone) PitchClass {
	return PitchClass(Mod12(int(c.Root) + t.Interval))
}

// RequiredSet is the bitmask of pitch classes every voicing must sound
func (c *ResolvedChord) RequiredSet() uint16 {
	var mask uint16
	for _, t := range c.Tones {
		if t.Required {
			mask |= 1 << uint(c.PitchClassOfTone(t))
		}
	}
	return mask
}

// ToneSet is the bitmask of every chord tone, required or omittable
func (c *ResolvedChord) ToneSet() uint16 {
	var mask uint16
	for _, t := range c.Tones {
		mask |= 1 << uint(c.PitchClassOfTone(t))
	}
	return mask
}

// RequiredCount is the number of distinct required pitch classes
func (c *ResolvedChord) RequiredCount() int {
	return PopCount(c.RequiredSet())
}

// DistinctCount is the number of distinct pitch classes in the chord
func (c *ResolvedChord) DistinctCount() int {
	return PopCount(c.ToneSet())
}

// PreferFlats reports whether note names for this chord should be spelled with flats
func (c *ResolvedChord) PreferFlats() bool {
	return c.preferFlats
}

// SpellPitch names a pitch class in the chord's spelling
func (c *ResolvedChord) SpellPitch(pc PitchClass) string {
	return pc.Name(c.preferFlats)
}

// PopCount counts set bits in a pitch-class mask
func PopCount(mask uint16) int {
	n := 0
	for ; mask != 0; mask &= mask - 1 {
		n++
	}
	return n
}

// Resolve parses a chord symbol into its root, tones and optional slash bass.
// Failures are GenerationErrors with code CHORD_PARSE_FAILED.
func Resolve(symbol string) (*ResolvedChord, error) {
	trimmed := strings.TrimSpace(symbol)
	if trimmed == "" {
		return nil, parseFailure("empty chord symbol", []string{"Enter a chord such as C, Am7 or G/B"})
	}

	head, bassPart := splitSlash(trimmed)

	rootPC, accidental, n, err := parseNoteLetter(head)
	if err != nil {
		return nil, parseFailure(fmt.Sprintf("invalid chord root in %q", symbol),
			[]string{"Start the chord with a root note A-G, optionally followed by # or b (e.g. C, F#m, Bb7)"})
	}
	preferFlats := accidental < 0 || (accidental == 0 && strings.ToUpper(head[:1]) == "F")
	rootName := rootPC.Name(preferFlats)

	rest := strings.ReplaceAll(head[n:], " ", "")
	def, matched := matchQuality(rest)
	tones := make([]toneDef, len(def.tones))
	copy(tones, def.tones)

	quality := def.token
	suffixes, err := applySuffixes(rest[len(matched):], &tones)
	if err != nil {
		return nil, parseFailure(
			fmt.Sprintf("unrecognized chord quality %q in %q", rest, symbol),
			suggestQualities(rootName, rest))
	}
	quality += suffixes

	chord := &ResolvedChord{
		Symbol:      symbol,
		Root:        rootPC,
		RootName:    rootName,
		Quality:     quality,
		preferFlats: preferFlats,
	}

	if bassPart != "" {
		bassPC, err := ParsePitchClass(bassPart)
		if err != nil {
			return nil, parseFailure(fmt.Sprintf("invalid slash bass %q in %q", bassPart, symbol),
				[]string{fmt.Sprintf("Use a note name after the slash, e.g. %s/%s", rootName+quality, (rootPC + 7).Name(preferFlats))})
		}
		bassPC = PitchClass(Mod12(int(bassPC)))
		chord.Bass = &bassPC
		chord.BassName = bassPC.Name(preferFlats)

		bassInterval := Mod12(int(bassPC) - int(rootPC))
		if !hasInterval(tones, bassInterval) {
			tones = append(tones, toneDef{interval: bassInterval, degree: degreeBass})
		}
	}

	chord.Tones = markRequired(tones)
	chord.Name = rootName + quality
	if chord.Bass != nil {
		chord.Name += "/" + chord.BassName
	}

	return chord, nil
}

// splitSlash separates "C/G" into "C" and "G". "C6/9" is the 6/9 chord, not a slash chord.
func splitSlash(symbol string) (string, string) {
	idx := strings.LastIndex(symbol, "/")
	if idx < 0 {
		return symbol, ""
	}
	head := strings.TrimSpace(symbol[:idx])
	bass := strings.TrimSpace(symbol[idx+1:])
	if bass == "9" && strings.HasSuffix(head, "6") {
		return head + "9", ""
	}
	return head, bass
}

func matchQuality(rest string) (*qualityDef, string) {
	for _, qa := range qualityAliases {
		if strings.HasPrefix(rest, qa.alias) {
			return qa.def, qa.alias
		}
	}
	// unreachable: the major quality has the empty alias
	return &qualityTable[0], ""
}

// applySuffixes consumes alterations, adds and suspensions, returning their normalised text
func applySuffixes(rest string, tones *[]toneDef) (string, error) {
	var normalized strings.Builder
	for {
		rest = strings.TrimLeft(rest, "(),")
		if rest == "" {
			return normalized.String(), nil
		}

		var found *suffixDef
		for i := range suffixTable {
			if strings.HasPrefix(rest, suffixTable[i].token) {
				found = &suffixTable[i]
				break
			}
		}
		if found == nil {
			return "", fmt.Errorf("unknown chord suffix %q", rest)
		}

		switch found.effect {
		case suffixAdd:
			if !hasInterval(*tones, found.tone.interval) {
				*tones = append(*tones, found.tone)
			}
		case suffixAlterFifth:
			replaceTone(tones, func(t toneDef) bool {
				return t.degree == degreeFifth || t.degree == degreeFlatFifth || t.degree == degreeSharpFifth
			}, found.tone)
		case suffixSuspend:
			replaceTone(tones, func(t toneDef) bool {
				return t.degree == degreeMajorThird || t.degree == degreeMinorThird
			}, found.tone)
		}

		normalized.WriteString(found.token)
		rest = rest[len(found.token):]
	}
}

// replaceTone swaps the first tone matching match for replacement, or appends it
func replaceTone(tones *[]toneDef, match func(toneDef) bool, replacement toneDef) {
	for i, t := range *tones {
		if match(t) {
			(*tones)[i] = replacement
			return
		}
	}
	if !hasInterval(*tones, replacement.interval) {
		*tones = append(*tones, replacement)
	}
}

func hasInterval(tones []toneDef, interval int) bool {
	for _, t := range tones {
		if t.interval == interval {
			return true
		}
	}
	return false
}

// markRequired dedupes tones by interval and decides which are omittable:
// the root is always required, the perfect fifth is omittable once the chord has
// four or more distinct tones, and tones implied by an extension are omittable.
func markRequired(defs []toneDef) []Tone {
	seen := make(map[int]bool, len(defs))
	unique := make([]toneDef, 0, len(defs))
	for _, d := range defs {
		if seen[d.interval] {
			continue
		}
		seen[d.interval] = true
		unique = append(unique, d)
	}

	tones := make([]Tone, 0, len(unique))
	for _, d := range unique {
		required := true
		switch {
		case d.interval == intervalRoot:
			required = true
		case d.degree == degreeFifth && len(unique) >= minToneCountForOmittableFifth:
			required = false
		case d.implied:
			required = false
		}
		tones = append(tones, Tone{Interval: d.interval, Degree: d.degree, Required: required})
	}
	return tones
}

func parseFailure(message string, suggestions []string) error {
	return models.NewGenerationError(models.CodeChordParseFailed, message, suggestions)
}
