package theory

import "sort"

// Interval classes (semitones above the root)
const (
	intervalRoot       = 0
	intervalFlatNinth  = 1
	intervalSecond     = 2
	intervalMinorThird = 3
	intervalMajorThird = 4
	intervalFourth     = 5
	intervalFlatFifth  = 6
	intervalFifth      = 7
	intervalSharpFifth = 8
	intervalSixth      = 9
	intervalFlatSeven  = 10
	intervalMajorSeven = 11
)

// Degree labels
const (
	degreeRoot       = "1"
	degreeMinorThird = "b3"
	degreeMajorThird = "3"
	degreeFifth      = "5"
	degreeFlatFifth  = "b5"
	degreeSharpFifth = "#5"
	degreeBass       = "bass"
)

type toneDef struct {
	interval int
	degree   string
	implied  bool // present in the chord but not needed to identify it
}

type qualityDef struct {
	token   string
	aliases []string
	tones   []toneDef
}

var (
	root       = toneDef{interval: intervalRoot, degree: degreeRoot}
	majorThird = toneDef{interval: intervalMajorThird, degree: degreeMajorThird}
	minorThird = toneDef{interval: intervalMinorThird, degree: degreeMinorThird}
	fifth      = toneDef{interval: intervalFifth, degree: degreeFifth}
	flatFifth  = toneDef{interval: intervalFlatFifth, degree: degreeFlatFifth}
	sharpFifth = toneDef{interval: intervalSharpFifth, degree: degreeSharpFifth}
	second     = toneDef{interval: intervalSecond, degree: "2"}
	fourth     = toneDef{interval: intervalFourth, degree: "4"}
	sixth      = toneDef{interval: intervalSixth, degree: "6"}
	dimSeventh = toneDef{interval: intervalSixth, degree: "bb7"}
	flatSeven  = toneDef{interval: intervalFlatSeven, degree: "b7"}
	majorSeven = toneDef{interval: intervalMajorSeven, degree: "7"}
	ninth      = toneDef{interval: intervalSecond, degree: "9"}
	eleventh   = toneDef{interval: intervalFourth, degree: "11"}
	thirteenth = toneDef{interval: intervalSixth, degree: "13"}
)

func implied(t toneDef) toneDef {
	t.implied = true
	return t
}

// qualityTable is the canonical chord-quality table. Order matters only for suggestions.
var qualityTable = []qualityDef{
	{token: "", aliases: []string{"M", "maj", "major"}, tones: []toneDef{root, majorThird, fifth}},
	{token: "m", aliases: []string{"min", "minor", "-"}, tones: []toneDef{root, minorThird, fifth}},
	{token: "dim", aliases: []string{"°", "o"}, tones: []toneDef{root, minorThird, flatFifth}},
	{token: "aug", aliases: []string{"+"}, tones: []toneDef{root, majorThird, sharpFifth}},
	{token: "sus2", tones: []toneDef{root, second, fifth}},
	{token: "sus4", aliases: []string{"sus"}, tones: []toneDef{root, fourth, fifth}},
	{token: "5", tones: []toneDef{root, fifth}},
	{token: "6", tones: []toneDef{root, majorThird, fifth, sixth}},
	{token: "m6", aliases: []string{"min6", "-6"}, tones: []toneDef{root, minorThird, fifth, sixth}},
	{token: "69", tones: []toneDef{root, majorThird, fifth, sixth, ninth}},
	{token: "7", aliases: []string{"dom7"}, tones: []toneDef{root, majorThird, fifth, flatSeven}},
	{token: "maj7", aliases: []string{"M7", "Δ", "Δ7", "major7"}, tones: []toneDef{root, majorThird, fifth, majorSeven}},
	{token: "m7", aliases: []string{"min7", "-7"}, tones: []toneDef{root, minorThird, fifth, flatSeven}},
	{token: "mmaj7", aliases: []string{"mM7", "minmaj7", "mMaj7", "-maj7"}, tones: []toneDef{root, minorThird, fifth, majorSeven}},
	{token: "dim7", aliases: []string{"°7", "o7"}, tones: []toneDef{root, minorThird, flatFifth, dimSeventh}},
	{token: "m7b5", aliases: []string{"ø", "ø7", "min7b5", "-7b5"}, tones: []toneDef{root, minorThird, flatFifth, flatSeven}},
	{token: "aug7", aliases: []string{"+7"}, tones: []toneDef{root, majorThird, sharpFifth, flatSeven}},
	{token: "7sus4", aliases: []string{"7sus"}, tones: []toneDef{root, fourth, fifth, flatSeven}},
	{token: "7sus2", tones: []toneDef{root, second, fifth, flatSeven}},
	{token: "9", aliases: []string{"dom9"}, tones: []toneDef{root, majorThird, fifth, implied(flatSeven), ninth}},
	{token: "maj9", aliases: []string{"M9", "Δ9"}, tones: []toneDef{root, majorThird, fifth, implied(majorSeven), ninth}},
	{token: "m9", aliases: []string{"min9", "-9"}, tones: []toneDef{root, minorThird, fifth, implied(flatSeven), ninth}},
	{token: "add9", aliases: []string{"add2"}, tones: []toneDef{root, majorThird, fifth, ninth}},
	{token: "madd9", aliases: []string{"minadd9", "-add9"}, tones: []toneDef{root, minorThird, fifth, ninth}},
	{token: "add11", aliases: []string{"add4"}, tones: []toneDef{root, majorThird, fifth, eleventh}},
	{token: "11", tones: []toneDef{root, majorThird, fifth, implied(flatSeven), implied(ninth), eleventh}},
	{token: "m11", aliases: []string{"min11", "-11"}, tones: []toneDef{root, minorThird, fifth, implied(flatSeven), implied(ninth), eleventh}},
	{token: "13", tones: []toneDef{root, majorThird, fifth, implied(flatSeven), implied(ninth), thirteenth}},
	{token: "maj13", aliases: []string{"M13", "Δ13"}, tones: []toneDef{root, majorThird, fifth, implied(majorSeven), implied(ninth), thirteenth}},
	{token: "m13", aliases: []string{"min13", "-13"}, tones: []toneDef{root, minorThird, fifth, implied(flatSeven), implied(ninth), thirteenth}},
}

type qualityAlias struct {
	alias string
	def   *qualityDef
}

// qualityAliases holds every spelling, longest first, for prefix matching
var qualityAliases = buildQualityAliases()

func buildQualityAliases() []qualityAlias {
	var out []qualityAlias
	for i := range qualityTable {
		def := &qualityTable[i]
		out = append(out, qualityAlias{alias: def.token, def: def})
		for _, a := range def.aliases {
			out = append(out, qualityAlias{alias: a, def: def})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].alias) > len(out[j].alias)
	})
	return out
}

// QualityTokens lists the canonical quality tokens (major is the empty token)
func QualityTokens() []string {
	tokens := make([]string, 0, len(qualityTable))
	for _, def := range qualityTable {
		tokens = append(tokens, def.token)
	}
	return tokens
}

type suffixEffect int

const (
	suffixAdd suffixEffect = iota
	suffixAlterFifth
	suffixSuspend
)

type suffixDef struct {
	token  string
	effect suffixEffect
	tone   toneDef
}

// suffixTable is checked in order, so longer tokens come first
var suffixTable = []suffixDef{
	{token: "add13", effect: suffixAdd, tone: thirteenth},
	{token: "add11", effect: suffixAdd, tone: eleventh},
	{token: "add9", effect: suffixAdd, tone: ninth},
	{token: "add4", effect: suffixAdd, tone: eleventh},
	{token: "add2", effect: suffixAdd, tone: ninth},
	{token: "sus2", effect: suffixSuspend, tone: second},
	{token: "sus4", effect: suffixSuspend, tone: fourth},
	{token: "sus", effect: suffixSuspend, tone: fourth},
	{token: "#11", effect: suffixAdd, tone: toneDef{interval: intervalFlatFifth, degree: "#11"}},
	{token: "b13", effect: suffixAdd, tone: toneDef{interval: intervalSharpFifth, degree: "b13"}},
	{token: "b9", effect: suffixAdd, tone: toneDef{interval: intervalFlatNinth, degree: "b9"}},
	{token: "#9", effect: suffixAdd, tone: toneDef{interval: intervalMinorThird, degree: "#9"}},
	{token: "b5", effect: suffixAlterFifth, tone: flatFifth},
	{token: "#5", effect: suffixAlterFifth, tone: sharpFifth},
}
