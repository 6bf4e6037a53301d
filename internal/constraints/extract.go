package constraints

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	narrowSpan            = 2
	wideSpan              = 5
	aroundFretRadius      = 2
	positionWidth         = 3
	neckShift             = 3
	defaultFrettedStrings = 6
)

var (
	higherDefaultWindow = FretWindow{Min: 5, Max: 12}
	lowerDefaultWindow  = FretWindow{Min: 0, Max: 5}
)

// Option configures Extract
type Option func(*extractOptions)

type extractOptions struct {
	stringCount int
}

// WithStringCount tells the extractor how many strings the instrument has,
// which phrases like "top 4 strings" need
func WithStringCount(n int) Option {
	return func(o *extractOptions) {
		o.stringCount = n
	}
}

// extraction is the state threaded through phrase handlers
type extraction struct {
	current Constraints
	out     Constraints
	opts    extractOptions
}

// effectiveDifficulty is the difficulty in force so far: extracted, else current
func (e *extraction) effectiveDifficulty() *Difficulty {
	if e.out.Difficulty != nil {
		return e.out.Difficulty
	}
	return e.current.Difficulty
}

func (e *extraction) effectiveWindow() *FretWindow {
	if e.out.FretWindow != nil {
		return e.out.FretWindow
	}
	return e.current.FretWindow
}

func (e *extraction) stringCount() int {
	if e.opts.stringCount > 0 {
		return e.opts.stringCount
	}
	return defaultFrettedStrings
}

type phrase struct {
	re    *regexp.Regexp
	apply func(e *extraction, groups []string)
}

const (
	numberPattern  = `(\d{1,2}|zero|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)`
	ordinalPattern = `(\d{1,2}(?:st|nd|rd|th)|first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth|eleventh|twelfth)`
	fretRefPattern = `(?:fret\s+{n}|{ord}\s+fret)`
)

func compile(pattern string) *regexp.Regexp {
	pattern = strings.ReplaceAll(pattern, "{fret}", fretRefPattern)
	pattern = strings.ReplaceAll(pattern, "{n}", numberPattern)
	pattern = strings.ReplaceAll(pattern, "{ord}", ordinalPattern)
	return regexp.MustCompile(pattern)
}

func setDifficulty(d Difficulty) func(*extraction, []string) {
	return func(e *extraction, _ []string) {
		e.out.Difficulty = Ptr(d)
	}
}

func setVoicingType(v VoicingType) func(*extraction, []string) {
	return func(e *extraction, _ []string) {
		e.out.VoicingType = Ptr(v)
	}
}

func setAllowMuted(allow bool) func(*extraction, []string) {
	return func(e *extraction, _ []string) {
		e.out.AllowMuted = Ptr(allow)
	}
}

func setMaxSpan(span int) func(*extraction, []string) {
	return func(e *extraction, _ []string) {
		e.out.MaxSpan = Ptr(span)
	}
}

// stepDifficulty moves one step from the difficulty in force, or lands on the extreme
func stepDifficulty(delta int, fallback Difficulty) func(*extraction, []string) {
	return func(e *extraction, _ []string) {
		d := e.effectiveDifficulty()
		if d == nil || d.Rank() < 0 {
			e.out.Difficulty = Ptr(fallback)
			return
		}
		rank := d.Rank() + delta
		if rank < 0 {
			rank = 0
		}
		if rank > 2 {
			rank = 2
		}
		e.out.Difficulty = Ptr(difficulties[rank])
	}
}

// shiftWindow slides the window in force along the neck, or uses a default region
func shiftWindow(delta int, fallback FretWindow) func(*extraction, []string) {
	return func(e *extraction, _ []string) {
		w := e.effectiveWindow()
		if w == nil {
			e.out.FretWindow = Ptr(fallback)
			return
		}
		shifted := FretWindow{Min: w.Min + delta, Max: w.Max + delta}
		if shifted.Min < 0 {
			shifted.Max -= shifted.Min
			shifted.Min = 0
		}
		e.out.FretWindow = &shifted
	}
}

// phrases are matched against lowercased text. Where two matches overlap, the one that
// starts first (then the longer one) is kept, so "no barre chords" never also reads as "barre".
var phrases = []phrase{
	// difficulty
	{re: compile(`\bany\s+difficulty\b`), apply: setDifficulty(AnyDifficulty)},
	{re: compile(`\b(?:easier|simpler|less\s+(?:difficult|hard|challenging))\b`), apply: stepDifficulty(-1, Beginner)},
	{re: compile(`\b(?:harder|more\s+(?:difficult|challenging|advanced))\b`), apply: stepDifficulty(1, Advanced)},
	{re: compile(`\b(?:easy|simple|beginners?|basic)\b`), apply: setDifficulty(Beginner)},
	{re: compile(`\b(?:intermediate|medium)\b`), apply: setDifficulty(Intermediate)},
	{re: compile(`\b(?:hard|advanced|challenging|difficult)\b`), apply: setDifficulty(Advanced)},

	// voicing type
	{re: compile(`\b(?:no|without|avoid(?:ing)?|not|don'?t\s+want|skip)\s+(?:an?\s+|the\s+|any\s+)?(?:barred|barres?|bars?)(?:\s+chords?)?\b`), apply: setVoicingType(Open)},
	{re: compile(`\b(?:barre[sd]?|bar\s+chords?)\b`), apply: setVoicingType(Barre)},
	{re: compile(`\bopen(?:\s+|-)(?:chords?|voicings?|shapes?|position|strings?)\b`), apply: setVoicingType(Open)},
	{re: compile(`\bdrop[\s-]?(?:2|3|two|three)\b`), apply: setVoicingType(DropVoicing)},
	{re: compile(`\bany\s+(?:voicing|shape)\b`), apply: setVoicingType(AnyVoicing)},

	// fret window
	{re: compile(`\bfrets?\s+{n}\s*(?:to|-|–|through|thru)\s*{n}\b`), apply: applyFretRange},
	{re: compile(`\bbetween\s+frets?\s+{n}\s+and\s+{n}\b`), apply: applyFretRange},
	{re: compile(`\b(?:around|near)\s+(?:the\s+)?{fret}\b`), apply: applyAroundFret},
	{re: compile(`\b(?:below|under|beneath)\s+(?:the\s+)?{fret}\b`), apply: applyBelowFret},
	{re: compile(`\bup\s+to\s+(?:the\s+)?{fret}\b`), apply: applyUpToFret},
	{re: compile(`\b(?:the\s+)?first\s+{n}\s+frets\b`), apply: applyFirstFrets},
	{re: compile(`\b{ord}\s+position\b`), apply: applyPosition},
	{re: compile(`\b(?:higher\s+up|higher\s+on\s+the\s+neck|up\s+the\s+neck)(?:\s+the\s+neck)?\b`), apply: shiftWindow(neckShift, higherDefaultWindow)},
	{re: compile(`\b(?:lower\s+down|lower\s+on\s+the\s+neck|down\s+the\s+neck|near\s+the\s+nut)(?:\s+the\s+neck)?\b`), apply: shiftWindow(-neckShift, lowerDefaultWindow)},

	// muting
	{re: compile(`\b(?:no\s+muted\s+strings?|no\s+muting|don'?t\s+mute|without\s+muting|all\s+(?:six\s+|four\s+|\d\s+)?(?:the\s+)?strings|every\s+string|let\s+(?:the\s+|all\s+(?:the\s+)?)?strings\s+ring)\b`), apply: setAllowMuted(false)},
	{re: compile(`\b(?:muted\s+strings?\s+(?:are|is)\s+(?:ok|okay|fine)|muting\s+is\s+(?:ok|okay|fine)|(?:allow|ok\s+with)\s+muted\s+strings?)\b`), apply: setAllowMuted(true)},

	// span
	{re: compile(`\b(?:narrow\s+stretch(?:es)?|no\s+(?:big|wide|large|long)\s+stretch(?:es)?|small\s+hands?|compact)\b`), apply: setMaxSpan(narrowSpan)},
	{re: compile(`\b(?:wide|big|large)\s+stretch(?:es)?\s+(?:are\s+|is\s+)?(?:ok|okay|fine)\b`), apply: setMaxSpan(wideSpan)},
	{re: compile(`\b(?:max(?:imum)?|at\s+most|no\s+more\s+than)\s+{n}\s+frets?\s+(?:span|stretch|wide|apart)\b`), apply: applySpan},
	{re: compile(`\bspan\s+of\s+{n}(?:\s+frets?)?\b`), apply: applySpan},

	// string subset
	{re: compile(`\b(?:bottom|lowest|low)\s+{n}\s+strings\b`), apply: applyBottomStrings},
	{re: compile(`\b(?:top|highest|high)\s+{n}\s+strings\b`), apply: applyTopStrings},
	{re: compile(`\b(?:skip|avoid|no|without|not\s+using)\s+(?:the\s+)?low\s+e(?:\s+string)?\b`), apply: applySkipLowE},
}

type hit struct {
	start, end int
	phrase     *phrase
	groups     []string
}

// Extract scans free text for constraint phrases. Only keys found in the text are set.
// current supplies context for relative phrases ("easier", "higher up") and is not copied
// into the result. When phrases for the same key disagree, the later one wins.
func Extract(text string, current Constraints, opts ...Option) Constraints {
	e := &extraction{current: current}
	for _, opt := range opts {
		opt(&e.opts)
	}

	lowered := strings.ToLower(text)
	var hits []hit
	for i := range phrases {
		p := &phrases[i]
		for _, loc := range p.re.FindAllStringSubmatchIndex(lowered, -1) {
			groups := make([]string, len(loc)/2)
			for g := range groups {
				if loc[2*g] >= 0 {
					groups[g] = lowered[loc[2*g]:loc[2*g+1]]
				}
			}
			hits = append(hits, hit{start: loc[0], end: loc[1], phrase: p, groups: groups})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].start != hits[j].start {
			return hits[i].start < hits[j].start
		}
		return hits[i].end > hits[j].end
	})

	consumed := 0
	for _, h := range hits {
		if h.start < consumed {
			continue
		}
		h.phrase.apply(e, h.groups)
		consumed = h.end
	}

	return e.out
}

var numberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5, "sixth": 6,
	"seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10, "eleventh": 11, "twelfth": 12,
}

func parseNumber(s string) (int, bool) {
	if n, ok := numberWords[s]; ok {
		return n, true
	}
	if n, ok := ordinalWords[s]; ok {
		return n, true
	}
	s = strings.TrimRight(s, "stndrh")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// numbers parses every non-empty capture group in order
func numbers(groups []string) []int {
	var out []int
	for _, g := range groups[1:] {
		if g == "" {
			continue
		}
		if n, ok := parseNumber(g); ok {
			out = append(out, n)
		}
	}
	return out
}

func applyFretRange(e *extraction, groups []string) {
	n := numbers(groups)
	if len(n) < 2 {
		return
	}
	lo, hi := n[0], n[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	e.out.FretWindow = &FretWindow{Min: lo, Max: hi}
}

func applyAroundFret(e *extraction, groups []string) {
	n := numbers(groups)
	if len(n) == 0 {
		return
	}
	lo := n[0] - aroundFretRadius
	if lo < 0 {
		lo = 0
	}
	e.out.FretWindow = &FretWindow{Min: lo, Max: n[0] + aroundFretRadius}
}

func applyBelowFret(e *extraction, groups []string) {
	n := numbers(groups)
	if len(n) == 0 {
		return
	}
	hi := n[0] - 1
	if hi < 0 {
		hi = 0
	}
	e.out.FretWindow = &FretWindow{Min: 0, Max: hi}
}

func applyUpToFret(e *extraction, groups []string) {
	n := numbers(groups)
	if len(n) == 0 {
		return
	}
	e.out.FretWindow = &FretWindow{Min: 0, Max: n[0]}
}

func applyFirstFrets(e *extraction, groups []string) {
	n := numbers(groups)
	if len(n) == 0 {
		return
	}
	e.out.FretWindow = &FretWindow{Min: 0, Max: n[0]}
}

func applyPosition(e *extraction, groups []string) {
	n := numbers(groups)
	if len(n) == 0 {
		return
	}
	e.out.FretWindow = &FretWindow{Min: n[0], Max: n[0] + positionWidth}
}

func applySpan(e *extraction, groups []string) {
	n := numbers(groups)
	if len(n) == 0 {
		return
	}
	e.out.MaxSpan = Ptr(n[0])
}

func applyBottomStrings(e *extraction, groups []string) {
	n := numbers(groups)
	if len(n) == 0 || n[0] <= 0 {
		return
	}
	count := n[0]
	if count > e.stringCount() {
		count = e.stringCount()
	}
	subset := make([]int, count)
	for i := range subset {
		subset[i] = i
	}
	e.out.StringSubset = subset
}

func applyTopStrings(e *extraction, groups []string) {
	n := numbers(groups)
	if len(n) == 0 || n[0] <= 0 {
		return
	}
	total := e.stringCount()
	first := total - n[0]
	if first < 0 {
		first = 0
	}
	subset := make([]int, 0, total-first)
	for i := first; i < total; i++ {
		subset = append(subset, i)
	}
	e.out.StringSubset = subset
}

func applySkipLowE(e *extraction, _ []string) {
	total := e.stringCount()
	subset := make([]int, 0, total-1)
	for i := 1; i < total; i++ {
		subset = append(subset, i)
	}
	e.out.StringSubset = subset
}
