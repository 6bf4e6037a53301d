package theory

import (
	"fmt"
	"strconv"
	"strings"
)

// PitchClass is a pitch modulo the octave, 0 = C
type PitchClass int

const semitonesPerOctave = 12

var (
	// Note semitone offsets from C
	noteOffsets = map[byte]int{
		'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
	}
	sharpNames = [semitonesPerOctave]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatNames  = [semitonesPerOctave]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
)

// Mod12 folds any semitone count into 0-11
func Mod12(n int) int {
	return ((n % semitonesPerOctave) + semitonesPerOctave) % semitonesPerOctave
}

// PitchClassOf returns the pitch class of a MIDI note number
func PitchClassOf(midi int) PitchClass {
	return PitchClass(Mod12(midi))
}

// Name spells the pitch class with sharps or flats
func (pc PitchClass) Name(preferFlats bool) string {
	if preferFlats {
		return flatNames[Mod12(int(pc))]
	}
	return sharpNames[Mod12(int(pc))]
}

func (pc PitchClass) String() string {
	return pc.Name(false)
}

// parseNoteLetter reads a note letter and optional accidental from the start of s.
// It returns the pitch class, the accidental (-1, 0, +1) and the bytes consumed.
func parseNoteLetter(s string) (PitchClass, int, int, error) {
	if s == "" {
		return 0, 0, 0, fmt.Errorf("empty note name")
	}

	letter := strings.ToUpper(s[:1])[0]
	semitone, ok := noteOffsets[letter]
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid note letter: %q", s[:1])
	}

	rest := s[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		return PitchClass(Mod12(semitone + 1)), 1, 2, nil
	case strings.HasPrefix(rest, "♯"):
		return PitchClass(Mod12(semitone + 1)), 1, 1 + len("♯"), nil
	case strings.HasPrefix(rest, "b"):
		return PitchClass(Mod12(semitone - 1)), -1, 2, nil
	case strings.HasPrefix(rest, "♭"):
		return PitchClass(Mod12(semitone - 1)), -1, 1 + len("♭"), nil
	}
	return PitchClass(semitone), 0, 1, nil
}

// ParsePitchClass parses a bare note name like "F#" or "Bb"
func ParsePitchClass(name string) (PitchClass, error) {
	name = strings.TrimSpace(name)
	pc, _, n, err := parseNoteLetter(name)
	if err != nil {
		return 0, err
	}
	if n != len(name) {
		return 0, fmt.Errorf("invalid note name: %q", name)
	}
	return pc, nil
}

// NoteNameToMIDI converts a note name like "E1", "C4", "F#3", "Bb2" to MIDI note number
// Format: <note><accidental?><octave> where:
//   - note: A-G (case insensitive)
//   - accidental: # or b, optional
//   - octave: -1 to 9 (C4 = 60 = middle C)
func NoteNameToMIDI(noteName string) (int, error) {
	noteName = strings.TrimSpace(noteName)
	if len(noteName) < 2 {
		return 0, fmt.Errorf("note name too short: %s", noteName)
	}

	pc, accidental, n, err := parseNoteLetter(noteName)
	if err != nil {
		return 0, err
	}

	if n >= len(noteName) {
		return 0, fmt.Errorf("missing octave in note name: %s", noteName)
	}

	octave, err := strconv.Atoi(noteName[n:])
	if err != nil {
		return 0, fmt.Errorf("invalid octave in note name %s: %w", noteName, err)
	}

	// Cb and B# cross the octave boundary relative to their letter
	semitone := int(pc)
	if accidental == -1 && pc == 11 {
		semitone = -1
	}
	if accidental == 1 && pc == 0 {
		semitone = 12
	}

	// (octave + 1) * 12 + semitone gives C-1 = 0, C4 = 60
	midiNote := (octave+1)*semitonesPerOctave + semitone
	if midiNote < 0 || midiNote > 127 {
		return 0, fmt.Errorf("note %s is outside the MIDI range", noteName)
	}

	return midiNote, nil
}

// MIDIToNoteName is the inverse of NoteNameToMIDI
func MIDIToNoteName(midi int, preferFlats bool) string {
	octave := midi/semitonesPerOctave - 1
	return PitchClassOf(midi).Name(preferFlats) + strconv.Itoa(octave)
}

// PitchClassName spells a pitch class
func PitchClassName(pc PitchClass, preferFlats bool) string {
	return pc.Name(preferFlats)
}
