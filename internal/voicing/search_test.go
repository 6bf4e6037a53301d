package voicing

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/chordsmith-api/internal/constraints"
	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

func capabilityFor(t *testing.T, kind instrument.Kind) *instrument.Capability {
	t.Helper()
	table, err := instrument.Default()
	require.NoError(t, err)
	c, err := table.Get(kind)
	require.NoError(t, err)
	return c
}

func resolve(t *testing.T, symbol string) *theory.ResolvedChord {
	t.Helper()
	chord, err := theory.Resolve(symbol)
	require.NoError(t, err)
	return chord
}

func soundedSet(shape Shape) uint16 {
	var mask uint16
	for _, midi := range shape.MIDINotes {
		mask |= 1 << uint(theory.PitchClassOf(midi))
	}
	return mask
}

func assertPlayable(t *testing.T, shape Shape, chord *theory.ResolvedChord, capability *instrument.Capability) {
	t.Helper()

	required := chord.RequiredSet()
	assert.Equal(t, required, soundedSet(shape)&required, "%s %s misses a required tone", shape.Chord, shape.Pattern())
	assert.Zero(t, soundedSet(shape)&^chord.ToneSet(), "%s %s sounds a non-chord tone", shape.Chord, shape.Pattern())

	if capability.IsFretted() {
		require.Len(t, shape.Frets, capability.StringCount())
		require.Len(t, shape.Fingers, capability.StringCount())
		for s, f := range shape.Frets {
			assert.GreaterOrEqual(t, int(f), -1)
			assert.LessOrEqual(t, int(f), capability.MaxFret)
			if f.IsFretted() {
				assert.NotZero(t, shape.Fingers[s], "fretted string %d has no finger", s)
				assert.LessOrEqual(t, int(shape.Fingers[s]), capability.MaxFingers)
			} else {
				assert.Zero(t, shape.Fingers[s], "unfretted string %d has a finger", s)
			}
		}
		assert.LessOrEqual(t, shape.Span, capability.MaxStretch)
		return
	}

	require.NotEmpty(t, shape.Keys)
	assert.Len(t, shape.Fingers, len(shape.Keys))
	assert.LessOrEqual(t, len(shape.Keys), capability.MaxFingers)
	for _, k := range shape.Keys {
		assert.GreaterOrEqual(t, k, capability.LowestKey)
		assert.LessOrEqual(t, k, capability.HighestKey)
	}
	assert.LessOrEqual(t, shape.Span, capability.MaxReach)
}

func TestSearch_Cmaj7OnGuitar(t *testing.T) {
	guitar := capabilityFor(t, instrument.Guitar)
	chord := resolve(t, "Cmaj7")

	result, err := Search(chord, guitar, constraints.Constraints{}, Options{Count: 4})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(result.Shapes), 3)
	require.LessOrEqual(t, len(result.Shapes), 4)
	assert.Greater(t, result.Candidates, len(result.Shapes))
	assert.Greater(t, result.Explored, result.Candidates)

	patterns := map[string]bool{}
	for i, shape := range result.Shapes {
		assert.Equal(t, instrument.Guitar, shape.Instrument)
		assert.Equal(t, "Cmaj7", shape.Chord)
		assert.Equal(t, 0, shape.Root)
		assertPlayable(t, shape, chord, guitar)

		assert.False(t, patterns[shape.Pattern()], "duplicate pattern %s", shape.Pattern())
		patterns[shape.Pattern()] = true

		if i > 0 {
			assert.GreaterOrEqual(t, shape.Score, result.Shapes[i-1].Score)
		}
	}
}

func TestSearch_SoundedCoversRequired(t *testing.T) {
	tests := []struct {
		kind   instrument.Kind
		symbol string
	}{
		{instrument.Guitar, "C"},
		{instrument.Guitar, "Am7"},
		{instrument.Guitar, "D9"},
		{instrument.Guitar, "F#m7b5"},
		{instrument.Guitar, "E7(b9)"},
		{instrument.Bass, "G"},
		{instrument.Bass, "Bb7"},
		{instrument.Keyboard, "C"},
		{instrument.Keyboard, "Ebmaj7"},
		{instrument.Keyboard, "G13"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+" "+tt.symbol, func(t *testing.T) {
			capability := capabilityFor(t, tt.kind)
			chord := resolve(t, tt.symbol)

			result, err := Search(chord, capability, constraints.Constraints{}, Options{Count: 4})
			require.NoError(t, err)
			require.NotEmpty(t, result.Shapes)
			for _, shape := range result.Shapes {
				assertPlayable(t, shape, chord, capability)
			}
		})
	}
}

func TestSearch_Idempotent(t *testing.T) {
	guitar := capabilityFor(t, instrument.Guitar)
	chord := resolve(t, "G7")
	c := constraints.Constraints{FretWindow: &constraints.FretWindow{Min: 0, Max: 7}}

	first, err := Search(chord, guitar, c, Options{Count: 4, Lesson: true})
	require.NoError(t, err)
	second, err := Search(chord, guitar, c, Options{Count: 4, Lesson: true})
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestSearch_NoVoicingsFound(t *testing.T) {
	guitar := capabilityFor(t, instrument.Guitar)
	chord := resolve(t, "C7#9")
	c := constraints.Constraints{
		MaxSpan:    constraints.Ptr(0),
		FretWindow: &constraints.FretWindow{Min: 1, Max: 12},
	}

	// the constraints themselves are physically plausible
	require.True(t, constraints.Validate(c, guitar, chord).Valid)

	result, err := Search(chord, guitar, c, Options{Count: 3})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, models.ErrNoVoicingsFound))

	genErr, ok := models.AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, models.CodeNoVoicingsFound, genErr.Code)
	require.NotEmpty(t, genErr.Suggestions)
	assert.Contains(t, genErr.Suggestions[0], "maxSpan")
}

func TestSearch_DifficultyIsAHardFilter(t *testing.T) {
	guitar := capabilityFor(t, instrument.Guitar)

	for _, d := range []constraints.Difficulty{constraints.Beginner, constraints.Intermediate, constraints.Advanced} {
		t.Run(string(d), func(t *testing.T) {
			result, err := Search(resolve(t, "C"), guitar, constraints.Constraints{Difficulty: constraints.Ptr(d)}, Options{Count: 4})
			require.NoError(t, err)
			for _, shape := range result.Shapes {
				assert.Equal(t, d, shape.Difficulty)
			}
		})
	}
}

func TestSearch_VoicingTypeFilters(t *testing.T) {
	guitar := capabilityFor(t, instrument.Guitar)

	t.Run("open", func(t *testing.T) {
		result, err := Search(resolve(t, "G"), guitar, constraints.Constraints{VoicingType: constraints.Ptr(constraints.Open)}, Options{Count: 4})
		require.NoError(t, err)
		for _, shape := range result.Shapes {
			assert.False(t, shape.HasBarre())
			assert.Contains(t, shape.Frets, Fret(0))
		}
	})

	t.Run("barre", func(t *testing.T) {
		c := constraints.Constraints{
			VoicingType: constraints.Ptr(constraints.Barre),
			FretWindow:  &constraints.FretWindow{Min: 1, Max: 8},
		}
		result, err := Search(resolve(t, "F"), guitar, c, Options{Count: 4})
		require.NoError(t, err)
		for _, shape := range result.Shapes {
			assert.True(t, shape.HasBarre())
			assert.NotContains(t, shape.Frets, Fret(0))
			assert.NotEqual(t, constraints.Beginner, shape.Difficulty)
		}
	})

	t.Run("drop voicing", func(t *testing.T) {
		result, err := Search(resolve(t, "Cmaj7"), guitar, constraints.Constraints{VoicingType: constraints.Ptr(constraints.DropVoicing)}, Options{Count: 4})
		require.NoError(t, err)
		for _, shape := range result.Shapes {
			require.Len(t, shape.MIDINotes, 4)
			assert.True(t, isDrop2(sortedCopy(shape.MIDINotes)), "%s is not drop 2", shape.Pattern())
		}
	})
}

func TestSearch_SlashBassIsLowest(t *testing.T) {
	guitar := capabilityFor(t, instrument.Guitar)
	chord := resolve(t, "C/G")

	result, err := Search(chord, guitar, constraints.Constraints{}, Options{Count: 4})
	require.NoError(t, err)
	for _, shape := range result.Shapes {
		lowest := sortedCopy(shape.MIDINotes)[0]
		assert.Equal(t, theory.PitchClass(7), theory.PitchClassOf(lowest))
	}
}

func TestSearch_StringSubsetAndMuting(t *testing.T) {
	guitar := capabilityFor(t, instrument.Guitar)

	t.Run("out of scope strings are muted", func(t *testing.T) {
		c := constraints.Constraints{StringSubset: []int{2, 3, 4, 5}}
		result, err := Search(resolve(t, "D"), guitar, c, Options{Count: 3})
		require.NoError(t, err)
		for _, shape := range result.Shapes {
			assert.Equal(t, Muted, shape.Frets[0])
			assert.Equal(t, Muted, shape.Frets[1])
		}
	})

	t.Run("no muted strings", func(t *testing.T) {
		c := constraints.Constraints{AllowMuted: constraints.Ptr(false)}
		result, err := Search(resolve(t, "G"), guitar, c, Options{Count: 3})
		require.NoError(t, err)
		for _, shape := range result.Shapes {
			assert.NotContains(t, shape.Frets, Muted)
		}
	})

	t.Run("span limit", func(t *testing.T) {
		c := constraints.Constraints{MaxSpan: constraints.Ptr(2)}
		result, err := Search(resolve(t, "A7"), guitar, c, Options{Count: 4})
		require.NoError(t, err)
		for _, shape := range result.Shapes {
			assert.LessOrEqual(t, shape.Span, 2)
		}
	})
}

func TestSearch_Keyboard(t *testing.T) {
	keyboard := capabilityFor(t, instrument.Keyboard)

	t.Run("triad", func(t *testing.T) {
		chord := resolve(t, "C")
		result, err := Search(chord, keyboard, constraints.Constraints{}, Options{Count: 3})
		require.NoError(t, err)
		require.Len(t, result.Shapes, 3)
		for _, shape := range result.Shapes {
			assertPlayable(t, shape, chord, keyboard)
			assert.Nil(t, shape.Frets)
			assert.Equal(t, shape.Keys, shape.MIDINotes)
		}
	})

	t.Run("drop voicing", func(t *testing.T) {
		chord := resolve(t, "Cmaj7")
		c := constraints.Constraints{VoicingType: constraints.Ptr(constraints.DropVoicing)}
		result, err := Search(chord, keyboard, c, Options{Count: 3})
		require.NoError(t, err)
		for _, shape := range result.Shapes {
			require.Len(t, shape.Keys, 4)
			assert.True(t, isDrop2(shape.Keys))
		}
	})

	t.Run("beginner", func(t *testing.T) {
		c := constraints.Constraints{Difficulty: constraints.Ptr(constraints.Beginner)}
		result, err := Search(resolve(t, "Am"), keyboard, c, Options{Count: 4})
		require.NoError(t, err)
		for _, shape := range result.Shapes {
			assert.Equal(t, constraints.Beginner, shape.Difficulty)
			assert.LessOrEqual(t, shape.Inversion, 1)
		}
	})
}

func TestSearch_LessonMode(t *testing.T) {
	guitar := capabilityFor(t, instrument.Guitar)
	chord := resolve(t, "Am")

	plain, err := Search(chord, guitar, constraints.Constraints{}, Options{Count: 3})
	require.NoError(t, err)
	for _, shape := range plain.Shapes {
		assert.Empty(t, shape.Tip)
	}

	lesson, err := Search(chord, guitar, constraints.Constraints{}, Options{Count: 3, Lesson: true})
	require.NoError(t, err)
	require.Len(t, lesson.Shapes, len(plain.Shapes))
	for i, shape := range lesson.Shapes {
		assert.NotEmpty(t, shape.Tip)
		assert.Contains(t, shape.Tip, "Am")
		assert.Equal(t, plain.Shapes[i].Pattern(), shape.Pattern())
	}
}

func TestSearch_CountIsClamped(t *testing.T) {
	guitar := capabilityFor(t, instrument.Guitar)
	chord := resolve(t, "E")

	result, err := Search(chord, guitar, constraints.Constraints{}, Options{Count: 10})
	require.NoError(t, err)
	assert.Len(t, result.Shapes, MaxCount)

	result, err = Search(chord, guitar, constraints.Constraints{}, Options{Count: 1})
	require.NoError(t, err)
	assert.Len(t, result.Shapes, MinCount)
}

func TestClampCount(t *testing.T) {
	assert.Equal(t, DefaultCount, ClampCount(0))
	assert.Equal(t, 3, ClampCount(-2))
	assert.Equal(t, 3, ClampCount(3))
	assert.Equal(t, 4, ClampCount(4))
	assert.Equal(t, 4, ClampCount(99))
}

func TestSelectDiverse(t *testing.T) {
	mk := func(pattern string, position int, score float64) candidate {
		return candidate{pattern: pattern, shape: Shape{Position: position, Score: score}}
	}

	t.Run("skips neighbouring positions", func(t *testing.T) {
		cands := []candidate{
			mk("a", 1, 1), mk("b", 2, 2), mk("c", 5, 3), mk("d", 8, 4), mk("e", 12, 5),
		}
		got := selectDiverse(cands, 3)
		require.Len(t, got, 3)
		assert.Equal(t, "a", got[0].pattern)
		assert.Equal(t, "c", got[1].pattern)
		assert.Equal(t, "d", got[2].pattern)
	})

	t.Run("relaxes to reach three", func(t *testing.T) {
		cands := []candidate{
			mk("a", 3, 1), mk("b", 3, 2), mk("c", 4, 3), mk("d", 3, 4),
		}
		got := selectDiverse(cands, 4)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].pattern, got[1].pattern, got[2].pattern})
	})

	t.Run("fewer candidates than requested", func(t *testing.T) {
		got := selectDiverse([]candidate{mk("a", 1, 1), mk("b", 1, 2)}, 4)
		assert.Len(t, got, 2)
	})
}

func sortedCopy(in []int) []int {
	out := append([]int{}, in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
