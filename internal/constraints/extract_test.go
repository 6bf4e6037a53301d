package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_FreeTextScenario(t *testing.T) {
	got := Extract("something easy, no barre chords, around the first 3 frets", Constraints{})

	require.NotNil(t, got.Difficulty)
	assert.Equal(t, Beginner, *got.Difficulty)
	require.NotNil(t, got.VoicingType)
	assert.Equal(t, Open, *got.VoicingType)
	require.NotNil(t, got.FretWindow)
	assert.Equal(t, FretWindow{Min: 0, Max: 3}, *got.FretWindow)

	assert.Nil(t, got.AllowMuted)
	assert.Nil(t, got.MaxSpan)
	assert.Nil(t, got.StringSubset)
}

func TestExtract_Phrases(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Constraints
	}{
		{
			name:     "nothing recognised",
			text:     "play me a nice chord please",
			expected: Constraints{},
		},
		{
			name:     "hard",
			text:     "give me something advanced",
			expected: Constraints{Difficulty: Ptr(Advanced)},
		},
		{
			name:     "intermediate",
			text:     "Medium difficulty",
			expected: Constraints{Difficulty: Ptr(Intermediate)},
		},
		{
			name:     "barre",
			text:     "I want a barre chord",
			expected: Constraints{VoicingType: Ptr(Barre)},
		},
		{
			name:     "open chord",
			text:     "an open chord shape",
			expected: Constraints{VoicingType: Ptr(Open)},
		},
		{
			name:     "drop 2",
			text:     "jazzy drop 2 voicing",
			expected: Constraints{VoicingType: Ptr(DropVoicing)},
		},
		{
			name:     "fret range",
			text:     "somewhere on frets 3 to 7",
			expected: Constraints{FretWindow: &FretWindow{Min: 3, Max: 7}},
		},
		{
			name:     "fret range reversed",
			text:     "frets 9-5",
			expected: Constraints{FretWindow: &FretWindow{Min: 5, Max: 9}},
		},
		{
			name:     "between frets",
			text:     "between frets two and six",
			expected: Constraints{FretWindow: &FretWindow{Min: 2, Max: 6}},
		},
		{
			name:     "around fret",
			text:     "around fret 5",
			expected: Constraints{FretWindow: &FretWindow{Min: 3, Max: 7}},
		},
		{
			name:     "around ordinal fret near the nut",
			text:     "near the 1st fret",
			expected: Constraints{FretWindow: &FretWindow{Min: 0, Max: 3}},
		},
		{
			name:     "below fret",
			text:     "below fret 10",
			expected: Constraints{FretWindow: &FretWindow{Min: 0, Max: 9}},
		},
		{
			name:     "position",
			text:     "in 5th position",
			expected: Constraints{FretWindow: &FretWindow{Min: 5, Max: 8}},
		},
		{
			name:     "no muted strings",
			text:     "no muted strings",
			expected: Constraints{AllowMuted: Ptr(false)},
		},
		{
			name:     "let strings ring",
			text:     "let the strings ring",
			expected: Constraints{AllowMuted: Ptr(false)},
		},
		{
			name:     "muting is fine",
			text:     "muted strings are fine",
			expected: Constraints{AllowMuted: Ptr(true)},
		},
		{
			name:     "narrow stretch",
			text:     "no big stretches, I have small hands",
			expected: Constraints{MaxSpan: Ptr(2)},
		},
		{
			name:     "explicit span",
			text:     "at most 3 frets apart",
			expected: Constraints{MaxSpan: Ptr(3)},
		},
		{
			name:     "bottom strings",
			text:     "only the bottom 4 strings",
			expected: Constraints{StringSubset: []int{0, 1, 2, 3}},
		},
		{
			name:     "skip low e",
			text:     "skip the low E string",
			expected: Constraints{StringSubset: []int{1, 2, 3, 4, 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Extract(tt.text, Constraints{}))
		})
	}
}

func TestExtract_LastMatchWins(t *testing.T) {
	got := Extract("make it easy... actually no, make it hard", Constraints{})
	require.NotNil(t, got.Difficulty)
	assert.Equal(t, Advanced, *got.Difficulty)

	got = Extract("barre is fine, hmm, no barre please", Constraints{})
	require.NotNil(t, got.VoicingType)
	assert.Equal(t, Open, *got.VoicingType)

	got = Extract("frets 3 to 7, or rather around fret 10", Constraints{})
	require.NotNil(t, got.FretWindow)
	assert.Equal(t, FretWindow{Min: 8, Max: 12}, *got.FretWindow)
}

func TestExtract_RelativeToCurrent(t *testing.T) {
	current := Constraints{
		Difficulty: Ptr(Advanced),
		FretWindow: &FretWindow{Min: 2, Max: 6},
	}

	got := Extract("a bit easier and higher up the neck", current)
	require.NotNil(t, got.Difficulty)
	assert.Equal(t, Intermediate, *got.Difficulty)
	require.NotNil(t, got.FretWindow)
	assert.Equal(t, FretWindow{Min: 5, Max: 9}, *got.FretWindow)

	// current is context only, it is not echoed back
	got = Extract("nothing to see", current)
	assert.True(t, got.IsEmpty())

	// without context the relative phrases land on defaults
	got = Extract("easier, higher up", Constraints{})
	assert.Equal(t, Beginner, *got.Difficulty)
	assert.Equal(t, FretWindow{Min: 5, Max: 12}, *got.FretWindow)

	got = Extract("lower down the neck", Constraints{FretWindow: &FretWindow{Min: 1, Max: 4}})
	assert.Equal(t, FretWindow{Min: 0, Max: 3}, *got.FretWindow)
}

func TestExtract_TopStringsUsesStringCount(t *testing.T) {
	got := Extract("top 3 strings", Constraints{}, WithStringCount(4))
	assert.Equal(t, []int{1, 2, 3}, got.StringSubset)

	got = Extract("top 3 strings", Constraints{})
	assert.Equal(t, []int{3, 4, 5}, got.StringSubset)
}
