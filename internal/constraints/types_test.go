package constraints

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraints_JSON(t *testing.T) {
	t.Run("object fret window", func(t *testing.T) {
		var c Constraints
		err := json.Unmarshal([]byte(`{"difficulty":"beginner","voicingType":"dropVoicing","fretWindow":{"min":2,"max":7},"allowMuted":false,"maxSpan":3}`), &c)
		require.NoError(t, err)

		assert.Equal(t, Beginner, *c.Difficulty)
		assert.Equal(t, DropVoicing, *c.VoicingType)
		assert.Equal(t, FretWindow{Min: 2, Max: 7}, *c.FretWindow)
		assert.False(t, *c.AllowMuted)
		assert.Equal(t, 3, *c.MaxSpan)
		assert.Nil(t, c.StringSubset)
		assert.Equal(t, []string{KeyDifficulty, KeyVoicingType, KeyFretWindow, KeyAllowMuted, KeyMaxSpan}, c.Keys())
	})

	t.Run("array fret window", func(t *testing.T) {
		var c Constraints
		require.NoError(t, json.Unmarshal([]byte(`{"fretWindow":[0,3],"stringSubset":[1,2,3]}`), &c))
		assert.Equal(t, FretWindow{Min: 0, Max: 3}, *c.FretWindow)
		assert.Equal(t, []int{1, 2, 3}, c.StringSubset)
	})

	t.Run("closed enums reject unknown values", func(t *testing.T) {
		var c Constraints
		assert.Error(t, json.Unmarshal([]byte(`{"difficulty":"expert"}`), &c))
		assert.Error(t, json.Unmarshal([]byte(`{"voicingType":"shell"}`), &c))
		assert.Error(t, json.Unmarshal([]byte(`{"fretWindow":[1,2,3]}`), &c))
	})

	t.Run("absent keys are omitted", func(t *testing.T) {
		data, err := json.Marshal(Constraints{MaxSpan: Ptr(4)})
		require.NoError(t, err)
		assert.JSONEq(t, `{"maxSpan":4}`, string(data))
	})
}

func TestMerge_ExtractedWins(t *testing.T) {
	explicit := Constraints{
		Difficulty: Ptr(Advanced),
		FretWindow: &FretWindow{Min: 5, Max: 9},
		MaxSpan:    Ptr(4),
	}
	extracted := Constraints{
		Difficulty:  Ptr(Beginner),
		VoicingType: Ptr(Open),
	}

	merged := Merge(explicit, extracted)
	assert.Equal(t, Beginner, *merged.Difficulty)
	assert.Equal(t, Open, *merged.VoicingType)
	assert.Equal(t, FretWindow{Min: 5, Max: 9}, *merged.FretWindow)
	assert.Equal(t, 4, *merged.MaxSpan)
	assert.Nil(t, merged.AllowMuted)

	// inputs are left untouched
	assert.Equal(t, Advanced, *explicit.Difficulty)
	*merged.MaxSpan = 1
	assert.Equal(t, 4, *explicit.MaxSpan)
}

func TestParseEnums(t *testing.T) {
	d, err := ParseDifficulty("Intermediate")
	require.NoError(t, err)
	assert.Equal(t, Intermediate, d)
	assert.Equal(t, 1, d.Rank())
	assert.Equal(t, -1, AnyDifficulty.Rank())

	v, err := ParseVoicingType("dropvoicing")
	require.NoError(t, err)
	assert.Equal(t, DropVoicing, v)

	_, err = ParseVoicingType("spread")
	assert.Error(t, err)
}
