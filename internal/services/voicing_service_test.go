package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Conceptual-Machines/chordsmith-api/internal/constraints"
	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/preview"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
	"github.com/Conceptual-Machines/chordsmith-api/internal/voicing"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// searchSpy counts calls and delegates to the real search
type searchSpy struct {
	mu    sync.Mutex
	calls int
}

func (s *searchSpy) search(chord *theory.ResolvedChord, capability *instrument.Capability, c constraints.Constraints, opts voicing.Options) (*voicing.Result, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return voicing.Search(chord, capability, c, opts)
}

type recorderStub struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recorderStub) RecordVoicingOutcome(_ context.Context, _, outcome string, _ int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

type criticStub struct {
	err error
}

func (c criticStub) Rewrite(_ context.Context, prose string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return "Nice! " + prose, nil
}

func (criticStub) Name() string { return "stub" }

func newTestService(t *testing.T, opts ...Option) (*VoicingService, *searchSpy, *recorderStub) {
	t.Helper()
	table, err := instrument.Default()
	require.NoError(t, err)

	spy := &searchSpy{}
	rec := &recorderStub{}
	opts = append([]Option{WithSearch(spy.search), WithRecorder(rec)}, opts...)
	return NewVoicingService(table, opts...), spy, rec
}

func TestGenerate_Cmaj7OnGuitar(t *testing.T) {
	svc, spy, rec := newTestService(t)

	result, err := svc.Generate(context.Background(), VoicingRequest{
		Instrument: "guitar",
		ChordInput: "Cmaj7",
		Count:      4,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, spy.calls)
	assert.Equal(t, "Cmaj7", result.Chord.Name)
	assert.GreaterOrEqual(t, len(result.Voicings), 3)
	assert.LessOrEqual(t, len(result.Voicings), 4)
	assert.True(t, strings.HasPrefix(result.Summary, "Found "))
	assert.Contains(t, result.Summary, "Cmaj7 voicings for guitar")
	assert.Nil(t, result.Previews)
	assert.Equal(t, []string{"ok"}, rec.outcomes)
}

func TestGenerate_FreeText(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.Generate(context.Background(), VoicingRequest{
		Instrument:      "guitar",
		ChordInput:      "C",
		NaturalLanguage: "something easy, no barre chords, around the first 3 frets",
	})
	require.NoError(t, err)

	c := result.Constraints
	require.NotNil(t, c.Difficulty)
	require.NotNil(t, c.VoicingType)
	require.NotNil(t, c.FretWindow)
	assert.Equal(t, constraints.Beginner, *c.Difficulty)
	assert.Equal(t, constraints.Open, *c.VoicingType)
	assert.Equal(t, constraints.FretWindow{Min: 0, Max: 3}, *c.FretWindow)

	require.NotEmpty(t, result.Voicings)
	for _, shape := range result.Voicings {
		assert.Equal(t, constraints.Beginner, shape.Difficulty)
		assert.False(t, shape.HasBarre())
		for _, f := range shape.Frets {
			assert.LessOrEqual(t, int(f), 3)
		}
	}
	assert.Contains(t, result.Summary, "beginner, open, frets 0-3")
}

func TestGenerate_ExtractedKeysOverrideExplicit(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.Generate(context.Background(), VoicingRequest{
		Instrument:      "guitar",
		ChordInput:      "G",
		Constraints:     constraints.Constraints{Difficulty: constraints.Ptr(constraints.Advanced), MaxSpan: constraints.Ptr(4)},
		NaturalLanguage: "keep it easy",
	})
	require.NoError(t, err)
	assert.Equal(t, constraints.Beginner, *result.Constraints.Difficulty)
	assert.Equal(t, 4, *result.Constraints.MaxSpan)
}

func TestGenerate_ConflictStopsBeforeSearch(t *testing.T) {
	svc, spy, rec := newTestService(t)

	_, err := svc.Generate(context.Background(), VoicingRequest{
		Instrument: "guitar",
		ChordInput: "Gdim7",
		Constraints: constraints.Constraints{
			Difficulty:  constraints.Ptr(constraints.Beginner),
			VoicingType: constraints.Ptr(constraints.Barre),
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConstraintConflict))

	genErr, ok := models.AsGenerationError(err)
	require.True(t, ok)
	assert.NotEmpty(t, genErr.Suggestions)
	assert.Equal(t, 0, spy.calls)
	assert.Equal(t, []string{string(models.CodeConstraintConflict)}, rec.outcomes)
}

func TestGenerate_TooManyTonesForBass(t *testing.T) {
	svc, spy, _ := newTestService(t)

	_, err := svc.Generate(context.Background(), VoicingRequest{
		Instrument:  "bass",
		ChordInput:  "C7#9b13",
		Constraints: constraints.Constraints{MaxSpan: constraints.Ptr(1)},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConstraintConflict))
	assert.Contains(t, err.Error(), "strings")
	assert.Equal(t, 0, spy.calls)
}

func TestGenerate_ParseFailureStopsBeforeSearch(t *testing.T) {
	svc, spy, _ := newTestService(t)

	_, err := svc.Generate(context.Background(), VoicingRequest{
		Instrument:      "guitar",
		ChordInput:      "Cmaj8",
		NaturalLanguage: "easy please",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrChordParseFailed))
	assert.Equal(t, 0, spy.calls)
}

func TestGenerate_UnknownInstrument(t *testing.T) {
	svc, spy, _ := newTestService(t)

	_, err := svc.Generate(context.Background(), VoicingRequest{Instrument: "ukulele", ChordInput: "C"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, instrument.ErrUnknownInstrument))
	_, isDomain := models.AsGenerationError(err)
	assert.False(t, isDomain)
	assert.Equal(t, 0, spy.calls)
}

func TestGenerate_NoVoicingsFound(t *testing.T) {
	svc, spy, rec := newTestService(t)

	_, err := svc.Generate(context.Background(), VoicingRequest{
		Instrument: "guitar",
		ChordInput: "C7#9",
		Constraints: constraints.Constraints{
			MaxSpan:    constraints.Ptr(0),
			FretWindow: &constraints.FretWindow{Min: 1, Max: 12},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNoVoicingsFound))
	assert.Equal(t, 1, spy.calls)
	assert.Equal(t, []string{string(models.CodeNoVoicingsFound)}, rec.outcomes)
}

func TestGenerate_CancelledContext(t *testing.T) {
	svc, spy, _ := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx, VoicingRequest{Instrument: "bass", ChordInput: "E"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, spy.calls)
}

func TestGenerate_Preview(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.Generate(context.Background(), VoicingRequest{
		Instrument: "keyboard",
		ChordInput: "Am",
		Preview:    &preview.Options{Style: preview.StyleArpeggio},
	})
	require.NoError(t, err)
	require.Len(t, result.Previews, len(result.Voicings))
	for i, events := range result.Previews {
		assert.Len(t, events, len(result.Voicings[i].MIDINotes))
	}

	_, err = svc.Generate(context.Background(), VoicingRequest{
		Instrument: "keyboard",
		ChordInput: "Am",
		Preview:    &preview.Options{Style: "polka"},
	})
	assert.True(t, errors.Is(err, preview.ErrUnknownStyle))
}

func TestGenerate_Critic(t *testing.T) {
	t.Run("rewrites the summary", func(t *testing.T) {
		svc, _, _ := newTestService(t, WithCritic(criticStub{}))
		result, err := svc.Generate(context.Background(), VoicingRequest{Instrument: "guitar", ChordInput: "D"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(result.Summary, "Nice! Found "))
	})

	t.Run("failure keeps the deterministic summary", func(t *testing.T) {
		svc, _, _ := newTestService(t, WithCritic(criticStub{err: errors.New("timeout")}))
		result, err := svc.Generate(context.Background(), VoicingRequest{Instrument: "guitar", ChordInput: "D"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(result.Summary, "Found "))
		assert.NotEmpty(t, result.Voicings)
	})
}

func TestGenerate_Idempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := VoicingRequest{Instrument: "guitar", ChordInput: "Em7", LessonMode: true, NaturalLanguage: "no muted strings"}

	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHelpers(t *testing.T) {
	svc, _, _ := newTestService(t)

	assert.Len(t, svc.Instruments(), 3)

	chord, err := svc.Resolve("G/B")
	require.NoError(t, err)
	assert.Equal(t, "G/B", chord.Name)

	c, err := svc.ExtractConstraints("top 2 strings", constraints.Constraints{}, "bass")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, c.StringSubset)

	_, err = svc.ExtractConstraints("easy", constraints.Constraints{}, "theremin")
	assert.True(t, errors.Is(err, instrument.ErrUnknownInstrument))

	result, err := svc.ValidateConstraints("keyboard", "", constraints.Constraints{FretWindow: &constraints.FretWindow{Min: 0, Max: 3}})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Len(t, result.Suggestions, len(result.Conflicts))

	result, err = svc.ValidateConstraints("guitar", "Cmaj7", constraints.Constraints{})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	_, err = svc.ValidateConstraints("guitar", "Hmaj7", constraints.Constraints{})
	assert.True(t, errors.Is(err, models.ErrChordParseFailed))
}
