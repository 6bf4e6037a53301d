package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Conceptual-Machines/chordsmith-api/internal/constraints"
	"github.com/Conceptual-Machines/chordsmith-api/internal/critic"
	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
	"github.com/Conceptual-Machines/chordsmith-api/internal/logger"
	"github.com/Conceptual-Machines/chordsmith-api/internal/metrics"
	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/preview"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
	"github.com/Conceptual-Machines/chordsmith-api/internal/voicing"
)

// SearchFunc is the voicing search step; voicing.Search in production
type SearchFunc func(chord *theory.ResolvedChord, capability *instrument.Capability, c constraints.Constraints, opts voicing.Options) (*voicing.Result, error)

// VoicingRequest is one generation request
type VoicingRequest struct {
	Instrument      string                  `json:"instrument" binding:"required"`
	ChordInput      string                  `json:"chordInput" binding:"required"`
	Constraints     constraints.Constraints `json:"constraints"`
	NaturalLanguage string                  `json:"naturalLanguage,omitempty"`
	Count           int                     `json:"count,omitempty"`
	LessonMode      bool                    `json:"lessonMode,omitempty"`
	Preview         *preview.Options        `json:"preview,omitempty"`
}

// VoicingResult is a successful generation
type VoicingResult struct {
	Chord       *theory.ResolvedChord   `json:"chord"`
	Constraints constraints.Constraints `json:"constraints"`
	Voicings    []voicing.Shape         `json:"voicings"`
	Previews    [][]models.NoteEvent    `json:"previews,omitempty"`
	Summary     string                  `json:"summary"`
	Candidates  int                     `json:"candidates"`
	Explored    int                     `json:"explored"`
}

// VoicingService runs the generation pipeline:
// resolve and extract concurrently, merge, validate, search, then annotate.
type VoicingService struct {
	table    *instrument.Table
	search   SearchFunc
	critic   critic.Critic
	recorder metrics.Recorder
}

// Option configures a VoicingService
type Option func(*VoicingService)

func WithSearch(fn SearchFunc) Option {
	return func(s *VoicingService) { s.search = fn }
}

func WithCritic(c critic.Critic) Option {
	return func(s *VoicingService) { s.critic = c }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(s *VoicingService) { s.recorder = r }
}

// NewVoicingService creates a service over a loaded capability table
func NewVoicingService(table *instrument.Table, opts ...Option) *VoicingService {
	s := &VoicingService{
		table:    table,
		search:   voicing.Search,
		critic:   critic.Passthrough{},
		recorder: metrics.Recorders{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Instruments lists every supported instrument
func (s *VoicingService) Instruments() []*instrument.Capability {
	return s.table.All()
}

// Resolve parses a chord symbol
func (s *VoicingService) Resolve(symbol string) (*theory.ResolvedChord, error) {
	return theory.Resolve(symbol)
}

// ExtractConstraints reads constraints from free text. instrumentName is optional and
// only used to resolve phrases such as "top 3 strings".
func (s *VoicingService) ExtractConstraints(text string, current constraints.Constraints, instrumentName string) (constraints.Constraints, error) {
	var opts []constraints.Option
	if instrumentName != "" {
		capability, err := s.table.Lookup(instrumentName)
		if err != nil {
			return constraints.Constraints{}, err
		}
		if capability.IsFretted() {
			opts = append(opts, constraints.WithStringCount(capability.StringCount()))
		}
	}
	return constraints.Extract(text, current, opts...), nil
}

// ValidateConstraints checks constraints for an instrument and, when chordInput is set, a chord
func (s *VoicingService) ValidateConstraints(instrumentName, chordInput string, c constraints.Constraints) (constraints.ValidationResult, error) {
	capability, err := s.table.Lookup(instrumentName)
	if err != nil {
		return constraints.ValidationResult{}, err
	}

	var chord *theory.ResolvedChord
	if chordInput != "" {
		chord, err = theory.Resolve(chordInput)
		if err != nil {
			return constraints.ValidationResult{}, err
		}
	}

	return constraints.Validate(c, capability, chord), nil
}

// Generate runs the full pipeline. Domain failures are *models.GenerationError;
// an unknown instrument wraps instrument.ErrUnknownInstrument and an unknown preview
// style wraps preview.ErrUnknownStyle.
func (s *VoicingService) Generate(ctx context.Context, req VoicingRequest) (*VoicingResult, error) {
	start := time.Now()

	capability, err := s.table.Lookup(req.Instrument)
	if err != nil {
		return nil, err
	}
	if req.Preview != nil && req.Preview.Style != "" && !preview.IsStyle(req.Preview.Style) {
		return nil, fmt.Errorf("%w %q", preview.ErrUnknownStyle, req.Preview.Style)
	}

	var (
		chord     *theory.ResolvedChord
		extracted constraints.Constraints
	)

	// resolution and extraction are independent
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var resolveErr error
		chord, resolveErr = theory.Resolve(req.ChordInput)
		return resolveErr
	})
	eg.Go(func() error {
		if req.NaturalLanguage == "" {
			return nil
		}
		if err := egCtx.Err(); err != nil {
			return err
		}
		var opts []constraints.Option
		if capability.IsFretted() {
			opts = append(opts, constraints.WithStringCount(capability.StringCount()))
		}
		extracted = constraints.Extract(req.NaturalLanguage, req.Constraints, opts...)
		return nil
	})
	if err := eg.Wait(); err != nil {
		s.record(ctx, capability, req.ChordInput, err, 0, start)
		return nil, err
	}

	merged := constraints.Merge(req.Constraints, extracted)

	validation := constraints.Validate(merged, capability, chord)
	if !validation.Valid {
		err := validation.Err()
		s.record(ctx, capability, chord.Name, err, 0, start)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.search(chord, capability, merged, voicing.Options{Count: req.Count, Lesson: req.LessonMode})
	if err != nil {
		s.record(ctx, capability, chord.Name, err, 0, start)
		return nil, err
	}

	out := &VoicingResult{
		Chord:       chord,
		Constraints: merged,
		Voicings:    result.Shapes,
		Candidates:  result.Candidates,
		Explored:    result.Explored,
	}

	if req.Preview != nil {
		for _, shape := range result.Shapes {
			events, err := preview.Render(shape.MIDINotes, *req.Preview)
			if err != nil {
				return nil, fmt.Errorf("render preview for %s: %w", shape.Pattern(), err)
			}
			out.Previews = append(out.Previews, events)
		}
	}

	out.Summary = summarize(chord, capability, merged, result.Shapes)
	if rewritten, err := s.critic.Rewrite(ctx, out.Summary); err != nil {
		logger.Warn("Critic rewrite failed, keeping summary", logger.Fields{
			"critic": s.critic.Name(),
			"error":  err.Error(),
		})
	} else {
		out.Summary = rewritten
	}

	s.record(ctx, capability, chord.Name, nil, result.Explored, start)
	logger.LogVoicingRequest(ctx, string(capability.Kind), chord.Name, metrics.OutcomeOK, len(out.Voicings), out.Explored, time.Since(start), nil)

	return out, nil
}

func (s *VoicingService) record(ctx context.Context, capability *instrument.Capability, chord string, err error, explored int, start time.Time) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = "ERROR"
		if genErr, ok := models.AsGenerationError(err); ok {
			outcome = string(genErr.Code)
		}
		logger.Info("Voicing request rejected", logger.Fields{
			"instrument": string(capability.Kind),
			"chord":      chord,
			"outcome":    outcome,
		})
	}
	s.recorder.RecordVoicingOutcome(ctx, string(capability.Kind), outcome, explored, time.Since(start))
}
