package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/chordsmith-api/internal/constraints"
	"github.com/Conceptual-Machines/chordsmith-api/internal/preview"
	"github.com/Conceptual-Machines/chordsmith-api/internal/printer"
	"github.com/Conceptual-Machines/chordsmith-api/internal/services"
)

type voiceOptions struct {
	instrument  string
	count       int
	text        string
	lesson      bool
	difficulty  string
	voicingType string
	frets       string
	maxSpan     int
	noMute      bool
	preview     string
	jsonOutput  bool
}

func newVoiceCmd() *cobra.Command {
	opts := &voiceOptions{}
	cmd := &cobra.Command{
		Use:   "voice <chord>",
		Short: "Find playable voicings for a chord",
		Long: `Find the 3 or 4 most playable voicings of a chord.

Constraints can be given as flags or as plain English with --text. When both
set the same constraint, the --text reading wins.

Examples:
  chordsmith voice Cmaj7
  chordsmith voice F --instrument guitar --voicing barre --frets 1-8
  chordsmith voice Am --text "something easy, no barre chords"
  chordsmith voice Dm7 --instrument keyboard --preview arpeggio --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVoice(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.instrument, "instrument", "i", "guitar", "Instrument: guitar, bass or keyboard")
	f.IntVarP(&opts.count, "count", "n", 0, "Number of voicings (3 or 4)")
	f.StringVarP(&opts.text, "text", "t", "", "Constraints in plain English")
	f.BoolVar(&opts.lesson, "lesson", false, "Add a fingering tip to every voicing")
	f.StringVar(&opts.difficulty, "difficulty", "", "beginner, intermediate, advanced or any")
	f.StringVar(&opts.voicingType, "voicing", "", "open, barre, dropVoicing or any")
	f.StringVar(&opts.frets, "frets", "", "Fret window as min-max, e.g. 0-3")
	f.IntVar(&opts.maxSpan, "max-span", 0, "Largest fret stretch between fretted notes")
	f.BoolVar(&opts.noMute, "no-mute", false, "Require every string to sound")
	f.StringVar(&opts.preview, "preview", "", "Render a MIDI preview in this style (JSON output only)")
	f.BoolVar(&opts.jsonOutput, "json", false, "Print the full result as JSON")

	return cmd
}

func runVoice(cmd *cobra.Command, chord string, opts *voiceOptions) error {
	c, err := opts.constraints(cmd)
	if err != nil {
		return printer.ErrorTo(cmd.ErrOrStderr(), "Invalid flag", err.Error(), nil)
	}

	service, table, err := newService()
	if err != nil {
		return reportError(cmd.ErrOrStderr(), err)
	}

	req := services.VoicingRequest{
		Instrument:      opts.instrument,
		ChordInput:      chord,
		Constraints:     c,
		NaturalLanguage: opts.text,
		Count:           opts.count,
		LessonMode:      opts.lesson,
	}
	if opts.preview != "" {
		req.Preview = &preview.Options{Style: opts.preview}
	}

	result, err := service.Generate(cmd.Context(), req)
	if err != nil {
		return reportError(cmd.ErrOrStderr(), err)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	capability, err := table.Lookup(opts.instrument)
	if err != nil {
		return reportError(cmd.ErrOrStderr(), err)
	}

	printer.Success(out, "%s\n\n", result.Summary)
	for i := range result.Voicings {
		printer.Voicing(out, i+1, &result.Voicings[i], capability)
		fmt.Fprintln(out)
	}
	return nil
}

// constraints builds the explicit constraint set from the flags that were set
func (o *voiceOptions) constraints(cmd *cobra.Command) (constraints.Constraints, error) {
	var c constraints.Constraints
	flags := cmd.Flags()

	if flags.Changed("difficulty") {
		d, err := constraints.ParseDifficulty(o.difficulty)
		if err != nil {
			return c, err
		}
		c.Difficulty = &d
	}
	if flags.Changed("voicing") {
		v, err := constraints.ParseVoicingType(o.voicingType)
		if err != nil {
			return c, err
		}
		c.VoicingType = &v
	}
	if flags.Changed("frets") {
		w, err := parseFretWindow(o.frets)
		if err != nil {
			return c, err
		}
		c.FretWindow = &w
	}
	if flags.Changed("max-span") {
		c.MaxSpan = constraints.Ptr(o.maxSpan)
	}
	if flags.Changed("no-mute") {
		c.AllowMuted = constraints.Ptr(!o.noMute)
	}
	return c, nil
}

func parseFretWindow(s string) (constraints.FretWindow, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return constraints.FretWindow{}, fmt.Errorf("invalid fret window %q (expected min-max, e.g. 0-3)", s)
	}
	minFret, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return constraints.FretWindow{}, fmt.Errorf("invalid fret window %q: %w", s, err)
	}
	maxFret, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return constraints.FretWindow{}, fmt.Errorf("invalid fret window %q: %w", s, err)
	}
	return constraints.FretWindow{Min: minFret, Max: maxFret}, nil
}
