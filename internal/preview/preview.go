// Package preview turns a voicing's sounded notes into MIDI note events.
package preview

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
)

const (
	StyleBlock    = "block"
	StyleStrum    = "strum"
	StyleArpeggio = "arpeggio"

	DefaultLengthBeats = 4.0
	DefaultVelocity    = 100

	// delay between successive strings of a strum
	strumDelayBeats = 0.05
	maxVelocity     = 127
)

var ErrUnknownStyle = errors.New("unknown preview style")

// Options controls how notes are laid out in time
type Options struct {
	Style       string  `json:"style"`
	LengthBeats float64 `json:"lengthBeats"`
	Velocity    int     `json:"velocity"`
	StartBeat   float64 `json:"startBeat"`
}

func (o Options) withDefaults() Options {
	if o.Style == "" {
		o.Style = StyleBlock
	}
	if o.LengthBeats <= 0 {
		o.LengthBeats = DefaultLengthBeats
	}
	if o.Velocity <= 0 || o.Velocity > maxVelocity {
		o.Velocity = DefaultVelocity
	}
	if o.StartBeat < 0 {
		o.StartBeat = 0
	}
	return o
}

// Render lays out midiNotes (any order) according to opts.Style.
// Notes are played lowest first.
func Render(midiNotes []int, opts Options) ([]models.NoteEvent, error) {
	if len(midiNotes) == 0 {
		return nil, fmt.Errorf("preview needs at least one note")
	}
	opts = opts.withDefaults()

	notes := append([]int{}, midiNotes...)
	sort.Ints(notes)

	switch opts.Style {
	case StyleBlock:
		return block(notes, opts), nil
	case StyleStrum:
		return strum(notes, opts), nil
	case StyleArpeggio:
		return arpeggio(notes, opts), nil
	}

	tmpl, ok := GetRhythmTemplate(opts.Style)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownStyle, opts.Style)
	}
	return applyTemplate(notes, opts, tmpl), nil
}

func block(notes []int, opts Options) []models.NoteEvent {
	events := make([]models.NoteEvent, 0, len(notes))
	for _, n := range notes {
		events = append(events, models.NoteEvent{
			MidiNoteNumber: n,
			Velocity:       opts.Velocity,
			StartBeats:     opts.StartBeat,
			DurationBeats:  opts.LengthBeats,
		})
	}
	return events
}

func strum(notes []int, opts Options) []models.NoteEvent {
	events := make([]models.NoteEvent, 0, len(notes))
	for i, n := range notes {
		offset := float64(i) * strumDelayBeats
		events = append(events, models.NoteEvent{
			MidiNoteNumber: n,
			Velocity:       opts.Velocity,
			StartBeats:     opts.StartBeat + offset,
			DurationBeats:  opts.LengthBeats - offset,
		})
	}
	return events
}

func arpeggio(notes []int, opts Options) []models.NoteEvent {
	step := opts.LengthBeats / float64(len(notes))
	events := make([]models.NoteEvent, 0, len(notes))
	for i, n := range notes {
		events = append(events, models.NoteEvent{
			MidiNoteNumber: n,
			Velocity:       opts.Velocity,
			StartBeats:     opts.StartBeat + float64(i)*step,
			DurationBeats:  step,
		})
	}
	return events
}

// applyTemplate repeats the template's cycle until LengthBeats is filled
func applyTemplate(notes []int, opts Options, tmpl RhythmTemplate) []models.NoteEvent {
	var events []models.NoteEvent
	end := opts.StartBeat + opts.LengthBeats

	for cycleStart := opts.StartBeat; cycleStart < end; cycleStart += tmpl.Cycle {
		for i, offset := range tmpl.Offsets {
			beatPos := cycleStart + offset
			if beatPos >= end {
				break
			}

			velocity := opts.Velocity
			if i < len(tmpl.Accents) {
				velocity = clampVelocity(int(float64(opts.Velocity) * tmpl.Accents[i]))
			}

			gap := tmpl.Cycle - offset
			if i+1 < len(tmpl.Offsets) {
				gap = tmpl.Offsets[i+1] - offset
			}
			duration := min(gap*tmpl.Articulation, end-beatPos)

			if tmpl.Order == together {
				for _, n := range notes {
					events = append(events, models.NoteEvent{
						MidiNoteNumber: n,
						Velocity:       velocity,
						StartBeats:     beatPos,
						DurationBeats:  duration,
					})
				}
				continue
			}

			events = append(events, models.NoteEvent{
				MidiNoteNumber: tmpl.Order.pick(notes, i),
				Velocity:       velocity,
				StartBeats:     beatPos,
				DurationBeats:  duration,
			})
		}
	}

	return events
}

func clampVelocity(v int) int {
	return max(1, min(v, maxVelocity))
}
