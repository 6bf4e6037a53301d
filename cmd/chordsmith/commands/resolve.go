package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <chord>",
		Short: "Show the tones of a chord symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, _, err := newService()
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}

			chord, err := service.Resolve(args[0])
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", chord.Name, chord.Quality)
			for _, tone := range chord.Tones {
				fmt.Fprintf(out, "  %-4s %-3s %s\n", tone.Degree, chord.SpellPitch(chord.PitchClassOfTone(tone)), requiredLabel(tone))
			}
			if chord.Bass != nil {
				fmt.Fprintf(out, "  bass %s\n", chord.BassName)
			}
			return nil
		},
	}
}

func requiredLabel(t theory.Tone) string {
	if t.Required {
		return "required"
	}
	return "optional"
}
