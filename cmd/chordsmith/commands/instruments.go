package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newInstrumentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "instruments",
		Short: "List supported instruments and their limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, _, err := newService()
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}

			out := cmd.OutOrStdout()
			for _, c := range service.Instruments() {
				if c.IsFretted() {
					fmt.Fprintf(out, "%-9s %d strings (%s), frets 0-%d, stretch %d\n",
						c.Kind, c.StringCount(), strings.Join(c.TuningNames, " "), c.MaxFret, c.MaxStretch)
				} else {
					fmt.Fprintf(out, "%-9s keys %d-%d, reach %d semitones\n",
						c.Kind, c.LowestKey, c.HighestKey, c.MaxReach)
				}
				fmt.Fprintf(out, "          voicing types: %s\n", strings.Join(c.VoicingTypes, ", "))
			}
			return nil
		},
	}
}
