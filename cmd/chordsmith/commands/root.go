package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
	"github.com/Conceptual-Machines/chordsmith-api/internal/services"
)

var versionString = "dev"

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chordsmith",
		Short: "Chordsmith - playable chord voicings for guitar, bass and keyboard",
		Long: `Chordsmith resolves a chord symbol and finds the most playable voicings
for an instrument, honoring difficulty, voicing-type, fret-window and
stretch constraints given as flags or plain English.`,
		Version: versionString,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		// Enable strict flag parsing - unknown flags will cause an error
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
		SilenceErrors:      true,
		SilenceUsage:       true,
	}

	root.AddCommand(newVoiceCmd(), newResolveCmd(), newInstrumentsCmd())
	return root
}

// Execute runs the CLI. This is called by main.main().
func Execute() error {
	return newRootCmd().Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	versionString = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func newService() (*services.VoicingService, *instrument.Table, error) {
	table, err := instrument.Default()
	if err != nil {
		return nil, nil, fmt.Errorf("loading capability table: %w", err)
	}
	return services.NewVoicingService(table), table, nil
}
