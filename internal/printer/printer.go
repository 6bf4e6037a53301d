package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
	faint  = color.New(color.Faint)
)

// Success prints a success message in green with a checkmark prefix
func Success(w io.Writer, format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		msg = "✓ " + msg
	}
	green.Fprint(w, msg)
}

// Warning prints a warning message in yellow with a warning emoji prefix
func Warning(w io.Writer, format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		msg = "⚠️  " + msg
	}
	yellow.Fprint(w, msg)
}

// Step prints a step message with emphasis
func Step(w io.Writer, format string, a ...any) {
	cyan.Fprintf(w, "→ %s", fmt.Sprintf(format, a...))
}

// Error creates a formatted error message with title, explanation, and suggestions.
// Prints the formatted error to stderr with colors and returns a simple error for Cobra.
func Error(title string, explanation string, suggestions []string) error {
	return ErrorTo(os.Stderr, title, explanation, suggestions)
}

// ErrorTo is Error writing to w
func ErrorTo(w io.Writer, title string, explanation string, suggestions []string) error {
	red.Fprintf(w, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(w, "%s\n", explanation)
	}

	if len(suggestions) > 0 {
		fmt.Fprintf(w, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(w, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(w, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(w, "  %d. %s\n", i+1, suggestion)
			}
		}
	}

	// Return simple error for Cobra (won't be printed due to SilenceErrors)
	return fmt.Errorf("%s", title)
}
