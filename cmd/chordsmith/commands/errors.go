package commands

import (
	"errors"
	"io"
	"strings"

	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/preview"
	"github.com/Conceptual-Machines/chordsmith-api/internal/printer"
)

var errorTitles = map[models.ErrorCode]string{
	models.CodeChordParseFailed:   "Could not read that chord",
	models.CodeConstraintConflict: "Those constraints cannot be satisfied",
	models.CodeNoVoicingsFound:    "No playable voicings",
}

// reportError prints err with suggestions and returns the error Cobra sees
func reportError(w io.Writer, err error) error {
	if genErr, ok := models.AsGenerationError(err); ok {
		return printer.ErrorTo(w, errorTitles[genErr.Code], genErr.Message, genErr.Suggestions)
	}
	if errors.Is(err, instrument.ErrUnknownInstrument) {
		return printer.ErrorTo(w, "Unknown instrument", err.Error(), []string{"Run 'chordsmith instruments' to list the supported instruments"})
	}
	if errors.Is(err, preview.ErrUnknownStyle) {
		return printer.ErrorTo(w, "Unknown preview style", err.Error(), []string{"Use one of: " + strings.Join(preview.Styles(), ", ")})
	}
	return printer.ErrorTo(w, "Voicing failed", err.Error(), nil)
}
