package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/chordsmith-api/internal/api/middleware"
	"github.com/Conceptual-Machines/chordsmith-api/internal/constraints"
	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
	"github.com/Conceptual-Machines/chordsmith-api/internal/logger"
	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/preview"
	"github.com/Conceptual-Machines/chordsmith-api/internal/services"
)

type VoicingHandler struct {
	service *services.VoicingService
}

func NewVoicingHandler(service *services.VoicingService) *VoicingHandler {
	return &VoicingHandler{service: service}
}

// ErrorResponse is the body of every non-domain failure
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// GenerationErrorResponse is the body of a domain failure
type GenerationErrorResponse struct {
	Code        models.ErrorCode `json:"code"`
	Message     string           `json:"message"`
	Suggestions []string         `json:"suggestions"`
	RequestID   string           `json:"request_id,omitempty"`
}

type VoicingResponse struct {
	*services.VoicingResult
	RequestID string `json:"request_id"`
}

// Generate handles POST /api/v1/voicings
func (h *VoicingHandler) Generate(c *gin.Context) {
	var req services.VoicingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	middleware.TagVoicing(c, req.Instrument, req.ChordInput)

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, VoicingResponse{
		VoicingResult: result,
		RequestID:     c.GetString("request_id"),
	})
}

// Resolve handles GET /api/v1/chords/resolve?symbol=...
func (h *VoicingHandler) Resolve(c *gin.Context) {
	symbol := c.Query("symbol")
	if strings.TrimSpace(symbol) == "" {
		badRequest(c, errors.New("query parameter 'symbol' is required"))
		return
	}

	middleware.TagVoicing(c, "", symbol)

	chord, err := h.service.Resolve(symbol)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chord)
}

type ExtractRequest struct {
	Text        string                  `json:"text" binding:"required"`
	Constraints constraints.Constraints `json:"constraints"`
	Instrument  string                  `json:"instrument"`
}

// Extract handles POST /api/v1/constraints/extract
func (h *VoicingHandler) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	extracted, err := h.service.ExtractConstraints(req.Text, req.Constraints, req.Instrument)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"extracted": extracted,
		"keys":      extracted.Keys(),
		"merged":    constraints.Merge(req.Constraints, extracted),
	})
}

type ValidateRequest struct {
	Instrument  string                  `json:"instrument" binding:"required"`
	ChordInput  string                  `json:"chordInput"`
	Constraints constraints.Constraints `json:"constraints"`
}

// Validate handles POST /api/v1/constraints/validate.
// An invalid set is a normal 200 answer; only a bad chord or instrument fails the call.
func (h *VoicingHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	middleware.TagVoicing(c, req.Instrument, req.ChordInput)

	result, err := h.service.ValidateConstraints(req.Instrument, req.ChordInput, req.Constraints)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Instruments handles GET /api/v1/instruments
func (h *VoicingHandler) Instruments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"instruments": h.service.Instruments(),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:     err.Error(),
		RequestID: c.GetString("request_id"),
	})
}

// respondError maps domain failures to 422, caller mistakes to 400 and the rest to 500
func respondError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")

	if genErr, ok := models.AsGenerationError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, GenerationErrorResponse{
			Code:        genErr.Code,
			Message:     genErr.Message,
			Suggestions: genErr.Suggestions,
			RequestID:   requestID,
		})
		return
	}

	if errors.Is(err, instrument.ErrUnknownInstrument) || errors.Is(err, preview.ErrUnknownStyle) {
		badRequest(c, err)
		return
	}

	logger.Error("Request failed", err, logger.WithContext(c))
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:     "Internal server error",
		RequestID: requestID,
	})
}
