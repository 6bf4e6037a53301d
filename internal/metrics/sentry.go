package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest

	OutcomeOK = "ok"
)

// Recorder receives one event per voicing generation
type Recorder interface {
	RecordVoicingOutcome(ctx context.Context, instrument, outcome string, explored int, duration time.Duration)
}

// Recorders fans an event out to several recorders
type Recorders []Recorder

func (rs Recorders) RecordVoicingOutcome(ctx context.Context, instrument, outcome string, explored int, duration time.Duration) {
	for _, r := range rs {
		if r != nil {
			r.RecordVoicingOutcome(ctx, instrument, outcome, explored, duration)
		}
	}
}

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordVoicingOutcome records one search, tagged by instrument and outcome
func (m *SentryMetrics) RecordVoicingOutcome(ctx context.Context, instrument, outcome string, explored int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "voicing.search")
	defer span.Finish()

	span.SetTag("instrument", instrument)
	span.SetTag("outcome", outcome)

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("explored", explored)

	// domain failures are expected answers, not span errors
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Voicing Search: %s %s", instrument, outcome)
}
