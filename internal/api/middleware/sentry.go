package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Conceptual-Machines/chordsmith-api/internal/logger"
	"github.com/Conceptual-Machines/chordsmith-api/internal/metrics"
)

const (
	sentryFlushTimeout = 2 * time.Second
	requestIDHeader    = "X-Request-ID"

	// Gin context keys filled by TagVoicing
	InstrumentKey = "instrument"
	ChordKey      = "chord"
)

// Global metrics instance
var sentryMetrics = metrics.NewSentryMetrics()

// TagVoicing records which instrument and chord the request is about. The values
// land in the request log line and as tags on the request's Sentry scope.
func TagVoicing(c *gin.Context, instrument, chord string) {
	if instrument != "" {
		c.Set(InstrumentKey, instrument)
	}
	if chord != "" {
		c.Set(ChordKey, chord)
	}
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.Scope().SetTags(voicingTags(c))
	}
}

// voicingTags returns the instrument and chord tags set so far, omitting empty ones
func voicingTags(c *gin.Context) map[string]string {
	tags := make(map[string]string, 2)
	for _, key := range []string{InstrumentKey, ChordKey} {
		if v := c.GetString(key); v != "" {
			tags[key] = v
		}
	}
	return tags
}

// requestFields describes a request for log lines and the Sentry "request" context
func requestFields(c *gin.Context) logger.Fields {
	fields := logger.Fields{
		"request_id": c.GetString("request_id"),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"client_ip":  c.ClientIP(),
	}
	for k, v := range voicingTags(c) {
		fields[k] = v
	}
	return fields
}

// RequestTracking assigns a request ID, logs every request and records its latency
func RequestTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Reuse an upstream request ID when the gateway sends one
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		fields := requestFields(c)
		fields["duration_ms"] = duration.Milliseconds()
		fields["status_code"] = status

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("Request failed with server error", fmt.Errorf("status %d", status), fields)
		case status >= http.StatusBadRequest:
			logger.Warn("Request failed with client error", fields)
		default:
			logger.Info("Request completed", fields)
		}

		sentryMetrics.RecordAPIRequest(c.Request.Context(), c.Request.URL.Path, status, duration)
	}
}

// SentryMiddleware returns the Sentry middleware with custom configuration
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         sentryFlushTimeout,
	})
}

// RecoverWithSentry turns a panic into a 500 and reports it, tagged with the
// instrument and chord being voiced when the handler got that far.
func RecoverWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			fields := requestFields(c)
			if hub := sentrygin.GetHubFromContext(c); hub != nil {
				hub.WithScope(func(scope *sentry.Scope) {
					scope.SetRequest(c.Request)
					scope.SetContext("request", fields)
					scope.SetTags(voicingTags(c))
					if userID, exists := c.Get("user_id"); exists {
						scope.SetUser(sentry.User{ID: fmt.Sprint(userID)})
					}
					hub.RecoverWithContext(c.Request.Context(), recovered)
				})
			}

			logger.Error("Panic recovered", fmt.Errorf("panic: %v", recovered), fields)

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "Internal server error",
				"request_id": c.GetString("request_id"),
			})
		}()
		c.Next()
	}
}
