package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/chordsmith-api/internal/metrics"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw...)
	return router
}

func TestGatewayAuth(t *testing.T) {
	router := newEngine(GatewayAuth())
	router.GET("/who", func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.String(http.StatusOK, id)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("X-User-ID", "user-42")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", w.Body.String())
}

func TestNoAuth(t *testing.T) {
	router := newEngine(NoAuth())
	router.GET("/who", func(c *gin.Context) {
		id, ok := GetUserID(c)
		assert.True(t, ok)
		c.String(http.StatusOK, id)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestCORS(t *testing.T) {
	router := newEngine(CORS())
	router.POST("/api/v1/voicings", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/voicings", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestTracking(t *testing.T) {
	router := newEngine(RequestTracking())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get("X-Request-ID")
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, w.Body.String())

	upstream := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", upstream)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, upstream, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get("X-Request-ID"))
}

func TestRecoverWithSentry(t *testing.T) {
	router := newEngine(RecoverWithSentry(), RequestTracking())
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestTagVoicing(t *testing.T) {
	router := newEngine(SentryMiddleware(), RequestTracking())
	router.POST("/api/v1/voicings", func(c *gin.Context) {
		TagVoicing(c, "guitar", "Cmaj7")

		assert.Equal(t, map[string]string{InstrumentKey: "guitar", ChordKey: "Cmaj7"}, voicingTags(c))
		fields := requestFields(c)
		assert.Equal(t, "guitar", fields[InstrumentKey])
		assert.Equal(t, "Cmaj7", fields[ChordKey])
		assert.Equal(t, c.GetString("request_id"), fields["request_id"])
		c.Status(http.StatusOK)
	})
	router.GET("/api/v1/chords/resolve", func(c *gin.Context) {
		TagVoicing(c, "", "F#m7b5")

		assert.Equal(t, map[string]string{ChordKey: "F#m7b5"}, voicingTags(c))
		assert.NotContains(t, requestFields(c), InstrumentKey)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/voicings", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/chords/resolve", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecoverWithSentry_TaggedPanic(t *testing.T) {
	router := newEngine(RecoverWithSentry(), SentryMiddleware(), RequestTracking())
	router.POST("/api/v1/voicings", func(c *gin.Context) {
		TagVoicing(c, "bass", "E")
		panic("capability table corrupted")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/voicings", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.NotContains(t, w.Body.String(), "corrupted")

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, w.Header().Get("X-Request-ID"), body["request_id"])
}

func TestRequestTimeout(t *testing.T) {
	router := newEngine(RequestTimeout(time.Second))
	router.GET("/deadline", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/deadline", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCloudWatchMetrics_Disabled(t *testing.T) {
	client, err := metrics.NewClient(context.Background(), "test")
	assert.NoError(t, err)

	for _, mw := range []gin.HandlerFunc{CloudWatchMetrics(nil), CloudWatchMetrics(client)} {
		router := newEngine(mw)
		router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
