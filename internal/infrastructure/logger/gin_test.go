package logger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(t *testing.T, mw ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ginRequestIDKey, "req-9")
		c.Next()
	})
	r.Use(mw...)
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/properties/:id", func(c *gin.Context) {
		switch c.Param("id") {
		case "missing":
			c.JSON(http.StatusNotFound, gin.H{"success": false})
		case "broken":
			_ = c.Error(assert.AnError)
			c.Status(http.StatusInternalServerError)
		case "panic":
			panic("boom")
		default:
			c.JSON(http.StatusOK, gin.H{"success": true})
		}
	})
	return r
}

func serve(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newTestRouter(t, AccessLog(zap.New(core), "/health"))

	serve(r, "/api/v1/properties/p1?period=2025-06")
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "http", entry.LoggerName)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "/api/v1/properties/:id", fields["route"])
	assert.Equal(t, "/api/v1/properties/p1", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.Equal(t, "period=2025-06", fields["query"])

	serve(r, "/api/v1/properties/missing")
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)

	serve(r, "/api/v1/properties/broken")
	last := logs.All()[2]
	assert.Equal(t, zapcore.ErrorLevel, last.Level)
	assert.Contains(t, last.ContextMap(), "errors")
}

func TestAccessLog_SkipPaths(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newTestRouter(t, AccessLog(zap.New(core), "/health"))

	serve(r, "/health")
	assert.Zero(t, logs.Len())
}

func TestAccessLog_LevelFiltered(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := newTestRouter(t, AccessLog(zap.New(core)))

	serve(r, "/api/v1/properties/p1")
	serve(r, "/api/v1/properties/missing")
	assert.Equal(t, 1, logs.Len())
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := newTestRouter(t, Recovery(zap.New(core)))

	w := serve(r, "/api/v1/properties/panic")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "ERR_INTERNAL", body.Error.Code)
	assert.Equal(t, "req-9", body.RequestID)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "boom", logs.All()[0].ContextMap()["panic"])
}
