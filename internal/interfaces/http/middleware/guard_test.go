package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	t.Cleanup(rl.Close)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, remaining := rl.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)
	ok, _ = rl.Allow("a")
	assert.False(t, ok)

	ok, _ = rl.Allow("b")
	assert.True(t, ok, "keys have separate budgets")

	now = now.Add(time.Minute)
	ok, _ = rl.Allow("a")
	assert.True(t, ok, "window reset")
}

func TestRateLimit_PerPropertyBudget(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	t.Cleanup(rl.Close)
	r := gin.New()
	r.Use(RateLimit(rl))
	r.GET("/api/v1/properties/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(id string) *httptest.ResponseRecorder {
		return serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/properties/"+id, nil))
	}

	assert.Equal(t, http.StatusOK, get(testPropertyID).Code)
	w := get(testPropertyID)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, dto.ErrCodeRateLimited, decode(t, w).Error.Code)

	assert.Equal(t, http.StatusOK, get("0f1e2d3c-4b5a-4978-8695-a4b3c2d1e0f9").Code)
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/x", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"a":1}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"description":"far too long"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, decode(t, w).Error.Code)

	// unknown length is cut off while reading
	req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString(`{"description":"far too long"}`))
	req.ContentLength = -1
	assert.Equal(t, http.StatusBadRequest, serve(r, req).Code)
}

func TestSwaggerProtection(t *testing.T) {
	build := func(cfg SwaggerConfig) *gin.Engine {
		r := gin.New()
		r.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}
	request := func(remote string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
		req.RemoteAddr = remote
		return req
	}

	assert.Equal(t, http.StatusNotFound, serve(build(SwaggerConfig{}), request("10.0.0.1:1234")).Code)
	assert.Equal(t, http.StatusOK, serve(build(SwaggerConfig{Enabled: true}), request("10.0.0.1:1234")).Code)

	restricted := build(SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.1.0/24", "10.0.0.7", "not-an-ip"}})
	assert.Equal(t, http.StatusOK, serve(restricted, request("192.168.1.20:1234")).Code)
	assert.Equal(t, http.StatusOK, serve(restricted, request("10.0.0.7:1234")).Code)
	w := serve(restricted, request("10.0.0.8:1234"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, decode(t, w).Error.Code)
}
