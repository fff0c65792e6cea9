package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Envelope mirrors the API response wrapper
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	} `json:"meta"`
	RequestID string `json:"request_id"`
}

// APIClient sends JSON requests straight into a handler
type APIClient struct {
	t       *testing.T
	handler http.Handler
}

// NewAPIClient wraps h for in-process requests
func NewAPIClient(t *testing.T, h http.Handler) *APIClient {
	return &APIClient{t: t, handler: h}
}

// Handler returns the wrapped handler
func (a *APIClient) Handler() http.Handler {
	return a.handler
}

// Do sends body as JSON. headers are key/value pairs. The envelope is only
// decoded for JSON responses.
func (a *APIClient) Do(method, path string, body any, headers ...string) (int, Envelope, http.Header) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)

	var env Envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env, w.Header()
}

// Decode unmarshals raw into T
func Decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// DecodeID pulls the id field out of a created resource
func DecodeID(t *testing.T, raw []byte) string {
	t.Helper()
	return Decode[struct {
		ID string `json:"id"`
	}](t, raw).ID
}
