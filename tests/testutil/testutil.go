package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// Envelope is the JSON body every agenda response uses
type Envelope struct {
	OK      bool             `json:"ok"`
	Error   string           `json:"error"`
	Item    map[string]any   `json:"item"`
	Items   []map[string]any `json:"items"`
	Debug   map[string]any   `json:"debug"`
	Preview string           `json:"preview"`
	Seeded  bool             `json:"seeded"`
}

// NewRequest builds a request with an optional JSON body and caller headers
func NewRequest(t *testing.T, method, target string, body any, caller Caller) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	caller.Apply(req)
	return req
}

// Do serves req on router and decodes the envelope
func Do(t *testing.T, router *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env Envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Response should be valid JSON: %s", w.Body.String())
	}
	return w, env
}
