package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorWithExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusTooManyRequests, "Too many requests", map[string]interface{}{"retry_after": 12})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "https://datatracker.ietf.org/doc/html/rfc6585#section-4", body["type"])
	assert.Equal(t, "Too Many Requests", body["title"])
	assert.Equal(t, float64(429), body["status"])
	assert.Equal(t, "Too many requests", body["detail"])
	assert.Equal(t, float64(12), body["retry_after"])
}

func TestNewProblem_UnlistedStatus(t *testing.T) {
	p := NewProblem(http.StatusTeapot, "")
	assert.Equal(t, "about:blank", p.Type)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "detail")
}

func TestRespondJSON_EncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, map[string]interface{}{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}
