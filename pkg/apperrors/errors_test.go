package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Respond(c, err)
	return w
}

func TestRespondStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", Validation("limit must be a positive integer"), http.StatusBadRequest},
		{"auth", Auth("access token expired"), http.StatusUnauthorized},
		{"not found", NotFound("draft not found"), http.StatusNotFound},
		{"storage", Storage(errors.New("connection refused")), http.StatusInternalServerError},
		{"upstream", Upstream("gmail list failed", errors.New("googleapi: 503")), http.StatusInternalServerError},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := respond(tt.err)
			assert.Equal(t, tt.status, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRespondKnownErrorFlag(t *testing.T) {
	w := respond(Auth("missing google credential"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["isKnownError"])

	w = respond(NotFound("account not found"))
	body = map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	_, hasFlag := body["isKnownError"]
	assert.False(t, hasFlag)
}

func TestRespondWrappedError(t *testing.T) {
	inner := Auth("access token expired")
	wrapped := fmt.Errorf("fetching threads: %w", inner)

	w := respond(wrapped)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpstreamKeepsCause(t *testing.T) {
	cause := errors.New("googleapi: Error 503: backend unavailable")
	err := Upstream("unable to send message", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "backend unavailable")
}
