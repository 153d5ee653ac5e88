package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches wrapped domain errors", func(t *testing.T) {
		err := fmt.Errorf("login: %w", New(CodeUnauthorized, "invalid credentials"))
		assert.True(t, HasCode(err, CodeUnauthorized))
		assert.False(t, HasCode(err, CodeBadRequest))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestErrorsIs(t *testing.T) {
	err := Wrap(errors.New("dial tcp: refused"), CodeUnavailable, "identity service unavailable")
	require.ErrorIs(t, err, New(CodeUnavailable, "identity service unavailable"))
	assert.NotErrorIs(t, err, New(CodeUnavailable, "something else"))
	assert.Contains(t, err.Error(), "dial tcp")
}

func TestToHTTPStatus(t *testing.T) {
	tests := map[Code]int{
		CodeInvalidInput: http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeRateLimited:  http.StatusTooManyRequests,
		CodeUnavailable:  http.StatusServiceUnavailable,
		CodeInternal:     http.StatusInternalServerError,
		Code("unknown"):  http.StatusInternalServerError,
	}
	for code, status := range tests {
		assert.Equal(t, status, ToHTTPStatus(code), "code %s", code)
	}
}
