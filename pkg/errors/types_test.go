package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NotFound("lesson", "abc"), http.StatusNotFound},
		{Conflict("lesson", "lesson is PROCESSING"), http.StatusConflict},
		{ValidationError("startMs", "must not be negative"), http.StatusBadRequest},
		{MissingFieldError("title"), http.StatusBadRequest},
		{New(ErrCodeUnauthorized, "no token"), http.StatusUnauthorized},
		{New(ErrCodeForbidden, "token subject mismatch"), http.StatusForbidden},
		{New(ErrCodeRateLimited, "slow down"), http.StatusTooManyRequests},
		{Unavailable("Waveform service"), http.StatusServiceUnavailable},
		{DatabaseError("create lesson", stderrors.New("disk full")), http.StatusInternalServerError},
		{New("SOMETHING_NEW", "unmapped"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.GetHTTPCode())
		})
	}
}

func TestExplicitHTTPCodeWins(t *testing.T) {
	err := New(ErrCodeInternal, "teapot")
	err.HTTPCode = http.StatusTeapot
	assert.Equal(t, http.StatusTeapot, err.GetHTTPCode())
}

func TestChainHelpers(t *testing.T) {
	cause := stderrors.New("record not found")
	appErr := NotFound("job", "j1").WithCause(cause)
	wrapped := fmt.Errorf("claim: %w", appErr)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, appErr, got)
	assert.True(t, Is(wrapped, ErrCodeNotFound))
	assert.False(t, Is(wrapped, ErrCodeConflict))
	assert.Equal(t, ErrCodeNotFound, GetCode(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "NOT_FOUND: job not found (caused by: record not found)", appErr.Error())
	assert.Equal(t, map[string]interface{}{"resource": "job", "id": "j1"}, appErr.Details)

	plain := stderrors.New("boom")
	_, ok = As(plain)
	assert.False(t, ok)
	assert.Equal(t, ErrCodeInternal, GetCode(plain))
	assert.False(t, Is(nil, ErrCodeInternal))
}

func TestWrapKeepsMessageSeparateFromCause(t *testing.T) {
	err := Wrap(stderrors.New("pq: connection refused"), ErrCodeDatabaseQuery, "database list lessons failed")
	assert.Equal(t, "database list lessons failed", err.Message)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, http.StatusInternalServerError, err.GetHTTPCode())
}
