package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeiShi1313/readrepeat/internal/services/auth"
)

func TestTokenCommand(t *testing.T) {
	isolateEnv(t)
	t.Setenv("READREPEAT_WORKER_TOKEN_SECRET", "s3cret")

	stdout, _, err := execute(t, "", "token", "gpu-1", "--ttl", "1h")
	require.NoError(t, err)

	claims, err := auth.NewService("s3cret", time.Hour).ValidateToken(strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.Equal(t, "gpu-1", claims.WorkerName())
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)

	_, err = auth.NewService("other", time.Hour).ValidateToken(strings.TrimSpace(stdout))
	assert.Error(t, err)
}

func TestTokenCommandErrors(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no worker name", args: []string{"token"}, wantErr: "accepts 1 arg"},
		{name: "no secret", args: []string{"token", "gpu-1"}, wantErr: "worker.token_secret is not set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
