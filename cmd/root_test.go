package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs a fresh command tree and returns what it wrote to stdout and stderr
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// isolateEnv points the database and data dir at a temp dir
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("READREPEAT_DATABASE_PATH", filepath.Join(dir, "readrepeat.db"))
	t.Setenv("READREPEAT_STORAGE_DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("READREPEAT_WORKER_WHISPER_PATH", filepath.Join(dir, "no-whisper"))
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
	})
	return dir
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantErr        bool
		expectedOutput string
	}{
		{
			name:           "root command without args shows help",
			args:           []string{},
			expectedOutput: "shadow-reading lessons",
		},
		{
			name:           "root command with --help",
			args:           []string{"--help"},
			expectedOutput: "Available Commands:",
		},
		{
			name:    "root command with invalid flag",
			args:    []string{"--invalid-flag"},
			wantErr: true,
		},
		{
			name:    "unknown subcommand",
			args:    []string{"podcast"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, "", tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, stdout, tt.expectedOutput)
		})
	}
}

func TestRootSubcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"serve", "worker", "migrate", "config", "token", "version"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestLogFlags(t *testing.T) {
	cmd := NewRootCmd()

	logFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logFlag)
	assert.Equal(t, "info", logFlag.DefValue)

	assert.NotNil(t, cmd.PersistentFlags().Lookup("json-logs"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestInvalidLogLevel(t *testing.T) {
	isolateEnv(t)
	_, _, err := execute(t, "", "migrate", "status", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
