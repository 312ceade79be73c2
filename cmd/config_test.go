package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigInit(t *testing.T) {
	output := filepath.Join(t.TempDir(), "config", "settings.yaml")

	stdout, _, err := execute(t, "", "config", "init", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote default settings")

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var settings struct {
		Environment string                 `yaml:"environment"`
		Server      map[string]interface{} `yaml:"server"`
		Database    map[string]interface{} `yaml:"database"`
		Worker      map[string]interface{} `yaml:"worker"`
	}
	require.NoError(t, yaml.Unmarshal(data, &settings))
	assert.Equal(t, "development", settings.Environment)
	assert.Equal(t, 3000, settings.Server["port"])
	assert.Equal(t, "sqlite", settings.Database["driver"])
	assert.Equal(t, "5s", settings.Worker["poll_interval"])

	_, _, err = execute(t, "", "config", "init", "--output", output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = execute(t, "", "config", "init", "--output", output, "--force")
	assert.NoError(t, err)
}

func TestConfigInitStdout(t *testing.T) {
	stdout, _, err := execute(t, "", "config", "init", "--output", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, "rate_limiting:")
	assert.Contains(t, stdout, "api_base_url: http://localhost:3000")
}
