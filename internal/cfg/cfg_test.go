package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "DATASET_PATH", "MODELS_DIR", "HISTORY_DIR",
		"TEST_FRACTION", "SEED", "SERVER_PORT", "REQUEST_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_EnvDefaults(t *testing.T) {
	clearConfigEnv(t)

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "models", s.ModelsDir)
	assert.Equal(t, 0.2, s.TestFraction)
	assert.Equal(t, int64(42), s.Seed)
	assert.Equal(t, 8090, s.ServerPort)
	assert.Equal(t, 10*time.Second, s.RequestTimeout)
	assert.Empty(t, s.HistoryDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATASET_PATH", "data/fitness.csv")
	t.Setenv("MODELS_DIR", "/var/lib/fittrack/models")
	t.Setenv("TEST_FRACTION", "0.3")
	t.Setenv("SEED", "7")
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "data/fitness.csv", s.DatasetPath)
	assert.Equal(t, "/var/lib/fittrack/models", s.ModelsDir)
	assert.Equal(t, 0.3, s.TestFraction)
	assert.Equal(t, int64(7), s.Seed)
	assert.Equal(t, 9100, s.ServerPort)
	assert.Equal(t, 5*time.Second, s.RequestTimeout)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearConfigEnv(t)

	yaml := `
data:
  path: data/fitness.csv
training:
  modelsDir: out/models
  historyDir: out/history
  testFraction: 0.25
  seed: 99
server:
  port: 9200
  requestTimeout: 15s
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("CONFIG_FILE", path)

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "data/fitness.csv", s.DatasetPath)
	assert.Equal(t, "out/models", s.ModelsDir)
	assert.Equal(t, "out/history", s.HistoryDir)
	assert.Equal(t, 0.25, s.TestFraction)
	assert.Equal(t, int64(99), s.Seed)
	assert.Equal(t, 9200, s.ServerPort)
	assert.Equal(t, 15*time.Second, s.RequestTimeout)
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	clearConfigEnv(t)

	yaml := `
training:
  modelsDir: out/models
  testFraction: 0.25
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MODELS_DIR", "env/models")
	t.Setenv("TEST_FRACTION", "0.4")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env/models", s.ModelsDir)
	assert.Equal(t, 0.4, s.TestFraction)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"test fraction too large", "TEST_FRACTION", "0.9"},
		{"privileged port", "SERVER_PORT", "80"},
		{"timeout too long", "REQUEST_TIMEOUT", "5m"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation")
		})
	}
}
