package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so that no .env file is
// picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

// unsetenv clears key for the duration of the test, including values set
// by a .env file.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	dir := inTempDir(t)

	for _, path := range []string{"", filepath.Join(dir, "missing.yaml")} {
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	}
}

func TestLoadFile(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "xchg.yaml")
	writeFile(t, path, `
listen: 127.0.0.1:9000
metrics: ":9100"
log:
  format: json
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, Config{
		Listen:  "127.0.0.1:9000",
		Store:   DefaultStore,
		Metrics: ":9100",
		Log:     Log{Level: DefaultLogLevel, Format: "json"},
	}, cfg)
}

func TestLoadEnvironment(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "xchg.yaml")
	writeFile(t, path, "listen: 127.0.0.1:9000\nstore: file.txt\n")
	writeFile(t, filepath.Join(dir, ".env"), "XCHG_STORE=dotenv.txt\nXCHG_LOG_LEVEL=debug\n")
	unsetenv(t, "XCHG_STORE")
	unsetenv(t, "XCHG_LOG_LEVEL")
	t.Setenv("XCHG_LISTEN", ":7000")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Listen, "environment overrides the file")
	assert.Equal(t, "dotenv.txt", cfg.Store, ".env overrides the file")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "malformed yaml", content: "listen: [", wantErr: "could not parse config"},
		{name: "unknown log format", content: "log:\n  format: xml\n", wantErr: `unknown log format "xml"`},
		{name: "empty listen", content: "listen: \"\"\n", wantErr: "listen address is required"},
		{name: "empty store", content: "store: \"\"\n", wantErr: "store path is required"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := inTempDir(t)
			path := filepath.Join(dir, "xchg.yaml")
			writeFile(t, path, tc.content)

			_, err := Load(path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
