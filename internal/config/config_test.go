package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yelp-explorer/internal/engine"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "explorer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, engine.DefaultHandle, cfg.Dataset.Handle)
	assert.Equal(t, engine.DefaultFile, cfg.Dataset.File)
	assert.NotEmpty(t, cfg.Dataset.CacheDir)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverlaysFile(t *testing.T) {
	t.Setenv("KAGGLE_USERNAME", "")
	t.Setenv("KAGGLE_KEY", "")
	t.Setenv("KAGGLEHUB_CACHE", "")

	path := writeConfig(t, `
listen_addr: ":9000"
log_level: debug
dataset:
  dir: /srv/yelp
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/srv/yelp", cfg.Dataset.Dir)
	assert.Equal(t, engine.DefaultFile, cfg.Dataset.File, "unset keys keep their defaults")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "listen: \":9000\"\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"KAGGLE_USERNAME": "alice",
		"KAGGLE_KEY":      "secret",
		"KAGGLEHUB_CACHE": "/var/cache/kaggle",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, "alice", cfg.Dataset.Username)
	assert.Equal(t, "secret", cfg.Dataset.Key)
	assert.Equal(t, "/var/cache/kaggle", cfg.Dataset.CacheDir)
}

func TestApplyEnvKeepsCacheDirWhenBlank(t *testing.T) {
	cfg := Default()
	want := cfg.Dataset.CacheDir
	cfg.ApplyEnv(func(k string) (string, bool) { return "", k == "KAGGLEHUB_CACHE" })
	assert.Equal(t, want, cfg.Dataset.CacheDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty listen address", mutate: func(c *Config) { c.ListenAddr = "" }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "empty file", mutate: func(c *Config) { c.Dataset.File = "" }, wantErr: true},
		{name: "bad handle", mutate: func(c *Config) { c.Dataset.Handle = "yelp" }, wantErr: true},
		{name: "no cache dir", mutate: func(c *Config) { c.Dataset.CacheDir = "" }, wantErr: true},
		{name: "local dir ignores handle", mutate: func(c *Config) {
			c.Dataset.Dir = "/srv/yelp"
			c.Dataset.Handle = "yelp"
			c.Dataset.CacheDir = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
