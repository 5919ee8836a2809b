package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keysync "github.com/reoring/keysync"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "text", cfg.Format)
	d, err := cfg.Debounce()
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, d)
	assert.Equal(t, ".", cfg.CandidateDir())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("KEYSYNC_LOG_LEVEL", "")
	t.Setenv("KEYSYNC_LANG", "")
	path := filepath.Join(t.TempDir(), DefaultFileName)

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(path, true)
	require.Error(t, err)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("KEYSYNC_LOG_LEVEL", "")
	t.Setenv("KEYSYNC_LANG", "")
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
template: i18n/en.json
extensions: [".json", ".yaml"]
exclude: ["drafts/**"]
recursive: true
workers: 4
duplicate_keys: error
max_depth: 32
format: json
lang: ja
watch_debounce: 1s
`), 0o644))

	cfg, err := Load(path, true)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Join(dir, "i18n", "en.json"), cfg.Template)
	assert.Equal(t, filepath.Join(dir, "i18n"), cfg.CandidateDir())
	assert.Equal(t, []string{".json", ".yaml"}, cfg.Extensions)
	assert.Equal(t, []string{"drafts/**"}, cfg.Exclude)
	assert.True(t, cfg.Recursive)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "ja", cfg.Lang)
	assert.Equal(t, "warn", cfg.LogLevel)

	opt := cfg.LoadOpt()
	assert.Equal(t, keysync.Error, opt.Strictness.OnDuplicateKey)
	assert.Equal(t, 32, opt.MaxDepth)

	d, err := cfg.Debounce()
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("KEYSYNC_LOG_LEVEL", "debug")
	t.Setenv("KEYSYNC_LANG", "ja")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ja", cfg.Lang)
}

func TestLoad_Rejects(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"unknown.yaml": "templte: en.json\n",
		"syntax.yaml":  "template: [\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := Load(path, true)
		assert.Error(t, err, name)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Setenv("KEYSYNC_LOG_LEVEL", "")
	t.Setenv("KEYSYNC_LANG", "")
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"workers":        func(c *Config) { c.Workers = 0 },
		"duplicate keys": func(c *Config) { c.DuplicateKeys = "loud" },
		"format":         func(c *Config) { c.Format = "xml" },
		"lang":           func(c *Config) { c.Lang = "fr" },
		"log level":      func(c *Config) { c.LogLevel = "trace" },
		"log format":     func(c *Config) { c.LogFormat = "logfmt" },
		"debounce":       func(c *Config) { c.WatchDebounce = "soon" },
		"negative depth": func(c *Config) { c.MaxDepth = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
