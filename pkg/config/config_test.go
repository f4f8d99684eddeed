package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nikolchaa/resuma/pkg/catalog"
	"github.com/nikolchaa/resuma/pkg/errors"
	"github.com/nikolchaa/resuma/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "auto", cfg.Settings.LogFormat)
	assert.Equal(t, time.Duration(0), cfg.Settings.HTTPTimeout)
	assert.Equal(t, time.Duration(0), cfg.Settings.InactivityTimeout)
	assert.Equal(t, 3, cfg.Settings.MaxConcurrent)
	assert.Equal(t, "127.0.0.1:7878", cfg.Server.Addr)
	assert.Equal(t, "resuma:assets:", cfg.Redis.ChannelPrefix)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `settings:
  log_level: debug
  max_concurrent: 1
  inactivity_timeout: 45s
redis:
  addr: localhost:6379
catalog:
  - name: tiny-7b
    category: model
    url: https://example.com/tiny-7b.zip
    version: "1.2.0"
  - name: cpu-x64
    category: runtime
    url: https://example.com/cpu-x64.zip
    backend: cpu`

	err := os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, 1, cfg.Settings.MaxConcurrent)
	assert.Equal(t, 45*time.Second, cfg.Settings.InactivityTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	// untouched sections keep their defaults
	assert.Equal(t, "resuma:assets:", cfg.Redis.ChannelPrefix)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)

	cfg.Settings.CatalogFile = filepath.Join(tempDir, "absent.yaml")
	cat, err := cfg.LoadCatalog()
	require.NoError(t, err)
	entry, err := cat.Find("tiny-7b")
	require.NoError(t, err)
	assert.Equal(t, "model", entry.Category)
	assert.Len(t, cat.Category("runtime"), 1)
}

func TestLoadCatalogMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `entries:
  - name: vulkan-x64
    category: runtime
    url: https://example.com/vulkan.zip
    backend: vulkan`
	require.NoError(t, os.WriteFile(path, []byte(content), fsutil.FileModeDefault))

	cfg := DefaultConfig()
	cfg.Settings.CatalogFile = path
	cfg.Catalog = []catalog.Entry{{Name: "tiny-7b", Category: "model", URL: "https://example.com/tiny.zip"}}

	cat, err := cfg.LoadCatalog()
	require.NoError(t, err)
	entries := cat.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "tiny-7b", entries[0].Name)
	assert.Equal(t, "vulkan-x64", entries[1].Name)

	got, err := cfg.CatalogPath()
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "malformed yaml", content: "settings: [", wantErr: errors.ErrConfigParse},
		{name: "bad log level", content: "settings:\n  log_level: loud", wantErr: errors.ErrInvalidLogLevel},
		{name: "negative timeout", content: "settings:\n  http_timeout: -1s", wantErr: errors.ErrConfigValidation},
		{name: "incomplete catalog entry", content: "catalog:\n  - name: x", wantErr: errors.ErrConfigValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := LoadConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "debug"
	cfg.Redis.Password = "secret"
	cfg.Presence.Enabled = true

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "config.yaml")

	err := cfg.SaveConfig(configPath)
	require.NoError(t, err)

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.NoFileExists(t, configPath+".tmp")

	loadedCfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loadedCfg)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Settings.MaxConcurrent = 0 },
			wantErr: true,
			errMsg:  "max_concurrent",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Settings.LogFormat = "xml" },
			wantErr: true,
			errMsg:  "log_format",
		},
		{
			name:    "empty server address",
			mutate:  func(c *Config) { c.Server.Addr = "" },
			wantErr: true,
			errMsg:  "server.addr",
		},
		{
			name:    "bad catalog version",
			mutate:  func(c *Config) { c.Catalog = []catalog.Entry{{Name: "a", Category: "model", URL: "u", Version: "not-a-version"}} },
			wantErr: true,
			errMsg:  "invalid asset version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSetGetValue(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		key   string
		value string
	}{
		{key: "log_level", value: "warn"},
		{key: "settings.max_concurrent", value: "7"},
		{key: "inactivity_timeout", value: "30s"},
		{key: "server.addr", value: "0.0.0.0:9000"},
		{key: "redis.db", value: "2"},
		{key: "presence.enabled", value: "true"},
		{key: "inference.gpu_layers", value: "20"},
		{key: "hooks.post_acquire", value: "/etc/resuma/post.tengo"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			require.NoError(t, cfg.SetValue(tt.key, tt.value))
			got, err := cfg.GetValue(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}

	assert.Equal(t, 7, cfg.Settings.MaxConcurrent)
	assert.Equal(t, 30*time.Second, cfg.Settings.InactivityTimeout)
	assert.True(t, cfg.Presence.Enabled)

	assert.ErrorIs(t, cfg.SetValue("nope", "x"), errors.ErrUnknownConfigKey)
	_, err := cfg.GetValue("catalog")
	assert.ErrorIs(t, err, errors.ErrUnknownConfigKey)

	assert.Error(t, cfg.SetValue("max_concurrent", "many"))
	assert.Error(t, cfg.SetValue("presence.enabled", "maybe"))
	assert.Error(t, cfg.SetValue("http_timeout", "soon"))
}

func TestToMap(t *testing.T) {
	cfg := DefaultConfig()
	m := cfg.ToMap()

	assert.Equal(t, "info", m["settings.log_level"])
	assert.Equal(t, "0s", m["settings.inactivity_timeout"])
	assert.Equal(t, DefaultServerAddr, m["server.addr"])
	assert.Equal(t, "false", m["presence.enabled"])
	assert.NotContains(t, m, "catalog")

	keys := cfg.Keys()
	assert.Len(t, keys, len(m))
	assert.IsIncreasing(t, keys)
}

func TestGetDefaultConfigPath(t *testing.T) {
	path, err := GetDefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", filepath.Base(path))
}

func TestDataRoot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.DataDir = "/srv/resuma"
	root, err := cfg.DataRoot()
	require.NoError(t, err)
	assert.Equal(t, "/srv/resuma", root)
}
