// Package config provides configuration management for resuma. It loads
// and saves a YAML file holding general settings, the API server, Redis
// event publishing, hook scripts, inference defaults and the asset catalog.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/nikolchaa/resuma/pkg/catalog"
	"github.com/nikolchaa/resuma/pkg/errors"
	"github.com/nikolchaa/resuma/pkg/fsutil"
	"github.com/nikolchaa/resuma/pkg/inference"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Settings  Settings           `yaml:"settings"`
	Server    ServerConfig       `yaml:"server"`
	Redis     RedisConfig        `yaml:"redis"`
	Hooks     HooksConfig        `yaml:"hooks"`
	Presence  PresenceConfig     `yaml:"presence"`
	Inference inference.Settings `yaml:"inference"`

	// Catalog lists the assets that can be installed by name.
	Catalog []catalog.Entry `yaml:"catalog,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	// DataDir overrides the platform data directory assets are stored under.
	DataDir string `yaml:"data_dir,omitempty"`

	// CatalogFile is an extra catalog, typically written by "catalog sync".
	// Empty means catalog.yaml next to the config file, when present.
	CatalogFile string `yaml:"catalog_file,omitempty"`

	// Network settings. Zero disables the corresponding timeout.
	HTTPTimeout       time.Duration `yaml:"http_timeout"`
	InactivityTimeout time.Duration `yaml:"inactivity_timeout"`
	MaxConcurrent     int           `yaml:"max_concurrent"`
	UserAgent         string        `yaml:"user_agent"`

	// Output settings
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // auto, text, json, color
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// RedisConfig enables publishing events to Redis when Addr is set.
type RedisConfig struct {
	Addr          string `yaml:"addr,omitempty"`
	Password      string `yaml:"password,omitempty"`
	DB            int    `yaml:"db,omitempty"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

// HooksConfig points at Tengo scripts run around each acquisition.
type HooksConfig struct {
	Dir         string `yaml:"dir,omitempty"`
	PreAcquire  string `yaml:"pre_acquire,omitempty"`
	PostAcquire string `yaml:"post_acquire,omitempty"`
}

// PresenceConfig configures the Discord rich presence client.
type PresenceConfig struct {
	Enabled  bool   `yaml:"enabled"`
	ClientID string `yaml:"client_id,omitempty"`
}

// Default configuration values.
const (
	// DefaultHTTPTimeout of zero keeps large downloads from being cut off.
	DefaultHTTPTimeout = 0

	// DefaultInactivityTimeout of zero disables the stall watchdog.
	DefaultInactivityTimeout = 0

	// DefaultMaxConcurrent is the default maximum number of concurrent downloads.
	DefaultMaxConcurrent = 3

	// DefaultServerAddr is where the API server listens.
	DefaultServerAddr = "127.0.0.1:7878"

	// DefaultUserAgent is sent with every download request.
	DefaultUserAgent = "resuma/1.0"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"auto": true, "text": true, "json": true, "color": true}
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			HTTPTimeout:       DefaultHTTPTimeout,
			InactivityTimeout: DefaultInactivityTimeout,
			MaxConcurrent:     DefaultMaxConcurrent,
			UserAgent:         DefaultUserAgent,
			LogLevel:          "info",
			LogFormat:         "auto",
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
		Redis:  RedisConfig{ChannelPrefix: "resuma:assets:"},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig saves configuration to a file, replacing it atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeSecure); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	// The file may hold a Redis password, so keep it private.
	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeSecure)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateSettings(c.Settings); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr cannot be empty", errors.ErrConfigValidation)
	}
	if _, err := catalog.New(c.Catalog); err != nil {
		return fmt.Errorf("%w: catalog: %w", errors.ErrConfigValidation, err)
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return fmt.Errorf("%w: http_timeout cannot be negative", errors.ErrConfigValidation)
	}
	if s.InactivityTimeout < 0 {
		return fmt.Errorf("%w: inactivity_timeout cannot be negative", errors.ErrConfigValidation)
	}
	if s.MaxConcurrent < 1 {
		return fmt.Errorf("%w: max_concurrent must be at least 1", errors.ErrConfigValidation)
	}
	if !validLogLevels[strings.ToLower(s.LogLevel)] {
		return fmt.Errorf("%w: %q, must be one of: debug, info, warn, error", errors.ErrInvalidLogLevel, s.LogLevel)
	}
	if !validLogFormats[s.LogFormat] {
		return fmt.Errorf("%w: invalid log_format %q, must be one of: auto, text, json, color", errors.ErrConfigValidation, s.LogFormat)
	}
	return nil
}

// applyDefaults fills in values an explicit empty entry in the file cleared.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.MaxConcurrent == 0 {
		c.Settings.MaxConcurrent = defaults.Settings.MaxConcurrent
	}
	if c.Settings.UserAgent == "" {
		c.Settings.UserAgent = defaults.Settings.UserAgent
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Redis.ChannelPrefix == "" {
		c.Redis.ChannelPrefix = defaults.Redis.ChannelPrefix
	}
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// DataRoot returns the configured data directory or the platform default.
func (c *Config) DataRoot() (string, error) {
	if c.Settings.DataDir != "" {
		return c.Settings.DataDir, nil
	}
	return asset.DataRoot()
}

// CatalogPath returns the catalog file location.
func (c *Config) CatalogPath() (string, error) {
	if c.Settings.CatalogFile != "" {
		return c.Settings.CatalogFile, nil
	}
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "catalog.yaml"), nil
}

// LoadCatalog builds the asset catalog from the configured entries followed
// by the entries of the catalog file, if one exists.
func (c *Config) LoadCatalog() (*catalog.Catalog, error) {
	entries := append([]catalog.Entry(nil), c.Catalog...)

	path, err := c.CatalogPath()
	if err != nil {
		return nil, err
	}
	if fsutil.Exists(path) {
		file, err := catalog.LoadFile(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, file.Entries()...)
	}
	return catalog.New(entries)
}
