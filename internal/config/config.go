// Package config handles the XDG configuration directory, file paths and settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "taskapp"

	// ConfigFile is the optional settings filename inside the config directory.
	ConfigFile = "config.yaml"

	// SessionFile is the stored CLI identity filename.
	SessionFile = "session.yaml"

	// EnvPrefix prefixes environment overrides, e.g. TASKAPP_BASE_URL.
	EnvPrefix = "TASKAPP"
)

// Defaults.
const (
	DefaultBaseURL    = "https://jsonplaceholder.typicode.com"
	DefaultTimeout    = 5 * time.Second
	DefaultListenAddr = ":3000"
	DefaultPageSize   = 10
	DefaultAdminEmail = "admin@taskapp.com"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `mapstructure:"-"`

	// BaseURL is the location of the remote task collection.
	BaseURL string `mapstructure:"base_url"`

	// Timeout bounds every remote call.
	Timeout time.Duration `mapstructure:"timeout"`

	// APIToken, when set, is sent as a bearer token to the remote store.
	APIToken string `mapstructure:"api_token"`

	// ListenAddr is the web server address.
	ListenAddr string `mapstructure:"listen_addr"`

	// SessionKey signs web session cookies. A random key is used when empty.
	SessionKey string `mapstructure:"session_key"`

	// PageSize is the number of rows per page in paginated views.
	PageSize int `mapstructure:"page_size"`

	// AdminEmail is the reserved email that signs in as admin.
	AdminEmail string `mapstructure:"admin_email"`

	// Debug enables debug logging.
	Debug bool `mapstructure:"debug"`

	// Quiet suppresses informational output.
	Quiet bool `mapstructure:"-"`
}

// New creates a new Config with defaults and the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskapp or $HOME/.config/taskapp.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:        dir,
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		ListenAddr: DefaultListenAddr,
		PageSize:   DefaultPageSize,
		AdminEmail: DefaultAdminEmail,
	}, nil
}

// Load creates a Config and overlays config.yaml from the config directory
// (when present) and TASKAPP_* environment variables.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", cfg.BaseURL)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("api_token", "")
	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("session_key", "")
	v.SetDefault("page_size", cfg.PageSize)
	v.SetDefault("admin_email", cfg.AdminEmail)
	v.SetDefault("debug", false)

	if _, err := os.Stat(cfg.FilePath()); err == nil {
		v.SetConfigFile(cfg.FilePath())
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would make the application unusable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base_url must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be at least 1, got %d", c.PageSize)
	}
	if strings.TrimSpace(c.AdminEmail) == "" {
		return errors.New("admin_email must not be empty")
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// FilePath returns the path to the settings file.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SessionPath returns the path to the stored CLI identity file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasSession checks if the session file exists.
func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

// RemoveSession deletes the session file.
func (c *Config) RemoveSession() error {
	return os.Remove(c.SessionPath())
}
