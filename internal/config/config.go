// Package config handles the XDG configuration directory, file paths and
// the optional config.yaml settings.
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
	AppName = "taskcard"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored credential filename.
	TokenFile = "token.json"

	// SettingsFile is the optional settings filename.
	SettingsFile = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. TASKCARD_API_URL.
	EnvPrefix = "TASKCARD"
)

// Backend names.
const (
	BackendRESTAPI     = "restapi"
	BackendGoogleTasks = "googletasks"
)

const (
	defaultAPIURL  = "http://localhost:1009"
	defaultTimeout = 5 * time.Second
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path. The local task store lives here too.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Backend selects the remote implementation.
	Backend string

	// APIURL is the base URL of the list/task REST API.
	APIURL string

	// Timeout bounds every remote call.
	Timeout time.Duration

	// LogoutPolicy names what happens to the task collection on logout.
	LogoutPolicy string
}

// New creates a new Config with the default or specified config directory
// and default settings. Call Load to apply config.yaml and the environment.
// If configDir is empty, uses XDG_CONFIG_HOME/taskcard or $HOME/.config/taskcard.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:          dir,
		Backend:      BackendRESTAPI,
		APIURL:       defaultAPIURL,
		Timeout:      defaultTimeout,
		LogoutPolicy: "keep",
	}, nil
}

// Load reads config.yaml from the config directory, if present, then applies
// TASKCARD_* environment overrides. Unset keys keep their current values.
func (c *Config) Load() error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("backend", c.Backend)
	v.SetDefault("api_url", c.APIURL)
	v.SetDefault("timeout", c.Timeout)
	v.SetDefault("logout_policy", c.LogoutPolicy)

	path := c.SettingsPath()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("backend")))
	switch backend {
	case BackendRESTAPI, BackendGoogleTasks:
	default:
		return fmt.Errorf("invalid backend: %s (want %s or %s)", backend, BackendRESTAPI, BackendGoogleTasks)
	}

	timeout := v.GetDuration("timeout")
	if timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s", v.GetString("timeout"))
	}

	c.Backend = backend
	c.APIURL = v.GetString("api_url")
	c.Timeout = timeout
	c.LogoutPolicy = v.GetString("logout_policy")
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
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// OAuthClientPath returns the path to the Google OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored credential.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory with mode 0700 if it doesn't exist.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}
