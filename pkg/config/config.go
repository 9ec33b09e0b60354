package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sqctl/pkg/errors"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL = "https://api.subquery.network"
	DefaultTimeout = 30 * time.Second
)

// Profile represents a named API configuration
type Profile struct {
	Name string    `yaml:"name"`
	API  APIConfig `yaml:"api"`
}

// Config holds the complete configuration including profiles
type Config struct {
	API           APIConfig     `yaml:"api"`
	History       HistoryConfig `yaml:"history,omitempty"`
	Profiles      []Profile     `yaml:"profiles,omitempty"`
	ActiveProfile string        `yaml:"active_profile,omitempty"`
}

type APIConfig struct {
	BaseURL     string `yaml:"base_url,omitempty"`
	AccessToken string `yaml:"access_token,omitempty"`
	Timeout     string `yaml:"timeout,omitempty"`
}

type HistoryConfig struct {
	Disabled bool   `yaml:"disabled,omitempty"`
	Path     string `yaml:"path,omitempty"`
}

// RequestTimeout parses the configured timeout, falling back to DefaultTimeout.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// Load reads the configuration, applies the environment and the selected
// profile, and validates the result.
func Load(profileName ...string) (*Config, error) {
	// A .env file in the working directory fills variables the process
	// environment leaves unset.
	_ = godotenv.Load()

	configPath, err := GetConfigPath()
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
	}
	return loadFromPath(configPath, profileName...)
}

// Read returns the file contents as stored, without environment overrides
// or validation. Used by commands that edit the file.
func Read() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
	}
	cfg := &Config{}
	if err := loadConfigFile(configPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "sqctl", "config.yaml"), nil
}

// Save writes the configuration to the config file, creating its directory.
// The file holds an access token, so it is written owner-only.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return saveToPath(configPath, cfg)
}

func saveToPath(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to write config file", err)
	}

	return nil
}

// GetProfile returns a profile by name
func (c *Config) GetProfile(name string) (*Profile, error) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("profile '%s' not found", name)
}

// SetProfile sets the active profile. An empty name clears it.
func (c *Config) SetProfile(name string) error {
	if name == "" {
		c.ActiveProfile = ""
		return nil
	}

	if _, err := c.GetProfile(name); err != nil {
		return err
	}

	c.ActiveProfile = name
	return nil
}

func (c *Config) AddProfile(profile Profile) error {
	if strings.TrimSpace(profile.Name) == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if _, err := c.GetProfile(profile.Name); err == nil {
		return fmt.Errorf("profile '%s' already exists", profile.Name)
	}

	c.Profiles = append(c.Profiles, profile)
	return nil
}

func (c *Config) RemoveProfile(name string) error {
	if c.ActiveProfile == name {
		return fmt.Errorf("cannot remove active profile '%s'", name)
	}

	for i, p := range c.Profiles {
		if p.Name == name {
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("profile '%s' not found", name)
}

func (c *Config) ListProfiles() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

func (c *Config) IsProfileActive(name string) bool {
	return c.ActiveProfile == name
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loadFromPath(configPath string, profileName ...string) (*Config, error) {
	cfg := &Config{}

	if err := loadConfigFile(configPath, cfg); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(cfg)

	targetProfile := cfg.ActiveProfile
	if len(profileName) > 0 && profileName[0] != "" {
		targetProfile = profileName[0]
	}

	if targetProfile != "" {
		profile, err := cfg.GetProfile(targetProfile)
		if err != nil {
			return nil, errors.ConfigError(err.Error())
		}
		applyProfileConfig(cfg, profile)
		cfg.ActiveProfile = targetProfile
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyProfileConfig(cfg *Config, profile *Profile) {
	if profile.API.BaseURL != "" {
		cfg.API.BaseURL = profile.API.BaseURL
	}
	if profile.API.AccessToken != "" {
		cfg.API.AccessToken = profile.API.AccessToken
	}
	if profile.API.Timeout != "" {
		cfg.API.Timeout = profile.API.Timeout
	}
}

// loadConfigFile reads and parses the config file. A missing file is not an
// error; the environment may carry everything.
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to parse config file", err)
	}

	return nil
}

func applyEnvironmentOverrides(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = getEnv("SQCTL_API_URL", DefaultBaseURL)
	}
	if cfg.API.AccessToken == "" {
		cfg.API.AccessToken = getEnv("SUBQL_ACCESS_TOKEN", "")
	}
	if cfg.API.Timeout == "" {
		cfg.API.Timeout = getEnv("SQCTL_TIMEOUT", "")
	}
	if cfg.History.Path == "" {
		cfg.History.Path = getEnv("SQCTL_HISTORY_PATH", "")
	}

	if profileEnv := os.Getenv("SQCTL_PROFILE"); profileEnv != "" {
		cfg.ActiveProfile = profileEnv
	}
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.API.AccessToken) == "" {
		return errors.ConfigError("access token not configured. Set it in config file, use --profile, or set SUBQL_ACCESS_TOKEN environment variable")
	}
	if !strings.HasPrefix(cfg.API.BaseURL, "http://") && !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return errors.ConfigError(fmt.Sprintf("invalid api base_url %q: must start with http:// or https://", cfg.API.BaseURL))
	}
	return nil
}
