package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/folio/config.yml.
type GlobalConfig struct {
	SitePath  string `yaml:"site_path,omitempty"`  // default site when none is found from the working directory
	UserAgent string `yaml:"user_agent,omitempty"` // User-Agent for remote sources
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "folio"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// SiteEnv overrides the directory the site search starts from.
	SiteEnv = "FOLIO_SITE"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/folio/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}
	cfg.SitePath = ExpandPath(cfg.SitePath)

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetSitePath returns the configured site path from global config.
func GetSitePath() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.SitePath
}

// GetUserAgent returns the configured User-Agent, empty if unset.
func GetUserAgent() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.UserAgent
}

// StartDirectory returns the directory the site search starts from:
// $FOLIO_SITE, then cwd if it is inside a site, then the global site_path.
func StartDirectory(cwd string) string {
	if dir := os.Getenv(SiteEnv); dir != "" {
		return ExpandPath(dir)
	}
	if cwd != "" {
		if _, err := FindSite(cwd); err == nil {
			return cwd
		}
	}
	if dir := GetSitePath(); dir != "" {
		return dir
	}
	return cwd
}

// HelpfulConfigMessage returns a helpful message when no site is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No folio site found.

Run 'folio init' in your site directory, or create %s
to set a default site:
  mkdir -p %s
  echo 'site_path: /path/to/your/site' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
