// pkg/config/config.go - configuration settings for spruce.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/spruce/pkg/catalog"
	"github.com/windowsadmins/spruce/pkg/logging"
	"github.com/windowsadmins/spruce/pkg/plist"
	"github.com/windowsadmins/spruce/pkg/retry"
)

// EnvPrefix prefixes every environment override, e.g. SPRUCE_REPO_PATH.
const EnvPrefix = "SPRUCE"

// ErrNoRepo is returned by Validate when no repository is configured.
var ErrNoRepo = errors.New("no repo path configured; pass --repo, set SPRUCE_REPO_PATH or run munkiimport --configure")

// munkiimportPrefs is where munkiimport keeps its repo_path preference.
var munkiimportPrefs = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Preferences", "com.googlecode.munki.munkiimport.plist")
}()

// Configuration holds the configurable options for spruce.
type Configuration struct {
	RepoPath        string        `yaml:"repo_path" mapstructure:"repo_path"`
	ArchivePath     string        `yaml:"archive_path,omitempty" mapstructure:"archive_path"`
	LogLevel        string        `yaml:"log_level" mapstructure:"log_level"`
	LogFile         string        `yaml:"log_file,omitempty" mapstructure:"log_file"`
	CatalogSource   string        `yaml:"catalog_source" mapstructure:"catalog_source"` // "all" or "pkgsinfo", for reports
	RebuildCatalogs bool          `yaml:"rebuild_catalogs" mapstructure:"rebuild_catalogs"`
	MaxRetries      int           `yaml:"max_retries" mapstructure:"max_retries"`
	RetryInterval   time.Duration `yaml:"retry_interval" mapstructure:"retry_interval"`
}

// GetDefaultConfig provides default configuration values.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		LogLevel:        "INFO",
		CatalogSource:   string(catalog.SourceAll),
		RebuildCatalogs: true,
		MaxRetries:      3,
		RetryInterval:   500 * time.Millisecond,
	}
}

// flagKeys maps global flag names to configuration keys.
var flagKeys = map[string]string{
	"repo":      "repo_path",
	"log-level": "log_level",
	"log-file":  "log_file",
}

// DefaultConfigPath is $XDG_CONFIG_HOME/spruce/config.yaml or the platform
// equivalent.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "spruce", "config.yaml")
}

// Load resolves the configuration from defaults, the YAML file at path,
// SPRUCE_* environment variables and any changed flags in flags, in
// increasing order of precedence. An empty path means DefaultConfigPath,
// which may be absent; an explicit path must exist. When no repo path is
// set anywhere, munkiimport's repo_path is used.
func Load(path string, flags *pflag.FlagSet) (*Configuration, error) {
	v := viper.New()

	def := GetDefaultConfig()
	v.SetDefault("repo_path", def.RepoPath)
	v.SetDefault("archive_path", def.ArchivePath)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("catalog_source", def.CatalogSource)
	v.SetDefault("rebuild_catalogs", def.RebuildCatalogs)
	v.SetDefault("max_retries", def.MaxRetries)
	v.SetDefault("retry_interval", def.RetryInterval)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
			logging.Debug("Loaded configuration file", "path", path)
		} else if explicit {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.RepoPath == "" {
		cfg.RepoPath = MunkiimportRepoPath()
	}
	cfg.RepoPath = ExpandPath(cfg.RepoPath)
	cfg.ArchivePath = ExpandPath(cfg.ArchivePath)
	cfg.LogFile = ExpandPath(cfg.LogFile)
	return &cfg, nil
}

// MunkiimportRepoPath returns the repo_path munkiimport is configured with,
// or "" when there is none.
func MunkiimportRepoPath() string {
	if munkiimportPrefs == "" {
		return ""
	}
	fs := osfs.New(filepath.Dir(munkiimportPrefs))
	d, err := plist.ReadDict(fs, filepath.Base(munkiimportPrefs))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Debug("Could not read munkiimport preferences", "path", munkiimportPrefs, "error", err)
		}
		return ""
	}
	repoPath := plist.String(d, "repo_path")
	if repoPath != "" {
		logging.Debug("Using munkiimport repo_path", "path", repoPath)
	}
	return repoPath
}

// ExpandPath replaces a leading ~ with the home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks the configuration for values no command can work with.
func (c *Configuration) Validate() error {
	if c.RepoPath == "" {
		return ErrNoRepo
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := catalog.ParseSource(c.CatalogSource); err != nil {
		return err
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.ArchivePath != "" && filepath.Clean(c.ArchivePath) == filepath.Clean(c.RepoPath) {
		return fmt.Errorf("archive path %s is the repo itself", c.ArchivePath)
	}
	return nil
}

// RetryConfig is the backoff used for file operations.
func (c *Configuration) RetryConfig() retry.Config {
	return retry.Config{
		MaxRetries:      c.MaxRetries,
		InitialInterval: c.RetryInterval,
		Multiplier:      2.0,
	}
}

// SaveConfig writes the configuration as YAML to path.
func SaveConfig(config *Configuration, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("serializing configuration: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating configuration directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing configuration file: %w", err)
	}
	return nil
}
