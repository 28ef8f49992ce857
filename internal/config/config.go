// Package config holds the YAML file that describes where sleepreset
// keeps its data and which calendar feeds it follows. Sleep preferences
// are not here; they live in the store's settings table.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/sleepreset/internal/store"
)

const (
	appDir = "sleepreset"

	DefaultRefresh    = "*/15 * * * *"
	DefaultWindowDays = 30
	DefaultLogLevel   = "info"
	DefaultLogSizeMB  = 5
	DefaultLogBackups = 3
)

var ErrInvalid = errors.New("invalid config")

// Subscription is one ICS feed imported under its own source ID.
type Subscription struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// URL is an http(s)/webcal URL or a local file path.
	URL string `yaml:"url"`
}

type LogConfig struct {
	// Path of the rotating log file. Empty logs to stderr.
	Path       string `yaml:"path"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type Config struct {
	DBPath   string `yaml:"db_path"`
	CacheDir string `yaml:"cache_dir"`

	// Timezone is an IANA name. Empty or "Local" uses the system zone.
	Timezone string `yaml:"timezone"`

	// WindowDays is how far ahead events are fetched for planning.
	WindowDays int `yaml:"window_days"`

	// Refresh is the cron schedule for re-importing subscriptions.
	Refresh string `yaml:"refresh"`

	Log           LogConfig      `yaml:"log"`
	Subscriptions []Subscription `yaml:"subscriptions"`
}

// Dir is the default directory for the config file and data.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, appDir)
}

// DefaultPath is where the config file lives when --config is not given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

func DefaultConfig() *Config {
	c := &Config{Subscriptions: []Subscription{}}
	c.Normalize()
	return c
}

// Normalize fills missing values so older or partial files still work.
func (c *Config) Normalize() {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(Dir(), "sleepreset.db")
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(Dir(), "ics-cache")
	}
	if c.WindowDays <= 0 {
		c.WindowDays = DefaultWindowDays
	}
	if c.Refresh == "" {
		c.Refresh = DefaultRefresh
	}
	if c.Log.Path == "" {
		c.Log.Path = filepath.Join(Dir(), "sleepreset.log")
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = DefaultLogSizeMB
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = DefaultLogBackups
	}
	if c.Subscriptions == nil {
		c.Subscriptions = []Subscription{}
	}
}

// Validate checks the fields that Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalid, c.Timezone, err)
	}
	if _, err := cron.ParseStandard(c.Refresh); err != nil {
		return fmt.Errorf("%w: refresh %q: %v", ErrInvalid, c.Refresh, err)
	}
	seen := make(map[string]bool)
	for i, s := range c.Subscriptions {
		id := strings.TrimSpace(s.ID)
		switch {
		case id == "":
			return fmt.Errorf("%w: subscription %d has no id", ErrInvalid, i)
		case id == store.SourceLocal:
			return fmt.Errorf("%w: subscription id %q is reserved", ErrInvalid, id)
		case seen[id]:
			return fmt.Errorf("%w: duplicate subscription id %q", ErrInvalid, id)
		case strings.TrimSpace(s.URL) == "":
			return fmt.Errorf("%w: subscription %q has no url", ErrInvalid, id)
		}
		seen[id] = true
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Window is WindowDays as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowDays) * 24 * time.Hour
}

// Subscription returns the subscription with the given id.
func (c *Config) Subscription(id string) (Subscription, bool) {
	for _, s := range c.Subscriptions {
		if s.ID == id {
			return s, true
		}
	}
	return Subscription{}, false
}

// Load reads the YAML file at path. On first run the file does not exist;
// a default config is written with 0600 perms and returned.
func Load(fsys afero.Fs, path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(fsys, path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg atomically through a temp file in the same directory.
func Save(fsys afero.Fs, path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := afero.TempFile(fsys, dir, ".sleepreset-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer fsys.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := fsys.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return fsys.Rename(tmpName, path)
}

func (c *Config) Save(fsys afero.Fs, path string) error {
	return Save(fsys, path, c)
}
