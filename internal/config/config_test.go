package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestLoadFirstRunWritesDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/home/me/.config/sleepreset/config.yaml"

	cfg, err := Load(fs, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Refresh != DefaultRefresh || cfg.WindowDays != DefaultWindowDays {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	info, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("perm = %v, want 0600", info.Mode().Perm())
	}
}

func TestLoadPartialFileIsNormalized(t *testing.T) {
	fs := afero.NewMemMapFs()
	body := `
timezone: Europe/Oslo
subscriptions:
  - id: work
    name: Work
    url: https://example.com/work.ics
`
	afero.WriteFile(fs, "c.yaml", []byte(body), 0o600)

	cfg, err := Load(fs, "c.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Refresh != DefaultRefresh {
		t.Fatalf("refresh = %q", cfg.Refresh)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.MaxSizeMB != DefaultLogSizeMB {
		t.Fatalf("log defaults not applied: %+v", cfg.Log)
	}
	if cfg.DBPath == "" || cfg.CacheDir == "" {
		t.Fatal("paths should be filled")
	}
	sub, ok := cfg.Subscription("work")
	if !ok || sub.URL != "https://example.com/work.ics" {
		t.Fatalf("subscription lookup failed: %+v", sub)
	}
	if _, ok := cfg.Subscription("nope"); ok {
		t.Fatal("unknown subscription should not be found")
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatal(err)
	}
	if loc.String() != "Europe/Oslo" {
		t.Fatalf("location = %s", loc)
	}
}

func TestLoadBadYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "c.yaml", []byte("window_days: [oops"), 0o600)
	if _, err := Load(fs, "c.yaml"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(afero.NewMemMapFs(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.WindowDays = 14
	cfg.Subscriptions = append(cfg.Subscriptions, Subscription{ID: "gym", Name: "Gym", URL: "/tmp/gym.ics"})

	if err := cfg.Save(fs, "/cfg/config.yaml"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(fs, "/cfg/config.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if got.WindowDays != 14 || got.Timezone != "UTC" || len(got.Subscriptions) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// No temp files left behind.
	entries, _ := afero.ReadDir(fs, "/cfg")
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left: %s", e.Name())
		}
	}
}

func TestSaveNil(t *testing.T) {
	if err := Save(afero.NewMemMapFs(), "c.yaml", nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, false},
		{"bad cron", func(c *Config) { c.Refresh = "every now and then" }, false},
		{"empty sub id", func(c *Config) {
			c.Subscriptions = []Subscription{{URL: "x.ics"}}
		}, false},
		{"reserved sub id", func(c *Config) {
			c.Subscriptions = []Subscription{{ID: "local", URL: "x.ics"}}
		}, false},
		{"duplicate sub id", func(c *Config) {
			c.Subscriptions = []Subscription{{ID: "a", URL: "x.ics"}, {ID: "a", URL: "y.ics"}}
		}, false},
		{"sub without url", func(c *Config) {
			c.Subscriptions = []Subscription{{ID: "a"}}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLocalTimezone(t *testing.T) {
	for _, tz := range []string{"", "Local", "local"} {
		cfg := &Config{Timezone: tz}
		loc, err := cfg.Location()
		if err != nil || loc != time.Local {
			t.Fatalf("timezone %q should resolve to time.Local, got %v %v", tz, loc, err)
		}
	}
}

func TestWindow(t *testing.T) {
	cfg := &Config{WindowDays: 2}
	if cfg.Window() != 48*time.Hour {
		t.Fatalf("window = %v", cfg.Window())
	}
}
