package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/sadopc/sleepreset/internal/config"
)

// Monday 2025-03-10 22:00 UTC.
var testNow = time.Date(2025, time.March, 10, 22, 0, 0, 0, time.UTC)

const feed = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\nUID:standup\r\nSUMMARY:Standup\r\n" +
	"DTSTART:20250311T070000Z\r\nDTEND:20250311T073000Z\r\nRRULE:FREQ=DAILY;COUNT=2\r\n" +
	"END:VEVENT\r\nEND:VCALENDAR\r\n"

// setup writes a config into a temp dir and pins the clock.
func setup(t *testing.T, edit func(*config.Config)) (string, string) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.DBPath = filepath.Join(dir, "sleepreset.db")
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.Log.Path = filepath.Join(dir, "sleepreset.log")
	cfg.Log.Level = "error"
	cfg.Timezone = "UTC"
	if edit != nil {
		edit(cfg)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := config.Save(afero.NewOsFs(), path, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	prev := clock
	clock = func() time.Time { return testNow }
	t.Cleanup(func() { clock = prev })
	return path, dir
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(BuildArgs{Version: "test"}, &out)
	err := app.Run(append([]string{"sleepreset", "--config", cfgPath}, args...))
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestPlanDefaultWake(t *testing.T) {
	cfg, _ := setup(t, nil)
	out := mustRun(t, cfg, "plan")

	if !strings.Contains(out, "Wake     Tue Mar 11 08:00") {
		t.Fatalf("expected default wake, got:\n%s", out)
	}
	if !strings.Contains(out, "Bedtime  Tue Mar 11 00:00") {
		t.Fatalf("expected midnight bedtime, got:\n%s", out)
	}
	if !strings.Contains(out, "default wake") {
		t.Fatal("output should say the default wake was used")
	}
}

func TestAddThenPlan(t *testing.T) {
	cfg, _ := setup(t, nil)

	out := mustRun(t, cfg, "add", "--title", "Flight", "--start", "2025-03-11 06:00")
	if !strings.Contains(out, `Added "Flight"`) {
		t.Fatalf("unexpected add output: %s", out)
	}

	out = mustRun(t, cfg, "plan")
	if !strings.Contains(out, "Bedtime  Mon Mar 10 20:30") {
		t.Fatalf("unexpected plan:\n%s", out)
	}
	if !strings.Contains(out, "Flight at 06:00 (wake 1h30m before)") {
		t.Fatalf("next event missing:\n%s", out)
	}

	out = mustRun(t, cfg, "plan", "--goal", "7", "--buffer", "60")
	if !strings.Contains(out, "Bedtime  Mon Mar 10 22:00") || !strings.Contains(out, "Sleep    7h") {
		t.Fatalf("overrides not applied:\n%s", out)
	}
}

func TestPlanRejectsInvalidGoal(t *testing.T) {
	cfg, _ := setup(t, nil)
	if _, err := run(t, cfg, "plan", "--goal", "0"); err == nil {
		t.Fatal("expected error for zero sleep goal")
	}
}

func TestPlanOutlook(t *testing.T) {
	cfg, _ := setup(t, nil)
	out := mustRun(t, cfg, "plan", "--nights", "3")
	for _, day := range []string{"Mon Mar 10", "Tue Mar 11", "Wed Mar 12"} {
		if !strings.Contains(out, day) {
			t.Fatalf("outlook missing %s:\n%s", day, out)
		}
	}
}

func TestAddRequiresStart(t *testing.T) {
	cfg, _ := setup(t, nil)
	if _, err := run(t, cfg, "add", "--title", "x"); err == nil {
		t.Fatal("expected error without --start")
	}
	if _, err := run(t, cfg, "add", "--title", "x", "--start", "tomorrow"); err == nil {
		t.Fatal("expected error for unparsable start")
	}
}

func TestEventsWindow(t *testing.T) {
	cfg, _ := setup(t, nil)
	mustRun(t, cfg, "add", "--title", "Soon", "--start", "2025-03-11 09:00")
	mustRun(t, cfg, "add", "--title", "Later", "--start", "2025-03-20 09:00")

	out := mustRun(t, cfg, "events")
	if !strings.Contains(out, "Soon") || !strings.Contains(out, "Later") {
		t.Fatalf("expected both events:\n%s", out)
	}

	out = mustRun(t, cfg, "events", "--days", "2")
	if !strings.Contains(out, "Soon") || strings.Contains(out, "Later") {
		t.Fatalf("--days should narrow the window:\n%s", out)
	}
}

func TestEventsEmpty(t *testing.T) {
	cfg, _ := setup(t, nil)
	if out := mustRun(t, cfg, "events"); !strings.Contains(out, "No upcoming events") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestImportFile(t *testing.T) {
	cfg, dir := setup(t, nil)
	file := filepath.Join(dir, "work.ics")
	if err := os.WriteFile(file, []byte(feed), 0o600); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, cfg, "import", "--source", "work", file)
	if !strings.Contains(out, `Imported 2 event(s) into "work"`) {
		t.Fatalf("unexpected import output: %s", out)
	}

	out = mustRun(t, cfg, "plan")
	if !strings.Contains(out, "Standup at 07:00") {
		t.Fatalf("imported event should drive the plan:\n%s", out)
	}

	if _, err := run(t, cfg, "import", "--source", "local", file); err == nil {
		t.Fatal("importing into the local source should fail")
	}
}

func TestImportWithoutSubscriptions(t *testing.T) {
	cfg, _ := setup(t, nil)
	if _, err := run(t, cfg, "import"); err == nil {
		t.Fatal("expected error with nothing to import")
	}
}

func TestWatchOnce(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "team.ics")
	if err := os.WriteFile(file, []byte(feed), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, _ := setup(t, func(c *config.Config) {
		c.Subscriptions = []config.Subscription{{ID: "team", Name: "Team", URL: file}}
	})

	out := mustRun(t, cfg, "watch", "--once")
	if !strings.Contains(out, "bedtime Mon 21:30") {
		t.Fatalf("unexpected watch output: %s", out)
	}

	out = mustRun(t, cfg, "events")
	if !strings.Contains(out, "Standup") {
		t.Fatalf("subscription not imported:\n%s", out)
	}

	// Importing by subscription id uses its URL and id.
	out = mustRun(t, cfg, "import", "team")
	if !strings.Contains(out, `into "team"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestExport(t *testing.T) {
	cfg, dir := setup(t, nil)
	mustRun(t, cfg, "add", "--title", "Dentist", "--start", "2025-03-12 10:00", "--duration", "45m")

	path := filepath.Join(dir, "out.json")
	mustRun(t, cfg, "export", "--format", "json", "--out", path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Count  int `json:"count"`
		Events []struct {
			Title string `json:"title"`
		} `json:"events"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Count != 1 || doc.Events[0].Title != "Dentist" {
		t.Fatalf("unexpected export: %s", data)
	}

	if _, err := run(t, cfg, "export", "--format", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestUnknownCommand(t *testing.T) {
	cfg, _ := setup(t, nil)
	if _, err := run(t, cfg, "bogus"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestVersion(t *testing.T) {
	cfg, _ := setup(t, nil)
	if out := mustRun(t, cfg, "version"); !strings.HasPrefix(out, "sleepreset test") {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestSpan(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Minute, "45m"},
		{8 * time.Hour, "8h"},
		{90 * time.Minute, "1h30m"},
		{-30 * time.Minute, "-30m"},
	}
	for _, tt := range tests {
		if got := span(tt.d); got != tt.want {
			t.Errorf("span(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
