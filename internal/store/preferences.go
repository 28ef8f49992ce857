package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/sleepreset/internal/planner"
)

// Setting keys.
const (
	KeySleepGoal          = "sleep_goal"
	KeyWakeBuffer         = "wake_buffer"
	KeyWorkdayStart       = "workday_start"
	KeyWorkdayEnd         = "workday_end"
	KeyDefaultWake        = "default_wake"
	KeyTheme              = "theme"
	KeyDarkMode           = "dark_mode"
	KeyNotifications      = "notifications"
	KeyBedtimeReminders   = "bedtime_reminders"
	KeyProfileDisplayName = "profile_display_name"
	KeyProfileUsername    = "profile_username"
	KeyProfileSync        = "profile_sync"
)

// Sleep goal range offered by the settings screen.
const (
	MinSleepGoal = 4.0
	MaxSleepGoal = 12.0
)

// Preferences is the typed view of the settings table.
type Preferences struct {
	SleepGoalHours    float64
	WakeBufferMinutes float64
	WorkdayStartHour  int
	WorkdayEndHour    int
	DefaultWakeHour   int
	DefaultWakeMinute int

	Theme            string
	DarkMode         bool
	Notifications    bool
	BedtimeReminders bool

	DisplayName string
	Username    string
	Sync        bool
}

// DefaultPreferences mirrors the seeded settings rows.
func DefaultPreferences() Preferences {
	return Preferences{
		SleepGoalHours:    planner.DefaultSleepGoalHours,
		WakeBufferMinutes: planner.DefaultWakeBufferMinutes,
		WorkdayStartHour:  planner.DefaultWorkdayStartHour,
		WorkdayEndHour:    planner.DefaultWorkdayEndHour,
		DefaultWakeHour:   planner.DefaultWakeHour,
		DefaultWakeMinute: planner.DefaultWakeMinute,
		Theme:             "indigo",
		Notifications:     true,
		BedtimeReminders:  true,
		Sync:              true,
	}
}

// PlanningConfig converts the preferences into planner parameters.
func (p Preferences) PlanningConfig(loc *time.Location) planner.Config {
	return planner.Config{
		WorkdayStartHour:  p.WorkdayStartHour,
		WorkdayEndHour:    p.WorkdayEndHour,
		SleepGoalHours:    p.SleepGoalHours,
		WakeBufferMinutes: p.WakeBufferMinutes,
		DefaultWakeHour:   p.DefaultWakeHour,
		DefaultWakeMinute: p.DefaultWakeMinute,
		Location:          loc,
	}
}

// LoadPreferences reads every known key, keeping defaults for rows that
// are missing or unparsable.
func (s *Store) LoadPreferences() (Preferences, error) {
	p := DefaultPreferences()

	all, err := s.GetAllSettings()
	if err != nil {
		return p, err
	}
	for _, kv := range all {
		switch kv.Key {
		case KeySleepGoal:
			p.SleepGoalHours = parseFloat(kv.Value, p.SleepGoalHours)
		case KeyWakeBuffer:
			p.WakeBufferMinutes = parseFloat(kv.Value, p.WakeBufferMinutes)
		case KeyWorkdayStart:
			p.WorkdayStartHour = parseInt(kv.Value, p.WorkdayStartHour)
		case KeyWorkdayEnd:
			p.WorkdayEndHour = parseInt(kv.Value, p.WorkdayEndHour)
		case KeyDefaultWake:
			if h, m, err := ParseClock(kv.Value); err == nil {
				p.DefaultWakeHour, p.DefaultWakeMinute = h, m
			}
		case KeyTheme:
			if kv.Value != "" {
				p.Theme = kv.Value
			}
		case KeyDarkMode:
			p.DarkMode = parseBool(kv.Value, p.DarkMode)
		case KeyNotifications:
			p.Notifications = parseBool(kv.Value, p.Notifications)
		case KeyBedtimeReminders:
			p.BedtimeReminders = parseBool(kv.Value, p.BedtimeReminders)
		case KeyProfileDisplayName:
			p.DisplayName = kv.Value
		case KeyProfileUsername:
			p.Username = kv.Value
		case KeyProfileSync:
			p.Sync = parseBool(kv.Value, p.Sync)
		}
	}
	return p, nil
}

// SavePreferences writes every field back to the settings table.
func (s *Store) SavePreferences(p Preferences) error {
	values := map[string]string{
		KeySleepGoal:          strconv.FormatFloat(p.SleepGoalHours, 'f', -1, 64),
		KeyWakeBuffer:         strconv.FormatFloat(p.WakeBufferMinutes, 'f', -1, 64),
		KeyWorkdayStart:       strconv.Itoa(p.WorkdayStartHour),
		KeyWorkdayEnd:         strconv.Itoa(p.WorkdayEndHour),
		KeyDefaultWake:        FormatClock(p.DefaultWakeHour, p.DefaultWakeMinute),
		KeyTheme:              p.Theme,
		KeyDarkMode:           strconv.FormatBool(p.DarkMode),
		KeyNotifications:      strconv.FormatBool(p.Notifications),
		KeyBedtimeReminders:   strconv.FormatBool(p.BedtimeReminders),
		KeyProfileDisplayName: p.DisplayName,
		KeyProfileUsername:    p.Username,
		KeyProfileSync:        strconv.FormatBool(p.Sync),
	}
	if err := s.SetSettings(values); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// ParseClock parses "HH:MM".
func ParseClock(v string) (int, int, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(v), ":")
	if !ok {
		return 0, 0, fmt.Errorf("clock %q: expected HH:MM", v)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("clock %q: bad hour", v)
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("clock %q: bad minute", v)
	}
	return h, m, nil
}

func FormatClock(h, m int) string {
	return fmt.Sprintf("%02d:%02d", h, m)
}

func parseFloat(v string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseInt(v string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}
