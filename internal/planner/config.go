package planner

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Largest goal and buffer that convert to a time.Duration without overflow.
const (
	maxHours   = float64(math.MaxInt64) / float64(time.Hour)
	maxMinutes = float64(math.MaxInt64) / float64(time.Minute)
)

// ErrInvalidConfig is returned when a Config cannot describe a plan.
var ErrInvalidConfig = errors.New("invalid planning config")

const (
	DefaultWorkdayStartHour  = 5
	DefaultWorkdayEndHour    = 14
	DefaultSleepGoalHours    = 8.0
	DefaultWakeBufferMinutes = 90.0
	DefaultWakeHour          = 8
	DefaultWakeMinute        = 0
)

// Config holds the per-call parameters of a recommendation.
//
// SleepGoalHours is restricted to 4..12 by the settings screen; the
// planner itself accepts any positive value.
type Config struct {
	// Inclusive local-hour bounds an event start must fall into.
	WorkdayStartHour int
	WorkdayEndHour   int

	SleepGoalHours    float64
	WakeBufferMinutes float64

	// Wake time used on the day after now when no event qualifies.
	DefaultWakeHour   int
	DefaultWakeMinute int

	// Location is the civil calendar for hour extraction and the default
	// wake time. Nil means time.Local.
	Location *time.Location
}

// DefaultConfig returns the stock planning parameters.
func DefaultConfig() Config {
	return Config{
		WorkdayStartHour:  DefaultWorkdayStartHour,
		WorkdayEndHour:    DefaultWorkdayEndHour,
		SleepGoalHours:    DefaultSleepGoalHours,
		WakeBufferMinutes: DefaultWakeBufferMinutes,
		DefaultWakeHour:   DefaultWakeHour,
		DefaultWakeMinute: DefaultWakeMinute,
	}
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Validate checks that every field is usable.
func (c Config) Validate() error {
	if c.WorkdayStartHour < 0 || c.WorkdayStartHour > 23 {
		return fmt.Errorf("%w: workday start hour %d out of range", ErrInvalidConfig, c.WorkdayStartHour)
	}
	if c.WorkdayEndHour < 0 || c.WorkdayEndHour > 23 {
		return fmt.Errorf("%w: workday end hour %d out of range", ErrInvalidConfig, c.WorkdayEndHour)
	}
	if c.WorkdayStartHour > c.WorkdayEndHour {
		return fmt.Errorf("%w: workday hours %d..%d reversed", ErrInvalidConfig, c.WorkdayStartHour, c.WorkdayEndHour)
	}
	if !(c.SleepGoalHours > 0) {
		return fmt.Errorf("%w: sleep goal must be positive, got %v", ErrInvalidConfig, c.SleepGoalHours)
	}
	if c.SleepGoalHours >= maxHours {
		return fmt.Errorf("%w: sleep goal %v hours does not fit a duration", ErrInvalidConfig, c.SleepGoalHours)
	}
	if !(c.WakeBufferMinutes >= 0) {
		return fmt.Errorf("%w: wake buffer must not be negative, got %v", ErrInvalidConfig, c.WakeBufferMinutes)
	}
	if c.WakeBufferMinutes >= maxMinutes {
		return fmt.Errorf("%w: wake buffer %v minutes does not fit a duration", ErrInvalidConfig, c.WakeBufferMinutes)
	}
	if c.DefaultWakeHour < 0 || c.DefaultWakeHour > 23 || c.DefaultWakeMinute < 0 || c.DefaultWakeMinute > 59 {
		return fmt.Errorf("%w: default wake %02d:%02d out of range", ErrInvalidConfig, c.DefaultWakeHour, c.DefaultWakeMinute)
	}
	return nil
}

// inWorkday reports whether hour lies in the inclusive workday range.
func (c Config) inWorkday(hour int) bool {
	return hour >= c.WorkdayStartHour && hour <= c.WorkdayEndHour
}
