package planner

import "time"

// EveningHour is the local hour used as "now" for each night of an outlook.
const EveningHour = 20

// Night is one evening of an outlook.
type Night struct {
	// Evening is the reference instant the recommendation was computed at.
	Evening time.Time
	Recommendation
}

// Outlook computes a recommendation for each of the given number of
// consecutive evenings, starting with the evening of from's day.
func Outlook(events []Event, from time.Time, nights int, cfg Config) ([]Night, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if nights <= 0 {
		return nil, nil
	}

	local := from.In(cfg.location())
	out := make([]Night, 0, nights)
	for i := 0; i < nights; i++ {
		evening := time.Date(local.Year(), local.Month(), local.Day()+i, EveningHour, 0, 0, 0, local.Location())
		rec, err := Compute(events, evening, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, Night{Evening: evening, Recommendation: rec})
	}
	return out, nil
}
