// Package timex contains small time helpers shared across the project:
// a JSON-friendly Duration and the elapsed/countdown arithmetic used by
// the relationship counters.
package timex

import (
	"encoding/json"
	"errors"
	"time"
)

// Duration wraps time.Duration so JSON config files can use either a
// string form ("90s", "15m") or integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return errors.New("invalid duration")
	}
	return nil
}

// Breakdown is an elapsed or remaining interval split the way the
// counters display it.
type Breakdown struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// Since returns how long ago start was, relative to now, split into
// days/hours/minutes/seconds. A start in the future yields zeros.
func Since(start, now time.Time) Breakdown {
	return split(now.Sub(start))
}

// Until returns how far away target is, relative to now. A target in
// the past yields zeros.
func Until(target, now time.Time) Breakdown {
	return split(target.Sub(now))
}

func split(d time.Duration) Breakdown {
	if d < 0 {
		return Breakdown{}
	}
	const day = 24 * time.Hour
	return Breakdown{
		Days:    int(d / day),
		Hours:   int((d % day) / time.Hour),
		Minutes: int((d % time.Hour) / time.Minute),
		Seconds: int((d % time.Minute) / time.Second),
	}
}
