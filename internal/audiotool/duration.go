package audiotool

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DurationUnit selects the unit Duration reports in.
type DurationUnit int

// Duration units.
const (
	Millis DurationUnit = iota
	Seconds
	// Minutes reports the minutes within the current hour, so a file of
	// 1h05m reports 5.
	Minutes
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
)

// String returns the unit name.
func (u DurationUnit) String() string {
	switch u {
	case Millis:
		return "millis"
	case Seconds:
		return "seconds"
	case Minutes:
		return "minutes"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// ParseDurationUnit parses a unit name. Empty input selects Millis.
func ParseDurationUnit(s string) (DurationUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "millis", "ms", "milliseconds":
		return Millis, nil
	case "seconds", "s", "sec":
		return Seconds, nil
	case "minutes", "m", "min":
		return Minutes, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, s)
	}
}

// Duration probes the working file and reports its length in unit.
func (t *Tool) Duration(ctx context.Context, unit DurationUnit) (int64, error) {
	if err := t.ready(); err != nil {
		return 0, err
	}
	if unit < Millis || unit > Minutes {
		return 0, fmt.Errorf("%w: %s", ErrInvalidUnit, unit)
	}

	ms, err := t.durationMillis(ctx)
	if err != nil {
		return 0, err
	}
	return convertMillis(ms, unit), nil
}

func (t *Tool) durationMillis(ctx context.Context) (int64, error) {
	ms, err := t.probe.DurationMillis(ctx, t.session.Path())
	if err != nil {
		if !errors.Is(err, ErrProbeFailed) {
			err = fmt.Errorf("%w: %w", ErrProbeFailed, err)
		}
		return 0, fmt.Errorf("duration: %w", err)
	}
	return ms, nil
}

func convertMillis(ms int64, unit DurationUnit) int64 {
	switch unit {
	case Seconds:
		return ms / msPerSecond
	case Minutes:
		return (ms % msPerHour) / msPerMinute
	default:
		return ms
	}
}
