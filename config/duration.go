package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// durationSetting reads a timeout or max-age value. Strings may be Go
// durations ("90s") or bare seconds ("120"); numbers are seconds. Empty or
// unset values give def. Non-positive or unparseable values give def and
// an error the caller logs.
func durationSetting(raw any, def time.Duration) (time.Duration, error) {
	var d time.Duration
	switch t := raw.(type) {
	case time.Duration:
		d = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return def, nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			secs, serr := strconv.ParseFloat(s, 64)
			if serr != nil {
				return def, fmt.Errorf("cannot parse duration %q", s)
			}
			parsed = seconds(secs)
		}
		d = parsed
	case int:
		d = seconds(float64(t))
	case int64:
		d = seconds(float64(t))
	case float64:
		d = seconds(t)
	default:
		return def, nil
	}
	if d <= 0 {
		return def, fmt.Errorf("duration %v must be positive", raw)
	}
	return d, nil
}

func seconds(n float64) time.Duration {
	return time.Duration(n * float64(time.Second))
}
