package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// LocalToUTC combines a YYYY-MM-DD date and HH:MM time in an IANA zone and returns it in UTC.
// An empty zone means UTC.
func LocalToUTC(date, clock, zone string) (time.Time, error) {
	loc := time.UTC
	if z := strings.TrimSpace(zone); z != "" {
		l, err := time.LoadLocation(z)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timezone %q: %w", zone, err)
		}
		loc = l
	}

	layout := "2006-01-02 15:04"
	if strings.Count(clock, ":") == 2 {
		layout = "2006-01-02 15:04:05"
	}

	t, err := time.ParseInLocation(layout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date or time: %w", err)
	}
	return t.UTC(), nil
}
