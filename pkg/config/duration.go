package config

import (
	"time"

	"github.com/sosodev/duration"
)

// parseDurationISO8601 tries ISO 8601 ("PT10M") first, then Go ("10m")
func parseDurationISO8601(s string) (time.Duration, error) {
	if iso, err := duration.Parse(s); err == nil {
		return iso.ToTimeDuration(), nil
	}
	return time.ParseDuration(s)
}
