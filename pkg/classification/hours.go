package classification

import (
	"strconv"
	"strings"
	"time"

	"github.com/ormstack/moderation-go/pkg/policy"
)

// withinBusinessHours reports whether now falls inside the tenant's
// configured hours for the current weekday, evaluated in the tenant's
// timezone. Evaluation errors default to true: when in doubt, treat the
// team as available rather than suppressing a response.
func withinBusinessHours(hours policy.BusinessHours, now time.Time) bool {
	tz := hours.Timezone
	if tz == "" {
		tz = "UTC"
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return true
	}

	local := now.In(loc)
	day := strings.ToLower(local.Weekday().String())

	dayHours, ok := hours.Hours[day]
	if !ok {
		return false
	}

	// Either bound unparseable means the window cannot be evaluated; fail
	// open rather than suppress a response.
	startHour, okStart := parseHour(dayHours.Start)
	endHour, okEnd := parseHour(dayHours.End)
	if !okStart || !okEnd {
		return true
	}

	hour := local.Hour()
	return hour >= startHour && hour <= endHour
}

// parseHour extracts the hour component from an "HH:MM" or "HH" string.
func parseHour(s string) (int, bool) {
	if s == "" {
		return 0, false
	}

	hourPart := s
	if idx := strings.Index(s, ":"); idx >= 0 {
		hourPart = s[:idx]
	}

	hour, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}
