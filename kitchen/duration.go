package kitchen

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	hoursPattern   = regexp.MustCompile(`(?i)(\d+)\s*(?:h|hr|hour)`)
	minutesPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:m|min|minute)`)
)

// ParseDuration reads free-text times such as "45 mins" or "1 hr 15 mins".
// Only the first hour and the first minute figure count; text without either is zero.
func ParseDuration(s string) time.Duration {
	var d time.Duration
	if m := hoursPattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			d += time.Duration(n) * time.Hour
		}
	}
	if m := minutesPattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			d += time.Duration(n) * time.Minute
		}
	}
	return d
}

// FormatClock renders d as H:MM:SS, or M:SS under an hour.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
