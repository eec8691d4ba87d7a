package client

import (
	"fmt"
	"time"
)

// RelativeTime renders how long ago t was relative to now, in the coarsest
// sensible unit. Anything under a minute reads "just now".
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}
	seconds := int(diff.Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24
	switch {
	case seconds < 60:
		return "just now"
	case minutes < 60:
		return plural(minutes, "minute")
	case hours < 24:
		return plural(hours, "hour")
	default:
		return plural(days, "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
