package utils

import (
	"strings"
	"time"
)

const layoutDate = "2006-01-02"

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// TodayUTC returns the current UTC date as YYYY-MM-DD.
func TodayUTC() string {
	return NowUTC().Format(layoutDate)
}

// NormalizeDate validates a YYYY-MM-DD travel date and returns it in canonical form.
func NormalizeDate(s string) (string, bool) {
	t, err := time.Parse(layoutDate, strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return t.Format(layoutDate), true
}
