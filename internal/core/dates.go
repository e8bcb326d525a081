package core

import (
	"log/slog"
	"time"
)

// DateLayout is the persisted calendar-date form. Lexicographic comparison of
// two such strings orders them by date, which the grouping code relies on.
const DateLayout = "2006-01-02"

// WeekdayErrorMarker is substituted for the weekday label when a stored date
// string does not parse. Report rendering must never hard-fail on bad data.
const WeekdayErrorMarker = "Error"

// Today returns today's date string in the local zone.
func Today() string {
	return time.Now().Format(DateLayout)
}

// PastNDays returns the n date strings covering [today-(n-1), today],
// oldest first.
func PastNDays(n int) []string {
	today := time.Now()
	dates := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		dates = append(dates, today.AddDate(0, 0, -i).Format(DateLayout))
	}
	return dates
}

// WeekdayAbbrev derives the 3-letter English weekday abbreviation (Mon..Sun)
// for a YYYY-MM-DD string. Malformed input yields WeekdayErrorMarker instead
// of an error.
func WeekdayAbbrev(date string) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		slog.Warn("Unparseable date in weekday derivation", "date", date, "error", err)
		return WeekdayErrorMarker
	}
	return d.Weekday().String()[:3]
}
