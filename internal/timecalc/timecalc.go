package timecalc

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID returns a new random identifier for projects, entries and pauses.
func NewID() string {
	return uuid.NewString()
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		return "-" + FormatDuration(-seconds)
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatDurationHHMMSS formats seconds as HH:MM:SS.
func FormatDurationHHMMSS(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatElapsed formats seconds as "1h 2m 3s", dropping leading zero units.
func FormatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatMinutes renders aggregate minutes the way the today summary shows them.
func FormatMinutes(minutes float64) string {
	total := int64(minutes + 0.5)
	if minutes < 0 {
		total = int64(minutes - 0.5)
	}
	return FormatDuration(total * 60)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, ..., Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := t.AddDate(0, 0, -(wd - 1))
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
	sunday := monday.AddDate(0, 0, 6)
	sunday = EndOfDay(sunday)
	return monday, sunday
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayKey returns the local calendar date of t as "2006-01-02".
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// ParseRange parses optional YYYY-MM-DD bounds. Missing bounds default to the
// ISO week containing now.
func ParseRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	start, end := WeekRange(now)
	if from != "" {
		d, err := time.ParseInLocation("2006-01-02", from, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q: %w", from, err)
		}
		start = StartOfDay(d)
	}
	if to != "" {
		d, err := time.ParseInLocation("2006-01-02", to, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q: %w", to, err)
		}
		end = EndOfDay(d)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("range end %s is before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return start, end, nil
}
