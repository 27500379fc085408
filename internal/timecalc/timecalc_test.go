package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/sa3aty/internal/timecalc"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m"},
		{90, "1m"},
		{3600, "1h 0m"},
		{3661, "1h 1m"},
		{5400, "1h 30m"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDuration(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatDurationHHMMSS(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "00:00:00"},
		{61, "00:01:01"},
		{3661, "01:01:01"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDurationHHMMSS(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatDurationHHMMSS(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestWeekRange(t *testing.T) {
	// 2026-02-27 is a Friday (week 9).
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	monday, sunday := timecalc.WeekRange(fri)

	wantMonday := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	wantSunday := time.Date(2026, 3, 1, 23, 59, 59, 999999999, time.UTC)

	if !monday.Equal(wantMonday) {
		t.Errorf("WeekRange monday = %v, want %v", monday, wantMonday)
	}
	if !sunday.Equal(wantSunday) {
		t.Errorf("WeekRange sunday = %v, want %v", sunday, wantSunday)
	}
}

func TestEndOfDayCoversLastSecond(t *testing.T) {
	late := time.Date(2026, 2, 27, 23, 59, 59, 500000000, time.UTC)
	end := timecalc.EndOfDay(late)
	if late.After(end) {
		t.Errorf("EndOfDay = %v, before %v", end, late)
	}
	if !end.Add(time.Nanosecond).Equal(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("EndOfDay = %v, want last nanosecond of the day", end)
	}
}

func TestISOWeekLabel(t *testing.T) {
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	got := timecalc.ISOWeekLabel(fri)
	if got != "2026-W09" {
		t.Errorf("ISOWeekLabel = %q, want %q", got, "2026-W09")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 2, 27, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	if !timecalc.SameDay(a, b) {
		t.Error("SameDay: expected same day for a and b")
	}
	if timecalc.SameDay(a, c) {
		t.Error("SameDay: expected different day for a and c")
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{59, "59s"},
		{60, "1m 0s"},
		{90, "1m 30s"},
		{3600, "1h 0m 0s"},
		{7322, "2h 2m 2s"},
	}
	for _, tt := range tests {
		got := timecalc.FormatElapsed(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatElapsed(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{0, "0s"},
		{0.4, "0s"},
		{20, "20m"},
		{89.6, "1h 30m"},
		{-15, "-15m"},
	}
	for _, tt := range tests {
		got := timecalc.FormatMinutes(tt.minutes)
		if got != tt.want {
			t.Errorf("FormatMinutes(%v) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestParseRange(t *testing.T) {
	now := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)

	from, to, err := timecalc.ParseRange("", "", now)
	if err != nil {
		t.Fatalf("ParseRange defaults: %v", err)
	}
	if !from.Equal(time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("default from = %v", from)
	}
	if !to.Equal(time.Date(2026, 3, 1, 23, 59, 59, 999999999, time.UTC)) {
		t.Errorf("default to = %v", to)
	}

	from, to, err = timecalc.ParseRange("2026-01-05", "2026-01-06", now)
	if err != nil {
		t.Fatalf("ParseRange explicit: %v", err)
	}
	if !from.Equal(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)) || !to.Equal(time.Date(2026, 1, 6, 23, 59, 59, 999999999, time.UTC)) {
		t.Errorf("ParseRange explicit = %v..%v", from, to)
	}

	if _, _, err := timecalc.ParseRange("2026-01-06", "2026-01-05", now); err == nil {
		t.Error("expected error for inverted range")
	}
	if _, _, err := timecalc.ParseRange("yesterday", "", now); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestNewID(t *testing.T) {
	a := timecalc.NewID()
	b := timecalc.NewID()
	if len(a) != 36 {
		t.Errorf("NewID length = %d, want 36", len(a))
	}
	if a == b {
		t.Errorf("NewID returned duplicate %q", a)
	}
}
