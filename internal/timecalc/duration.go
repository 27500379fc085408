package timecalc

import (
	"time"

	"github.com/Tiliavir/sa3aty/internal/model"
)

// PausedDuration sums the pauses of e. An open pause counts up to now while the
// entry is open; once the entry is closed an open pause counts as zero so no
// paused time is invented after the close.
func PausedDuration(e model.TimeEntry, now time.Time) time.Duration {
	var total time.Duration
	for _, p := range e.Pauses {
		end := p.PauseStart
		switch {
		case p.PauseEnd != nil:
			end = *p.PauseEnd
		case e.IsOpen():
			end = now
		}
		total += end.Sub(p.PauseStart)
	}
	return total
}

// OpenDuration is the worked time of e: (end or now) - start - paused.
// It is not clamped, malformed data may yield a negative value.
func OpenDuration(e model.TimeEntry, now time.Time) time.Duration {
	end := now
	if e.EndAt != nil {
		end = *e.EndAt
	}
	return end.Sub(e.StartAt) - PausedDuration(e, now)
}

// DurationMinutes is OpenDuration expressed in fractional minutes, as used by
// aggregates.
func DurationMinutes(e model.TimeEntry, now time.Time) float64 {
	return float64(OpenDuration(e, now).Milliseconds()) / 60000
}

// ElapsedSeconds is the live clock value for e. While paused the clock stops at
// the start of the open pause; the result is floored to whole seconds and never
// negative.
func ElapsedSeconds(e model.TimeEntry, now time.Time) int64 {
	end := now
	if e.EndAt != nil {
		end = *e.EndAt
	}
	var paused time.Duration
	for _, p := range e.Pauses {
		if p.PauseEnd == nil {
			if e.IsOpen() && p.PauseStart.Before(end) {
				end = p.PauseStart
			}
			continue
		}
		paused += p.PauseEnd.Sub(p.PauseStart)
	}
	ms := end.Sub(e.StartAt).Milliseconds() - paused.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return ms / 1000
}
