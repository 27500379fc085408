package timecalc_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/timecalc"
)

var t0 = time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return t0.Add(time.Duration(minutes) * time.Minute)
}

func pause(start int, end *int) model.TimePause {
	p := model.TimePause{ID: "p", PauseStart: at(start)}
	if end != nil {
		p.PauseEnd = model.TimePtr(at(*end))
	}
	return p
}

func intPtr(i int) *int { return &i }

func TestClosedEntryWithPause(t *testing.T) {
	e := model.TimeEntry{
		StartAt: t0,
		EndAt:   model.TimePtr(at(30)),
		Pauses:  []model.TimePause{pause(10, intPtr(15))},
	}
	now := at(600)

	assert.Equal(t, int64(1500), timecalc.ElapsedSeconds(e, now))
	assert.Equal(t, 25*time.Minute, timecalc.OpenDuration(e, now))
	assert.InDelta(t, 25.0, timecalc.DurationMinutes(e, now), 1e-9)
	assert.Equal(t, 5*time.Minute, timecalc.PausedDuration(e, now))
}

func TestRunningEntry(t *testing.T) {
	e := model.TimeEntry{
		StartAt: t0,
		Pauses:  []model.TimePause{pause(5, intPtr(8)), pause(20, intPtr(22))},
	}
	now := at(30).Add(1500 * time.Millisecond)

	// 30m1.5s - 5m paused, floored.
	assert.Equal(t, int64(25*60+1), timecalc.ElapsedSeconds(e, now))
	assert.InDelta(t, 25.025, timecalc.DurationMinutes(e, now), 1e-9)
}

func TestPausedEntryFreezesClock(t *testing.T) {
	e := model.TimeEntry{
		StartAt: t0,
		Pauses:  []model.TimePause{pause(5, intPtr(10)), pause(20, nil)},
	}

	for _, now := range []time.Time{at(20), at(25), at(90)} {
		assert.Equal(t, int64(15*60), timecalc.ElapsedSeconds(e, now), "now=%v", now)
		assert.InDelta(t, 15.0, timecalc.DurationMinutes(e, now), 1e-9, "now=%v", now)
	}
	assert.Equal(t, 75*time.Minute, timecalc.PausedDuration(e, at(90)))
}

func TestClosedEntryIgnoresDanglingOpenPause(t *testing.T) {
	e := model.TimeEntry{
		StartAt: t0,
		EndAt:   model.TimePtr(at(60)),
		Pauses:  []model.TimePause{pause(30, nil)},
	}

	assert.Equal(t, time.Duration(0), timecalc.PausedDuration(e, at(600)))
	assert.Equal(t, 60*time.Minute, timecalc.OpenDuration(e, at(600)))
	assert.Equal(t, int64(3600), timecalc.ElapsedSeconds(e, at(600)))
}

func TestElapsedNeverNegative(t *testing.T) {
	e := model.TimeEntry{
		StartAt: at(10),
		EndAt:   model.TimePtr(t0),
	}

	assert.Equal(t, int64(0), timecalc.ElapsedSeconds(e, at(100)))
	assert.InDelta(t, -10.0, timecalc.DurationMinutes(e, at(100)), 1e-9)
}

func TestDurationIsDeterministic(t *testing.T) {
	e := model.TimeEntry{
		StartAt: t0,
		Pauses:  []model.TimePause{pause(3, intPtr(4)), pause(7, nil)},
	}
	now := at(12)

	first := timecalc.ElapsedSeconds(e, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, timecalc.ElapsedSeconds(e, now))
	}
}
