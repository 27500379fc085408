package tracker_test

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/tracker"
)

func TestStartStopLifecycle(t *testing.T) {
	tr, clock, _ := newTracker(t)
	assert.Equal(t, model.StateIdle, tr.TimerState())

	started, err := tr.Start("")
	require.NoError(t, err)
	assert.Equal(t, model.StateRunning, tr.TimerState())
	assert.Equal(t, model.SourceTimer, started.Source)
	assert.Nil(t, started.ProjectID)
	assert.Empty(t, started.Pauses)
	assert.True(t, started.StartAt.Equal(t0))

	clock.Advance(10 * time.Minute)
	_, err = tr.Pause()
	require.NoError(t, err)
	assert.Equal(t, model.StatePaused, tr.TimerState())

	clock.Advance(5 * time.Minute)
	_, err = tr.Resume()
	require.NoError(t, err)
	assert.Equal(t, model.StateRunning, tr.TimerState())

	clock.Advance(15 * time.Minute)
	stopped, err := tr.Stop()
	require.NoError(t, err)
	assert.Equal(t, model.StateIdle, tr.TimerState())

	_, active := tr.ActiveEntry()
	assert.False(t, active)

	entries := tr.Entries()
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Pauses, 1)
	assert.Equal(t, stopped.ID, entries[0].ID)
	require.NotNil(t, entries[0].EndAt)
	assert.True(t, entries[0].EndAt.Equal(t0.Add(30*time.Minute)))
	assert.False(t, entries[0].Pauses[0].IsOpen())
	assert.InDelta(t, 25.0, tr.TodayTotalMinutes(), 1e-9)
}

func TestStartTwiceKeepsFirstEntry(t *testing.T) {
	tr, clock, _ := newTracker(t)

	first, err := tr.Start("")
	require.NoError(t, err)
	clock.Advance(time.Minute)

	_, err = tr.Start("other")
	assert.ErrorIs(t, err, tracker.ErrAlreadyActive)
	assert.True(t, tracker.IsPrecondition(err))

	active, ok := tr.ActiveEntry()
	require.True(t, ok)
	assert.Equal(t, first.ID, active.ID)
	assert.Len(t, tr.Entries(), 1)
}

func TestIllegalTransitionsAreNoOps(t *testing.T) {
	tr, _, kv := newTracker(t)

	_, err := tr.Pause()
	assert.ErrorIs(t, err, tracker.ErrNoActiveEntry)
	_, err = tr.Resume()
	assert.ErrorIs(t, err, tracker.ErrNoActiveEntry)
	_, err = tr.Stop()
	assert.ErrorIs(t, err, tracker.ErrNoActiveEntry)
	_, err = tr.FixForgotStop(5)
	assert.ErrorIs(t, err, tracker.ErrNoActiveEntry)
	_, err = tr.FixForgotPause(5, tracker.FixResume)
	assert.ErrorIs(t, err, tracker.ErrNoActiveEntry)
	_, err = tr.UpdateActiveProject("p")
	assert.ErrorIs(t, err, tracker.ErrNoActiveEntry)

	_, ok, _ := kv.Get("entries")
	assert.False(t, ok, "no snapshot should be written for rejected operations")

	_, err = tr.Start("")
	require.NoError(t, err)
	_, err = tr.Resume()
	assert.ErrorIs(t, err, tracker.ErrNotPaused)

	_, err = tr.Pause()
	require.NoError(t, err)
	_, err = tr.Pause()
	assert.ErrorIs(t, err, tracker.ErrNotRunning)

	active, ok := tr.ActiveEntry()
	require.True(t, ok)
	assert.Len(t, active.Pauses, 1)
}

func TestInvariantsHoldForRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tr, clock, _ := newTracker(t)

	ops := []func(){
		func() { _, _ = tr.Start("") },
		func() { _, _ = tr.Pause() },
		func() { _, _ = tr.Resume() },
		func() { _, _ = tr.Stop() },
	}
	for i := 0; i < 500; i++ {
		clock.Advance(time.Duration(rng.Intn(120)+1) * time.Second)
		ops[rng.Intn(len(ops))]()

		entries := tr.Entries()
		require.LessOrEqual(t, openEntries(entries), 1, "step %d", i)
		for _, e := range entries {
			require.LessOrEqual(t, openPauses(e), 1, "step %d entry %s", i, e.ID)
			for _, p := range e.Pauses {
				if p.PauseEnd != nil {
					require.False(t, p.PauseEnd.Before(p.PauseStart), "negative pause at step %d", i)
				}
			}
		}
	}
}

func TestStopClosesOpenPause(t *testing.T) {
	tr, clock, _ := newTracker(t)
	_, _ = tr.Start("")
	clock.Advance(10 * time.Minute)
	_, _ = tr.Pause()
	clock.Advance(10 * time.Minute)

	stopped, err := tr.Stop()
	require.NoError(t, err)
	require.Len(t, stopped.Pauses, 1)
	require.NotNil(t, stopped.Pauses[0].PauseEnd)
	assert.True(t, stopped.Pauses[0].PauseEnd.Equal(*stopped.EndAt))
	assert.InDelta(t, 10.0, tr.TodayTotalMinutes(), 1e-9)
}

func TestFixForgotStopBackdates(t *testing.T) {
	tr, clock, _ := newTracker(t)
	_, _ = tr.Start("")
	clock.Advance(45 * time.Minute)
	now := clock.Now()

	e, err := tr.FixForgotStop(10)
	require.NoError(t, err)
	require.NotNil(t, e.EndAt)
	assert.True(t, e.EndAt.Equal(now.Add(-10*time.Minute)))
	assert.Equal(t, model.StateIdle, tr.TimerState())
	assert.InDelta(t, 35.0, tr.TodayTotalMinutes(), 1e-9)
}

func TestFixForgotStopClosesPauseAtBackdatedInstant(t *testing.T) {
	tr, clock, _ := newTracker(t)
	_, _ = tr.Start("")
	clock.Advance(20 * time.Minute)
	_, _ = tr.Pause()
	clock.Advance(30 * time.Minute)
	now := clock.Now()

	e, err := tr.FixForgotStop(10)
	require.NoError(t, err)
	stopAt := now.Add(-10 * time.Minute)
	require.Len(t, e.Pauses, 1)
	assert.True(t, e.Pauses[0].PauseEnd.Equal(stopAt), "pause must close at the backdated instant, not now")
	assert.True(t, e.EndAt.Equal(stopAt))
	assert.InDelta(t, 20.0, tr.TodayTotalMinutes(), 1e-9)
}

func TestFixForgotStopValidation(t *testing.T) {
	tr, clock, _ := newTracker(t)
	_, _ = tr.Start("")
	clock.Advance(20 * time.Minute)
	_, _ = tr.Pause()
	clock.Advance(5 * time.Minute)

	tests := []struct {
		name    string
		minutes int
	}{
		{"zero", 0},
		{"negative", -5},
		{"before entry start", 60},
		{"before open pause", 10},
		{"beyond duration range", 200_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.FixForgotStop(tt.minutes)
			var verr *tracker.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, "minutes", verr.Field)
			assert.Equal(t, model.StatePaused, tr.TimerState())
		})
	}
}

func TestFixForgotPauseEnd(t *testing.T) {
	tr, clock, _ := newTracker(t)
	_, _ = tr.Start("")
	clock.Advance(60 * time.Minute)
	now := clock.Now()

	e, err := tr.FixForgotPause(15, tracker.FixEnd)
	require.NoError(t, err)
	require.Len(t, e.Pauses, 1)
	assert.True(t, e.Pauses[0].PauseStart.Equal(now.Add(-15*time.Minute)))
	assert.True(t, e.Pauses[0].PauseEnd.Equal(now))
	require.NotNil(t, e.EndAt)
	assert.True(t, e.EndAt.Equal(now))
	assert.Equal(t, model.StateIdle, tr.TimerState())
	assert.InDelta(t, 45.0, tr.TodayTotalMinutes(), 1e-9)
}

func TestFixForgotPauseResume(t *testing.T) {
	tr, clock, _ := newTracker(t)
	_, _ = tr.Start("")
	clock.Advance(60 * time.Minute)

	e, err := tr.FixForgotPause(20, tracker.FixResume)
	require.NoError(t, err)
	assert.Nil(t, e.EndAt)
	assert.Equal(t, 0, openPauses(e))
	assert.Equal(t, model.StateRunning, tr.TimerState())
	assert.Equal(t, int64(40*60), tr.ElapsedSeconds())

	clock.Advance(time.Minute)
	assert.Equal(t, int64(41*60), tr.ElapsedSeconds())
}

func TestFixForgotPauseRejects(t *testing.T) {
	tr, clock, _ := newTracker(t)
	_, _ = tr.Start("")
	clock.Advance(30 * time.Minute)

	_, err := tr.FixForgotPause(10, tracker.FixAction("later"))
	assert.ErrorIs(t, err, tracker.ErrValidation)
	_, err = tr.FixForgotPause(0, tracker.FixEnd)
	assert.ErrorIs(t, err, tracker.ErrValidation)
	_, err = tr.FixForgotPause(31, tracker.FixEnd)
	assert.ErrorIs(t, err, tracker.ErrValidation)
	_, err = tr.FixForgotPause(200_000_000, tracker.FixResume)
	assert.ErrorIs(t, err, tracker.ErrValidation)
	assert.Equal(t, model.StateRunning, tr.TimerState())

	_, _ = tr.Pause()
	_, err = tr.FixForgotPause(10, tracker.FixEnd)
	assert.ErrorIs(t, err, tracker.ErrNotRunning)

	active, ok := tr.ActiveEntry()
	require.True(t, ok)
	assert.Len(t, active.Pauses, 1)
}

func TestElapsedSecondsFreezesWhilePaused(t *testing.T) {
	tr, clock, _ := newTracker(t)
	assert.Equal(t, int64(0), tr.ElapsedSeconds())

	_, _ = tr.Start("")
	clock.Advance(90 * time.Second)
	assert.Equal(t, int64(90), tr.ElapsedSeconds())

	_, _ = tr.Pause()
	clock.Advance(10 * time.Minute)
	assert.Equal(t, int64(90), tr.ElapsedSeconds())

	_, _ = tr.Resume()
	clock.Advance(30 * time.Second)
	assert.Equal(t, int64(120), tr.ElapsedSeconds())
}

func TestUpdateActiveProject(t *testing.T) {
	tr, _, _ := newTracker(t)
	_, _ = tr.Start("a")

	e, err := tr.UpdateActiveProject("b")
	require.NoError(t, err)
	assert.Equal(t, "b", e.Project())

	e, err = tr.UpdateActiveProject("")
	require.NoError(t, err)
	assert.Nil(t, e.ProjectID)
}

func TestMinutesBefore(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		wantErr bool
	}{
		{"one minute", 1, false},
		{"at cap", tracker.MaxMinutes, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"above cap", tracker.MaxMinutes + 1, true},
		{"beyond duration range", 200_000_000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at, err := tracker.MinutesBefore(t0, tt.minutes)
			if tt.wantErr {
				var verr *tracker.ValidationError
				require.True(t, errors.As(err, &verr), "got %v", err)
				assert.Equal(t, "minutes", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.True(t, at.Before(t0))
			assert.Equal(t, time.Duration(tt.minutes)*time.Minute, t0.Sub(at))
		})
	}
}
