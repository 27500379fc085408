package tracker

import (
	"time"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/timecalc"
)

// FixAction says what happens after a forgotten pause is recorded.
type FixAction string

const (
	// FixEnd closes the entry now.
	FixEnd FixAction = "end"
	// FixResume keeps the entry running from now on.
	FixResume FixAction = "resume"
)

// withEntry runs fn under the lock and notifies listeners when fn succeeds.
func (t *Tracker) withEntry(fn func() (model.TimeEntry, error)) (model.TimeEntry, error) {
	t.mu.Lock()
	e, err := fn()
	t.mu.Unlock()
	if err != nil {
		return model.TimeEntry{}, err
	}
	t.notify()
	return e, nil
}

// Start opens a new timer entry. It fails with ErrAlreadyActive while another
// entry is open.
func (t *Tracker) Start(projectID string) (model.TimeEntry, error) {
	return t.withEntry(func() (model.TimeEntry, error) {
		if t.activeIndex() >= 0 {
			return model.TimeEntry{}, ErrAlreadyActive
		}
		now := t.clock()
		t.entries = append(t.entries, model.TimeEntry{
			ID:        timecalc.NewID(),
			ProjectID: model.StringPtr(projectID),
			StartAt:   now,
			Pauses:    []model.TimePause{},
			Source:    model.SourceTimer,
			CreatedAt: now,
		})
		return t.entryChanged(len(t.entries) - 1), nil
	})
}

// Pause opens a pause on the running entry.
func (t *Tracker) Pause() (model.TimeEntry, error) {
	return t.withEntry(func() (model.TimeEntry, error) {
		i := t.activeIndex()
		if i < 0 {
			return model.TimeEntry{}, ErrNoActiveEntry
		}
		if t.entries[i].IsPaused() {
			return model.TimeEntry{}, ErrNotRunning
		}
		t.entries[i].Pauses = append(t.entries[i].Pauses, model.TimePause{
			ID:         timecalc.NewID(),
			PauseStart: t.clock(),
		})
		return t.entryChanged(i), nil
	})
}

// Resume closes the open pause of the paused entry.
func (t *Tracker) Resume() (model.TimeEntry, error) {
	return t.withEntry(func() (model.TimeEntry, error) {
		i := t.activeIndex()
		if i < 0 {
			return model.TimeEntry{}, ErrNoActiveEntry
		}
		if !t.entries[i].IsPaused() {
			return model.TimeEntry{}, ErrNotPaused
		}
		closePauses(&t.entries[i], t.clock())
		return t.entryChanged(i), nil
	})
}

// Stop closes any open pause and ends the active entry.
func (t *Tracker) Stop() (model.TimeEntry, error) {
	return t.withEntry(func() (model.TimeEntry, error) {
		i := t.activeIndex()
		if i < 0 {
			return model.TimeEntry{}, ErrNoActiveEntry
		}
		now := t.clock()
		closePauses(&t.entries[i], now)
		t.entries[i].EndAt = model.TimePtr(now)
		return t.entryChanged(i), nil
	})
}

// FixForgotPause records a pause that should have started minutesAgo and
// ended now. With FixEnd the entry is closed now as well; with FixResume it
// keeps running. Only a running entry can be fixed.
func (t *Tracker) FixForgotPause(minutesAgo int, action FixAction) (model.TimeEntry, error) {
	return t.withEntry(func() (model.TimeEntry, error) {
		i := t.activeIndex()
		if i < 0 {
			return model.TimeEntry{}, ErrNoActiveEntry
		}
		if t.entries[i].IsPaused() {
			return model.TimeEntry{}, ErrNotRunning
		}
		if action != FixEnd && action != FixResume {
			return model.TimeEntry{}, t.reject("fix forgot pause", invalid("action", "must be %q or %q, got %q", FixEnd, FixResume, action))
		}
		now := t.clock()
		pauseStart, err := t.backdate(i, minutesAgo, now)
		if err != nil {
			return model.TimeEntry{}, t.reject("fix forgot pause", err)
		}
		t.entries[i].Pauses = append(t.entries[i].Pauses, model.TimePause{
			ID:         timecalc.NewID(),
			PauseStart: pauseStart,
			PauseEnd:   model.TimePtr(now),
		})
		if action == FixEnd {
			t.entries[i].EndAt = model.TimePtr(now)
		}
		return t.entryChanged(i), nil
	})
}

// FixForgotStop ends the active entry minutesAgo, closing an open pause at
// the same backdated instant.
func (t *Tracker) FixForgotStop(minutesAgo int) (model.TimeEntry, error) {
	return t.withEntry(func() (model.TimeEntry, error) {
		i := t.activeIndex()
		if i < 0 {
			return model.TimeEntry{}, ErrNoActiveEntry
		}
		stopAt, err := t.backdate(i, minutesAgo, t.clock())
		if err != nil {
			return model.TimeEntry{}, t.reject("fix forgot stop", err)
		}
		if p := t.entries[i].OpenPause(); p >= 0 && stopAt.Before(t.entries[i].Pauses[p].PauseStart) {
			return model.TimeEntry{}, t.reject("fix forgot stop",
				invalid("minutes", "stop at %s would precede the open pause started at %s",
					stopAt.Format(time.RFC3339), t.entries[i].Pauses[p].PauseStart.Format(time.RFC3339)))
		}
		closePauses(&t.entries[i], stopAt)
		t.entries[i].EndAt = model.TimePtr(stopAt)
		return t.entryChanged(i), nil
	})
}

// UpdateActiveProject reassigns the project of the active entry. An empty id
// clears it.
func (t *Tracker) UpdateActiveProject(projectID string) (model.TimeEntry, error) {
	return t.withEntry(func() (model.TimeEntry, error) {
		i := t.activeIndex()
		if i < 0 {
			return model.TimeEntry{}, ErrNoActiveEntry
		}
		t.entries[i].ProjectID = model.StringPtr(projectID)
		return t.entryChanged(i), nil
	})
}

// MaxMinutes caps every "minutes ago" input, roughly ten years.
const MaxMinutes = 10 * 366 * 24 * 60

// MinutesBefore returns now minus the given number of minutes. The count must
// lie in [1, MaxMinutes].
func MinutesBefore(now time.Time, minutes int) (time.Time, error) {
	if minutes <= 0 {
		return time.Time{}, invalid("minutes", "must be positive, got %d", minutes)
	}
	if minutes > MaxMinutes {
		return time.Time{}, invalid("minutes", "must be at most %d, got %d", MaxMinutes, minutes)
	}
	at := now.Add(-time.Duration(minutes) * time.Minute)
	if !at.Before(now) {
		return time.Time{}, invalid("minutes", "%d minutes ago is not in the past", minutes)
	}
	return at, nil
}

// backdate returns now-minutesAgo, refusing out-of-range minutes and instants
// before the start of entry i.
func (t *Tracker) backdate(i, minutesAgo int, now time.Time) (time.Time, error) {
	at, err := MinutesBefore(now, minutesAgo)
	if err != nil {
		return time.Time{}, err
	}
	if at.Before(t.entries[i].StartAt) {
		return time.Time{}, invalid("minutes", "%d minutes ago is before the entry started at %s",
			minutesAgo, t.entries[i].StartAt.Format(time.RFC3339))
	}
	return at, nil
}

func closePauses(e *model.TimeEntry, at time.Time) {
	for j := range e.Pauses {
		if e.Pauses[j].IsOpen() {
			e.Pauses[j].PauseEnd = model.TimePtr(at)
		}
	}
}
