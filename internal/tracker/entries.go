package tracker

import (
	"time"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/timecalc"
)

// EntryPatch holds the fields UpdateEntry may change. Nil fields are left
// alone; a pointer to "" clears ProjectID or Note.
type EntryPatch struct {
	ProjectID *string
	StartAt   *time.Time
	EndAt     *time.Time
	Note      *string
}

// AddRetroEntry backfills an entry that was never tracked live. A nil endAt
// creates an open entry, which is refused while another entry is active.
func (t *Tracker) AddRetroEntry(projectID string, startAt time.Time, endAt *time.Time, note string) (model.TimeEntry, error) {
	return t.withEntry(func() (model.TimeEntry, error) {
		if startAt.IsZero() {
			return model.TimeEntry{}, t.reject("retro entry", invalid("startAt", "missing or invalid start time"))
		}
		if endAt != nil {
			if endAt.IsZero() {
				return model.TimeEntry{}, t.reject("retro entry", invalid("endAt", "invalid end time"))
			}
			if endAt.Before(startAt) {
				return model.TimeEntry{}, t.reject("retro entry", invalid("endAt", "end %s is before start %s",
					endAt.Format(time.RFC3339), startAt.Format(time.RFC3339)))
			}
		} else if t.activeIndex() >= 0 {
			return model.TimeEntry{}, t.reject("retro entry", invalid("endAt", "an open entry already exists; an end time is required"))
		}

		e := model.TimeEntry{
			ID:        timecalc.NewID(),
			ProjectID: model.StringPtr(projectID),
			StartAt:   startAt,
			Pauses:    []model.TimePause{},
			Note:      model.StringPtr(note),
			Source:    model.SourceRetro,
			CreatedAt: t.clock(),
		}
		if endAt != nil {
			e.EndAt = model.TimePtr(*endAt)
		}
		t.entries = append(t.entries, e)
		return t.entryChanged(len(t.entries) - 1), nil
	})
}

// AddQuickTime logs a finished block of the given length ending now. It is
// attributed to the project of the most recently created entry that has one.
func (t *Tracker) AddQuickTime(minutes int) (model.TimeEntry, error) {
	return t.withEntry(func() (model.TimeEntry, error) {
		now := t.clock()
		start, err := MinutesBefore(now, minutes)
		if err != nil {
			return model.TimeEntry{}, t.reject("quick time", err)
		}
		t.entries = append(t.entries, model.TimeEntry{
			ID:        timecalc.NewID(),
			ProjectID: model.StringPtr(t.lastUsedProject()),
			StartAt:   start,
			EndAt:     model.TimePtr(now),
			Pauses:    []model.TimePause{},
			Source:    model.SourceManual,
			CreatedAt: now,
		})
		return t.entryChanged(len(t.entries) - 1), nil
	})
}

// lastUsedProject must be called with mu held.
func (t *Tracker) lastUsedProject() string {
	var (
		best  string
		bestT time.Time
		found bool
	)
	for _, e := range t.entries {
		if e.ProjectID == nil {
			continue
		}
		if !found || !e.CreatedAt.Before(bestT) {
			best, bestT, found = *e.ProjectID, e.CreatedAt, true
		}
	}
	return best
}

// UpdateEntry shallow-merges patch into the entry. The resulting start/end
// order is not re-validated.
func (t *Tracker) UpdateEntry(id string, patch EntryPatch) (model.TimeEntry, error) {
	return t.withEntry(func() (model.TimeEntry, error) {
		i := t.entryIndex(id)
		if i < 0 {
			return model.TimeEntry{}, ErrEntryNotFound
		}
		e := &t.entries[i]
		if patch.ProjectID != nil {
			e.ProjectID = model.StringPtr(*patch.ProjectID)
		}
		if patch.StartAt != nil {
			e.StartAt = *patch.StartAt
		}
		if patch.EndAt != nil {
			e.EndAt = model.TimePtr(*patch.EndAt)
		}
		if patch.Note != nil {
			e.Note = model.StringPtr(*patch.Note)
		}
		return t.entryChanged(i), nil
	})
}

// DeleteEntry removes an entry permanently.
func (t *Tracker) DeleteEntry(id string) error {
	_, err := t.withEntry(func() (model.TimeEntry, error) {
		i := t.entryIndex(id)
		if i < 0 {
			return model.TimeEntry{}, ErrEntryNotFound
		}
		removed := t.entries[i]
		t.entries = append(t.entries[:i], t.entries[i+1:]...)
		t.saveEntries()
		if t.pub != nil {
			t.pub.RemoveEntry(id)
		}
		return removed, nil
	})
	return err
}
