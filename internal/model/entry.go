package model

import "time"

// Source records how an entry came to exist. It does not affect accounting.
type Source string

const (
	SourceTimer  Source = "timer"
	SourceManual Source = "manual"
	SourceRetro  Source = "retro"
)

// TimerState is derived from the active entry; it is never stored.
type TimerState string

const (
	StateIdle    TimerState = "idle"
	StateRunning TimerState = "running"
	StatePaused  TimerState = "paused"
)

// TimePause is one pause interval inside an entry. A nil PauseEnd means the
// pause is still open.
type TimePause struct {
	ID         string     `json:"id"`
	PauseStart time.Time  `json:"pauseStart"`
	PauseEnd   *time.Time `json:"pauseEnd,omitempty"`
}

// IsOpen reports whether the pause has not been closed yet.
func (p TimePause) IsOpen() bool {
	return p.PauseEnd == nil
}

// TimeEntry represents a single tracked time entry.
type TimeEntry struct {
	ID        string      `json:"id"`
	ProjectID *string     `json:"projectId,omitempty"`
	StartAt   time.Time   `json:"startAt"`
	EndAt     *time.Time  `json:"endAt,omitempty"`
	Pauses    []TimePause `json:"pauses"`
	Note      *string     `json:"note,omitempty"`
	Source    Source      `json:"source"`
	CreatedAt time.Time   `json:"createdAt"`
}

// IsOpen reports whether the entry has no end yet, i.e. it is the active entry.
func (e TimeEntry) IsOpen() bool {
	return e.EndAt == nil
}

// IsPaused reports whether any pause of the entry is still open.
func (e TimeEntry) IsPaused() bool {
	return e.OpenPause() >= 0
}

// OpenPause returns the index of the first open pause, or -1.
func (e TimeEntry) OpenPause() int {
	for i, p := range e.Pauses {
		if p.IsOpen() {
			return i
		}
	}
	return -1
}

// Project returns the project id or "" when the entry has no project.
func (e TimeEntry) Project() string {
	if e.ProjectID == nil {
		return ""
	}
	return *e.ProjectID
}

// Clone returns a deep copy so callers cannot alias the store's slices.
func (e TimeEntry) Clone() TimeEntry {
	c := e
	if e.ProjectID != nil {
		v := *e.ProjectID
		c.ProjectID = &v
	}
	if e.EndAt != nil {
		v := *e.EndAt
		c.EndAt = &v
	}
	if e.Note != nil {
		v := *e.Note
		c.Note = &v
	}
	c.Pauses = make([]TimePause, len(e.Pauses))
	for i, p := range e.Pauses {
		c.Pauses[i] = p
		if p.PauseEnd != nil {
			v := *p.PauseEnd
			c.Pauses[i].PauseEnd = &v
		}
	}
	return c
}

// Project is a billable category entries can be attributed to.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Rate      *float64  `json:"rate,omitempty"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"createdAt"`
}

// StringPtr returns nil for an empty string, otherwise a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time {
	return &t
}
