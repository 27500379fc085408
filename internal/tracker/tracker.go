// Package tracker owns the projects and entries of a single user, enforces
// the timer state machine and computes the derived read model.
package tracker

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/storage"
	"github.com/Tiliavir/sa3aty/internal/timecalc"
)

// Publisher receives every changed document for remote replication. Calls
// must not block; failures are the publisher's concern.
type Publisher interface {
	PublishProject(p model.Project)
	RemoveProject(id string)
	PublishEntry(e model.TimeEntry)
	RemoveEntry(id string)
}

// Options configures a Tracker. Zero values are usable.
type Options struct {
	Clock  func() time.Time
	Logger *log.Logger
	// KV receives whole-collection snapshots after each mutation while no
	// Publisher is attached. The initial state is loaded from it.
	KV storage.KV
	// Publisher marks the tracker as authenticated: local snapshots stop and
	// changes are pushed remotely instead.
	Publisher Publisher
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	clock     func() time.Time
	logger    *log.Logger
	kv        storage.KV
	pub       Publisher
	projects  []model.Project
	entries   []model.TimeEntry
	listeners []func()
}

// New builds a tracker, loading the local snapshot when a KV is configured.
func New(opts Options) *Tracker {
	t := &Tracker{
		clock:    opts.Clock,
		logger:   opts.Logger,
		kv:       opts.KV,
		pub:      opts.Publisher,
		projects: []model.Project{},
		entries:  []model.TimeEntry{},
	}
	if t.clock == nil {
		t.clock = time.Now
	}
	if t.logger == nil {
		t.logger = log.Default()
	}
	if t.kv != nil {
		t.projects, t.entries = storage.LoadSnapshot(t.kv, t.logger)
	}
	return t
}

// SetPublisher switches between local-only and replicated mode.
func (t *Tracker) SetPublisher(p Publisher) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pub = p
}

// Authenticated reports whether changes are replicated remotely.
func (t *Tracker) Authenticated() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pub != nil
}

// OnChange registers fn to run after every mutation.
func (t *Tracker) OnChange(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

func (t *Tracker) notify() {
	t.mu.Lock()
	ls := append([]func(){}, t.listeners...)
	t.mu.Unlock()
	for _, fn := range ls {
		fn()
	}
}

// Now returns the tracker's clock reading.
func (t *Tracker) Now() time.Time {
	return t.clock()
}

// ReplaceAll swaps both collections for a remote snapshot. The latest
// snapshot wins over any local state.
func (t *Tracker) ReplaceAll(projects []model.Project, entries []model.TimeEntry) {
	ps := make([]model.Project, len(projects))
	copy(ps, projects)
	es := make([]model.TimeEntry, len(entries))
	for i, e := range entries {
		es[i] = e.Clone()
	}
	SortProjects(ps)
	SortEntries(es)

	t.mu.Lock()
	t.projects = ps
	t.entries = es
	t.mu.Unlock()
	t.notify()
}

// SortProjects orders projects by creation time, oldest first.
func SortProjects(ps []model.Project) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].CreatedAt.Before(ps[j].CreatedAt) })
}

// SortEntries orders entries by start time, newest first.
func SortEntries(es []model.TimeEntry) {
	sort.SliceStable(es, func(i, j int) bool { return es[i].StartAt.After(es[j].StartAt) })
}

// saveProjects and saveEntries must be called with mu held.
func (t *Tracker) saveProjects() {
	if t.pub != nil || t.kv == nil {
		return
	}
	if err := storage.SaveProjects(t.kv, t.projects); err != nil {
		t.logger.Printf("tracker: persisting projects: %v", err)
	}
}

func (t *Tracker) saveEntries() {
	if t.pub != nil || t.kv == nil {
		return
	}
	if err := storage.SaveEntries(t.kv, t.entries); err != nil {
		t.logger.Printf("tracker: persisting entries: %v", err)
	}
}

// entryChanged persists and publishes the entry at index i. mu must be held.
func (t *Tracker) entryChanged(i int) model.TimeEntry {
	t.saveEntries()
	e := t.entries[i].Clone()
	if t.pub != nil {
		t.pub.PublishEntry(e.Clone())
	}
	return e
}

func (t *Tracker) reject(op string, err error) error {
	t.logger.Printf("tracker: %s rejected: %v", op, err)
	return err
}

// activeIndex returns the first entry without an end, or -1. mu must be held.
func (t *Tracker) activeIndex() int {
	for i := range t.entries {
		if t.entries[i].IsOpen() {
			return i
		}
	}
	return -1
}

func (t *Tracker) entryIndex(id string) int {
	for i := range t.entries {
		if t.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) projectIndex(id string) int {
	for i := range t.projects {
		if t.projects[i].ID == id {
			return i
		}
	}
	return -1
}

// ActiveEntry returns the entry without an end. Should the data ever hold
// more than one, the first found wins.
func (t *Tracker) ActiveEntry() (model.TimeEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.activeIndex()
	if i < 0 {
		return model.TimeEntry{}, false
	}
	return t.entries[i].Clone(), true
}

// TimerState derives idle, running or paused from the active entry.
func (t *Tracker) TimerState() model.TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state()
}

func (t *Tracker) state() model.TimerState {
	i := t.activeIndex()
	switch {
	case i < 0:
		return model.StateIdle
	case t.entries[i].IsPaused():
		return model.StatePaused
	default:
		return model.StateRunning
	}
}

// ElapsedSeconds is the live clock of the active entry, 0 when idle.
func (t *Tracker) ElapsedSeconds() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.activeIndex()
	if i < 0 {
		return 0
	}
	return timecalc.ElapsedSeconds(t.entries[i], t.clock())
}

// Entries returns a copy of all entries in store order.
func (t *Tracker) Entries() []model.TimeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.TimeEntry, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Clone()
	}
	return out
}

// Entry looks up a single entry.
func (t *Tracker) Entry(id string) (model.TimeEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.entryIndex(id)
	if i < 0 {
		return model.TimeEntry{}, false
	}
	return t.entries[i].Clone(), true
}
