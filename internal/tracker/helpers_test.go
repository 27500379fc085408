package tracker_test

import (
	"bytes"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/storage"
	"github.com/Tiliavir/sa3aty/internal/tracker"
)

var t0 = time.Date(2026, 2, 27, 9, 0, 0, 0, time.Local)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu              sync.Mutex
	projects        []model.Project
	entries         []model.TimeEntry
	removedProjects []string
	removedEntries  []string
}

func (r *recordingPublisher) PublishProject(p model.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects = append(r.projects, p)
}

func (r *recordingPublisher) RemoveProject(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removedProjects = append(r.removedProjects, id)
}

func (r *recordingPublisher) PublishEntry(e model.TimeEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingPublisher) RemoveEntry(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removedEntries = append(r.removedEntries, id)
}

type failingKV struct{}

func (failingKV) Get(string) (string, bool, error) { return "", false, nil }
func (failingKV) Set(string, string) error        { return errors.New("quota exceeded") }

// newTracker returns a tracker on a fake clock at t0 backed by an in-memory KV.
func newTracker(t *testing.T) (*tracker.Tracker, *fakeClock, *storage.MemoryKV) {
	t.Helper()
	clock := &fakeClock{now: t0}
	kv := storage.NewMemoryKV()
	tr := tracker.New(tracker.Options{
		Clock:  clock.Now,
		Logger: log.New(io.Discard, "", 0),
		KV:     kv,
	})
	return tr, clock, kv
}

func newLoggedTracker(t *testing.T) (*tracker.Tracker, *fakeClock, *bytes.Buffer) {
	t.Helper()
	clock := &fakeClock{now: t0}
	var buf bytes.Buffer
	tr := tracker.New(tracker.Options{
		Clock:  clock.Now,
		Logger: log.New(&buf, "", 0),
	})
	return tr, clock, &buf
}

func openEntries(entries []model.TimeEntry) int {
	n := 0
	for _, e := range entries {
		if e.IsOpen() {
			n++
		}
	}
	return n
}

func openPauses(e model.TimeEntry) int {
	n := 0
	for _, p := range e.Pauses {
		if p.IsOpen() {
			n++
		}
	}
	return n
}
