package tracker_test

import (
	"bytes"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/storage"
	"github.com/Tiliavir/sa3aty/internal/tracker"
)

func TestMutationsWriteSnapshots(t *testing.T) {
	tr, clock, kv := newTracker(t)
	p, err := tr.AddProject("Alpha", "#0D9488", nil)
	require.NoError(t, err)
	_, _ = tr.Start(p.ID)
	clock.Advance(10 * time.Minute)
	_, _ = tr.Pause()

	reloaded := tracker.New(tracker.Options{
		Clock:  clock.Now,
		Logger: log.New(io.Discard, "", 0),
		KV:     kv,
	})
	assert.Equal(t, model.StatePaused, reloaded.TimerState())
	require.Len(t, reloaded.Projects(), 1)
	assert.Equal(t, "Alpha", reloaded.Projects()[0].Name)

	active, ok := reloaded.ActiveEntry()
	require.True(t, ok)
	assert.Equal(t, p.ID, active.Project())
	assert.Equal(t, int64(600), reloaded.ElapsedSeconds())
}

func TestFileBackedReload(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: t0}
	opts := tracker.Options{Clock: clock.Now, Logger: log.New(io.Discard, "", 0), KV: storage.NewFileKV(dir)}

	tr := tracker.New(opts)
	_, err := tr.Start("")
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = tr.Stop()
	require.NoError(t, err)

	again := tracker.New(tracker.Options{Clock: clock.Now, Logger: opts.Logger, KV: storage.NewFileKV(dir)})
	entries := again.Entries()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].IsOpen())
	assert.InDelta(t, 60.0, again.TodayTotalMinutes(), 1e-9)
}

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	clock := &fakeClock{now: t0}
	var buf bytes.Buffer
	tr := tracker.New(tracker.Options{Clock: clock.Now, Logger: log.New(&buf, "", 0), KV: failingKV{}})

	_, err := tr.AddProject("Alpha", "#0D9488", nil)
	require.NoError(t, err)
	_, err = tr.Start("")
	require.NoError(t, err)

	assert.Len(t, tr.Projects(), 1)
	assert.Equal(t, model.StateRunning, tr.TimerState())
	assert.Contains(t, buf.String(), "persisting projects")
	assert.Contains(t, buf.String(), "persisting entries")
}

func TestAuthenticatedModePublishesInsteadOfSaving(t *testing.T) {
	tr, clock, kv := newTracker(t)
	pub := &recordingPublisher{}
	tr.SetPublisher(pub)
	assert.True(t, tr.Authenticated())

	p, _ := tr.AddProject("Alpha", "#0D9488", nil)
	e, _ := tr.Start(p.ID)
	clock.Advance(time.Minute)
	_, _ = tr.Stop()
	require.NoError(t, tr.DeleteEntry(e.ID))
	require.NoError(t, tr.DeleteProject(p.ID))

	_, ok, _ := kv.Get(storage.KeyEntries)
	assert.False(t, ok, "local storage must not be written while authenticated")
	_, ok, _ = kv.Get(storage.KeyProjects)
	assert.False(t, ok)

	require.Len(t, pub.projects, 1)
	require.Len(t, pub.entries, 2)
	assert.Nil(t, pub.entries[0].EndAt)
	assert.NotNil(t, pub.entries[1].EndAt)
	assert.Equal(t, []string{e.ID}, pub.removedEntries)
	assert.Equal(t, []string{p.ID}, pub.removedProjects)
}

func TestPublishedEntriesAreCopies(t *testing.T) {
	tr, clock, _ := newTracker(t)
	pub := &recordingPublisher{}
	tr.SetPublisher(pub)

	_, _ = tr.Start("")
	clock.Advance(time.Minute)
	_, _ = tr.Pause()

	require.Len(t, pub.entries, 2)
	assert.Empty(t, pub.entries[0].Pauses, "earlier push must not observe later mutations")
}

func TestReplaceAllSortsAndNotifies(t *testing.T) {
	tr, _, _ := newTracker(t)
	calls := 0
	tr.OnChange(func() { calls++ })

	end := t0.Add(time.Hour)
	tr.ReplaceAll(
		[]model.Project{
			{ID: "b", Name: "B", Color: "#000000", CreatedAt: t0.Add(time.Hour)},
			{ID: "a", Name: "A", Color: "#000000", CreatedAt: t0},
		},
		[]model.TimeEntry{
			{ID: "old", StartAt: t0, EndAt: &end},
			{ID: "new", StartAt: t0.Add(2 * time.Hour)},
		},
	)

	assert.Equal(t, 1, calls)
	projects := tr.Projects()
	assert.Equal(t, "a", projects[0].ID)
	assert.Equal(t, "b", projects[1].ID)
	entries := tr.Entries()
	assert.Equal(t, "new", entries[0].ID)
	assert.Equal(t, "old", entries[1].ID)

	active, ok := tr.ActiveEntry()
	require.True(t, ok)
	assert.Equal(t, "new", active.ID)
}

func TestActiveEntryFirstFoundWins(t *testing.T) {
	tr, _, _ := newTracker(t)
	tr.ReplaceAll(nil, []model.TimeEntry{
		{ID: "later", StartAt: t0.Add(time.Hour)},
		{ID: "earlier", StartAt: t0},
	})

	active, ok := tr.ActiveEntry()
	require.True(t, ok)
	assert.Equal(t, "later", active.ID)
}

func TestOnChangeCalledAfterMutations(t *testing.T) {
	tr, _, _ := newTracker(t)
	calls := 0
	tr.OnChange(func() {
		calls++
		_ = tr.TimerState() // listeners may read back without deadlocking
	})

	_, _ = tr.Start("")
	_, _ = tr.Start("") // rejected, no notification
	_, _ = tr.Pause()
	assert.Equal(t, 2, calls)
}
