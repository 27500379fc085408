// Package replication pushes local changes to a remote document store and
// streams remote snapshots back into the tracker. Pushes are fire-and-forget
// full-document overwrites keyed by id, so the last network write wins.
package replication

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/storage"
)

// Snapshot is the full current content of a user's remote collections.
type Snapshot struct {
	Projects []model.Project
	Entries  []model.TimeEntry
}

// Remote is a per-user document store.
type Remote interface {
	UpsertProject(ctx context.Context, p model.Project) error
	DeleteProject(ctx context.Context, id string) error
	UpsertEntry(ctx context.Context, e model.TimeEntry) error
	DeleteEntry(ctx context.Context, id string) error
	BulkWrite(ctx context.Context, projects []model.Project, entries []model.TimeEntry) error
	Fetch(ctx context.Context) (Snapshot, error)
	// Subscribe calls fn with the full collections now and after every remote
	// change until ctx is done.
	Subscribe(ctx context.Context, fn func(Snapshot)) error
}

// Sink receives remote snapshots; *tracker.Tracker implements it.
type Sink interface {
	ReplaceAll(projects []model.Project, entries []model.TimeEntry)
}

// DefaultPushTimeout bounds a single push.
const DefaultPushTimeout = 15 * time.Second

// Replicator implements tracker.Publisher on top of a Remote.
type Replicator struct {
	remote  Remote
	logger  *log.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// New returns a Replicator for remote. A nil logger uses log.Default().
func New(remote Remote, logger *log.Logger) *Replicator {
	if logger == nil {
		logger = log.Default()
	}
	return &Replicator{remote: remote, logger: logger, timeout: DefaultPushTimeout}
}

// push runs fn in the background. Failures are logged and dropped.
func (r *Replicator) push(op string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			r.logger.Printf("replication: %s failed: %v", op, err)
		}
	}()
}

func (r *Replicator) PublishProject(p model.Project) {
	r.push("upsert project "+p.ID, func(ctx context.Context) error {
		return r.remote.UpsertProject(ctx, p)
	})
}

func (r *Replicator) RemoveProject(id string) {
	r.push("delete project "+id, func(ctx context.Context) error {
		return r.remote.DeleteProject(ctx, id)
	})
}

func (r *Replicator) PublishEntry(e model.TimeEntry) {
	r.push("upsert entry "+e.ID, func(ctx context.Context) error {
		return r.remote.UpsertEntry(ctx, e)
	})
}

func (r *Replicator) RemoveEntry(id string) {
	r.push("delete entry "+id, func(ctx context.Context) error {
		return r.remote.DeleteEntry(ctx, id)
	})
}

// Wait blocks until all in-flight pushes have finished.
func (r *Replicator) Wait() {
	r.wg.Wait()
}

// Load replaces the sink's collections with the current remote content.
func (r *Replicator) Load(ctx context.Context, sink Sink) error {
	snap, err := r.remote.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching remote snapshot: %w", err)
	}
	sink.ReplaceAll(snap.Projects, snap.Entries)
	return nil
}

// Open readies sink for userID's first remote session on this device. Local
// data in kv is pushed first if no migration has succeeded yet, then the
// remote snapshot is loaded. A failed push is logged and retried on the next
// Open.
func (r *Replicator) Open(ctx context.Context, kv storage.KV, userID string, sink Sink) error {
	_, done, err := kv.Get(migrationKey(userID))
	if err != nil {
		r.logger.Printf("replication: reading migration marker: %v", err)
	}
	if err == nil && !done {
		projects, entries := storage.LoadSnapshot(kv, r.logger)
		if _, err := r.Migrate(ctx, kv, userID, false, projects, entries); err != nil {
			r.logger.Printf("replication: migration deferred: %v", err)
		}
	}
	return r.Load(ctx, sink)
}

// Follow streams remote snapshots into sink until ctx is done.
func (r *Replicator) Follow(ctx context.Context, sink Sink) error {
	err := r.remote.Subscribe(ctx, func(s Snapshot) {
		sink.ReplaceAll(s.Projects, s.Entries)
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("remote subscription: %w", err)
	}
	return nil
}

// MigrationResult holds counters for a migration run.
type MigrationResult struct {
	Projects int
	Entries  int
	Skipped  bool
}

func migrationKey(userID string) string {
	return "migrated-" + userID
}

// Migrate bulk-pushes local-only records the first time userID signs in. The
// completion marker lives in kv; later calls are skipped unless force is set.
func (r *Replicator) Migrate(ctx context.Context, kv storage.KV, userID string, force bool, projects []model.Project, entries []model.TimeEntry) (MigrationResult, error) {
	if !force {
		_, done, err := kv.Get(migrationKey(userID))
		if err != nil {
			return MigrationResult{}, fmt.Errorf("reading migration marker: %w", err)
		}
		if done {
			return MigrationResult{Skipped: true}, nil
		}
	}
	if len(projects) > 0 || len(entries) > 0 {
		if err := r.remote.BulkWrite(ctx, projects, entries); err != nil {
			return MigrationResult{}, fmt.Errorf("bulk write: %w", err)
		}
	}
	if err := kv.Set(migrationKey(userID), time.Now().UTC().Format(time.RFC3339)); err != nil {
		r.logger.Printf("replication: saving migration marker: %v", err)
	}
	r.logger.Printf("replication: migrated %d projects and %d entries for %s", len(projects), len(entries), userID)
	return MigrationResult{Projects: len(projects), Entries: len(entries)}, nil
}
