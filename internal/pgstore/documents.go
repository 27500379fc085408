package pgstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/replication"
	"github.com/Tiliavir/sa3aty/internal/tracker"
)

const upsertQuery = `
	INSERT INTO documents (user_id, collection, id, body, updated_at)
	VALUES ($1, $2, $3, $4::jsonb, NOW())
	ON CONFLICT (user_id, collection, id)
	DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()
`

const deleteQuery = `DELETE FROM documents WHERE user_id = $1 AND collection = $2 AND id = $3`

const notifyQuery = `SELECT pg_notify($1, $2)`

// UserStore implements replication.Remote for one user.
type UserStore struct {
	db     *DB
	userID string
}

var _ replication.Remote = (*UserStore)(nil)

// write runs fn in a transaction and notifies subscribers on commit.
func (s *UserStore) write(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, s.db.Pool, func(tx pgx.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, notifyQuery, NotifyChannel, s.userID); err != nil {
			return fmt.Errorf("failed to notify: %w", err)
		}
		return nil
	})
}

func (s *UserStore) upsert(ctx context.Context, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", collection, id, err)
	}
	return s.write(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertQuery, s.userID, collection, id, string(body)); err != nil {
			return fmt.Errorf("failed to upsert %s %s: %w", collection, id, err)
		}
		return nil
	})
}

func (s *UserStore) remove(ctx context.Context, collection, id string) error {
	return s.write(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteQuery, s.userID, collection, id); err != nil {
			return fmt.Errorf("failed to delete %s %s: %w", collection, id, err)
		}
		return nil
	})
}

func (s *UserStore) UpsertProject(ctx context.Context, p model.Project) error {
	return s.upsert(ctx, collectionProjects, p.ID, p)
}

func (s *UserStore) DeleteProject(ctx context.Context, id string) error {
	return s.remove(ctx, collectionProjects, id)
}

func (s *UserStore) UpsertEntry(ctx context.Context, e model.TimeEntry) error {
	return s.upsert(ctx, collectionEntries, e.ID, e)
}

func (s *UserStore) DeleteEntry(ctx context.Context, id string) error {
	return s.remove(ctx, collectionEntries, id)
}

type document struct {
	Collection string
	ID         string
	Body       []byte
}

func encodeAll(projects []model.Project, entries []model.TimeEntry) ([]document, error) {
	docs := make([]document, 0, len(projects)+len(entries))
	for _, p := range projects {
		body, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to encode project %s: %w", p.ID, err)
		}
		docs = append(docs, document{Collection: collectionProjects, ID: p.ID, Body: body})
	}
	for _, e := range entries {
		body, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("failed to encode entry %s: %w", e.ID, err)
		}
		docs = append(docs, document{Collection: collectionEntries, ID: e.ID, Body: body})
	}
	return docs, nil
}

// BulkWrite upserts all documents in one transaction.
func (s *UserStore) BulkWrite(ctx context.Context, projects []model.Project, entries []model.TimeEntry) error {
	docs, err := encodeAll(projects, entries)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	start := time.Now()
	defer func() {
		s.db.logger.Printf("BulkWrite: duration=%v count=%d user=%s", time.Since(start), len(docs), s.userID)
	}()

	return s.write(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, d := range docs {
			batch.Queue(upsertQuery, s.userID, d.Collection, d.ID, string(d.Body))
		}
		results := tx.SendBatch(ctx, batch)
		for i := range docs {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return &BatchWriteError{FailedIndex: i, Total: len(docs), Err: err}
			}
		}
		return results.Close()
	})
}

// Fetch reads both collections, projects oldest first and entries newest
// first.
func (s *UserStore) Fetch(ctx context.Context) (replication.Snapshot, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT collection, id, body FROM documents WHERE user_id = $1`, s.userID)
	if err != nil {
		return replication.Snapshot{}, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []document
	for rows.Next() {
		var d document
		if err := rows.Scan(&d.Collection, &d.ID, &d.Body); err != nil {
			return replication.Snapshot{}, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return replication.Snapshot{}, fmt.Errorf("error iterating documents: %w", err)
	}
	return decodeAll(docs)
}

func decodeAll(docs []document) (replication.Snapshot, error) {
	snap := replication.Snapshot{Projects: []model.Project{}, Entries: []model.TimeEntry{}}
	for _, d := range docs {
		switch d.Collection {
		case collectionProjects:
			var p model.Project
			if err := json.Unmarshal(d.Body, &p); err != nil {
				return replication.Snapshot{}, fmt.Errorf("failed to decode project %s: %w", d.ID, err)
			}
			snap.Projects = append(snap.Projects, p)
		case collectionEntries:
			var e model.TimeEntry
			if err := json.Unmarshal(d.Body, &e); err != nil {
				return replication.Snapshot{}, fmt.Errorf("failed to decode entry %s: %w", d.ID, err)
			}
			if e.Pauses == nil {
				e.Pauses = []model.TimePause{}
			}
			snap.Entries = append(snap.Entries, e)
		}
	}
	tracker.SortProjects(snap.Projects)
	tracker.SortEntries(snap.Entries)
	return snap, nil
}

// Subscribe delivers the current collections, then a fresh copy after every
// committed write for this user, until ctx is done.
func (s *UserStore) Subscribe(ctx context.Context, fn func(replication.Snapshot)) error {
	conn, err := s.db.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listener connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{NotifyChannel}.Sanitize()); err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	snap, err := s.Fetch(ctx)
	if err != nil {
		return err
	}
	fn(snap)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("waiting for notification: %w", err)
		}
		if n.Payload != s.userID {
			continue
		}
		snap, err := s.Fetch(ctx)
		if err != nil {
			s.db.logger.Printf("Subscribe: refetch for %s failed: %v", s.userID, err)
			continue
		}
		fn(snap)
	}
}
