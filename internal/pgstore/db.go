// Package pgstore is a remote document store on Postgres. Each user owns two
// collections of JSON documents, projects and entries, keyed by document id.
package pgstore

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	collectionProjects = "projects"
	collectionEntries  = "entries"

	// NotifyChannel carries the user id of every write.
	NotifyChannel = "sa3aty_documents"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	user_id    TEXT NOT NULL,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_user ON documents(user_id, collection);
`

type DB struct {
	Pool   *pgxpool.Pool
	logger *log.Logger
}

// BatchWriteError reports which document of a bulk write failed.
type BatchWriteError struct {
	FailedIndex int
	Total       int
	Err         error
}

func (e *BatchWriteError) Error() string {
	return fmt.Sprintf("failed to write document at index %d/%d: %v", e.FailedIndex, e.Total, e.Err)
}

func (e *BatchWriteError) Unwrap() error {
	return e.Err
}

// Connect opens and pings a pool. A nil logger uses log.Default().
func Connect(ctx context.Context, databaseURL string, logger *log.Logger) (*DB, error) {
	if logger == nil {
		logger = log.Default()
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 8
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Println("Database connection established")
	return &DB{Pool: pool, logger: logger}, nil
}

// Migrate creates the documents table if needed.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// ForUser returns the document collections owned by userID.
func (db *DB) ForUser(userID string) *UserStore {
	return &UserStore{db: db, userID: userID}
}

func (db *DB) Close() {
	db.Pool.Close()
	db.logger.Println("Database connection closed")
}
