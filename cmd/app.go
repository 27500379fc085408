package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Tiliavir/sa3aty/internal/auth"
	"github.com/Tiliavir/sa3aty/internal/config"
	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/pgstore"
	"github.com/Tiliavir/sa3aty/internal/replication"
	"github.com/Tiliavir/sa3aty/internal/storage"
	"github.com/Tiliavir/sa3aty/internal/tracker"
)

var errUsage = errors.New("usage error")

const connectTimeout = 10 * time.Second

// app is everything a command needs. In remote mode rep and db are set and
// the tracker publishes instead of writing local snapshots.
type app struct {
	cfg     config.Config
	logger  *log.Logger
	kv      *storage.FileKV
	auth    *auth.Authenticator
	session *auth.Session
	db      *pgstore.DB
	rep     *replication.Replicator
	tr      *tracker.Tracker

	stopFollow func()
}

func newLogger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "sa3aty: ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

func authConfig(cfg config.Config) auth.Config {
	return auth.Config{
		ClientID:      cfg.Auth.ClientID,
		DeviceAuthURL: cfg.Auth.DeviceAuthURL,
		TokenURL:      cfg.Auth.TokenURL,
		UserInfoURL:   cfg.Auth.UserInfoURL,
		Scopes:        cfg.Auth.Scopes,
	}
}

// loadApp reads config and the session without opening the tracker.
func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger()
	a := &app{
		cfg:    cfg,
		logger: logger,
		kv:     storage.NewFileKV(cfg.DataDir),
		auth:   auth.New(authConfig(cfg), cfg.DataDir, os.Stdout, logger),
	}
	a.session, err = a.auth.CurrentSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		a.session = nil
	}
	return a, nil
}

// connect opens the remote store for the signed-in user.
func (a *app) connect(ctx context.Context) error {
	if a.session == nil {
		return fmt.Errorf("not signed in, run `sa3aty login`: %w", errUsage)
	}
	if a.cfg.Remote.DatabaseURL == "" {
		return fmt.Errorf("remote.database_url is not configured: %w", errUsage)
	}
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	db, err := pgstore.Connect(cctx, a.cfg.Remote.DatabaseURL, a.logger)
	if err != nil {
		return err
	}
	if err := db.Migrate(cctx); err != nil {
		db.Close()
		return err
	}
	a.db = db
	a.rep = replication.New(db.ForUser(a.session.UserID), a.logger)
	return nil
}

// openApp builds the tracker: remote-backed when signed in and a database is
// configured, local otherwise. An unreachable remote falls back to local.
func openApp(ctx context.Context) (*app, error) {
	a, err := loadApp()
	if err != nil {
		return nil, err
	}

	if a.session != nil && a.cfg.Remote.DatabaseURL != "" {
		if err := a.connect(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: remote unavailable, using local data: %v\n", err)
		} else {
			a.tr = tracker.New(tracker.Options{Logger: a.logger})
			lctx, cancel := context.WithTimeout(ctx, connectTimeout)
			defer cancel()
			if err := a.rep.Open(lctx, a.kv, a.session.UserID, a.tr); err != nil {
				a.close()
				return nil, err
			}
			a.tr.SetPublisher(a.rep)
			return a, nil
		}
	}

	a.tr = tracker.New(tracker.Options{Logger: a.logger, KV: a.kv})
	return a, nil
}

// follow mirrors remote changes into the tracker until close. It is a no-op
// in local mode.
func (a *app) follow(ctx context.Context) {
	if a.rep == nil {
		return
	}
	a.stopFollow = runFollower(ctx, func(ctx context.Context) error {
		return a.rep.Follow(ctx, a.tr)
	}, a.logger)
}

// runFollower runs fn in the background. The returned stop cancels fn's
// context and blocks until fn has returned.
func runFollower(ctx context.Context, fn func(context.Context) error, logger *log.Logger) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := fn(ctx); err != nil {
			logger.Printf("follow stopped: %v", err)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// close ends the subscription and waits for in-flight pushes before dropping
// the connection. The pool cannot close while a listener holds a connection.
func (a *app) close() {
	if a.stopFollow != nil {
		a.stopFollow()
		a.stopFollow = nil
	}
	if a.rep != nil {
		a.rep.Wait()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// displayNames labels entries without a resolvable project.
type displayNames struct {
	tr *tracker.Tracker
}

func (d displayNames) ProjectName(e model.TimeEntry) string {
	if name := d.tr.ProjectName(e); name != "" {
		return name
	}
	return "(no project)"
}

// resolveProject maps a --project value (id or name) to an id. Empty stays empty.
func resolveProject(tr *tracker.Tracker, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", nil
	}
	p, ok := tr.FindProject(ref)
	if !ok {
		return "", fmt.Errorf("project %q: %w", ref, tracker.ErrProjectNotFound)
	}
	return p.ID, nil
}

// resolveEntry accepts a full id or a unique id prefix as printed by `list`.
func resolveEntry(tr *tracker.Tracker, ref string) (model.TimeEntry, error) {
	if e, ok := tr.Entry(ref); ok {
		return e, nil
	}
	var (
		match model.TimeEntry
		n     int
	)
	for _, e := range tr.Entries() {
		if ref != "" && strings.HasPrefix(e.ID, ref) {
			match = e
			n++
		}
	}
	switch n {
	case 0:
		return model.TimeEntry{}, fmt.Errorf("entry %q: %w", ref, tracker.ErrEntryNotFound)
	case 1:
		return match, nil
	default:
		return model.TimeEntry{}, fmt.Errorf("entry prefix %q is ambiguous (%d matches): %w", ref, n, errUsage)
	}
}

// parseWhen accepts "15:04" (today), "2006-01-02 15:04" or RFC 3339.
func parseWhen(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("15:04", s, now.Location()); err == nil {
		y, m, d := now.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, now.Location()), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use HH:MM, \"YYYY-MM-DD HH:MM\" or RFC 3339): %w", s, errUsage)
}
