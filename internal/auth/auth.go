// Package auth signs the user in with the OAuth2 device code flow and keeps
// the resulting token and session under the data directory.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

var defaultScopes = []string{"openid", "email", "offline_access"}

// Config names the identity provider endpoints.
type Config struct {
	ClientID      string
	DeviceAuthURL string
	TokenURL      string
	UserInfoURL   string
	Scopes        []string
}

// Session identifies the signed-in user. UserID keys the remote collections.
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// ErrNotConfigured is returned by Login when no client id or endpoints are set.
var ErrNotConfigured = errors.New("authentication is not configured")

type Authenticator struct {
	cfg    Config
	dir    string
	out    io.Writer
	logger *log.Logger
}

// New returns an Authenticator storing its files in <dataDir>/auth.
// Sign-in prompts go to out.
func New(cfg Config, dataDir string, out io.Writer, logger *log.Logger) *Authenticator {
	if logger == nil {
		logger = log.Default()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Authenticator{cfg: cfg, dir: filepath.Join(dataDir, "auth"), out: out, logger: logger}
}

func (a *Authenticator) tokenPath() string   { return filepath.Join(a.dir, "token.json") }
func (a *Authenticator) sessionPath() string { return filepath.Join(a.dir, "session.json") }

func (a *Authenticator) oauth2Config() *oauth2.Config {
	scopes := a.cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}
	return &oauth2.Config{
		ClientID: a.cfg.ClientID,
		Scopes:   scopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: a.cfg.DeviceAuthURL,
			TokenURL:      a.cfg.TokenURL,
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

func (a *Authenticator) configured() bool {
	return a.cfg.ClientID != "" && a.cfg.DeviceAuthURL != "" && a.cfg.TokenURL != "" && a.cfg.UserInfoURL != ""
}

// Login runs the device code flow, resolves the user via the userinfo
// endpoint and stores both token and session.
func (a *Authenticator) Login(ctx context.Context) (*Session, error) {
	if !a.configured() {
		return nil, ErrNotConfigured
	}
	cfg := a.oauth2Config()

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(a.out, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(a.out, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(a.out)

	tok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := a.saveJSON(a.tokenPath(), tok); err != nil {
		return nil, err
	}

	session, err := a.fetchUserInfo(ctx, cfg, tok)
	if err != nil {
		return nil, err
	}
	if err := a.saveJSON(a.sessionPath(), session); err != nil {
		return nil, err
	}
	a.logger.Printf("Signed in as %s", session.UserID)
	return session, nil
}

// CurrentSession returns the stored session, or nil when signed out.
func (a *Authenticator) CurrentSession() (*Session, error) {
	var s Session
	ok, err := a.loadJSON(a.sessionPath(), &s)
	if err != nil || !ok {
		return nil, err
	}
	if s.UserID == "" {
		return nil, nil
	}
	return &s, nil
}

// Logout removes the stored token and session. Signing out twice is not an error.
func (a *Authenticator) Logout() error {
	for _, p := range []string{a.tokenPath(), a.sessionPath()} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}
	return nil
}

func (a *Authenticator) loadJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("corrupt file (delete %s to re-authenticate): %w", path, err)
	}
	return true, nil
}

func (a *Authenticator) saveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", filepath.Base(path), err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
