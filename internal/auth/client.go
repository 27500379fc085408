package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	a  *Authenticator
	ts oauth2.TokenSource
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	if err := s.a.saveJSON(s.a.tokenPath(), tok); err != nil {
		s.a.logger.Printf("could not save refreshed token: %v", err)
	}
	return tok, nil
}

// Client returns an HTTP client that sends the stored token, refreshing it
// when it expires. It fails when nobody is signed in.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	var tok oauth2.Token
	ok, err := a.loadJSON(a.tokenPath(), &tok)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("not signed in, run `sa3aty login`")
	}
	cfg := a.oauth2Config()
	return oauth2.NewClient(ctx, &savingTokenSource{a: a, ts: cfg.TokenSource(ctx, &tok)}), nil
}

type userInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

func (a *Authenticator) fetchUserInfo(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (*Session, error) {
	client := oauth2.NewClient(ctx, &savingTokenSource{a: a, ts: cfg.TokenSource(ctx, tok)})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo error %d: %s", resp.StatusCode, string(body))
	}

	var info userInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decoding userinfo response: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("userinfo response has no subject")
	}
	return &Session{UserID: info.Sub, Email: info.Email}, nil
}
