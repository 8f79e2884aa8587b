// Package hfauth exchanges a Hugging Face access token with the hub's
// identity endpoint and hands the resulting credentials to git.
package hfauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultEndpoint is the public hub.
const DefaultEndpoint = "https://huggingface.co"

const (
	whoamiPath   = "/api/whoami-v2"
	userAgent    = "hfquant/0.1"
	loginTimeout = 30 * time.Second
)

// ErrNoToken is returned by Login when no token was configured.
var ErrNoToken = errors.New("hugging face token not set")

// StatusError is a non-2xx answer from the identity endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("whoami: HTTP %d", e.Code)
	}
	return fmt.Sprintf("whoami: HTTP %d: %s", e.Code, e.Body)
}

// IsUnauthorized reports whether err is a rejected token.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden)
}

// Identity is the subset of the whoami payload we log.
type Identity struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Fullname string `json:"fullname,omitempty"`
}

// Session is an established, token-backed identity.
type Session struct {
	Endpoint string
	Token    string
	Identity Identity
}

// GitEnv returns environment variables that make git send the token as a
// bearer header to the hub, so clones issued afterwards are authenticated.
// The entry is appended after any GIT_CONFIG_* entries already in the
// process environment.
func (s *Session) GitEnv() map[string]string {
	return s.gitEnv(os.Getenv)
}

func (s *Session) gitEnv(getenv func(string) string) map[string]string {
	if s == nil || s.Token == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(getenv("GIT_CONFIG_COUNT")))
	if err != nil || n < 0 {
		n = 0
	}
	base := strings.TrimRight(s.Endpoint, "/") + "/"
	i := strconv.Itoa(n)
	return map[string]string{
		"GIT_CONFIG_COUNT":      strconv.Itoa(n + 1),
		"GIT_CONFIG_KEY_" + i:   "http." + base + ".extraheader",
		"GIT_CONFIG_VALUE_" + i: "Authorization: Bearer " + s.Token,
	}
}

// Client talks to the identity endpoint.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// NewClient returns a client for endpoint, defaulting to the public hub.
func NewClient(endpoint string) *Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	// Timeout=0: Login bounds the call with its own context deadline.
	return &Client{Endpoint: strings.TrimRight(endpoint, "/"), HTTP: &http.Client{Timeout: 0}}
}

// Login validates token against the identity endpoint. There are no retries.
func (c *Client) Login(ctx context.Context, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoToken
	}
	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+whoamiPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whoami: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("whoami: invalid JSON: %w", err)
	}
	return &Session{Endpoint: c.Endpoint, Token: token, Identity: id}, nil
}
