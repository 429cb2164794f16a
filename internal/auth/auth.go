// Package auth provides the current authentication state and bearer credential.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// State is the authentication state that selects local or remote behavior.
type State int

const (
	// Unauthenticated serves every operation from local state only.
	Unauthenticated State = iota

	// Authenticated backs task operations with the remote API.
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Credentials is a snapshot of the provider's two observable values.
type Credentials struct {
	IsAuthenticated bool
	AccessToken     string
}

// State returns the authentication state of the snapshot.
func (c Credentials) State() State {
	if c.IsAuthenticated {
		return Authenticated
	}
	return Unauthenticated
}

// Provider exposes the stored OAuth token as the authentication state.
// It also implements oauth2.TokenSource so remote clients can attach the
// bearer header through oauth2.Transport.
type Provider struct {
	mu        sync.Mutex
	path      string
	token     *oauth2.Token
	listeners map[int]func(Credentials)
	nextID    int
}

// NewProvider loads the token stored at path.
// A missing file means unauthenticated; an unparsable file is an error.
func NewProvider(path string) (*Provider, error) {
	p := &Provider{path: path, listeners: make(map[int]func(Credentials))}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token file: %w", err)
	}
	p.token = &token
	return p, nil
}

// IsAuthenticated reports whether an access token is present.
func (p *Provider) IsAuthenticated() bool {
	return p.Credentials().IsAuthenticated
}

// AccessToken returns the stored access token, or "" if none.
func (p *Provider) AccessToken() string {
	return p.Credentials().AccessToken
}

// State returns the current authentication state.
func (p *Provider) State() State {
	return p.Credentials().State()
}

// Credentials returns a snapshot of the current values.
func (p *Provider) Credentials() Credentials {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.credentialsLocked()
}

func (p *Provider) credentialsLocked() Credentials {
	if p.token == nil || p.token.AccessToken == "" {
		return Credentials{}
	}
	return Credentials{IsAuthenticated: true, AccessToken: p.token.AccessToken}
}

// Token implements oauth2.TokenSource.
// A missing credential is not an error: the request goes out with an empty
// bearer and the server rejects it.
func (p *Provider) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token == nil {
		return &oauth2.Token{TokenType: "Bearer"}, nil
	}
	t := *p.token
	return &t, nil
}

// Save stores token with mode 0600 and notifies subscribers.
func (p *Provider) Save(token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	t := *token
	p.mu.Lock()
	p.token = &t
	p.mu.Unlock()
	p.notify()
	return nil
}

// Clear removes the stored token and notifies subscribers.
// Clearing an absent token is not an error.
func (p *Provider) Clear() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	p.mu.Lock()
	p.token = nil
	p.mu.Unlock()
	p.notify()
	return nil
}

// Subscribe registers fn to be called with the new credentials after every
// Save or Clear. The returned func removes the subscription.
func (p *Provider) Subscribe(fn func(Credentials)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *Provider) notify() {
	p.mu.Lock()
	creds := p.credentialsLocked()
	fns := make([]func(Credentials), 0, len(p.listeners))
	for i := 0; i < p.nextID; i++ {
		if fn, ok := p.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(creds)
	}
}
