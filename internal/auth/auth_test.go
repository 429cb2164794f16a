package auth

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/oauth2"
)

func TestNewProvider_MissingTokenIsUnauthenticated(t *testing.T) {
	p, err := NewProvider(filepath.Join(t.TempDir(), "token.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsAuthenticated() {
		t.Error("expected unauthenticated")
	}
	if p.State() != Unauthenticated {
		t.Errorf("expected %v, got %v", Unauthenticated, p.State())
	}
	if p.AccessToken() != "" {
		t.Errorf("expected empty access token, got %q", p.AccessToken())
	}
}

func TestNewProvider_InvalidTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewProvider(path); err == nil {
		t.Fatal("expected error for invalid token file")
	}
}

func TestProvider_LoadsStoredToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte(`{"access_token":"abc","token_type":"Bearer"}`), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := NewProvider(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsAuthenticated() {
		t.Error("expected authenticated")
	}
	if p.AccessToken() != "abc" {
		t.Errorf("expected access token abc, got %q", p.AccessToken())
	}
}

func TestProvider_TokenWithoutCredentialIsNotAnError(t *testing.T) {
	p, _ := NewProvider(filepath.Join(t.TempDir(), "token.json"))

	tok, err := p.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "" {
		t.Errorf("expected empty access token, got %q", tok.AccessToken)
	}
	if tok.Type() != "Bearer" {
		t.Errorf("expected Bearer type, got %q", tok.Type())
	}
}

func TestProvider_SaveAndClearNotifySubscribers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "token.json")
	p, _ := NewProvider(path)

	var seen []Credentials
	unsubscribe := p.Subscribe(func(c Credentials) { seen = append(seen, c) })

	if err := p.Save(&oauth2.Token{AccessToken: "t1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("token not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	if err := p.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("token file should have been removed")
	}

	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if !seen[0].IsAuthenticated || seen[0].AccessToken != "t1" {
		t.Errorf("unexpected first notification: %+v", seen[0])
	}
	if seen[1].IsAuthenticated {
		t.Errorf("expected unauthenticated after clear, got %+v", seen[1])
	}

	unsubscribe()
	if err := p.Save(&oauth2.Token{AccessToken: "t2"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("expected no notification after unsubscribe, got %d", len(seen))
	}
}
