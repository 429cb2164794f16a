package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New("/tmp/x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != BackendRESTAPI {
		t.Errorf("expected backend %q, got %q", BackendRESTAPI, cfg.Backend)
	}
	if cfg.APIURL != "http://localhost:1009" {
		t.Errorf("unexpected api url %q", cfg.APIURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.Timeout)
	}
	if cfg.TokenPath() != filepath.Join("/tmp/x", "token.json") {
		t.Errorf("unexpected token path %q", cfg.TokenPath())
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/xdg", "taskcard") {
		t.Errorf("unexpected dir %q", got)
	}
}

func TestLoad_NoFileKeepsDefaults(t *testing.T) {
	cfg, _ := New(t.TempDir())
	if err := cfg.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != BackendRESTAPI || cfg.LogoutPolicy != "keep" {
		t.Errorf("defaults changed: %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	content := "backend: googletasks\napi_url: http://example.test\ntimeout: 2s\nlogout_policy: clear\n"
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, _ := New(dir)
	if err := cfg.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != BackendGoogleTasks {
		t.Errorf("expected googletasks, got %q", cfg.Backend)
	}
	if cfg.APIURL != "http://example.test" {
		t.Errorf("unexpected api url %q", cfg.APIURL)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("expected 2s, got %v", cfg.Timeout)
	}
	if cfg.LogoutPolicy != "clear" {
		t.Errorf("expected clear, got %q", cfg.LogoutPolicy)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte("api_url: http://file.test\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKCARD_API_URL", "http://env.test")

	cfg, _ := New(dir)
	if err := cfg.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://env.test" {
		t.Errorf("expected env override, got %q", cfg.APIURL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	for name, content := range map[string]string{
		"backend": "backend: carrier-pigeon\n",
		"timeout": "timeout: -1s\n",
		"yaml":    "backend: [unterminated\n",
	} {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		cfg, _ := New(dir)
		if err := cfg.Load(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
