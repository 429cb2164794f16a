package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"taskcard/internal/auth"
	"taskcard/internal/cli"
	"taskcard/internal/commands"
	"taskcard/internal/config"
	"taskcard/internal/devapi"
	"taskcard/internal/exitcode"
	"taskcard/internal/store"
	"taskcard/internal/tasksync"
)

// memFactory returns a factory handing out sessions over one in-memory store.
func memFactory(t *testing.T) cli.SessionFactory {
	t.Helper()
	kv := store.NewMemKV()
	return func(ctx context.Context, cfg *config.Config, logger *log.Logger, errOut io.Writer) (*commands.Session, error) {
		p, err := auth.NewProvider(cfg.TokenPath())
		if err != nil {
			return nil, err
		}
		s, err := tasksync.New(store.NewTaskStore(kv, logger), nil, tasksync.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return &commands.Session{Sync: s, Auth: p, Logger: logger}, nil
	}
}

func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = d.Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, memFactory(t))

	_, stderr, code := run(t, d, "unknowncmd")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown command: unknowncmd\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, memFactory(t))

	_, stderr, code := run(t, d, "--quiet")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown command: --quiet\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_HelpAndVersionNeedNoSession(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, func(context.Context, *config.Config, *log.Logger, io.Writer) (*commands.Session, error) {
		t.Fatal("factory must not be called")
		return nil, nil
	})

	stdout, _, code := run(t, d, "help")
	if code != exitcode.Success || !strings.Contains(stdout, "Usage:") {
		t.Errorf("help: code %d, output %q", code, stdout)
	}
	stdout, _, code = run(t, d, "version")
	if code != exitcode.Success || stdout != "taskcard "+commands.Version+"\n" {
		t.Errorf("version: code %d, output %q", code, stdout)
	}
}

func TestDispatcher_FlagErrors(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, memFactory(t))

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"list", "--bogus"}, "error: unknown flag: -bogus\n"},
		{[]string{"list", "--config"}, "error: flag needs an argument: -config\n"},
		{[]string{"export", "--format"}, "error: flag needs an argument: -format\n"},
	}
	for _, tt := range tests {
		_, stderr, code := run(t, d, tt.args...)
		if code != exitcode.UserError {
			t.Errorf("%v: expected exit code %d, got %d", tt.args, exitcode.UserError, code)
		}
		if stderr != tt.want {
			t.Errorf("%v: expected %q, got %q", tt.args, tt.want, stderr)
		}
	}
}

func TestDispatcher_NoArgsLists(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, memFactory(t))
	dir := t.TempDir()

	if _, stderr, code := run(t, d, "add", "--config", dir, "buy", "milk"); code != exitcode.Success {
		t.Fatalf("add failed: %d %s", code, stderr)
	}

	// No arguments runs list against the default config dir.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	stdout, _, code := run(t, d)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if stdout != "   1  [ ] buy milk\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestDispatcher_InvalidSettings(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, memFactory(t))
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("backend: carrier-pigeon\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, stderr, code := run(t, d, "list", "--config", dir)
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stderr, "error: config error: invalid backend") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FactoryErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{&cli.SetupError{Code: exitcode.StorageError, Err: errors.New("storage error: disk full")}, exitcode.StorageError},
		{errors.New("something else"), exitcode.BackendError},
	}
	for _, tt := range tests {
		d := cli.NewDispatcher(commands.DefaultRegistry, func(context.Context, *config.Config, *log.Logger, io.Writer) (*commands.Session, error) {
			return nil, tt.err
		})
		_, stderr, code := run(t, d, "list", "--config", t.TempDir())
		if code != tt.code {
			t.Errorf("expected exit code %d, got %d", tt.code, code)
		}
		if stderr != "error: "+tt.err.Error()+"\n" {
			t.Errorf("unexpected stderr %q", stderr)
		}
	}
}

func TestDispatcher_DebugLogsToStderr(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, memFactory(t))

	_, stderr, code := run(t, d, "list", "--debug", "--config", t.TempDir())
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if !strings.Contains(stderr, "debug: ") || !strings.Contains(stderr, "backend restapi") {
		t.Errorf("expected debug log, got %q", stderr)
	}

	_, stderr, _ = run(t, d, "list", "--config", t.TempDir())
	if stderr != "" {
		t.Errorf("expected no logs without --debug, got %q", stderr)
	}
}

func TestNewSession_LocalCollectionPersists(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, cli.NewSession)
	dir := t.TempDir()

	for _, args := range [][]string{
		{"add", "--config", dir, "groceries"},
		{"sub", "--config", dir, "add", "1", "milk"},
		{"check", "--config", dir, "1.1"},
	} {
		if _, stderr, code := run(t, d, args...); code != exitcode.Success {
			t.Fatalf("%v failed: %d %s", args, code, stderr)
		}
	}

	stdout, _, code := run(t, d, "list", "--config", dir)
	if code != exitcode.Success {
		t.Fatalf("list failed: %d", code)
	}
	want := "   1  [ ] groceries\n        1.1  [x] milk\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}

	if _, err := os.Stat(filepath.Join(dir, store.TasksKey+".json")); err != nil {
		t.Errorf("expected tasks.json in config dir: %v", err)
	}
}

func TestNewSession_InvalidLogoutPolicy(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, cli.NewSession)
	t.Setenv("TASKCARD_LOGOUT_POLICY", "shred")

	_, stderr, code := run(t, d, "list", "--config", t.TempDir())
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, "invalid logout policy") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestNewSession_AgainstDevAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	key := []byte("integration-key")
	db, err := devapi.Open(filepath.Join(t.TempDir(), "dev.db"))
	if err != nil {
		t.Fatalf("open dev store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	srv := httptest.NewServer(devapi.NewRouter(db, key, nil))
	t.Cleanup(srv.Close)

	if _, err := db.CreateList(context.Background(), "alice", "from server"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	token, err := devapi.IssueToken(key, "alice", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	t.Setenv("TASKCARD_API_URL", srv.URL)
	d := cli.NewDispatcher(commands.DefaultRegistry, cli.NewSession)
	dir := t.TempDir()

	// Offline work before logging in.
	if _, stderr, code := run(t, d, "add", "--config", dir, "offline"); code != exitcode.Success {
		t.Fatalf("add failed: %d %s", code, stderr)
	}

	if _, stderr, code := run(t, d, "login", "--config", dir); code != exitcode.AuthError || !strings.Contains(stderr, "taskcard-devapi token") {
		t.Errorf("login without token: code %d, stderr %q", code, stderr)
	}

	stdout, stderr, code := run(t, d, "login", "--config", dir, "--token", token)
	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("login: code %d, stdout %q, stderr %q", code, stdout, stderr)
	}

	// The fetch replaced the offline collection.
	stdout, _, _ = run(t, d, "list", "--config", dir)
	if stdout != "   1  [ ] from server\n" {
		t.Errorf("after login: %q", stdout)
	}

	if _, stderr, code := run(t, d, "add", "--config", dir, "groceries"); code != exitcode.Success {
		t.Fatalf("add failed: %d %s", code, stderr)
	}
	if _, stderr, code := run(t, d, "check", "--config", dir, "2"); code != exitcode.Success {
		t.Fatalf("check failed: %d %s", code, stderr)
	}
	lists, err := db.Lists(context.Background(), "alice")
	if err != nil {
		t.Fatalf("lists: %v", err)
	}
	if len(lists) != 2 || lists[1].Title != "groceries" || lists[1].IsVisible != 1 {
		t.Errorf("expected groceries checked on the server, got %+v", lists)
	}

	stdout, _, _ = run(t, d, "sync", "--config", dir)
	if stdout != "2 tasks\n" {
		t.Errorf("sync: %q", stdout)
	}

	if stdout, _, code := run(t, d, "logout", "--config", dir); code != exitcode.Success || stdout != "ok\n" {
		t.Errorf("logout: code %d, stdout %q", code, stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, config.TokenFile)); !os.IsNotExist(err) {
		t.Error("expected token removed")
	}

	// keep policy: the collection survives the logout.
	stdout, _, _ = run(t, d, "list", "--config", dir)
	if stdout != "   1  [ ] from server\n   2  [x] groceries\n" {
		t.Errorf("after logout: %q", stdout)
	}
}

func TestNewSession_BackendFailureExitCode(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	t.Setenv("TASKCARD_API_URL", url)
	d := cli.NewDispatcher(commands.DefaultRegistry, cli.NewSession)
	dir := t.TempDir()

	_, stderr, code := run(t, d, "login", "--config", dir, "--token", "abc")
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.BackendError, code, stderr)
	}
	if !strings.HasPrefix(stderr, "error: backend error: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}

	// The credential is kept, so adding now goes remote and fails with one alert.
	_, stderr, code = run(t, d, "add", "--config", dir, "x")
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: An error occurred while adding the list.\n" {
		t.Errorf("expected single alert line, got %q", stderr)
	}
}
