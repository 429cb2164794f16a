package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"taskcard/internal/auth"
	"taskcard/internal/config"
	"taskcard/internal/exitcode"
	"taskcard/internal/service"
	"taskcard/internal/tasksync"
)

// Session is what task commands operate on: the synchronizer seeded with the
// stored credential's state, and the credential itself.
type Session struct {
	Sync   *tasksync.Synchronizer
	Auth   *auth.Provider
	Alerts *Alerts
	Logger *log.Logger
}

// Alerts routes synchronizer alerts to whichever surface is active and
// remembers whether one was shown.
type Alerts struct {
	mu    sync.Mutex
	route func(msg string)
	fired bool
}

// NewAlerts creates an alert sink that hands messages to route.
func NewAlerts(route func(msg string)) *Alerts {
	return &Alerts{route: route}
}

// Alert implements tasksync.Alerter.
func (a *Alerts) Alert(msg string) {
	a.mu.Lock()
	a.fired = true
	route := a.route
	a.mu.Unlock()
	if route != nil {
		route(msg)
	}
}

// Route replaces the destination and returns the previous one.
func (a *Alerts) Route(fn func(msg string)) func(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	prev := a.route
	a.route = fn
	return prev
}

// Fired reports whether an alert was shown since the last call.
func (a *Alerts) Fired() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	fired := a.fired
	a.fired = false
	return fired
}

// refresh replaces the collection with the remote one when authenticated.
// Returns a non-zero exit code after printing the failure.
func (s *Session) refresh(ctx context.Context, errOut io.Writer) int {
	if err := s.Sync.FetchAll(ctx); err != nil {
		return s.fail(errOut, err)
	}
	return exitcode.Success
}

// fail prints err and maps it to an exit code. Nothing is printed when the
// synchronizer already alerted about it.
func (s *Session) fail(errOut io.Writer, err error) int {
	code, msg := classify(err)
	if s.Alerts != nil && s.Alerts.Fired() {
		return code
	}
	fmt.Fprintf(errOut, "error: %s\n", msg)
	return code
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, tasksync.ErrEmptyTitle):
		return exitcode.UserError, "title required"
	case errors.Is(err, tasksync.ErrTaskNotFound),
		errors.Is(err, tasksync.ErrSubTaskNotFound),
		errors.Is(err, tasksync.ErrDuplicateID):
		return exitcode.UserError, err.Error()
	case errors.Is(err, service.ErrAuth):
		return exitcode.AuthError, fmt.Sprintf("auth error: %v", err)
	case errors.Is(err, tasksync.ErrNoRemote):
		return exitcode.AuthError, fmt.Sprintf("config error: %v", err)
	case errors.Is(err, tasksync.ErrPersist):
		return exitcode.StorageError, err.Error()
	default:
		return exitcode.BackendError, fmt.Sprintf("backend error: %v", err)
	}
}

// success prints "ok" unless quiet.
func success(cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
