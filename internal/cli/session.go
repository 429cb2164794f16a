package cli

import (
	"context"
	"fmt"
	"io"
	"log"

	"taskcard/internal/auth"
	"taskcard/internal/backend/googletasks"
	"taskcard/internal/backend/restapi"
	"taskcard/internal/commands"
	"taskcard/internal/config"
	"taskcard/internal/exitcode"
	"taskcard/internal/service"
	"taskcard/internal/store"
	"taskcard/internal/tasksync"
)

// NewSession is the production SessionFactory.
// The task collection and backend state live in the config directory; the
// synchronizer starts in the stored credential's state without refetching.
func NewSession(ctx context.Context, cfg *config.Config, logger *log.Logger, errOut io.Writer) (*commands.Session, error) {
	provider, err := auth.NewProvider(cfg.TokenPath())
	if err != nil {
		return nil, &SetupError{Code: exitcode.AuthError, Err: fmt.Errorf("auth error: %w", err)}
	}

	policy, err := tasksync.ParseLogoutPolicy(cfg.LogoutPolicy)
	if err != nil {
		return nil, &SetupError{Code: exitcode.AuthError, Err: fmt.Errorf("config error: %w", err)}
	}

	kv := store.NewDirKV(cfg.Dir)
	remote, err := newRemote(ctx, cfg, provider, kv)
	if err != nil {
		return nil, err
	}

	state := provider.State()
	if remote == nil && state == auth.Authenticated {
		logger.Printf("warning: %s backend unavailable, working locally", cfg.Backend)
		state = auth.Unauthenticated
	}

	alerts := commands.NewAlerts(func(msg string) {
		fmt.Fprintf(errOut, "error: %s\n", msg)
	})

	sync, err := tasksync.New(store.NewTaskStore(kv, logger), remote,
		tasksync.WithLogger(logger),
		tasksync.WithAlerter(alerts),
		tasksync.WithLogoutPolicy(policy),
		tasksync.WithState(state),
	)
	if err != nil {
		return nil, &SetupError{Code: exitcode.StorageError, Err: fmt.Errorf("storage error: %w", err)}
	}

	return &commands.Session{
		Sync:   sync,
		Auth:   provider,
		Alerts: alerts,
		Logger: logger,
	}, nil
}

// newRemote builds the configured backend. The Google backend needs the
// OAuth client file; without it there is no remote and nil is returned.
func newRemote(ctx context.Context, cfg *config.Config, provider *auth.Provider, kv store.KV) (service.Remote, error) {
	switch cfg.Backend {
	case config.BackendGoogleTasks:
		if !cfg.HasOAuthClient() {
			return nil, nil
		}
		conf, err := googletasks.LoadOAuthConfig(cfg.OAuthClientPath())
		if err != nil {
			return nil, &SetupError{Code: exitcode.AuthError, Err: fmt.Errorf("auth error: %w", err)}
		}
		ids, err := googletasks.NewIDMap(kv)
		if err != nil {
			return nil, &SetupError{Code: exitcode.StorageError, Err: fmt.Errorf("storage error: %w", err)}
		}
		client, err := googletasks.New(ctx, googletasks.TokenSource(ctx, conf, provider), ids, cfg.Timeout)
		if err != nil {
			return nil, &SetupError{Code: exitcode.BackendError, Err: fmt.Errorf("backend error: %w", err)}
		}
		return client, nil
	default:
		return restapi.New(cfg.APIURL, provider, restapi.WithTimeout(cfg.Timeout)), nil
	}
}
