package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"taskcard/internal/auth"
	"taskcard/internal/backend/googletasks"
	"taskcard/internal/config"
	"taskcard/internal/exitcode"
)

const (
	oauthCallbackTimeout = 5 * time.Minute
	tokenExchangeTimeout = 30 * time.Second
	oauthStartPort       = 8085
	oauthMaxPortAttempts = 5
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
// With the restapi backend the bearer token is passed with --token; with
// googletasks the browser-based OAuth flow runs.
type LoginCmd struct {
	token string
}

// SetToken sets the --token flag (for testing).
func (c *LoginCmd) SetToken(token string) {
	c.token = token
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Authenticate and pull the remote tasks" }
func (c *LoginCmd) Usage() string      { return "taskcard login [--token <token>]" }
func (c *LoginCmd) NeedsSession() bool { return true }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.token, "token", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, s *Session, args []string, out, errOut io.Writer) int {
	if s.Auth.IsAuthenticated() && c.token == "" {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	var token *oauth2.Token
	switch cfg.Backend {
	case config.BackendGoogleTasks:
		var code int
		if token, code = googleLogin(ctx, cfg, errOut); code != exitcode.Success {
			return code
		}
	default:
		if strings.TrimSpace(c.token) == "" {
			fmt.Fprintln(errOut, "error: --token required")
			fmt.Fprintln(errOut, "")
			fmt.Fprintln(errOut, "For the development API, mint one with:")
			fmt.Fprintln(errOut, "  taskcard-devapi token <user>")
			return exitcode.AuthError
		}
		token = &oauth2.Token{AccessToken: strings.TrimSpace(c.token), TokenType: "Bearer"}
	}

	if err := s.Auth.Save(token); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	// The credential stays stored even if the first fetch fails; sync retries it.
	if s.Sync.State() == auth.Authenticated {
		if code := s.refresh(ctx, errOut); code != exitcode.Success {
			return code
		}
	} else if err := s.Sync.SetAuthState(ctx, auth.Authenticated); err != nil {
		return s.fail(errOut, err)
	}
	return success(cfg, out)
}

// googleLogin runs the installed-app OAuth flow with PKCE and a loopback
// redirect, and returns the exchanged token.
func googleLogin(ctx context.Context, cfg *config.Config, errOut io.Writer) (*oauth2.Token, int) {
	if !cfg.HasOAuthClient() {
		printOAuthClientHelp(cfg, errOut)
		return nil, exitcode.AuthError
	}

	oauthConfig, err := googletasks.LoadOAuthConfig(cfg.OAuthClientPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.AuthError
	}

	port, listener, err := findAvailablePort()
	if err != nil {
		fmt.Fprintln(errOut, "error: could not bind to local port for OAuth callback")
		return nil, exitcode.AuthError
	}
	defer listener.Close()

	oauthConfig.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)
	verifier := oauth2.GenerateVerifier()
	authURL := oauthConfig.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			errCh <- errors.New("no code in callback")
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
		codeCh <- code
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.AuthError
	case <-time.After(oauthCallbackTimeout):
		fmt.Fprintln(errOut, "error: oauth callback timed out")
		return nil, exitcode.AuthError
	case <-ctx.Done():
		fmt.Fprintln(errOut, "error: cancelled")
		return nil, exitcode.AuthError
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()

	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to exchange code for token: %v\n", err)
		return nil, exitcode.AuthError
	}
	return token, exitcode.Success
}

func printOAuthClientHelp(cfg *config.Config, errOut io.Writer) {
	fmt.Fprintf(errOut, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
	fmt.Fprintln(errOut, "To use the Google Tasks backend you need OAuth credentials:")
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
	fmt.Fprintln(errOut, "2. Enable the Google Tasks API for your project")
	fmt.Fprintln(errOut, "3. Create an OAuth client ID of type 'Desktop app' and download the JSON")
	fmt.Fprintf(errOut, "4. Save it as %s\n", cfg.OAuthClientPath())
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "Then run 'taskcard login' again.")
}

// findAvailablePort tries consecutive ports starting at oauthStartPort.
func findAvailablePort() (int, net.Listener, error) {
	for i := 0; i < oauthMaxPortAttempts; i++ {
		port := oauthStartPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, errors.New("no available port found")
}
