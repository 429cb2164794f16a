package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskcard/internal/auth"
	"taskcard/internal/config"
	"taskcard/internal/exitcode"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string       { return "logout" }
func (c *LogoutCmd) Aliases() []string  { return nil }
func (c *LogoutCmd) Synopsis() string   { return "Remove the stored credential" }
func (c *LogoutCmd) Usage() string      { return "taskcard logout" }
func (c *LogoutCmd) NeedsSession() bool { return true }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

// Run applies the configured logout policy to the collection, then deletes
// the credential.
func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, s *Session, args []string, out, errOut io.Writer) int {
	if !s.Auth.IsAuthenticated() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := s.Sync.SetAuthState(ctx, auth.Unauthenticated); err != nil {
		return s.fail(errOut, err)
	}
	if err := s.Auth.Clear(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	return success(cfg, out)
}
