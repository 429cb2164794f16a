package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskcard/internal/config"
	"taskcard/internal/exitcode"
	"taskcard/internal/tui"
)

func init() {
	Register(&UICmd{})
}

// UICmd implements the ui command.
type UICmd struct{}

func (c *UICmd) Name() string       { return "ui" }
func (c *UICmd) Aliases() []string  { return []string{"tui"} }
func (c *UICmd) Synopsis() string   { return "Open the interactive task board" }
func (c *UICmd) Usage() string      { return "taskcard ui" }
func (c *UICmd) NeedsSession() bool { return true }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {}

// Run follows the credential for the lifetime of the UI so a logout inside
// it applies the logout policy. The UI pulls the remote collection on start.
func (c *UICmd) Run(ctx context.Context, cfg *config.Config, s *Session, args []string, out, errOut io.Writer) int {
	stop, err := s.Sync.Follow(ctx, s.Auth)
	defer stop()
	if err != nil {
		return s.fail(errOut, err)
	}

	if err := tui.Run(ctx, s.Sync, s.Auth, s.Alerts); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
