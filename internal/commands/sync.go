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
	Register(&SyncCmd{})
}

// SyncCmd implements the sync command.
type SyncCmd struct{}

func (c *SyncCmd) Name() string       { return "sync" }
func (c *SyncCmd) Aliases() []string  { return []string{"pull"} }
func (c *SyncCmd) Synopsis() string   { return "Replace local tasks with the remote collection" }
func (c *SyncCmd) Usage() string      { return "taskcard sync" }
func (c *SyncCmd) NeedsSession() bool { return true }

func (c *SyncCmd) RegisterFlags(fs *flag.FlagSet) {}

// Run refetches everything. Local-only sub-task changes are replaced by the
// remote state.
func (c *SyncCmd) Run(ctx context.Context, cfg *config.Config, s *Session, args []string, out, errOut io.Writer) int {
	if s.Sync.State() != auth.Authenticated {
		fmt.Fprintln(errOut, "error: not logged in (run: taskcard login)")
		return exitcode.AuthError
	}
	if code := s.refresh(ctx, errOut); code != exitcode.Success {
		return code
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "%d tasks\n", len(s.Sync.Tasks()))
	}
	return exitcode.Success
}
