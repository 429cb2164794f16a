package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskcard/internal/config"
	"taskcard/internal/exitcode"
	"taskcard/internal/output"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd implements the export command.
type ExportCmd struct {
	format string
}

// SetFormat sets the --format flag (for testing).
func (c *ExportCmd) SetFormat(format string) {
	c.format = format
}

func (c *ExportCmd) Name() string       { return "export" }
func (c *ExportCmd) Aliases() []string  { return nil }
func (c *ExportCmd) Synopsis() string   { return "Print the collection as JSON or YAML" }
func (c *ExportCmd) Usage() string      { return "taskcard export [--format json|yaml]" }
func (c *ExportCmd) NeedsSession() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", output.FormatJSON, "")
	fs.StringVar(&c.format, "f", output.FormatJSON, "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, s *Session, args []string, out, errOut io.Writer) int {
	if err := output.Export(out, s.Sync.Tasks(), c.format); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
