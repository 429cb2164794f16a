// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	"taskcard/internal/commands"
	"taskcard/internal/config"
	"taskcard/internal/exitcode"
)

// SessionFactory builds the session task commands run against.
// Used to inject the store and backend during dispatch.
type SessionFactory func(ctx context.Context, cfg *config.Config, logger *log.Logger, errOut io.Writer) (*commands.Session, error)

// SetupError is a session construction failure with the exit code it maps to.
type SetupError struct {
	Code int
	Err  error
}

func (e *SetupError) Error() string { return e.Err.Error() }
func (e *SetupError) Unwrap() error { return e.Err }

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  SessionFactory
}

// NewDispatcher creates a new dispatcher with the given registry and session factory.
func NewDispatcher(registry *commands.Registry, factory SessionFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// No arguments means "list". Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	name := "list"
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}

	// Flags require a command.
	if strings.HasPrefix(name, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}

	cmd, ok := d.registry.Find(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configDir string
	var quiet, debug bool
	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	positional := fs.Args()
	if len(positional) > 0 && strings.HasPrefix(positional[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positional[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	logger := log.New(io.Discard, "", 0)
	if debug {
		logger = log.New(errOut, "debug: ", log.LstdFlags)
	}

	var s *commands.Session
	if cmd.NeedsSession() {
		if err := cfg.Load(); err != nil {
			fmt.Fprintf(errOut, "error: config error: %s\n", err)
			return exitcode.AuthError
		}
		logger.Printf("config dir %s, backend %s", cfg.Dir, cfg.Backend)

		if d.factory == nil {
			fmt.Fprintln(errOut, "error: no session factory configured")
			return exitcode.BackendError
		}
		s, err = d.factory(ctx, cfg, logger, errOut)
		if err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			var serr *SetupError
			if errors.As(err, &serr) {
				return serr.Code
			}
			return exitcode.BackendError
		}
	}

	return cmd.Run(ctx, cfg, s, positional, out, errOut)
}

// flagError rewrites flag package errors into the CLI's wording.
func flagError(err error) string {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "flag needs an argument: "):
		return msg
	case strings.HasPrefix(msg, "flag provided but not defined: "):
		return "unknown flag: " + strings.TrimPrefix(msg, "flag provided but not defined: ")
	default:
		return msg
	}
}
