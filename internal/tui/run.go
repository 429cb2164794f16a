package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"taskcard/internal/auth"
	"taskcard/internal/tasksync"
)

// AlertRouter redirects synchronizer alerts. Route returns the previous
// destination.
type AlertRouter interface {
	Route(fn func(msg string)) func(msg string)
}

// Run shows the UI until the user quits or ctx is cancelled.
// While it runs, alerts are shown in the UI instead of their usual place.
func Run(ctx context.Context, s *tasksync.Synchronizer, p *auth.Provider, alerts AlertRouter) error {
	prog := tea.NewProgram(New(ctx, s, p), tea.WithAltScreen(), tea.WithContext(ctx))
	if alerts != nil {
		prev := alerts.Route(func(msg string) { prog.Send(alertMsg(msg)) })
		defer alerts.Route(prev)
	}
	if _, err := prog.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
