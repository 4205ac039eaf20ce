package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	appevents "github.com/rescp17/lanRoster/internal/app_events"
	"github.com/rescp17/lanRoster/pkg/discovery"
)

const (
	DefaultRefreshInterval = 250 * time.Millisecond
	DefaultStopTimeout     = 2 * time.Second
)

// Roster is the part of discovery.Service the App drives.
type Roster interface {
	Start(ctx context.Context) error
	StopAndWait(timeout time.Duration) error
	Identity() string
	Peers() []discovery.Peer
	Stats() discovery.Stats
}

// App runs the discovery service and feeds roster snapshots to the UI.
type App struct {
	roster      Roster
	uiMessages  chan tea.Msg // App -> TUI
	refresh     time.Duration
	stopTimeout time.Duration
}

// NewApp creates a new App around roster.
func NewApp(roster Roster) *App {
	return &App{
		roster:      roster,
		uiMessages:  make(chan tea.Msg, 10),
		refresh:     DefaultRefreshInterval,
		stopTimeout: DefaultStopTimeout,
	}
}

// UIMessages returns the channel for the UI to listen on for updates.
func (a *App) UIMessages() <-chan tea.Msg {
	return a.uiMessages
}

// Run starts discovery and publishes the roster every refresh interval until
// ctx is cancelled, then stops the service.
func (a *App) Run(ctx context.Context) error {
	if err := a.roster.Start(ctx); err != nil {
		a.sendAndLogError(ctx, "Failed to start discovery", err)
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.publishRoster(ctx)
	})
	err := g.Wait()

	if stopErr := a.roster.StopAndWait(a.stopTimeout); stopErr != nil {
		slog.Warn("Discovery did not stop cleanly", "error", stopErr)
	}
	return err
}

func (a *App) publishRoster(ctx context.Context) error {
	ticker := time.NewTicker(a.refresh)
	defer ticker.Stop()

	for {
		msg := appevents.RosterMsg{
			Identity: a.roster.Identity(),
			Peers:    a.roster.Peers(),
			Stats:    a.roster.Stats(),
		}
		// A slow UI skips frames instead of stalling the App.
		select {
		case a.uiMessages <- msg:
		default:
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// sendAndLogError is a helper function to both log an error and send it to the UI.
func (a *App) sendAndLogError(ctx context.Context, baseMessage string, err error) {
	slog.Error(baseMessage, "error", err)
	select {
	case a.uiMessages <- appevents.AppErrorMsg{Err: fmt.Errorf("%s: %w", baseMessage, err)}:
	case <-ctx.Done():
	}
}
