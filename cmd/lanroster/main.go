package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/rescp17/lanRoster/pkg/app"
	"github.com/rescp17/lanRoster/pkg/discovery"
	"github.com/rescp17/lanRoster/pkg/ui"
)

type options struct {
	configPath string
	port       int
	interval   time.Duration
	targets    []string
	identity   string
	unique     bool
	logFile    string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := fang.Execute(ctx, newRootCmd()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "lanroster",
		Short: "Announce this instance on the LAN and list the others",
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.IntVar(&opts.port, "port", discovery.DefaultPort, "Discovery port to listen on and broadcast to")
	flags.DurationVar(&opts.interval, "interval", discovery.DefaultInterval, "Time between announcements")
	flags.StringArrayVar(&opts.targets, "target", nil, "Send announcements to host:port instead of broadcasting (repeatable)")
	flags.StringVar(&opts.identity, "identity", "", "Announce this ID instead of <hostname>_<address>")
	flags.BoolVar(&opts.unique, "unique", false, "Append a random suffix to the identity")
	flags.StringVar(&opts.logFile, "log-file", "debug.log", "Log file path")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Show the live roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			closeLog, err := setupLogging(opts.logFile, opts.logLevel)
			if err != nil {
				return err
			}
			defer closeLog()

			svc, err := newService(cmd, opts)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), svc)
		},
	}

	var wait time.Duration
	peersCmd := &cobra.Command{
		Use:   "peers",
		Short: "Listen for a while, then print the roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			closeLog, err := setupLogging(opts.logFile, opts.logLevel)
			if err != nil {
				return err
			}
			defer closeLog()

			svc, err := newService(cmd, opts)
			if err != nil {
				return err
			}
			return printPeers(cmd, svc, wait)
		},
	}
	peersCmd.Flags().DurationVar(&wait, "wait", 3*time.Second, "How long to listen before printing")

	identityCmd := &cobra.Command{
		Use:   "identity",
		Short: "Print the identity this instance announces",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), svc.Identity())
			return nil
		},
	}

	cmd.AddCommand(runCmd, peersCmd, identityCmd)
	return cmd
}

// newService builds the config from the file, then applies explicitly set flags.
func newService(cmd *cobra.Command, opts options) (*discovery.Service, error) {
	cfg := discovery.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = discovery.LoadConfig(opts.configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("interval") {
		cfg.Interval = opts.interval
	}
	if flags.Changed("target") {
		cfg.Targets = opts.targets
	}
	if flags.Changed("identity") {
		cfg.Identity = opts.identity
	}
	if flags.Changed("unique") {
		cfg.UniqueIdentity = opts.unique
	}
	return discovery.NewService(cfg)
}

func runTUI(ctx context.Context, svc *discovery.Service) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a := app.NewApp(svc)
	appDone := make(chan error, 1)
	go func() { appDone <- a.Run(ctx) }()

	p := tea.NewProgram(ui.InitialModel(a), tea.WithContext(ctx))
	_, err := p.Run()
	cancel()
	if appErr := <-appDone; appErr != nil {
		// Already shown in the TUI and logged.
		slog.Debug("App exited with error", "error", appErr)
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("roster UI failed: %w", err)
	}
	return nil
}

func printPeers(cmd *cobra.Command, svc *discovery.Service, wait time.Duration) error {
	if err := svc.Start(cmd.Context()); err != nil {
		return err
	}

	select {
	case <-time.After(wait):
	case <-cmd.Context().Done():
	}
	if err := svc.StopAndWait(app.DefaultStopTimeout); err != nil {
		slog.Warn("Discovery did not stop cleanly", "error", err)
	}

	out := cmd.OutOrStdout()
	peers := svc.Peers()
	if len(peers) == 0 {
		fmt.Fprintln(out, "No peers found.")
		return nil
	}
	for _, p := range peers {
		fmt.Fprintf(out, "%s\t%s\n", p.ID, p.Addr)
	}
	return nil
}

// setupLogging sends slog output to a file, since the TUI owns the terminal.
func setupLogging(path, level string) (func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl})))
	return func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}, nil
}
