package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Service announces this instance on the LAN and keeps a roster of the
// instances it hears. The zero value is not usable; call NewService.
//
// A Service moves between stopped and running. Start and Stop are only valid
// in the matching state; Peers may be called at any time.
type Service struct {
	cfg      Config
	identity string
	registry *Registry
	stats    counters
	log      *slog.Logger

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	broadcaster *Broadcaster
	listener    *Listener
	done        chan struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService validates cfg and resolves the identity. A nil cfg means DefaultConfig.
func NewService(cfg *Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	identity, err := resolveIdentity(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	s := &Service{
		cfg:      *cfg,
		identity: identity,
		registry: NewRegistry(),
		log:      slog.Default().With("component", "discovery"),
	}
	s.cfg.Targets = append([]string(nil), cfg.Targets...)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Identity returns the ID this instance announces.
func (s *Service) Identity() string {
	return s.identity
}

// Start opens both sockets and launches the broadcaster and listener in the
// background. Socket errors are returned and leave the service stopped.
// ctx bounds the background workers as well as socket setup.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}

	dests, err := s.cfg.destinations()
	if err != nil {
		return err
	}
	lconn, err := openListenConn(ctx, s.cfg.ListenHost, s.cfg.Port, s.cfg.ReusePort)
	if err != nil {
		return err
	}
	bconn, err := openBroadcastConn(ctx)
	if err != nil {
		_ = lconn.Close()
		return err
	}

	workerCtx, cancel := context.WithCancel(ctx)
	s.listener = newListener(lconn, s.identity, s.registry, &s.stats, s.log)
	s.broadcaster = newBroadcaster(bconn, dests, s.identity, s.cfg.Interval, &s.stats, s.log)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	s.log.Info("Discovery started", "identity", s.identity, "listen", lconn.LocalAddr().String(), "interval", s.cfg.Interval)

	g, gctx := errgroup.WithContext(workerCtx)
	listener, broadcaster, done := s.listener, s.broadcaster, s.done
	g.Go(func() error {
		defer listener.Close()
		return listener.Run(gctx)
	})
	g.Go(func() error {
		defer broadcaster.Close()
		return broadcaster.Run(gctx)
	})
	go func() {
		// A cancelled parent context must still unblock the listener.
		<-gctx.Done()
		_ = listener.Close()
	}()
	go func() {
		defer close(done)
		if err := g.Wait(); err != nil {
			s.log.Error("Discovery worker exited", "error", err)
		}
		s.log.Debug("Discovery workers exited")
	}()
	return nil
}

// Stop signals the workers to exit and closes the listening socket so a
// pending receive returns. It does not wait; see StopAndWait.
func (s *Service) Stop() error {
	_, err := s.stop()
	return err
}

// StopAndWait stops the service and waits up to timeout for both workers to
// release their sockets.
func (s *Service) StopAndWait(timeout time.Duration) error {
	done, err := s.stop()
	if err != nil {
		return err
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

func (s *Service) stop() (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil, ErrNotRunning
	}
	s.cancel()
	if err := s.listener.Close(); err != nil {
		s.log.Debug("Closing listener", "error", err)
	}
	s.running = false
	s.log.Info("Discovery stopped", "peers", s.registry.Len())
	return s.done, nil
}

// Running reports whether the service has been started and not stopped.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Peers returns a copy of every peer seen so far.
func (s *Service) Peers() []Peer {
	return s.registry.Snapshot()
}

// Stats returns the current counters.
func (s *Service) Stats() Stats {
	return s.stats.snapshot()
}

// ListenAddr returns the bound listener address, or nil when stopped.
func (s *Service) ListenAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	return s.listener.LocalAddr()
}
