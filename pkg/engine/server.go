package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/nspass/nspass-mockd/pkg/auth"
	"github.com/nspass/nspass-mockd/pkg/config"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/handlers"
	"github.com/nspass/nspass-mockd/pkg/logging"
	"github.com/nspass/nspass-mockd/pkg/metrics"
	"github.com/nspass/nspass-mockd/pkg/oauth"
	"github.com/nspass/nspass-mockd/pkg/proxy"
	"github.com/nspass/nspass-mockd/pkg/requestlog"
	"github.com/nspass/nspass-mockd/pkg/router"
	"github.com/nspass/nspass-mockd/pkg/stream"
	"github.com/nspass/nspass-mockd/pkg/tasks"
	"github.com/nspass/nspass-mockd/pkg/validation"
)

// StreamPath serves the system-info websocket.
const StreamPath = "/ws/system-info"

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) { s.log = log }
}

// WithSeed replaces the seed named by the config.
func WithSeed(seed *fixture.Seed) ServerOption {
	return func(s *Server) { s.seed = seed }
}

// Server owns one complete mock: store, routes, runtime, background jobs
// and the HTTP listener.
type Server struct {
	cfg       *config.Config
	seed      *fixture.Seed
	store     *fixture.Store
	router    *router.Router
	handler   *Handler
	hub       *stream.Hub
	history   *requestlog.MemoryStore
	scheduler *tasks.Scheduler
	metrics   *metrics.Registry
	mux       *http.ServeMux
	log       *slog.Logger

	mu         sync.Mutex
	running    bool
	httpServer *http.Server
	listener   net.Listener
	serveErr   chan error
}

// NewServer validates cfg and builds every component. Nothing listens
// until Start.
func NewServer(cfg *config.Config, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Server{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.OrNop(s.log)
	if cfg.Metrics.Enabled {
		s.metrics = metrics.New()
	}

	if err := s.buildStore(); err != nil {
		return nil, err
	}
	if err := s.buildRuntime(); err != nil {
		return nil, err
	}
	if err := s.buildTasks(); err != nil {
		return nil, err
	}
	s.buildMux()
	return s, nil
}

func (s *Server) buildStore() error {
	seed := s.seed
	if seed == nil {
		var err error
		if s.cfg.Mock.SeedFile != "" {
			seed, err = fixture.LoadSeedFile(s.cfg.Mock.SeedFile)
		} else {
			seed, err = fixture.DefaultSeed()
		}
		if err != nil {
			return err
		}
	} else {
		seed = seed.Clone()
	}
	if err := seed.HashPasswords(auth.HashPassword); err != nil {
		return fmt.Errorf("hashing seed passwords: %w", err)
	}
	store, err := fixture.NewStore(seed)
	if err != nil {
		return err
	}
	s.store = store
	return nil
}

func (s *Server) buildRuntime() error {
	validator, err := validation.New()
	if err != nil {
		return fmt.Errorf("loading schemas: %w", err)
	}

	s.router = router.New(s.cfg.Mock.APIPrefix, validator, s.log)
	handlers.New(handlers.Options{
		Store:          s.store,
		Issuer:         auth.NewIssuer(s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL),
		OAuth:          oauth.NewExchanger(s.cfg.Auth.OAuthProviders),
		ActionLatency:  s.cfg.Mock.ActionLatency,
		InstallBaseURL: s.cfg.Mock.InstallBaseURL,
		Logger:         s.log,
	}).Register(s.router)

	bypass, err := proxy.NewFilter(s.cfg.Mock.Bypass)
	if err != nil {
		return err
	}
	passthrough, err := proxy.NewPassthrough(proxy.Options{
		Upstream: s.cfg.Mock.Upstream,
		Timeout:  s.cfg.Server.WriteTimeout,
		Logger:   s.log,
	})
	if err != nil {
		return err
	}

	hubOpts := []stream.Option{stream.WithLogger(s.log)}
	if s.metrics != nil {
		gauge := s.metrics.StreamClient
		hubOpts = append(hubOpts, stream.WithClientGauge(func(n int) { gauge.Set(float64(n)) }))
	}
	s.hub = stream.NewHub(func() any { return s.store.Overview() }, hubOpts...)

	var history requestlog.Store
	if s.cfg.Mock.HistorySize > 0 {
		s.history = requestlog.NewMemoryStore(s.cfg.Mock.HistorySize)
		history = s.history
	}

	s.handler = NewHandler(Options{
		Router:      s.router,
		Store:       s.store,
		Validator:   validator,
		Enabled:     s.cfg.MockEnabled(),
		Unmatched:   s.cfg.Mock.Unmatched,
		Bypass:      bypass,
		Passthrough: passthrough,
		Metrics:     s.metrics,
		History:     history,
		OnReset:     func([]string) { s.storeChanged() },
		Logger:      s.log,
	})
	s.storeChanged()
	return nil
}

func (s *Server) buildTasks() error {
	var opts []tasks.Option
	if s.metrics != nil {
		runs := s.metrics.TaskRuns
		opts = append(opts, tasks.WithRunHook(func(name string) { runs.WithLabelValues(name).Inc() }))
	}
	s.scheduler = tasks.New(s.log, opts...)

	if err := s.scheduler.Add(tasks.JobReset, s.cfg.Mock.ResetSchedule, func() {
		if _, err := s.handler.Reset(); err != nil {
			s.log.Error("scheduled reset failed", "error", err)
		}
	}); err != nil {
		return err
	}
	return s.scheduler.Add(tasks.JobHeartbeat, s.cfg.Mock.HeartbeatSchedule, func() {
		n := tasks.Heartbeat(s.store)
		s.log.Debug("heartbeat", "servers", n)
		s.hub.Publish()
	})
}

func (s *Server) buildMux() {
	s.mux = http.NewServeMux()
	// The websocket is mounted outside the middleware so the upgrade can
	// hijack the raw connection.
	s.mux.Handle(StreamPath, s.hub)
	if s.metrics != nil {
		s.mux.Handle(s.cfg.Metrics.Path, s.metrics.Handler())
	}

	mws := []Middleware{RequestID(s.log), CORS(&s.cfg.CORS)}
	if s.metrics != nil {
		mws = append(mws, Metrics(s.metrics))
	}
	if s.history != nil {
		mws = append(mws, History(s.history))
	}
	mws = append(mws, RequestLog(s.log))
	s.mux.Handle("/", Chain(s.handler, mws...))
}

// storeChanged refreshes record gauges and pushes a new overview.
func (s *Server) storeChanged() {
	if s.metrics != nil {
		s.metrics.SetRecords(s.store.Counts())
	}
	if s.hub != nil {
		s.hub.Publish()
	}
}

// Handler returns the complete HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.mux }

// Engine returns the interception runtime.
func (s *Server) Engine() *Handler { return s.handler }

// Store returns the fixture store.
func (s *Server) Store() *fixture.Store { return s.store }

// Router returns the API router.
func (s *Server) Router() *router.Router { return s.router }

// Hub returns the system-info websocket hub.
func (s *Server) Hub() *stream.Hub { return s.hub }

// Scheduler returns the background job scheduler.
func (s *Server) Scheduler() *tasks.Scheduler { return s.scheduler }

// Config returns the server configuration.
func (s *Server) Config() *config.Config { return s.cfg }

// Transport returns an in-process RoundTripper over this server's runtime.
func (s *Server) Transport(base http.RoundTripper) *Transport {
	return NewTransport(s.handler, base)
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("server is already running")
	}

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.mux,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
	s.serveErr = make(chan error, 1)
	go func(srv *http.Server, errc chan<- error) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
			errc <- err
		}
		close(errc)
	}(s.httpServer, s.serveErr)

	s.scheduler.Start()
	s.running = true
	s.log.Info("mock server started",
		"addr", ln.Addr().String(),
		"prefix", s.router.Prefix(),
		"enabled", s.handler.Enabled(),
		"routes", len(s.router.Routes()),
	)
	return nil
}

// Addr returns the bound address once started, or the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr()
}

// Done is closed when the listener stops; it yields the serve error, if any.
func (s *Server) Done() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serveErr
}

// Stop shuts down the listener, the scheduler and websocket clients.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}

	var errs []error
	s.hub.Close()
	if err := s.scheduler.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("scheduler shutdown: %w", err))
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	s.running = false
	s.listener = nil
	s.log.Info("mock server stopped")
	return errors.Join(errs...)
}
