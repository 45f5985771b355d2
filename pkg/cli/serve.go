package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nspass/nspass-mockd/pkg/config"
	"github.com/nspass/nspass-mockd/pkg/engine"
	"github.com/nspass/nspass-mockd/pkg/logging"
)

// serveFlags are the serve command flags. Only flags set on the command
// line override the config.
type serveFlags struct {
	host          string
	port          int
	prefix        string
	upstream      string
	unmatched     string
	bypass        []string
	disabled      bool
	latency       time.Duration
	seedFile      string
	resetSchedule string
	logLevel      string
	logFormat     string
	noMetrics     bool
}

func newServeCmd(g *globalOptions) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock server (foreground)",
		Long: `Start the mock server and block until interrupted.

Requests under the API prefix that match a mock route are answered from the
fixture store. Unmatched requests are passed through to --upstream, or
answered with 404 when --unmatched=reject. The control API lives under
/__mock and the dashboard overview stream under /ws/system-info.`,
		Example: `  # Start with defaults on :8090
  nspass-mockd serve

  # Pass unmatched requests to a real backend
  nspass-mockd serve --upstream http://localhost:8080

  # Never let the real backend see uploads
  nspass-mockd serve --upstream http://localhost:8080 --bypass '/api/upload/**'

  # Start from a config file, overriding the port
  nspass-mockd serve -c mockd.yaml -p 9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			return runServe(cmd.Context(), cfg, cmd.ErrOrStderr())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.host, "host", "", "Listen host")
	fs.IntVarP(&f.port, "port", "p", 0, "Listen port")
	fs.StringVar(&f.prefix, "prefix", "", "API path prefix")
	fs.StringVarP(&f.upstream, "upstream", "u", "", "Upstream base URL for unmatched requests")
	fs.StringVar(&f.unmatched, "unmatched", "", "Unmatched request policy (passthrough, reject)")
	fs.StringSliceVar(&f.bypass, "bypass", nil, "Glob patterns that always pass through (repeatable)")
	fs.BoolVar(&f.disabled, "disabled", false, "Start with interception switched off")
	fs.DurationVar(&f.latency, "latency", 0, "Simulated latency for action endpoints")
	fs.StringVar(&f.seedFile, "seed", "", "Path to a YAML seed file")
	fs.StringVar(&f.resetSchedule, "reset-schedule", "", "Cron spec for periodic fixture resets")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format (text, json)")
	fs.BoolVar(&f.noMetrics, "no-metrics", false, "Disable the Prometheus endpoint")
	return cmd
}

func (f *serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("host") {
		cfg.Server.Host = f.host
	}
	if changed("port") {
		cfg.Server.Port = f.port
	}
	if changed("prefix") {
		cfg.Mock.APIPrefix = f.prefix
	}
	if changed("upstream") {
		cfg.Mock.Upstream = f.upstream
	}
	if changed("unmatched") {
		cfg.Mock.Unmatched = f.unmatched
	}
	if changed("bypass") {
		cfg.Mock.Bypass = f.bypass
	}
	if changed("disabled") {
		enabled := !f.disabled
		cfg.Mock.Enabled = &enabled
	}
	if changed("latency") {
		cfg.Mock.ActionLatency = f.latency
	}
	if changed("seed") {
		cfg.Mock.SeedFile = f.seedFile
	}
	if changed("reset-schedule") {
		cfg.Mock.ResetSchedule = f.resetSchedule
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if changed("no-metrics") {
		cfg.Metrics.Enabled = !f.noMetrics
	}
}

// runServe starts the server and blocks until ctx is cancelled or the
// listener fails, then shuts down within the configured timeout.
func runServe(ctx context.Context, cfg *config.Config, stderr io.Writer) error {
	log := logging.FromStrings(cfg.Log.Level, cfg.Log.Format, stderr)

	srv, err := engine.NewServer(cfg, engine.WithLogger(log))
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}
	printStartupMessage(stderr, srv)

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case serveErr = <-srv.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	if serveErr != nil {
		return fmt.Errorf("server stopped: %w", serveErr)
	}
	return nil
}

func printStartupMessage(w io.Writer, srv *engine.Server) {
	cfg := srv.Config()
	state := "enabled"
	if !srv.Engine().Enabled() {
		state = "disabled"
	}
	unmatched := cfg.Mock.Unmatched
	if cfg.Mock.Upstream != "" {
		unmatched += " -> " + cfg.Mock.Upstream
	}

	fmt.Fprintf(w, "nspass-mockd listening on http://%s\n", srv.Addr())
	fmt.Fprintf(w, "  API prefix:   %s (%d routes)\n", srv.Router().Prefix(), len(srv.Router().Routes()))
	fmt.Fprintf(w, "  Interception: %s\n", state)
	fmt.Fprintf(w, "  Unmatched:    %s\n", unmatched)
	fmt.Fprintf(w, "  Control API:  %s/status\n", engine.ControlPrefix)
	fmt.Fprintf(w, "  Stream:       %s\n", engine.StreamPath)
	if cfg.Metrics.Enabled {
		fmt.Fprintf(w, "  Metrics:      %s\n", cfg.Metrics.Path)
	}
}
