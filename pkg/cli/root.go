package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nspass/nspass-mockd/pkg/cli/internal/output"
	"github.com/nspass/nspass-mockd/pkg/config"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// globalOptions holds the persistent flags shared by all commands.
type globalOptions struct {
	configFile string
	jsonOutput bool
	lookupEnv  config.LookupFunc
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	return newRootCmd(&globalOptions{lookupEnv: os.LookupEnv})
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "nspass-mockd",
		Short: "nspass-mockd is a mock backend for the NSPass dashboard",
		Long: `nspass-mockd answers the NSPass dashboard API from in-memory fixtures.

Matched requests are served by mock handlers; everything else passes through
to the configured upstream. Configuration can be provided via a config file,
NSPASS_MOCK_* environment variables, or flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to configuration file (YAML or JSON)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output command results in JSON format")

	root.AddCommand(
		newServeCmd(opts),
		newRoutesCmd(opts),
		newSeedCmd(opts),
		newOpenAPICmd(opts),
		newExportCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration: defaults, then the config file,
// then environment overrides.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if o.configFile != "" {
		loaded, err := config.LoadFromFile(o.configFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(o.lookupEnv); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}
	return cfg, nil
}

// printResult writes data as JSON when --json is set and calls textFn
// otherwise.
func (o *globalOptions) printResult(w io.Writer, data any, textFn func()) error {
	if o.jsonOutput {
		return output.JSON(w, data)
	}
	textFn()
	return nil
}
