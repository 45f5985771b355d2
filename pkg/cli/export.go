package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nspass/nspass-mockd/pkg/portability"
)

type exportFlags struct {
	format    string
	asYAML    bool
	outFile   string
	serverURL string
}

func newOpenAPICmd(g *globalOptions) *cobra.Command {
	f := &exportFlags{format: string(portability.FormatOpenAPI)}
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Emit an OpenAPI 3 document of the route table",
		Example: `  # JSON to stdout
  nspass-mockd openapi

  # YAML to a file
  nspass-mockd openapi --yaml -o nspass-api.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, g, f)
		},
	}
	addExportFlags(cmd, f)
	return cmd
}

func newExportCmd(g *globalOptions) *cobra.Command {
	f := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the route table (openapi, routes)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, g, f)
		},
	}
	cmd.Flags().StringVarP(&f.format, "format", "f", string(portability.FormatOpenAPI), "Export format (openapi, routes)")
	addExportFlags(cmd, f)
	return cmd
}

func addExportFlags(cmd *cobra.Command, f *exportFlags) {
	cmd.Flags().BoolVar(&f.asYAML, "yaml", false, "Output YAML instead of the format default")
	cmd.Flags().StringVarP(&f.outFile, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().StringVar(&f.serverURL, "server-url", "", "Server URL listed in the document (default http://localhost:<port>)")
}

func runExport(cmd *cobra.Command, g *globalOptions, f *exportFlags) error {
	format, err := portability.ParseFormat(f.format)
	if err != nil {
		return err
	}
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	r, schemas, err := buildRouter(cfg)
	if err != nil {
		return err
	}

	serverURL := f.serverURL
	if serverURL == "" {
		serverURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	opts := &portability.ExportOptions{Format: format}
	if cmd.Flags().Changed("yaml") {
		opts.AsYAML = &f.asYAML
	}
	data, err := portability.Export(&portability.Collection{
		Version:   Version,
		ServerURL: serverURL,
		Routes:    portability.FromRouter(r),
		Schemas:   schemas,
	}, opts)
	if err != nil {
		return err
	}
	return writeOutput(cmd, f.outFile, data)
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}
