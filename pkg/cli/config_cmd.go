package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nspass/nspass-mockd/pkg/cli/internal/output"
	"github.com/nspass/nspass-mockd/pkg/config"
)

const redacted = "********"

func newConfigCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Display the resolved configuration",
		Long: `Display the configuration after applying the config file and NSPASS_MOCK_*
environment overrides. Secrets are redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				output.Warn(cmd.ErrOrStderr(), "configuration is invalid:\n%v", err)
			}

			shown := *cfg
			if shown.Auth.JWTSecret != "" {
				shown.Auth.JWTSecret = redacted
			}
			if g.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), shown)
			}
			data, err := config.Marshal(&shown)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "env",
		Short: "List the supported environment overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := config.EnvNames()
			w := cmd.OutOrStdout()
			return g.printResult(w, names, func() {
				for _, n := range names {
					fmt.Fprintln(w, n)
				}
			})
		},
	})
	return cmd
}
