package cli

import (
	"github.com/spf13/cobra"

	"github.com/nspass/nspass-mockd/pkg/cli/internal/output"
	"github.com/nspass/nspass-mockd/pkg/fixture"
)

func newSeedCmd(g *globalOptions) *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Dump the effective seed data as YAML",
		Long: `Print the seed the server would load: the file named by mock.seedFile, or
the built-in default. The output is a valid seed file and can be edited and
passed back with --seed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			var seed *fixture.Seed
			if cfg.Mock.SeedFile != "" {
				seed, err = fixture.LoadSeedFile(cfg.Mock.SeedFile)
			} else {
				seed, err = fixture.DefaultSeed()
			}
			if err != nil {
				return err
			}

			if g.jsonOutput && outFile == "" {
				return output.JSON(cmd.OutOrStdout(), seed)
			}
			data, err := seed.Marshal()
			if err != nil {
				return err
			}
			return writeOutput(cmd, outFile, data)
		},
	}
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Write to file instead of stdout")
	return cmd
}
