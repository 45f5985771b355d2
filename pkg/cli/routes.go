package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nspass/nspass-mockd/pkg/cli/internal/output"
	"github.com/nspass/nspass-mockd/pkg/config"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/handlers"
	"github.com/nspass/nspass-mockd/pkg/portability"
	"github.com/nspass/nspass-mockd/pkg/router"
	"github.com/nspass/nspass-mockd/pkg/validation"
)

func newRoutesCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the route table in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			r, _, err := buildRouter(cfg)
			if err != nil {
				return err
			}
			routes := portability.FromRouter(r)
			w := cmd.OutOrStdout()
			return g.printResult(w, routes, func() {
				tw := output.Table(w)
				fmt.Fprintln(tw, "METHOD\tPATTERN\tNAME\tENVELOPE\tSCHEMA\tSCORE")
				for _, rt := range routes {
					schema := rt.Schema
					if schema == "" {
						schema = "-"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", rt.Method, rt.Pattern, rt.Name, rt.Convention, schema, rt.Score)
				}
				_ = tw.Flush()
			})
		},
	}
}

// buildRouter registers the mock routes against a throwaway store. The
// route table does not depend on fixture content.
func buildRouter(cfg *config.Config) (*router.Router, *validation.Registry, error) {
	store, err := fixture.NewStore(nil)
	if err != nil {
		return nil, nil, err
	}
	schemas, err := validation.New()
	if err != nil {
		return nil, nil, fmt.Errorf("loading schemas: %w", err)
	}
	r := router.New(cfg.Mock.APIPrefix, schemas, nil)
	handlers.New(handlers.Options{Store: store}).Register(r)
	return r, schemas, nil
}
