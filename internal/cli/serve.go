package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/signboard/pkg/observability"
	"github.com/matzehuels/signboard/pkg/server"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noLinks bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve displays and the configurator API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, release, err := c.newRegistry()
			if err != nil {
				return err
			}
			defer release()

			observability.NewLogHooks(c.Logger).Register()
			defer observability.Reset()

			opts := server.Options{
				Addr:            c.cfg.Server.Addr,
				BaseURL:         c.cfg.Server.BaseURL,
				DecodeCacheSize: c.cfg.Server.DecodeCacheSize,
				RefreshSeconds:  c.cfg.Server.RefreshSeconds,
				Registry:        reg,
				Logger:          c.Logger,
			}
			if addr != "" {
				opts.Addr = addr
			}
			if !noLinks {
				store, cc, err := c.newLinkStore(ctx)
				if err != nil {
					return err
				}
				defer cc.Close()
				opts.Links = store
			}

			srv, err := server.New(opts)
			if err != nil {
				return err
			}
			statusFor(cmd).info("Serving %d widget types on %s", reg.Len(), StyleLink.Render("http://"+opts.Addr))
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&noLinks, "no-links", false, "disable short links")
	return cmd
}
