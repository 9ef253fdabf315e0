package cli

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/signboard/pkg/codec"
	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/shortlink"
)

// linkCommand creates the "link" command.
func (c *CLI) linkCommand() *cobra.Command {
	var resolve bool

	cmd := &cobra.Command{
		Use:   "link <token|url>",
		Short: "Create a short link for a display token",
		Long:  `Store a display token in the configured cache and print its short link. With --resolve, print the token stored under a short id instead.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			spinner := newSpinner(ctx, "Opening link store...")
			spinner.Start()
			store, cc, err := c.newLinkStore(ctx)
			if err != nil {
				spinner.StopWithError("Link store unavailable")
				return err
			}
			spinner.Stop()
			defer cc.Close()

			if resolve {
				token, err := store.Resolve(ctx, args[0])
				if err != nil {
					if stderrors.Is(err, shortlink.ErrNotFound) {
						return errors.New(errors.ErrCodeNotFound, "no short link %q", args[0])
					}
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			}

			token := tokenFromArg(args[0])
			if _, err := codec.Decode(token); err != nil {
				return err
			}
			id, err := store.Shorten(ctx, token)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.cfg.Server.BaseURL+"/s/"+id)
			c.Logger.Debug("stored link", "id", id, "bytes", len(token))
			return nil
		},
	}

	cmd.Flags().BoolVar(&resolve, "resolve", false, "look up a short id")
	return cmd
}
