package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/signboard/pkg/cache"
	"github.com/matzehuels/signboard/pkg/config"
	"github.com/matzehuels/signboard/pkg/errors"
)

// cacheCommand groups the short link cache subcommands.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the short link cache",
	}
	cmd.AddCommand(c.cacheClearCommand(), c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all short links from the file cache",
		Long:  `Remove every cached short link. Only the file backend can be cleared; Redis entries expire by their TTL.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := statusFor(cmd)
			switch c.cfg.Cache.Backend {
			case config.BackendNone:
				st.info("Caching is disabled")
				return nil
			case config.BackendRedis:
				return errors.New(errors.ErrCodeInvalidInput, "cannot clear the redis backend at %s", c.cfg.Cache.RedisAddr)
			}

			dir, err := c.cacheDir()
			if err != nil {
				return err
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				st.info("Cache is empty")
				return nil
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			n, err := fc.Clear()
			if err != nil {
				return err
			}
			st.ok("Cleared %d short links", n)
			st.detail("%s", dir)
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where short links are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Cache.Backend == config.BackendRedis {
				fmt.Fprintf(cmd.OutOrStdout(), "redis://%s/%d\n", c.cfg.Cache.RedisAddr, c.cfg.Cache.RedisDB)
				return nil
			}
			dir, err := c.cacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
