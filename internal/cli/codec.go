package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/signboard/pkg/codec"
	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/layout"
)

// encodeCommand creates the "encode" command.
func (c *CLI) encodeCommand() *cobra.Command {
	var withURL bool

	cmd := &cobra.Command{
		Use:   "encode <layout-file>",
		Short: "Encode a layout file into a display token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			cfg, err := layout.ReadFile(args[0])
			if err != nil {
				return err
			}
			token, err := codec.Encode(cfg)
			if err != nil {
				return err
			}
			logElapsed(c.Logger, start, "encoded layout", "widgets", len(cfg.Layout), "bytes", len(token))
			warnBounds(statusFor(cmd), cfg)

			out := token
			if withURL {
				out = displayURL(c.cfg.Server.BaseURL, token)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
		ValidArgsFunction: completeLayoutFile,
	}

	cmd.Flags().BoolVar(&withURL, "url", false, "print the display URL instead of the bare token")
	return cmd
}

// decodeCommand creates the "decode" command.
func (c *CLI) decodeCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "decode <token|url>",
		Short: "Decode a display token into a layout",
		Long:  `Decode a token (or a display URL carrying one) and print the layout. An undecodable token yields the default layout, with a warning.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := tokenFromArg(args[0])
			cfg, err := codec.Decode(token)
			if err != nil {
				statusFor(cmd).warn("Invalid token, using default layout")
				c.Logger.Debug("decode failed", "err", err)
				cfg = layout.Default()
			}

			if output != "" {
				if err := layout.WriteFile(cfg, output); err != nil {
					return err
				}
				statusFor(cmd).ok("Decoded %d widgets", len(cfg.Layout))
				statusFor(cmd).file(output)
				return nil
			}

			switch format {
			case layout.FormatJSON, layout.FormatTOML:
				return layout.Write(cfg, cmd.OutOrStdout(), format)
			}
			return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want json or toml)", format)
		},
	}

	cmd.Flags().StringVar(&format, "format", layout.FormatJSON, "output format: json or toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a layout file instead of stdout")
	return cmd
}

// tokenFromArg accepts a bare token or any URL with a config query
// parameter.
func tokenFromArg(arg string) string {
	arg = strings.TrimSpace(arg)
	if !strings.Contains(arg, "?") {
		return arg
	}
	u, err := url.Parse(arg)
	if err != nil {
		return arg
	}
	return u.Query().Get("config")
}

func displayURL(base, token string) string {
	return strings.TrimRight(base, "/") + "/display?config=" + token
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
