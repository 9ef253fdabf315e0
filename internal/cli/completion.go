package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/signboard/pkg/layout"
)

// completionCommand creates the "completion" command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for your shell. Widget types and instance ids
are completed from the registry and the layout file on the command line.

  bash        source <(signboard completion bash)
  zsh         signboard completion zsh > "${fpath[1]}/_signboard"
  fish        signboard completion fish | source
  powershell  signboard completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeLayoutFile offers *.json and *.toml files for the first argument.
func completeLayoutFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json", "toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeWidgetType completes "add <layout-file> <widget-type>".
func (c *CLI) completeWidgetType(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completeLayoutFile(cmd, args, toComplete)
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	// Completion runs without the persistent pre-run.
	if !c.loaded {
		if err := c.loadConfig(); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
	}
	reg, release, err := c.newRegistry()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer release()

	var out []string
	for _, typ := range reg.Types() {
		if !strings.HasPrefix(typ, toComplete) {
			continue
		}
		d, _ := reg.Get(typ)
		out = append(out, typ+"\t"+d.Name)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeInstanceID completes "<layout-file> <instance-id>" from the ids
// in that file.
func completeInstanceID(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completeLayoutFile(cmd, args, toComplete)
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := layout.ReadFile(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, inst := range cfg.Layout {
		if strings.HasPrefix(inst.ID, toComplete) {
			out = append(out, inst.ID+"\t"+inst.Type)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
