package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand prints shell completion scripts to stdout.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for lassoview.

  bash:        source <(lassoview completion bash)
  zsh:         lassoview completion zsh > "${fpath[1]}/_lassoview"
  fish:        lassoview completion fish > ~/.config/fish/completions/lassoview.fish
  powershell:  lassoview completion powershell | Out-String | Invoke-Expression

Start a new shell for the zsh and fish scripts to take effect.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
