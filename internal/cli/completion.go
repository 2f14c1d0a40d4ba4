package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// newCompletionCmd creates the completion command for generating shell
// completions.
func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for gpuvenv.

To load completions:

Bash:
  $ source <(gpuvenv completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ gpuvenv completion bash > /etc/bash_completion.d/gpuvenv
  # macOS:
  $ gpuvenv completion bash > $(brew --prefix)/etc/bash_completion.d/gpuvenv

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ gpuvenv completion zsh > "${fpath[1]}/_gpuvenv"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ gpuvenv completion fish | source

  # To load completions for each session, execute once:
  $ gpuvenv completion fish > ~/.config/fish/completions/gpuvenv.fish

PowerShell:
  PS> gpuvenv completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> gpuvenv completion powershell > gpuvenv.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
