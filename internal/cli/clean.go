package cli

import (
	"bufio"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gpuvenv/gpuvenv/pkg/errors"
	"github.com/gpuvenv/gpuvenv/pkg/pipeline"
)

// newCleanCmd creates the clean command, which removes the isolated
// environment directory.
func newCleanCmd() *cobra.Command {
	var (
		configPath string
		profile    string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the isolated environment directory",
		Long: `Clean deletes the profile's environment directory in full. The pinned
interpreter version and installed apt packages are left alone; re-run
"gpuvenv up" to provision again from scratch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(configPath, profile, false)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}
			opts.Logger = loggerFromContext(cmd.Context())

			runner, err := pipeline.NewRunner(*opts)
			if err != nil {
				return err
			}
			root := runner.Env().Root

			if _, err := os.Stat(root); os.IsNotExist(err) {
				printInfo("no environment at %s", root)
				return nil
			}

			if !yes && !confirm(cmd, "Remove "+root+"?") {
				printInfo("aborted")
				return nil
			}

			if err := os.RemoveAll(root); err != nil {
				wrapped := errors.Wrap(errors.ErrCodeEnvReset, err, "removing %s", root)
				printError("%s", errors.UserMessage(wrapped))
				return wrapped
			}
			printSuccess("removed %s", root)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default ./gpuvenv.toml)")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "provisioning profile to use")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

// confirm asks a yes/no question on the command's input stream.
func confirm(cmd *cobra.Command, question string) bool {
	printInline("%s [y/N] ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
