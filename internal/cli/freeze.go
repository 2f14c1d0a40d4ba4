package cli

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gpuvenv/gpuvenv/pkg/errors"
	"github.com/gpuvenv/gpuvenv/pkg/pipeline"
)

// snapshot is the serialized form of a frozen environment.
type snapshot struct {
	ID        string    `toml:"id"`
	Purpose   string    `toml:"purpose"`
	Python    string    `toml:"python"`
	EnvDir    string    `toml:"env_dir"`
	CreatedAt time.Time `toml:"created_at"`
	Packages  []string  `toml:"packages"`
}

// newFreezeCmd creates the freeze command, which records the installed
// package set of a provisioned environment.
func newFreezeCmd() *cobra.Command {
	var (
		configPath string
		profile    string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "freeze",
		Short: "Snapshot the environment's installed packages",
		Long: `Freeze queries the provisioned environment's installer for the exact
package set and writes it as a TOML snapshot, tagged with a unique ID
and the profile it came from. Useful for recording what a working GPU
build actually resolved to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			opts, err := resolveOptions(configPath, profile, false)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}
			opts.Logger = logger

			runner, err := pipeline.NewRunner(*opts)
			if err != nil {
				return err
			}

			pkgs, err := runner.Freeze(ctx)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}

			snap := snapshot{
				ID:        uuid.NewString(),
				Purpose:   opts.Purpose,
				Python:    opts.PythonVersion,
				EnvDir:    runner.Env().Root,
				CreatedAt: time.Now().UTC(),
				Packages:  pkgs,
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return errors.Wrap(errors.ErrCodeFreezeFailed, err, "creating %s", output)
				}
				defer f.Close()
				out = f
			}
			if err := toml.NewEncoder(out).Encode(snap); err != nil {
				return errors.Wrap(errors.ErrCodeFreezeFailed, err, "encoding snapshot")
			}

			if output != "" {
				printSuccess("wrote %d packages to %s", len(pkgs), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default ./gpuvenv.toml)")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "provisioning profile to use")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the snapshot to a file instead of stdout")

	return cmd
}
