package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pyvers/pyvers/pkg/telemetry"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pyvers",
		Short: "pyvers - side-by-side CPython source installer",
		Long: `pyvers builds and installs multiple CPython versions from source on
Debian-family hosts, side by side, without touching the distribution's
default python3.

Each version is fetched, configured with optimizations, compiled, and
installed via "make altinstall", so only version-suffixed binaries
(python3.12, python3.11, ...) are created.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			telemetry.SetupLogging(verbose)
			// pyvers elevates per command through sudo; running the whole
			// tool as root defeats that and is refused outright.
			if os.Geteuid() == 0 {
				return fmt.Errorf("pyvers must not run as root; it invokes sudo itself where needed")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newInstallCommand(version))
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newDepsCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}
