package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pyvers/pyvers/pkg/execx"
	"github.com/pyvers/pyvers/pkg/sysdeps"
)

func newDepsCommand() *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Install the native build dependencies",
		Long: `Refresh the apt index and install the packages a CPython source
build needs. Safe to re-run; already-satisfied packages are skipped
by apt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if show {
				for _, pkg := range sysdeps.Packages() {
					fmt.Fprintln(cmd.OutOrStdout(), pkg)
				}
				return nil
			}
			return sysdeps.NewInstaller(execx.NewSystem()).Install(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "print the package list instead of installing")

	return cmd
}
