package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pyvers/pyvers/pkg/config"
	"github.com/pyvers/pyvers/pkg/execx"
	"github.com/pyvers/pyvers/pkg/presence"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the version catalog with presence status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cat, err := cfg.BuildCatalog()
			if err != nil {
				return err
			}

			checker := presence.NewChecker(execx.NewSystem())
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%-8s %-10s %s\n", "LABEL", "VERSION", "STATUS")
			for _, entry := range cat.Entries() {
				status := checker.Probe(cmd.Context(), entry.Executable())
				switch {
				case status.Installed && status.Version != "":
					fmt.Fprintf(out, "%-8s %-10s installed (%s)\n", entry.Label, entry.Full, status.Version)
				case status.Installed:
					fmt.Fprintf(out, "%-8s %-10s installed\n", entry.Label, entry.Full)
				default:
					fmt.Fprintf(out, "%-8s %-10s not installed\n", entry.Label, entry.Full)
				}
			}
			return nil
		},
	}
}
