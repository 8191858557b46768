package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pyvers/pyvers/pkg/config"
	"github.com/pyvers/pyvers/pkg/stores"
)

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded installation runs",
		Long: `List recent installation runs from the local history database, or
show the per-version outcomes of one run when a run id is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !cfg.HistoryEnabled() {
				return fmt.Errorf("run history is disabled in the configuration")
			}

			store, err := stores.NewHistoryStore(cfg.HistoryDB)
			if err != nil {
				return err
			}
			if err := store.Init(cmd.Context()); err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()

			if len(args) == 1 {
				outcomes, err := store.RunOutcomes(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(outcomes) == 0 {
					fmt.Fprintln(out, "No outcomes recorded for that run.")
					return nil
				}
				fmt.Fprintf(out, "%-8s %-10s %-16s %-10s %s\n", "LABEL", "VERSION", "OUTCOME", "STAGE", "DURATION")
				for _, o := range outcomes {
					fmt.Fprintf(out, "%-8s %-10s %-16s %-10s %s\n",
						o.Label, o.FullVersion, o.Outcome, o.FailedStage, o.Duration.Round(time.Second))
				}
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			fmt.Fprintf(out, "%-36s %-12s %-20s %-10s %s\n", "RUN", "MODE", "STARTED", "INSTALLED", "FAILED")
			for _, r := range runs {
				fmt.Fprintf(out, "%-36s %-12s %-20s %-10d %s\n",
					r.ID, r.Mode, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					r.InstalledCount, strings.Join(r.FailedLabels, ","))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")

	return cmd
}
