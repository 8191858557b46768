package orchestrate

import (
	"context"
	"fmt"
	"strings"
)

// printSummary writes the end-of-run report: counts, failed labels, the
// interpreters now resolvable on the path, and usage hints. It is a human
// report, not a machine interface.
func (o *Orchestrator) printSummary(ctx context.Context, state *RunState) {
	fmt.Fprintln(o.out)
	fmt.Fprintln(o.out, "==== Installation summary ====")
	fmt.Fprintf(o.out, "Installed this run:  %d\n", state.InstalledCount)
	fmt.Fprintf(o.out, "Already present:     %d\n", state.CountOutcome(OutcomeAlreadyPresent))
	fmt.Fprintf(o.out, "Skipped:             %d\n", state.CountOutcome(OutcomeSkipped))
	fmt.Fprintf(o.out, "Failed:              %d\n", len(state.FailedLabels))

	if len(state.FailedLabels) > 0 {
		fmt.Fprintf(o.out, "Failed versions:     %s\n", strings.Join(state.FailedLabels, ", "))
		for _, r := range state.Results {
			if r.Outcome == OutcomeFailed && r.FailedStage != "" {
				fmt.Fprintf(o.out, "  %-6s failed during %s\n", r.Entry.Label, r.FailedStage)
			}
		}
	}

	var available []string
	for _, entry := range o.catalog.Entries() {
		if o.checker.IsInstalled(ctx, entry.Executable()) {
			available = append(available, entry.Executable())
		}
	}
	if len(available) > 0 {
		fmt.Fprintln(o.out)
		fmt.Fprintln(o.out, "Available interpreters:")
		for _, exe := range available {
			fmt.Fprintf(o.out, "  %s\n", exe)
		}
		fmt.Fprintln(o.out)
		fmt.Fprintln(o.out, "Usage:")
		fmt.Fprintf(o.out, "  %s --version\n", available[len(available)-1])
		fmt.Fprintf(o.out, "  %s -m venv ~/.venvs/myproject\n", available[len(available)-1])
	}

	if state.Cancelled {
		fmt.Fprintln(o.out)
		fmt.Fprintln(o.out, "Run was cancelled; remaining versions were not processed.")
	}
}
