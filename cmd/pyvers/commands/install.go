package commands

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pyvers/pyvers/pkg/build"
	"github.com/pyvers/pyvers/pkg/config"
	"github.com/pyvers/pyvers/pkg/execx"
	"github.com/pyvers/pyvers/pkg/orchestrate"
	"github.com/pyvers/pyvers/pkg/presence"
	"github.com/pyvers/pyvers/pkg/stores"
	"github.com/pyvers/pyvers/pkg/sysdeps"
	"github.com/pyvers/pyvers/pkg/telemetry"
)

// noopDeps satisfies the dependency-installer seam when --skip-deps is set.
type noopDeps struct{}

func (noopDeps) Install(ctx context.Context) error {
	log.Warn().Msg("Skipping build dependency installation")
	return nil
}

func newInstallCommand(version string) *cobra.Command {
	var (
		installAll bool
		skipDeps   bool
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Build and install catalog versions from source",
		Long: `Run a full installation: show the catalog with presence status,
select a mode, install the build dependencies, then build each
not-yet-present version in ascending order.

Per-version build failures are recorded and reported in the summary;
they do not abort the run or change the exit code.`,
		Example: `  # Interactive run
  pyvers install

  # Install everything missing without prompts
  pyvers install --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cat, err := cfg.BuildCatalog()
			if err != nil {
				return err
			}

			tracer, err := telemetry.NewTracer(cfg.Tracing.Enabled, version)
			if err != nil {
				return err
			}
			defer tracer.Shutdown(cmd.Context())

			runner := execx.NewSystem()
			checker := presence.NewChecker(runner)
			fetcher := build.NewFetcher(build.WithBaseURL(cfg.MirrorURL))
			worker := build.NewWorker(runner, checker, fetcher,
				build.WithPrefix(cfg.Prefix),
				build.WithWorkRoot(cfg.WorkRoot),
			)

			var deps orchestrate.DependencyInstaller = sysdeps.NewInstaller(runner)
			if skipDeps {
				deps = noopDeps{}
			}

			var recorder orchestrate.Recorder
			if cfg.HistoryEnabled() {
				store, err := stores.NewHistoryStore(cfg.HistoryDB)
				if err != nil {
					return err
				}
				if err := store.Init(cmd.Context()); err != nil {
					// History is an audit log; a broken database must not
					// block installs.
					log.Warn().Err(err).Msg("Run history unavailable")
				} else {
					defer store.Close()
					recorder = stores.NewRunRecorder(store)
				}
			}

			var preselected orchestrate.Mode
			if installAll {
				preselected = orchestrate.ModeAll
			}

			orch := orchestrate.New(cat, checker, deps, worker, recorder, os.Stdin, os.Stdout)
			state, err := orch.Run(cmd.Context(), preselected)
			if err != nil {
				return err
			}

			// Per-version failures surface in the summary, not the exit
			// code; callers scripting around this parse output.
			if len(state.FailedLabels) > 0 {
				log.Warn().Strs("versions", state.FailedLabels).Msg("Some versions failed to install")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&installAll, "all", false, "install all missing versions without prompting")
	cmd.Flags().BoolVar(&skipDeps, "skip-deps", false, "skip the build dependency installation step")

	return cmd
}
