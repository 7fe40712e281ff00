package cli

import (
	"github.com/spf13/cobra"

	"github.com/doeshing/reachout/internal/app"
	"github.com/doeshing/reachout/internal/services"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. By default a single pass runs
// over all configured posts; flags switch to continuous mode and to the
// parallel execution strategies.
func NewRootCmd(opts Options) *cobra.Command {
	var (
		configPath   string
		continuous   bool
		parallel     bool
		fullParallel bool
	)

	root := &cobra.Command{
		Use:   "reachout",
		Short: "Comment-to-DM outreach engine",
		Long: "reachout scans configured posts for comments, messages qualifying commenters\n" +
			"(followers whose comments match the trigger keywords), and optionally replies\n" +
			"publicly - never messaging the same person twice for the same post and always\n" +
			"staying under the configured action budget.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := app.BuildContainer(cmd.Context(), app.Options{
				ConfigPath: configPath,
				Verbose:    opts.Verbose,
			})
			if err != nil {
				return err
			}
			defer container.Close()

			kind := services.KindSequential
			switch {
			case fullParallel:
				kind = services.KindFullParallel
			case parallel:
				kind = services.KindFetchParallel
			}
			return container.Coordinator.Run(cmd.Context(), services.RunOptions{
				Kind:       kind,
				Continuous: continuous,
			})
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ./config.yaml or ./config.json)")
	root.Flags().BoolVarP(&continuous, "continuous", "c", false, "Run continuously, checking for new comments at intervals")
	root.Flags().BoolVarP(&parallel, "parallel", "p", false, "Fetch comments from all posts in parallel (sends stay sequential)")
	root.Flags().BoolVarP(&fullParallel, "full-parallel", "f", false, "Fetch and send in parallel, paced by the rate governor")

	root.AddCommand(newStatsCommand(&configPath, opts))
	root.AddCommand(newResetCommand(&configPath, opts))
	return root
}
