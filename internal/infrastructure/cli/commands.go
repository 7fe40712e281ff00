package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/reachout/internal/app"
	"github.com/doeshing/reachout/internal/domain"
)

// newStatsCommand reports ledger counters: lifetime sends, sends today, and
// the most recent interactions.
func newStatsCommand(configPath *string, opts Options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show interaction ledger statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := app.BuildContainer(cmd.Context(), app.Options{ConfigPath: *configPath, Verbose: opts.Verbose})
			if err != nil {
				return err
			}
			defer container.Close()

			stats, err := container.Ledger.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ledger: %s\n", container.Ledger.Path())
			fmt.Fprintf(cmd.OutOrStdout(), "Messages sent (all time): %d\n", stats.Total)
			fmt.Fprintf(cmd.OutOrStdout(), "Messages sent today:      %d\n", stats.Today)

			records, err := container.Ledger.Records(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, rec := range records {
				replied := ""
				if rec.Replied {
					replied = " (replied)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s  @%s  post %s%s\n",
					rec.CreatedAt.Format("2006-01-02 15:04"), rec.Username, rec.PostID, replied)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "How many recent interactions to list")
	return cmd
}

// newResetCommand deletes ledger records so targets become eligible again.
// This is the only way records are ever removed.
func newResetCommand(configPath *string, opts Options) *cobra.Command {
	var (
		postURL string
		yes     bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete interaction records (all, or one post's)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete ledger records without --yes")
			}
			container, err := app.BuildContainer(cmd.Context(), app.Options{ConfigPath: *configPath, Verbose: opts.Verbose})
			if err != nil {
				return err
			}
			defer container.Close()

			postID := ""
			if postURL != "" {
				postID, err = domain.ExtractPostID(postURL)
				if err != nil {
					return err
				}
			}
			deleted, err := container.Ledger.Reset(cmd.Context(), postID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d interaction record(s)\n", deleted)
			return nil
		},
	}

	cmd.Flags().StringVar(&postURL, "post", "", "Only reset records for this post URL")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
