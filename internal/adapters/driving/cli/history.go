package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Inspect archived runs",
	Long: `List recent submission runs, or show one run in full.

Without arguments the most recent runs are listed, newest first. Pass
a run ID to see every per-invoice outcome recorded for that run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(
		&historyLimit, "limit", 0, "Maximum runs to list")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if runArchive == nil {
		return errors.New("run archive not configured")
	}

	ctx := context.Background()

	if len(args) == 1 {
		report, err := runArchive.GetReport(ctx, args[0])
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("run %s is not archived", args[0])
			}
			return fmt.Errorf("reading run %s: %w", args[0], err)
		}
		printReport(cmd, report)
		return nil
	}

	summaries, err := runArchive.ListRuns(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if len(summaries) == 0 {
		cmd.Println("No archived runs.")
		return nil
	}

	cmd.Println("Archived runs:")
	cmd.Println()
	for i := range summaries {
		s := &summaries[i]
		status := fmt.Sprintf("%d ok, %d failed", s.Succeeded, s.Failed)
		if s.Interrupted {
			status += ", interrupted"
		}
		cmd.Printf("  %s  %s\n", s.StartedAt.Local().Format("2006-01-02 15:04"), s.ID)
		cmd.Printf("    %d invoices: %s\n", s.Total, status)
		cmd.Println()
	}

	return nil
}
