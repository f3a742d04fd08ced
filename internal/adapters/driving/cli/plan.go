package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
	"github.com/aguaralabs/facturante-cli/internal/manifest"
)

var planCmd = &cobra.Command{
	Use:   "plan <manifest>",
	Short: "Preview the batch layout for a manifest",
	Long: `Validate a manifest and print the batches a submission would run,
without logging in or opening any browser.

Each batch holds at most max-concurrent invoices and never two
invoices from the same issuer, so each portal login gets a session of
its own. Invoices sharing an issuer keep their manifest order across
batches.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

var planMaxConcurrent int

func init() {
	planCmd.Flags().IntVar(
		&planMaxConcurrent, "max-concurrent", 0, "Maximum invoices submitted at once")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	sub := activeSubmitter(true)
	if sub == nil {
		return errors.New("submission service not configured")
	}

	runCfg := domain.DefaultRunConfig()
	if appConfig != nil {
		var err error
		runCfg, err = appConfig.RunConfig()
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("max-concurrent") {
		runCfg.MaxConcurrent = planMaxConcurrent
	}

	requests, err := manifest.Load(args[0])
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	if len(requests) == 0 {
		cmd.Println("Manifest is empty, nothing to plan.")
		return nil
	}

	batches, err := sub.Plan(requests, runCfg)
	if err != nil {
		return err
	}

	cmd.Printf("%d invoices in %d batches (max %d concurrent)\n",
		len(requests), len(batches), runCfg.MaxConcurrent)

	for _, batch := range batches {
		cmd.Println()
		cmd.Printf("Batch %d:\n", batch.Seq)
		for _, req := range batch.Requests {
			cmd.Printf("  #%d  %s  %s  (point of sale %s)\n",
				req.Position+1, req.Issuer, req.Type, req.PointOfSale.Padded())
		}
	}

	return nil
}
