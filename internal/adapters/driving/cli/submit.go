package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
	"github.com/aguaralabs/facturante-cli/internal/core/ports/driving"
	"github.com/aguaralabs/facturante-cli/internal/logger"
	"github.com/aguaralabs/facturante-cli/internal/manifest"
)

var submitCmd = &cobra.Command{
	Use:   "submit <manifest>",
	Short: "Submit the invoices in a manifest to the portal",
	Long: `Run a complete submission: the manifest is validated, partitioned
into issuer-exclusive batches and every invoice is entered on the
portal through its own browser session.

The manifest is a JSON or YAML array of invoice entries. Progress is
reported while the run executes and a per-invoice summary is printed
at the end. Finished runs are archived and can be inspected later with
'facturante history'.

Interrupting the run (Ctrl-C) lets invoices already in flight finish,
skips everything not yet started and reports the partial results.

Examples:
  facturante submit invoices.json
  facturante submit invoices.yaml --max-concurrent 3 --output-dir ~/facturas
  facturante submit invoices.json --no-headless --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

// Flags for submit.
var (
	submitMaxConcurrent int
	submitBatchDelay    time.Duration
	submitStepTimeout   time.Duration
	submitOutputDir     string
	submitNoHeadless    bool
	submitNoArchive     bool
)

func init() {
	submitCmd.Flags().IntVar(
		&submitMaxConcurrent, "max-concurrent", 0, "Maximum invoices submitted at once")
	submitCmd.Flags().DurationVar(
		&submitBatchDelay, "batch-delay", 0, "Pause between consecutive batches")
	submitCmd.Flags().DurationVar(
		&submitStepTimeout, "step-timeout", 0, "Timeout for each wizard step")
	submitCmd.Flags().StringVar(
		&submitOutputDir, "output-dir", "", "Directory for generated documents, organised by issuer")
	submitCmd.Flags().BoolVar(
		&submitNoHeadless, "no-headless", false, "Show the automated browser windows")
	submitCmd.Flags().BoolVar(
		&submitNoArchive, "no-archive", false, "Do not record this run in the history")

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	runCfg, err := submitRunConfig(cmd)
	if err != nil {
		return err
	}

	sub := activeSubmitter(runCfg.Headless)
	if sub == nil {
		return errors.New("submission service not configured")
	}

	requests, err := manifest.Load(args[0])
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	if len(requests) == 0 {
		cmd.Println("Manifest is empty, nothing to submit.")
		return nil
	}

	cmd.Printf("Submitting %d invoices...\n", len(requests))

	// Ctrl-C cancels between invoices; in-flight wizard steps finish
	// bounded by the step timeout.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := submitWithProgress(ctx, cmd, sub, requests, runCfg)
	if report == nil {
		return runErr
	}

	printReport(cmd, report)

	if shouldArchive() {
		archiveReport(cmd, report)
	}

	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d invoices failed", report.Failed, report.Total)
	}
	return nil
}

// submitRunConfig layers the submit flags over the configured defaults.
func submitRunConfig(cmd *cobra.Command) (domain.RunConfig, error) {
	runCfg := domain.DefaultRunConfig()
	if appConfig != nil {
		var err error
		runCfg, err = appConfig.RunConfig()
		if err != nil {
			return domain.RunConfig{}, err
		}
	}

	if cmd.Flags().Changed("max-concurrent") {
		runCfg.MaxConcurrent = submitMaxConcurrent
	}
	if cmd.Flags().Changed("batch-delay") {
		runCfg.BatchDelay = submitBatchDelay
	}
	if cmd.Flags().Changed("step-timeout") {
		runCfg.StepTimeout = submitStepTimeout
	}
	if cmd.Flags().Changed("output-dir") {
		runCfg.OutputDir = submitOutputDir
	}
	if submitNoHeadless {
		runCfg.Headless = false
	}
	runCfg.Verbose = verbose

	return runCfg, runCfg.Validate()
}

// submitWithProgress runs the submission while displaying progress
// updates.
func submitWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	sub driving.BatchSubmitter,
	requests []domain.InvoiceRequest,
	runCfg domain.RunConfig,
) (*domain.RunReport, error) {
	type outcome struct {
		report *domain.RunReport
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		report, err := sub.Submit(ctx, requests, runCfg)
		done <- outcome{report: report, err: err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-done:
			if res.report != nil {
				cmd.Printf("\rProcessed %d of %d invoices (%d failed)          \n",
					res.report.Attempted(), res.report.Total, res.report.Failed)
			}
			return res.report, res.err
		case <-ticker.C:
			status := sub.Status()
			if status == nil {
				continue
			}
			cmd.Printf("\rBatch %d/%d, %d/%d invoices processed",
				status.CurrentBatch, status.TotalBatches,
				status.Processed, status.TotalInvoices)
		}
	}
}

// printReport renders the run summary and the per-invoice outcomes.
func printReport(cmd *cobra.Command, report *domain.RunReport) {
	cmd.Println()
	cmd.Printf("Run %s: %d invoices in %d batches\n", report.ID, report.Total, report.Batches)
	if report.Interrupted {
		cmd.Printf("Interrupted after %d of %d invoices.\n", report.Attempted(), report.Total)
	}
	cmd.Printf("  Succeeded: %d\n", report.Succeeded)
	cmd.Printf("  Failed:    %d\n", report.Failed)
	cmd.Println()

	for i := range report.Results {
		res := &report.Results[i]
		if res.Succeeded() {
			cmd.Printf("  ok    #%d  %s  %s: invoice %s", res.Position+1, res.Issuer, res.Type, res.InvoiceID)
			if res.DocumentPath != "" {
				cmd.Printf(" (%s)", res.DocumentPath)
			}
			cmd.Println()
		} else {
			cmd.Printf("  FAIL  #%d  %s  %s: %s at %s: %s\n",
				res.Position+1, res.Issuer, res.Type, res.Kind, res.StepAtFailure, res.Message)
		}
	}

	if len(report.ByKind) > 0 {
		kinds := make([]domain.ErrorKind, 0, len(report.ByKind))
		for kind := range report.ByKind {
			kinds = append(kinds, kind)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

		cmd.Println()
		cmd.Println("Failures by kind:")
		for _, kind := range kinds {
			cmd.Printf("  %s: %d\n", kind, report.ByKind[kind])
		}
	}
}

// shouldArchive reports whether the finished run should be recorded.
func shouldArchive() bool {
	if submitNoArchive || runArchive == nil {
		return false
	}
	return appConfig == nil || !appConfig.Archive.Disabled
}

// archiveReport records the report and prunes the history to the
// configured retention. Archive trouble never fails the run itself.
func archiveReport(cmd *cobra.Command, report *domain.RunReport) {
	ctx := context.Background()

	if err := runArchive.SaveReport(ctx, report); err != nil {
		logger.Warn("Could not archive run %s: %v", report.ID, err)
		return
	}

	keep := 0
	if appConfig != nil {
		keep = appConfig.ArchiveKeep()
	}
	if keep > 0 {
		if err := runArchive.Prune(ctx, keep); err != nil {
			logger.Warn("Could not prune run history: %v", err)
		}
	}

	cmd.Println()
	cmd.Printf("Run archived as %s\n", report.ID)
}
