package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	"github.com/SscSPs/coop_backoffice/internal/core/services"
	"github.com/SscSPs/coop_backoffice/internal/parser"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	dryRun     bool
	jsonOutput bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Validate and post a CSV or XLSX payment file",
	Long: `import walks a file through the same workflow as the web upload: parse, validate,
preview and process. Invalid rows are reported and skipped; valid rows are posted in
chunks. Ctrl-C cancels at the next chunk boundary.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Stop after the preview, post nothing")
	importCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the final report as JSON")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	svc := app.Services
	wf := services.NewWorkflowService(
		services.WithSession(uuid.NewString(), userID),
		services.WithParser(parser.NewFileParser(app.Config.Import.MaxRows)),
		services.WithValidator(svc.Validator),
		services.WithPreview(svc.Preview),
		services.WithBatchProcessor(svc.Batch),
		services.WithBatchRecords(app.Repo),
		services.WithPoster(svc.Poster),
		services.WithErrorHandler(svc.ErrorHandler),
		services.WithConsistency(svc.Consistency, app.Config.Import.PostBatchCheck),
		services.WithAudit(svc.Audit),
		services.WithBatchOptions(svc.BatchOptions),
		services.WithProgressCallback(func(p domain.Progress) {
			fmt.Fprintf(cmd.ErrOrStderr(), "\rchunk %d: %d/%d (%.0f%%)", p.CurrentChunk, p.ProcessedCount, p.TotalCount, p.Percent)
		}),
	)

	// Detach from the signal context so cancellation goes through the workflow.
	runCtx := context.WithoutCancel(ctx)

	if _, err := wf.UploadFile(runCtx, domain.UploadedFile{Name: filepath.Base(args[0]), Content: content}); err != nil {
		return err
	}
	if _, err := wf.ValidateData(runCtx, nil); err != nil {
		return err
	}
	preview, err := wf.GeneratePreview(runCtx, nil)
	if err != nil {
		return err
	}
	printPreview(out, preview)

	if dryRun {
		return nil
	}
	if preview.ValidRows == 0 {
		return fmt.Errorf("no valid rows to post")
	}

	go func() {
		<-ctx.Done()
		if res := wf.CancelProcessing(context.WithoutCancel(ctx)); res.Success {
			fmt.Fprintln(cmd.ErrOrStderr(), "\ncancelling at the next chunk boundary")
		}
	}()

	report, err := wf.ProcessBatch(runCtx, nil)
	fmt.Fprintln(cmd.ErrOrStderr())
	if report != nil {
		if perr := printReport(out, report); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}
	if !report.Success {
		return fmt.Errorf("import finished with %d failed and %d unprocessed rows", report.FailedRows, report.NotProcessedRows)
	}
	return nil
}

func printPreview(w io.Writer, p *domain.Preview) {
	fmt.Fprintf(w, "rows: %d  valid: %d  invalid: %d  with warnings: %d\n", p.TotalRows, p.ValidRows, p.InvalidRows, p.WarningRows)
	fmt.Fprintf(w, "total: %s\n", p.TotalFormatted)
	for t, s := range p.ByPaymentType {
		fmt.Fprintf(w, "  %-8s %d rows  %s\n", t, s.Count, s.TotalFormatted)
	}
	for _, issue := range p.SampleErrors {
		fmt.Fprintf(w, "  row %d: %s %s\n", issue.RowNumber, issue.Code, issue.Message)
	}
}

func printReport(w io.Writer, r *domain.ImportReport) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	fmt.Fprintf(w, "batch %s: posted %d of %d valid rows, failed %d, not processed %d\n",
		r.BatchID, r.PostedRows, r.ValidRows, r.FailedRows, r.NotProcessedRows)
	for _, issue := range r.Errors {
		fmt.Fprintf(w, "  row %d: %s %s\n", issue.RowNumber, issue.Code, issue.Message)
	}
	if r.Consistency != nil && !r.Consistency.Valid {
		fmt.Fprintf(w, "ledger check found %d issues; run `coop_cli check`\n", r.Consistency.IssueCount)
	}
	return nil
}
