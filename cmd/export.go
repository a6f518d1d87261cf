package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ucrm-export/internal/config"
	"ucrm-export/internal/crm"
	"ucrm-export/internal/export"
	"ucrm-export/internal/logger"
	"ucrm-export/internal/period"
	"ucrm-export/internal/sheets"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Generate the payments, sales and controls reports",
	Long: `Fetch payments, invoices and credit notes for the selected period and
organization, build the payments report, the Plus-Minus sales report and
the controls summary, and pack everything into a single ZIP archive.

Proforma invoices and zero-total invoices are excluded from the sales
report; excluded zero-total invoices are listed in the controls summary
together with any gaps in the invoice number sequence.`,
	Example: `  # Export the previous month for organization 1
  ucrm-export export --organization 1 --period previous_month

  # Export a custom range with source PDFs included
  ucrm-export export --organization 1 --period custom --from 2024-03-01 --to 2024-03-31 --with-pdfs

  # Check the record counts without writing any files
  ucrm-export export --organization 1 --dry-run`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().Int64("organization", 0, "Organization ID to export (required)")
	exportCmd.Flags().String("period", period.CurrentMonth, "Period keyword (current_month, previous_month, current_quarter, previous_quarter, current_year, previous_year, custom)")
	exportCmd.Flags().String("from", "", "Custom period start (YYYY-MM-DD, with --period custom)")
	exportCmd.Flags().String("to", "", "Custom period end (YYYY-MM-DD, with --period custom)")
	exportCmd.Flags().String("output", "", "Output directory for the archive (defaults to the data directory)")
	exportCmd.Flags().String("formats", "csv,xlsx", "Comma-separated output formats (csv, xlsx)")
	exportCmd.Flags().Bool("with-pdfs", false, "Include rendered document PDFs in the archive")
	exportCmd.Flags().Bool("sheets", false, "Also push the sales report to the configured Google Sheet")
	exportCmd.Flags().Bool("dry-run", false, "Build the reports but do not write any files")

	exportCmd.MarkFlagRequired("organization")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export-cmd")

	organizationID, _ := cmd.Flags().GetInt64("organization")
	periodKeyword, _ := cmd.Flags().GetString("period")
	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")
	outputDir, _ := cmd.Flags().GetString("output")
	formatsFlag, _ := cmd.Flags().GetString("formats")
	withPDFs, _ := cmd.Flags().GetBool("with-pdfs")
	pushSheets, _ := cmd.Flags().GetBool("sheets")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = cfg.DataDir
	}

	dateRange, err := resolveRange(periodKeyword, fromFlag, toFlag)
	if err != nil {
		return err
	}
	formats, err := parseFormats(formatsFlag)
	if err != nil {
		return err
	}

	log.Info().
		Int64("organization_id", organizationID).
		Str("from", dateRange.FromDate()).
		Str("to", dateRange.ToDate()).
		Bool("dry_run", dryRun).
		Msg("Starting export")

	ctx := context.Background()
	api := crm.NewAPI(cfg.CRMAPIURL, cfg.CRMAppKey)

	progressFile := export.NewFileReporter(cfg.ProgressPath())
	defer progressFile.Clear()
	reporter := export.MultiReporter{export.LogReporter{}, progressFile}

	var pusher export.SheetPusher
	if pushSheets {
		if cfg.GoogleSheetURL == "" {
			return fmt.Errorf("GOOGLE_SHEET_URL is not configured")
		}
		service, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
		if err != nil {
			return err
		}
		pusher = service
	}

	pipeline := export.NewPipeline(api, reporter, pusher)
	result, err := pipeline.Run(ctx, export.Options{
		OrganizationID: organizationID,
		Range:          dateRange,
		MappingPath:    cfg.MappingPath(),
		OutputDir:      outputDir,
		CashMethodID:   cfg.CashMethodID,
		Formats:        formats,
		WithPDFs:       withPDFs,
		DryRun:         dryRun,
	})
	if err != nil {
		return err
	}

	printExportSummary(result, dateRange, dryRun)
	return nil
}

func parseFormats(value string) (export.Formats, error) {
	var formats export.Formats
	for _, part := range strings.Split(value, ",") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "csv":
			formats.CSV = true
		case "xlsx":
			formats.XLSX = true
		case "":
		default:
			return export.Formats{}, fmt.Errorf("unknown format %q (expected csv or xlsx)", part)
		}
	}
	if !formats.CSV && !formats.XLSX {
		return export.Formats{}, fmt.Errorf("at least one of csv, xlsx is required")
	}
	return formats, nil
}

func resolveRange(keyword, from, to string) (period.Range, error) {
	if keyword != period.Custom {
		return period.Resolve(keyword, time.Now()), nil
	}

	var fromTime, toTime time.Time
	var err error
	if from != "" {
		fromTime, err = time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			return period.Range{}, fmt.Errorf("invalid --from date %q: %w", from, err)
		}
	}
	if to != "" {
		toTime, err = time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			return period.Range{}, fmt.Errorf("invalid --to date %q: %w", to, err)
		}
	}
	return period.CustomRange(fromTime, toTime, time.Now()), nil
}

func printExportSummary(result *export.Result, dateRange period.Range, dryRun bool) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("                      EXPORT SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Period: %s\n", dateRange)
	fmt.Printf("Payments: %d (%d rows)\n", result.PaymentCount, result.PaymentRows)
	fmt.Printf("Invoices: %d, credit notes: %d (%d rows)\n",
		result.Controls.InvoiceCount, result.Controls.CreditNoteCount, result.SalesRows)
	fmt.Printf("Untaxed total: %.2f, VAT: %.2f\n",
		result.Controls.ExportedUntaxedSum, result.Controls.ExportedVatSum)

	if result.Controls.MinNumber != "" {
		fmt.Printf("Number range: %s .. %s\n", result.Controls.MinNumber, result.Controls.MaxNumber)
	}
	if len(result.Controls.MissingNumbers) > 0 {
		fmt.Printf("Missing numbers: %s\n", strings.Join(result.Controls.MissingNumbers, ", "))
		if result.Controls.PrefixAmbiguous {
			fmt.Println("Note: invoice numbers carry mixed prefixes, missing numbers are listed without a prefix")
		}
	}
	if count := len(result.Controls.ZeroTotalInvoices); count > 0 {
		fmt.Printf("Zero-total invoices excluded: %d\n", count)
	}

	fmt.Println()
	if dryRun {
		fmt.Println("Dry run, no files were written.")
	} else {
		fmt.Printf("Archive: %s\n", result.BundlePath)
	}
	fmt.Println(strings.Repeat("=", 60))
}
