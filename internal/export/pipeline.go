package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ucrm-export/internal/crm"
	"ucrm-export/internal/labels"
	"ucrm-export/internal/logger"
	"ucrm-export/internal/period"
	"ucrm-export/internal/report"
)

const totalSteps = 10

// SheetPusher mirrors a report into an external spreadsheet. Optional.
type SheetPusher interface {
	AppendReport(ctx context.Context, title string, header []string, rows []report.Row) error
}

// Formats selects which physical report encodings are written. The controls
// summary is always a spreadsheet.
type Formats struct {
	CSV  bool
	XLSX bool
}

// AllFormats writes every supported encoding.
func AllFormats() Formats { return Formats{CSV: true, XLSX: true} }

// Options configures a single export run.
type Options struct {
	OrganizationID int64
	Range          period.Range
	MappingPath    string
	OutputDir      string
	CashMethodID   string
	Formats        Formats
	WithPDFs       bool
	DryRun         bool
}

// Result summarizes a finished run.
type Result struct {
	BundlePath   string
	PaymentRows  int
	SalesRows    int
	PaymentCount int
	InvoiceCount int
	Controls     report.Controls
}

// Pipeline runs the full export: fetch, build rows, write files, bundle.
type Pipeline struct {
	api      *crm.API
	reporter Reporter
	sheets   SheetPusher
	log      zerolog.Logger
}

// NewPipeline wires a pipeline. reporter must not be nil; sheets may be.
func NewPipeline(api *crm.API, reporter Reporter, sheets SheetPusher) *Pipeline {
	return &Pipeline{
		api:      api,
		reporter: reporter,
		sheets:   sheets,
		log:      logger.WithComponent("export"),
	}
}

// Run executes one export over the given range. Per-record lookup failures
// degrade to empty fields; configuration and file errors abort the run.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	const op = "Run"

	if opts.OrganizationID == 0 {
		return nil, fmt.Errorf("%s: organization is required", op)
	}
	if !opts.Formats.CSV && !opts.Formats.XLSX {
		return nil, fmt.Errorf("%s: at least one output format is required", op)
	}

	runID := uuid.New().String()
	log := logger.WithRunID(runID)
	log.Info().
		Int64("organization_id", opts.OrganizationID).
		Str("range", opts.Range.String()).
		Msg("Export run started")

	p.reporter.Report(1, totalSteps, "Loading label mapping")
	mapping, err := labels.Load(opts.MappingPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.reporter.Report(2, totalSteps, "Fetching reference data")
	refs, err := p.fetchReferenceData(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	organization := organizationName(refs.organizations, opts.OrganizationID)
	if organization == "" {
		return nil, fmt.Errorf("%s: organization %d not found", op, opts.OrganizationID)
	}

	memo := crm.NewMemo(p.api)
	rangeParams := crm.RangeParams{
		CreatedDateFrom: opts.Range.FromDate(),
		CreatedDateTo:   opts.Range.ToDate(),
	}

	p.reporter.Report(3, totalSteps, "Fetching payments")
	payments, err := p.api.ListPayments(ctx, rangeParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	payments = filterPaymentsByOrganization(payments, refs.clients, opts.OrganizationID)
	memo.SeedPayments(payments)

	p.reporter.Report(4, totalSteps, "Resolving payment covers")
	report.EnrichPayments(ctx, memo, payments)

	p.reporter.Report(5, totalSteps, "Fetching invoices and credit notes")
	docParams := rangeParams
	docParams.OrganizationID = opts.OrganizationID
	invoices, err := p.api.ListInvoices(ctx, docParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	creditNotes, err := p.api.ListCreditNotes(ctx, docParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	memo.SeedInvoices(invoices)

	invoices = report.ExcludeProforma(invoices)
	invoices, zeroTotal := report.SplitZeroTotal(invoices)

	p.reporter.Report(6, totalSteps, "Building payments report")
	paymentsBuilder := report.NewPaymentsBuilder(refs.clients, refs.methods, refs.organizations)
	paymentRows := paymentsBuilder.Rows(payments)

	p.reporter.Report(7, totalSteps, "Building sales report")
	resolver := labels.BuildResolver(mapping, refs.plans, refs.services)
	salesBuilder := report.NewSalesBuilder(memo, resolver, opts.CashMethodID)
	documents := append(append([]crm.Invoice{}, invoices...), creditNotes...)
	salesRows := salesBuilder.Rows(ctx, documents)

	controls := report.BuildControls(invoices, creditNotes, zeroTotal)

	result := &Result{
		PaymentRows:  len(paymentRows),
		SalesRows:    len(salesRows),
		PaymentCount: len(payments),
		InvoiceCount: len(invoices),
		Controls:     controls,
	}

	if opts.DryRun {
		p.reporter.Report(totalSteps, totalSteps, "Dry run complete")
		return result, nil
	}

	p.reporter.Report(8, totalSteps, "Writing report files")
	workDir, err := os.MkdirTemp("", "ucrm-export-")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create work directory: %w", op, err)
	}
	defer os.RemoveAll(workDir)

	files, err := p.writeReports(workDir, opts.Formats, paymentRows, salesRows, controls)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if opts.WithPDFs {
		p.reporter.Report(9, totalSteps, "Downloading document PDFs")
		files = append(files, p.downloadPDFs(ctx, workDir, invoices, creditNotes)...)
	}

	p.reporter.Report(10, totalSteps, "Packing archive")
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: failed to create output directory: %w", op, err)
	}
	bundlePath := filepath.Join(opts.OutputDir,
		BundleName(organization, opts.Range.FromDate(), opts.Range.ToDate(), time.Now()))
	if err := WriteBundle(bundlePath, files); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result.BundlePath = bundlePath
	log.Info().
		Str("bundle", bundlePath).
		Int("payment_rows", result.PaymentRows).
		Int("sales_rows", result.SalesRows).
		Msg("Export run finished")

	if p.sheets != nil {
		if err := p.sheets.AppendReport(ctx, "Payments", report.PaymentsHeader, paymentRows); err != nil {
			p.log.Warn().Err(err).Msg("Failed to push payments report to spreadsheet")
		}
		if err := p.sheets.AppendReport(ctx, "Sales", report.SalesHeader, salesRows); err != nil {
			p.log.Warn().Err(err).Msg("Failed to push sales report to spreadsheet")
		}
	}

	return result, nil
}

type referenceData struct {
	organizations []crm.Organization
	clients       []crm.Client
	methods       []crm.PaymentMethod
	plans         []crm.ServicePlan
	services      []crm.Service
}

func (p *Pipeline) fetchReferenceData(ctx context.Context) (*referenceData, error) {
	organizations, err := p.api.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := p.api.ListClients(ctx, 0)
	if err != nil {
		return nil, err
	}
	methods, err := p.api.ListPaymentMethods(ctx)
	if err != nil {
		return nil, err
	}
	plans, err := p.api.ListServicePlans(ctx)
	if err != nil {
		return nil, err
	}
	services, err := p.api.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	return &referenceData{
		organizations: organizations,
		clients:       clients,
		methods:       methods,
		plans:         plans,
		services:      services,
	}, nil
}

func (p *Pipeline) writeReports(dir string, formats Formats, paymentRows, salesRows []report.Row, controls report.Controls) ([]BundleFile, error) {
	type output struct {
		name  string
		write func(path string) error
	}

	var outputs []output
	if formats.CSV {
		outputs = append(outputs,
			output{"payments.csv", func(path string) error {
				return WriteCSV(path, report.PaymentsHeader, paymentRows)
			}},
			output{"sales.csv", func(path string) error {
				return WritePlusMinusCSV(path, salesRows)
			}})
	}
	if formats.XLSX {
		outputs = append(outputs,
			output{"payments.xlsx", func(path string) error {
				return WriteXLSX(path, "Payments", report.PaymentsHeader, paymentRows)
			}},
			output{"sales.xlsx", func(path string) error {
				return WriteXLSX(path, "Sales", report.SalesHeader, salesRows)
			}})
	}
	outputs = append(outputs, output{"controls.xlsx", func(path string) error {
		return WriteXLSX(path, "Controls", nil, controls.Rows())
	}})

	files := make([]BundleFile, 0, len(outputs))
	for _, out := range outputs {
		path := filepath.Join(dir, out.name)
		if err := out.write(path); err != nil {
			return nil, err
		}
		files = append(files, BundleFile{Path: path, Name: out.name})
	}
	return files, nil
}

// downloadPDFs fetches rendered documents. A failed download is logged and
// skipped so one broken document cannot fail the bundle.
func (p *Pipeline) downloadPDFs(ctx context.Context, dir string, invoices, creditNotes []crm.Invoice) []BundleFile {
	var files []BundleFile
	files = append(files, p.downloadKind(ctx, dir, "invoices", invoices)...)
	files = append(files, p.downloadKind(ctx, dir, "credit-notes", creditNotes)...)
	return files
}

func (p *Pipeline) downloadKind(ctx context.Context, dir, subdir string, documents []crm.Invoice) []BundleFile {
	var files []BundleFile
	for _, doc := range documents {
		data, err := p.api.DownloadInvoicePDF(ctx, doc.ID)
		if err != nil {
			p.log.Warn().Err(err).Int64("document_id", doc.ID).Msg("Failed to download document PDF")
			continue
		}
		name := doc.Number
		if name == "" {
			name = fmt.Sprintf("%d", doc.ID)
		}
		name = bundleNameUnsafe.ReplaceAllString(name, "_") + ".pdf"
		path := filepath.Join(dir, subdir+"-"+name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			p.log.Warn().Err(err).Str("path", path).Msg("Failed to write document PDF")
			continue
		}
		files = append(files, BundleFile{Path: path, Name: subdir + "/" + name})
	}
	return files
}

func filterPaymentsByOrganization(payments []crm.Payment, clients []crm.Client, organizationID int64) []crm.Payment {
	members := make(map[int64]struct{})
	for _, client := range clients {
		if client.OrganizationID == organizationID {
			members[client.ID] = struct{}{}
		}
	}
	kept := make([]crm.Payment, 0, len(payments))
	for _, payment := range payments {
		if _, ok := members[payment.ClientID]; ok {
			kept = append(kept, payment)
		}
	}
	return kept
}

func organizationName(organizations []crm.Organization, id int64) string {
	for _, org := range organizations {
		if org.ID == id {
			return org.Name
		}
	}
	return ""
}
