package report

import (
	"strconv"
	"strings"

	"ucrm-export/internal/crm"
)

// ZeroTotalInvoice identifies an invoice excluded from the sales report
// because its total is zero.
type ZeroTotalInvoice struct {
	Number     string
	Date       string
	ClientName string
	EIK        string
	VATID      string
}

// Controls is the reconciliation summary an accountant checks against the
// accounting system after importing the sales report.
type Controls struct {
	InvoiceCount       int
	MinNumber          string
	MaxNumber          string
	CreditNoteCount    int
	ExportedUntaxedSum float64
	ExportedVatSum     float64
	MissingNumbers     []string
	PrefixAmbiguous    bool
	ZeroTotalInvoices  []ZeroTotalInvoice
}

// SplitZeroTotal partitions invoices into exported ones and zero-total ones.
func SplitZeroTotal(invoices []crm.Invoice) (kept []crm.Invoice, zero []ZeroTotalInvoice) {
	kept = make([]crm.Invoice, 0, len(invoices))
	for _, invoice := range invoices {
		if invoice.Total == 0 {
			zero = append(zero, ZeroTotalInvoice{
				Number:     invoice.Number,
				Date:       formatSalesDate(invoice.CreatedDate),
				ClientName: documentPartnerName(&invoice),
				EIK:        invoice.ClientCompanyRegistrationNumber,
				VATID:      invoice.ClientCompanyTaxID,
			})
			continue
		}
		kept = append(kept, invoice)
	}
	return kept, zero
}

// ExcludeProforma drops proforma invoices; they are preliminary documents
// the accounting import must never see.
func ExcludeProforma(invoices []crm.Invoice) []crm.Invoice {
	kept := make([]crm.Invoice, 0, len(invoices))
	for _, invoice := range invoices {
		if invoice.Proforma {
			continue
		}
		kept = append(kept, invoice)
	}
	return kept
}

// BuildControls computes the summary over the documents that made it into
// the sales report.
func BuildControls(invoices, creditNotes []crm.Invoice, zeroTotal []ZeroTotalInvoice) Controls {
	controls := Controls{
		InvoiceCount:      len(invoices),
		CreditNoteCount:   len(creditNotes),
		ZeroTotalInvoices: zeroTotal,
	}

	numbers := make([]string, 0, len(invoices))
	minValue, maxValue := int64(0), int64(0)
	for _, invoice := range invoices {
		numbers = append(numbers, invoice.Number)
		controls.ExportedUntaxedSum += invoice.TotalUntaxed
		controls.ExportedVatSum += invoice.TotalTaxAmount

		match := numberPattern.FindStringSubmatch(invoice.Number)
		if match == nil {
			continue
		}
		value, err := strconv.ParseInt(match[2], 10, 64)
		if err != nil {
			continue
		}
		if controls.MinNumber == "" || value < minValue {
			controls.MinNumber, minValue = invoice.Number, value
		}
		if controls.MaxNumber == "" || value > maxValue {
			controls.MaxNumber, maxValue = invoice.Number, value
		}
	}
	for _, note := range creditNotes {
		controls.ExportedUntaxedSum -= note.TotalUntaxed
		controls.ExportedVatSum -= note.TotalTaxAmount
	}

	gaps := DetectGaps(numbers)
	controls.MissingNumbers = gaps.Missing
	controls.PrefixAmbiguous = gaps.PrefixAmbiguous
	return controls
}

// Rows lays the summary out as a small key/value sheet followed by the
// zero-total invoice table.
func (c Controls) Rows() []Row {
	rows := []Row{
		{"Брой фактури", c.InvoiceCount},
		{"Първи номер", c.MinNumber},
		{"Последен номер", c.MaxNumber},
		{"Брой кредитни известия", c.CreditNoteCount},
		{"Стойност без ДДС", formatAmount(c.ExportedUntaxedSum)},
		{"ДДС", formatAmount(c.ExportedVatSum)},
		{"Общо с ДДС", formatAmount(c.ExportedUntaxedSum + c.ExportedVatSum)},
	}

	missing := "Няма"
	if len(c.MissingNumbers) > 0 {
		missing = strings.Join(c.MissingNumbers, ", ")
	}
	rows = append(rows, Row{"Липсващи номера", missing})

	if len(c.ZeroTotalInvoices) > 0 {
		rows = append(rows, Row{})
		rows = append(rows, Row{"Нулеви фактури (изключени от експорта)", len(c.ZeroTotalInvoices)})
		rows = append(rows, Row{"Номер", "Дата", "Партньор", "ЕИК", "ИН по ДДС"})
		for _, invoice := range c.ZeroTotalInvoices {
			rows = append(rows, Row{invoice.Number, invoice.Date, invoice.ClientName, invoice.EIK, invoice.VATID})
		}
	}
	return rows
}
