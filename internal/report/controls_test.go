package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ucrm-export/internal/crm"
)

func TestSplitZeroTotal(t *testing.T) {
	invoices := []crm.Invoice{
		{Number: "A001", Total: 50},
		{Number: "A002", Total: 0, CreatedDate: "2024-03-07", ClientCompanyName: "Net Ltd", ClientCompanyRegistrationNumber: "123", ClientCompanyTaxID: "BG123"},
		{Number: "A003", Total: 20},
	}

	kept, zero := SplitZeroTotal(invoices)

	require.Len(t, kept, 2)
	require.Len(t, zero, 1)
	assert.Equal(t, "A002", zero[0].Number)
	assert.Equal(t, "07.03.2024", zero[0].Date)
	assert.Equal(t, "Net Ltd", zero[0].ClientName)
	assert.Equal(t, "123", zero[0].EIK)
}

func TestExcludeProforma(t *testing.T) {
	invoices := []crm.Invoice{
		{Number: "A001"},
		{Number: "P001", Proforma: true},
		{Number: "A002"},
	}

	kept := ExcludeProforma(invoices)

	require.Len(t, kept, 2)
	assert.Equal(t, "A001", kept[0].Number)
	assert.Equal(t, "A002", kept[1].Number)
}

func TestBuildControls(t *testing.T) {
	invoices := []crm.Invoice{
		{Number: "A003", TotalUntaxed: 100, TotalTaxAmount: 20},
		{Number: "A001", TotalUntaxed: 50, TotalTaxAmount: 10},
		{Number: "A005", TotalUntaxed: 25, TotalTaxAmount: 5},
	}
	creditNotes := []crm.Invoice{
		{Number: "CN01", TotalUntaxed: 10, TotalTaxAmount: 2},
	}
	zero := []ZeroTotalInvoice{{Number: "A004"}}

	controls := BuildControls(invoices, creditNotes, zero)

	assert.Equal(t, 3, controls.InvoiceCount)
	assert.Equal(t, 1, controls.CreditNoteCount)
	assert.Equal(t, "A001", controls.MinNumber)
	assert.Equal(t, "A005", controls.MaxNumber)
	assert.InDelta(t, 165.0, controls.ExportedUntaxedSum, 0.001)
	assert.InDelta(t, 33.0, controls.ExportedVatSum, 0.001)
	assert.Equal(t, []string{"A002", "A004"}, controls.MissingNumbers)
	assert.Len(t, controls.ZeroTotalInvoices, 1)
}

func TestControlsRows(t *testing.T) {
	controls := Controls{
		InvoiceCount:       2,
		MinNumber:          "A001",
		MaxNumber:          "A002",
		ExportedUntaxedSum: 100,
		ExportedVatSum:     20,
		ZeroTotalInvoices:  []ZeroTotalInvoice{{Number: "A009", Date: "01.03.2024", ClientName: "Net Ltd"}},
	}

	rows := controls.Rows()

	assert.Equal(t, Row{"Брой фактури", 2}, rows[0])
	assert.Equal(t, Row{"Общо с ДДС", "120.00"}, rows[6])
	assert.Equal(t, Row{"Липсващи номера", "Няма"}, rows[7])

	last := rows[len(rows)-1]
	assert.Equal(t, "A009", last[0])
}
