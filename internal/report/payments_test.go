package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ucrm-export/internal/crm"
)

type stubFetcher struct {
	invoices map[int64]*crm.Invoice
	payments map[int64]*crm.Payment
}

func (s *stubFetcher) GetInvoice(_ context.Context, id int64) (*crm.Invoice, error) {
	if invoice, ok := s.invoices[id]; ok {
		return invoice, nil
	}
	return nil, errors.New("invoice not found")
}

func (s *stubFetcher) GetPayment(_ context.Context, id int64) (*crm.Payment, error) {
	if payment, ok := s.payments[id]; ok {
		return payment, nil
	}
	return nil, errors.New("payment not found")
}

func newPaymentsFixture() *PaymentsBuilder {
	clients := []crm.Client{
		{
			ID: 1, ClientType: crm.ClientTypeResidential,
			FirstName: "Ivan", LastName: "Petrov",
			UserIdent: "8001014505", OrganizationID: 1,
		},
		{
			ID: 2, ClientType: crm.ClientTypeCommercial,
			CompanyName:               "Net Ltd",
			CompanyRegistrationNumber: "123456789",
			CompanyTaxID:              "BG123456789",
			OrganizationID:            1,
		},
		{ID: 3, ClientType: crm.ClientTypeCommercial, FirstName: "Maria", LastName: "Ivanova"},
	}
	methods := []crm.PaymentMethod{
		{ID: "m-cash", Name: "Cash"},
		{ID: "m-bank", Name: "Bank transfer"},
	}
	orgs := []crm.Organization{{ID: 1, Name: "Example ISP"}}
	return NewPaymentsBuilder(clients, methods, orgs)
}

func TestPaymentRowsOnePerCover(t *testing.T) {
	builder := newPaymentsFixture()

	payment := crm.Payment{
		ID: 11, ClientID: 1, MethodID: "m-bank",
		CreatedDate: "2024-03-07T10:00:00Z",
		Amount:      120, CurrencyCode: "BGN", Note: "two invoices",
		InvoiceDetails: []crm.InvoiceDetail{
			{InvoiceNumber: "A001", InvoiceDate: "2024-02-01", InvoiceTotal: 60, InvoiceStatus: "Paid", AmountCovered: 60},
			{InvoiceNumber: "A002", InvoiceDate: "2024-03-01", InvoiceTotal: 80, InvoiceStatus: "Partially paid", AmountCovered: 60},
		},
	}

	rows := builder.Rows([]crm.Payment{payment})
	require.Len(t, rows, 2)

	for _, row := range rows {
		assert.Len(t, row, len(PaymentsHeader))
	}
	assert.Equal(t, "Example ISP", rows[0][0])
	assert.Equal(t, "2024-03-07", rows[0][3])
	assert.Equal(t, "Private Person", rows[0][5])
	assert.Equal(t, "Ivan Petrov", rows[0][6])
	assert.Equal(t, "Bank transfer", rows[0][10])
	assert.Equal(t, "A001", rows[0][14])
	assert.Equal(t, "A002", rows[1][14])
	assert.Equal(t, "two invoices", rows[1][19])
}

func TestPaymentRowsNoCovers(t *testing.T) {
	builder := newPaymentsFixture()

	rows := builder.Rows([]crm.Payment{{
		ID: 12, ClientID: 2, MethodID: "m-cash",
		CreatedDate: "2024-03-07T10:00:00Z", Amount: 50, CreditAmount: 50,
	}})
	require.Len(t, rows, 1)

	assert.Equal(t, "Company", rows[0][5])
	assert.Equal(t, "Net Ltd", rows[0][6])
	assert.Equal(t, "123456789", rows[0][7])
	for col := 14; col <= 18; col++ {
		assert.Equal(t, "", rows[0][col], "invoice column %d must be empty", col)
	}
}

func TestPaymentRowsMissingClient(t *testing.T) {
	builder := newPaymentsFixture()

	rows := builder.Rows([]crm.Payment{{ID: 13, ClientID: 999, MethodID: "nope"}})
	require.Len(t, rows, 1)

	assert.Equal(t, "", rows[0][0])
	assert.Equal(t, "", rows[0][5])
	assert.Equal(t, "", rows[0][6])
	assert.Equal(t, "Unknown", rows[0][10])
}

func TestPaymentRowsCompanyNameFallback(t *testing.T) {
	builder := newPaymentsFixture()

	rows := builder.Rows([]crm.Payment{{ID: 14, ClientID: 3}})
	require.Len(t, rows, 1)

	assert.Equal(t, "Maria Ivanova", rows[0][6])
}

func TestEnrichPayments(t *testing.T) {
	memo := crm.NewMemo(&stubFetcher{
		invoices: map[int64]*crm.Invoice{
			100: {ID: 100, Number: "A100", CreatedDate: "2024-02-15T08:00:00Z", Total: 42.5, Status: crm.StatusPaid},
		},
	})

	payments := []crm.Payment{{
		ID: 20,
		Covers: []crm.PaymentCover{
			{InvoiceID: 100, Amount: 42.5},
			{InvoiceID: 999, Amount: 7},
			{Amount: 3},
		},
	}}
	EnrichPayments(context.Background(), memo, payments)

	details := payments[0].InvoiceDetails
	require.Len(t, details, 2)

	assert.Equal(t, "A100", details[0].InvoiceNumber)
	assert.Equal(t, "2024-02-15", details[0].InvoiceDate)
	assert.Equal(t, "Paid", details[0].InvoiceStatus)
	assert.Equal(t, 42.5, details[0].AmountCovered)

	assert.Equal(t, "", details[1].InvoiceNumber)
	assert.Equal(t, "Unknown", details[1].InvoiceStatus)
	assert.Equal(t, 7.0, details[1].AmountCovered)
}
