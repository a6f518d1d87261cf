package crm

import (
	"context"

	"github.com/rs/zerolog"

	"ucrm-export/internal/logger"
)

// Fetcher is the subset of the API used by per-record lookups.
type Fetcher interface {
	GetInvoice(ctx context.Context, id int64) (*Invoice, error)
	GetPayment(ctx context.Context, id int64) (*Payment, error)
}

// Memo caches invoice and payment lookups for the lifetime of a single
// export run. A failed fetch is memoized as absent so the same broken
// reference is not re-requested for every row that mentions it.
type Memo struct {
	fetcher  Fetcher
	invoices map[int64]*Invoice
	payments map[int64]*Payment
	log      zerolog.Logger
}

// NewMemo creates an empty memo backed by the given fetcher.
func NewMemo(fetcher Fetcher) *Memo {
	return &Memo{
		fetcher:  fetcher,
		invoices: make(map[int64]*Invoice),
		payments: make(map[int64]*Payment),
		log:      logger.WithComponent("crm-memo"),
	}
}

// Invoice returns the invoice by id, fetching it at most once. Returns nil
// when the invoice cannot be fetched.
func (m *Memo) Invoice(ctx context.Context, id int64) *Invoice {
	if invoice, ok := m.invoices[id]; ok {
		return invoice
	}
	invoice, err := m.fetcher.GetInvoice(ctx, id)
	if err != nil {
		m.log.Warn().Err(err).Int64("invoice_id", id).Msg("Failed to fetch invoice, treating as absent")
		invoice = nil
	}
	m.invoices[id] = invoice
	return invoice
}

// Payment returns the payment by id, fetching it at most once. Returns nil
// when the payment cannot be fetched.
func (m *Memo) Payment(ctx context.Context, id int64) *Payment {
	if payment, ok := m.payments[id]; ok {
		return payment
	}
	payment, err := m.fetcher.GetPayment(ctx, id)
	if err != nil {
		m.log.Warn().Err(err).Int64("payment_id", id).Msg("Failed to fetch payment, treating as absent")
		payment = nil
	}
	m.payments[id] = payment
	return payment
}

// SeedInvoices preloads already-fetched invoices so bulk list results are
// reused instead of refetched one by one.
func (m *Memo) SeedInvoices(invoices []Invoice) {
	for i := range invoices {
		m.invoices[invoices[i].ID] = &invoices[i]
	}
}

// SeedPayments preloads already-fetched payments.
func (m *Memo) SeedPayments(payments []Payment) {
	for i := range payments {
		m.payments[payments[i].ID] = &payments[i]
	}
}
