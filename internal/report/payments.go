package report

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"ucrm-export/internal/crm"
	"ucrm-export/internal/logger"
)

// PaymentsBuilder expands payments into payments-report rows using
// pre-fetched reference data.
type PaymentsBuilder struct {
	clients       map[int64]crm.Client
	methods       map[string]string
	organizations map[int64]string
	log           zerolog.Logger
}

// NewPaymentsBuilder indexes the reference data once up front.
func NewPaymentsBuilder(clients []crm.Client, methods []crm.PaymentMethod, organizations []crm.Organization) *PaymentsBuilder {
	clientMap := make(map[int64]crm.Client, len(clients))
	for _, client := range clients {
		clientMap[client.ID] = client
	}
	methodMap := make(map[string]string, len(methods))
	for _, method := range methods {
		methodMap[method.ID] = method.Name
	}
	orgMap := make(map[int64]string, len(organizations))
	for _, org := range organizations {
		orgMap[org.ID] = org.Name
	}
	return &PaymentsBuilder{
		clients:       clientMap,
		methods:       methodMap,
		organizations: orgMap,
		log:           logger.WithComponent("payments-report"),
	}
}

// EnrichPayments resolves every payment cover into an InvoiceDetail through
// the memo. Covers without an invoice id are skipped; covers whose invoice
// cannot be fetched degrade to empty detail fields.
func EnrichPayments(ctx context.Context, memo *crm.Memo, payments []crm.Payment) {
	for i := range payments {
		payment := &payments[i]
		payment.InvoiceDetails = payment.InvoiceDetails[:0]

		for _, cover := range payment.Covers {
			if cover.InvoiceID == 0 {
				continue
			}
			detail := crm.InvoiceDetail{
				InvoiceID:     cover.InvoiceID,
				InvoiceStatus: crm.InvoiceStatus(-1).String(),
				AmountCovered: cover.Amount,
			}
			if invoice := memo.Invoice(ctx, cover.InvoiceID); invoice != nil {
				detail.InvoiceNumber = invoice.Number
				detail.InvoiceDate = truncateDate(invoice.CreatedDate)
				detail.InvoiceTotal = invoice.Total
				detail.InvoiceStatus = invoice.Status.String()
			}
			payment.InvoiceDetails = append(payment.InvoiceDetails, detail)
		}
	}
}

// Rows expands every payment. A payment with k resolved covers yields k
// rows; one with none yields a single row with empty invoice fields.
func (b *PaymentsBuilder) Rows(payments []crm.Payment) []Row {
	rows := make([]Row, 0, len(payments))
	for i := range payments {
		rows = append(rows, b.paymentRows(&payments[i])...)
	}
	return rows
}

func (b *PaymentsBuilder) paymentRows(payment *crm.Payment) []Row {
	client, found := b.clients[payment.ClientID]
	if !found {
		b.log.Debug().Int64("client_id", payment.ClientID).Int64("payment_id", payment.ID).Msg("Client not found, emitting empty client fields")
	}

	base := Row{
		b.organizations[client.OrganizationID],
		payment.ID,
		payment.ProviderPaymentID,
		truncateDate(payment.CreatedDate),
		payment.ClientID,
		clientTypeLabel(client, found),
		clientDisplayName(client, found),
		client.CompanyRegistrationNumber,
		client.CompanyTaxID,
		client.UserIdent,
		b.methodName(payment.MethodID),
		payment.CurrencyCode,
		payment.Amount,
		payment.CreditAmount,
	}

	if len(payment.InvoiceDetails) == 0 {
		return []Row{append(base, "", "", "", "", "", payment.Note)}
	}

	rows := make([]Row, 0, len(payment.InvoiceDetails))
	for _, detail := range payment.InvoiceDetails {
		row := make(Row, 0, len(PaymentsHeader))
		row = append(row, base...)
		row = append(row,
			detail.InvoiceNumber,
			detail.InvoiceDate,
			detail.InvoiceTotal,
			detail.InvoiceStatus,
			detail.AmountCovered,
			payment.Note,
		)
		rows = append(rows, row)
	}
	return rows
}

func (b *PaymentsBuilder) methodName(methodID string) string {
	if name, ok := b.methods[methodID]; ok {
		return name
	}
	return "Unknown"
}

func clientTypeLabel(client crm.Client, found bool) string {
	if !found {
		return ""
	}
	switch client.ClientType {
	case crm.ClientTypeResidential:
		return "Private Person"
	case crm.ClientTypeCommercial:
		return "Company"
	default:
		return "Unknown"
	}
}

func clientDisplayName(client crm.Client, found bool) string {
	if !found {
		return ""
	}
	personal := strings.TrimSpace(client.FirstName + " " + client.LastName)
	if client.ClientType == crm.ClientTypeResidential {
		return personal
	}
	if client.CompanyName != "" {
		return client.CompanyName
	}
	return personal
}
