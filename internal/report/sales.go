package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ucrm-export/internal/crm"
	"ucrm-export/internal/labels"
	"ucrm-export/internal/logger"
)

// Plus-Minus payment type codes. Card payments are not detected yet; no
// card method id mapping exists, so they come out as bank transfers.
const (
	PaymentTypeCash = 1
	PaymentTypeBank = 2
	PaymentTypeCard = 4
)

// Plus-Minus item kind literals.
const (
	itemKindGoods    = "СТОКИ"
	itemKindServices = "УСЛУГИ"
)

const (
	vatClass    = "ДДС20"
	goodsUnit   = "бр."
	genericLine = "Услуга"
)

// SalesBuilder expands invoices and credit notes into Plus-Minus rows.
type SalesBuilder struct {
	memo         *crm.Memo
	labels       *labels.Resolver
	cashMethodID string
	log          zerolog.Logger
}

// NewSalesBuilder wires the per-run memo and label resolver. cashMethodID
// is the payment method id classified as a cash sale.
func NewSalesBuilder(memo *crm.Memo, resolver *labels.Resolver, cashMethodID string) *SalesBuilder {
	return &SalesBuilder{
		memo:         memo,
		labels:       resolver,
		cashMethodID: cashMethodID,
		log:          logger.WithComponent("sales-report"),
	}
}

// Rows expands every document into one row per line item.
func (b *SalesBuilder) Rows(ctx context.Context, documents []crm.Invoice) []Row {
	rows := make([]Row, 0, len(documents))
	for i := range documents {
		rows = append(rows, b.DocumentRows(ctx, &documents[i])...)
	}
	return rows
}

// DocumentRows builds the rows of a single document. Document-level
// amounts (gross total, VAT, paid) appear only on the first row; the
// downstream import rejects files that repeat them.
func (b *SalesBuilder) DocumentRows(ctx context.Context, doc *crm.Invoice) []Row {
	docType := int(doc.Kind)
	if docType == 0 {
		docType = int(crm.KindInvoice)
	}
	docDate := formatSalesDate(doc.CreatedDate)
	partner := sanitizeName(documentPartnerName(doc))
	paymentType := b.paymentTypeCode(ctx, doc)
	totalWithVat := formatAmount(doc.Total)
	totalVat := formatAmount(doc.TotalTaxAmount)
	paidAmount := formatAmount(coveredAmount(doc))

	if len(doc.Items) == 0 {
		return []Row{{
			docType,
			docDate,
			doc.Number,
			partner,
			doc.ClientCompanyRegistrationNumber,
			doc.ClientCompanyTaxID,
			"",
			itemKindServices,
			"",
			"",
			genericLine,
			"",
			"",
			"",
			"",
			formatAmount(doc.Total - doc.TotalTaxAmount),
			vatClass,
			paymentType,
			totalWithVat,
			totalVat,
			paidAmount,
		}}
	}

	lineTotals := redistributeTotals(doc)

	rows := make([]Row, 0, len(doc.Items))
	for i, item := range doc.Items {
		lineTotal := lineTotals[i]
		isGoods := item.Type == "product"

		kind := itemKindServices
		code := ""
		unit := ""
		var quantity, unitPrice any = "", ""
		if isGoods {
			kind = itemKindGoods
			code = goodsCode(item)
			unit = goodsUnit
			quantity = item.Quantity
			unitPrice = formatAmount(discountedUnitPrice(lineTotal, item.Quantity))
		}

		label := sanitizeName(item.Label)
		if mapped := b.labels.Resolve(item); mapped != "" {
			label = mapped
		}

		row := Row{
			docType,
			docDate,
			doc.Number,
			partner,
			doc.ClientCompanyRegistrationNumber,
			doc.ClientCompanyTaxID,
			"",
			kind,
			"",
			"",
			label,
			code,
			unit,
			quantity,
			unitPrice,
			formatAmount(lineTotal),
			vatClass,
			paymentType,
			"",
			"",
			"",
		}
		if i == 0 {
			row[18] = totalWithVat
			row[19] = totalVat
			row[20] = paidAmount
		}
		rows = append(rows, row)
	}
	return rows
}

// redistributeTotals spreads the document's untaxed total across its items
// proportionally to their raw totals. The last item absorbs the rounding
// remainder so the column sums exactly to the untaxed total.
func redistributeTotals(doc *crm.Invoice) []float64 {
	untaxed := decimal.NewFromFloat(doc.TotalUntaxed)
	ratio := decimal.NewFromInt(1)
	if doc.Subtotal > 0 {
		ratio = untaxed.Div(decimal.NewFromFloat(doc.Subtotal))
	}

	totals := make([]float64, len(doc.Items))
	running := decimal.Zero
	for i, item := range doc.Items {
		if i == len(doc.Items)-1 {
			totals[i] = untaxed.Sub(running).Round(2).InexactFloat64()
			break
		}
		line := decimal.NewFromFloat(item.Total).Mul(ratio).Round(2)
		totals[i] = line.InexactFloat64()
		running = running.Add(line)
	}
	return totals
}

func discountedUnitPrice(lineTotal, quantity float64) float64 {
	if quantity == 0 {
		return 0
	}
	return lineTotal / quantity
}

func goodsCode(item crm.InvoiceItem) string {
	if item.ServiceID != 0 {
		return strconv.FormatInt(item.ServiceID, 10)
	}
	if item.ID != 0 {
		return strconv.FormatInt(item.ID, 10)
	}
	return ""
}

// paymentTypeCode classifies the document by its first payment cover. An
// absent or unresolvable link means bank transfer.
func (b *SalesBuilder) paymentTypeCode(ctx context.Context, doc *crm.Invoice) int {
	if len(doc.PaymentCovers) == 0 {
		return PaymentTypeBank
	}
	paymentID := doc.PaymentCovers[0].PaymentID
	if paymentID == 0 {
		return PaymentTypeBank
	}
	payment := b.memo.Payment(ctx, paymentID)
	if payment == nil {
		return PaymentTypeBank
	}
	if payment.MethodID == b.cashMethodID {
		return PaymentTypeCash
	}
	return PaymentTypeBank
}

func coveredAmount(doc *crm.Invoice) float64 {
	var paid float64
	for _, cover := range doc.PaymentCovers {
		paid += cover.Amount
	}
	return paid
}

func documentPartnerName(doc *crm.Invoice) string {
	if doc.ClientCompanyName != "" {
		return doc.ClientCompanyName
	}
	return strings.TrimSpace(doc.ClientFirstName + " " + doc.ClientLastName)
}

// formatSalesDate reorders an ISO date into DD.MM.YYYY. Anything that does
// not split into three parts passes through unchanged.
func formatSalesDate(isoDate string) string {
	if isoDate == "" {
		return ""
	}
	parts := strings.Split(truncateDate(isoDate), "-")
	if len(parts) != 3 {
		return isoDate
	}
	day, _ := strconv.Atoi(parts[2])
	month, _ := strconv.Atoi(parts[1])
	return fmt.Sprintf("%02d.%02d.%s", day, month, parts[0])
}
