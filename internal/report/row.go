// Package report turns raw billing records into ordered export rows for
// the payments and sales reports.
package report

import (
	"strconv"
	"strings"
)

// Row is one export row. Cells are string, int64, or float64; writers decide
// how each is rendered.
type Row []any

// PaymentsHeader is the payments report column order.
var PaymentsHeader = []string{
	"Organization",
	"Payment ID",
	"Provider Payment ID",
	"Payment Date",
	"Client ID",
	"Client Type",
	"Client Name",
	"Company ID (EIK)",
	"VAT ID",
	"Personal ID",
	"Payment Method",
	"Currency",
	"Total Payment Amount",
	"Credit Amount",
	"Invoice Number",
	"Invoice Date",
	"Invoice Total",
	"Invoice Status",
	"Amount Applied to Invoice",
	"Note",
}

// SalesHeader is the 21-column Plus-Minus layout. The CSV variant omits it;
// the spreadsheet variant keeps it for readability.
var SalesHeader = []string{
	"Вид. Документ",
	"Дата",
	"Номер",
	"Партньор",
	"ЕИК",
	"ИН по ДДС",
	"Склад",
	"Вид",
	"Група",
	"Подгрупа",
	"Наименование",
	"Код",
	"Мярка",
	"Количество",
	"Ед. Цена",
	"Стойност",
	"ДДС Вид",
	"Вид плащане",
	"Обща стойност с ДДС",
	"ДДС (документ)",
	"Платено",
}

// CellString renders a single cell for delimited text output.
func CellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// formatAmount renders a monetary value with exactly two decimals.
func formatAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

// truncateDate reduces an ISO timestamp to its YYYY-MM-DD part.
func truncateDate(isoDate string) string {
	if len(isoDate) > 10 {
		return isoDate[:10]
	}
	return isoDate
}

// sanitizeName strips the characters the accounting import rejects.
func sanitizeName(value string) string {
	return strings.NewReplacer(`"`, "", "'", "", "/", "", `\`, "", "&", "").Replace(value)
}
