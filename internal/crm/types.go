// Package crm talks to the upstream UCRM-style billing backend and models
// the billing records the export engine consumes.
package crm

// Client types as stored by the CRM.
const (
	ClientTypeResidential = 1
	ClientTypeCommercial  = 2
)

// InvoiceStatus is the CRM's invoice status code.
type InvoiceStatus int

const (
	StatusDraft InvoiceStatus = iota
	StatusUnpaid
	StatusPartiallyPaid
	StatusPaid
	StatusVoid
)

// String renders the status for the payments report. Codes the CRM may add
// in the future come out as "Unknown" rather than an empty cell.
func (s InvoiceStatus) String() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusUnpaid:
		return "Unpaid"
	case StatusPartiallyPaid:
		return "Partially paid"
	case StatusPaid:
		return "Paid"
	case StatusVoid:
		return "Void"
	default:
		return "Unknown"
	}
}

// DocumentKind distinguishes invoices from credit notes. The codes are the
// Plus-Minus document type codes.
type DocumentKind int

const (
	KindInvoice    DocumentKind = 1
	KindCreditNote DocumentKind = 3
)

// Payment is a payment record as returned by the CRM.
type Payment struct {
	ID                int64          `json:"id"`
	ClientID          int64          `json:"clientId"`
	MethodID          string         `json:"methodId"`
	ProviderPaymentID string         `json:"providerPaymentId"`
	CreatedDate       string         `json:"createdDate"`
	Amount            float64        `json:"amount"`
	CreditAmount      float64        `json:"creditAmount"`
	CurrencyCode      string         `json:"currencyCode"`
	Note              string         `json:"note"`
	Covers            []PaymentCover `json:"paymentCovers"`

	// InvoiceDetails is filled in-memory from Covers before row building;
	// the CRM never sends it.
	InvoiceDetails []InvoiceDetail `json:"-"`
}

// PaymentCover links part of a payment's amount to an invoice.
type PaymentCover struct {
	InvoiceID int64   `json:"invoiceId"`
	PaymentID int64   `json:"paymentId"`
	Amount    float64 `json:"amount"`
}

// InvoiceDetail is the resolved view of a payment cover. A cover whose
// invoice is gone keeps zero values so the export degrades instead of
// failing.
type InvoiceDetail struct {
	InvoiceID     int64
	InvoiceNumber string
	InvoiceDate   string
	InvoiceTotal  float64
	InvoiceStatus string
	AmountCovered float64
}

// Invoice is an invoice or credit note; Kind tells them apart. The client
// fields are the CRM's point-in-time snapshot, not the live client record.
type Invoice struct {
	ID                              int64          `json:"id"`
	Number                          string         `json:"number"`
	CreatedDate                     string         `json:"createdDate"`
	ClientID                        int64          `json:"clientId"`
	ClientFirstName                 string         `json:"clientFirstName"`
	ClientLastName                  string         `json:"clientLastName"`
	ClientCompanyName               string         `json:"clientCompanyName"`
	ClientCompanyRegistrationNumber string         `json:"clientCompanyRegistrationNumber"`
	ClientCompanyTaxID              string         `json:"clientCompanyTaxId"`
	OrganizationID                  int64          `json:"organizationId"`
	Status                          InvoiceStatus  `json:"status"`
	Total                           float64        `json:"total"`
	TotalTaxAmount                  float64        `json:"totalTaxAmount"`
	TotalUntaxed                    float64        `json:"totalUntaxed"`
	Subtotal                        float64        `json:"subtotal"`
	Proforma                        bool           `json:"proforma"`
	Items                           []InvoiceItem  `json:"items"`
	PaymentCovers                   []PaymentCover `json:"paymentCovers"`

	Kind DocumentKind `json:"-"`
}

// InvoiceItem is a single invoice line.
type InvoiceItem struct {
	ID       int64   `json:"id"`
	Type     string  `json:"type"` // "service", "product", "surcharge", "fee", ...
	Label    string  `json:"label"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`

	// ServiceID references the client-service instance the line bills;
	// ServiceSurchargeID references a surcharge attached to it.
	ServiceID          int64 `json:"serviceId"`
	ServiceSurchargeID int64 `json:"serviceSurchargeId"`
}

// Client is a CRM client record.
type Client struct {
	ID                        int64  `json:"id"`
	ClientType                int    `json:"clientType"`
	FirstName                 string `json:"firstName"`
	LastName                  string `json:"lastName"`
	CompanyName               string `json:"companyName"`
	CompanyRegistrationNumber string `json:"companyRegistrationNumber"`
	CompanyTaxID              string `json:"companyTaxId"`
	UserIdent                 string `json:"userIdent"`
	OrganizationID            int64  `json:"organizationId"`
}

// PaymentMethod is a configured payment method (id is a UUID string).
type PaymentMethod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Organization is a billing organization.
type Organization struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ServicePlan is a tariff definition; ServicePlanType is "Internet" for
// connectivity plans and "General" otherwise.
type ServicePlan struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	ServicePlanType string `json:"servicePlanType"`
}

// Service is a client-service instance of a plan. Invoice items reference
// services, not plans, so label mapping has to walk this indirection.
type Service struct {
	ID            int64 `json:"id"`
	ClientID      int64 `json:"clientId"`
	ServicePlanID int64 `json:"servicePlanId"`
}

// Surcharge is a one-off or recurring fee attached to services.
type Surcharge struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
