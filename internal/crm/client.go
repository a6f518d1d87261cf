package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ucrm-export/internal/logger"
)

const appKeyHeader = "X-Auth-App-Key"

// API is a thin typed wrapper over the CRM's REST API.
type API struct {
	baseURL    string
	appKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewAPI creates a CRM API client. baseURL is the API root, e.g.
// "https://crm.example.com/api/v1.0".
func NewAPI(baseURL, appKey string) *API {
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		appKey:     appKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        logger.WithComponent("crm"),
	}
}

// RangeParams narrows list endpoints to a created-date window.
type RangeParams struct {
	CreatedDateFrom string // YYYY-MM-DD
	CreatedDateTo   string // YYYY-MM-DD
	OrganizationID  int64  // 0 = all organizations
}

func (p RangeParams) values() url.Values {
	v := url.Values{}
	if p.CreatedDateFrom != "" {
		v.Set("createdDateFrom", p.CreatedDateFrom)
	}
	if p.CreatedDateTo != "" {
		v.Set("createdDateTo", p.CreatedDateTo)
	}
	if p.OrganizationID != 0 {
		v.Set("organizationId", strconv.FormatInt(p.OrganizationID, 10))
	}
	return v
}

// NotFoundError reports a missing upstream entity. Row builders treat it as
// recoverable; everything else in the pipeline treats it as fatal.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("crm: %s not found", e.Path)
}

func (c *API) get(ctx context.Context, path string, query url.Values, out any) error {
	const op = "get"

	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to build request for %s: %w", op, path, err)
	}
	req.Header.Set(appKeyHeader, c.appKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request to %s failed: %w", op, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Path: path}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: %s returned %d: %s", op, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode %s response: %w", op, path, err)
	}
	return nil
}

// ListPayments returns payments created within the range.
func (c *API) ListPayments(ctx context.Context, params RangeParams) ([]Payment, error) {
	var payments []Payment
	if err := c.get(ctx, "payments", params.values(), &payments); err != nil {
		return nil, err
	}
	c.log.Debug().Int("count", len(payments)).Msg("Fetched payments")
	return payments, nil
}

// ListInvoices returns invoices created within the range, tagged KindInvoice.
func (c *API) ListInvoices(ctx context.Context, params RangeParams) ([]Invoice, error) {
	var invoices []Invoice
	if err := c.get(ctx, "invoices", params.values(), &invoices); err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].Kind = KindInvoice
	}
	c.log.Debug().Int("count", len(invoices)).Msg("Fetched invoices")
	return invoices, nil
}

// ListCreditNotes returns credit notes created within the range, tagged
// KindCreditNote.
func (c *API) ListCreditNotes(ctx context.Context, params RangeParams) ([]Invoice, error) {
	var notes []Invoice
	if err := c.get(ctx, "credit-notes", params.values(), &notes); err != nil {
		return nil, err
	}
	for i := range notes {
		notes[i].Kind = KindCreditNote
	}
	c.log.Debug().Int("count", len(notes)).Msg("Fetched credit notes")
	return notes, nil
}

// ListClients returns clients, optionally restricted to an organization.
func (c *API) ListClients(ctx context.Context, organizationID int64) ([]Client, error) {
	v := url.Values{}
	if organizationID != 0 {
		v.Set("organizationId", strconv.FormatInt(organizationID, 10))
	}
	var clients []Client
	if err := c.get(ctx, "clients", v, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// ListPaymentMethods returns all configured payment methods.
func (c *API) ListPaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	var methods []PaymentMethod
	if err := c.get(ctx, "payment-methods", nil, &methods); err != nil {
		return nil, err
	}
	return methods, nil
}

// ListOrganizations returns all billing organizations.
func (c *API) ListOrganizations(ctx context.Context) ([]Organization, error) {
	var orgs []Organization
	if err := c.get(ctx, "organizations", nil, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// ListServicePlans returns all service plans.
func (c *API) ListServicePlans(ctx context.Context) ([]ServicePlan, error) {
	var plans []ServicePlan
	if err := c.get(ctx, "service-plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// ListServices returns all client-service instances.
func (c *API) ListServices(ctx context.Context) ([]Service, error) {
	var services []Service
	if err := c.get(ctx, "clients/services", nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// ListSurcharges returns all surcharges.
func (c *API) ListSurcharges(ctx context.Context) ([]Surcharge, error) {
	var surcharges []Surcharge
	if err := c.get(ctx, "surcharges", nil, &surcharges); err != nil {
		return nil, err
	}
	return surcharges, nil
}

// GetInvoice fetches a single invoice by id.
func (c *API) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	var invoice Invoice
	if err := c.get(ctx, fmt.Sprintf("invoices/%d", id), nil, &invoice); err != nil {
		return nil, err
	}
	invoice.Kind = KindInvoice
	return &invoice, nil
}

// GetPayment fetches a single payment by id.
func (c *API) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	var payment Payment
	if err := c.get(ctx, fmt.Sprintf("payments/%d", id), nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// DownloadInvoicePDF fetches the rendered PDF of an invoice or credit note.
func (c *API) DownloadInvoicePDF(ctx context.Context, id int64) ([]byte, error) {
	const op = "DownloadInvoicePDF"

	u := fmt.Sprintf("%s/invoices/%d/pdf", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set(appKeyHeader, c.appKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{Path: fmt.Sprintf("invoices/%d/pdf", id)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: invoice %d returned %d", op, id, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
