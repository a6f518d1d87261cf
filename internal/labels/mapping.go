// Package labels maps service plans and surcharges to the item names the
// accounting import expects.
package labels

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"ucrm-export/internal/crm"
)

// PlanTypeInternet marks plans covered by the shared internet label.
const PlanTypeInternet = "Internet"

// Mapping is the persisted label configuration. Plan and surcharge keys are
// decimal ids.
type Mapping struct {
	InternetLabel string            `json:"internetLabel"`
	Plans         map[string]string `json:"plans"`
	Surcharges    map[string]string `json:"surcharges"`
}

// NewMapping returns an empty mapping with allocated maps.
func NewMapping() *Mapping {
	return &Mapping{
		Plans:      make(map[string]string),
		Surcharges: make(map[string]string),
	}
}

// Load reads a mapping from path. A missing file yields an empty mapping.
func Load(path string) (*Mapping, error) {
	const op = "Load"

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewMapping(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s: %w", op, path, err)
	}

	mapping := NewMapping()
	if err := json.Unmarshal(data, mapping); err != nil {
		return nil, fmt.Errorf("%s: failed to parse %s: %w", op, path, err)
	}
	if mapping.Plans == nil {
		mapping.Plans = make(map[string]string)
	}
	if mapping.Surcharges == nil {
		mapping.Surcharges = make(map[string]string)
	}
	return mapping, nil
}

// Save writes the mapping to path, creating parent directories as needed.
func (m *Mapping) Save(path string) error {
	const op = "Save"

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%s: failed to create directory: %w", op, err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: failed to encode mapping: %w", op, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%s: failed to write %s: %w", op, path, err)
	}
	return nil
}

// SetPlan records a label for a plan id.
func (m *Mapping) SetPlan(planID int64, label string) {
	m.Plans[strconv.FormatInt(planID, 10)] = label
}

// SetSurcharge records a label for a surcharge id.
func (m *Mapping) SetSurcharge(surchargeID int64, label string) {
	m.Surcharges[strconv.FormatInt(surchargeID, 10)] = label
}

// Resolver answers label lookups for concrete invoice items.
type Resolver struct {
	surcharges map[int64]string
	services   map[int64]string
}

// BuildResolver folds the mapping together with CRM reference data. Plan
// labels are resolved down to service-instance ids. A per-plan label wins
// over the internet default; the internet default applies only to
// internet-type plans.
func BuildResolver(mapping *Mapping, plans []crm.ServicePlan, services []crm.Service) *Resolver {
	planLabels := make(map[int64]string, len(plans))
	for _, plan := range plans {
		if label, ok := mapping.Plans[strconv.FormatInt(plan.ID, 10)]; ok && label != "" {
			planLabels[plan.ID] = label
			continue
		}
		if mapping.InternetLabel != "" && plan.ServicePlanType == PlanTypeInternet {
			planLabels[plan.ID] = mapping.InternetLabel
		}
	}

	serviceLabels := make(map[int64]string)
	for _, service := range services {
		if label, ok := planLabels[service.ServicePlanID]; ok {
			serviceLabels[service.ID] = label
		}
	}

	surchargeLabels := make(map[int64]string, len(mapping.Surcharges))
	for key, label := range mapping.Surcharges {
		if label == "" {
			continue
		}
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		surchargeLabels[id] = label
	}

	return &Resolver{surcharges: surchargeLabels, services: serviceLabels}
}

// Resolve returns the mapped label for an invoice item, or "" when no
// mapping applies. Surcharge mappings take precedence over service ones.
func (r *Resolver) Resolve(item crm.InvoiceItem) string {
	if item.ServiceSurchargeID != 0 {
		if label, ok := r.surcharges[item.ServiceSurchargeID]; ok {
			return label
		}
	}
	if item.ServiceID != 0 {
		if label, ok := r.services[item.ServiceID]; ok {
			return label
		}
	}
	return ""
}
