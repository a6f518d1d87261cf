package labels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ucrm-export/internal/crm"
)

func TestLoadMissingFile(t *testing.T) {
	mapping, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Empty(t, mapping.InternetLabel)
	assert.NotNil(t, mapping.Plans)
	assert.NotNil(t, mapping.Surcharges)
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mapping.json")

	mapping := NewMapping()
	mapping.InternetLabel = "ИНТЕРНЕТ"
	mapping.SetPlan(7, "Оптичен интернет")
	mapping.SetSurcharge(3, "Рутер под наем")
	require.NoError(t, mapping.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ИНТЕРНЕТ", loaded.InternetLabel)
	assert.Equal(t, "Оптичен интернет", loaded.Plans["7"])
	assert.Equal(t, "Рутер под наем", loaded.Surcharges["3"])
}

func TestResolverPrecedence(t *testing.T) {
	mapping := NewMapping()
	mapping.InternetLabel = "ИНТЕРНЕТ"
	mapping.SetPlan(2, "Специален план")
	mapping.SetSurcharge(9, "Инсталация")

	plans := []crm.ServicePlan{
		{ID: 1, Name: "Home 50", ServicePlanType: PlanTypeInternet},
		{ID: 2, Name: "Business 100", ServicePlanType: PlanTypeInternet},
		{ID: 3, Name: "IPTV", ServicePlanType: "General"},
	}
	services := []crm.Service{
		{ID: 10, ServicePlanID: 1},
		{ID: 11, ServicePlanID: 2},
		{ID: 12, ServicePlanID: 3},
	}
	resolver := BuildResolver(mapping, plans, services)

	t.Run("internet default applies to internet plans", func(t *testing.T) {
		assert.Equal(t, "ИНТЕРНЕТ", resolver.Resolve(crm.InvoiceItem{ServiceID: 10}))
	})

	t.Run("plan label wins over internet default", func(t *testing.T) {
		assert.Equal(t, "Специален план", resolver.Resolve(crm.InvoiceItem{ServiceID: 11}))
	})

	t.Run("internet default skips non-internet plans", func(t *testing.T) {
		assert.Empty(t, resolver.Resolve(crm.InvoiceItem{ServiceID: 12}))
	})

	t.Run("surcharge label wins over service label", func(t *testing.T) {
		assert.Equal(t, "Инсталация", resolver.Resolve(crm.InvoiceItem{ServiceID: 10, ServiceSurchargeID: 9}))
	})

	t.Run("unmapped surcharge falls back to service", func(t *testing.T) {
		assert.Equal(t, "ИНТЕРНЕТ", resolver.Resolve(crm.InvoiceItem{ServiceID: 10, ServiceSurchargeID: 4}))
	})

	t.Run("no mapping yields empty label", func(t *testing.T) {
		assert.Empty(t, resolver.Resolve(crm.InvoiceItem{}))
	})
}
