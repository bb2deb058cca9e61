package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeAssemblyPricing_ScenarioTotals(t *testing.T) {
	snap := testCompanySnapshot() // tax 8.25%, misc 10%, [0,100] -> 100%
	materials := map[uint]MaterialSnapshot{
		1: {ID: 1, BaseCost: 5, Taxable: true, LaborMinutes: 10},
	}
	asm := AssemblySnapshot{
		ID:    1,
		Items: []LineItem{{Kind: LineItemMaterial, MaterialID: 1, Quantity: 3}},
	}

	got := ComputeAssemblyPricing(asm, materials, testJobTypes(), snap)

	assert.InDelta(t, 15, got.MaterialCostTotal, 1e-9)
	assert.InDelta(t, 35.715, got.MaterialPriceTotal, 1e-2)
	assert.InDelta(t, 3*1.0825, got.MiscMaterialPrice, 1e-3)
	assert.Equal(t, 30.0, got.LaborMinutesActual)
}

func TestComputeAssemblyPricing_LaborPricedAtRequiredRevenue(t *testing.T) {
	snap := capacitySnapshot() // $20/hr wage, 2080 paid hrs
	jobTypes := map[uint]JobTypeSnapshot{
		1: {ID: 1, BillingMode: BillingModeHourly, EfficiencyPercent: 100, GrossMarginPercent: 50, IsDefault: true, Enabled: true},
	}
	asm := AssemblySnapshot{
		ID:    1,
		Items: []LineItem{{Kind: LineItemLabor, LaborMinutes: 90}},
	}

	got := ComputeAssemblyPricing(asm, nil, jobTypes, snap)

	// 20 / (1 - 0.5) = $40/hr sell rate over 1.5 hours.
	assert.InDelta(t, 40, got.HourlySellRate, 1e-9)
	assert.InDelta(t, 60, got.LaborPriceTotal, 1e-9)
	assert.InDelta(t, 60, got.TotalPrice, 1e-9)
}

func TestComputeAssemblyPricing_EfficiencyInflatesBilledMinutes(t *testing.T) {
	jobTypeID := uint(2) // 50% efficiency, hourly
	asm := AssemblySnapshot{
		ID:        1,
		JobTypeID: &jobTypeID,
		Items:     []LineItem{{Kind: LineItemLabor, LaborMinutes: 100}},
	}

	got := ComputeAssemblyPricing(asm, nil, testJobTypes(), CompanySnapshot{})

	assert.Equal(t, 100.0, got.LaborMinutesActual)
	assert.Equal(t, 200.0, got.LaborMinutesExpected)
	assert.Equal(t, uint(2), got.JobTypeID)
}

func TestComputeAssemblyPricing_RuleLockWinsOverSelection(t *testing.T) {
	selected, locked := uint(1), uint(2)
	asm := AssemblySnapshot{
		ID:                  1,
		JobTypeID:           &selected,
		RuleLockedJobTypeID: &locked,
	}

	got := ComputeAssemblyPricing(asm, nil, testJobTypes(), CompanySnapshot{})
	assert.Equal(t, uint(2), got.JobTypeID)
}

func TestComputeAssemblyPricing_CustomerSupplied(t *testing.T) {
	snap := testCompanySnapshot()
	materials := map[uint]MaterialSnapshot{
		1: {ID: 1, BaseCost: 5, Taxable: true, LaborMinutes: 10},
	}
	asm := AssemblySnapshot{
		ID:                        1,
		CustomerSuppliesMaterials: true,
		Items:                     []LineItem{{Kind: LineItemMaterial, MaterialID: 1, Quantity: 3}},
	}

	got := ComputeAssemblyPricing(asm, materials, testJobTypes(), snap)

	assert.Zero(t, got.MaterialCostTotal)
	assert.Zero(t, got.MaterialPriceTotal)
	assert.Equal(t, 30.0, got.LaborMinutesActual)
}
