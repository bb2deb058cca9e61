package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCompanySnapshot() CompanySnapshot {
	return CompanySnapshot{
		PurchaseTaxPercent:  8.25,
		MiscMaterialPercent: 10,
		MarkupTiers: []MarkupTier{
			{Min: 0, Max: 100, Percent: 100},
			{Min: 100.01, Max: 500, Percent: 50},
		},
	}
}

func TestResolveMaterialCost_TierScenario(t *testing.T) {
	snap := testCompanySnapshot()

	got := ResolveMaterialCost(MaterialCostInput{BaseCost: 5, Taxable: true}, snap)

	assert.InDelta(t, 5, got.BaseCost, 1e-9)
	assert.InDelta(t, 0.4125, got.Tax, 1e-9)
	assert.InDelta(t, 5.4125, got.Markup, 1e-9)
	assert.InDelta(t, 1.0825, got.Misc, 1e-4)
	assert.InDelta(t, 11.905, got.Total, 1e-3)
}

func TestResolveMaterialCost_TierContainment(t *testing.T) {
	snap := testCompanySnapshot()

	cases := []struct {
		name    string
		cost    float64
		wantPct float64
	}{
		{"low tier", 50, 100},
		{"upper bound of low tier", 100, 100},
		{"mid tier", 200, 50},
		{"outside all tiers", 900, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveMaterialCost(MaterialCostInput{BaseCost: tc.cost}, snap)
			assert.InDelta(t, tc.cost*tc.wantPct/100, got.Markup, 1e-9)
		})
	}
}

func TestResolveMaterialCost_TierMatchedOnTaxInclusiveCost(t *testing.T) {
	snap := testCompanySnapshot()

	// 95 pre-tax, 102.84 after tax: the tax-inclusive cost picks the tier.
	got := ResolveMaterialCost(MaterialCostInput{BaseCost: 95, Taxable: true}, snap)
	taxed := 95 * 1.0825
	assert.InDelta(t, taxed*0.50, got.Markup, 1e-9)
}

func TestResolveMaterialCost_CustomCostWins(t *testing.T) {
	snap := testCompanySnapshot()
	custom := 20.0

	got := ResolveMaterialCost(MaterialCostInput{
		BaseCost:      5,
		CustomCost:    &custom,
		UseCustomCost: true,
	}, snap)
	assert.InDelta(t, 20, got.BaseCost, 1e-9)

	// Flag off: base cost stays in effect.
	got = ResolveMaterialCost(MaterialCostInput{
		BaseCost:   5,
		CustomCost: &custom,
	}, snap)
	assert.InDelta(t, 5, got.BaseCost, 1e-9)

	// A non-finite custom cost is ignored even with the flag on.
	bad := math.NaN()
	got = ResolveMaterialCost(MaterialCostInput{
		BaseCost:      5,
		CustomCost:    &bad,
		UseCustomCost: true,
	}, snap)
	assert.InDelta(t, 5, got.BaseCost, 1e-9)
}

func TestResolveMaterialCost_NonTaxable(t *testing.T) {
	snap := testCompanySnapshot()

	got := ResolveMaterialCost(MaterialCostInput{BaseCost: 5}, snap)
	assert.Zero(t, got.Tax)
	assert.InDelta(t, 5, got.Markup, 1e-9)
}

func TestResolveMaterialCost_MiscGate(t *testing.T) {
	snap := testCompanySnapshot()

	supplied := ResolveMaterialCost(MaterialCostInput{
		BaseCost:                  5,
		CustomerSuppliesMaterials: true,
	}, snap)
	assert.Zero(t, supplied.Misc)

	snap.MiscAppliesWhenCustomerSupplies = true
	charged := ResolveMaterialCost(MaterialCostInput{
		BaseCost:                  5,
		CustomerSuppliesMaterials: true,
	}, snap)
	assert.Greater(t, charged.Misc, 0.0)
}

func TestResolveMaterialCost_MarkupOverride(t *testing.T) {
	snap := testCompanySnapshot()

	fixed := ResolveMaterialCost(MaterialCostInput{
		BaseCost: 10,
		Markup:   &MarkupPolicy{Mode: MarkupModeFixed, FixedPercent: 25},
	}, snap)
	assert.InDelta(t, 2.5, fixed.Markup, 1e-9)

	tiered := ResolveMaterialCost(MaterialCostInput{
		BaseCost: 10,
		Markup: &MarkupPolicy{Mode: MarkupModeTiered, Tiers: []MarkupTier{
			{Min: 0, Max: 50, Percent: 10},
		}},
	}, snap)
	assert.InDelta(t, 1, tiered.Markup, 1e-9)

	// Company mode falls through to the company tier table.
	company := ResolveMaterialCost(MaterialCostInput{
		BaseCost: 10,
		Markup:   &MarkupPolicy{Mode: MarkupModeCompany},
	}, snap)
	assert.InDelta(t, 10, company.Markup, 1e-9)
}

func TestResolveMaterialCost_TotalNeverNegative(t *testing.T) {
	snap := CompanySnapshot{PurchaseTaxPercent: 8.25, MiscMaterialPercent: 10}

	got := ResolveMaterialCost(MaterialCostInput{BaseCost: -100, Taxable: true}, snap)
	assert.GreaterOrEqual(t, got.Total, 0.0)
}
