package pricing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// A job type map with one default at 100% efficiency and no margin target,
// so labor prices at the bare wage-derived rate unless a test overrides it.
func testJobTypes() map[uint]JobTypeSnapshot {
	return map[uint]JobTypeSnapshot{
		1: {ID: 1, BillingMode: BillingModeFlat, EfficiencyPercent: 100, AllowDiscounts: true, Enabled: true, IsDefault: true},
		2: {ID: 2, BillingMode: BillingModeHourly, EfficiencyPercent: 50, AllowDiscounts: false, Enabled: true},
	}
}

func adHocOnlyEstimate(cost float64) EstimateSnapshot {
	return EstimateSnapshot{
		Items: []LineItem{{Kind: LineItemAdHoc, UnitCost: cost, Quantity: 1}},
	}
}

func TestComputeEstimatePricing_DiscountGrossUp(t *testing.T) {
	snap := CompanySnapshot{DefaultDiscountPercent: 10}
	est := adHocOnlyEstimate(900)
	est.DiscountEnabled = true

	got := ComputeEstimatePricing(est, nil, nil, testJobTypes(), snap)

	assert.InDelta(t, 900, got.NetSubtotal, 1e-9)
	assert.InDelta(t, 1000, got.PreDiscountTotal, 1e-9)
	assert.InDelta(t, 100, got.DiscountAmount, 1e-9)
	assert.InDelta(t, 900, got.Total, 1e-9)
}

func TestComputeEstimatePricing_AdvertisedInvariant(t *testing.T) {
	for _, d := range []float64{1, 5, 12.5, 33, 50, 80, 99} {
		t.Run(fmt.Sprintf("discount_%v", d), func(t *testing.T) {
			snap := CompanySnapshot{DefaultDiscountPercent: d}
			est := adHocOnlyEstimate(742.37)
			est.DiscountEnabled = true

			got := ComputeEstimatePricing(est, nil, nil, testJobTypes(), snap)
			assert.InDelta(t, got.NetSubtotal, got.PreDiscountTotal*(1-d/100), 1e-6)
		})
	}
}

func TestComputeEstimatePricing_DiscountCeiling(t *testing.T) {
	for _, d := range []float64{99.5, 100, 250} {
		t.Run(fmt.Sprintf("configured_%v", d), func(t *testing.T) {
			snap := CompanySnapshot{DefaultDiscountPercent: d}
			est := adHocOnlyEstimate(900)
			est.DiscountEnabled = true

			got := ComputeEstimatePricing(est, nil, nil, testJobTypes(), snap)
			assert.InDelta(t, MaxDiscountPercent, got.DiscountPercent, 1e-9)
			assert.InDelta(t, got.NetSubtotal, got.PreDiscountTotal*(1-MaxDiscountPercent/100), 1e-6)
		})
	}
}

func TestComputeEstimatePricing_DiscountRequiresJobTypePermission(t *testing.T) {
	snap := CompanySnapshot{DefaultDiscountPercent: 10}
	jobTypeID := uint(2)
	est := adHocOnlyEstimate(900)
	est.DiscountEnabled = true
	est.JobTypeID = &jobTypeID // job type 2 disallows discounts

	got := ComputeEstimatePricing(est, nil, nil, testJobTypes(), snap)
	assert.Zero(t, got.DiscountAmount)
	assert.InDelta(t, got.NetSubtotal, got.PreDiscountTotal, 1e-9)
}

func TestComputeEstimatePricing_FeeOnAdvertisedBase(t *testing.T) {
	snap := CompanySnapshot{DefaultDiscountPercent: 10, ProcessingFeePercent: 3}
	est := adHocOnlyEstimate(900)
	est.DiscountEnabled = true
	est.ProcessingFeeEnabled = true

	got := ComputeEstimatePricing(est, nil, nil, testJobTypes(), snap)

	// Fee is charged on the $1000 advertised amount, not the $900 net.
	assert.InDelta(t, 30, got.ProcessingFee, 1e-9)
	assert.InDelta(t, 930, got.Total, 1e-9)
}

func TestComputeEstimatePricing_FeeToggleOff(t *testing.T) {
	snap := CompanySnapshot{ProcessingFeePercent: 3}
	est := adHocOnlyEstimate(900)

	got := ComputeEstimatePricing(est, nil, nil, testJobTypes(), snap)
	assert.Zero(t, got.ProcessingFee)
	assert.InDelta(t, 900, got.Total, 1e-9)
}

func TestComputeEstimatePricing_GroupScalingInvariant(t *testing.T) {
	materials := map[uint]MaterialSnapshot{
		1: {ID: 1, BaseCost: 25, LaborMinutes: 12},
	}
	assemblies := map[uint]AssemblySnapshot{
		5: {ID: 5, Items: []LineItem{
			{Kind: LineItemMaterial, MaterialID: 1, Quantity: 2},
		}},
	}
	groupID := uint(1)
	itemsAt := func(parentQty float64) []LineItem {
		return []LineItem{
			{Kind: LineItemAssemblyRef, AssemblyID: 5, Quantity: parentQty, GroupID: &groupID},
			{Kind: LineItemAdHoc, UnitCost: 10, LaborMinutes: 4, ParentGroupID: &groupID, QuantityFactor: 3},
		}
	}

	snap := CompanySnapshot{}
	one := ComputeEstimatePricing(EstimateSnapshot{Items: itemsAt(1)}, materials, assemblies, testJobTypes(), snap)
	five := ComputeEstimatePricing(EstimateSnapshot{Items: itemsAt(5)}, materials, assemblies, testJobTypes(), snap)

	assert.InDelta(t, one.MaterialCost*5, five.MaterialCost, 1e-9)
	assert.InDelta(t, one.LaborMinutesActual*5, five.LaborMinutesActual, 1e-9)
}

func TestComputeEstimatePricing_CustomerSuppliesZeroesMaterialsNotLabor(t *testing.T) {
	materials := map[uint]MaterialSnapshot{
		1: {ID: 1, BaseCost: 50, LaborMinutes: 30},
	}
	est := EstimateSnapshot{
		CustomerSuppliesMaterials: true,
		Items: []LineItem{
			{Kind: LineItemMaterial, MaterialID: 1, Quantity: 2},
		},
	}
	snap := CompanySnapshot{MiscMaterialPercent: 10}

	got := ComputeEstimatePricing(est, materials, nil, testJobTypes(), snap)

	assert.Zero(t, got.MaterialCost)
	assert.Zero(t, got.MiscMaterial) // misc waived unless the company charges it anyway
	assert.Equal(t, 60.0, got.LaborMinutesActual)

	snap.MiscAppliesWhenCustomerSupplies = true
	got = ComputeEstimatePricing(est, materials, nil, testJobTypes(), snap)
	assert.Zero(t, got.MaterialCost)
	assert.Greater(t, got.MiscMaterial, 0.0)
	assert.InDelta(t, got.MiscMaterial, got.MaterialPrice, 1e-9)
}

func TestComputeEstimatePricing_MissingAssemblySkipped(t *testing.T) {
	est := EstimateSnapshot{
		Items: []LineItem{
			{Kind: LineItemAssemblyRef, AssemblyID: 404, Quantity: 2},
			{Kind: LineItemAdHoc, UnitCost: 100, Quantity: 1},
		},
	}

	got := ComputeEstimatePricing(est, nil, nil, testJobTypes(), CompanySnapshot{})
	assert.InDelta(t, 100, got.MaterialCost, 1e-9)
}

func TestComputeEstimatePricing_FlatBillingMinimum(t *testing.T) {
	snap := CompanySnapshot{MinBillableLaborMinutes: 90}
	est := EstimateSnapshot{
		Items: []LineItem{{Kind: LineItemLabor, LaborMinutes: 30}},
	}

	got := ComputeEstimatePricing(est, nil, nil, testJobTypes(), snap)
	assert.Equal(t, 30.0, got.LaborMinutesActual)
	assert.Equal(t, 90.0, got.LaborMinutesExpected)
}

func TestBuildExpectedMetrics(t *testing.T) {
	items := []LineItem{
		{Kind: LineItemMaterial, Quantity: 2},
		{Kind: LineItemAdHoc, Quantity: 7},
		{Kind: LineItemLabor},
	}

	m := BuildExpectedMetrics(items, 520, 240)
	assert.Equal(t, 240.0, m.ExpectedLaborMinutes)
	assert.Equal(t, 4.0, m.ExpectedLaborHours)
	assert.Equal(t, 520.0, m.MaterialCost)
	assert.Equal(t, 3.0, m.LineItemCount)
	assert.Equal(t, 7.0, m.MaxLineItemQuantity)
}
