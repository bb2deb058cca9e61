package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// One tech, 5-day weeks, no time off, 8h days: 2080 paid hours a year.
func capacitySnapshot() CompanySnapshot {
	return CompanySnapshot{
		TechnicianCount: 1,
		WorkdaysPerWeek: 5,
		HoursPerDay:     8,
		TechnicianWages: []float64{20},
	}
}

func TestComputeTechCostBreakdown_Capacity(t *testing.T) {
	snap := capacitySnapshot()
	snap.VacationDaysPerYear = 10
	snap.SickDaysPerYear = 5
	snap.TechnicianCount = 3

	b := ComputeTechCostBreakdown(snap, JobTypeSnapshot{EfficiencyPercent: 50})

	assert.InDelta(t, 245, b.WorkdaysPerYear, 1e-9)
	assert.InDelta(t, 245*8*3, b.TotalHoursPerYear, 1e-9)
	assert.InDelta(t, 245*8*3*0.5, b.EffectiveHoursPerYear, 1e-9)
	assert.InDelta(t, b.EffectiveHoursPerYear/12, b.BillableHoursPerMonth, 1e-9)
}

func TestComputeTechCostBreakdown_WorkdaysNeverNegative(t *testing.T) {
	snap := capacitySnapshot()
	snap.WorkdaysPerWeek = 1
	snap.VacationDaysPerYear = 300

	b := ComputeTechCostBreakdown(snap, JobTypeSnapshot{EfficiencyPercent: 100})
	assert.Zero(t, b.WorkdaysPerYear)
	assert.Zero(t, b.TotalHoursPerYear)
	assert.Zero(t, b.OverheadPerHour)
	assert.Zero(t, b.WageCostPerHour)
}

func TestComputeTechCostBreakdown_ItemizedExpenses(t *testing.T) {
	snap := capacitySnapshot()
	snap.BusinessExpenses = ExpenseModel{
		Itemized: true,
		Items: []ExpenseItem{
			{Name: "rent", Amount: 1200, Frequency: ExpenseFrequencyMonthly},
			{Name: "insurance", Amount: 900, Frequency: ExpenseFrequencyQuarterly},
			{Name: "license", Amount: 600, Frequency: ExpenseFrequencyBiannual},
			{Name: "software", Amount: 2400, Frequency: ExpenseFrequencyAnnual},
		},
	}
	snap.PersonalExpenses = ExpenseModel{Monthly: 500}

	b := ComputeTechCostBreakdown(snap, JobTypeSnapshot{EfficiencyPercent: 100})

	// 1200 + 300 + 100 + 200 business, 500 personal
	assert.InDelta(t, 2300, b.OverheadMonthly, 1e-9)
	assert.InDelta(t, 27600, b.OverheadAnnual, 1e-9)
}

func TestComputeTechCostBreakdown_WageInflatedByEfficiency(t *testing.T) {
	snap := capacitySnapshot()

	full := ComputeTechCostBreakdown(snap, JobTypeSnapshot{EfficiencyPercent: 100})
	half := ComputeTechCostBreakdown(snap, JobTypeSnapshot{EfficiencyPercent: 50})

	// Paid hours spread over billable hours: halving efficiency doubles
	// the per-billable-hour wage cost.
	assert.InDelta(t, 20, full.WageCostPerHour, 1e-9)
	assert.InDelta(t, 40, half.WageCostPerHour, 1e-9)
}

func TestAverageWage_IgnoresEmptyRows(t *testing.T) {
	snap := capacitySnapshot()
	snap.TechnicianWages = []float64{30, 0, 20, 0}

	b := ComputeTechCostBreakdown(snap, JobTypeSnapshot{EfficiencyPercent: 100})
	assert.InDelta(t, 25, b.AvgTechWage, 1e-9)

	snap.TechnicianWages = nil
	b = ComputeTechCostBreakdown(snap, JobTypeSnapshot{EfficiencyPercent: 100})
	assert.Zero(t, b.AvgTechWage)
}

func TestRequiredRevenue_NetProfitPercentMode(t *testing.T) {
	// COGS $20/hr and overhead $10/hr at 100% efficiency.
	snap := capacitySnapshot()
	snap.BusinessExpenses = ExpenseModel{Monthly: 2080 * 10 / 12.0}
	snap.NetProfitGoalMode = NetProfitGoalPercent
	snap.NetProfitGoalValue = 20

	b := ComputeTechCostBreakdown(snap, JobTypeSnapshot{EfficiencyPercent: 100})

	assert.InDelta(t, 20, b.WageCostPerHour, 1e-9)
	assert.InDelta(t, 10, b.OverheadPerHour, 1e-9)
	// (20 + 10) / (1 - 0.20)
	assert.InDelta(t, 37.50, b.RequiredRevenuePerHour, 1e-9)
}

func TestRequiredRevenue_GrossMarginDominates(t *testing.T) {
	snap := capacitySnapshot()

	b := ComputeTechCostBreakdown(snap, JobTypeSnapshot{
		EfficiencyPercent:  100,
		GrossMarginPercent: 60,
	})

	// 20 / (1 - 0.6) = 50 beats the zero-overhead profit candidate.
	assert.InDelta(t, 50, b.RequiredRevenuePerHour, 1e-9)
	assert.InDelta(t, 50*b.BillableHoursPerMonth, b.RevenueGoalPerMonth, 1e-6)
}

func TestRequiredRevenue_DollarMode(t *testing.T) {
	snap := capacitySnapshot()
	snap.NetProfitGoalMode = NetProfitGoalDollar
	snap.NetProfitGoalValue = 1733.3333333333333 // $20,800/yr

	b := ComputeTechCostBreakdown(snap, JobTypeSnapshot{EfficiencyPercent: 100})

	// 2080 hrs/yr is 173.33 billable hrs/month, so the goal adds $10/hr.
	assert.InDelta(t, 30, b.RequiredRevenuePerHour, 1e-6)
}

func TestRequiredRevenue_DegenerateMargins(t *testing.T) {
	// A 100% margin target and a 100% net profit goal both divide by zero;
	// each candidate collapses to 0 instead.
	snap := capacitySnapshot()
	snap.NetProfitGoalMode = NetProfitGoalPercent
	snap.NetProfitGoalValue = 100

	b := ComputeTechCostBreakdown(snap, JobTypeSnapshot{
		EfficiencyPercent:  100,
		GrossMarginPercent: 150, // clamped to 100
	})
	assert.Zero(t, b.RequiredRevenuePerHour)
}
