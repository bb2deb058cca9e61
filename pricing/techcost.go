package pricing

// TechCostBreakdown converts company staffing and expense parameters into
// per-billable-hour cost figures for one job type. It is the cost side of
// the model: the sell side comes from RequiredRevenue below.
type TechCostBreakdown struct {
	OverheadMonthly       float64
	OverheadAnnual        float64
	WorkdaysPerYear       float64
	TotalHoursPerYear     float64
	EffectiveHoursPerYear float64
	BillableHoursPerMonth float64
	OverheadPerHour       float64
	AvgTechWage           float64
	WageCostPerHour       float64
	LoadedLaborRate       float64

	RequiredRevenuePerHour float64
	RevenueGoalPerMonth    float64
}

// ComputeTechCostBreakdown derives the hourly overhead and loaded labor rate
// for a company under one job type's efficiency, then solves for the sell
// rate that satisfies both the gross-margin target and the net-profit goal.
//
// Wage cost is total paid hours spread over billable hours, so low efficiency
// inflates the per-billable-hour wage cost. That allocation is intentional.
func ComputeTechCostBreakdown(snap CompanySnapshot, jt JobTypeSnapshot) TechCostBreakdown {
	var b TechCostBreakdown

	b.OverheadMonthly = snap.BusinessExpenses.MonthlyTotal() + snap.PersonalExpenses.MonthlyTotal()
	b.OverheadAnnual = b.OverheadMonthly * 12

	b.WorkdaysPerYear = snap.WorkdaysPerWeek*52 - snap.VacationDaysPerYear - snap.SickDaysPerYear
	if b.WorkdaysPerYear < 0 {
		b.WorkdaysPerYear = 0
	}
	b.TotalHoursPerYear = b.WorkdaysPerYear * snap.HoursPerDay * float64(snap.TechnicianCount)

	efficiency := jt.EfficiencyPercent
	if efficiency < 0 {
		efficiency = 0
	}
	b.EffectiveHoursPerYear = b.TotalHoursPerYear * efficiency / 100
	b.BillableHoursPerMonth = b.EffectiveHoursPerYear / 12

	b.OverheadPerHour = safeDiv(b.OverheadAnnual, b.EffectiveHoursPerYear)
	b.AvgTechWage = averageWage(snap.TechnicianWages)
	b.WageCostPerHour = safeDiv(b.AvgTechWage*b.TotalHoursPerYear, b.EffectiveHoursPerYear)
	b.LoadedLaborRate = b.OverheadPerHour + b.WageCostPerHour

	b.RequiredRevenuePerHour = RequiredRevenue(snap, jt, b)
	b.RevenueGoalPerMonth = b.BillableHoursPerMonth * b.RequiredRevenuePerHour

	return b
}

// RequiredRevenue solves for the minimum sell rate per billable hour that
// satisfies the job type's gross-margin target and the company's net-profit
// goal simultaneously. COGS here is labor only; material never enters this
// derivation layer.
func RequiredRevenue(snap CompanySnapshot, jt JobTypeSnapshot, b TechCostBreakdown) float64 {
	cogs := b.WageCostPerHour

	grossMargin := clampPercent(jt.GrossMarginPercent)
	var forMargin float64
	if grossMargin < 100 {
		forMargin = cogs / (1 - grossMargin/100)
	}

	var forProfit float64
	switch snap.NetProfitGoalMode {
	case NetProfitGoalDollar:
		forProfit = cogs + b.OverheadPerHour
		if b.BillableHoursPerMonth > 0 {
			forProfit += snap.NetProfitGoalValue / b.BillableHoursPerMonth
		}
	default:
		np := snap.NetProfitGoalValue
		if np < 100 {
			forProfit = (cogs + b.OverheadPerHour) / (1 - np/100)
		}
	}

	if forProfit > forMargin {
		return forProfit
	}
	return forMargin
}

// averageWage is the mean of the positive hourly rates; zero-rate rows are
// placeholders kept for display and do not dilute the average.
func averageWage(wages []float64) float64 {
	var sum float64
	var n int
	for _, w := range wages {
		if w > 0 {
			sum += w
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
