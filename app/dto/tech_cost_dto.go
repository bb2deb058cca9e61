package dto

// TechCostDTO is the per-technician capacity and cost breakdown for a company.
type TechCostDTO struct {
	OverheadMonthly       float64 `json:"overhead_monthly"`
	OverheadAnnual        float64 `json:"overhead_annual"`
	WorkdaysPerYear       float64 `json:"workdays_per_year"`
	TotalHoursPerYear     float64 `json:"total_hours_per_year"`
	EffectiveHoursPerYear float64 `json:"effective_hours_per_year"`
	BillableHoursPerMonth float64 `json:"billable_hours_per_month"`
	OverheadPerHour       float64 `json:"overhead_per_hour"`
	AvgTechWage           float64 `json:"avg_tech_wage"`
	WageCostPerHour       float64 `json:"wage_cost_per_hour"`
	LoadedLaborRate       float64 `json:"loaded_labor_rate"`

	RequiredRevenuePerHour float64 `json:"required_revenue_per_hour"`
	RevenueGoalPerMonth    float64 `json:"revenue_goal_per_month"`
}

// TechCostResponse is the tech cost breakdown for a company and job type.
type TechCostResponse struct {
	Message     string      `json:"message"`
	CompanyUUID string      `json:"company_uuid"`
	JobTypeID   uint        `json:"job_type_id"`
	Cached      bool        `json:"cached"`
	Breakdown   TechCostDTO `json:"breakdown"`
}

// RequiredRevenueResponse carries the required revenue targets for a job type.
type RequiredRevenueResponse struct {
	Message                string  `json:"message"`
	CompanyUUID            string  `json:"company_uuid"`
	JobTypeID              uint    `json:"job_type_id"`
	RequiredRevenuePerHour float64 `json:"required_revenue_per_hour"`
	RevenueGoalPerMonth    float64 `json:"revenue_goal_per_month"`
	LoadedLaborRate        float64 `json:"loaded_labor_rate"`
	BillableHoursPerMonth  float64 `json:"billable_hours_per_month"`
}
