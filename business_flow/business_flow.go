// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/fieldserve/estimator/app/dto"
	"github.com/fieldserve/estimator/models"
	"github.com/fieldserve/estimator/pricing"
	"github.com/fieldserve/estimator/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for logging and request tracking
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// companySnapshot converts a settings row into the engine's company snapshot.
func companySnapshot(s *models.CompanySettings) pricing.CompanySnapshot {
	wages := make([]float64, 0, len(s.TechnicianWages))
	for _, w := range s.TechnicianWages {
		wages = append(wages, w.HourlyRate)
	}

	return pricing.CompanySnapshot{
		TechnicianCount:     s.TechnicianCount,
		WorkdaysPerWeek:     s.WorkdaysPerWeek,
		HoursPerDay:         s.HoursPerDay,
		VacationDaysPerYear: s.VacationDaysPerYear,
		SickDaysPerYear:     s.SickDaysPerYear,
		JobsPerTechPerDay:   s.JobsPerTechPerDay,
		TechnicianWages:     wages,

		PurchaseTaxPercent:      s.PurchaseTaxPercent,
		MiscMaterialPercent:     s.MiscMaterialPercent,
		DefaultDiscountPercent:  s.DefaultDiscountPercent,
		ProcessingFeePercent:    s.ProcessingFeePercent,
		MinBillableLaborMinutes: s.MinBillableLaborMinutes,
		MarkupTiers:             markupTiers(s.MarkupTiers),

		MiscAppliesWhenCustomerSupplies: utils.IsTrue(s.MiscAppliesWhenCustomerSupplies),

		BusinessExpenses: pricing.ExpenseModel{
			Monthly:  s.BusinessExpenseMonthly,
			Itemized: utils.IsTrue(s.BusinessExpenseItemized),
			Items:    expenseItems(s.BusinessExpenseItems),
		},
		PersonalExpenses: pricing.ExpenseModel{
			Monthly:  s.PersonalExpenseMonthly,
			Itemized: utils.IsTrue(s.PersonalExpenseItemized),
			Items:    expenseItems(s.PersonalExpenseItems),
		},
		NetProfitGoalMode:  pricing.NetProfitGoalMode(s.NetProfitGoalMode),
		NetProfitGoalValue: s.NetProfitGoalValue,
	}
}

func markupTiers(tiers models.MarkupTierList) []pricing.MarkupTier {
	out := make([]pricing.MarkupTier, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, pricing.MarkupTier{Min: t.Min, Max: t.Max, Percent: t.Percent})
	}
	return out
}

func expenseItems(items models.ExpenseEntryList) []pricing.ExpenseItem {
	out := make([]pricing.ExpenseItem, 0, len(items))
	for _, e := range items {
		out = append(out, pricing.ExpenseItem{
			Name:      e.Name,
			Amount:    e.Amount,
			Frequency: pricing.ExpenseFrequency(e.Frequency),
		})
	}
	return out
}

// jobTypeSnapshot converts a job type row into the engine's job type snapshot.
func jobTypeSnapshot(jt *models.JobType) pricing.JobTypeSnapshot {
	return pricing.JobTypeSnapshot{
		ID:                 jt.ID,
		BillingMode:        pricing.BillingMode(jt.BillingMode),
		GrossMarginPercent: jt.GrossMarginPercent,
		EfficiencyPercent:  jt.EfficiencyPercent,
		AllowDiscounts:     utils.IsTrue(jt.AllowDiscounts),
		Enabled:            utils.IsTrue(jt.Enabled),
		IsDefault:          utils.IsTrue(jt.IsDefault),
		MaterialMarkup: pricing.MarkupPolicy{
			Mode:         pricing.MarkupMode(jt.MaterialMarkupMode),
			FixedPercent: jt.MaterialMarkupPercent,
			Tiers:        markupTiers(jt.MaterialMarkupTiers),
		},
	}
}

// jobTypeMap builds the snapshot map the engine resolves job types from.
func jobTypeMap(rows []*models.JobType) map[uint]pricing.JobTypeSnapshot {
	out := make(map[uint]pricing.JobTypeSnapshot, len(rows))
	for _, jt := range rows {
		out[jt.ID] = jobTypeSnapshot(jt)
	}
	return out
}

// materialSnapshot converts a material row into the engine's material snapshot.
func materialSnapshot(m *models.Material) pricing.MaterialSnapshot {
	return pricing.MaterialSnapshot{
		ID:            m.ID,
		BaseCost:      m.BaseCost,
		CustomCost:    m.CustomCost,
		UseCustomCost: utils.IsTrue(m.UseCustomCost),
		Taxable:       utils.IsTrue(m.Taxable),
		LaborMinutes:  m.TotalLaborMinutes(),
		JobTypeID:     m.JobTypeID,
	}
}

func materialMap(rows []*models.Material) map[uint]pricing.MaterialSnapshot {
	out := make(map[uint]pricing.MaterialSnapshot, len(rows))
	for _, m := range rows {
		out[m.ID] = materialSnapshot(m)
	}
	return out
}

// assemblySnapshot converts an assembly row with items into the engine's snapshot.
func assemblySnapshot(a *models.Assembly) pricing.AssemblySnapshot {
	items := make([]pricing.LineItem, 0, len(a.Items))
	for _, item := range a.Items {
		items = append(items, assemblyLineItem(item))
	}
	return pricing.AssemblySnapshot{
		ID:                        a.ID,
		JobTypeID:                 a.JobTypeID,
		RuleLockedJobTypeID:       a.RuleLockedJobTypeID,
		CustomerSuppliesMaterials: utils.IsTrue(a.CustomerSuppliesMaterials),
		Items:                     items,
	}
}

func assemblyLineItem(item models.AssemblyItem) pricing.LineItem {
	line := pricing.LineItem{
		Kind:           pricing.LineItemKind(item.Kind),
		Quantity:       item.Quantity,
		LaborMinutes:   item.LaborMinutes,
		Taxable:        utils.IsTrue(item.Taxable),
		QuantityFactor: 1,
	}
	if item.MaterialID != nil {
		line.MaterialID = *item.MaterialID
	}
	if item.UnitCost != nil {
		line.UnitCost = *item.UnitCost
	}
	return line
}

// estimateSnapshot converts an estimate option with items into the engine's snapshot.
func estimateSnapshot(opt *models.EstimateOption) pricing.EstimateSnapshot {
	items := make([]pricing.LineItem, 0, len(opt.Items))
	for _, item := range opt.Items {
		items = append(items, estimateLineItem(item))
	}
	return pricing.EstimateSnapshot{
		JobTypeID:                 opt.JobTypeID,
		RuleLockedJobTypeID:       opt.RuleLockedJobTypeID,
		CustomerSuppliesMaterials: utils.IsTrue(opt.CustomerSuppliesMaterials),
		DiscountEnabled:           utils.IsTrue(opt.DiscountEnabled),
		ProcessingFeeEnabled:      utils.IsTrue(opt.ProcessingFeeEnabled),
		Items:                     items,
	}
}

func estimateLineItem(item models.EstimateLineItem) pricing.LineItem {
	line := pricing.LineItem{
		Kind:           pricing.LineItemKind(item.Kind),
		Quantity:       item.Quantity,
		LaborMinutes:   item.LaborMinutes,
		Taxable:        utils.IsTrue(item.Taxable),
		GroupID:        item.GroupID,
		ParentGroupID:  item.ParentGroupID,
		QuantityFactor: item.QuantityFactor,
	}
	if line.QuantityFactor == 0 {
		line.QuantityFactor = 1
	}
	if item.MaterialID != nil {
		line.MaterialID = *item.MaterialID
	}
	if item.AssemblyID != nil {
		line.AssemblyID = *item.AssemblyID
	}
	if item.UnitCost != nil {
		line.UnitCost = *item.UnitCost
	}
	return line
}

// normalizedRule maps a rule row, modern or legacy shape, onto the single
// rule representation the evaluator consumes.
func normalizedRule(r *models.AdminRule) pricing.Rule {
	rule := pricing.Rule{
		ID:              r.ID,
		Priority:        r.Priority,
		Scope:           pricing.RuleScope(r.Scope),
		Enabled:         utils.IsTrue(r.Enabled),
		Threshold:       r.Threshold,
		TargetJobTypeID: r.TargetJobTypeID,

		LegacyMinLaborMinutes: r.MinLaborMinutes,
		LegacyMinMaterialCost: r.MinMaterialCost,
		LegacyMinLineItems:    r.MinLineItems,
	}
	if r.ConditionMetric != nil {
		rule.Metric = pricing.RuleMetric(*r.ConditionMetric)
	}
	if r.ConditionOperator != nil {
		rule.Operator = pricing.RuleOperator(*r.ConditionOperator)
	}
	return rule
}

func normalizedRules(rows []*models.AdminRule) []pricing.Rule {
	out := make([]pricing.Rule, 0, len(rows))
	for _, r := range rows {
		out = append(out, normalizedRule(r))
	}
	return out
}

// toEstimatePricingDTO converts an engine result to its response DTO.
func toEstimatePricingDTO(p pricing.EstimatePricing) dto.EstimatePricingDTO {
	return dto.EstimatePricingDTO{
		MaterialCost:  p.MaterialCost,
		MaterialPrice: p.MaterialPrice,
		LaborPrice:    p.LaborPrice,
		MiscMaterial:  p.MiscMaterial,

		NetSubtotal:              p.NetSubtotal,
		PreDiscountTotal:         p.PreDiscountTotal,
		DiscountAmount:           p.DiscountAmount,
		DiscountPercent:          p.DiscountPercent,
		SubtotalBeforeProcessing: p.SubtotalBeforeProcessing,
		ProcessingFee:            p.ProcessingFee,
		Total:                    p.Total,

		GrossMarginTargetPercent:   p.GrossMarginTargetPercent,
		GrossMarginExpectedPercent: p.GrossMarginExpectedPercent,

		LaborMinutesActual:   p.LaborMinutesActual,
		LaborMinutesExpected: p.LaborMinutesExpected,
		HourlySellRate:       p.HourlySellRate,
		JobTypeID:            p.JobTypeID,
	}
}

// toAssemblyPricingDTO converts an engine result to its response DTO.
func toAssemblyPricingDTO(p pricing.AssemblyPricing) dto.AssemblyPricingDTO {
	return dto.AssemblyPricingDTO{
		MaterialCostTotal:  p.MaterialCostTotal,
		MaterialPriceTotal: p.MaterialPriceTotal,
		LaborPriceTotal:    p.LaborPriceTotal,
		MiscMaterialPrice:  p.MiscMaterialPrice,
		TotalPrice:         p.TotalPrice,

		LaborMinutesActual:   p.LaborMinutesActual,
		LaborMinutesExpected: p.LaborMinutesExpected,
		HourlySellRate:       p.HourlySellRate,
		JobTypeID:            p.JobTypeID,
	}
}

// toTechCostDTO converts an engine breakdown to its response DTO.
func toTechCostDTO(b pricing.TechCostBreakdown) dto.TechCostDTO {
	return dto.TechCostDTO{
		OverheadMonthly:       b.OverheadMonthly,
		OverheadAnnual:        b.OverheadAnnual,
		WorkdaysPerYear:       b.WorkdaysPerYear,
		TotalHoursPerYear:     b.TotalHoursPerYear,
		EffectiveHoursPerYear: b.EffectiveHoursPerYear,
		BillableHoursPerMonth: b.BillableHoursPerMonth,
		OverheadPerHour:       b.OverheadPerHour,
		AvgTechWage:           b.AvgTechWage,
		WageCostPerHour:       b.WageCostPerHour,
		LoadedLaborRate:       b.LoadedLaborRate,

		RequiredRevenuePerHour: b.RequiredRevenuePerHour,
		RevenueGoalPerMonth:    b.RevenueGoalPerMonth,
	}
}
