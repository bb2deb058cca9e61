package pricing

// AssemblyPricing is the full price breakdown of one assembly.
type AssemblyPricing struct {
	MaterialCostTotal  float64
	MaterialPriceTotal float64
	LaborPriceTotal    float64
	MiscMaterialPrice  float64
	TotalPrice         float64

	// Actual is the raw sum of labor minutes, Expected the efficiency
	// adjusted amount that gets billed; both are exposed for display.
	LaborMinutesActual   float64
	LaborMinutesExpected float64

	HourlySellRate float64
	JobTypeID      uint
}

// ComputeAssemblyPricing prices one assembly: material and ad-hoc lines run
// through the markup/tax resolver, labor minutes are aggregated under the
// effective job type's efficiency, and labor is sold at the rate required to
// hit that job type's margin and profit targets.
func ComputeAssemblyPricing(asm AssemblySnapshot, materials map[uint]MaterialSnapshot, jobTypes map[uint]JobTypeSnapshot, snap CompanySnapshot) AssemblyPricing {
	jt, _ := EffectiveJobType(asm.RuleLockedJobTypeID, asm.JobTypeID, jobTypes)

	var out AssemblyPricing
	out.JobTypeID = jt.ID

	markup := markupOverrideFor(jt)
	for _, item := range asm.Items {
		qty := ResolveQuantity(item, asm.Items)
		in, ok := materialInputFor(item, materials, asm.CustomerSuppliesMaterials, markup)
		if !ok {
			continue
		}
		unit := ResolveMaterialCost(in, snap)
		out.MiscMaterialPrice += unit.Misc * qty
		if !asm.CustomerSuppliesMaterials {
			out.MaterialCostTotal += unit.BaseCost * qty
			out.MaterialPriceTotal += unit.Total * qty
		} else {
			// Customer-supplied: only the misc surcharge (when charged)
			// shows up on the price side.
			out.MaterialPriceTotal += unit.Misc * qty
		}
	}

	minutes := AggregateLaborMinutes(asm.Items, materials, nil, jt.EfficiencyPercent)
	out.LaborMinutesActual = minutes.Baseline
	out.LaborMinutesExpected = ApplyMinimumBillable(minutes.Expected, jt.BillingMode, snap)

	breakdown := ComputeTechCostBreakdown(snap, jt)
	out.HourlySellRate = breakdown.RequiredRevenuePerHour
	out.LaborPriceTotal = out.LaborMinutesExpected / 60 * out.HourlySellRate

	out.TotalPrice = out.MaterialPriceTotal + out.LaborPriceTotal

	return out
}

// materialInputFor maps a line item onto the markup/tax resolver's input.
// Labor and assembly-ref lines have no material cost side.
func materialInputFor(item LineItem, materials map[uint]MaterialSnapshot, customerSupplies bool, markup *MarkupPolicy) (MaterialCostInput, bool) {
	switch item.Kind {
	case LineItemMaterial:
		mat, ok := materials[item.MaterialID]
		if !ok {
			return MaterialCostInput{}, false
		}
		return MaterialCostInput{
			BaseCost:                  mat.BaseCost,
			CustomCost:                mat.CustomCost,
			UseCustomCost:             mat.UseCustomCost,
			Taxable:                   mat.Taxable,
			CustomerSuppliesMaterials: customerSupplies,
			Markup:                    markup,
		}, true
	case LineItemAdHoc:
		return MaterialCostInput{
			BaseCost:                  item.UnitCost,
			Taxable:                   item.Taxable,
			CustomerSuppliesMaterials: customerSupplies,
			Markup:                    markup,
		}, true
	default:
		return MaterialCostInput{}, false
	}
}

// markupOverrideFor returns the job type's markup override for hourly
// billing, or nil to use the company tier table.
func markupOverrideFor(jt JobTypeSnapshot) *MarkupPolicy {
	if jt.BillingMode != BillingModeHourly {
		return nil
	}
	if jt.MaterialMarkup.Mode == MarkupModeCompany || jt.MaterialMarkup.Mode == "" {
		return nil
	}
	policy := jt.MaterialMarkup
	return &policy
}
