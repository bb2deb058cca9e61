package pricing

// MaxDiscountPercent is the hard ceiling on any configured discount. A full
// 100% discount would make the advertised gross-up divide by zero.
const MaxDiscountPercent = 99.0

// EstimatePricing is the full customer-facing breakdown of one estimate
// option: material and labor pricing, the advertised (pre-discount) total,
// processing fee, and margin figures.
type EstimatePricing struct {
	MaterialCost  float64
	MaterialPrice float64
	LaborPrice    float64
	MiscMaterial  float64

	NetSubtotal              float64
	PreDiscountTotal         float64
	DiscountAmount           float64
	DiscountPercent          float64
	SubtotalBeforeProcessing float64
	ProcessingFee            float64
	Total                    float64

	GrossMarginTargetPercent   float64
	GrossMarginExpectedPercent float64

	LaborMinutesActual   float64
	LaborMinutesExpected float64
	HourlySellRate       float64
	JobTypeID            uint
}

// ComputeEstimatePricing prices an estimate's active option. The item list
// may nest children under assembly groups; a child's quantity is its stored
// per-unit factor times the parent quantity, so rescaling the parent
// rescales the whole group. Discounting grosses the subtotal up so that the
// advertised price minus the discount lands back on the net subtotal, and
// the processing fee is charged on that advertised base.
func ComputeEstimatePricing(est EstimateSnapshot, materials map[uint]MaterialSnapshot, assemblies map[uint]AssemblySnapshot, jobTypes map[uint]JobTypeSnapshot, snap CompanySnapshot) EstimatePricing {
	jt, _ := EffectiveJobType(est.RuleLockedJobTypeID, est.JobTypeID, jobTypes)

	var out EstimatePricing
	out.JobTypeID = jt.ID

	markup := markupOverrideFor(jt)
	for _, item := range est.Items {
		qty := ResolveQuantity(item, est.Items)

		if item.Kind == LineItemAssemblyRef {
			asm, ok := assemblies[item.AssemblyID]
			if !ok {
				continue
			}
			for _, sub := range asm.Items {
				subQty := ResolveQuantity(sub, asm.Items) * qty
				out.addMaterialLine(sub, subQty, materials, est.CustomerSuppliesMaterials, markup, snap)
			}
			continue
		}

		out.addMaterialLine(item, qty, materials, est.CustomerSuppliesMaterials, markup, snap)
	}

	minutes := AggregateLaborMinutes(est.Items, materials, assemblies, jt.EfficiencyPercent)
	out.LaborMinutesActual = minutes.Baseline
	out.LaborMinutesExpected = ApplyMinimumBillable(minutes.Expected, jt.BillingMode, snap)

	breakdown := ComputeTechCostBreakdown(snap, jt)
	out.HourlySellRate = breakdown.RequiredRevenuePerHour
	out.LaborPrice = out.LaborMinutesExpected / 60 * out.HourlySellRate

	out.NetSubtotal = out.MaterialPrice + out.LaborPrice

	discount := clampPercent(snap.DefaultDiscountPercent)
	if discount > MaxDiscountPercent {
		discount = MaxDiscountPercent
	}
	if est.DiscountEnabled && jt.AllowDiscounts && discount > 0 {
		out.DiscountPercent = discount
		out.PreDiscountTotal = out.NetSubtotal / (1 - discount/100)
		out.DiscountAmount = out.PreDiscountTotal - out.NetSubtotal
	} else {
		out.PreDiscountTotal = out.NetSubtotal
	}

	out.SubtotalBeforeProcessing = out.NetSubtotal
	if est.ProcessingFeeEnabled {
		out.ProcessingFee = out.PreDiscountTotal * snap.ProcessingFeePercent / 100
	}
	out.Total = out.SubtotalBeforeProcessing + out.ProcessingFee

	out.GrossMarginTargetPercent = jt.GrossMarginPercent
	cost := out.MaterialCost + out.LaborMinutesExpected/60*breakdown.LoadedLaborRate
	if out.Total > 0 {
		out.GrossMarginExpectedPercent = (out.Total - cost) / out.Total * 100
	}

	return out
}

// addMaterialLine folds one line's material cost side into the running
// totals at the already-resolved quantity. Customer supplied materials keep
// only the misc surcharge on the price side.
func (out *EstimatePricing) addMaterialLine(item LineItem, qty float64, materials map[uint]MaterialSnapshot, customerSupplies bool, markup *MarkupPolicy, snap CompanySnapshot) {
	in, ok := materialInputFor(item, materials, customerSupplies, markup)
	if !ok {
		return
	}
	unit := ResolveMaterialCost(in, snap)
	out.MiscMaterial += unit.Misc * qty
	if customerSupplies {
		out.MaterialPrice += unit.Misc * qty
		return
	}
	out.MaterialCost += unit.BaseCost * qty
	out.MaterialPrice += unit.Total * qty
}

// ExpectedMetrics are the intermediate figures the admin rule evaluator
// matches thresholds against.
type ExpectedMetrics struct {
	ExpectedLaborHours   float64
	ExpectedLaborMinutes float64
	MaterialCost         float64
	LineItemCount        float64
	MaxLineItemQuantity  float64
}

// BuildExpectedMetrics derives rule-evaluation metrics from a priced item
// set. Material cost intentionally uses the pre-markup cost, matching what
// the thresholds were written against.
func BuildExpectedMetrics(items []LineItem, materialCost, expectedMinutes float64) ExpectedMetrics {
	m := ExpectedMetrics{
		ExpectedLaborMinutes: expectedMinutes,
		ExpectedLaborHours:   expectedMinutes / 60,
		MaterialCost:         materialCost,
		LineItemCount:        float64(len(items)),
	}
	for _, item := range items {
		if item.Quantity > m.MaxLineItemQuantity {
			m.MaxLineItemQuantity = item.Quantity
		}
	}
	return m
}
