package pricing

// MaterialCostInput is the per-unit cost side of a material or ad-hoc line.
type MaterialCostInput struct {
	BaseCost                  float64
	CustomCost                *float64
	UseCustomCost             bool
	Taxable                   bool
	CustomerSuppliesMaterials bool

	// Markup overrides the company tier table when non-nil (hourly job
	// types can carry a fixed or tiered override).
	Markup *MarkupPolicy
}

// MaterialCostBreakdown is the per-unit result of ResolveMaterialCost.
type MaterialCostBreakdown struct {
	BaseCost float64
	Tax      float64
	Markup   float64
	Misc     float64
	Total    float64
}

// ResolveMaterialCost computes the per-unit sell components of a material:
// purchase tax on the chosen unit cost, markup from the tier containing the
// tax-inclusive cost, and the misc-material surcharge on top of all three.
// The misc surcharge is waived when the customer supplies materials unless
// the company charges it regardless.
func ResolveMaterialCost(in MaterialCostInput, snap CompanySnapshot) MaterialCostBreakdown {
	cost := in.BaseCost
	if in.UseCustomCost && in.CustomCost != nil && isFinite(*in.CustomCost) {
		cost = *in.CustomCost
	}

	var tax float64
	if in.Taxable {
		tax = cost * snap.PurchaseTaxPercent / 100
	}

	// Markup is both matched against and applied to the tax-inclusive cost.
	markupPct := markupPercentFor(cost+tax, in.Markup, snap)
	markup := (cost + tax) * markupPct / 100

	var misc float64
	if !in.CustomerSuppliesMaterials || snap.MiscAppliesWhenCustomerSupplies {
		misc = (cost + tax + markup) * snap.MiscMaterialPercent / 100
	}

	total := cost + tax + markup + misc
	if total < 0 {
		total = 0
	}

	return MaterialCostBreakdown{
		BaseCost: cost,
		Tax:      tax,
		Markup:   markup,
		Misc:     misc,
		Total:    total,
	}
}

// markupPercentFor picks the markup percent for a tax-inclusive unit cost.
// Tier lists are small, so a linear scan is fine; no containing tier means
// no markup.
func markupPercentFor(taxedCost float64, policy *MarkupPolicy, snap CompanySnapshot) float64 {
	tiers := snap.MarkupTiers
	if policy != nil {
		switch policy.Mode {
		case MarkupModeFixed:
			return policy.FixedPercent
		case MarkupModeTiered:
			tiers = policy.Tiers
		}
	}
	for _, tier := range tiers {
		if tier.Contains(taxedCost) {
			return tier.Percent
		}
	}
	return 0
}
