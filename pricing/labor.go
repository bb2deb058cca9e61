package pricing

import "math"

// LaborMinutes is the labor side of a line-item set. Baseline is the raw sum
// of labor minutes; Expected inflates it by the inverse of the job type's
// efficiency and is what gets billed.
type LaborMinutes struct {
	Baseline float64
	Expected float64
}

// AggregateLaborMinutes sums labor minutes across a heterogeneous line-item
// list. Material lines pull minutes from the materials map (missing entries
// are skipped), ad-hoc and labor lines carry their own minutes, and assembly
// references recurse into the assembly's items scaled by the line quantity.
// Baseline is floored, Expected is ceiled after the efficiency adjustment;
// an efficiency of zero or less leaves the baseline unadjusted.
func AggregateLaborMinutes(items []LineItem, materials map[uint]MaterialSnapshot, assemblies map[uint]AssemblySnapshot, efficiencyPercent float64) LaborMinutes {
	baseline := math.Floor(sumLaborMinutes(items, materials, assemblies))

	expected := baseline
	if efficiencyPercent > 0 {
		expected = math.Ceil(baseline / (efficiencyPercent / 100))
	}

	return LaborMinutes{Baseline: baseline, Expected: expected}
}

// ApplyMinimumBillable floors expected minutes at the company minimum for
// flat-billed jobs. Hourly jobs bill what the aggregation produced.
func ApplyMinimumBillable(minutes float64, mode BillingMode, snap CompanySnapshot) float64 {
	if mode == BillingModeFlat && minutes < snap.MinBillableLaborMinutes {
		return snap.MinBillableLaborMinutes
	}
	return minutes
}

func sumLaborMinutes(items []LineItem, materials map[uint]MaterialSnapshot, assemblies map[uint]AssemblySnapshot) float64 {
	var total float64
	for _, item := range items {
		qty := ResolveQuantity(item, items)
		switch item.Kind {
		case LineItemMaterial:
			mat, ok := materials[item.MaterialID]
			if !ok {
				continue
			}
			total += mat.LaborMinutes * qty
		case LineItemAdHoc:
			total += item.LaborMinutes * qty
		case LineItemLabor:
			// Stand-alone labor contributes its minutes as-is; only
			// group-nested labor scales with the parent quantity.
			if item.ParentGroupID != nil {
				total += item.LaborMinutes * qty
			} else {
				total += item.LaborMinutes
			}
		case LineItemAssemblyRef:
			asm, ok := assemblies[item.AssemblyID]
			if !ok {
				continue
			}
			total += sumLaborMinutes(asm.Items, materials, assemblies) * qty
		}
	}
	return total
}

// ResolveQuantity derives the effective quantity of a line. Children nested
// under an assembly group store a per-parent-unit factor so that rescaling
// the parent rescales every child proportionally.
func ResolveQuantity(item LineItem, items []LineItem) float64 {
	if item.ParentGroupID == nil {
		return item.Quantity
	}
	for _, candidate := range items {
		if candidate.GroupID != nil && *candidate.GroupID == *item.ParentGroupID {
			return item.QuantityFactor * candidate.Quantity
		}
	}
	// Orphaned child: no parent group in the list, fall back to its own quantity
	return item.Quantity
}
