package pricing

import "sort"

// RuleScope limits which documents a rule applies to.
type RuleScope string

const (
	RuleScopeEstimate RuleScope = "estimate"
	RuleScopeAssembly RuleScope = "assembly"
	RuleScopeBoth     RuleScope = "both"
)

// AppliesTo reports whether the scope covers the given document scope.
func (s RuleScope) AppliesTo(target RuleScope) bool {
	return s == target || s == RuleScopeBoth
}

// RuleMetric names the expected-metric a rule condition matches against.
type RuleMetric string

const (
	MetricExpectedLaborHours   RuleMetric = "expected_labor_hours"
	MetricExpectedLaborMinutes RuleMetric = "expected_labor_minutes"
	MetricMaterialCost         RuleMetric = "material_cost"
	MetricLineItemCount        RuleMetric = "line_item_count"
	MetricAnyLineItemQty       RuleMetric = "any_line_item_qty"
)

// RuleOperator is a threshold comparison operator.
type RuleOperator string

const (
	OpGreaterThan    RuleOperator = ">"
	OpGreaterOrEqual RuleOperator = ">="
	OpLessThan       RuleOperator = "<"
	OpLessOrEqual    RuleOperator = "<="
	OpEqual          RuleOperator = "=="
	OpNotEqual       RuleOperator = "!="
)

// Rule is a normalized admin rule. Older rule rows carried bare min-*
// threshold columns with no operator; the repository maps those onto the
// Legacy* fields and the evaluator treats each present one as an implicit
// >= combined with AND.
type Rule struct {
	ID              uint
	Priority        int
	Scope           RuleScope
	Enabled         bool
	Metric          RuleMetric
	Operator        RuleOperator
	Threshold       *float64
	TargetJobTypeID uint

	LegacyMinLaborMinutes *float64
	LegacyMinMaterialCost *float64
	LegacyMinLineItems    *float64
}

// EvaluateAdminRules finds the job type override for a computed metric set:
// the enabled rule with the lowest priority number whose condition holds
// wins. A rule with no threshold at all never matches, so a half-configured
// rule cannot silently apply to everything. The returned flag is false when
// nothing matched.
func EvaluateAdminRules(rules []Rule, scope RuleScope, metrics ExpectedMetrics) (uint, bool) {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	for _, rule := range ordered {
		if !rule.Enabled || !rule.Scope.AppliesTo(scope) {
			continue
		}
		if ruleMatches(rule, metrics) {
			return rule.TargetJobTypeID, true
		}
	}
	return 0, false
}

func ruleMatches(rule Rule, metrics ExpectedMetrics) bool {
	if rule.Threshold != nil && rule.Metric != "" && rule.Operator != "" {
		return compare(rule.Operator, metricValue(rule.Metric, metrics), *rule.Threshold)
	}
	return legacyMatches(rule, metrics)
}

// legacyMatches evaluates pre-operator rule rows: every present min
// threshold must hold, and a rule with none never matches.
func legacyMatches(rule Rule, metrics ExpectedMetrics) bool {
	any := false
	if rule.LegacyMinLaborMinutes != nil {
		any = true
		if metrics.ExpectedLaborMinutes < *rule.LegacyMinLaborMinutes {
			return false
		}
	}
	if rule.LegacyMinMaterialCost != nil {
		any = true
		if metrics.MaterialCost < *rule.LegacyMinMaterialCost {
			return false
		}
	}
	if rule.LegacyMinLineItems != nil {
		any = true
		if metrics.LineItemCount < *rule.LegacyMinLineItems {
			return false
		}
	}
	return any
}

func metricValue(metric RuleMetric, m ExpectedMetrics) float64 {
	switch metric {
	case MetricExpectedLaborHours:
		return m.ExpectedLaborHours
	case MetricExpectedLaborMinutes:
		return m.ExpectedLaborMinutes
	case MetricMaterialCost:
		return m.MaterialCost
	case MetricLineItemCount:
		return m.LineItemCount
	case MetricAnyLineItemQty:
		return m.MaxLineItemQuantity
	default:
		return 0
	}
}

func compare(op RuleOperator, value, threshold float64) bool {
	switch op {
	case OpGreaterThan:
		return value > threshold
	case OpGreaterOrEqual:
		return value >= threshold
	case OpLessThan:
		return value < threshold
	case OpLessOrEqual:
		return value <= threshold
	case OpEqual:
		return value == threshold
	case OpNotEqual:
		return value != threshold
	default:
		return false
	}
}
