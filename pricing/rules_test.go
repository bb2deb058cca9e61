package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func threshold(v float64) *float64 { return &v }

func TestEvaluateAdminRules_LowestPriorityNumberWins(t *testing.T) {
	rules := []Rule{
		{ID: 1, Priority: 5, Scope: RuleScopeBoth, Enabled: true, Metric: MetricMaterialCost, Operator: OpGreaterOrEqual, Threshold: threshold(100), TargetJobTypeID: 7},
		{ID: 2, Priority: 1, Scope: RuleScopeBoth, Enabled: true, Metric: MetricMaterialCost, Operator: OpGreaterOrEqual, Threshold: threshold(500), TargetJobTypeID: 9},
	}
	metrics := ExpectedMetrics{MaterialCost: 520}

	target, ok := EvaluateAdminRules(rules, RuleScopeEstimate, metrics)
	assert.True(t, ok)
	assert.Equal(t, uint(9), target)
}

func TestEvaluateAdminRules_Operators(t *testing.T) {
	cases := []struct {
		op        RuleOperator
		threshold float64
		want      bool
	}{
		{OpGreaterThan, 100, true},
		{OpGreaterThan, 120, false},
		{OpGreaterOrEqual, 120, true},
		{OpLessThan, 150, true},
		{OpLessOrEqual, 120, true},
		{OpLessOrEqual, 100, false},
		{OpEqual, 120, true},
		{OpEqual, 121, false},
		{OpNotEqual, 121, true},
	}
	for _, tc := range cases {
		t.Run(string(tc.op), func(t *testing.T) {
			rules := []Rule{{
				Priority: 1, Scope: RuleScopeBoth, Enabled: true,
				Metric: MetricExpectedLaborMinutes, Operator: tc.op,
				Threshold: threshold(tc.threshold), TargetJobTypeID: 3,
			}}
			_, ok := EvaluateAdminRules(rules, RuleScopeEstimate, ExpectedMetrics{ExpectedLaborMinutes: 120})
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestEvaluateAdminRules_ScopeFilter(t *testing.T) {
	rules := []Rule{{
		Priority: 1, Scope: RuleScopeAssembly, Enabled: true,
		Metric: MetricLineItemCount, Operator: OpGreaterOrEqual,
		Threshold: threshold(1), TargetJobTypeID: 3,
	}}
	metrics := ExpectedMetrics{LineItemCount: 5}

	_, ok := EvaluateAdminRules(rules, RuleScopeEstimate, metrics)
	assert.False(t, ok)

	target, ok := EvaluateAdminRules(rules, RuleScopeAssembly, metrics)
	assert.True(t, ok)
	assert.Equal(t, uint(3), target)
}

func TestEvaluateAdminRules_DisabledRulesSkipped(t *testing.T) {
	rules := []Rule{{
		Priority: 1, Scope: RuleScopeBoth, Enabled: false,
		Metric: MetricLineItemCount, Operator: OpGreaterOrEqual,
		Threshold: threshold(0), TargetJobTypeID: 3,
	}}

	_, ok := EvaluateAdminRules(rules, RuleScopeEstimate, ExpectedMetrics{LineItemCount: 5})
	assert.False(t, ok)
}

func TestEvaluateAdminRules_LegacyThresholdsAreImplicitGte(t *testing.T) {
	rules := []Rule{{
		Priority: 1, Scope: RuleScopeBoth, Enabled: true,
		LegacyMinLaborMinutes: threshold(60),
		LegacyMinMaterialCost: threshold(200),
		TargetJobTypeID:       4,
	}}

	// Both legacy thresholds must hold.
	_, ok := EvaluateAdminRules(rules, RuleScopeEstimate, ExpectedMetrics{ExpectedLaborMinutes: 90, MaterialCost: 150})
	assert.False(t, ok)

	target, ok := EvaluateAdminRules(rules, RuleScopeEstimate, ExpectedMetrics{ExpectedLaborMinutes: 90, MaterialCost: 250})
	assert.True(t, ok)
	assert.Equal(t, uint(4), target)
}

func TestEvaluateAdminRules_NoThresholdNeverMatches(t *testing.T) {
	rules := []Rule{{
		Priority: 1, Scope: RuleScopeBoth, Enabled: true, TargetJobTypeID: 4,
	}}

	_, ok := EvaluateAdminRules(rules, RuleScopeEstimate, ExpectedMetrics{LineItemCount: 99})
	assert.False(t, ok)
}

func TestEvaluateAdminRules_InputOrderIrrelevant(t *testing.T) {
	a := Rule{ID: 1, Priority: 2, Scope: RuleScopeBoth, Enabled: true, Metric: MetricAnyLineItemQty, Operator: OpGreaterThan, Threshold: threshold(1), TargetJobTypeID: 5}
	b := Rule{ID: 2, Priority: 1, Scope: RuleScopeBoth, Enabled: true, Metric: MetricAnyLineItemQty, Operator: OpGreaterThan, Threshold: threshold(1), TargetJobTypeID: 6}
	metrics := ExpectedMetrics{MaxLineItemQuantity: 10}

	t1, _ := EvaluateAdminRules([]Rule{a, b}, RuleScopeEstimate, metrics)
	t2, _ := EvaluateAdminRules([]Rule{b, a}, RuleScopeEstimate, metrics)
	assert.Equal(t, uint(6), t1)
	assert.Equal(t, t1, t2)
}
