// Package pricing implements the estimating engine: pure, deterministic
// cost and price computations over an in-memory snapshot of company data.
// Nothing in this package touches storage or the network; callers resolve
// all entities up front and pass them in.
package pricing

// BillingMode determines how a job type bills labor.
type BillingMode string

const (
	BillingModeFlat   BillingMode = "flat"
	BillingModeHourly BillingMode = "hourly"
)

// Valid checks if the billing mode is valid.
func (m BillingMode) Valid() bool {
	return m == BillingModeFlat || m == BillingModeHourly
}

// ExpenseFrequency is how often an itemized expense recurs.
type ExpenseFrequency string

const (
	ExpenseFrequencyMonthly   ExpenseFrequency = "monthly"
	ExpenseFrequencyQuarterly ExpenseFrequency = "quarterly"
	ExpenseFrequencyBiannual  ExpenseFrequency = "biannual"
	ExpenseFrequencyAnnual    ExpenseFrequency = "annual"
)

// MonthlyFactor converts one occurrence of the expense into a monthly amount.
func (f ExpenseFrequency) MonthlyFactor() float64 {
	switch f {
	case ExpenseFrequencyQuarterly:
		return 1.0 / 3.0
	case ExpenseFrequencyBiannual:
		return 1.0 / 6.0
	case ExpenseFrequencyAnnual:
		return 1.0 / 12.0
	default:
		return 1
	}
}

// ExpenseItem is a single itemized business or personal expense.
type ExpenseItem struct {
	Name      string
	Amount    float64
	Frequency ExpenseFrequency
}

// ExpenseModel is either a lump monthly sum or an itemized expense list.
type ExpenseModel struct {
	Monthly  float64
	Itemized bool
	Items    []ExpenseItem
}

// MonthlyTotal returns the monthly overhead contribution of this side.
func (m ExpenseModel) MonthlyTotal() float64 {
	if !m.Itemized {
		return m.Monthly
	}
	var total float64
	for _, item := range m.Items {
		total += item.Amount * item.Frequency.MonthlyFactor()
	}
	return total
}

// NetProfitGoalMode selects how the company expresses its net profit goal.
type NetProfitGoalMode string

const (
	NetProfitGoalPercent NetProfitGoalMode = "percent"
	NetProfitGoalDollar  NetProfitGoalMode = "dollar"
)

// MarkupTier maps a tax-inclusive unit cost range to a markup percent.
type MarkupTier struct {
	Min     float64
	Max     float64
	Percent float64
}

// Contains reports whether the tax-inclusive cost falls inside this tier.
func (t MarkupTier) Contains(cost float64) bool {
	return cost >= t.Min && cost <= t.Max
}

// MarkupMode selects the material markup source for hourly job types.
type MarkupMode string

const (
	MarkupModeCompany MarkupMode = "company"
	MarkupModeFixed   MarkupMode = "fixed"
	MarkupModeTiered  MarkupMode = "tiered"
)

// MarkupPolicy is a job type's material markup override.
type MarkupPolicy struct {
	Mode         MarkupMode
	FixedPercent float64
	Tiers        []MarkupTier
}

// CompanySnapshot is a read-only copy of the company's economic parameters.
// Every engine entry point receives one; there is no ambient company state.
type CompanySnapshot struct {
	// Staffing
	TechnicianCount     int
	WorkdaysPerWeek     float64
	HoursPerDay         float64
	VacationDaysPerYear float64
	SickDaysPerYear     float64
	JobsPerTechPerDay   float64
	TechnicianWages     []float64

	// Pricing knobs
	PurchaseTaxPercent      float64
	MiscMaterialPercent     float64
	DefaultDiscountPercent  float64
	ProcessingFeePercent    float64
	MinBillableLaborMinutes float64
	MarkupTiers             []MarkupTier

	// Misc material is normally waived when the customer supplies materials;
	// this flag charges it anyway.
	MiscAppliesWhenCustomerSupplies bool

	// Expense / profit model
	BusinessExpenses   ExpenseModel
	PersonalExpenses   ExpenseModel
	NetProfitGoalMode  NetProfitGoalMode
	NetProfitGoalValue float64
}

// JobTypeSnapshot is a read-only copy of one job type's pricing parameters.
type JobTypeSnapshot struct {
	ID                 uint
	BillingMode        BillingMode
	GrossMarginPercent float64
	EfficiencyPercent  float64
	AllowDiscounts     bool
	Enabled            bool
	IsDefault          bool
	MaterialMarkup     MarkupPolicy
}

// MaterialSnapshot is a read-only copy of one catalog material.
type MaterialSnapshot struct {
	ID            uint
	BaseCost      float64
	CustomCost    *float64
	UseCustomCost bool
	Taxable       bool
	LaborMinutes  float64
	JobTypeID     *uint
}

// LineItemKind tags the variants of an estimate or assembly line item.
type LineItemKind string

const (
	LineItemMaterial    LineItemKind = "material"
	LineItemAdHoc       LineItemKind = "adhoc"
	LineItemLabor       LineItemKind = "labor"
	LineItemAssemblyRef LineItemKind = "assembly"
)

// LineItem is one line of an estimate option or assembly. Which fields are
// meaningful depends on Kind. A line that owns a group of children carries a
// GroupID; children point back via ParentGroupID and scale with the parent
// through QuantityFactor.
type LineItem struct {
	Kind       LineItemKind
	MaterialID uint
	AssemblyID uint
	Quantity   float64

	// Ad-hoc material fields
	UnitCost float64
	Taxable  bool

	// Ad-hoc and labor lines
	LaborMinutes float64

	// Group nesting
	GroupID        *uint
	ParentGroupID  *uint
	QuantityFactor float64
}

// AssemblySnapshot is a read-only copy of one assembly definition.
type AssemblySnapshot struct {
	ID                        uint
	JobTypeID                 *uint
	RuleLockedJobTypeID       *uint
	CustomerSuppliesMaterials bool
	Items                     []LineItem
}

// EstimateSnapshot is a read-only copy of an estimate's active option.
type EstimateSnapshot struct {
	JobTypeID                 *uint
	RuleLockedJobTypeID       *uint
	CustomerSuppliesMaterials bool
	DiscountEnabled           bool
	ProcessingFeeEnabled      bool
	Items                     []LineItem
}

// EffectiveJobType resolves the job type a computation should price with:
// a rule lock wins over the direct selection, which wins over the company
// default. The boolean is false when no job type could be resolved.
func EffectiveJobType(locked, selected *uint, jobTypes map[uint]JobTypeSnapshot) (JobTypeSnapshot, bool) {
	if locked != nil {
		if jt, ok := jobTypes[*locked]; ok {
			return jt, true
		}
	}
	if selected != nil {
		if jt, ok := jobTypes[*selected]; ok {
			return jt, true
		}
	}
	for _, jt := range jobTypes {
		if jt.IsDefault {
			return jt, true
		}
	}
	return JobTypeSnapshot{}, false
}
