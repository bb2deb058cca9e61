package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fieldserve/estimator/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpenseFrequency represents how often an itemized expense recurs
type ExpenseFrequency string

const (
	ExpenseFrequencyMonthly   ExpenseFrequency = "monthly"
	ExpenseFrequencyQuarterly ExpenseFrequency = "quarterly"
	ExpenseFrequencyBiannual  ExpenseFrequency = "biannual"
	ExpenseFrequencyAnnual    ExpenseFrequency = "annual"
)

// Valid checks if the frequency is valid
func (f ExpenseFrequency) Valid() bool {
	switch f {
	case ExpenseFrequencyMonthly, ExpenseFrequencyQuarterly,
		ExpenseFrequencyBiannual, ExpenseFrequencyAnnual:
		return true
	default:
		return false
	}
}

// NetProfitGoalMode represents how the company expresses its net profit goal
type NetProfitGoalMode string

const (
	NetProfitGoalModePercent NetProfitGoalMode = "percent"
	NetProfitGoalModeDollar  NetProfitGoalMode = "dollar"
)

// Valid checks if the mode is valid
func (m NetProfitGoalMode) Valid() bool {
	return m == NetProfitGoalModePercent || m == NetProfitGoalModeDollar
}

// Scan implements the sql.Scanner interface for NetProfitGoalMode
func (m *NetProfitGoalMode) Scan(value any) error {
	if value == nil {
		*m = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*m = NetProfitGoalMode(v)
	case []byte:
		*m = NetProfitGoalMode(string(v))
	default:
		return fmt.Errorf("cannot scan %T into NetProfitGoalMode", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for NetProfitGoalMode
func (m NetProfitGoalMode) Value() (driver.Value, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid NetProfitGoalMode: %s", m)
	}
	return string(m), nil
}

// MarkupTier maps a tax-inclusive unit cost range to a markup percent
type MarkupTier struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Percent float64 `json:"percent"`
}

// MarkupTierList is an ordered markup tier table stored as JSONB
type MarkupTierList []MarkupTier

// Scan implements the sql.Scanner interface for MarkupTierList
func (l *MarkupTierList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into MarkupTierList", value)
	}

	return json.Unmarshal(bytes, l)
}

// Value implements the driver.Valuer interface for MarkupTierList
func (l MarkupTierList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Validate checks that tiers do not overlap; the engine picks the first
// containing tier, so an overlapping table would price ambiguously.
func (l MarkupTierList) Validate() error {
	if len(l) > utils.MaxMarkupTiers {
		return fmt.Errorf("markup tier table exceeds %d entries", utils.MaxMarkupTiers)
	}
	for i, a := range l {
		if a.Max < a.Min {
			return fmt.Errorf("markup tier %d has max below min", i)
		}
		for j, b := range l {
			if i == j {
				continue
			}
			if a.Min <= b.Max && b.Min <= a.Max {
				return fmt.Errorf("markup tiers %d and %d overlap", i, j)
			}
		}
	}
	return nil
}

// TechnicianWage is one row of the technician wage list
type TechnicianWage struct {
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourly_rate"`
}

// TechnicianWageList is the technician wage table stored as JSONB
type TechnicianWageList []TechnicianWage

// Scan implements the sql.Scanner interface for TechnicianWageList
func (l *TechnicianWageList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into TechnicianWageList", value)
	}

	return json.Unmarshal(bytes, l)
}

// Value implements the driver.Valuer interface for TechnicianWageList
func (l TechnicianWageList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// ExpenseEntry is one itemized business or personal expense
type ExpenseEntry struct {
	Name      string           `json:"name"`
	Amount    float64          `json:"amount"`
	Frequency ExpenseFrequency `json:"frequency"`
}

// ExpenseEntryList is an itemized expense table stored as JSONB
type ExpenseEntryList []ExpenseEntry

// Scan implements the sql.Scanner interface for ExpenseEntryList
func (l *ExpenseEntryList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ExpenseEntryList", value)
	}

	return json.Unmarshal(bytes, l)
}

// Value implements the driver.Valuer interface for ExpenseEntryList
func (l ExpenseEntryList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// CompanySettings holds one company's economic parameters: staffing and
// capacity, pricing knobs, the markup tier table, the technician wage list,
// the expense model, and the net profit goal. The pricing engine only ever
// reads these; mutation happens through the admin surface.
type CompanySettings struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CompanyID uint      `gorm:"not null;uniqueIndex" json:"company_id"`

	// Staffing
	TechnicianCount     int                `gorm:"not null;default:1" json:"technician_count"`
	WorkdaysPerWeek     float64            `gorm:"not null;default:5" json:"workdays_per_week"`
	HoursPerDay         float64            `gorm:"not null;default:8" json:"hours_per_day"`
	VacationDaysPerYear float64            `gorm:"not null;default:0" json:"vacation_days_per_year"`
	SickDaysPerYear     float64            `gorm:"not null;default:0" json:"sick_days_per_year"`
	JobsPerTechPerDay   float64            `gorm:"not null;default:2" json:"jobs_per_tech_per_day"`
	TechnicianWages     TechnicianWageList `gorm:"type:jsonb;not null;default:'[]'" json:"technician_wages"`

	// Pricing knobs
	PurchaseTaxPercent      float64        `gorm:"not null;default:0" json:"purchase_tax_percent"`
	MiscMaterialPercent     float64        `gorm:"not null;default:0" json:"misc_material_percent"`
	DefaultDiscountPercent  float64        `gorm:"not null;default:0" json:"default_discount_percent"`
	ProcessingFeePercent    float64        `gorm:"not null;default:0" json:"processing_fee_percent"`
	MinBillableLaborMinutes float64        `gorm:"not null;default:0" json:"min_billable_labor_minutes"`
	MarkupTiers             MarkupTierList `gorm:"type:jsonb;not null;default:'[]'" json:"markup_tiers"`

	MiscAppliesWhenCustomerSupplies *bool `gorm:"not null;default:false" json:"misc_applies_when_customer_supplies"`

	// Estimate numbering and validity
	EstimateValidityDays   int `gorm:"not null;default:30" json:"estimate_validity_days"`
	StartingEstimateNumber int `gorm:"not null;default:1000" json:"starting_estimate_number"`

	// Expense model: each side is either the lump monthly field or, when
	// the itemized flag is set, the entry list.
	BusinessExpenseMonthly   float64          `gorm:"not null;default:0" json:"business_expense_monthly"`
	BusinessExpenseItemized  *bool            `gorm:"not null;default:false" json:"business_expense_itemized"`
	BusinessExpenseItems     ExpenseEntryList `gorm:"type:jsonb;not null;default:'[]'" json:"business_expense_items"`
	PersonalExpenseMonthly   float64          `gorm:"not null;default:0" json:"personal_expense_monthly"`
	PersonalExpenseItemized  *bool            `gorm:"not null;default:false" json:"personal_expense_itemized"`
	PersonalExpenseItems     ExpenseEntryList `gorm:"type:jsonb;not null;default:'[]'" json:"personal_expense_items"`

	NetProfitGoalMode  NetProfitGoalMode `gorm:"type:varchar(10);not null;default:'percent'" json:"net_profit_goal_mode"`
	NetProfitGoalValue float64           `gorm:"not null;default:0" json:"net_profit_goal_value"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName returns the table name for the model
func (CompanySettings) TableName() string {
	return "company_settings"
}

// BeforeCreate is called before creating a new record
func (s *CompanySettings) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = utils.UTCNow()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = utils.UTCNow()
	}
	if len(s.TechnicianWages) == 0 {
		// Keep one placeholder row so the wage table always renders.
		s.TechnicianWages = TechnicianWageList{{}}
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (s *CompanySettings) BeforeUpdate(tx *gorm.DB) error {
	s.UpdatedAt = utils.UTCNow()
	return nil
}

// CompanySettingsFilter represents filter criteria for company settings queries
type CompanySettingsFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	CompanyID     *uint      `json:"company_id,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
