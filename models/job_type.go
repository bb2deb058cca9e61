package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/fieldserve/estimator/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BillingMode represents how a job type bills labor
type BillingMode string

const (
	BillingModeFlat   BillingMode = "flat"
	BillingModeHourly BillingMode = "hourly"
)

// Valid checks if the billing mode is valid
func (m BillingMode) Valid() bool {
	return m == BillingModeFlat || m == BillingModeHourly
}

// Scan implements the sql.Scanner interface for BillingMode
func (m *BillingMode) Scan(value any) error {
	if value == nil {
		*m = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*m = BillingMode(v)
	case []byte:
		*m = BillingMode(string(v))
	default:
		return fmt.Errorf("cannot scan %T into BillingMode", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for BillingMode
func (m BillingMode) Value() (driver.Value, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid BillingMode: %s", m)
	}
	return string(m), nil
}

// MaterialMarkupMode selects the markup source an hourly job type applies to
// materials: the company tier table, a fixed percent, or its own tiers
type MaterialMarkupMode string

const (
	MaterialMarkupModeCompany MaterialMarkupMode = "company"
	MaterialMarkupModeFixed   MaterialMarkupMode = "fixed"
	MaterialMarkupModeTiered  MaterialMarkupMode = "tiered"
)

// Valid checks if the markup mode is valid
func (m MaterialMarkupMode) Valid() bool {
	switch m {
	case MaterialMarkupModeCompany, MaterialMarkupModeFixed, MaterialMarkupModeTiered:
		return true
	default:
		return false
	}
}

// JobType carries the margin and efficiency targets pricing runs under.
// Exactly one job type per company is the default; switching the default is
// a dedicated repository operation, not a field edit.
type JobType struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CompanyID uint      `gorm:"not null;index" json:"company_id"`
	Name      string    `gorm:"type:varchar(120);not null" json:"name"`

	BillingMode        BillingMode `gorm:"type:varchar(10);not null;default:'flat'" json:"billing_mode"`
	GrossMarginPercent float64     `gorm:"not null;default:0" json:"gross_margin_percent"`
	EfficiencyPercent  float64     `gorm:"not null;default:100" json:"efficiency_percent"`

	AllowDiscounts *bool `gorm:"not null;default:true" json:"allow_discounts"`
	Enabled        *bool `gorm:"not null;default:true;index" json:"enabled"`
	IsDefault      *bool `gorm:"not null;default:false;index" json:"is_default"`

	// Material markup override for hourly billing
	MaterialMarkupMode    MaterialMarkupMode `gorm:"type:varchar(10);not null;default:'company'" json:"material_markup_mode"`
	MaterialMarkupPercent float64            `gorm:"not null;default:0" json:"material_markup_percent"`
	MaterialMarkupTiers   MarkupTierList     `gorm:"type:jsonb;not null;default:'[]'" json:"material_markup_tiers"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName returns the table name for the model
func (JobType) TableName() string {
	return "job_types"
}

// BeforeCreate is called before creating a new record
func (j *JobType) BeforeCreate(tx *gorm.DB) error {
	if j.UUID == uuid.Nil {
		j.UUID = uuid.New()
	}
	if j.BillingMode == "" {
		j.BillingMode = BillingModeFlat
	}
	if j.MaterialMarkupMode == "" {
		j.MaterialMarkupMode = MaterialMarkupModeCompany
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = utils.UTCNow()
	}
	if j.UpdatedAt.IsZero() {
		j.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (j *JobType) BeforeUpdate(tx *gorm.DB) error {
	j.UpdatedAt = utils.UTCNow()
	return nil
}

// JobTypeFilter represents filter criteria for job type queries
type JobTypeFilter struct {
	ID            *uint        `json:"id,omitempty"`
	UUID          *uuid.UUID   `json:"uuid,omitempty"`
	CompanyID     *uint        `json:"company_id,omitempty"`
	BillingMode   *BillingMode `json:"billing_mode,omitempty"`
	Enabled       *bool        `json:"enabled,omitempty"`
	IsDefault     *bool        `json:"is_default,omitempty"`
	CreatedAfter  *time.Time   `json:"created_after,omitempty"`
	CreatedBefore *time.Time   `json:"created_before,omitempty"`
}
