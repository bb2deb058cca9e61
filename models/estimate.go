package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/fieldserve/estimator/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EstimateStatus represents the lifecycle state of an estimate
type EstimateStatus string

const (
	EstimateStatusDraft    EstimateStatus = "draft"
	EstimateStatusSent     EstimateStatus = "sent"
	EstimateStatusApproved EstimateStatus = "approved"
	EstimateStatusDeclined EstimateStatus = "declined"
)

// Valid checks if the status is valid
func (s EstimateStatus) Valid() bool {
	switch s {
	case EstimateStatusDraft, EstimateStatusSent,
		EstimateStatusApproved, EstimateStatusDeclined:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for EstimateStatus
func (s *EstimateStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = EstimateStatus(v)
	case []byte:
		*s = EstimateStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into EstimateStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for EstimateStatus
func (s EstimateStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid EstimateStatus: %s", s)
	}
	return string(s), nil
}

// Estimate is the customer-facing document. Line items live on options; an
// estimate always has at least one option and exactly one is active.
type Estimate struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CompanyID uint      `gorm:"not null;index" json:"company_id"`
	Number    int       `gorm:"not null;index" json:"number"`

	CustomerName  string  `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail *string `gorm:"type:varchar(255)" json:"customer_email,omitempty"`

	Status    EstimateStatus `gorm:"type:varchar(10);not null;default:'draft';index" json:"status"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`

	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	Options []EstimateOption `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

// TableName returns the table name for the model
func (Estimate) TableName() string {
	return "estimates"
}

// BeforeCreate is called before creating a new record
func (e *Estimate) BeforeCreate(tx *gorm.DB) error {
	if e.UUID == uuid.Nil {
		e.UUID = uuid.New()
	}
	if e.Status == "" {
		e.Status = EstimateStatusDraft
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (e *Estimate) BeforeUpdate(tx *gorm.DB) error {
	e.UpdatedAt = utils.UTCNowPtr()
	return nil
}

// IsEditable checks if the estimate can still be edited; an approved
// estimate is terminal and locked.
func (e *Estimate) IsEditable() bool {
	return e.Status == EstimateStatusDraft || e.Status == EstimateStatusSent
}

// CanTransitionTo checks if the estimate can move to the given status
func (e *Estimate) CanTransitionTo(newStatus EstimateStatus) bool {
	switch e.Status {
	case EstimateStatusDraft:
		return newStatus == EstimateStatusSent
	case EstimateStatusSent:
		return newStatus == EstimateStatusApproved ||
			newStatus == EstimateStatusDeclined
	default:
		return false
	}
}

// ActiveOption returns the active option, or nil when none is marked.
func (e *Estimate) ActiveOption() *EstimateOption {
	for i := range e.Options {
		if utils.IsTrue(e.Options[i].IsActive) {
			return &e.Options[i]
		}
	}
	return nil
}

// EstimateOption is one named variant of an estimate: an independent item
// list plus its own pricing toggles.
type EstimateOption struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	EstimateID uint   `gorm:"not null;index" json:"estimate_id"`
	Name       string `gorm:"type:varchar(120);not null;default:'Option 1'" json:"name"`
	IsActive   *bool  `gorm:"not null;default:false;index" json:"is_active"`

	JobTypeID                 *uint `gorm:"index" json:"job_type_id,omitempty"`
	RuleLockedJobTypeID       *uint `gorm:"index" json:"rule_locked_job_type_id,omitempty"`
	CustomerSuppliesMaterials *bool `gorm:"not null;default:false" json:"customer_supplies_materials"`
	DiscountEnabled           *bool `gorm:"not null;default:false" json:"discount_enabled"`
	ProcessingFeeEnabled      *bool `gorm:"not null;default:false" json:"processing_fee_enabled"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Items []EstimateLineItem `gorm:"foreignKey:OptionID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// TableName returns the table name for the model
func (EstimateOption) TableName() string {
	return "estimate_options"
}

// BeforeCreate is called before creating a new record
func (o *EstimateOption) BeforeCreate(tx *gorm.DB) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = utils.UTCNow()
	}
	return nil
}

// EstimateLineItem is one line of an estimate option. A line referencing an
// assembly owns a group; children point back through ParentGroupID and
// scale with the parent via QuantityFactor.
type EstimateLineItem struct {
	ID       uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	OptionID uint         `gorm:"not null;index" json:"option_id"`
	Kind     LineItemKind `gorm:"type:varchar(10);not null" json:"kind"`
	Position int          `gorm:"not null;default:0" json:"position"`

	MaterialID *uint   `gorm:"index" json:"material_id,omitempty"`
	AssemblyID *uint   `gorm:"index" json:"assembly_id,omitempty"`
	Quantity   float64 `gorm:"not null;default:1" json:"quantity"`

	// Ad-hoc material fields
	Name     *string  `gorm:"type:varchar(255)" json:"name,omitempty"`
	UnitCost *float64 `json:"unit_cost,omitempty"`
	Taxable  *bool    `gorm:"not null;default:true" json:"taxable"`

	// Ad-hoc and labor lines
	LaborMinutes float64 `gorm:"not null;default:0" json:"labor_minutes"`

	// Group nesting: the per-unit factor persists across edits so changing
	// the parent quantity rescales the children.
	GroupID        *uint   `gorm:"index" json:"group_id,omitempty"`
	ParentGroupID  *uint   `gorm:"index" json:"parent_group_id,omitempty"`
	QuantityFactor float64 `gorm:"not null;default:1" json:"quantity_factor"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Material *Material `gorm:"foreignKey:MaterialID;references:ID;constraint:OnDelete:SET NULL" json:"material,omitempty"`
	Assembly *Assembly `gorm:"foreignKey:AssemblyID;references:ID;constraint:OnDelete:SET NULL" json:"assembly,omitempty"`
}

// TableName returns the table name for the model
func (EstimateLineItem) TableName() string {
	return "estimate_line_items"
}

// BeforeCreate is called before creating a new record
func (i *EstimateLineItem) BeforeCreate(tx *gorm.DB) error {
	if i.CreatedAt.IsZero() {
		i.CreatedAt = utils.UTCNow()
	}
	return nil
}

// EstimateFilter represents filter criteria for estimate queries
type EstimateFilter struct {
	ID            *uint           `json:"id,omitempty"`
	UUID          *uuid.UUID      `json:"uuid,omitempty"`
	CompanyID     *uint           `json:"company_id,omitempty"`
	Number        *int            `json:"number,omitempty"`
	Status        *EstimateStatus `json:"status,omitempty"`
	CustomerName  *string         `json:"customer_name,omitempty"`
	CreatedAfter  *time.Time      `json:"created_after,omitempty"`
	CreatedBefore *time.Time      `json:"created_before,omitempty"`
}
