package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/fieldserve/estimator/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RuleScope represents which documents an admin rule applies to
type RuleScope string

const (
	RuleScopeEstimate RuleScope = "estimate"
	RuleScopeAssembly RuleScope = "assembly"
	RuleScopeBoth     RuleScope = "both"
)

// Valid checks if the scope is valid
func (s RuleScope) Valid() bool {
	switch s {
	case RuleScopeEstimate, RuleScopeAssembly, RuleScopeBoth:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for RuleScope
func (s *RuleScope) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = RuleScope(v)
	case []byte:
		*s = RuleScope(string(v))
	default:
		return fmt.Errorf("cannot scan %T into RuleScope", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for RuleScope
func (s RuleScope) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid RuleScope: %s", s)
	}
	return string(s), nil
}

// AdminRule is a threshold policy that can override the job type selected
// for an estimate or assembly. Two row shapes coexist: current rows carry
// condition_metric/operator/threshold, while rows written before the
// operator column existed carry only the legacy min_* thresholds. The
// repository normalizes both shapes; nothing downstream re-reads the raw
// legacy columns.
type AdminRule struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CompanyID uint      `gorm:"not null;index" json:"company_id"`
	Name      string    `gorm:"type:varchar(120);not null" json:"name"`

	Enabled  *bool     `gorm:"not null;default:true;index" json:"enabled"`
	Scope    RuleScope `gorm:"type:varchar(10);not null;default:'both'" json:"scope"`
	Priority int       `gorm:"not null;default:100;index" json:"priority"`

	ConditionMetric   *string  `gorm:"type:varchar(30)" json:"condition_metric,omitempty"`
	ConditionOperator *string  `gorm:"type:varchar(2)" json:"condition_operator,omitempty"`
	Threshold         *float64 `json:"threshold,omitempty"`

	// Legacy columns kept for rows predating the condition fields
	MinLaborMinutes *float64 `gorm:"column:min_labor_minutes" json:"min_labor_minutes,omitempty"`
	MinMaterialCost *float64 `gorm:"column:min_material_cost" json:"min_material_cost,omitempty"`
	MinLineItems    *float64 `gorm:"column:min_line_items" json:"min_line_items,omitempty"`

	TargetJobTypeID uint `gorm:"not null;index" json:"target_job_type_id"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	TargetJobType *JobType `gorm:"foreignKey:TargetJobTypeID;references:ID" json:"target_job_type,omitempty"`
}

// TableName returns the table name for the model
func (AdminRule) TableName() string {
	return "admin_rules"
}

// BeforeCreate is called before creating a new record
func (r *AdminRule) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	if r.Scope == "" {
		r.Scope = RuleScopeBoth
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (r *AdminRule) BeforeUpdate(tx *gorm.DB) error {
	r.UpdatedAt = utils.UTCNow()
	return nil
}

// AdminRuleFilter represents filter criteria for admin rule queries
type AdminRuleFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	CompanyID     *uint      `json:"company_id,omitempty"`
	Enabled       *bool      `json:"enabled,omitempty"`
	Scope         *RuleScope `json:"scope,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
