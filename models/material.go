package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/fieldserve/estimator/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LibraryKind represents who owns a material or assembly library
type LibraryKind string

const (
	LibraryKindCompany  LibraryKind = "company"
	LibraryKindPersonal LibraryKind = "personal"
)

// Valid checks if the library kind is valid
func (k LibraryKind) Valid() bool {
	return k == LibraryKindCompany || k == LibraryKindPersonal
}

// Scan implements the sql.Scanner interface for LibraryKind
func (k *LibraryKind) Scan(value any) error {
	if value == nil {
		*k = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*k = LibraryKind(v)
	case []byte:
		*k = LibraryKind(string(v))
	default:
		return fmt.Errorf("cannot scan %T into LibraryKind", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for LibraryKind
func (k LibraryKind) Value() (driver.Value, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid LibraryKind: %s", k)
	}
	return string(k), nil
}

// Material is one catalog entry: its cost, taxability, and install labor.
// Labor is stored as split hours and minutes; when hours are set the minutes
// column is a remainder, otherwise it holds the full amount.
type Material struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        uuid.UUID   `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CompanyID   uint        `gorm:"not null;index" json:"company_id"`
	LibraryKind LibraryKind `gorm:"type:varchar(10);not null;default:'company';index" json:"library_kind"`
	Name        string      `gorm:"type:varchar(255);not null" json:"name"`

	BaseCost      float64  `gorm:"not null;default:0" json:"base_cost"`
	CustomCost    *float64 `json:"custom_cost,omitempty"`
	UseCustomCost *bool    `gorm:"not null;default:false" json:"use_custom_cost"`
	Taxable       *bool    `gorm:"not null;default:true" json:"taxable"`

	LaborHours   float64 `gorm:"not null;default:0" json:"labor_hours"`
	LaborMinutes float64 `gorm:"not null;default:0" json:"labor_minutes"`

	JobTypeID *uint `gorm:"index" json:"job_type_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	JobType *JobType `gorm:"foreignKey:JobTypeID;references:ID;constraint:OnDelete:SET NULL" json:"job_type,omitempty"`
}

// TableName returns the table name for the model
func (Material) TableName() string {
	return "materials"
}

// BeforeCreate is called before creating a new record
func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == uuid.Nil {
		m.UUID = uuid.New()
	}
	if m.LibraryKind == "" {
		m.LibraryKind = LibraryKindCompany
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = utils.UTCNow()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (m *Material) BeforeUpdate(tx *gorm.DB) error {
	m.UpdatedAt = utils.UTCNow()
	return nil
}

// TotalLaborMinutes combines the split hours/minutes columns.
func (m *Material) TotalLaborMinutes() float64 {
	if m.LaborHours > 0 {
		return m.LaborHours*60 + m.LaborMinutes
	}
	return m.LaborMinutes
}

// MaterialFilter represents filter criteria for material queries
type MaterialFilter struct {
	ID            *uint        `json:"id,omitempty"`
	UUID          *uuid.UUID   `json:"uuid,omitempty"`
	CompanyID     *uint        `json:"company_id,omitempty"`
	LibraryKind   *LibraryKind `json:"library_kind,omitempty"`
	Name          *string      `json:"name,omitempty"`
	JobTypeID     *uint        `json:"job_type_id,omitempty"`
	Taxable       *bool        `json:"taxable,omitempty"`
	CreatedAfter  *time.Time   `json:"created_after,omitempty"`
	CreatedBefore *time.Time   `json:"created_before,omitempty"`
}
