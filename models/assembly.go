package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/fieldserve/estimator/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LineItemKind tags the variants of an assembly or estimate line item
type LineItemKind string

const (
	LineItemKindMaterial LineItemKind = "material"
	LineItemKindAdHoc    LineItemKind = "adhoc"
	LineItemKindLabor    LineItemKind = "labor"
	LineItemKindAssembly LineItemKind = "assembly"
)

// Valid checks if the line item kind is valid
func (k LineItemKind) Valid() bool {
	switch k {
	case LineItemKindMaterial, LineItemKindAdHoc, LineItemKindLabor, LineItemKindAssembly:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for LineItemKind
func (k *LineItemKind) Scan(value any) error {
	if value == nil {
		*k = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*k = LineItemKind(v)
	case []byte:
		*k = LineItemKind(string(v))
	default:
		return fmt.Errorf("cannot scan %T into LineItemKind", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for LineItemKind
func (k LineItemKind) Value() (driver.Value, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid LineItemKind: %s", k)
	}
	return string(k), nil
}

// Assembly is a reusable bundle of materials, ad-hoc materials, and labor
// lines. It carries its own job type selection and may be locked to a job
// type chosen by an admin rule.
type Assembly struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        uuid.UUID   `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CompanyID   uint        `gorm:"not null;index" json:"company_id"`
	LibraryKind LibraryKind `gorm:"type:varchar(10);not null;default:'company';index" json:"library_kind"`
	Name        string      `gorm:"type:varchar(255);not null" json:"name"`
	Description *string     `gorm:"type:text" json:"description,omitempty"`

	JobTypeID                 *uint `gorm:"index" json:"job_type_id,omitempty"`
	RuleLockedJobTypeID       *uint `gorm:"index" json:"rule_locked_job_type_id,omitempty"`
	CustomerSuppliesMaterials *bool `gorm:"not null;default:false" json:"customer_supplies_materials"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items   []AssemblyItem `gorm:"foreignKey:AssemblyID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	JobType *JobType       `gorm:"foreignKey:JobTypeID;references:ID;constraint:OnDelete:SET NULL" json:"job_type,omitempty"`
}

// TableName returns the table name for the model
func (Assembly) TableName() string {
	return "assemblies"
}

// BeforeCreate is called before creating a new record
func (a *Assembly) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	if a.LibraryKind == "" {
		a.LibraryKind = LibraryKindCompany
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.UTCNow()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (a *Assembly) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = utils.UTCNow()
	return nil
}

// AssemblyItem is one line of an assembly: a catalog material, a blank
// ad-hoc material, or a labor line.
type AssemblyItem struct {
	ID         uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	AssemblyID uint         `gorm:"not null;index" json:"assembly_id"`
	Kind       LineItemKind `gorm:"type:varchar(10);not null" json:"kind"`
	Position   int          `gorm:"not null;default:0" json:"position"`

	MaterialID *uint   `gorm:"index" json:"material_id,omitempty"`
	Quantity   float64 `gorm:"not null;default:1" json:"quantity"`

	// Ad-hoc material fields
	Name     *string  `gorm:"type:varchar(255)" json:"name,omitempty"`
	UnitCost *float64 `json:"unit_cost,omitempty"`
	Taxable  *bool    `gorm:"not null;default:true" json:"taxable"`

	// Ad-hoc and labor lines
	LaborMinutes float64 `gorm:"not null;default:0" json:"labor_minutes"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Material *Material `gorm:"foreignKey:MaterialID;references:ID;constraint:OnDelete:SET NULL" json:"material,omitempty"`
}

// TableName returns the table name for the model
func (AssemblyItem) TableName() string {
	return "assembly_items"
}

// BeforeCreate is called before creating a new record
func (i *AssemblyItem) BeforeCreate(tx *gorm.DB) error {
	if i.CreatedAt.IsZero() {
		i.CreatedAt = utils.UTCNow()
	}
	return nil
}

// AssemblyFilter represents filter criteria for assembly queries
type AssemblyFilter struct {
	ID            *uint        `json:"id,omitempty"`
	UUID          *uuid.UUID   `json:"uuid,omitempty"`
	CompanyID     *uint        `json:"company_id,omitempty"`
	LibraryKind   *LibraryKind `json:"library_kind,omitempty"`
	Name          *string      `json:"name,omitempty"`
	JobTypeID     *uint        `json:"job_type_id,omitempty"`
	CreatedAfter  *time.Time   `json:"created_after,omitempty"`
	CreatedBefore *time.Time   `json:"created_before,omitempty"`
}
