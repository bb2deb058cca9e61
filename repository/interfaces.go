// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/fieldserve/estimator/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CompanySettingsRepository defines operations for company pricing settings
type CompanySettingsRepository interface {
	Repository[models.CompanySettings, models.CompanySettingsFilter]
	ByCompanyID(ctx context.Context, companyID uint) (*models.CompanySettings, error)
	ByUUID(ctx context.Context, uuidStr string) (*models.CompanySettings, error)
}

// JobTypeRepository defines operations for job types
type JobTypeRepository interface {
	Repository[models.JobType, models.JobTypeFilter]
	ByUUID(ctx context.Context, uuidStr string) (*models.JobType, error)
	ListByCompany(ctx context.Context, companyID uint) ([]*models.JobType, error)
	ListEnabledByCompany(ctx context.Context, companyID uint) ([]*models.JobType, error)
	DefaultForCompany(ctx context.Context, companyID uint) (*models.JobType, error)
	SetDefault(ctx context.Context, companyID, jobTypeID uint) error
}

// MaterialRepository defines operations for material library entries
type MaterialRepository interface {
	Repository[models.Material, models.MaterialFilter]
	ByUUID(ctx context.Context, uuidStr string) (*models.Material, error)
	ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.Material, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*models.Material, error)
}

// AssemblyRepository defines operations for assemblies and their line items
type AssemblyRepository interface {
	Repository[models.Assembly, models.AssemblyFilter]
	ByUUID(ctx context.Context, uuidStr string) (*models.Assembly, error)
	ByIDWithItems(ctx context.Context, id uint) (*models.Assembly, error)
	ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.Assembly, error)
	ListByIDsWithItems(ctx context.Context, ids []uint) ([]*models.Assembly, error)
	ReplaceItems(ctx context.Context, assemblyID uint, items []*models.AssemblyItem) error
	SetRuleLockedJobType(ctx context.Context, assemblyID uint, jobTypeID *uint) error
}

// EstimateRepository defines operations for estimates, options, and line items
type EstimateRepository interface {
	Repository[models.Estimate, models.EstimateFilter]
	ByUUID(ctx context.Context, uuidStr string) (*models.Estimate, error)
	ByIDWithOptions(ctx context.Context, id uint) (*models.Estimate, error)
	ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.Estimate, error)
	NextNumber(ctx context.Context, companyID uint, startingNumber int) (int, error)
	UpdateStatus(ctx context.Context, estimateID uint, status models.EstimateStatus) error
	SetExpiry(ctx context.Context, estimateID uint, expiresAt time.Time) error
	SaveOption(ctx context.Context, option *models.EstimateOption) error
	ReplaceOptionItems(ctx context.Context, optionID uint, items []*models.EstimateLineItem) error
	SetOptionRuleLockedJobType(ctx context.Context, optionID uint, jobTypeID *uint) error
}

// AdminRuleRepository defines operations for admin job type rules
type AdminRuleRepository interface {
	Repository[models.AdminRule, models.AdminRuleFilter]
	ByUUID(ctx context.Context, uuidStr string) (*models.AdminRule, error)
	ListByCompany(ctx context.Context, companyID uint) ([]*models.AdminRule, error)
	ListEnabledByCompany(ctx context.Context, companyID uint) ([]*models.AdminRule, error)
}
