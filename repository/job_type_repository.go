package repository

import (
	"context"
	"fmt"

	"github.com/fieldserve/estimator/models"
	"github.com/fieldserve/estimator/utils"
	"gorm.io/gorm"
)

// JobTypeRepositoryImpl implements JobTypeRepository interface.
type JobTypeRepositoryImpl struct {
	*BaseRepository[models.JobType, models.JobTypeFilter]
}

// NewJobTypeRepository creates a new job type repository.
func NewJobTypeRepository(db *gorm.DB) JobTypeRepository {
	return &JobTypeRepositoryImpl{
		BaseRepository: NewBaseRepository[models.JobType, models.JobTypeFilter](db),
	}
}

// ByUUID retrieves a job type by UUID.
func (r *JobTypeRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.JobType, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.JobTypeFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListByCompany lists all job types for a company, enabled or not.
func (r *JobTypeRepositoryImpl) ListByCompany(ctx context.Context, companyID uint) ([]*models.JobType, error) {
	return r.ByFilter(ctx, models.JobTypeFilter{CompanyID: &companyID}, "name ASC", 0, 0)
}

// ListEnabledByCompany lists enabled job types for a company.
func (r *JobTypeRepositoryImpl) ListEnabledByCompany(ctx context.Context, companyID uint) ([]*models.JobType, error) {
	enabled := true
	return r.ByFilter(ctx, models.JobTypeFilter{CompanyID: &companyID, Enabled: &enabled}, "name ASC", 0, 0)
}

// DefaultForCompany returns the company's default job type, or nil if none is flagged.
func (r *JobTypeRepositoryImpl) DefaultForCompany(ctx context.Context, companyID uint) (*models.JobType, error) {
	isDefault := true
	rows, err := r.ByFilter(ctx, models.JobTypeFilter{CompanyID: &companyID, IsDefault: &isDefault}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// SetDefault flags one job type as the company default and clears the flag on all others.
func (r *JobTypeRepositoryImpl) SetDefault(ctx context.Context, companyID, jobTypeID uint) error {
	return WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		db := r.getDB(txCtx)

		if err := db.Model(&models.JobType{}).
			Where("company_id = ? AND id != ?", companyID, jobTypeID).
			Update("is_default", false).Error; err != nil {
			return fmt.Errorf("failed to clear default job types: %w", err)
		}

		res := db.Model(&models.JobType{}).
			Where("company_id = ? AND id = ?", companyID, jobTypeID).
			Update("is_default", true)
		if res.Error != nil {
			return fmt.Errorf("failed to set default job type: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// applyFilter applies filter criteria to a GORM query.
func (r *JobTypeRepositoryImpl) applyFilter(query *gorm.DB, filter models.JobTypeFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.BillingMode != nil {
		query = query.Where("billing_mode = ?", *filter.BillingMode)
	}
	if filter.Enabled != nil {
		query = query.Where("enabled = ?", *filter.Enabled)
	}
	if filter.IsDefault != nil {
		query = query.Where("is_default = ?", *filter.IsDefault)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves job types based on filter criteria.
func (r *JobTypeRepositoryImpl) ByFilter(ctx context.Context, filter models.JobTypeFilter, orderBy string, limit, offset int) ([]*models.JobType, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.JobType{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.JobType
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of job types matching filter.
func (r *JobTypeRepositoryImpl) Count(ctx context.Context, filter models.JobTypeFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.JobType{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any job types match the filter.
func (r *JobTypeRepositoryImpl) Exists(ctx context.Context, filter models.JobTypeFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
