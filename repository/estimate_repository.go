package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldserve/estimator/models"
	"github.com/fieldserve/estimator/utils"
	"gorm.io/gorm"
)

// EstimateRepositoryImpl implements EstimateRepository interface.
type EstimateRepositoryImpl struct {
	*BaseRepository[models.Estimate, models.EstimateFilter]
}

// NewEstimateRepository creates a new estimate repository.
func NewEstimateRepository(db *gorm.DB) EstimateRepository {
	return &EstimateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Estimate, models.EstimateFilter](db),
	}
}

// ByUUID retrieves an estimate by UUID with options and items.
func (r *EstimateRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Estimate, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	db := r.getDB(ctx)
	var row models.Estimate
	err = db.Preload("Options", func(q *gorm.DB) *gorm.DB {
		return q.Order("id ASC")
	}).Preload("Options.Items", func(q *gorm.DB) *gorm.DB {
		return q.Order("position ASC")
	}).Where("uuid = ?", parsed).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ByIDWithOptions retrieves an estimate with options and line items preloaded.
func (r *EstimateRepositoryImpl) ByIDWithOptions(ctx context.Context, id uint) (*models.Estimate, error) {
	db := r.getDB(ctx)
	var row models.Estimate
	err := db.Preload("Options", func(q *gorm.DB) *gorm.DB {
		return q.Order("id ASC")
	}).Preload("Options.Items", func(q *gorm.DB) *gorm.DB {
		return q.Order("position ASC")
	}).First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListByCompany lists estimates for a company, newest first.
func (r *EstimateRepositoryImpl) ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.Estimate, error) {
	return r.ByFilter(ctx, models.EstimateFilter{CompanyID: &companyID}, "created_at DESC", limit, offset)
}

// NextNumber returns the next estimate number for a company, floored at the
// company's configured starting number. A starting number of zero or less
// falls back to the global default.
func (r *EstimateRepositoryImpl) NextNumber(ctx context.Context, companyID uint, startingNumber int) (int, error) {
	if startingNumber <= 0 {
		startingNumber = utils.DefaultStartingEstimateNumber
	}
	db := r.getDB(ctx)
	var max *int
	err := db.Model(&models.Estimate{}).
		Where("company_id = ?", companyID).
		Select("MAX(number)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read max estimate number: %w", err)
	}
	if max == nil || *max < startingNumber {
		return startingNumber, nil
	}
	return *max + 1, nil
}

// UpdateStatus changes an estimate's status.
func (r *EstimateRepositoryImpl) UpdateStatus(ctx context.Context, estimateID uint, status models.EstimateStatus) error {
	db := r.getDB(ctx)
	res := db.Model(&models.Estimate{}).
		Where("id = ?", estimateID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update estimate status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetExpiry stamps when an estimate stops being honored.
func (r *EstimateRepositoryImpl) SetExpiry(ctx context.Context, estimateID uint, expiresAt time.Time) error {
	db := r.getDB(ctx)
	res := db.Model(&models.Estimate{}).
		Where("id = ?", estimateID).
		Updates(map[string]any{
			"expires_at": expiresAt,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update estimate expiry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SaveOption inserts or updates an estimate option.
func (r *EstimateRepositoryImpl) SaveOption(ctx context.Context, option *models.EstimateOption) error {
	db := r.getDB(ctx)
	if err := db.Save(option).Error; err != nil {
		return fmt.Errorf("failed to save estimate option: %w", err)
	}
	return nil
}

// ReplaceOptionItems swaps the full line item list of an option in one transaction.
func (r *EstimateRepositoryImpl) ReplaceOptionItems(ctx context.Context, optionID uint, items []*models.EstimateLineItem) error {
	return WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		db := r.getDB(txCtx)

		if err := db.Where("option_id = ?", optionID).Delete(&models.EstimateLineItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete option items: %w", err)
		}

		for i, item := range items {
			item.OptionID = optionID
			item.Position = i
		}
		if len(items) > 0 {
			if err := db.CreateInBatches(items, 100).Error; err != nil {
				return fmt.Errorf("failed to insert option items: %w", err)
			}
		}
		return nil
	})
}

// SetOptionRuleLockedJobType records or clears the job type locked by an admin rule on an option.
func (r *EstimateRepositoryImpl) SetOptionRuleLockedJobType(ctx context.Context, optionID uint, jobTypeID *uint) error {
	db := r.getDB(ctx)
	res := db.Model(&models.EstimateOption{}).
		Where("id = ?", optionID).
		Update("rule_locked_job_type_id", jobTypeID)
	if res.Error != nil {
		return fmt.Errorf("failed to update rule locked job type: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query.
func (r *EstimateRepositoryImpl) applyFilter(query *gorm.DB, filter models.EstimateFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Number != nil {
		query = query.Where("number = ?", *filter.Number)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerName != nil {
		query = query.Where("customer_name ILIKE ?", "%"+*filter.CustomerName+"%")
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves estimates based on filter criteria.
func (r *EstimateRepositoryImpl) ByFilter(ctx context.Context, filter models.EstimateFilter, orderBy string, limit, offset int) ([]*models.Estimate, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Estimate{})

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

	var rows []*models.Estimate
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of estimates matching filter.
func (r *EstimateRepositoryImpl) Count(ctx context.Context, filter models.EstimateFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Estimate{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any estimates match the filter.
func (r *EstimateRepositoryImpl) Exists(ctx context.Context, filter models.EstimateFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
