package repository

import (
	"context"

	"github.com/fieldserve/estimator/models"
	"github.com/fieldserve/estimator/utils"
	"gorm.io/gorm"
)

// CompanySettingsRepositoryImpl implements CompanySettingsRepository interface.
type CompanySettingsRepositoryImpl struct {
	*BaseRepository[models.CompanySettings, models.CompanySettingsFilter]
}

// NewCompanySettingsRepository creates a new company settings repository.
func NewCompanySettingsRepository(db *gorm.DB) CompanySettingsRepository {
	return &CompanySettingsRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CompanySettings, models.CompanySettingsFilter](db),
	}
}

// ByCompanyID retrieves the settings row for a company.
func (r *CompanySettingsRepositoryImpl) ByCompanyID(ctx context.Context, companyID uint) (*models.CompanySettings, error) {
	rows, err := r.ByFilter(ctx, models.CompanySettingsFilter{CompanyID: &companyID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ByUUID retrieves company settings by UUID.
func (r *CompanySettingsRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.CompanySettings, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.CompanySettingsFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// applyFilter applies filter criteria to a GORM query.
func (r *CompanySettingsRepositoryImpl) applyFilter(query *gorm.DB, filter models.CompanySettingsFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves company settings based on filter criteria.
func (r *CompanySettingsRepositoryImpl) ByFilter(ctx context.Context, filter models.CompanySettingsFilter, orderBy string, limit, offset int) ([]*models.CompanySettings, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CompanySettings{})

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

	var rows []*models.CompanySettings
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of company settings rows matching filter.
func (r *CompanySettingsRepositoryImpl) Count(ctx context.Context, filter models.CompanySettingsFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CompanySettings{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any company settings rows match the filter.
func (r *CompanySettingsRepositoryImpl) Exists(ctx context.Context, filter models.CompanySettingsFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
