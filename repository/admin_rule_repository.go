package repository

import (
	"context"

	"github.com/fieldserve/estimator/models"
	"github.com/fieldserve/estimator/utils"
	"gorm.io/gorm"
)

// AdminRuleRepositoryImpl implements AdminRuleRepository interface.
type AdminRuleRepositoryImpl struct {
	*BaseRepository[models.AdminRule, models.AdminRuleFilter]
}

// NewAdminRuleRepository creates a new admin rule repository.
func NewAdminRuleRepository(db *gorm.DB) AdminRuleRepository {
	return &AdminRuleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AdminRule, models.AdminRuleFilter](db),
	}
}

// ByUUID retrieves an admin rule by UUID.
func (r *AdminRuleRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.AdminRule, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.AdminRuleFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListByCompany lists all rules for a company in priority order.
func (r *AdminRuleRepositoryImpl) ListByCompany(ctx context.Context, companyID uint) ([]*models.AdminRule, error) {
	return r.ByFilter(ctx, models.AdminRuleFilter{CompanyID: &companyID}, "priority ASC, id ASC", 0, 0)
}

// ListEnabledByCompany lists enabled rules for a company in priority order.
func (r *AdminRuleRepositoryImpl) ListEnabledByCompany(ctx context.Context, companyID uint) ([]*models.AdminRule, error) {
	enabled := true
	return r.ByFilter(ctx, models.AdminRuleFilter{CompanyID: &companyID, Enabled: &enabled}, "priority ASC, id ASC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query.
func (r *AdminRuleRepositoryImpl) applyFilter(query *gorm.DB, filter models.AdminRuleFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Enabled != nil {
		query = query.Where("enabled = ?", *filter.Enabled)
	}
	if filter.Scope != nil {
		query = query.Where("scope = ?", *filter.Scope)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves admin rules based on filter criteria.
func (r *AdminRuleRepositoryImpl) ByFilter(ctx context.Context, filter models.AdminRuleFilter, orderBy string, limit, offset int) ([]*models.AdminRule, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.AdminRule{})

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

	var rows []*models.AdminRule
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of admin rules matching filter.
func (r *AdminRuleRepositoryImpl) Count(ctx context.Context, filter models.AdminRuleFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.AdminRule{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any admin rules match the filter.
func (r *AdminRuleRepositoryImpl) Exists(ctx context.Context, filter models.AdminRuleFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
