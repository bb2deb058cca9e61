package repository

import (
	"context"

	"github.com/fieldserve/estimator/models"
	"github.com/fieldserve/estimator/utils"
	"gorm.io/gorm"
)

// MaterialRepositoryImpl implements MaterialRepository interface.
type MaterialRepositoryImpl struct {
	*BaseRepository[models.Material, models.MaterialFilter]
}

// NewMaterialRepository creates a new material repository.
func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &MaterialRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Material, models.MaterialFilter](db),
	}
}

// ByUUID retrieves a material by UUID.
func (r *MaterialRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Material, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.MaterialFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListByCompany lists materials for a company with pagination.
func (r *MaterialRepositoryImpl) ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.Material, error) {
	return r.ByFilter(ctx, models.MaterialFilter{CompanyID: &companyID}, "name ASC", limit, offset)
}

// ListByIDs retrieves materials by their IDs in one query.
func (r *MaterialRepositoryImpl) ListByIDs(ctx context.Context, ids []uint) ([]*models.Material, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := r.getDB(ctx)
	var rows []*models.Material
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// applyFilter applies filter criteria to a GORM query.
func (r *MaterialRepositoryImpl) applyFilter(query *gorm.DB, filter models.MaterialFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.LibraryKind != nil {
		query = query.Where("library_kind = ?", *filter.LibraryKind)
	}
	if filter.Name != nil {
		query = query.Where("name ILIKE ?", "%"+*filter.Name+"%")
	}
	if filter.JobTypeID != nil {
		query = query.Where("job_type_id = ?", *filter.JobTypeID)
	}
	if filter.Taxable != nil {
		query = query.Where("taxable = ?", *filter.Taxable)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves materials based on filter criteria.
func (r *MaterialRepositoryImpl) ByFilter(ctx context.Context, filter models.MaterialFilter, orderBy string, limit, offset int) ([]*models.Material, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Material{})

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

	var rows []*models.Material
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of materials matching filter.
func (r *MaterialRepositoryImpl) Count(ctx context.Context, filter models.MaterialFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Material{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any materials match the filter.
func (r *MaterialRepositoryImpl) Exists(ctx context.Context, filter models.MaterialFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
