package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldserve/estimator/models"
	"github.com/fieldserve/estimator/utils"
	"gorm.io/gorm"
)

// AssemblyRepositoryImpl implements AssemblyRepository interface.
type AssemblyRepositoryImpl struct {
	*BaseRepository[models.Assembly, models.AssemblyFilter]
}

// NewAssemblyRepository creates a new assembly repository.
func NewAssemblyRepository(db *gorm.DB) AssemblyRepository {
	return &AssemblyRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Assembly, models.AssemblyFilter](db),
	}
}

// ByUUID retrieves an assembly by UUID with its items.
func (r *AssemblyRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Assembly, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	db := r.getDB(ctx)
	var row models.Assembly
	err = db.Preload("Items", func(q *gorm.DB) *gorm.DB {
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

// ByIDWithItems retrieves an assembly with its line items preloaded in position order.
func (r *AssemblyRepositoryImpl) ByIDWithItems(ctx context.Context, id uint) (*models.Assembly, error) {
	db := r.getDB(ctx)
	var row models.Assembly
	err := db.Preload("Items", func(q *gorm.DB) *gorm.DB {
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

// ListByCompany lists assemblies for a company with pagination.
func (r *AssemblyRepositoryImpl) ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.Assembly, error) {
	return r.ByFilter(ctx, models.AssemblyFilter{CompanyID: &companyID}, "name ASC", limit, offset)
}

// ListByIDsWithItems retrieves assemblies by ID with items preloaded.
func (r *AssemblyRepositoryImpl) ListByIDsWithItems(ctx context.Context, ids []uint) ([]*models.Assembly, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := r.getDB(ctx)
	var rows []*models.Assembly
	err := db.Preload("Items", func(q *gorm.DB) *gorm.DB {
		return q.Order("position ASC")
	}).Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplaceItems swaps the full item list of an assembly in one transaction.
func (r *AssemblyRepositoryImpl) ReplaceItems(ctx context.Context, assemblyID uint, items []*models.AssemblyItem) error {
	return WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		db := r.getDB(txCtx)

		if err := db.Where("assembly_id = ?", assemblyID).Delete(&models.AssemblyItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete assembly items: %w", err)
		}

		for i, item := range items {
			item.AssemblyID = assemblyID
			item.Position = i
		}
		if len(items) > 0 {
			if err := db.CreateInBatches(items, 100).Error; err != nil {
				return fmt.Errorf("failed to insert assembly items: %w", err)
			}
		}
		return nil
	})
}

// SetRuleLockedJobType records or clears the job type locked by an admin rule.
func (r *AssemblyRepositoryImpl) SetRuleLockedJobType(ctx context.Context, assemblyID uint, jobTypeID *uint) error {
	db := r.getDB(ctx)
	res := db.Model(&models.Assembly{}).
		Where("id = ?", assemblyID).
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
func (r *AssemblyRepositoryImpl) applyFilter(query *gorm.DB, filter models.AssemblyFilter) *gorm.DB {
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
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves assemblies based on filter criteria.
func (r *AssemblyRepositoryImpl) ByFilter(ctx context.Context, filter models.AssemblyFilter, orderBy string, limit, offset int) ([]*models.Assembly, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Assembly{})

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

	var rows []*models.Assembly
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of assemblies matching filter.
func (r *AssemblyRepositoryImpl) Count(ctx context.Context, filter models.AssemblyFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Assembly{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any assemblies match the filter.
func (r *AssemblyRepositoryImpl) Exists(ctx context.Context, filter models.AssemblyFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
