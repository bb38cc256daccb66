package persistence

import (
	"context"
	"errors"

	"github.com/chapterhub/backend/internal/domain/chapter"
	"github.com/chapterhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormChapterRoleRepository implements ChapterRoleRepository using GORM
type GormChapterRoleRepository struct {
	db *gorm.DB
}

// NewGormChapterRoleRepository creates a new GormChapterRoleRepository
func NewGormChapterRoleRepository(db *gorm.DB) *GormChapterRoleRepository {
	return &GormChapterRoleRepository{db: db}
}

// FindByID finds a role by its ID
func (r *GormChapterRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*chapter.ChapterRole, error) {
	var role chapter.ChapterRole
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// FindByIDs finds multiple roles, keyed by ID. Unknown IDs are absent from
// the result rather than an error.
func (r *GormChapterRoleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*chapter.ChapterRole, error) {
	result := make(map[uuid.UUID]*chapter.ChapterRole, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var roles []chapter.ChapterRole
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&roles).Error; err != nil {
		return nil, err
	}
	for i := range roles {
		result[roles[i].ID] = &roles[i]
	}
	return result, nil
}

// FindByName finds a role by its unique name
func (r *GormChapterRoleRepository) FindByName(ctx context.Context, name string) (*chapter.ChapterRole, error) {
	var role chapter.ChapterRole
	if err := r.db.WithContext(ctx).First(&role, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// FindAll finds all roles matching the filter
func (r *GormChapterRoleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]chapter.ChapterRole, error) {
	var roles []chapter.ChapterRole
	query := applyFilter(r.db.WithContext(ctx).Model(&chapter.ChapterRole{}), filter)
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if err := query.Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// FindActive finds all active roles
func (r *GormChapterRoleRepository) FindActive(ctx context.Context) ([]chapter.ChapterRole, error) {
	var roles []chapter.ChapterRole
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name asc").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Save creates or updates a role
func (r *GormChapterRoleRepository) Save(ctx context.Context, role *chapter.ChapterRole) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(role).Error
}

// Delete deletes a role
func (r *GormChapterRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&chapter.ChapterRole{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormChapterRoleRepository implements ChapterRoleRepository
var _ chapter.ChapterRoleRepository = (*GormChapterRoleRepository)(nil)
