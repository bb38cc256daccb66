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

// GormChapterRepository implements ChapterRepository using GORM.
// The chapter is saved as a whole document: board assignments are upserted
// with it and rows removed from the aggregate are deleted.
type GormChapterRepository struct {
	db *gorm.DB
}

// NewGormChapterRepository creates a new GormChapterRepository
func NewGormChapterRepository(db *gorm.DB) *GormChapterRepository {
	return &GormChapterRepository{db: db}
}

// FindByID finds a chapter by its ID with board assignments loaded
func (r *GormChapterRepository) FindByID(ctx context.Context, id uuid.UUID) (*chapter.Chapter, error) {
	var c chapter.Chapter
	if err := r.db.WithContext(ctx).
		Preload("BoardAssignments").
		First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByName finds a chapter by its unique name
func (r *GormChapterRepository) FindByName(ctx context.Context, name string) (*chapter.Chapter, error) {
	var c chapter.Chapter
	if err := r.db.WithContext(ctx).
		Preload("BoardAssignments").
		First(&c, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAll finds all chapters matching the filter
func (r *GormChapterRepository) FindAll(ctx context.Context, filter shared.Filter) ([]chapter.Chapter, error) {
	var chapters []chapter.Chapter
	query := applyFilter(r.db.WithContext(ctx).Model(&chapter.Chapter{}), filter)
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if err := query.Find(&chapters).Error; err != nil {
		return nil, err
	}
	return chapters, nil
}

// FindByRegion finds chapters within a region
func (r *GormChapterRepository) FindByRegion(ctx context.Context, region string, filter shared.Filter) ([]chapter.Chapter, error) {
	var chapters []chapter.Chapter
	query := applyFilter(r.db.WithContext(ctx).Model(&chapter.Chapter{}).Where("region = ?", region), filter)
	if err := query.Find(&chapters).Error; err != nil {
		return nil, err
	}
	return chapters, nil
}

// Save creates or updates a chapter and its board assignments. Assignments
// no longer present on the aggregate are deleted, so a removed board row
// disappears with the same save.
func (r *GormChapterRepository) Save(ctx context.Context, c *chapter.Chapter) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("BoardAssignments").
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(c).Error; err != nil {
			return err
		}

		keep := make([]uuid.UUID, 0, len(c.BoardAssignments))
		for i := range c.BoardAssignments {
			keep = append(keep, c.BoardAssignments[i].ID)
		}

		deleteQuery := tx.Where("chapter_id = ?", c.ID)
		if len(keep) > 0 {
			deleteQuery = deleteQuery.Where("id NOT IN ?", keep)
		}
		if err := deleteQuery.Delete(&chapter.BoardAssignment{}).Error; err != nil {
			return err
		}

		for i := range c.BoardAssignments {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).
				Create(&c.BoardAssignments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a chapter and its board assignments
func (r *GormChapterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chapter_id = ?", id).Delete(&chapter.BoardAssignment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&chapter.Chapter{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts chapters matching the filter
func (r *GormChapterRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&chapter.Chapter{})
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if region, ok := filter.Filters["region"]; ok {
		query = query.Where("region = ?", region)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies pagination and ordering to a query
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.OrderBy != "" {
		dir := "asc"
		if filter.OrderDir == "desc" {
			dir = "desc"
		}
		query = query.Order(filter.OrderBy + " " + dir)
	}
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 1 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}
	return query
}

// Ensure GormChapterRepository implements ChapterRepository
var _ chapter.ChapterRepository = (*GormChapterRepository)(nil)
