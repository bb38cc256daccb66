package chapter

import (
	"context"

	"github.com/chapterhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ChapterRepository defines the interface for chapter persistence.
// Save persists the whole aggregate, board assignments included: the
// assignment list is a child of the chapter document.
type ChapterRepository interface {
	// FindByID finds a chapter by its ID, board assignments loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Chapter, error)

	// FindByName finds a chapter by its unique name
	FindByName(ctx context.Context, name string) (*Chapter, error)

	// FindAll finds all chapters matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Chapter, error)

	// FindByRegion finds chapters within a region
	FindByRegion(ctx context.Context, region string, filter shared.Filter) ([]Chapter, error)

	// Save creates or updates a chapter and its board assignments
	Save(ctx context.Context, chapter *Chapter) error

	// Delete deletes a chapter and its board assignments
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts chapters matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// ChapterRoleRepository defines the interface for role metadata lookup
type ChapterRoleRepository interface {
	// FindByID finds a role by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ChapterRole, error)

	// FindByIDs finds multiple roles, keyed by ID
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ChapterRole, error)

	// FindByName finds a role by its unique name
	FindByName(ctx context.Context, name string) (*ChapterRole, error)

	// FindAll finds all roles matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]ChapterRole, error)

	// FindActive finds all active roles
	FindActive(ctx context.Context) ([]ChapterRole, error)

	// Save creates or updates a role
	Save(ctx context.Context, role *ChapterRole) error

	// Delete deletes a role
	Delete(ctx context.Context, id uuid.UUID) error
}
