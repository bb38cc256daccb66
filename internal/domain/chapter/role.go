package chapter

import (
	"github.com/chapterhub/backend/internal/domain/shared"
)

// PermissionLevel represents the access level a chapter role grants
type PermissionLevel string

const (
	PermissionLevelBasic     PermissionLevel = "basic"
	PermissionLevelFinancial PermissionLevel = "financial" // May view member payment data
	PermissionLevelAdmin     PermissionLevel = "admin"
)

// ChapterRole represents a named governance position within a chapter.
// It is referenced, not owned, by board assignments.
type ChapterRole struct {
	shared.BaseEntity
	Name            string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	IsExclusive     bool            `gorm:"not null;default:false"` // At most one active holder chapter-wide
	IsChair         bool            `gorm:"not null;default:false"` // Holder becomes the chapter's nominal head
	PermissionLevel PermissionLevel `gorm:"type:varchar(20);not null;default:'basic'"`
	IsActive        bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ChapterRole) TableName() string {
	return "chapter_roles"
}

// NewChapterRole creates a new chapter role
func NewChapterRole(name string, exclusive, chair bool, level PermissionLevel) (*ChapterRole, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Role name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Role name cannot exceed 100 characters")
	}
	if err := validatePermissionLevel(level); err != nil {
		return nil, err
	}

	return &ChapterRole{
		BaseEntity:      shared.NewBaseEntity(),
		Name:            name,
		IsExclusive:     exclusive,
		IsChair:         chair,
		PermissionLevel: level,
		IsActive:        true,
	}, nil
}

// HasFinancialAccess returns true if holders of this role may view payment data
func (r *ChapterRole) HasFinancialAccess() bool {
	return r.PermissionLevel == PermissionLevelFinancial || r.PermissionLevel == PermissionLevelAdmin
}

// Deactivate retires the role so it can no longer be assigned
func (r *ChapterRole) Deactivate() error {
	if !r.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Role is already inactive")
	}
	r.IsActive = false
	return nil
}

func validatePermissionLevel(level PermissionLevel) error {
	switch level {
	case PermissionLevelBasic, PermissionLevelFinancial, PermissionLevelAdmin:
		return nil
	default:
		return shared.NewDomainError("INVALID_PERMISSION_LEVEL", "Permission level must be 'basic', 'financial' or 'admin'")
	}
}
