package governance

import (
	"context"
	"time"

	"github.com/chapterhub/backend/internal/domain/chapter"
	"github.com/chapterhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateRoleRequest represents a request to create a board role
type CreateRoleRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=100"`
	IsExclusive     bool   `json:"is_exclusive"`
	IsChair         bool   `json:"is_chair"`
	PermissionLevel string `json:"permission_level" binding:"required,oneof=basic financial admin"`
}

// RoleResponse represents a board role in API responses
type RoleResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	IsExclusive     bool      `json:"is_exclusive"`
	IsChair         bool      `json:"is_chair"`
	PermissionLevel string    `json:"permission_level"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToRoleResponse converts a domain role to a response
func ToRoleResponse(r *chapter.ChapterRole) RoleResponse {
	return RoleResponse{
		ID:              r.ID,
		Name:            r.Name,
		IsExclusive:     r.IsExclusive,
		IsChair:         r.IsChair,
		PermissionLevel: string(r.PermissionLevel),
		IsActive:        r.IsActive,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// RoleService manages the board role catalog
type RoleService struct {
	roleRepo chapter.ChapterRoleRepository
	logger   *zap.Logger
}

// NewRoleService creates a new RoleService
func NewRoleService(roleRepo chapter.ChapterRoleRepository, logger *zap.Logger) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
		logger:   logger,
	}
}

// Create creates a new board role. The name must be unique.
func (s *RoleService) Create(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error) {
	if existing, err := s.roleRepo.FindByName(ctx, req.Name); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Role with name "+req.Name+" already exists")
	}

	role, err := chapter.NewChapterRole(req.Name, req.IsExclusive, req.IsChair, chapter.PermissionLevel(req.PermissionLevel))
	if err != nil {
		return nil, err
	}
	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}

	resp := ToRoleResponse(role)
	return &resp, nil
}

// GetByID returns a role by ID
func (s *RoleService) GetByID(ctx context.Context, id uuid.UUID) (*RoleResponse, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToRoleResponse(role)
	return &resp, nil
}

// ListActive returns the active roles, the set offered when appointing
func (s *RoleService) ListActive(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.roleRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		items = append(items, ToRoleResponse(&roles[i]))
	}
	return items, nil
}

// Deactivate retires a role from the catalog. Existing assignments keep the
// role; it is only removed from the appointment choices.
func (s *RoleService) Deactivate(ctx context.Context, id uuid.UUID) error {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := role.Deactivate(); err != nil {
		return err
	}
	return s.roleRepo.Save(ctx, role)
}
