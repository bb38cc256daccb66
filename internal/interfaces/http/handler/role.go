package handler

import (
	"github.com/chapterhub/backend/internal/application/governance"
	"github.com/gin-gonic/gin"
)

// RoleHandler handles the board role catalog endpoints
type RoleHandler struct {
	BaseHandler
	roleService *governance.RoleService
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(roleService *governance.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// RegisterRoutes registers the role catalog routes
func (h *RoleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	roles := rg.Group("/roles")
	roles.POST("", h.Create)
	roles.GET("", h.ListActive)
	roles.GET("/:id", h.GetByID)
	roles.POST("/:id/deactivate", h.Deactivate)
}

// Create creates a new board role
func (h *RoleHandler) Create(c *gin.Context) {
	var req governance.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.roleService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListActive returns the active roles
func (h *RoleHandler) ListActive(c *gin.Context) {
	result, err := h.roleService.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID returns a role by ID
func (h *RoleHandler) GetByID(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid role ID")
		return
	}

	result, err := h.roleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Deactivate retires a role from the catalog
func (h *RoleHandler) Deactivate(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid role ID")
		return
	}

	if err := h.roleService.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
