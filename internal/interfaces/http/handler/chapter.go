package handler

import (
	"github.com/chapterhub/backend/internal/application/governance"
	"github.com/chapterhub/backend/internal/domain/shared"
	"github.com/chapterhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ChapterHandler handles the chapter directory endpoints
type ChapterHandler struct {
	BaseHandler
	chapterService *governance.ChapterService
}

// NewChapterHandler creates a new ChapterHandler
func NewChapterHandler(chapterService *governance.ChapterService) *ChapterHandler {
	return &ChapterHandler{chapterService: chapterService}
}

// RegisterRoutes registers the chapter directory routes
func (h *ChapterHandler) RegisterRoutes(rg *gin.RouterGroup) {
	chapters := rg.Group("/chapters")
	chapters.POST("", h.Create)
	chapters.GET("", h.List)
	chapters.GET("/:id", h.GetByID)
	chapters.DELETE("/:id", h.Delete)
}

// Create creates a new chapter
func (h *ChapterHandler) Create(c *gin.Context) {
	var req governance.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.chapterService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// List returns chapters, optionally scoped to a region
func (h *ChapterHandler) List(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BindingError(c, err)
		return
	}
	if listReq.Page == 0 {
		listReq.Page = 1
	}
	if listReq.PageSize == 0 {
		listReq.PageSize = 20
	}

	filter := shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
		Search:   listReq.Search,
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}

	result, err := h.chapterService.List(c.Request.Context(), c.Query("region"), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID returns a chapter by ID
func (h *ChapterHandler) GetByID(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid chapter ID")
		return
	}

	result, err := h.chapterService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete deletes a chapter and its board assignments
func (h *ChapterHandler) Delete(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid chapter ID")
		return
	}

	if err := h.chapterService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
