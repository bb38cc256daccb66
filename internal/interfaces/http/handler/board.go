package handler

import (
	"time"

	"github.com/chapterhub/backend/internal/application/governance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BoardHandler handles board governance endpoints: appointments, conflict
// resolution, succession, term edits, bulk operations and the selection set
type BoardHandler struct {
	BaseHandler
	boardService *governance.BoardService
	bulkService  *governance.BulkService
	selection    *governance.SelectionTracker
}

// NewBoardHandler creates a new BoardHandler
func NewBoardHandler(boardService *governance.BoardService, bulkService *governance.BulkService, selection *governance.SelectionTracker) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		bulkService:  bulkService,
		selection:    selection,
	}
}

// AddAssignmentRequest represents a request to appoint a volunteer
type AddAssignmentRequest struct {
	VolunteerID   uuid.UUID  `json:"volunteer_id" binding:"required"`
	VolunteerName string     `json:"volunteer_name" binding:"max=200"`
	RoleID        uuid.UUID  `json:"role_id" binding:"required"`
	FromDate      time.Time  `json:"from_date" binding:"required"`
	ToDate        *time.Time `json:"to_date"`
}

// ResolveConflictRequest asks to retire the other holders of an exclusive
// role in favor of the assignment identified by keep_id
type ResolveConflictRequest struct {
	RoleID  uuid.UUID `json:"role_id" binding:"required"`
	KeepID  uuid.UUID `json:"keep_id" binding:"required"`
	EndDate time.Time `json:"end_date" binding:"required"`
}

// TransitionRequest represents a role succession request
type TransitionRequest struct {
	VolunteerID    uuid.UUID `json:"volunteer_id" binding:"required"`
	VolunteerName  string    `json:"volunteer_name" binding:"max=200"`
	NewRoleID      uuid.UUID `json:"new_role_id" binding:"required"`
	TransitionDate time.Time `json:"transition_date" binding:"required"`
}

// EndAssignmentRequest carries the end date and reason for a deactivation
// or removal
type EndAssignmentRequest struct {
	EndDate time.Time `json:"end_date" binding:"required"`
	Reason  string    `json:"reason" binding:"max=500"`
}

// EditDatesRequest edits an assignment's term dates
type EditDatesRequest struct {
	FromDate    *time.Time `json:"from_date"`
	ToDate      *time.Time `json:"to_date"`
	ClearToDate bool       `json:"clear_to_date"`
}

// BulkRequest applies one action to an explicit set of assignments
type BulkRequest struct {
	AssignmentIDs []uuid.UUID `json:"assignment_ids" binding:"required,min=1"`
	Action        string      `json:"action" binding:"required,oneof=deactivate remove"`
	EndDate       time.Time   `json:"end_date" binding:"required"`
	Reason        string      `json:"reason" binding:"max=500"`
}

// ProcessSelectedRequest applies one action to the current selection
type ProcessSelectedRequest struct {
	Action  string    `json:"action" binding:"required,oneof=deactivate remove"`
	EndDate time.Time `json:"end_date" binding:"required"`
	Reason  string    `json:"reason" binding:"max=500"`
}

// SelectionResponse reports the current selection
type SelectionResponse struct {
	Selected []uuid.UUID `json:"selected"`
	Count    int         `json:"count"`
}

// RegisterRoutes registers the board governance routes
func (h *BoardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	board := rg.Group("/chapters/:id/board")

	board.GET("/assignments", h.ListMembers)
	board.POST("/assignments", h.AddAssignment)
	board.POST("/assignments/:assignmentId/deactivate", h.DeactivateAssignment)
	board.POST("/assignments/:assignmentId/remove", h.RemoveAssignment)
	board.PUT("/assignments/:assignmentId/dates", h.EditDates)
	board.GET("/summary", h.GetSummary)
	board.POST("/conflicts/resolve", h.ResolveConflict)
	board.POST("/transitions", h.TransitionRole)
	board.POST("/bulk", h.ProcessBulk)

	board.GET("/selection", h.GetSelection)
	board.PUT("/selection/:assignmentId", h.Select)
	board.DELETE("/selection/:assignmentId", h.Deselect)
	board.POST("/selection/all-active", h.SelectAllActive)
	board.DELETE("/selection", h.ClearSelection)
	board.POST("/selection/process", h.ProcessSelected)
}

// AddAssignment appoints a volunteer to a board role
func (h *BoardHandler) AddAssignment(c *gin.Context) {
	chapterID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid chapter ID")
		return
	}

	var req AddAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.boardService.AddAssignment(c.Request.Context(), governance.AddAssignmentRequest{
		ChapterID:     chapterID,
		VolunteerID:   req.VolunteerID,
		VolunteerName: req.VolunteerName,
		RoleID:        req.RoleID,
		FromDate:      req.FromDate,
		ToDate:        req.ToDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListMembers returns board assignments, optionally including inactive ones
// or scoped to one role
func (h *BoardHandler) ListMembers(c *gin.Context) {
	chapterID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid chapter ID")
		return
	}

	includeInactive := c.Query("include_inactive") == "true"
	var roleID *uuid.UUID
	if raw := c.Query("role_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid role ID")
			return
		}
		roleID = &id
	}

	members, err := h.boardService.GetBoardMembers(c.Request.Context(), chapterID, includeInactive, roleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, members)
}

// GetSummary returns the board status summary
func (h *BoardHandler) GetSummary(c *gin.Context) {
	chapterID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid chapter ID")
		return
	}

	summary, err := h.boardService.GetSummary(c.Request.Context(), chapterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// ResolveConflict retires the other holders of an exclusive role
func (h *BoardHandler) ResolveConflict(c *gin.Context) {
	chapterID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid chapter ID")
		return
	}

	var req ResolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.boardService.ResolveConflict(c.Request.Context(), governance.ResolveConflictRequest{
		ChapterID: chapterID,
		RoleID:    req.RoleID,
		KeepID:    req.KeepID,
		EndDate:   req.EndDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// TransitionRole performs role succession for a volunteer
func (h *BoardHandler) TransitionRole(c *gin.Context) {
	chapterID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid chapter ID")
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.boardService.TransitionRole(c.Request.Context(), governance.TransitionRequest{
		ChapterID:      chapterID,
		VolunteerID:    req.VolunteerID,
		VolunteerName:  req.VolunteerName,
		NewRoleID:      req.NewRoleID,
		TransitionDate: req.TransitionDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DeactivateAssignment retires a single assignment
func (h *BoardHandler) DeactivateAssignment(c *gin.Context) {
	chapterID, assignmentID, ok := h.boardIDs(c)
	if !ok {
		return
	}

	var req EndAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	err := h.boardService.DeactivateAssignment(c.Request.Context(), governance.DeactivateRequest{
		ChapterID:    chapterID,
		AssignmentID: assignmentID,
		EndDate:      req.EndDate,
		Reason:       req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RemoveAssignment deletes the assignment row outright
func (h *BoardHandler) RemoveAssignment(c *gin.Context) {
	chapterID, assignmentID, ok := h.boardIDs(c)
	if !ok {
		return
	}

	var req EndAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	err := h.boardService.RemoveAssignment(c.Request.Context(), governance.DeactivateRequest{
		ChapterID:    chapterID,
		AssignmentID: assignmentID,
		EndDate:      req.EndDate,
		Reason:       req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// EditDates edits an assignment's term dates
func (h *BoardHandler) EditDates(c *gin.Context) {
	chapterID, assignmentID, ok := h.boardIDs(c)
	if !ok {
		return
	}

	var req EditDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.boardService.EditDates(c.Request.Context(), governance.EditDatesRequest{
		ChapterID:    chapterID,
		AssignmentID: assignmentID,
		FromDate:     req.FromDate,
		ToDate:       req.ToDate,
		ClearToDate:  req.ClearToDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ProcessBulk applies one action to an explicit set of assignments
func (h *BoardHandler) ProcessBulk(c *gin.Context) {
	chapterID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid chapter ID")
		return
	}

	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.bulkService.ProcessBulk(c.Request.Context(), governance.BulkRequest{
		ChapterID:     chapterID,
		AssignmentIDs: req.AssignmentIDs,
		Action:        governance.BulkAction(req.Action),
		EndDate:       req.EndDate,
		Reason:        req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetSelection returns the current selection
func (h *BoardHandler) GetSelection(c *gin.Context) {
	h.Success(c, SelectionResponse{
		Selected: h.selection.Selected(),
		Count:    h.selection.Count(),
	})
}

// Select adds an assignment to the selection
func (h *BoardHandler) Select(c *gin.Context) {
	assignmentID, err := parseUUIDParam(c, "assignmentId")
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID")
		return
	}
	h.selection.Select(assignmentID)
	h.NoContent(c)
}

// Deselect removes an assignment from the selection
func (h *BoardHandler) Deselect(c *gin.Context) {
	assignmentID, err := parseUUIDParam(c, "assignmentId")
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID")
		return
	}
	h.selection.Deselect(assignmentID)
	h.NoContent(c)
}

// SelectAllActive replaces the selection with every active assignment
func (h *BoardHandler) SelectAllActive(c *gin.Context) {
	chapterID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid chapter ID")
		return
	}

	active, err := h.boardService.GetActiveAssignments(c.Request.Context(), chapterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.selection.Clear()
	for _, a := range active {
		h.selection.Select(a.ID)
	}

	h.Success(c, SelectionResponse{
		Selected: h.selection.Selected(),
		Count:    h.selection.Count(),
	})
}

// ClearSelection empties the selection
func (h *BoardHandler) ClearSelection(c *gin.Context) {
	h.selection.Clear()
	h.NoContent(c)
}

// ProcessSelected applies one action to the current selection
func (h *BoardHandler) ProcessSelected(c *gin.Context) {
	chapterID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid chapter ID")
		return
	}

	var req ProcessSelectedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.bulkService.ProcessSelected(c.Request.Context(), chapterID, governance.BulkAction(req.Action), req.EndDate, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// boardIDs parses the chapter and assignment path parameters
func (h *BoardHandler) boardIDs(c *gin.Context) (chapterID, assignmentID uuid.UUID, ok bool) {
	chapterID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid chapter ID")
		return uuid.Nil, uuid.Nil, false
	}
	assignmentID, err = parseUUIDParam(c, "assignmentId")
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID")
		return uuid.Nil, uuid.Nil, false
	}
	return chapterID, assignmentID, true
}
