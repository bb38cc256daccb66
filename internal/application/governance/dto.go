package governance

import (
	"time"

	"github.com/chapterhub/backend/internal/domain/chapter"
	"github.com/google/uuid"
)

// ConflictPolicy decides what happens when adding or transitioning into an
// exclusive role that already has an active holder. The default is to warn
// and allow: governance handovers sometimes need temporary dual-holding, so
// the conflict is surfaced for explicit resolution instead of blocking.
type ConflictPolicy string

const (
	PolicyWarn   ConflictPolicy = "warn"
	PolicyReject ConflictPolicy = "reject"
)

// BulkAction is the operation applied to every selected assignment
type BulkAction string

const (
	BulkActionDeactivate BulkAction = "deactivate"
	BulkActionRemove     BulkAction = "remove"
)

// AddAssignmentRequest represents a request to appoint a volunteer
type AddAssignmentRequest struct {
	ChapterID     uuid.UUID  `json:"chapter_id" binding:"required"`
	VolunteerID   uuid.UUID  `json:"volunteer_id" binding:"required"`
	VolunteerName string     `json:"volunteer_name"` // Fallback display name when lookup fails
	RoleID        uuid.UUID  `json:"role_id" binding:"required"`
	FromDate      time.Time  `json:"from_date" binding:"required"`
	ToDate        *time.Time `json:"to_date"`
}

// ConflictInfo reports an exclusive-role collision to the caller, who may
// resolve it by deactivating the existing holder or leave it standing
type ConflictInfo struct {
	RoleID       uuid.UUID `json:"role_id"`
	RoleName     string    `json:"role_name"`
	AssignmentID uuid.UUID `json:"assignment_id"`
	HolderName   string    `json:"holder_name"`
	Count        int       `json:"count"`
}

// AddAssignmentResult carries the created assignment plus any non-blocking
// warning and conflict report
type AddAssignmentResult struct {
	AssignmentID uuid.UUID     `json:"assignment_id"`
	Warning      string        `json:"warning,omitempty"`
	Conflict     *ConflictInfo `json:"conflict,omitempty"`
}

// ResolveConflictRequest asks the engine to retire the existing holders of
// an exclusive role in favor of the assignment identified by KeepID
type ResolveConflictRequest struct {
	ChapterID uuid.UUID `json:"chapter_id" binding:"required"`
	RoleID    uuid.UUID `json:"role_id" binding:"required"`
	KeepID    uuid.UUID `json:"keep_id" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// ResolveConflictResult lists the assignments retired by the resolution
type ResolveConflictResult struct {
	DeactivatedIDs []uuid.UUID `json:"deactivated_ids"`
}

// TransitionRequest represents a role succession request
type TransitionRequest struct {
	ChapterID      uuid.UUID `json:"chapter_id" binding:"required"`
	VolunteerID    uuid.UUID `json:"volunteer_id" binding:"required"`
	VolunteerName  string    `json:"volunteer_name"`
	NewRoleID      uuid.UUID `json:"new_role_id" binding:"required"`
	TransitionDate time.Time `json:"transition_date" binding:"required"`
}

// TransitionResult carries the resulting active assignment. AlreadyDone is
// true when a retry found the transition already applied.
type TransitionResult struct {
	AssignmentID uuid.UUID     `json:"assignment_id"`
	AlreadyDone  bool          `json:"already_done"`
	Warning      string        `json:"warning,omitempty"`
	Conflict     *ConflictInfo `json:"conflict,omitempty"`
}

// DeactivateRequest retires a single assignment
type DeactivateRequest struct {
	ChapterID    uuid.UUID `json:"chapter_id" binding:"required"`
	AssignmentID uuid.UUID `json:"assignment_id" binding:"required"`
	EndDate      time.Time `json:"end_date" binding:"required"`
	Reason       string    `json:"reason"`
}

// EditDatesRequest edits an assignment's term dates. A nil field is left
// unchanged; inverted dates are clamped with a warning, never rejected.
type EditDatesRequest struct {
	ChapterID    uuid.UUID  `json:"chapter_id" binding:"required"`
	AssignmentID uuid.UUID  `json:"assignment_id" binding:"required"`
	FromDate     *time.Time `json:"from_date"`
	ToDate       *time.Time `json:"to_date"`
	ClearToDate  bool       `json:"clear_to_date"`
}

// EditDatesResult carries the clamp warnings, if any
type EditDatesResult struct {
	Warnings []string `json:"warnings,omitempty"`
}

// BulkRequest applies one action to a set of assignments
type BulkRequest struct {
	ChapterID     uuid.UUID   `json:"chapter_id" binding:"required"`
	AssignmentIDs []uuid.UUID `json:"assignment_ids" binding:"required"`
	Action        BulkAction  `json:"action" binding:"required,oneof=deactivate remove"`
	EndDate       time.Time   `json:"end_date" binding:"required"`
	Reason        string      `json:"reason"`
}

// BulkFailure records one failed item of a bulk operation
type BulkFailure struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	Error        string    `json:"error"`
}

// BulkResult aggregates a bulk operation's outcome. Per-item failures never
// abort the siblings, so both counts are always reported.
type BulkResult struct {
	ProcessedCount int           `json:"processed_count"`
	Failures       []BulkFailure `json:"failures"`
}

// AssignmentResponse represents a board assignment in API responses
type AssignmentResponse struct {
	ID            uuid.UUID  `json:"id"`
	ChapterID     uuid.UUID  `json:"chapter_id"`
	VolunteerID   uuid.UUID  `json:"volunteer_id"`
	VolunteerName string     `json:"volunteer_name"`
	Email         string     `json:"email,omitempty"`
	MemberID      *uuid.UUID `json:"member_id,omitempty"`
	RoleID        uuid.UUID  `json:"role_id"`
	RoleName      string     `json:"role_name"`
	FromDate      time.Time  `json:"from_date"`
	ToDate        *time.Time `json:"to_date,omitempty"`
	IsActive      bool       `json:"is_active"`
	Notes         string     `json:"notes,omitempty"`
}

// ToAssignmentResponse converts a domain assignment to a response
func ToAssignmentResponse(a *chapter.BoardAssignment) AssignmentResponse {
	return AssignmentResponse{
		ID:            a.ID,
		ChapterID:     a.ChapterID,
		VolunteerID:   a.VolunteerID,
		VolunteerName: a.VolunteerName,
		Email:         a.Email,
		MemberID:      a.MemberID,
		RoleID:        a.RoleID,
		RoleName:      a.RoleName,
		FromDate:      a.FromDate,
		ToDate:        a.ToDate,
		IsActive:      a.IsActive,
		Notes:         a.Notes,
	}
}

// ToAssignmentResponses converts a slice of domain assignments
func ToAssignmentResponses(assignments []*chapter.BoardAssignment) []AssignmentResponse {
	result := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		result = append(result, ToAssignmentResponse(a))
	}
	return result
}

func toConflictInfo(c *chapter.RoleConflict) *ConflictInfo {
	if c == nil {
		return nil
	}
	return &ConflictInfo{
		RoleID:       c.RoleID,
		RoleName:     c.RoleName,
		AssignmentID: c.AssignmentID,
		HolderName:   c.HolderName,
		Count:        c.Count,
	}
}
