package chapter

import (
	"time"

	"github.com/chapterhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeChapter = "Chapter"

// Event type constants. This is a closed set: every board governance event
// is one of these, and consumers dispatch with an exhaustive type switch
// rather than comparing free-form strings.
const (
	EventTypeAssignmentAdded        = "AssignmentAdded"
	EventTypeAssignmentTransitioned = "AssignmentTransitioned"
	EventTypeAssignmentDeactivated  = "AssignmentDeactivated"
	EventTypeAssignmentRemoved      = "AssignmentRemoved"
	EventTypeBulkProcessed          = "BulkProcessed"
	EventTypeChapterHeadChanged     = "ChapterHeadChanged"
)

// AllEventTypes lists every board governance event type, in one place so
// wildcard-style subscribers can register without string literals.
func AllEventTypes() []string {
	return []string{
		EventTypeAssignmentAdded,
		EventTypeAssignmentTransitioned,
		EventTypeAssignmentDeactivated,
		EventTypeAssignmentRemoved,
		EventTypeBulkProcessed,
		EventTypeChapterHeadChanged,
	}
}

// AssignmentAddedEvent is published when a volunteer is assigned to a role
type AssignmentAddedEvent struct {
	shared.BaseDomainEvent
	AssignmentID  uuid.UUID  `json:"assignment_id"`
	VolunteerID   uuid.UUID  `json:"volunteer_id"`
	VolunteerName string     `json:"volunteer_name"`
	RoleID        uuid.UUID  `json:"role_id"`
	RoleName      string     `json:"role_name"`
	FromDate      time.Time  `json:"from_date"`
	ToDate        *time.Time `json:"to_date,omitempty"`
}

// NewAssignmentAddedEvent creates a new AssignmentAddedEvent
func NewAssignmentAddedEvent(chapterID uuid.UUID, a *BoardAssignment) *AssignmentAddedEvent {
	return &AssignmentAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentAdded, AggregateTypeChapter, chapterID),
		AssignmentID:    a.ID,
		VolunteerID:     a.VolunteerID,
		VolunteerName:   a.VolunteerName,
		RoleID:          a.RoleID,
		RoleName:        a.RoleName,
		FromDate:        a.FromDate,
		ToDate:          a.ToDate,
	}
}

// AssignmentTransitionedEvent is published when a role succession completes
type AssignmentTransitionedEvent struct {
	shared.BaseDomainEvent
	NewAssignmentID   uuid.UUID  `json:"new_assignment_id"`
	PriorAssignmentID *uuid.UUID `json:"prior_assignment_id,omitempty"`
	VolunteerID       uuid.UUID  `json:"volunteer_id"`
	VolunteerName     string     `json:"volunteer_name"`
	OldRoleName       string     `json:"old_role_name,omitempty"`
	NewRoleName       string     `json:"new_role_name"`
	TransitionDate    time.Time  `json:"transition_date"`
}

// NewAssignmentTransitionedEvent creates a new AssignmentTransitionedEvent
func NewAssignmentTransitionedEvent(chapterID uuid.UUID, created *BoardAssignment, prior *BoardAssignment, date time.Time) *AssignmentTransitionedEvent {
	e := &AssignmentTransitionedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentTransitioned, AggregateTypeChapter, chapterID),
		NewAssignmentID: created.ID,
		VolunteerID:     created.VolunteerID,
		VolunteerName:   created.VolunteerName,
		NewRoleName:     created.RoleName,
		TransitionDate:  date,
	}
	if prior != nil {
		id := prior.ID
		e.PriorAssignmentID = &id
		e.OldRoleName = prior.RoleName
	}
	return e
}

// AssignmentDeactivatedEvent is published when an assignment is retired
type AssignmentDeactivatedEvent struct {
	shared.BaseDomainEvent
	AssignmentID  uuid.UUID `json:"assignment_id"`
	VolunteerID   uuid.UUID `json:"volunteer_id"`
	VolunteerName string    `json:"volunteer_name"`
	RoleName      string    `json:"role_name"`
	EndDate       time.Time `json:"end_date"`
	Reason        string    `json:"reason,omitempty"`
}

// NewAssignmentDeactivatedEvent creates a new AssignmentDeactivatedEvent
func NewAssignmentDeactivatedEvent(chapterID uuid.UUID, a *BoardAssignment, endDate time.Time, reason string) *AssignmentDeactivatedEvent {
	return &AssignmentDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentDeactivated, AggregateTypeChapter, chapterID),
		AssignmentID:    a.ID,
		VolunteerID:     a.VolunteerID,
		VolunteerName:   a.VolunteerName,
		RoleName:        a.RoleName,
		EndDate:         endDate,
		Reason:          reason,
	}
}

// AssignmentRemovedEvent is published when an assignment row is deleted
type AssignmentRemovedEvent struct {
	shared.BaseDomainEvent
	AssignmentID  uuid.UUID `json:"assignment_id"`
	VolunteerID   uuid.UUID `json:"volunteer_id"`
	VolunteerName string    `json:"volunteer_name"`
	RoleName      string    `json:"role_name"`
	EndDate       time.Time `json:"end_date"`
	Reason        string    `json:"reason,omitempty"`
}

// NewAssignmentRemovedEvent creates a new AssignmentRemovedEvent
func NewAssignmentRemovedEvent(chapterID uuid.UUID, a *BoardAssignment, endDate time.Time, reason string) *AssignmentRemovedEvent {
	return &AssignmentRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentRemoved, AggregateTypeChapter, chapterID),
		AssignmentID:    a.ID,
		VolunteerID:     a.VolunteerID,
		VolunteerName:   a.VolunteerName,
		RoleName:        a.RoleName,
		EndDate:         endDate,
		Reason:          reason,
	}
}

// BulkProcessedEvent is published after a bulk deactivate/remove completes
type BulkProcessedEvent struct {
	shared.BaseDomainEvent
	Action         string      `json:"action"`
	ProcessedIDs   []uuid.UUID `json:"processed_ids"`
	ProcessedCount int         `json:"processed_count"`
	FailureCount   int         `json:"failure_count"`
}

// NewBulkProcessedEvent creates a new BulkProcessedEvent
func NewBulkProcessedEvent(chapterID uuid.UUID, action string, processedIDs []uuid.UUID, failureCount int) *BulkProcessedEvent {
	return &BulkProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBulkProcessed, AggregateTypeChapter, chapterID),
		Action:          action,
		ProcessedIDs:    processedIDs,
		ProcessedCount:  len(processedIDs),
		FailureCount:    failureCount,
	}
}

// ChapterHeadChangedEvent is published when the derived chapter head changes
type ChapterHeadChangedEvent struct {
	shared.BaseDomainEvent
	OldHead *uuid.UUID `json:"old_head,omitempty"`
	NewHead *uuid.UUID `json:"new_head,omitempty"`
}

// NewChapterHeadChangedEvent creates a new ChapterHeadChangedEvent
func NewChapterHeadChangedEvent(chapterID uuid.UUID, oldHead, newHead *uuid.UUID) *ChapterHeadChangedEvent {
	return &ChapterHeadChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeChapterHeadChanged, AggregateTypeChapter, chapterID),
		OldHead:         oldHead,
		NewHead:         newHead,
	}
}
