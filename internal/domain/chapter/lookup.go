package chapter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VolunteerInfo is the result of resolving a volunteer reference.
// MemberID is nil when the volunteer has no linked member record;
// such a volunteer may hold a board role but can never become chapter head.
type VolunteerInfo struct {
	DisplayName string
	Email       string
	MemberID    *uuid.UUID
}

// VolunteerLookup resolves a volunteer reference to its display data and
// linked member. Implementations may hit the network and fail; callers
// degrade to an unresolved assignment rather than aborting.
type VolunteerLookup interface {
	Resolve(ctx context.Context, volunteerID uuid.UUID) (*VolunteerInfo, error)
}

// HistoryAction classifies an assignment history entry
type HistoryAction string

const (
	HistoryActionAppointed   HistoryAction = "appointed"
	HistoryActionDeactivated HistoryAction = "deactivated"
	HistoryActionRemoved     HistoryAction = "removed"
	HistoryActionTransition  HistoryAction = "transition"
)

// HistoryRecorder records board assignment lifecycle changes for audit.
// Calls are fire-and-forget from the engine's point of view: a recording
// failure is logged by the caller but never rolls back the operation.
type HistoryRecorder interface {
	RecordAssignment(ctx context.Context, chapterID uuid.UUID, assignment *BoardAssignment, action HistoryAction, date time.Time) error
}
