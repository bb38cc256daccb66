package governance

import (
	"context"

	"github.com/chapterhub/backend/internal/domain/chapter"
	"github.com/chapterhub/backend/internal/domain/shared"
	"github.com/chapterhub/backend/internal/infrastructure/state"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State tree paths maintained by the projector. Statistics and
// communication collaborators subscribe to PathBoardMembers.
const (
	PathBoardMembers = "chapter.boardMembers"
	PathChapterHead  = "chapter.head"
)

// BoardProjector keeps the state tree in sync with board governance events.
// Every structural change reprojects the active board member list and
// clears the bulk selection, since the previous selection may refer to rows
// that no longer exist.
//
// The event set is closed; dispatch is an exhaustive type switch, so a new
// event kind is a compile-visible addition here rather than a silently
// ignored string.
type BoardProjector struct {
	chapterRepo chapter.ChapterRepository
	store       *state.Store
	selection   *SelectionTracker
	logger      *zap.Logger
}

// NewBoardProjector creates a new BoardProjector
func NewBoardProjector(chapterRepo chapter.ChapterRepository, store *state.Store, selection *SelectionTracker, logger *zap.Logger) *BoardProjector {
	return &BoardProjector{
		chapterRepo: chapterRepo,
		store:       store,
		selection:   selection,
		logger:      logger,
	}
}

// EventTypes returns the board governance event types
func (p *BoardProjector) EventTypes() []string {
	return chapter.AllEventTypes()
}

// Handle projects a board governance event into the state tree
func (p *BoardProjector) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *chapter.AssignmentAddedEvent:
		return p.reprojectBoard(ctx, e.AggregateID())
	case *chapter.AssignmentTransitionedEvent:
		return p.reprojectBoard(ctx, e.AggregateID())
	case *chapter.AssignmentDeactivatedEvent:
		return p.reprojectBoard(ctx, e.AggregateID())
	case *chapter.AssignmentRemovedEvent:
		return p.reprojectBoard(ctx, e.AggregateID())
	case *chapter.BulkProcessedEvent:
		return p.reprojectBoard(ctx, e.AggregateID())
	case *chapter.ChapterHeadChangedEvent:
		p.store.Update(PathChapterHead, e.NewHead, false)
		return nil
	default:
		p.logger.Warn("unknown event type ignored",
			zap.String("event_type", event.EventType()),
		)
		return nil
	}
}

// reprojectBoard reloads the chapter and rewrites the board member list.
// Projection writes are untracked: they reflect persisted reality, not an
// undoable user edit.
func (p *BoardProjector) reprojectBoard(ctx context.Context, chapterID uuid.UUID) error {
	c, err := p.chapterRepo.FindByID(ctx, chapterID)
	if err != nil {
		return err
	}

	p.store.Update(PathBoardMembers, ToAssignmentResponses(c.ActiveAssignments()), false)
	if p.selection != nil {
		p.selection.Clear()
	}
	return nil
}

// Ensure BoardProjector implements EventHandler
var _ shared.EventHandler = (*BoardProjector)(nil)
