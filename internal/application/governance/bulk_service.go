package governance

import (
	"context"
	"time"

	"github.com/chapterhub/backend/internal/domain/chapter"
	"github.com/chapterhub/backend/internal/domain/shared"
	"github.com/chapterhub/backend/internal/infrastructure/state"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoadingBulkProcess is the advisory loading flag for bulk operations
const LoadingBulkProcess = "bulk_process"

// BulkService applies one action to a set of board assignments. Items are
// processed sequentially so each item's exclusive-role bookkeeping sees the
// result of all prior items in the same batch; a per-item failure is
// recorded and the remaining items continue.
type BulkService struct {
	chapterRepo    chapter.ChapterRepository
	roleRepo       chapter.ChapterRoleRepository
	history        chapter.HistoryRecorder
	eventPublisher shared.EventPublisher
	selection      *SelectionTracker
	store          *state.Store
	logger         *zap.Logger
}

// NewBulkService creates a new BulkService
func NewBulkService(
	chapterRepo chapter.ChapterRepository,
	roleRepo chapter.ChapterRoleRepository,
	history chapter.HistoryRecorder,
	selection *SelectionTracker,
	store *state.Store,
	logger *zap.Logger,
) *BulkService {
	return &BulkService{
		chapterRepo: chapterRepo,
		roleRepo:    roleRepo,
		history:     history,
		selection:   selection,
		store:       store,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *BulkService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ProcessSelected runs ProcessBulk over the current selection
func (s *BulkService) ProcessSelected(ctx context.Context, chapterID uuid.UUID, action BulkAction, endDate time.Time, reason string) (*BulkResult, error) {
	if s.selection == nil {
		return nil, shared.NewDomainError("EMPTY_SELECTION", "No assignments selected")
	}
	return s.ProcessBulk(ctx, BulkRequest{
		ChapterID:     chapterID,
		AssignmentIDs: s.selection.Selected(),
		Action:        action,
		EndDate:       endDate,
		Reason:        reason,
	})
}

// ProcessBulk applies the action to every assignment in the request. It
// errors only for structurally invalid input: an empty selection or an
// unknown action. Per-item failures are aggregated in the result, and the
// chapter is saved once after all items are processed.
func (s *BulkService) ProcessBulk(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	if len(req.AssignmentIDs) == 0 {
		return nil, shared.NewDomainError("EMPTY_SELECTION", "No assignments selected")
	}
	if req.Action != BulkActionDeactivate && req.Action != BulkActionRemove {
		return nil, shared.NewDomainError("UNKNOWN_ACTION", "Unknown bulk action: "+string(req.Action))
	}

	s.setLoading(true)
	defer s.setLoading(false)

	c, err := s.chapterRepo.FindByID(ctx, req.ChapterID)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Failures: make([]BulkFailure, 0)}
	processed := make([]uuid.UUID, 0, len(req.AssignmentIDs))
	recorded := make([]*chapter.BoardAssignment, 0, len(req.AssignmentIDs))

	for _, id := range req.AssignmentIDs {
		var a *chapter.BoardAssignment
		var itemErr error

		switch req.Action {
		case BulkActionDeactivate:
			a, itemErr = c.DeactivateAssignment(id, req.EndDate, req.Reason)
		case BulkActionRemove:
			a, itemErr = c.RemoveAssignment(id, req.EndDate, req.Reason)
		}

		if itemErr != nil {
			result.Failures = append(result.Failures, BulkFailure{
				AssignmentID: id,
				Error:        itemErr.Error(),
			})
			continue
		}
		processed = append(processed, id)
		recorded = append(recorded, a)
	}

	result.ProcessedCount = len(processed)
	if len(processed) == 0 {
		return result, nil
	}

	c.AddDomainEvent(chapter.NewBulkProcessedEvent(c.ID, string(req.Action), processed, len(result.Failures)))
	s.refreshChapterHead(ctx, c)

	if err := s.chapterRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	action := chapter.HistoryActionDeactivated
	if req.Action == BulkActionRemove {
		action = chapter.HistoryActionRemoved
	}
	for _, a := range recorded {
		s.recordHistory(ctx, c.ID, a, action, req.EndDate)
	}
	s.publishEvents(ctx, c)

	return result, nil
}

func (s *BulkService) refreshChapterHead(ctx context.Context, c *chapter.Chapter) {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0, len(c.BoardAssignments))
	for i := range c.BoardAssignments {
		id := c.BoardAssignments[i].RoleID
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	roles := map[uuid.UUID]*chapter.ChapterRole{}
	if len(ids) > 0 {
		var err error
		roles, err = s.roleRepo.FindByIDs(ctx, ids)
		if err != nil {
			s.logger.Warn("role lookup failed, chapter head not recomputed",
				zap.String("chapter_id", c.ID.String()),
				zap.Error(err),
			)
			return
		}
	}
	c.UpdateChapterHead(roles)
}

func (s *BulkService) recordHistory(ctx context.Context, chapterID uuid.UUID, a *chapter.BoardAssignment, action chapter.HistoryAction, date time.Time) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordAssignment(ctx, chapterID, a, action, date); err != nil {
		s.logger.Warn("history recording failed",
			zap.String("assignment_id", a.ID.String()),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

func (s *BulkService) publishEvents(ctx context.Context, c *chapter.Chapter) {
	if s.eventPublisher == nil {
		return
	}
	events := c.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	c.ClearDomainEvents()
}

func (s *BulkService) setLoading(loading bool) {
	if s.store == nil {
		return
	}
	s.store.SetLoading(LoadingBulkProcess, loading)
}
