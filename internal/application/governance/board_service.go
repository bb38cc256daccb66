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

// Advisory loading flag names, one per governance operation. The flags gate
// re-invocation of the same action from the caller's side only.
const (
	LoadingAddAssignment   = "add_assignment"
	LoadingTransitionRole  = "transition_role"
	LoadingResolveConflict = "resolve_conflict"
	LoadingEditAssignment  = "edit_assignment"
)

// BoardService owns the board governance operations of a chapter: appointing
// volunteers, resolving exclusive-role conflicts, role succession and term
// date edits. All mutation goes through the Chapter aggregate; the service
// adds volunteer resolution, persistence, history recording and events.
type BoardService struct {
	chapterRepo    chapter.ChapterRepository
	roleRepo       chapter.ChapterRoleRepository
	lookup         chapter.VolunteerLookup
	history        chapter.HistoryRecorder
	eventPublisher shared.EventPublisher
	store          *state.Store
	policy         ConflictPolicy
	logger         *zap.Logger
}

// NewBoardService creates a new BoardService with the warn conflict policy
func NewBoardService(
	chapterRepo chapter.ChapterRepository,
	roleRepo chapter.ChapterRoleRepository,
	lookup chapter.VolunteerLookup,
	history chapter.HistoryRecorder,
	store *state.Store,
	logger *zap.Logger,
) *BoardService {
	return &BoardService{
		chapterRepo: chapterRepo,
		roleRepo:    roleRepo,
		lookup:      lookup,
		history:     history,
		store:       store,
		policy:      PolicyWarn,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *BoardService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetConflictPolicy overrides the exclusive-role conflict policy
func (s *BoardService) SetConflictPolicy(policy ConflictPolicy) {
	if policy == PolicyWarn || policy == PolicyReject {
		s.policy = policy
	}
}

// AddAssignment appoints a volunteer to a board role. A failed volunteer
// lookup degrades to an unresolved assignment with a warning instead of
// aborting. Under the warn policy an exclusive-role conflict is reported in
// the result for explicit resolution; under the reject policy it fails the
// operation before anything is persisted.
func (s *BoardService) AddAssignment(ctx context.Context, req AddAssignmentRequest) (*AddAssignmentResult, error) {
	s.setLoading(LoadingAddAssignment, true)
	defer s.setLoading(LoadingAddAssignment, false)

	c, err := s.chapterRepo.FindByID(ctx, req.ChapterID)
	if err != nil {
		return nil, err
	}
	role, err := s.roleRepo.FindByID(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}

	info, warning := s.resolveVolunteer(ctx, req.VolunteerID, req.VolunteerName)

	assignment, err := c.AddBoardAssignment(req.VolunteerID, info, role, req.FromDate, req.ToDate)
	if err != nil {
		return nil, err
	}

	conflict := c.DetectRoleConflict(role, assignment.ID)
	if conflict != nil && s.policy == PolicyReject {
		return nil, shared.ErrRoleConflict
	}

	s.refreshChapterHead(ctx, c)

	// No rollback of the in-memory aggregate on save failure; the caller
	// re-attempts or reloads.
	if err := s.chapterRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.recordHistory(ctx, c.ID, assignment, chapter.HistoryActionAppointed, req.FromDate)
	s.publishEvents(ctx, c)

	return &AddAssignmentResult{
		AssignmentID: assignment.ID,
		Warning:      warning,
		Conflict:     toConflictInfo(conflict),
	}, nil
}

// ResolveConflict retires every other active holder of an exclusive role in
// favor of the assignment identified by KeepID. This is the "deactivate
// existing" branch of the conflict resolution choice.
func (s *BoardService) ResolveConflict(ctx context.Context, req ResolveConflictRequest) (*ResolveConflictResult, error) {
	s.setLoading(LoadingResolveConflict, true)
	defer s.setLoading(LoadingResolveConflict, false)

	c, err := s.chapterRepo.FindByID(ctx, req.ChapterID)
	if err != nil {
		return nil, err
	}
	role, err := s.roleRepo.FindByID(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	if c.FindAssignment(req.KeepID) == nil {
		return nil, shared.ErrNotFound
	}

	deactivated := c.DeactivateRoleHolders(role, req.KeepID, req.EndDate)
	if len(deactivated) == 0 {
		return &ResolveConflictResult{}, nil
	}

	s.refreshChapterHead(ctx, c)

	if err := s.chapterRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	for _, id := range deactivated {
		if a := c.FindAssignment(id); a != nil {
			s.recordHistory(ctx, c.ID, a, chapter.HistoryActionDeactivated, req.EndDate)
		}
	}
	s.publishEvents(ctx, c)

	return &ResolveConflictResult{DeactivatedIDs: deactivated}, nil
}

// TransitionRole performs role succession: the volunteer's current active
// assignment is retired on the transition date and a new active assignment
// with the new role is created, as one caller-visible step. Retrying with
// identical arguments after a partial failure is safe: an already applied
// transition is detected and returned instead of duplicated.
func (s *BoardService) TransitionRole(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	s.setLoading(LoadingTransitionRole, true)
	defer s.setLoading(LoadingTransitionRole, false)

	c, err := s.chapterRepo.FindByID(ctx, req.ChapterID)
	if err != nil {
		return nil, err
	}
	newRole, err := s.roleRepo.FindByID(ctx, req.NewRoleID)
	if err != nil {
		return nil, err
	}

	info, warning := s.resolveVolunteer(ctx, req.VolunteerID, req.VolunteerName)

	created, alreadyDone, err := c.TransitionRole(req.VolunteerID, info, newRole, req.TransitionDate)
	if err != nil {
		return nil, err
	}
	if alreadyDone {
		return &TransitionResult{AssignmentID: created.ID, AlreadyDone: true}, nil
	}

	// Detection runs against the new role only, the old role's slot was
	// freed by the same operation.
	conflict := c.DetectRoleConflict(newRole, created.ID)
	if conflict != nil && s.policy == PolicyReject {
		return nil, shared.ErrRoleConflict
	}

	s.refreshChapterHead(ctx, c)

	if err := s.chapterRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.recordHistory(ctx, c.ID, created, chapter.HistoryActionTransition, req.TransitionDate)
	s.publishEvents(ctx, c)

	return &TransitionResult{
		AssignmentID: created.ID,
		Warning:      warning,
		Conflict:     toConflictInfo(conflict),
	}, nil
}

// DeactivateAssignment retires a single assignment with the deactivation
// cascade: an unset end date defaults to the operation date and the reason
// is appended to the assignment notes.
func (s *BoardService) DeactivateAssignment(ctx context.Context, req DeactivateRequest) error {
	c, err := s.chapterRepo.FindByID(ctx, req.ChapterID)
	if err != nil {
		return err
	}

	a, err := c.DeactivateAssignment(req.AssignmentID, req.EndDate, req.Reason)
	if err != nil {
		return err
	}

	s.refreshChapterHead(ctx, c)

	if err := s.chapterRepo.Save(ctx, c); err != nil {
		return err
	}

	s.recordHistory(ctx, c.ID, a, chapter.HistoryActionDeactivated, req.EndDate)
	s.publishEvents(ctx, c)
	return nil
}

// RemoveAssignment deletes the assignment row outright. The removed row's
// data is still recorded to history before it disappears.
func (s *BoardService) RemoveAssignment(ctx context.Context, req DeactivateRequest) error {
	c, err := s.chapterRepo.FindByID(ctx, req.ChapterID)
	if err != nil {
		return err
	}

	removed, err := c.RemoveAssignment(req.AssignmentID, req.EndDate, req.Reason)
	if err != nil {
		return err
	}

	s.refreshChapterHead(ctx, c)

	if err := s.chapterRepo.Save(ctx, c); err != nil {
		return err
	}

	s.recordHistory(ctx, c.ID, removed, chapter.HistoryActionRemoved, req.EndDate)
	s.publishEvents(ctx, c)
	return nil
}

// EditDates edits an assignment's term dates. Inverted dates are clamped
// and reported as warnings, never rejected: the field is plausibly fixed
// right after, so a forgiving edit beats a hard validation failure.
func (s *BoardService) EditDates(ctx context.Context, req EditDatesRequest) (*EditDatesResult, error) {
	s.setLoading(LoadingEditAssignment, true)
	defer s.setLoading(LoadingEditAssignment, false)

	c, err := s.chapterRepo.FindByID(ctx, req.ChapterID)
	if err != nil {
		return nil, err
	}
	a := c.FindAssignment(req.AssignmentID)
	if a == nil {
		return nil, shared.ErrNotFound
	}

	result := &EditDatesResult{}
	if req.FromDate != nil {
		if warning := a.SetFromDate(*req.FromDate); warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
	}
	if req.ToDate != nil {
		if warning := a.SetToDate(req.ToDate); warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
	} else if req.ClearToDate {
		a.SetToDate(nil)
	}

	c.IncrementVersion()
	if err := s.chapterRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return result, nil
}

// GetActiveAssignments returns the chapter's active board assignments
func (s *BoardService) GetActiveAssignments(ctx context.Context, chapterID uuid.UUID) ([]AssignmentResponse, error) {
	c, err := s.chapterRepo.FindByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	return ToAssignmentResponses(c.ActiveAssignments()), nil
}

// GetBoardMembers returns assignments filtered by activity and optional role
func (s *BoardService) GetBoardMembers(ctx context.Context, chapterID uuid.UUID, includeInactive bool, roleID *uuid.UUID) ([]AssignmentResponse, error) {
	c, err := s.chapterRepo.FindByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	return ToAssignmentResponses(c.BoardMembers(includeInactive, roleID)), nil
}

// GetSummary computes the board status summary for dashboards
func (s *BoardService) GetSummary(ctx context.Context, chapterID uuid.UUID) (*chapter.BoardSummary, error) {
	c, err := s.chapterRepo.FindByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	roles, err := s.chapterRoles(ctx, c)
	if err != nil {
		return nil, err
	}
	summary := c.Summary(roles, time.Now())
	return &summary, nil
}

// resolveVolunteer resolves the volunteer reference, degrading to partial
// data with a warning when the lookup fails. An unresolved volunteer can
// hold a role but never becomes chapter head.
func (s *BoardService) resolveVolunteer(ctx context.Context, volunteerID uuid.UUID, fallbackName string) (chapter.VolunteerInfo, string) {
	info, err := s.lookup.Resolve(ctx, volunteerID)
	if err != nil {
		s.logger.Warn("volunteer lookup failed, creating unresolved assignment",
			zap.String("volunteer_id", volunteerID.String()),
			zap.Error(err),
		)
		name := fallbackName
		if name == "" {
			name = volunteerID.String()
		}
		return chapter.VolunteerInfo{DisplayName: name}, "Volunteer could not be resolved; the assignment has no linked member"
	}
	return *info, ""
}

// refreshChapterHead recomputes the derived head after a board change.
// A role lookup failure leaves the head as is; the next mutation retries.
func (s *BoardService) refreshChapterHead(ctx context.Context, c *chapter.Chapter) {
	roles, err := s.chapterRoles(ctx, c)
	if err != nil {
		s.logger.Warn("role lookup failed, chapter head not recomputed",
			zap.String("chapter_id", c.ID.String()),
			zap.Error(err),
		)
		return
	}
	c.UpdateChapterHead(roles)
}

// chapterRoles loads the role metadata referenced by the chapter's board
func (s *BoardService) chapterRoles(ctx context.Context, c *chapter.Chapter) (map[uuid.UUID]*chapter.ChapterRole, error) {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0, len(c.BoardAssignments))
	for i := range c.BoardAssignments {
		id := c.BoardAssignments[i].RoleID
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]*chapter.ChapterRole{}, nil
	}
	return s.roleRepo.FindByIDs(ctx, ids)
}

// recordHistory is fire-and-forget: a failure is logged, never propagated
func (s *BoardService) recordHistory(ctx context.Context, chapterID uuid.UUID, a *chapter.BoardAssignment, action chapter.HistoryAction, date time.Time) {
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

// publishEvents publishes and clears the aggregate's domain events
func (s *BoardService) publishEvents(ctx context.Context, c *chapter.Chapter) {
	if s.eventPublisher == nil {
		return
	}
	events := c.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
	c.ClearDomainEvents()
}

func (s *BoardService) setLoading(operation string, loading bool) {
	if s.store == nil {
		return
	}
	s.store.SetLoading(operation, loading)
}
