package governance

import (
	"context"
	"testing"
	"time"

	"github.com/chapterhub/backend/internal/domain/chapter"
	"github.com/chapterhub/backend/internal/infrastructure/state"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bulkFixture struct {
	chapterRepo *MockChapterRepository
	roleRepo    *MockChapterRoleRepository
	history     *MockHistoryRecorder
	publisher   *MockEventPublisher
	selection   *SelectionTracker
	store       *state.Store
	service     *BulkService
}

func newBulkFixture() *bulkFixture {
	f := &bulkFixture{
		chapterRepo: new(MockChapterRepository),
		roleRepo:    new(MockChapterRoleRepository),
		history:     new(MockHistoryRecorder),
		publisher:   NewMockEventPublisher(),
		selection:   NewSelectionTracker(),
		store:       state.NewStore(zap.NewNop(), 0),
	}
	f.service = NewBulkService(f.chapterRepo, f.roleRepo, f.history, f.selection, f.store, zap.NewNop())
	f.service.SetEventPublisher(f.publisher)
	return f
}

func seedBoard(t *testing.T, c *chapter.Chapter, role *chapter.ChapterRole, count int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		a, err := c.AddBoardAssignment(uuid.New(), chapter.VolunteerInfo{DisplayName: "Volunteer"}, role, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil)
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}
	c.ClearDomainEvents()
	return ids
}

func TestBulkService_ProcessBulk_EmptySelection(t *testing.T) {
	f := newBulkFixture()

	_, err := f.service.ProcessBulk(context.Background(), BulkRequest{
		ChapterID: uuid.New(),
		Action:    BulkActionRemove,
		EndDate:   time.Now(),
	})

	assert.Error(t, err)
}

func TestBulkService_ProcessBulk_UnknownAction(t *testing.T) {
	f := newBulkFixture()

	_, err := f.service.ProcessBulk(context.Background(), BulkRequest{
		ChapterID:     uuid.New(),
		AssignmentIDs: []uuid.UUID{uuid.New()},
		Action:        BulkAction("archive"),
		EndDate:       time.Now(),
	})

	assert.Error(t, err)
}

func TestBulkService_ProcessBulk_RemoveWithPartialFailures(t *testing.T) {
	f := newBulkFixture()
	c := mustChapter(t)
	role := mustRole(t, "Member-at-large", false, false)
	ids := seedBoard(t, c, role, 3)

	// Two of the five requested ids do not exist.
	requested := append(append([]uuid.UUID{}, ids...), uuid.New(), uuid.New())

	f.chapterRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.roleRepo.On("FindByIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID]*chapter.ChapterRole{role.ID: role}, nil)
	f.chapterRepo.On("Save", mock.Anything, c).Return(nil)
	f.history.On("RecordAssignment", mock.Anything, mock.Anything, mock.Anything, chapter.HistoryActionRemoved, mock.Anything).Return(nil)

	result, err := f.service.ProcessBulk(context.Background(), BulkRequest{
		ChapterID:     c.ID,
		AssignmentIDs: requested,
		Action:        BulkActionRemove,
		EndDate:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, 3, result.ProcessedCount)
	assert.Len(t, result.Failures, 2)
	assert.Empty(t, c.BoardAssignments)
	f.chapterRepo.AssertNumberOfCalls(t, "Save", 1)

	events := f.publisher.GetEventsByType(chapter.EventTypeBulkProcessed)
	require.Len(t, events, 1)
	bulk := events[0].(*chapter.BulkProcessedEvent)
	assert.Equal(t, 3, bulk.ProcessedCount)
	assert.Equal(t, 2, bulk.FailureCount)
}

func TestBulkService_ProcessBulk_DeactivateCascade(t *testing.T) {
	f := newBulkFixture()
	c := mustChapter(t)
	role := mustRole(t, "Member-at-large", false, false)
	ids := seedBoard(t, c, role, 2)
	endDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	f.chapterRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.roleRepo.On("FindByIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID]*chapter.ChapterRole{role.ID: role}, nil)
	f.chapterRepo.On("Save", mock.Anything, c).Return(nil)
	f.history.On("RecordAssignment", mock.Anything, mock.Anything, mock.Anything, chapter.HistoryActionDeactivated, mock.Anything).Return(nil)

	result, err := f.service.ProcessBulk(context.Background(), BulkRequest{
		ChapterID:     c.ID,
		AssignmentIDs: ids,
		Action:        BulkActionDeactivate,
		EndDate:       endDate,
		Reason:        "board renewal",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.ProcessedCount)
	assert.Empty(t, result.Failures)

	for _, id := range ids {
		a := c.FindAssignment(id)
		require.NotNil(t, a)
		assert.False(t, a.IsActive)
		assert.Equal(t, endDate, *a.ToDate)
		assert.Contains(t, a.Notes, "board renewal")
	}
}

func TestBulkService_ProcessBulk_AllFailNoSave(t *testing.T) {
	f := newBulkFixture()
	c := mustChapter(t)

	f.chapterRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)

	result, err := f.service.ProcessBulk(context.Background(), BulkRequest{
		ChapterID:     c.ID,
		AssignmentIDs: []uuid.UUID{uuid.New(), uuid.New()},
		Action:        BulkActionRemove,
		EndDate:       time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, 0, result.ProcessedCount)
	assert.Len(t, result.Failures, 2)
	f.chapterRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBulkService_ProcessSelected_UsesSelection(t *testing.T) {
	f := newBulkFixture()
	c := mustChapter(t)
	role := mustRole(t, "Member-at-large", false, false)
	ids := seedBoard(t, c, role, 2)

	for _, id := range ids {
		f.selection.Select(id)
	}

	f.chapterRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.roleRepo.On("FindByIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID]*chapter.ChapterRole{role.ID: role}, nil)
	f.chapterRepo.On("Save", mock.Anything, c).Return(nil)
	f.history.On("RecordAssignment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.ProcessSelected(context.Background(), c.ID, BulkActionDeactivate, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "")

	require.NoError(t, err)
	assert.Equal(t, 2, result.ProcessedCount)
}

func TestBulkService_ProcessSelected_EmptySelection(t *testing.T) {
	f := newBulkFixture()

	_, err := f.service.ProcessSelected(context.Background(), uuid.New(), BulkActionDeactivate, time.Now(), "")
	assert.Error(t, err)
}
