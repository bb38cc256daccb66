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

func TestBoardProjector_StructuralEventReprojectsAndClearsSelection(t *testing.T) {
	repo := new(MockChapterRepository)
	store := state.NewStore(zap.NewNop(), 0)
	selection := NewSelectionTracker()
	projector := NewBoardProjector(repo, store, selection, zap.NewNop())

	c := mustChapter(t)
	role := mustRole(t, "Secretary", true, false)
	a, err := c.AddBoardAssignment(uuid.New(), chapter.VolunteerInfo{DisplayName: "Vera"}, role, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	events := c.GetDomainEvents()
	require.Len(t, events, 1)

	selection.Select(uuid.New())
	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)

	require.NoError(t, projector.Handle(context.Background(), events[0]))

	v, ok := store.Get(PathBoardMembers)
	require.True(t, ok)
	members := v.([]AssignmentResponse)
	require.Len(t, members, 1)
	assert.Equal(t, a.ID, members[0].ID)

	assert.Equal(t, 0, selection.Count())
}

func TestBoardProjector_HeadChangeUpdatesHeadPath(t *testing.T) {
	repo := new(MockChapterRepository)
	store := state.NewStore(zap.NewNop(), 0)
	projector := NewBoardProjector(repo, store, NewSelectionTracker(), zap.NewNop())

	head := uuid.New()
	event := chapter.NewChapterHeadChangedEvent(uuid.New(), nil, &head)

	require.NoError(t, projector.Handle(context.Background(), event))

	v, ok := store.Get(PathChapterHead)
	require.True(t, ok)
	assert.Equal(t, &head, v)
}

func TestBoardProjector_BulkEventReprojects(t *testing.T) {
	repo := new(MockChapterRepository)
	store := state.NewStore(zap.NewNop(), 0)
	selection := NewSelectionTracker()
	projector := NewBoardProjector(repo, store, selection, zap.NewNop())

	c := mustChapter(t)
	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	selection.Select(uuid.New())

	event := chapter.NewBulkProcessedEvent(c.ID, string(BulkActionRemove), []uuid.UUID{uuid.New()}, 0)
	require.NoError(t, projector.Handle(context.Background(), event))

	_, ok := store.Get(PathBoardMembers)
	assert.True(t, ok)
	assert.Equal(t, 0, selection.Count())
}

func TestBoardProjector_EventTypesCoverClosedSet(t *testing.T) {
	projector := NewBoardProjector(nil, nil, nil, zap.NewNop())
	assert.ElementsMatch(t, chapter.AllEventTypes(), projector.EventTypes())
}
