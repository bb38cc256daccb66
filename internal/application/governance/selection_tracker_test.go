package governance

import (
	"testing"
	"time"

	"github.com/chapterhub/backend/internal/domain/chapter"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionTracker_SelectDeselect(t *testing.T) {
	tracker := NewSelectionTracker()
	id := uuid.New()

	tracker.Select(id)
	assert.True(t, tracker.IsSelected(id))
	assert.Equal(t, 1, tracker.Count())

	tracker.Select(id)
	assert.Equal(t, 1, tracker.Count())

	tracker.Deselect(id)
	assert.False(t, tracker.IsSelected(id))
	assert.Equal(t, 0, tracker.Count())
}

func TestSelectionTracker_SelectAllActiveSkipsInactive(t *testing.T) {
	c := mustChapter(t)
	role := mustRole(t, "Member-at-large", false, false)

	a1, err := c.AddBoardAssignment(uuid.New(), chapter.VolunteerInfo{DisplayName: "V1"}, role, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	a2, err := c.AddBoardAssignment(uuid.New(), chapter.VolunteerInfo{DisplayName: "V2"}, role, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	_, err = c.DeactivateAssignment(a2.ID, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)

	tracker := NewSelectionTracker()
	tracker.Select(uuid.New()) // stale entry, replaced by SelectAllActive
	tracker.SelectAllActive(c.BoardMembers(true, nil))

	assert.Equal(t, 1, tracker.Count())
	assert.True(t, tracker.IsSelected(a1.ID))
	assert.False(t, tracker.IsSelected(a2.ID))
}

func TestSelectionTracker_Clear(t *testing.T) {
	tracker := NewSelectionTracker()
	tracker.Select(uuid.New())
	tracker.Select(uuid.New())

	tracker.Clear()
	assert.Equal(t, 0, tracker.Count())
	assert.Empty(t, tracker.Selected())
}
