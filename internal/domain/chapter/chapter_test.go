package chapter

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestChapter(t *testing.T) *Chapter {
	t.Helper()
	c, err := NewChapter("Amsterdam", "Noord-Holland")
	assert.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func newChairRole(t *testing.T) *ChapterRole {
	t.Helper()
	role, err := NewChapterRole("Chair", true, true, PermissionLevelAdmin)
	assert.NoError(t, err)
	return role
}

func memberRef() *uuid.UUID {
	id := uuid.New()
	return &id
}

func TestNewChapter_Validation(t *testing.T) {
	_, err := NewChapter("", "Noord-Holland")
	assert.Error(t, err)

	c, err := NewChapter("Amsterdam", "Noord-Holland")
	assert.NoError(t, err)
	assert.Equal(t, "Amsterdam", c.Name)
	assert.Nil(t, c.ChapterHead)
}

func TestChapter_AddBoardAssignment_Success(t *testing.T) {
	c := newTestChapter(t)
	role := newChairRole(t)

	a, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V1", Email: "v1@example.org", MemberID: memberRef()}, role, date(2025, 1, 1), nil)
	assert.NoError(t, err)
	assert.NotNil(t, a)
	assert.True(t, a.IsActive)
	assert.Equal(t, "Chair", a.RoleName)
	assert.Len(t, c.BoardAssignments, 1)

	events := c.GetDomainEvents()
	assert.Len(t, events, 1)
	assert.Equal(t, EventTypeAssignmentAdded, events[0].EventType())
}

func TestChapter_AddBoardAssignment_InactiveRole(t *testing.T) {
	c := newTestChapter(t)
	role := newChairRole(t)
	assert.NoError(t, role.Deactivate())

	_, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V1"}, role, date(2025, 1, 1), nil)
	assert.Error(t, err)
}

func TestChapter_DetectRoleConflict_ExclusiveRole(t *testing.T) {
	c := newTestChapter(t)
	role := newChairRole(t)

	a1, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V1"}, role, date(2025, 1, 1), nil)
	assert.NoError(t, err)

	a2, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V2"}, role, date(2025, 6, 1), nil)
	assert.NoError(t, err)

	conflict := c.DetectRoleConflict(role, a2.ID)
	assert.NotNil(t, conflict)
	assert.Equal(t, "V1", conflict.HolderName)
	assert.Equal(t, "Chair", conflict.RoleName)
	assert.Equal(t, a1.ID, conflict.AssignmentID)
	assert.Equal(t, 1, conflict.Count)
}

func TestChapter_DetectRoleConflict_NonExclusiveRole(t *testing.T) {
	c := newTestChapter(t)
	role, err := NewChapterRole("Member-at-large", false, false, PermissionLevelBasic)
	assert.NoError(t, err)

	_, err = c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V1"}, role, date(2025, 1, 1), nil)
	assert.NoError(t, err)

	a2, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V2"}, role, date(2025, 1, 1), nil)
	assert.NoError(t, err)

	assert.Nil(t, c.DetectRoleConflict(role, a2.ID))
}

func TestChapter_DetectRoleConflict_IgnoresInactiveHolders(t *testing.T) {
	c := newTestChapter(t)
	role := newChairRole(t)

	a1, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V1"}, role, date(2024, 1, 1), nil)
	assert.NoError(t, err)
	assert.NoError(t, a1.Deactivate(date(2024, 12, 31), ""))

	a2, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V2"}, role, date(2025, 1, 1), nil)
	assert.NoError(t, err)

	assert.Nil(t, c.DetectRoleConflict(role, a2.ID))
}

func TestChapter_DeactivateRoleHolders_ResolvesConflict(t *testing.T) {
	c := newTestChapter(t)
	role := newChairRole(t)
	today := date(2025, 8, 28)

	a1, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V1"}, role, date(2025, 1, 1), nil)
	assert.NoError(t, err)
	a2, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V2"}, role, today, nil)
	assert.NoError(t, err)

	deactivated := c.DeactivateRoleHolders(role, a2.ID, today)
	assert.Equal(t, []uuid.UUID{a1.ID}, deactivated)

	a1 = c.FindAssignment(a1.ID)
	assert.False(t, a1.IsActive)
	assert.Equal(t, today, *a1.ToDate)
	assert.True(t, c.FindAssignment(a2.ID).IsActive)
	assert.Nil(t, c.DetectRoleConflict(role, a2.ID))
}

func TestChapter_TransitionRole_RetiresPriorAndActivatesNew(t *testing.T) {
	c := newTestChapter(t)
	secretary, err := NewChapterRole("Secretary", true, false, PermissionLevelBasic)
	assert.NoError(t, err)
	chair := newChairRole(t)

	volunteerID := uuid.New()
	info := VolunteerInfo{DisplayName: "V1", MemberID: memberRef()}

	prior, err := c.AddBoardAssignment(volunteerID, info, secretary, date(2025, 1, 1), nil)
	assert.NoError(t, err)
	priorID := prior.ID

	transitionDate := date(2025, 7, 1)
	created, alreadyDone, err := c.TransitionRole(volunteerID, info, chair, transitionDate)
	assert.NoError(t, err)
	assert.False(t, alreadyDone)
	assert.True(t, created.IsActive)
	assert.Equal(t, chair.ID, created.RoleID)
	assert.Equal(t, transitionDate, created.FromDate)

	// Exactly one active assignment for the volunteer, referencing the new role
	var active []*BoardAssignment
	for i := range c.BoardAssignments {
		if c.BoardAssignments[i].VolunteerID == volunteerID && c.BoardAssignments[i].IsActive {
			active = append(active, &c.BoardAssignments[i])
		}
	}
	assert.Len(t, active, 1)
	assert.Equal(t, chair.ID, active[0].RoleID)

	retired := c.FindAssignment(priorID)
	assert.False(t, retired.IsActive)
	assert.Equal(t, transitionDate, *retired.ToDate)
}

func TestChapter_TransitionRole_IdempotentRetry(t *testing.T) {
	c := newTestChapter(t)
	secretary, err := NewChapterRole("Secretary", true, false, PermissionLevelBasic)
	assert.NoError(t, err)
	chair := newChairRole(t)

	volunteerID := uuid.New()
	info := VolunteerInfo{DisplayName: "V1"}

	_, err = c.AddBoardAssignment(volunteerID, info, secretary, date(2025, 1, 1), nil)
	assert.NoError(t, err)

	transitionDate := date(2025, 7, 1)
	first, alreadyDone, err := c.TransitionRole(volunteerID, info, chair, transitionDate)
	assert.NoError(t, err)
	assert.False(t, alreadyDone)

	second, alreadyDone, err := c.TransitionRole(volunteerID, info, chair, transitionDate)
	assert.NoError(t, err)
	assert.True(t, alreadyDone)
	assert.Equal(t, first.ID, second.ID)

	count := 0
	for i := range c.BoardAssignments {
		if c.BoardAssignments[i].IsActive && c.BoardAssignments[i].RoleID == chair.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestChapter_TransitionRole_NoPriorAssignment(t *testing.T) {
	c := newTestChapter(t)
	chair := newChairRole(t)

	created, alreadyDone, err := c.TransitionRole(uuid.New(), VolunteerInfo{DisplayName: "V1"}, chair, date(2025, 7, 1))
	assert.NoError(t, err)
	assert.False(t, alreadyDone)
	assert.True(t, created.IsActive)
	assert.Len(t, c.BoardAssignments, 1)
}

func TestChapter_RemoveAssignment(t *testing.T) {
	c := newTestChapter(t)
	role := newChairRole(t)

	a, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V1"}, role, date(2025, 1, 1), nil)
	assert.NoError(t, err)
	id := a.ID
	c.ClearDomainEvents()

	removed, err := c.RemoveAssignment(id, date(2025, 8, 1), "resigned")
	assert.NoError(t, err)
	assert.Equal(t, id, removed.ID)
	assert.Empty(t, c.BoardAssignments)

	events := c.GetDomainEvents()
	assert.Len(t, events, 1)
	assert.Equal(t, EventTypeAssignmentRemoved, events[0].EventType())
}

func TestChapter_RemoveAssignment_NotFound(t *testing.T) {
	c := newTestChapter(t)
	_, err := c.RemoveAssignment(uuid.New(), date(2025, 8, 1), "")
	assert.Error(t, err)
}

func TestChapter_UpdateChapterHead_ChairHolder(t *testing.T) {
	c := newTestChapter(t)
	chair := newChairRole(t)
	member := memberRef()

	a, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V1", MemberID: member}, chair, date(2025, 1, 1), nil)
	assert.NoError(t, err)

	roles := map[uuid.UUID]*ChapterRole{chair.ID: chair}
	changed := c.UpdateChapterHead(roles)
	assert.True(t, changed)
	assert.Equal(t, *member, *c.ChapterHead)

	// Deactivating the chair holder clears the head
	assert.NoError(t, a.Deactivate(date(2025, 6, 1), ""))
	changed = c.UpdateChapterHead(roles)
	assert.True(t, changed)
	assert.Nil(t, c.ChapterHead)
}

func TestChapter_UpdateChapterHead_UnresolvedVolunteerCannotBecomeHead(t *testing.T) {
	c := newTestChapter(t)
	chair := newChairRole(t)

	_, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V1"}, chair, date(2025, 1, 1), nil)
	assert.NoError(t, err)

	changed := c.UpdateChapterHead(map[uuid.UUID]*ChapterRole{chair.ID: chair})
	assert.False(t, changed)
	assert.Nil(t, c.ChapterHead)
}

func TestChapter_UpdateChapterHead_NoChangeNoEvent(t *testing.T) {
	c := newTestChapter(t)
	changed := c.UpdateChapterHead(map[uuid.UUID]*ChapterRole{})
	assert.False(t, changed)
	assert.Empty(t, c.GetDomainEvents())
}

func TestChapter_Summary(t *testing.T) {
	c := newTestChapter(t)
	chair := newChairRole(t)
	member, err := NewChapterRole("Member-at-large", false, false, PermissionLevelBasic)
	assert.NoError(t, err)

	now := date(2025, 8, 28)

	_, err = c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V1", MemberID: memberRef()}, chair, now.AddDate(0, 0, -10), nil)
	assert.NoError(t, err)
	_, err = c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V2"}, member, now.AddDate(-1, 0, 0), nil)
	assert.NoError(t, err)

	old, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V3"}, member, now.AddDate(-2, 0, 0), nil)
	assert.NoError(t, err)
	assert.NoError(t, old.Deactivate(now.AddDate(0, 0, -5), "term ended"))

	roles := map[uuid.UUID]*ChapterRole{chair.ID: chair, member.ID: member}
	summary := c.Summary(roles, now)

	assert.Equal(t, 3, summary.TotalMembers)
	assert.Equal(t, 2, summary.ActiveMembers)
	assert.Equal(t, 1, summary.InactiveMembers)
	assert.True(t, summary.HasChair)
	assert.Equal(t, 1, summary.RoleDistribution["Chair"])
	assert.Equal(t, 1, summary.RoleDistribution["Member-at-large"])

	// One recent addition (10 days ago) and one recent removal (5 days ago),
	// most recent first
	assert.Len(t, summary.RecentChanges, 2)
	assert.Equal(t, "removal", summary.RecentChanges[0].Type)
	assert.Equal(t, "addition", summary.RecentChanges[1].Type)
}

func TestChapter_ActiveAssignments(t *testing.T) {
	c := newTestChapter(t)
	role, err := NewChapterRole("Member-at-large", false, false, PermissionLevelBasic)
	assert.NoError(t, err)

	a1, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V1"}, role, date(2025, 1, 1), nil)
	assert.NoError(t, err)
	_, err = c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V2"}, role, date(2025, 1, 1), nil)
	assert.NoError(t, err)
	assert.NoError(t, a1.Deactivate(date(2025, 2, 1), ""))

	active := c.ActiveAssignments()
	assert.Len(t, active, 1)
	assert.Equal(t, "V2", active[0].VolunteerName)
}

func TestChapter_BoardMembers_Filters(t *testing.T) {
	c := newTestChapter(t)
	chair := newChairRole(t)
	member, err := NewChapterRole("Member-at-large", false, false, PermissionLevelBasic)
	assert.NoError(t, err)

	a1, err := c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V1"}, chair, date(2025, 1, 1), nil)
	assert.NoError(t, err)
	_, err = c.AddBoardAssignment(uuid.New(), VolunteerInfo{DisplayName: "V2"}, member, date(2025, 1, 1), nil)
	assert.NoError(t, err)
	assert.NoError(t, a1.Deactivate(date(2025, 2, 1), ""))

	assert.Len(t, c.BoardMembers(false, nil), 1)
	assert.Len(t, c.BoardMembers(true, nil), 2)
	assert.Len(t, c.BoardMembers(true, &chair.ID), 1)
}
