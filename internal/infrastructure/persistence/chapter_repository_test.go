package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/chapterhub/backend/internal/domain/chapter"
	"github.com/chapterhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&chapter.Chapter{},
		&chapter.BoardAssignment{},
		&chapter.ChapterRole{},
		&AssignmentHistory{},
		&Volunteer{},
	)
	require.NoError(t, err)
	return db
}

func seedChapter(t *testing.T, repo *GormChapterRepository, role *chapter.ChapterRole, assignments int) *chapter.Chapter {
	t.Helper()
	c, err := chapter.NewChapter("Utrecht", "Midden")
	require.NoError(t, err)

	for i := 0; i < assignments; i++ {
		_, err := c.AddBoardAssignment(uuid.New(), chapter.VolunteerInfo{DisplayName: "Volunteer"}, role, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil)
		require.NoError(t, err)
	}
	c.ClearDomainEvents()
	require.NoError(t, repo.Save(context.Background(), c))
	return c
}

func testRole(t *testing.T, name string) *chapter.ChapterRole {
	t.Helper()
	role, err := chapter.NewChapterRole(name, true, false, chapter.PermissionLevelBasic)
	require.NoError(t, err)
	return role
}

func TestGormChapterRepository_SaveAndReload(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormChapterRepository(db)
	role := testRole(t, "Secretary")

	c := seedChapter(t, repo, role, 2)

	loaded, err := repo.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Utrecht", loaded.Name)
	assert.Len(t, loaded.BoardAssignments, 2)
	assert.Equal(t, "Secretary", loaded.BoardAssignments[0].RoleName)
}

func TestGormChapterRepository_SaveDeletesRemovedAssignments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormChapterRepository(db)
	role := testRole(t, "Secretary")
	ctx := context.Background()

	c := seedChapter(t, repo, role, 2)
	removedID := c.BoardAssignments[0].ID

	_, err := c.RemoveAssignment(removedID, time.Now(), "resigned")
	require.NoError(t, err)
	c.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, c))

	loaded, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.BoardAssignments, 1)
	assert.Nil(t, loaded.FindAssignment(removedID))

	var count int64
	require.NoError(t, db.Model(&chapter.BoardAssignment{}).Where("id = ?", removedID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGormChapterRepository_SavePersistsDeactivation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormChapterRepository(db)
	role := testRole(t, "Secretary")
	ctx := context.Background()

	c := seedChapter(t, repo, role, 1)
	id := c.BoardAssignments[0].ID
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := c.DeactivateAssignment(id, end, "term ended")
	require.NoError(t, err)
	c.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, c))

	loaded, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	a := loaded.FindAssignment(id)
	require.NotNil(t, a)
	assert.False(t, a.IsActive)
	require.NotNil(t, a.ToDate)
	assert.Contains(t, a.Notes, "term ended")
}

func TestGormChapterRepository_FindByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormChapterRepository(db)
	role := testRole(t, "Secretary")

	seedChapter(t, repo, role, 1)

	loaded, err := repo.FindByName(context.Background(), "Utrecht")
	require.NoError(t, err)
	assert.Len(t, loaded.BoardAssignments, 1)

	_, err = repo.FindByName(context.Background(), "Groningen")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormChapterRepository_FindByRegion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormChapterRepository(db)
	ctx := context.Background()

	c1, err := chapter.NewChapter("Utrecht", "Midden")
	require.NoError(t, err)
	c2, err := chapter.NewChapter("Amersfoort", "Midden")
	require.NoError(t, err)
	c3, err := chapter.NewChapter("Groningen", "Noord")
	require.NoError(t, err)
	for _, c := range []*chapter.Chapter{c1, c2, c3} {
		require.NoError(t, repo.Save(ctx, c))
	}

	chapters, err := repo.FindByRegion(ctx, "Midden", shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, chapters, 2)
}

func TestGormChapterRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormChapterRepository(db)
	role := testRole(t, "Secretary")
	ctx := context.Background()

	c := seedChapter(t, repo, role, 1)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err := repo.FindByID(ctx, c.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&chapter.BoardAssignment{}).Where("chapter_id = ?", c.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	assert.ErrorIs(t, repo.Delete(ctx, c.ID), shared.ErrNotFound)
}

func TestGormChapterRoleRepository_FindByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormChapterRoleRepository(db)
	ctx := context.Background()

	r1 := testRole(t, "Chair")
	r2 := testRole(t, "Treasurer")
	require.NoError(t, repo.Save(ctx, r1))
	require.NoError(t, repo.Save(ctx, r2))

	roles, err := repo.FindByIDs(ctx, []uuid.UUID{r1.ID, r2.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, roles, 2)
	assert.Equal(t, "Chair", roles[r1.ID].Name)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGormChapterRoleRepository_FindActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormChapterRoleRepository(db)
	ctx := context.Background()

	active := testRole(t, "Chair")
	retired := testRole(t, "Archivist")
	require.NoError(t, retired.Deactivate())
	require.NoError(t, repo.Save(ctx, active))
	require.NoError(t, repo.Save(ctx, retired))

	roles, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "Chair", roles[0].Name)
}

func TestGormHistoryRecorder_RecordAndList(t *testing.T) {
	db := setupTestDB(t)
	recorder := NewGormHistoryRecorder(db)
	ctx := context.Background()

	role := testRole(t, "Secretary")
	c, err := chapter.NewChapter("Utrecht", "Midden")
	require.NoError(t, err)
	a, err := c.AddBoardAssignment(uuid.New(), chapter.VolunteerInfo{DisplayName: "Vera"}, role, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)

	require.NoError(t, recorder.RecordAssignment(ctx, c.ID, a, chapter.HistoryActionAppointed, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, recorder.RecordAssignment(ctx, c.ID, a, chapter.HistoryActionDeactivated, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))

	rows, err := recorder.FindByChapter(ctx, c.ID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, string(chapter.HistoryActionDeactivated), rows[0].Action)
	assert.Equal(t, "Vera", rows[0].VolunteerName)
}

func TestGormVolunteerLookup_Resolve(t *testing.T) {
	db := setupTestDB(t)
	lookup := NewGormVolunteerLookup(db)
	ctx := context.Background()

	memberID := uuid.New()
	v := Volunteer{ID: uuid.New(), Name: "Vera Visser", Email: "vera@example.org", MemberID: &memberID}
	require.NoError(t, db.Create(&v).Error)

	info, err := lookup.Resolve(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vera Visser", info.DisplayName)
	require.NotNil(t, info.MemberID)
	assert.Equal(t, memberID, *info.MemberID)

	_, err = lookup.Resolve(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
