package persistence

import (
	"context"
	"time"

	"github.com/chapterhub/backend/internal/domain/chapter"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentHistory is the audit row written for every board assignment
// lifecycle change. Rows are append-only and never updated.
type AssignmentHistory struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ChapterID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	AssignmentID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	VolunteerID   uuid.UUID  `gorm:"type:uuid;not null"`
	VolunteerName string     `gorm:"type:varchar(200)"`
	RoleName      string     `gorm:"type:varchar(100)"`
	Action        string     `gorm:"type:varchar(20);not null"`
	ActionDate    time.Time  `gorm:"type:date;not null"`
	FromDate      time.Time  `gorm:"type:date"`
	ToDate        *time.Time `gorm:"type:date"`
	CreatedAt     time.Time
}

// TableName returns the table name for GORM
func (AssignmentHistory) TableName() string {
	return "assignment_history"
}

// GormHistoryRecorder implements HistoryRecorder with an append-only table
type GormHistoryRecorder struct {
	db *gorm.DB
}

// NewGormHistoryRecorder creates a new GormHistoryRecorder
func NewGormHistoryRecorder(db *gorm.DB) *GormHistoryRecorder {
	return &GormHistoryRecorder{db: db}
}

// RecordAssignment writes one audit row
func (r *GormHistoryRecorder) RecordAssignment(ctx context.Context, chapterID uuid.UUID, a *chapter.BoardAssignment, action chapter.HistoryAction, date time.Time) error {
	row := AssignmentHistory{
		ID:            uuid.New(),
		ChapterID:     chapterID,
		AssignmentID:  a.ID,
		VolunteerID:   a.VolunteerID,
		VolunteerName: a.VolunteerName,
		RoleName:      a.RoleName,
		Action:        string(action),
		ActionDate:    date,
		FromDate:      a.FromDate,
		ToDate:        a.ToDate,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// FindByChapter returns the audit rows for a chapter, newest first
func (r *GormHistoryRecorder) FindByChapter(ctx context.Context, chapterID uuid.UUID, limit int) ([]AssignmentHistory, error) {
	var rows []AssignmentHistory
	query := r.db.WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Order("action_date desc, created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure GormHistoryRecorder implements HistoryRecorder
var _ chapter.HistoryRecorder = (*GormHistoryRecorder)(nil)
