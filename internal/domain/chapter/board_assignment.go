package chapter

import (
	"strings"
	"time"

	"github.com/chapterhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BoardAssignment represents one volunteer's tenure in one governance role.
// Assignments are owned exclusively by their chapter and have no existence
// outside of it. Inactive assignments are retained for audit and statistics.
type BoardAssignment struct {
	shared.BaseEntity
	ChapterID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	VolunteerID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	VolunteerName string     `gorm:"type:varchar(200)"`
	Email         string     `gorm:"type:varchar(200)"`
	MemberID      *uuid.UUID `gorm:"type:uuid;index"` // Resolved member, nil when lookup failed
	RoleID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	RoleName      string     `gorm:"type:varchar(100)"`
	FromDate      time.Time  `gorm:"type:date;not null"`
	ToDate        *time.Time `gorm:"type:date"`
	IsActive      bool       `gorm:"not null;default:true"`
	Notes         string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BoardAssignment) TableName() string {
	return "board_assignments"
}

func newBoardAssignment(chapterID, volunteerID uuid.UUID, info VolunteerInfo, role *ChapterRole, fromDate time.Time, toDate *time.Time) (*BoardAssignment, error) {
	if toDate != nil && toDate.Before(fromDate) {
		return nil, shared.NewDomainError("INVALID_DATES", "End date cannot be before start date")
	}

	return &BoardAssignment{
		BaseEntity:    shared.NewBaseEntity(),
		ChapterID:     chapterID,
		VolunteerID:   volunteerID,
		VolunteerName: info.DisplayName,
		Email:         info.Email,
		MemberID:      info.MemberID,
		RoleID:        role.ID,
		RoleName:      role.Name,
		FromDate:      fromDate,
		ToDate:        toDate,
		IsActive:      true,
	}, nil
}

// Deactivate retires the assignment. An unset end date defaults to endDate;
// an end date before the start date is clamped to the start date.
func (a *BoardAssignment) Deactivate(endDate time.Time, reason string) error {
	if !a.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Board assignment is already inactive")
	}

	if endDate.Before(a.FromDate) {
		endDate = a.FromDate
	}
	a.IsActive = false
	a.ToDate = &endDate
	a.UpdatedAt = time.Now()

	if reason != "" {
		a.appendNote("Deactivated: " + reason)
	}
	return nil
}

// SetFromDate edits the start date. When the new start date falls after an
// existing end date it is clamped to the end date and a warning is returned
// instead of an error, so a plausibly mistyped field can be fixed in place.
func (a *BoardAssignment) SetFromDate(fromDate time.Time) (warning string) {
	if a.ToDate != nil && fromDate.After(*a.ToDate) {
		fromDate = *a.ToDate
		warning = "Start date was after end date and has been adjusted to " + fromDate.Format("2006-01-02")
	}
	a.FromDate = fromDate
	a.UpdatedAt = time.Now()
	return warning
}

// SetToDate edits the end date, clamping it to the start date when inverted.
// A nil end date marks an open-ended tenure.
func (a *BoardAssignment) SetToDate(toDate *time.Time) (warning string) {
	if toDate != nil && toDate.Before(a.FromDate) {
		clamped := a.FromDate
		toDate = &clamped
		warning = "End date was before start date and has been adjusted to " + clamped.Format("2006-01-02")
	}
	a.ToDate = toDate
	a.UpdatedAt = time.Now()
	return warning
}

// IsCurrentOn reports whether the assignment is active with respect to the
// given reference date.
func (a *BoardAssignment) IsCurrentOn(ref time.Time) bool {
	return a.IsActive && (a.ToDate == nil || !a.ToDate.Before(ref))
}

// TenureDays returns the tenure length in days, using now for open tenures.
func (a *BoardAssignment) TenureDays(now time.Time) int {
	end := now
	if a.ToDate != nil {
		end = *a.ToDate
	}
	days := int(end.Sub(a.FromDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func (a *BoardAssignment) appendNote(note string) {
	if a.Notes == "" {
		a.Notes = note
		return
	}
	a.Notes = strings.TrimSpace(a.Notes + "\n" + note)
}
