package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/chapterhub/backend/internal/domain/chapter"
	"github.com/chapterhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Volunteer is the lookup row for volunteer resolution. The member link is
// optional: a volunteer without a linked member may hold board roles but
// can never become chapter head.
type Volunteer struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name      string     `gorm:"type:varchar(200);not null"`
	Email     string     `gorm:"type:varchar(200)"`
	MemberID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Volunteer) TableName() string {
	return "volunteers"
}

// GormVolunteerLookup implements VolunteerLookup against the volunteers table
type GormVolunteerLookup struct {
	db *gorm.DB
}

// NewGormVolunteerLookup creates a new GormVolunteerLookup
func NewGormVolunteerLookup(db *gorm.DB) *GormVolunteerLookup {
	return &GormVolunteerLookup{db: db}
}

// Resolve resolves a volunteer reference to display data and member link
func (l *GormVolunteerLookup) Resolve(ctx context.Context, volunteerID uuid.UUID) (*chapter.VolunteerInfo, error) {
	var v Volunteer
	if err := l.db.WithContext(ctx).First(&v, "id = ?", volunteerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &chapter.VolunteerInfo{
		DisplayName: v.Name,
		Email:       v.Email,
		MemberID:    v.MemberID,
	}, nil
}

// Ensure GormVolunteerLookup implements VolunteerLookup
var _ chapter.VolunteerLookup = (*GormVolunteerLookup)(nil)
