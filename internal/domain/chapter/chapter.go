package chapter

import (
	"sort"
	"time"

	"github.com/chapterhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Chapter represents a regional organizational unit. It is the aggregate
// root for board governance: the board assignment collection is owned
// exclusively by the chapter, and every invariant-enforcing operation goes
// through it.
type Chapter struct {
	shared.BaseAggregateRoot
	Name             string            `gorm:"type:varchar(200);not null;uniqueIndex"`
	Region           string            `gorm:"type:varchar(100);index"`
	ChapterHead      *uuid.UUID        `gorm:"type:uuid"` // Derived: member of the active chair-role holder
	Published        bool              `gorm:"not null;default:false"`
	BoardAssignments []BoardAssignment `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Chapter) TableName() string {
	return "chapters"
}

// NewChapter creates a new chapter
func NewChapter(name, region string) (*Chapter, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Chapter name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Chapter name cannot exceed 200 characters")
	}

	return &Chapter{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Region:            region,
	}, nil
}

// RoleConflict describes an exclusive-role collision found by duplicate
// detection. AssignmentID and HolderName identify the first conflicting
// active holder; Count is the total number of conflicting holders.
type RoleConflict struct {
	RoleID       uuid.UUID
	RoleName     string
	AssignmentID uuid.UUID
	HolderName   string
	Count        int
}

// AddBoardAssignment creates a new active assignment for the volunteer.
// Duplicate-role detection is a separate step (DetectRoleConflict) so the
// caller can offer the resolution choice before or after creation.
func (c *Chapter) AddBoardAssignment(volunteerID uuid.UUID, info VolunteerInfo, role *ChapterRole, fromDate time.Time, toDate *time.Time) (*BoardAssignment, error) {
	if role == nil {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role is required")
	}
	if !role.IsActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Role "+role.Name+" is not active")
	}

	assignment, err := newBoardAssignment(c.ID, volunteerID, info, role, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	c.BoardAssignments = append(c.BoardAssignments, *assignment)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewAssignmentAddedEvent(c.ID, assignment))

	return c.FindAssignment(assignment.ID), nil
}

// DetectRoleConflict scans for other active assignments holding the same
// exclusive role. Returns nil when the role is not exclusive or no other
// active holder exists.
func (c *Chapter) DetectRoleConflict(role *ChapterRole, excludeID uuid.UUID) *RoleConflict {
	if role == nil || !role.IsExclusive {
		return nil
	}

	var conflict *RoleConflict
	for i := range c.BoardAssignments {
		a := &c.BoardAssignments[i]
		if !a.IsActive || a.RoleID != role.ID || a.ID == excludeID {
			continue
		}
		if conflict == nil {
			conflict = &RoleConflict{
				RoleID:       role.ID,
				RoleName:     role.Name,
				AssignmentID: a.ID,
				HolderName:   a.VolunteerName,
			}
		}
		conflict.Count++
	}
	return conflict
}

// DeactivateRoleHolders retires every active assignment for the role,
// except the one identified by excludeID. Used to resolve an exclusive-role
// conflict in favor of the new holder. Returns the retired assignment IDs.
func (c *Chapter) DeactivateRoleHolders(role *ChapterRole, excludeID uuid.UUID, endDate time.Time) []uuid.UUID {
	var deactivated []uuid.UUID
	for i := range c.BoardAssignments {
		a := &c.BoardAssignments[i]
		if !a.IsActive || a.RoleID != role.ID || a.ID == excludeID {
			continue
		}
		if err := a.Deactivate(endDate, "Superseded as "+role.Name); err != nil {
			continue
		}
		deactivated = append(deactivated, a.ID)
		c.AddDomainEvent(NewAssignmentDeactivatedEvent(c.ID, a, endDate, "Superseded as "+role.Name))
	}
	if len(deactivated) > 0 {
		c.UpdatedAt = time.Now()
		c.IncrementVersion()
	}
	return deactivated
}

// TransitionRole performs role succession as a single caller-visible step:
// the volunteer's current active assignment (if any) is retired on the
// transition date and a new active assignment with the new role is created.
//
// The operation is idempotent on retry: if an active assignment with the new
// role and the same start date already exists for the volunteer, it is
// returned unchanged and alreadyDone is true.
func (c *Chapter) TransitionRole(volunteerID uuid.UUID, info VolunteerInfo, newRole *ChapterRole, date time.Time) (created *BoardAssignment, alreadyDone bool, err error) {
	if newRole == nil {
		return nil, false, shared.NewDomainError("INVALID_ROLE", "Role is required")
	}
	if !newRole.IsActive {
		return nil, false, shared.NewDomainError("INVALID_STATE", "Role "+newRole.Name+" is not active")
	}

	// Retry safety: a matching active assignment means a prior invocation
	// already completed the creation half of the transition.
	for i := range c.BoardAssignments {
		a := &c.BoardAssignments[i]
		if a.VolunteerID == volunteerID && a.IsActive && a.RoleID == newRole.ID && sameDay(a.FromDate, date) {
			return a, true, nil
		}
	}

	prior := c.FindActiveByVolunteer(volunteerID)
	var priorCopy *BoardAssignment
	if prior != nil {
		snapshot := *prior
		priorCopy = &snapshot
		if err := prior.Deactivate(date, "Role transition to "+newRole.Name); err != nil {
			return nil, false, err
		}
	}

	assignment, err := newBoardAssignment(c.ID, volunteerID, info, newRole, date, nil)
	if err != nil {
		return nil, false, err
	}
	c.BoardAssignments = append(c.BoardAssignments, *assignment)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	created = c.FindAssignment(assignment.ID)
	c.AddDomainEvent(NewAssignmentTransitionedEvent(c.ID, created, priorCopy, date))

	return created, false, nil
}

// DeactivateAssignment retires a single assignment, applying the
// deactivation cascade (default end date, reason appended to notes).
func (c *Chapter) DeactivateAssignment(id uuid.UUID, endDate time.Time, reason string) (*BoardAssignment, error) {
	a := c.FindAssignment(id)
	if a == nil {
		return nil, shared.ErrNotFound
	}
	if err := a.Deactivate(endDate, reason); err != nil {
		return nil, err
	}

	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewAssignmentDeactivatedEvent(c.ID, a, endDate, reason))

	return a, nil
}

// RemoveAssignment deletes the assignment row outright. The returned copy
// carries the removed row's data for history recording.
func (c *Chapter) RemoveAssignment(id uuid.UUID, endDate time.Time, reason string) (*BoardAssignment, error) {
	idx := -1
	for i := range c.BoardAssignments {
		if c.BoardAssignments[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, shared.ErrNotFound
	}

	removed := c.BoardAssignments[idx]
	c.BoardAssignments = append(c.BoardAssignments[:idx], c.BoardAssignments[idx+1:]...)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewAssignmentRemovedEvent(c.ID, &removed, endDate, reason))

	return &removed, nil
}

// FindAssignment returns the assignment with the given ID, or nil
func (c *Chapter) FindAssignment(id uuid.UUID) *BoardAssignment {
	for i := range c.BoardAssignments {
		if c.BoardAssignments[i].ID == id {
			return &c.BoardAssignments[i]
		}
	}
	return nil
}

// FindActiveByVolunteer returns the volunteer's active assignment, or nil
func (c *Chapter) FindActiveByVolunteer(volunteerID uuid.UUID) *BoardAssignment {
	for i := range c.BoardAssignments {
		a := &c.BoardAssignments[i]
		if a.VolunteerID == volunteerID && a.IsActive {
			return a
		}
	}
	return nil
}

// ActiveAssignments returns all active assignments
func (c *Chapter) ActiveAssignments() []*BoardAssignment {
	var active []*BoardAssignment
	for i := range c.BoardAssignments {
		if c.BoardAssignments[i].IsActive {
			active = append(active, &c.BoardAssignments[i])
		}
	}
	return active
}

// BoardMembers returns assignments filtered by activity and optional role
func (c *Chapter) BoardMembers(includeInactive bool, roleID *uuid.UUID) []*BoardAssignment {
	var result []*BoardAssignment
	for i := range c.BoardAssignments {
		a := &c.BoardAssignments[i]
		if !includeInactive && !a.IsActive {
			continue
		}
		if roleID != nil && a.RoleID != *roleID {
			continue
		}
		result = append(result, a)
	}
	return result
}

// UpdateChapterHead recomputes the derived chapter head: the resolved member
// of the unique active assignment whose role is a chair role, or nil when no
// such assignment exists or the holder has no linked member. Returns true if
// the head changed.
func (c *Chapter) UpdateChapterHead(roles map[uuid.UUID]*ChapterRole) bool {
	oldHead := c.ChapterHead

	var newHead *uuid.UUID
	for i := range c.BoardAssignments {
		a := &c.BoardAssignments[i]
		if !a.IsActive || a.MemberID == nil {
			continue
		}
		role, ok := roles[a.RoleID]
		if !ok || !role.IsChair || !role.IsActive {
			continue
		}
		newHead = a.MemberID
		break
	}

	if uuidPtrEqual(oldHead, newHead) {
		return false
	}

	c.ChapterHead = newHead
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewChapterHeadChangedEvent(c.ID, oldHead, newHead))
	return true
}

// BoardChange describes a recent addition or removal for the summary view
type BoardChange struct {
	Type          string    `json:"type"` // "addition" or "removal"
	VolunteerName string    `json:"volunteer_name"`
	RoleName      string    `json:"role_name"`
	Date          time.Time `json:"date"`
}

// BoardSummary aggregates board status for dashboards
type BoardSummary struct {
	TotalMembers      int            `json:"total_board_members"`
	ActiveMembers     int            `json:"active_board_members"`
	InactiveMembers   int            `json:"inactive_board_members"`
	RoleDistribution  map[string]int `json:"role_distribution"`
	HasChair          bool           `json:"has_chair"`
	AverageTenureDays int            `json:"average_tenure_days"`
	RecentChanges     []BoardChange  `json:"recent_changes"`
}

// Summary computes the board status summary as of now
func (c *Chapter) Summary(roles map[uuid.UUID]*ChapterRole, now time.Time) BoardSummary {
	summary := BoardSummary{
		RoleDistribution: make(map[string]int),
	}

	totalTenure := 0
	tenureCount := 0
	cutoff := now.AddDate(0, 0, -30)

	for i := range c.BoardAssignments {
		a := &c.BoardAssignments[i]
		summary.TotalMembers++

		if a.IsActive {
			summary.ActiveMembers++
			summary.RoleDistribution[a.RoleName]++
			if role, ok := roles[a.RoleID]; ok && role.IsChair && role.IsActive {
				summary.HasChair = true
			}
		}

		totalTenure += a.TenureDays(now)
		tenureCount++

		if !a.FromDate.Before(cutoff) {
			summary.RecentChanges = append(summary.RecentChanges, BoardChange{
				Type:          "addition",
				VolunteerName: a.VolunteerName,
				RoleName:      a.RoleName,
				Date:          a.FromDate,
			})
		}
		if a.ToDate != nil && !a.IsActive && !a.ToDate.Before(cutoff) {
			summary.RecentChanges = append(summary.RecentChanges, BoardChange{
				Type:          "removal",
				VolunteerName: a.VolunteerName,
				RoleName:      a.RoleName,
				Date:          *a.ToDate,
			})
		}
	}

	summary.InactiveMembers = summary.TotalMembers - summary.ActiveMembers
	if tenureCount > 0 {
		summary.AverageTenureDays = totalTenure / tenureCount
	}

	sort.Slice(summary.RecentChanges, func(i, j int) bool {
		return summary.RecentChanges[i].Date.After(summary.RecentChanges[j].Date)
	})
	if len(summary.RecentChanges) > 10 {
		summary.RecentChanges = summary.RecentChanges[:10]
	}

	return summary
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
