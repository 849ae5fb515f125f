package directory

import (
	"fmt"
	"time"

	"accessgate/internal/shared/biztime"
)

// MembershipRecord ties a user to a group, either as member or as owner, with
// a validity window. A record is active while endedAt is nil or in the
// future. The store holds at most one active (group, user, owner) row; the
// reconciliation engine enforces that, not the database.
type MembershipRecord struct {
	id        uint
	groupID   uint
	userID    uint
	isOwner   bool
	startedAt time.Time
	endedAt   *time.Time
	user      *User
}

// NewMembershipRecord creates an open-ended record starting now.
func NewMembershipRecord(groupID, userID uint, isOwner bool) (*MembershipRecord, error) {
	if groupID == 0 {
		return nil, fmt.Errorf("group ID is required")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	return &MembershipRecord{
		groupID:   groupID,
		userID:    userID,
		isOwner:   isOwner,
		startedAt: biztime.NowUTC(),
	}, nil
}

// ReconstructMembershipRecord reconstructs a record from persistence.
func ReconstructMembershipRecord(
	id uint,
	groupID, userID uint,
	isOwner bool,
	startedAt time.Time,
	endedAt *time.Time,
	user *User,
) *MembershipRecord {
	return &MembershipRecord{
		id:        id,
		groupID:   groupID,
		userID:    userID,
		isOwner:   isOwner,
		startedAt: startedAt,
		endedAt:   endedAt,
		user:      user,
	}
}

func (m *MembershipRecord) ID() uint             { return m.id }
func (m *MembershipRecord) GroupID() uint        { return m.groupID }
func (m *MembershipRecord) UserID() uint         { return m.userID }
func (m *MembershipRecord) IsOwner() bool        { return m.isOwner }
func (m *MembershipRecord) StartedAt() time.Time { return m.startedAt }
func (m *MembershipRecord) EndedAt() *time.Time  { return m.endedAt }

// User returns the joined user, nil when the record was loaded without it.
func (m *MembershipRecord) User() *User { return m.user }

// SetID sets the record ID (only for persistence layer use)
func (m *MembershipRecord) SetID(id uint) { m.id = id }

// IsActiveAt reports whether the record's validity window includes t.
func (m *MembershipRecord) IsActiveAt(t time.Time) bool {
	return biztime.IsActive(m.endedAt, t)
}

// End closes the validity window at t. Records are never hard-deleted.
func (m *MembershipRecord) End(t time.Time) {
	ended := t
	m.endedAt = &ended
}

// Reactivate clears the end marker, reopening the existing record instead of
// inserting a duplicate row.
func (m *MembershipRecord) Reactivate() {
	m.endedAt = nil
}
