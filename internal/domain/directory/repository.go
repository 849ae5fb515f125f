package directory

import "context"

// GroupRepository defines the interface for group lookups.
type GroupRepository interface {
	// GetActiveByName retrieves a non-deleted group by exact name, with its
	// tags loaded. Returns a not-found error when no such group exists.
	GetActiveByName(ctx context.Context, name string) (*Group, error)

	// GetByID retrieves a non-deleted group by internal ID, with its tags
	// loaded. Returns a not-found error when no such group exists.
	GetByID(ctx context.Context, id uint) (*Group, error)
}

// UserRepository defines the interface for user lookups.
type UserRepository interface {
	// GetByID retrieves a user by internal ID
	GetByID(ctx context.Context, id uint) (*User, error)

	// GetByEmail retrieves a user by email. Returns a not-found error when no
	// user carries the email.
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// MembershipRepository defines the interface for membership and ownership
// records.
type MembershipRepository interface {
	// ListActiveMemberships returns the active non-owner records of a group
	// with users loaded.
	ListActiveMemberships(ctx context.Context, groupID uint) ([]*MembershipRecord, error)

	// ListActiveOwnerships returns the active owner records of a group with
	// users loaded.
	ListActiveOwnerships(ctx context.Context, groupID uint) ([]*MembershipRecord, error)

	// ListOwnedGroupNames returns the names of non-deleted groups the user
	// currently owns.
	ListOwnedGroupNames(ctx context.Context, userID uint) ([]string, error)

	// FindOwnershipRecord returns the owner record for (group, user)
	// regardless of whether it has ended, preferring an active one when
	// several exist. Returns a not-found error when no row exists.
	FindOwnershipRecord(ctx context.Context, groupID, userID uint) (*MembershipRecord, error)

	// Create inserts a new record.
	Create(ctx context.Context, record *MembershipRecord) error

	// Update persists changes to an existing record (ended_at transitions).
	Update(ctx context.Context, record *MembershipRecord) error
}
