package directory

import (
	"fmt"
	"strings"
)

// User is an identity in the membership store. Profile carries free-form
// attributes synced from the upstream identity provider.
type User struct {
	id      uint
	email   string
	profile map[string]any
}

// NewUser creates a user with the given email.
func NewUser(email string) (*User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("user email is required")
	}
	return &User{email: email, profile: map[string]any{}}, nil
}

// ReconstructUser reconstructs a user from persistence.
func ReconstructUser(id uint, email string, profile map[string]any) *User {
	if profile == nil {
		profile = map[string]any{}
	}
	return &User{id: id, email: email, profile: profile}
}

func (u *User) ID() uint                 { return u.id }
func (u *User) Email() string            { return u.email }
func (u *User) Profile() map[string]any { return u.profile }

// SetID sets the user ID (only for persistence layer use)
func (u *User) SetID(id uint) { u.id = id }

// SetProfileAttr sets one profile attribute.
func (u *User) SetProfileAttr(key string, value any) {
	u.profile[key] = value
}

// Identity returns the identifier used in catalog member lists and incident
// assignee matching: the Username profile attribute when present, otherwise
// the email.
func (u *User) Identity() string {
	if v, ok := u.profile["Username"]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return u.email
}
