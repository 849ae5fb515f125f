// Package directory models the group-membership store shared by the decision
// and reconciliation engines: access-control groups, users, and membership or
// ownership records with temporal validity.
package directory

import (
	"fmt"
	"strings"
	"time"

	"accessgate/internal/shared/biztime"
)

// GroupKind distinguishes the group subtypes. The subtype affects which
// catalog section applies to a group but not the decision algorithm.
type GroupKind string

const (
	GroupKindPlain GroupKind = "okta_group"
	GroupKindApp   GroupKind = "app_group"
	GroupKindRole  GroupKind = "role_group"
)

// AutoApproveTagName marks groups whose membership requests are always
// auto-approved.
const AutoApproveTagName = "AutoApprove"

// Tag is a label attached to a group.
type Tag struct {
	id   uint
	name string
}

// NewTag creates a tag with the given name.
func NewTag(name string) (Tag, error) {
	if strings.TrimSpace(name) == "" {
		return Tag{}, fmt.Errorf("tag name is required")
	}
	return Tag{name: name}, nil
}

// ReconstructTag reconstructs a tag from persistence.
func ReconstructTag(id uint, name string) Tag {
	return Tag{id: id, name: name}
}

func (t Tag) ID() uint     { return t.id }
func (t Tag) Name() string { return t.name }

// Group represents an access-control group. Name is the unique, stable key
// used for catalog and tag lookups.
type Group struct {
	id        uint
	name      string
	kind      GroupKind
	appName   string
	tags      []Tag
	deletedAt *time.Time
	createdAt time.Time
	updatedAt time.Time
}

// NewGroup creates a new group of the given kind.
func NewGroup(name string, kind GroupKind) (*Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("group name is required")
	}
	switch kind {
	case GroupKindPlain, GroupKindApp, GroupKindRole:
	default:
		return nil, fmt.Errorf("unknown group kind %q", kind)
	}

	now := biztime.NowUTC()
	return &Group{
		name:      name,
		kind:      kind,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructGroup reconstructs a group from persistence.
func ReconstructGroup(
	id uint,
	name string,
	kind GroupKind,
	appName string,
	tags []Tag,
	deletedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Group {
	return &Group{
		id:        id,
		name:      name,
		kind:      kind,
		appName:   appName,
		tags:      tags,
		deletedAt: deletedAt,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (g *Group) ID() uint              { return g.id }
func (g *Group) Name() string          { return g.name }
func (g *Group) Kind() GroupKind       { return g.kind }
func (g *Group) Tags() []Tag           { return g.tags }
func (g *Group) DeletedAt() *time.Time { return g.deletedAt }
func (g *Group) CreatedAt() time.Time  { return g.createdAt }
func (g *Group) UpdatedAt() time.Time  { return g.updatedAt }

// AppName returns the backing app name for app-backed groups, empty otherwise.
func (g *Group) AppName() string { return g.appName }

// SetID sets the group ID (only for persistence layer use)
func (g *Group) SetID(id uint) { g.id = id }

// IsDeleted reports whether the group is soft-deleted.
func (g *Group) IsDeleted() bool { return g.deletedAt != nil }

// HasTag reports whether the group carries a tag with the given name.
func (g *Group) HasTag(name string) bool {
	for _, tag := range g.tags {
		if tag.Name() == name {
			return true
		}
	}
	return false
}
