// Package constants defines shared constant values.
package constants

// Database table names
const (
	TableUsers          = "users"
	TableGroups         = "groups"
	TableTags           = "tags"
	TableGroupTags      = "group_tags"
	TableMemberships    = "user_group_memberships"
	TableAccessRequests = "access_requests"
)
