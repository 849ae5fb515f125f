package access

import "context"

// IncidentAssignee identifies one person assigned to an incident.
type IncidentAssignee struct {
	Name string
	ID   string
}

// Incident is one active incident matched against a group name.
type Incident struct {
	ID             string
	Title          string
	HTMLURL        string
	Assignees      []IncidentAssignee
	AssigneeEmails []string
}

// IncidentMatches is the result of an incident lookup: the matching
// incidents, plus the de-duplicated assignees and assignee emails across all
// of them.
type IncidentMatches struct {
	Incidents      []Incident
	Assignees      []IncidentAssignee
	AssigneeEmails []string
}

// HasMatches reports whether any incident matched.
func (m *IncidentMatches) HasMatches() bool {
	return m != nil && len(m.Incidents) > 0
}

// HasAssigneeEmail reports whether identity is among the matched assignee
// emails.
func (m *IncidentMatches) HasAssigneeEmail(identity string) bool {
	if m == nil {
		return false
	}
	for _, email := range m.AssigneeEmails {
		if email == identity {
			return true
		}
	}
	return false
}

// Titles returns the incident titles for use in approval reasons.
func (m *IncidentMatches) Titles() []string {
	if m == nil {
		return nil
	}
	titles := make([]string, 0, len(m.Incidents))
	for _, incident := range m.Incidents {
		titles = append(titles, incident.Title)
	}
	return titles
}

// IncidentLookup resolves a requester to the incident tracker and queries
// their active incidents. Implementations degrade on transport failure;
// callers must treat errors as "no incidents", never as fatal.
type IncidentLookup interface {
	// LookupUserID resolves a username to the tracker's user ID. Returns an
	// empty ID without error when no user matches.
	LookupUserID(ctx context.Context, username string) (string, error)

	// ActiveIncidents returns the user's active incidents whose service
	// summary or title contains matchString case-insensitively.
	ActiveIncidents(ctx context.Context, userID, matchString string) (*IncidentMatches, error)
}
