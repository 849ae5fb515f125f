package catalog

import (
	"fmt"
	"strings"
)

// Family identifies how entries of a catalog section are matched against an
// access-control group name.
type Family string

const (
	// FamilyDirect entries map to groups by exact okta_group_mapping match.
	FamilyDirect Family = "aws_services"
	// FamilyGateway entries map to groups derived from the entry hostname.
	FamilyGateway Family = "twingate_services"
)

const (
	// DirectPrefix classifies group names into the direct family.
	DirectPrefix = "APP_AWS_SSO_"
	// GatewayPrefix classifies group names into the gateway family and is
	// prepended to a gateway entry's hostname to derive its group name.
	GatewayPrefix = "APP_TG_"
)

// ErrUnclassified is returned when a group name carries no recognized family
// prefix. Callers treat it as "no catalog entry", never as fatal.
var ErrUnclassified = fmt.Errorf("group name has no recognized catalog family prefix")

// Classify determines the catalog family for a group name by prefix. A name
// matches exactly one family; unrecognized prefixes are ErrUnclassified.
func Classify(groupName string) (Family, error) {
	switch {
	case strings.HasPrefix(groupName, DirectPrefix):
		return FamilyDirect, nil
	case strings.HasPrefix(groupName, GatewayPrefix):
		return FamilyGateway, nil
	default:
		return "", ErrUnclassified
	}
}

// GroupNameForEntry derives the access-control group name a catalog entry
// targets. Direct entries name their group outright; gateway entries get the
// fixed prefix in front of their hostname.
func GroupNameForEntry(family Family, entry *ServiceEntry) string {
	switch family {
	case FamilyGateway:
		return GatewayPrefix + entry.Hostname
	default:
		return entry.OktaGroupMapping
	}
}

// Matches reports whether the entry matches the group name under the family's
// matching rule. Gateway names are split into at most three tokens on "_";
// the remainder after the first two tokens must equal the hostname exactly.
func Matches(family Family, entry *ServiceEntry, groupName string) bool {
	switch family {
	case FamilyDirect:
		return entry.OktaGroupMapping == groupName
	case FamilyGateway:
		parts := strings.SplitN(groupName, "_", 3)
		return parts[len(parts)-1] == entry.Hostname
	default:
		return false
	}
}

// FindFirstMatch resolves a group name to its catalog entry. Entries are
// scanned across all documents in order and the first match wins; catalog
// authors are responsible for keeping keys unique, later duplicates are
// ignored. Returns nil when the name is unclassified or nothing matches.
func FindFirstMatch(docs []*Document, groupName string) *ServiceEntry {
	family, err := Classify(groupName)
	if err != nil {
		return nil
	}
	for _, doc := range docs {
		for _, entry := range doc.Entries(family) {
			if Matches(family, entry, groupName) {
				return entry
			}
		}
	}
	return nil
}
