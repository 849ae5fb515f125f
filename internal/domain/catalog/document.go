// Package catalog models the declarative service catalog: per-service policy
// documents that define which groups and users are granted auto-approval
// privileges, and the matching rules that resolve an access-control group to
// its catalog entry.
package catalog

// PolicyBlock is one auto-approval policy inside a service entry. A missing
// block behaves as disabled with no members.
type PolicyBlock struct {
	Enabled    bool     `yaml:"enabled"`
	OktaGroups []string `yaml:"okta_groups"`
	OktaUsers  []string `yaml:"okta_users"`
}

// AutoApproval groups the policy blocks that live under
// access_rules.auto_approval in the source YAML.
type AutoApproval struct {
	NonSensitiveAccess *PolicyBlock `yaml:"non_sensitive_access"`
	SystemOwners       *PolicyBlock `yaml:"system_owners"`
}

// AccessRules is the access_rules section of a service entry. Emergency
// access sits beside auto_approval, not inside it.
type AccessRules struct {
	AutoApproval    *AutoApproval `yaml:"auto_approval"`
	EmergencyAccess *PolicyBlock  `yaml:"emergency_access"`
}

// ServiceEntry is one managed service in the catalog. Direct-family entries
// are keyed by OktaGroupMapping, gateway-family entries by Hostname.
type ServiceEntry struct {
	Name             string       `yaml:"name"`
	OktaGroupMapping string       `yaml:"okta_group_mapping"`
	Hostname         string       `yaml:"hostname"`
	AccessRules      *AccessRules `yaml:"access_rules"`
}

// NonSensitiveAccess returns the non_sensitive_access policy block,
// zero-valued when any level of the nesting is absent.
func (e *ServiceEntry) NonSensitiveAccess() PolicyBlock {
	if e == nil || e.AccessRules == nil || e.AccessRules.AutoApproval == nil ||
		e.AccessRules.AutoApproval.NonSensitiveAccess == nil {
		return PolicyBlock{}
	}
	return *e.AccessRules.AutoApproval.NonSensitiveAccess
}

// SystemOwners returns the system_owners policy block, zero-valued when any
// level of the nesting is absent.
func (e *ServiceEntry) SystemOwners() PolicyBlock {
	if e == nil || e.AccessRules == nil || e.AccessRules.AutoApproval == nil ||
		e.AccessRules.AutoApproval.SystemOwners == nil {
		return PolicyBlock{}
	}
	return *e.AccessRules.AutoApproval.SystemOwners
}

// EmergencyAccess returns the emergency_access policy block, zero-valued when
// any level of the nesting is absent.
func (e *ServiceEntry) EmergencyAccess() PolicyBlock {
	if e == nil || e.AccessRules == nil || e.AccessRules.EmergencyAccess == nil {
		return PolicyBlock{}
	}
	return *e.AccessRules.EmergencyAccess
}

// Document is one YAML document of the catalog source. A source stream may
// contain zero, one, or many documents; both families may appear in any of
// them.
type Document struct {
	AWSServices      []*ServiceEntry `yaml:"aws_services"`
	TwingateServices []*ServiceEntry `yaml:"twingate_services"`
}

// Entries returns the entries of the given family in document order.
func (d *Document) Entries(family Family) []*ServiceEntry {
	switch family {
	case FamilyDirect:
		return d.AWSServices
	case FamilyGateway:
		return d.TwingateServices
	default:
		return nil
	}
}
