// Package access implements evaluation of pending membership requests: the
// ordered auto-approval rule engine and the use case that drives it.
package access

import (
	"context"
	"fmt"
	"strings"

	directoryApp "accessgate/internal/application/directory"
	accessDomain "accessgate/internal/domain/access"
	catalogDomain "accessgate/internal/domain/catalog"
	directoryDomain "accessgate/internal/domain/directory"
	"accessgate/internal/shared/logger"
)

// AutoApprovedGroupName is the group whose membership requests are always
// auto-approved by name.
const AutoApprovedGroupName = "Auto-Approved-Group"

// Resolution reasons recorded on auto-decided requests.
const (
	ReasonOwnershipRejected  = "Requests for Group Ownership are configured through the services YAMLs"
	ReasonNamedGroup         = "Group membership auto-approved"
	ReasonTag                = "Group membership auto-approved by Tag"
	ReasonSelfOwner          = "Group membership auto-approved by because requester is Access Group owner"
	ReasonNonSensitiveAccess = "Group membership auto-approved by because non_sensitive_access auto approval is enabled on access_control"
	ReasonSystemOwners       = "Group membership auto-approved by because system_owners auto approval is enabled on access_control"
	reasonEmergencyAccessFmt = "Group membership auto-approved by active PagerDuty Incident(s): %s"
)

// DecisionEngine evaluates a membership request against the auto-approval
// rules in strict priority order; the first matching rule settles the
// decision. A nil result means no rule matched and the request defers to
// manual review.
type DecisionEngine struct {
	membershipRepo directoryDomain.MembershipRepository
	members        *directoryApp.MemberResolver
	incidents      IncidentLookup
	logger         logger.Interface
}

// NewDecisionEngine creates a decision engine.
func NewDecisionEngine(
	membershipRepo directoryDomain.MembershipRepository,
	members *directoryApp.MemberResolver,
	incidents IncidentLookup,
	logger logger.Interface,
) *DecisionEngine {
	return &DecisionEngine{
		membershipRepo: membershipRepo,
		members:        members,
		incidents:      incidents,
		logger:         logger,
	}
}

// Evaluate runs the rule chain for a membership request. Ownership requests
// are out of scope here and must be rejected by the caller before evaluation.
// docs is the current catalog snapshot; when the group has no catalog entry,
// the catalog-backed rules are disabled and only the name, tag, and self-owner
// rules can fire. Store and incident read failures degrade the affected rule
// to not-matched; the request then falls through to the remaining rules or to
// manual review. EndingAt on an approval is the requested expiry unchanged.
func (e *DecisionEngine) Evaluate(
	ctx context.Context,
	request *accessDomain.Request,
	group *directoryDomain.Group,
	requester *directoryDomain.User,
	docs []*catalogDomain.Document,
) (*accessDomain.Decision, error) {
	if strings.TrimSpace(request.RequestReason()) == "" {
		e.logger.Infow("request has no reason, deferring to manual review", "request_id", request.ID())
		return nil, nil
	}

	if group.Name() == AutoApprovedGroupName {
		return e.approve(request, ReasonNamedGroup), nil
	}

	if group.HasTag(directoryDomain.AutoApproveTagName) {
		return e.approve(request, ReasonTag), nil
	}

	if e.requesterOwnsGroup(ctx, group, requester) {
		return e.approve(request, ReasonSelfOwner), nil
	}

	entry := catalogDomain.FindFirstMatch(docs, group.Name())
	if entry == nil {
		e.logger.Debugw("no catalog entry for group, catalog rules disabled",
			"group_name", group.Name())
		return nil, nil
	}

	nonSensitive := entry.NonSensitiveAccess()
	if nonSensitive.Enabled && e.policyAllows(ctx, nonSensitive, requester) {
		return e.approve(request, ReasonNonSensitiveAccess), nil
	}

	if decision := e.evaluateEmergencyAccess(ctx, request, group, requester, entry); decision != nil {
		return decision, nil
	}

	systemOwners := entry.SystemOwners()
	if systemOwners.Enabled && e.policyAllows(ctx, systemOwners, requester) {
		return e.approve(request, ReasonSystemOwners), nil
	}

	return nil, nil
}

// evaluateEmergencyAccess fires when the requester is actively assigned to an
// incident matching the group and the catalog pre-authorizes them for
// emergency access. Incident lookup failures degrade to "no incidents"; they
// never abort the remaining rules.
func (e *DecisionEngine) evaluateEmergencyAccess(
	ctx context.Context,
	request *accessDomain.Request,
	group *directoryDomain.Group,
	requester *directoryDomain.User,
	entry *catalogDomain.ServiceEntry,
) *accessDomain.Decision {
	incidentUserID, err := e.incidents.LookupUserID(ctx, requester.Identity())
	if err != nil {
		e.logger.Warnw("incident user lookup failed, skipping emergency access rule",
			"requester", requester.Identity(), "error", err)
		return nil
	}
	if incidentUserID == "" {
		return nil
	}

	matches, err := e.incidents.ActiveIncidents(ctx, incidentUserID, group.Name())
	if err != nil {
		e.logger.Warnw("incident lookup failed, skipping emergency access rule",
			"requester", requester.Identity(), "group_name", group.Name(), "error", err)
		return nil
	}
	if !matches.HasMatches() {
		return nil
	}
	if !matches.HasAssigneeEmail(requester.Identity()) && !matches.HasAssigneeEmail(requester.Email()) {
		return nil
	}

	emergency := entry.EmergencyAccess()
	if !emergency.Enabled {
		return nil
	}
	if !e.policyAllows(ctx, emergency, requester) {
		return nil
	}

	reason := fmt.Sprintf(reasonEmergencyAccessFmt, strings.Join(matches.Titles(), ", "))
	return e.approve(request, reason)
}

// policyAllows reports whether the requester is in the policy block's member
// union: its listed users plus the expanded active members of its listed
// groups. Both the requester's identity and email are accepted. A failed
// member expansion treats the block as not matched.
func (e *DecisionEngine) policyAllows(
	ctx context.Context,
	block catalogDomain.PolicyBlock,
	requester *directoryDomain.User,
) bool {
	identity := requester.Identity()
	email := requester.Email()

	for _, user := range block.OktaUsers {
		if user == identity || user == email {
			return true
		}
	}

	if len(block.OktaGroups) == 0 {
		return false
	}
	emails, err := e.members.MemberEmails(ctx, block.OktaGroups)
	if err != nil {
		e.logger.Warnw("member expansion failed, treating policy block as not matched",
			"groups", block.OktaGroups, "error", err)
		return false
	}
	return emails[identity] || emails[email]
}

// requesterOwnsGroup reports whether the requester actively owns the group.
// A failed lookup skips the rule rather than aborting the chain.
func (e *DecisionEngine) requesterOwnsGroup(
	ctx context.Context,
	group *directoryDomain.Group,
	requester *directoryDomain.User,
) bool {
	ownedNames, err := e.membershipRepo.ListOwnedGroupNames(ctx, requester.ID())
	if err != nil {
		e.logger.Warnw("owned groups lookup failed, skipping owner rule",
			"requester_id", requester.ID(), "error", err)
		return false
	}
	for _, name := range ownedNames {
		if name == group.Name() {
			return true
		}
	}
	return false
}

func (e *DecisionEngine) approve(request *accessDomain.Request, reason string) *accessDomain.Decision {
	return &accessDomain.Decision{
		Approved: true,
		Reason:   reason,
		EndingAt: request.RequestEndingAt(),
	}
}
