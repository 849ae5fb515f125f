// Package directory provides membership expansion services over the group
// store, shared by request evaluation and owner reconciliation.
package directory

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	directoryDomain "accessgate/internal/domain/directory"
	apperrors "accessgate/internal/shared/errors"
	"accessgate/internal/shared/logger"
)

// MemberResolver expands group references from catalog policy blocks into the
// active members of those groups. A referenced group absent from the store
// contributes no members; a misconfigured catalog must not halt evaluation of
// unrelated requests.
type MemberResolver struct {
	groupRepo      directoryDomain.GroupRepository
	membershipRepo directoryDomain.MembershipRepository
	logger         logger.Interface
}

// NewMemberResolver creates a member resolver.
func NewMemberResolver(
	groupRepo directoryDomain.GroupRepository,
	membershipRepo directoryDomain.MembershipRepository,
	logger logger.Interface,
) *MemberResolver {
	return &MemberResolver{
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		logger:         logger,
	}
}

// ActiveMembers returns the users behind the active non-owner memberships of
// the named group. A missing or deleted group yields an empty slice with a log
// line, not an error.
func (r *MemberResolver) ActiveMembers(ctx context.Context, groupName string) ([]*directoryDomain.User, error) {
	group, err := r.groupRepo.GetActiveByName(ctx, groupName)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			r.logger.Warnw("referenced group not found, treating as empty", "group_name", groupName)
			return nil, nil
		}
		return nil, err
	}

	records, err := r.membershipRepo.ListActiveMemberships(ctx, group.ID())
	if err != nil {
		return nil, err
	}

	users := make([]*directoryDomain.User, 0, len(records))
	for _, record := range records {
		if record.User() != nil {
			users = append(users, record.User())
		}
	}
	return users, nil
}

// ExpandMembers returns the union of active members across the named groups,
// de-duplicated by user ID. Groups are expanded concurrently; the union is
// order-independent.
func (r *MemberResolver) ExpandMembers(ctx context.Context, groupNames []string) ([]*directoryDomain.User, error) {
	var (
		mu     sync.Mutex
		seen   = map[uint]bool{}
		result []*directoryDomain.User
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range groupNames {
		g.Go(func() error {
			users, err := r.ActiveMembers(ctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, user := range users {
				if seen[user.ID()] {
					continue
				}
				seen[user.ID()] = true
				result = append(result, user)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// MemberEmails returns the email set of the union of active members across
// the named groups.
func (r *MemberResolver) MemberEmails(ctx context.Context, groupNames []string) (map[string]bool, error) {
	users, err := r.ExpandMembers(ctx, groupNames)
	if err != nil {
		return nil, err
	}
	emails := make(map[string]bool, len(users))
	for _, user := range users {
		emails[user.Email()] = true
	}
	return emails, nil
}
