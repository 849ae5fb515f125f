// Package reconcile converges stored group ownership records with the
// expected owner sets declared in the service catalog.
package reconcile

import (
	"context"
	"time"

	directoryApp "accessgate/internal/application/directory"
	catalogDomain "accessgate/internal/domain/catalog"
	directoryDomain "accessgate/internal/domain/directory"
	"accessgate/internal/shared/biztime"
	apperrors "accessgate/internal/shared/errors"
	"accessgate/internal/shared/logger"
)

// Locker serializes reconciliation of one target group across worker
// instances.
type Locker interface {
	TryAcquire(ctx context.Context, groupName string) (bool, error)
	Release(ctx context.Context, groupName string) error
}

// Transactor runs a function inside a database transaction.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CatalogSource serves the current catalog snapshot.
type CatalogSource interface {
	Refresh(ctx context.Context)
	Documents(ctx context.Context) ([]*catalogDomain.Document, error)
}

// Summary is the outcome of one reconciliation pass.
type Summary struct {
	Added     int
	Removed   int
	Unchanged int
	// Skipped counts catalog entries that were not reconciled: missing target
	// group, lock held elsewhere, or a failure on the entry.
	Skipped int
}

// Service reconciles the owner roster of every catalog-managed group with the
// expected owner set derived from its system_owners block. A pass is
// idempotent and partial-failure tolerant: a failure on one owner or one
// entry is logged and the pass continues.
type Service struct {
	groupRepo      directoryDomain.GroupRepository
	userRepo       directoryDomain.UserRepository
	membershipRepo directoryDomain.MembershipRepository
	members        *directoryApp.MemberResolver
	tx             Transactor
	locker         Locker
	entryTimeout   time.Duration
	logger         logger.Interface
}

// NewService creates a reconciliation service. locker may be nil when the
// deployment runs a single worker; entryTimeout bounds the work on one
// catalog entry, zero means no bound.
func NewService(
	groupRepo directoryDomain.GroupRepository,
	userRepo directoryDomain.UserRepository,
	membershipRepo directoryDomain.MembershipRepository,
	members *directoryApp.MemberResolver,
	tx Transactor,
	locker Locker,
	entryTimeout time.Duration,
	logger logger.Interface,
) *Service {
	return &Service{
		groupRepo:      groupRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		members:        members,
		tx:             tx,
		locker:         locker,
		entryTimeout:   entryTimeout,
		logger:         logger,
	}
}

var families = []catalogDomain.Family{catalogDomain.FamilyDirect, catalogDomain.FamilyGateway}

// Run reconciles every entry of every document. The pass never aborts on a
// single entry; the summary reports what happened.
func (s *Service) Run(ctx context.Context, docs []*catalogDomain.Document) (*Summary, error) {
	summary := &Summary{}

	for _, doc := range docs {
		for _, family := range families {
			for _, entry := range doc.Entries(family) {
				if err := ctx.Err(); err != nil {
					return summary, err
				}
				s.reconcileEntry(ctx, family, entry, summary)
			}
		}
	}

	s.logger.Infow("reconciliation pass finished",
		"added", summary.Added,
		"removed", summary.Removed,
		"unchanged", summary.Unchanged,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// RunFromSource refreshes the catalog and reconciles against the resulting
// snapshot. A completely unreadable catalog aborts the pass; anything less
// degrades per entry.
func (s *Service) RunFromSource(ctx context.Context, source CatalogSource) (*Summary, error) {
	source.Refresh(ctx)
	docs, err := source.Documents(ctx)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, docs)
}

func (s *Service) reconcileEntry(ctx context.Context, family catalogDomain.Family, entry *catalogDomain.ServiceEntry, summary *Summary) {
	targetName := catalogDomain.GroupNameForEntry(family, entry)
	if targetName == "" {
		s.logger.Warnw("catalog entry has no target group, skipping",
			"family", family, "entry", entry.Name)
		summary.Skipped++
		return
	}

	if s.entryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.entryTimeout)
		defer cancel()
	}

	if s.locker != nil {
		acquired, err := s.locker.TryAcquire(ctx, targetName)
		if err != nil {
			s.logger.Errorw("failed to acquire reconcile lock, skipping entry",
				"group_name", targetName, "error", err)
			summary.Skipped++
			return
		}
		if !acquired {
			s.logger.Infow("reconcile lock held elsewhere, skipping entry", "group_name", targetName)
			summary.Skipped++
			return
		}
		defer func() {
			if err := s.locker.Release(ctx, targetName); err != nil {
				s.logger.Warnw("failed to release reconcile lock", "group_name", targetName, "error", err)
			}
		}()
	}

	group, err := s.groupRepo.GetActiveByName(ctx, targetName)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			// Reconciliation never creates groups.
			s.logger.Warnw("target group does not exist, skipping entry",
				"group_name", targetName, "entry", entry.Name)
		} else {
			s.logger.Errorw("failed to load target group, skipping entry",
				"group_name", targetName, "error", err)
		}
		summary.Skipped++
		return
	}

	expected, err := s.expectedOwnerEmails(ctx, entry)
	if err != nil {
		s.logger.Errorw("failed to compute expected owners, skipping entry",
			"group_name", targetName, "error", err)
		summary.Skipped++
		return
	}

	current, err := s.membershipRepo.ListActiveOwnerships(ctx, group.ID())
	if err != nil {
		s.logger.Errorw("failed to list current owners, skipping entry",
			"group_name", targetName, "error", err)
		summary.Skipped++
		return
	}

	currentByEmail := make(map[string]*directoryDomain.MembershipRecord, len(current))
	for _, record := range current {
		if record.User() != nil {
			currentByEmail[record.User().Email()] = record
		}
	}

	for email := range expected {
		if _, ok := currentByEmail[email]; ok {
			summary.Unchanged++
			continue
		}
		if s.addOwner(ctx, group, email) {
			summary.Added++
		}
	}

	now := biztime.NowUTC()
	for email, record := range currentByEmail {
		if expected[email] {
			continue
		}
		if s.removeOwner(ctx, group, record, email, now) {
			summary.Removed++
		}
	}
}

// expectedOwnerEmails computes the expected owner email set of an entry: the
// union of the system_owners user list and the active members of its listed
// groups. A missing referenced group contributes nothing.
func (s *Service) expectedOwnerEmails(ctx context.Context, entry *catalogDomain.ServiceEntry) (map[string]bool, error) {
	block := entry.SystemOwners()

	expected, err := s.members.MemberEmails(ctx, block.OktaGroups)
	if err != nil {
		return nil, err
	}
	for _, email := range block.OktaUsers {
		expected[email] = true
	}
	return expected, nil
}

// addOwner grants ownership to the user behind email, reusing a previously
// ended record when one exists instead of inserting a duplicate row. Returns
// whether an ownership was granted.
func (s *Service) addOwner(ctx context.Context, group *directoryDomain.Group, email string) bool {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			s.logger.Warnw("expected owner has no identity in the store, skipping",
				"group_name", group.Name(), "email", email)
		} else {
			s.logger.Errorw("failed to look up expected owner, skipping",
				"group_name", group.Name(), "email", email, "error", err)
		}
		return false
	}

	err = s.inTransaction(ctx, func(ctx context.Context) error {
		record, err := s.membershipRepo.FindOwnershipRecord(ctx, group.ID(), user.ID())
		switch {
		case err == nil:
			record.Reactivate()
			return s.membershipRepo.Update(ctx, record)
		case apperrors.IsNotFoundError(err):
			record, err := directoryDomain.NewMembershipRecord(group.ID(), user.ID(), true)
			if err != nil {
				return err
			}
			return s.membershipRepo.Create(ctx, record)
		default:
			return err
		}
	})
	if err != nil {
		s.logger.Errorw("failed to add owner, continuing",
			"group_name", group.Name(), "email", email, "error", err)
		return false
	}

	s.logger.Infow("added owner", "group_name", group.Name(), "email", email)
	return true
}

// removeOwner ends the ownership record at now. Records are never deleted.
func (s *Service) removeOwner(ctx context.Context, group *directoryDomain.Group, record *directoryDomain.MembershipRecord, email string, now time.Time) bool {
	err := s.inTransaction(ctx, func(ctx context.Context) error {
		record.End(now)
		return s.membershipRepo.Update(ctx, record)
	})
	if err != nil {
		s.logger.Errorw("failed to remove owner, continuing",
			"group_name", group.Name(), "email", email, "error", err)
		return false
	}

	s.logger.Infow("removed owner", "group_name", group.Name(), "email", email)
	return true
}

func (s *Service) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.RunInTransaction(ctx, fn)
}
