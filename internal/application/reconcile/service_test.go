package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	directoryApp "accessgate/internal/application/directory"
	catalogDomain "accessgate/internal/domain/catalog"
	"accessgate/internal/infrastructure/persistence/models"
	"accessgate/internal/infrastructure/repository"
	sharedDb "accessgate/internal/shared/db"
	"accessgate/internal/shared/logger"
)

type fixture struct {
	db      *gorm.DB
	service *Service
}

func newFixture(t *testing.T, locker Locker) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.UserModel{},
		&models.GroupModel{},
		&models.TagModel{},
		&models.MembershipModel{},
	))

	log := logger.NewLogger()
	groupRepo := repository.NewGroupRepository(db, log)
	userRepo := repository.NewUserRepository(db, log)
	membershipRepo := repository.NewMembershipRepository(db, log)
	members := directoryApp.NewMemberResolver(groupRepo, membershipRepo, log)
	tx := sharedDb.NewTransactionManager(db)

	return &fixture{
		db:      db,
		service: NewService(groupRepo, userRepo, membershipRepo, members, tx, locker, 0, log),
	}
}

func (f *fixture) seedUser(t *testing.T, email string) *models.UserModel {
	t.Helper()
	user := &models.UserModel{Email: email}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *fixture) seedGroup(t *testing.T, name string) *models.GroupModel {
	t.Helper()
	group := &models.GroupModel{Name: name, Kind: "okta_group"}
	require.NoError(t, f.db.Create(group).Error)
	return group
}

func (f *fixture) seedOwner(t *testing.T, groupID, userID uint, endedAt *time.Time) *models.MembershipModel {
	t.Helper()
	m := &models.MembershipModel{
		GroupID:   groupID,
		UserID:    userID,
		IsOwner:   true,
		StartedAt: time.Now().UTC().Add(-time.Hour),
		EndedAt:   endedAt,
	}
	require.NoError(t, f.db.Create(m).Error)
	return m
}

func (f *fixture) activeOwnerEmails(t *testing.T, groupID uint) []string {
	t.Helper()
	var emails []string
	err := f.db.Model(&models.MembershipModel{}).
		Joins("JOIN users ON users.id = user_group_memberships.user_id").
		Where("user_group_memberships.group_id = ? AND user_group_memberships.is_owner = ?", groupID, true).
		Where("user_group_memberships.ended_at IS NULL OR user_group_memberships.ended_at > ?", time.Now().UTC()).
		Pluck("users.email", &emails).Error
	require.NoError(t, err)
	return emails
}

func directEntry(mapping string, ownerUsers []string, ownerGroups []string) *catalogDomain.Document {
	return &catalogDomain.Document{
		AWSServices: []*catalogDomain.ServiceEntry{{
			Name:             "svc",
			OktaGroupMapping: mapping,
			AccessRules: &catalogDomain.AccessRules{
				AutoApproval: &catalogDomain.AutoApproval{
					SystemOwners: &catalogDomain.PolicyBlock{
						Enabled:    true,
						OktaUsers:  ownerUsers,
						OktaGroups: ownerGroups,
					},
				},
			},
		}},
	}
}

func TestServiceConvergence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	group := f.seedGroup(t, "APP_AWS_SSO_PAYROLL")
	f.seedUser(t, "a@example.com")
	b := f.seedUser(t, "b@example.com")
	c := f.seedUser(t, "c@example.com")
	f.seedOwner(t, group.ID, b.ID, nil)
	f.seedOwner(t, group.ID, c.ID, nil)

	docs := []*catalogDomain.Document{
		directEntry("APP_AWS_SSO_PAYROLL", []string{"a@example.com", "b@example.com"}, nil),
	}

	summary, err := f.service.Run(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 1, summary.Removed)
	assert.Equal(t, 1, summary.Unchanged)
	assert.ElementsMatch(t,
		[]string{"a@example.com", "b@example.com"},
		f.activeOwnerEmails(t, group.ID))

	t.Run("second run is a no-op", func(t *testing.T) {
		summary, err := f.service.Run(ctx, docs)
		require.NoError(t, err)
		assert.Zero(t, summary.Added)
		assert.Zero(t, summary.Removed)
		assert.Equal(t, 2, summary.Unchanged)
	})
}

func TestServiceReactivatesEndedRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	group := f.seedGroup(t, "APP_AWS_SSO_PAYROLL")
	alice := f.seedUser(t, "alice@example.com")
	past := time.Now().UTC().Add(-time.Minute)
	ended := f.seedOwner(t, group.ID, alice.ID, &past)

	docs := []*catalogDomain.Document{
		directEntry("APP_AWS_SSO_PAYROLL", []string{"alice@example.com"}, nil),
	}

	summary, err := f.service.Run(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)

	// The existing record is reopened, not duplicated.
	var count int64
	require.NoError(t, f.db.Model(&models.MembershipModel{}).
		Where("group_id = ? AND user_id = ? AND is_owner = ?", group.ID, alice.ID, true).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var reloaded models.MembershipModel
	require.NoError(t, f.db.First(&reloaded, ended.ID).Error)
	assert.Nil(t, reloaded.EndedAt)
}

func TestServiceExpandsOwnerGroups(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	target := f.seedGroup(t, "APP_TG_billing.internal")
	admins := f.seedGroup(t, "Billing-Admins")
	alice := f.seedUser(t, "alice@example.com")
	f.db.Create(&models.MembershipModel{
		GroupID:   admins.ID,
		UserID:    alice.ID,
		IsOwner:   false,
		StartedAt: time.Now().UTC().Add(-time.Hour),
	})

	docs := []*catalogDomain.Document{{
		TwingateServices: []*catalogDomain.ServiceEntry{{
			Name:     "billing-gw",
			Hostname: "billing.internal",
			AccessRules: &catalogDomain.AccessRules{
				AutoApproval: &catalogDomain.AutoApproval{
					SystemOwners: &catalogDomain.PolicyBlock{
						Enabled:    true,
						OktaUsers:  []string{"bob@example.com"},
						OktaGroups: []string{"Billing-Admins", "No-Such-Group"},
					},
				},
			},
		}},
	}}

	f.seedUser(t, "bob@example.com")

	summary, err := f.service.Run(ctx, docs)
	require.NoError(t, err)
	// Alice via group expansion, bob via the user list; the missing
	// referenced group contributes nothing.
	assert.Equal(t, 2, summary.Added)
	assert.ElementsMatch(t,
		[]string{"alice@example.com", "bob@example.com"},
		f.activeOwnerEmails(t, target.ID))
}

func TestServiceSkipsAndTolerates(t *testing.T) {
	ctx := context.Background()

	t.Run("missing target group is skipped", func(t *testing.T) {
		f := newFixture(t, nil)
		docs := []*catalogDomain.Document{
			directEntry("APP_AWS_SSO_ABSENT", []string{"a@example.com"}, nil),
		}

		summary, err := f.service.Run(ctx, docs)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Skipped)
		assert.Zero(t, summary.Added)
	})

	t.Run("unknown owner email is a no-op for that owner", func(t *testing.T) {
		f := newFixture(t, nil)
		group := f.seedGroup(t, "APP_AWS_SSO_PAYROLL")
		f.seedUser(t, "known@example.com")

		docs := []*catalogDomain.Document{
			directEntry("APP_AWS_SSO_PAYROLL", []string{"ghost@example.com", "known@example.com"}, nil),
		}

		summary, err := f.service.Run(ctx, docs)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Added)
		assert.ElementsMatch(t, []string{"known@example.com"}, f.activeOwnerEmails(t, group.ID))
	})

	t.Run("entry whose lock is held is skipped", func(t *testing.T) {
		f := newFixture(t, heldLocker{})
		f.seedGroup(t, "APP_AWS_SSO_PAYROLL")
		f.seedUser(t, "a@example.com")

		docs := []*catalogDomain.Document{
			directEntry("APP_AWS_SSO_PAYROLL", []string{"a@example.com"}, nil),
		}

		summary, err := f.service.Run(ctx, docs)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Skipped)
		assert.Zero(t, summary.Added)
	})
}

type heldLocker struct{}

func (heldLocker) TryAcquire(context.Context, string) (bool, error) { return false, nil }
func (heldLocker) Release(context.Context, string) error { return nil }
