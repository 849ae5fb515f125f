package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	accessDomain "accessgate/internal/domain/access"
	"accessgate/internal/domain/directory"
	"accessgate/internal/infrastructure/persistence/models"
	apperrors "accessgate/internal/shared/errors"
	"accessgate/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.UserModel{},
		&models.GroupModel{},
		&models.TagModel{},
		&models.MembershipModel{},
		&models.AccessRequestModel{},
	)
	require.NoError(t, err)

	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.UserModel {
	user := &models.UserModel{Email: email}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedGroup(t *testing.T, db *gorm.DB, name string, tags ...string) *models.GroupModel {
	group := &models.GroupModel{Name: name, Kind: string(directory.GroupKindPlain)}
	for _, tag := range tags {
		group.Tags = append(group.Tags, models.TagModel{Name: tag})
	}
	require.NoError(t, db.Create(group).Error)
	return group
}

func seedMembership(t *testing.T, db *gorm.DB, groupID, userID uint, isOwner bool, endedAt *time.Time) *models.MembershipModel {
	m := &models.MembershipModel{
		GroupID:   groupID,
		UserID:    userID,
		IsOwner:   isOwner,
		StartedAt: time.Now().UTC().Add(-time.Hour),
		EndedAt:   endedAt,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestGroupRepository_GetActiveByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db, logger.NewLogger())
	ctx := context.Background()

	seedGroup(t, db, "APP_AWS_SSO_PAYROLL", "AutoApprove")

	t.Run("finds group with tags", func(t *testing.T) {
		group, err := repo.GetActiveByName(ctx, "APP_AWS_SSO_PAYROLL")
		require.NoError(t, err)
		assert.Equal(t, "APP_AWS_SSO_PAYROLL", group.Name())
		assert.True(t, group.HasTag("AutoApprove"))
	})

	t.Run("unknown name is not found", func(t *testing.T) {
		_, err := repo.GetActiveByName(ctx, "APP_AWS_SSO_NOPE")
		assert.True(t, apperrors.IsNotFoundError(err))
	})

	t.Run("soft-deleted group is invisible", func(t *testing.T) {
		deleted := seedGroup(t, db, "APP_AWS_SSO_GONE")
		require.NoError(t, db.Delete(deleted).Error)

		_, err := repo.GetActiveByName(ctx, "APP_AWS_SSO_GONE")
		assert.True(t, apperrors.IsNotFoundError(err))
	})
}

func TestMembershipRepository_ListActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db, logger.NewLogger())
	ctx := context.Background()

	group := seedGroup(t, db, "APP_TG_billing.internal")
	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")
	carol := seedUser(t, db, "carol@example.com")

	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(time.Hour)

	seedMembership(t, db, group.ID, alice.ID, false, nil)
	seedMembership(t, db, group.ID, bob.ID, false, &past)    // ended member
	seedMembership(t, db, group.ID, carol.ID, true, &future) // owner, future end

	t.Run("active memberships exclude ended and owners", func(t *testing.T) {
		records, err := repo.ListActiveMemberships(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "alice@example.com", records[0].User().Email())
	})

	t.Run("future-ended ownership is still active", func(t *testing.T) {
		records, err := repo.ListActiveOwnerships(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "carol@example.com", records[0].User().Email())
	})
}

// sqlRecorder captures the SQL gorm executes so tests can assert on the
// generated statements.
type sqlRecorder struct {
	gormlogger.Interface
	sqls *[]string
}

func (r sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	*r.sqls = append(*r.sqls, sql)
}

func TestMembershipRepository_OwnedGroupNames(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db, logger.NewLogger())
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	owned := seedGroup(t, db, "APP_AWS_SSO_OWNED")
	member := seedGroup(t, db, "APP_AWS_SSO_MEMBER")
	deleted := seedGroup(t, db, "APP_AWS_SSO_DELETED")

	seedMembership(t, db, owned.ID, alice.ID, true, nil)
	seedMembership(t, db, member.ID, alice.ID, false, nil)
	seedMembership(t, db, deleted.ID, alice.ID, true, nil)
	require.NoError(t, db.Delete(deleted).Error)

	t.Run("returns only active owned groups", func(t *testing.T) {
		names, err := repo.ListOwnedGroupNames(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"APP_AWS_SSO_OWNED"}, names)
	})

	t.Run("quotes the groups table identifier", func(t *testing.T) {
		var sqls []string
		session := db.Session(&gorm.Session{Logger: sqlRecorder{Interface: db.Logger, sqls: &sqls}})
		recorded := NewMembershipRepository(session, logger.NewLogger())

		_, err := recorded.ListOwnedGroupNames(ctx, alice.ID)
		require.NoError(t, err)
		require.NotEmpty(t, sqls)
		assert.Contains(t, sqls[len(sqls)-1], "JOIN `groups`")
		assert.NotContains(t, sqls[len(sqls)-1], "JOIN groups ")
	})
}

func TestMembershipRepository_FindOwnershipRecord(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db, logger.NewLogger())
	ctx := context.Background()

	group := seedGroup(t, db, "APP_TG_db.internal")
	alice := seedUser(t, db, "alice@example.com")

	t.Run("missing row is not found", func(t *testing.T) {
		_, err := repo.FindOwnershipRecord(ctx, group.ID, alice.ID)
		assert.True(t, apperrors.IsNotFoundError(err))
	})

	t.Run("ended row is still returned", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Hour)
		seeded := seedMembership(t, db, group.ID, alice.ID, true, &past)

		record, err := repo.FindOwnershipRecord(ctx, group.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, record.ID())
		assert.NotNil(t, record.EndedAt())
	})

	t.Run("active row wins over ended duplicates", func(t *testing.T) {
		active := seedMembership(t, db, group.ID, alice.ID, true, nil)

		record, err := repo.FindOwnershipRecord(ctx, group.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, active.ID, record.ID())
		assert.Nil(t, record.EndedAt())
	})
}

func TestMembershipRepository_CreateAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db, logger.NewLogger())
	ctx := context.Background()

	group := seedGroup(t, db, "APP_TG_api.internal")
	alice := seedUser(t, db, "alice@example.com")

	record, err := directory.NewMembershipRecord(group.ID, alice.ID, true)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, record))
	assert.NotZero(t, record.ID())

	now := time.Now().UTC()
	record.End(now)
	require.NoError(t, repo.Update(ctx, record))

	found, err := repo.FindOwnershipRecord(ctx, group.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, found.EndedAt())
	assert.WithinDuration(t, now, *found.EndedAt(), time.Second)

	record.Reactivate()
	require.NoError(t, repo.Update(ctx, record))

	active, err := repo.ListActiveOwnerships(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestAccessRequestRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccessRequestRepository(db, logger.NewLogger())
	ctx := context.Background()

	group := seedGroup(t, db, "APP_AWS_SSO_PAYROLL")
	alice := seedUser(t, db, "alice@example.com")

	t.Run("round trip and resolution", func(t *testing.T) {
		ending := time.Now().UTC().Add(8 * time.Hour).Truncate(time.Second)
		request, err := accessDomain.NewRequest(alice.ID, group.ID, false, "oncall access", &ending)
		require.NoError(t, err)

		require.NoError(t, repo.Create(ctx, request))
		require.NotZero(t, request.ID())

		require.NoError(t, request.Approve("Group membership auto-approved"))
		require.NoError(t, repo.Update(ctx, request))

		found, err := repo.GetByID(ctx, request.ID())
		require.NoError(t, err)
		assert.False(t, found.IsPending())
		assert.Equal(t, "Group membership auto-approved", found.ResolutionReason())
		require.NotNil(t, found.RequestEndingAt())
		assert.WithinDuration(t, ending, *found.RequestEndingAt(), time.Second)
	})

	t.Run("missing request is not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		assert.True(t, apperrors.IsNotFoundError(err))
	})
}
