package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trend-social/trend-backend/internal/models"
	"gorm.io/gorm"
)

func TestBlockCreateRemovesFollowsBothDirections(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	blockRepo := NewBlockRepository(db.DB)
	followRepo := NewFollowRepository(db.DB)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, followRepo.Create(ctx, &models.Follow{FollowerID: alice.ID, FollowingID: bob.ID}))
	require.NoError(t, followRepo.Create(ctx, &models.Follow{FollowerID: bob.ID, FollowingID: alice.ID}))

	require.NoError(t, blockRepo.Create(ctx, &models.Block{BlockerID: alice.ID, BlockedID: bob.ID}))

	var followCount int64
	require.NoError(t, db.DB.Model(&models.Follow{}).Count(&followCount).Error)
	assert.Zero(t, followCount)

	exists, err := blockRepo.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestBlockCreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	blockRepo := NewBlockRepository(db.DB)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, blockRepo.Create(ctx, &models.Block{BlockerID: alice.ID, BlockedID: bob.ID}))

	err := blockRepo.Create(ctx, &models.Block{BlockerID: alice.ID, BlockedID: bob.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestBlockDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	blockRepo := NewBlockRepository(db.DB)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, blockRepo.Create(ctx, &models.Block{BlockerID: alice.ID, BlockedID: bob.ID}))

	deleted, err := blockRepo.Delete(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = blockRepo.Delete(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestExclusionSetIsSymmetric(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	blockRepo := NewBlockRepository(db.DB)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	require.NoError(t, blockRepo.Create(ctx, &models.Block{BlockerID: alice.ID, BlockedID: bob.ID}))
	require.NoError(t, blockRepo.Create(ctx, &models.Block{BlockerID: carol.ID, BlockedID: alice.ID}))

	excluded, err := blockRepo.ExclusionSet(ctx, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{bob.ID, carol.ID}, excluded)

	excluded, err = blockRepo.ExclusionSet(ctx, bob.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{alice.ID}, excluded)

	excluded, err = blockRepo.ExclusionSet(ctx, carol.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{alice.ID}, excluded)
}
