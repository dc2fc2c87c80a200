package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/domain"
)

func TestUserRepo_UpsertCreatesUser(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	ctx := context.Background()

	user, err := repo.Upsert(ctx, domain.UpsertUserParams{
		Handle:       "alice",
		DisplayName:  "Alice",
		AvatarURL:    "https://example.com/alice.png",
		TotalTweets:  420,
		TweetCount:   3,
		MentionCount: 2,
		HashtagCount: 1,
		Score:        4,
		Rank:         "ETHMumbai Explorer",
		ReferralCode: "c0123456789abcdef0123456",
		ReferredBy:   "",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "alice", user.Handle)
	assert.Equal(t, "Alice", user.DisplayName)
	assert.Equal(t, 4, user.Score)
	assert.Equal(t, "ETHMumbai Explorer", user.Rank)
	assert.Equal(t, "c0123456789abcdef0123456", user.ReferralCode)
	assert.Zero(t, user.ReferralCount)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserRepo_UpsertPreservesReferralFields(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	ctx := context.Background()

	created := CreateTestUser(t, repo, "alice", 4)

	_, err := repo.IncrementReferralCount(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, repo.SetReferralBonus(ctx, created.ID, 1))

	// A fresh analysis must not touch referral state.
	updated, err := repo.Upsert(ctx, domain.UpsertUserParams{
		Handle:       "alice",
		DisplayName:  "Alice Updated",
		Score:        10,
		Rank:         "ETHMumbai Fan",
		ReferralCode: "cffffffffffffffffffffffff",
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Alice Updated", updated.DisplayName)
	assert.Equal(t, 10, updated.Score)
	assert.Equal(t, created.ReferralCode, updated.ReferralCode)
	assert.Equal(t, 1, updated.ReferralCount)
	assert.Equal(t, 1, updated.ReferralBonus)
}

func TestUserRepo_GetByHandle(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	ctx := context.Background()

	created := CreateTestUser(t, repo, "alice", 4)

	user, err := repo.GetByHandle(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = repo.GetByHandle(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepo_GetByReferralCode(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	ctx := context.Background()

	created := CreateTestUser(t, repo, "alice", 4)

	user, err := repo.GetByReferralCode(ctx, created.ReferralCode)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = repo.GetByReferralCode(ctx, "cdeadbeefdeadbeefdeadbeef")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepo_ListOrdersByScore(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	ctx := context.Background()

	CreateTestUser(t, repo, "low", 1)
	CreateTestUser(t, repo, "high", 50)
	CreateTestUser(t, repo, "mid", 20)

	users, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "high", users[0].Handle)
	assert.Equal(t, "mid", users[1].Handle)
	assert.Equal(t, "low", users[2].Handle)

	// Pagination
	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "mid", page[0].Handle)
}

func TestUserRepo_Counts(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	ctx := context.Background()

	CreateTestUser(t, repo, "low", 1)
	CreateTestUser(t, repo, "mid", 20)
	CreateTestUser(t, repo, "high", 50)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	ahead, err := repo.CountScoreGreaterThan(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, ahead)

	ahead, err = repo.CountScoreGreaterThan(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, ahead)
}

func TestUserRepo_IncrementReferralCount(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	ctx := context.Background()

	created := CreateTestUser(t, repo, "alice", 4)

	count, err := repo.IncrementReferralCount(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.IncrementReferralCount(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = repo.IncrementReferralCount(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepo_SetReferralBonus(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	ctx := context.Background()

	created := CreateTestUser(t, repo, "alice", 4)

	require.NoError(t, repo.SetReferralBonus(ctx, created.ID, 15))

	user, err := repo.GetByHandle(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 15, user.ReferralBonus)

	err = repo.SetReferralBonus(ctx, uuid.New(), 5)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
