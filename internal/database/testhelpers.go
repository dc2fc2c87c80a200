package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/domain"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/score"
)

// CreateTestUser inserts a user with the given handle and score and
// default values for everything else.
func CreateTestUser(t *testing.T, repo *UserRepo, handle string, points int) *domain.User {
	t.Helper()

	user, err := repo.Upsert(context.Background(), domain.UpsertUserParams{
		Handle:       handle,
		DisplayName:  "Test " + handle,
		AvatarURL:    "https://example.com/" + handle + ".png",
		TotalTweets:  100,
		TweetCount:   points,
		Score:        points,
		Rank:         score.RankFor(points).Name,
		ReferralCode: score.NewReferralCode(),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, user.ID)

	return user
}
