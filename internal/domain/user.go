package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the persisted record for a checked Twitter handle. Handle and
// ReferralCode are unique across all users.
type User struct {
	ID            uuid.UUID `db:"id"`
	Handle        string    `db:"handle"`
	DisplayName   string    `db:"display_name"`
	AvatarURL     string    `db:"avatar_url"`
	TotalTweets   int       `db:"total_tweets"`
	TweetCount    int       `db:"tweet_count"` // ETHMumbai-related tweets
	MentionCount  int       `db:"mention_count"`
	HashtagCount  int       `db:"hashtag_count"`
	Score         int       `db:"score"`
	Rank          string    `db:"rank"`
	ReferralCode  string    `db:"referral_code"`
	ReferralCount int       `db:"referral_count"`
	ReferralBonus int       `db:"referral_bonus"`
	ReferredBy    string    `db:"referred_by"` // referrer's code, empty if none
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// UpsertUserParams carries the fields written on every check. Referral
// fields are only applied on insert; an existing row keeps its code and
// counters.
type UpsertUserParams struct {
	Handle       string
	DisplayName  string
	AvatarURL    string
	TotalTweets  int
	TweetCount   int
	MentionCount int
	HashtagCount int
	Score        int
	Rank         string
	ReferralCode string
	ReferredBy   string
}

// UserRepository is the persistence contract consumed by the orchestrator.
// The store is the source of truth; all caches are derived from it.
type UserRepository interface {
	GetByHandle(ctx context.Context, handle string) (*User, error)
	GetByReferralCode(ctx context.Context, code string) (*User, error)
	Upsert(ctx context.Context, params UpsertUserParams) (*User, error)
	List(ctx context.Context, limit, offset int) ([]User, error)
	Count(ctx context.Context) (int, error)
	CountScoreGreaterThan(ctx context.Context, score int) (int, error)
	// IncrementReferralCount atomically bumps a referrer's count and
	// returns the new value.
	IncrementReferralCount(ctx context.Context, userID uuid.UUID) (int, error)
	SetReferralBonus(ctx context.Context, userID uuid.UUID, bonus int) error
}
