package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/domain"
)

// userColumns must match the Scan order in scanUser.
const userColumns = `id, handle, display_name, avatar_url, total_tweets, tweet_count, mention_count, hashtag_count, score, rank, referral_code, referral_count, referral_bonus, referred_by, created_at, updated_at`

// UserRepo implements domain.UserRepository backed by PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
}

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Handle, &user.DisplayName, &user.AvatarURL,
		&user.TotalTweets, &user.TweetCount, &user.MentionCount, &user.HashtagCount,
		&user.Score, &user.Rank, &user.ReferralCode, &user.ReferralCount,
		&user.ReferralBonus, &user.ReferredBy, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE handle = $1
	`, handle))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by handle: %w", err)
	}
	return user, nil
}

func (r *UserRepo) GetByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE referral_code = $1
	`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by referral code: %w", err)
	}
	return user, nil
}

// Upsert writes a fresh analysis for a handle. On conflict the analysis
// columns are replaced while referral_code, referral_count, referral_bonus
// and referred_by keep their existing values.
func (r *UserRepo) Upsert(ctx context.Context, params domain.UpsertUserParams) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (handle, display_name, avatar_url, total_tweets, tweet_count, mention_count, hashtag_count, score, rank, referral_code, referred_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (handle) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			avatar_url = EXCLUDED.avatar_url,
			total_tweets = EXCLUDED.total_tweets,
			tweet_count = EXCLUDED.tweet_count,
			mention_count = EXCLUDED.mention_count,
			hashtag_count = EXCLUDED.hashtag_count,
			score = EXCLUDED.score,
			rank = EXCLUDED.rank,
			updated_at = NOW()
		RETURNING `+userColumns+`
	`, params.Handle, params.DisplayName, params.AvatarURL, params.TotalTweets,
		params.TweetCount, params.MentionCount, params.HashtagCount,
		params.Score, params.Rank, params.ReferralCode, params.ReferredBy))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY score DESC, created_at ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return users, nil
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *UserRepo) CountScoreGreaterThan(ctx context.Context, score int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE score > $1`, score).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users by score: %w", err)
	}
	return count, nil
}

func (r *UserRepo) IncrementReferralCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		UPDATE users
		SET referral_count = referral_count + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING referral_count
	`, userID).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment referral count: %w", err)
	}
	return count, nil
}

func (r *UserRepo) SetReferralBonus(ctx context.Context, userID uuid.UUID, bonus int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET referral_bonus = $2, updated_at = NOW()
		WHERE id = $1
	`, userID, bonus)
	if err != nil {
		return fmt.Errorf("failed to set referral bonus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
