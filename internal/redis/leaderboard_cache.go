package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/domain"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/metrics"
)

// leaderboardCacheTTL is deliberately short. Keys carry the leaderboard
// version, so a stale page is never served; the TTL only bounds how long
// pages of superseded versions linger.
const leaderboardCacheTTL = 60 * time.Second

// LeaderboardCacheRepo caches rendered leaderboard pages in Redis, keyed
// by (version, page, limit). It implements domain.LeaderboardCache.
type LeaderboardCacheRepo struct {
	rdb goredis.Cmdable
}

var _ domain.LeaderboardCache = (*LeaderboardCacheRepo)(nil)

func NewLeaderboardCacheRepo(rdb goredis.Cmdable) *LeaderboardCacheRepo {
	return &LeaderboardCacheRepo{rdb: rdb}
}

func leaderboardKey(version int64, page, limit int) string {
	return fmt.Sprintf("leaderboard:v%d:p%d:l%d", version, page, limit)
}

// Get returns a cached page, or (nil, false) on miss or Redis failure.
func (r *LeaderboardCacheRepo) Get(ctx context.Context, version int64, page, limit int) (*domain.LeaderboardPage, bool) {
	key := leaderboardKey(version, page, limit)

	data, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.Warn("Redis leaderboard cache GET failed", "key", key, "error", err)
		}
		metrics.LeaderboardCacheMisses.Inc()
		return nil, false
	}

	var cached domain.LeaderboardPage
	if err := json.Unmarshal(data, &cached); err != nil {
		slog.Warn("Failed to unmarshal cached leaderboard page", "key", key, "error", err)
		metrics.LeaderboardCacheMisses.Inc()
		return nil, false
	}

	metrics.LeaderboardCacheHits.Inc()
	return &cached, true
}

// Set stores a page best-effort; Redis failures are logged and ignored.
func (r *LeaderboardCacheRepo) Set(ctx context.Context, page *domain.LeaderboardPage) {
	key := leaderboardKey(page.Version, page.Page, page.Limit)

	encoded, err := json.Marshal(page)
	if err != nil {
		slog.Warn("Failed to marshal leaderboard page", "key", key, "error", err)
		return
	}

	if err := r.rdb.Set(ctx, key, encoded, leaderboardCacheTTL).Err(); err != nil {
		slog.Warn("Failed to populate Redis leaderboard cache", "key", key, "error", err)
	}
}
