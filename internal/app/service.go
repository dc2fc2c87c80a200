// Package app is the application layer. It orchestrates the check flow
// across the result cache, rate limiters, twitter client and store, and
// serves the leaderboard.
package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/cache"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/domain"
	apperrors "github.com/anuragShingare30/eth-mumbai-fanScore/internal/errors"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/logging"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/metrics"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/ratelimit"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/score"
)

const (
	// dbFreshness is how old a stored record may be before a check
	// re-fetches from the twitter API.
	dbFreshness = time.Hour

	// apiLimiterKey is the single shared key for the global API budget.
	apiLimiterKey = "twitter241"

	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// CheckRequest carries the inputs of one score check.
type CheckRequest struct {
	Handle       string
	CallerKey    string
	ForceRefresh bool
	ReferralCode string
}

// CheckResult is the outcome of a score check. User always holds the
// record the response is built from; the flags say where it came from.
type CheckResult struct {
	User     *domain.User
	Cached   bool
	FromDB   bool
	Stale    bool
	Position int
	Version  int64
}

// Service orchestrates all use cases. It is the only component that
// references multiple domain components.
type Service struct {
	users            domain.UserRepository
	tweets           domain.TweetService
	results          *cache.Cache[domain.User]
	callerLimiter    *ratelimit.SlidingWindow
	apiLimiter       *ratelimit.SlidingWindow
	leaderboardCache domain.LeaderboardCache
	fetchGroup       singleflight.Group
	clock            clockwork.Clock
	version          atomic.Int64
}

// NewService creates the application layer service.
// leaderboardCache may be nil when Redis is not configured.
func NewService(
	users domain.UserRepository,
	tweets domain.TweetService,
	results *cache.Cache[domain.User],
	callerLimiter, apiLimiter *ratelimit.SlidingWindow,
	leaderboardCache domain.LeaderboardCache,
	clock clockwork.Clock,
) *Service {
	return &Service{
		users:            users,
		tweets:           tweets,
		results:          results,
		callerLimiter:    callerLimiter,
		apiLimiter:       apiLimiter,
		leaderboardCache: leaderboardCache,
		clock:            clock,
	}
}

// NormalizeHandle strips a leading @, lowercases and trims a raw handle.
// All storage, cache and limiter keys use the normalized form.
func NormalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	handle = strings.TrimPrefix(handle, "@")
	return strings.ToLower(strings.TrimSpace(handle))
}

// Version returns the current leaderboard version counter.
func (s *Service) Version() int64 {
	return s.version.Load()
}

func (s *Service) bumpVersion() int64 {
	v := s.version.Add(1)
	metrics.LeaderboardVersion.Set(float64(v))
	return v
}

// CheckScore runs the full check flow for one handle. One unit of the
// caller's quota is consumed up front regardless of which branch answers.
func (s *Service) CheckScore(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	start := time.Now()
	defer func() {
		metrics.CheckDuration.Observe(time.Since(start).Seconds())
	}()

	handle := NormalizeHandle(req.Handle)
	if handle == "" {
		return nil, apperrors.ValidationError("twitter handle is required")
	}

	if !s.callerLimiter.Allow(req.CallerKey) {
		metrics.RateLimitRejections.WithLabelValues("caller").Inc()
		return nil, apperrors.RateLimitedError("too many requests, please wait a moment").
			WithContext("caller", req.CallerKey)
	}

	if !req.ForceRefresh {
		if user, ok := s.results.Get(handle); ok {
			metrics.CacheHits.Inc()
			return s.answer(ctx, &user, "cached", func(r *CheckResult) {
				r.Cached = true
			})
		}
		metrics.CacheMisses.Inc()
	}

	existing, err := s.lookupExisting(ctx, handle)
	if err != nil {
		return nil, err
	}

	if existing != nil && !req.ForceRefresh && s.clock.Since(existing.UpdatedAt) < dbFreshness {
		s.results.Set(handle, *existing)
		return s.answer(ctx, existing, "from_db", func(r *CheckResult) {
			r.Cached = true
			r.FromDB = true
		})
	}

	if !s.apiLimiter.Allow(apiLimiterKey) {
		metrics.RateLimitRejections.WithLabelValues("api").Inc()
		if existing != nil {
			return s.answer(ctx, existing, "stale", func(r *CheckResult) {
				r.Cached = true
				r.Stale = true
			})
		}
		return nil, apperrors.UnavailableError("service is busy, please try again in a moment")
	}

	analysis, degraded := s.fetchAnalysis(ctx, handle)

	params := domain.UpsertUserParams{
		Handle:       handle,
		DisplayName:  analysis.DisplayName,
		AvatarURL:    analysis.AvatarURL,
		TotalTweets:  analysis.TotalTweets,
		TweetCount:   analysis.TweetCount,
		MentionCount: analysis.MentionCount,
		HashtagCount: analysis.HashtagCount,
		Score:        analysis.Score,
		Rank:         analysis.Rank,
		ReferralCode: score.NewReferralCode(),
	}
	if existing == nil {
		params.ReferredBy = s.creditReferral(ctx, req.ReferralCode, handle)
	}

	user, err := s.users.Upsert(ctx, params)
	if err != nil {
		return nil, apperrors.InternalError("failed to save user", err).
			WithContext("handle", handle)
	}

	s.results.Set(handle, *user)
	version := s.bumpVersion()

	outcome := "fresh"
	if degraded {
		outcome = "degraded"
	}

	result, err := s.answer(ctx, user, outcome, nil)
	if err != nil {
		return nil, err
	}
	result.Version = version
	return result, nil
}

// answer computes the leaderboard position and assembles a CheckResult.
func (s *Service) answer(ctx context.Context, user *domain.User, outcome string, decorate func(*CheckResult)) (*CheckResult, error) {
	ahead, err := s.users.CountScoreGreaterThan(ctx, user.Score)
	if err != nil {
		return nil, apperrors.InternalError("failed to compute leaderboard position", err).
			WithContext("handle", user.Handle)
	}

	metrics.ChecksTotal.WithLabelValues(outcome).Inc()

	result := &CheckResult{
		User:     user,
		Position: ahead + 1,
		Version:  s.Version(),
	}
	if decorate != nil {
		decorate(result)
	}
	return result, nil
}

func (s *Service) lookupExisting(ctx context.Context, handle string) (*domain.User, error) {
	user, err := s.users.GetByHandle(ctx, handle)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.InternalError("failed to load user", err).
			WithContext("handle", handle)
	}
	return user, nil
}

// fetchAnalysis fetches through the singleflight group so concurrent
// checks for the same handle share one upstream call. Fetch failures
// degrade to a zero-valued analysis instead of failing the check.
func (s *Service) fetchAnalysis(ctx context.Context, handle string) (analysis domain.Analysis, degraded bool) {
	v, err, shared := s.fetchGroup.Do(handle, func() (any, error) {
		return s.tweets.AnalyzeUser(ctx, handle)
	})
	if shared {
		metrics.DedupedFetches.Inc()
	}
	if err != nil {
		logging.WithHandle(handle).Warn("Tweet analysis failed, degrading to empty result",
			"error", err)
		return zeroAnalysis(handle), true
	}
	return *(v.(*domain.Analysis)), false
}

func zeroAnalysis(handle string) domain.Analysis {
	return domain.Analysis{
		Handle:      handle,
		DisplayName: handle,
		AvatarURL:   "https://api.dicebear.com/7.x/identicon/svg?seed=" + handle,
		Rank:        score.RankFor(0).Name,
	}
}

// creditReferral applies a referral code to a first-time record. It
// returns the code to link as referred_by, or empty when the code is
// malformed, unknown or a self-referral. Referral bookkeeping failures
// never fail the check.
func (s *Service) creditReferral(ctx context.Context, code, handle string) string {
	code = strings.TrimSpace(code)
	if code == "" || !score.ValidReferralCode(code) {
		return ""
	}

	referrer, err := s.users.GetByReferralCode(ctx, code)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			logging.WithError(err).Warn("Referral lookup failed", "code", code)
		}
		return ""
	}
	if referrer.Handle == handle {
		return ""
	}

	count, err := s.users.IncrementReferralCount(ctx, referrer.ID)
	if err != nil {
		slog.Warn("Failed to credit referral",
			"referrer", referrer.Handle, "error", err)
		return ""
	}
	if err := s.users.SetReferralBonus(ctx, referrer.ID, score.ReferralBonus(count)); err != nil {
		slog.Warn("Failed to update referral bonus",
			"referrer", referrer.Handle, "error", err)
	}

	slog.Info("Referral credited",
		"referrer", referrer.Handle, "referred", handle, "count", count)
	return code
}

// Leaderboard returns one page of ranked entries plus pagination totals
// and the current version.
func (s *Service) Leaderboard(ctx context.Context, page, limit int) (*domain.LeaderboardPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	version := s.Version()
	if s.leaderboardCache != nil {
		if cached, ok := s.leaderboardCache.Get(ctx, version, page, limit); ok {
			return cached, nil
		}
	}

	offset := (page - 1) * limit
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError("failed to list users", err)
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, apperrors.InternalError("failed to count users", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(users))
	for i, user := range users {
		entries = append(entries, domain.LeaderboardEntry{
			Position:     offset + i + 1,
			Handle:       user.Handle,
			DisplayName:  user.DisplayName,
			AvatarURL:    user.AvatarURL,
			TweetCount:   user.TweetCount,
			MentionCount: user.MentionCount,
			HashtagCount: user.HashtagCount,
			Score:        user.Score,
		})
	}

	result := &domain.LeaderboardPage{
		Entries:    entries,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
		Version:    version,
	}

	if s.leaderboardCache != nil {
		s.leaderboardCache.Set(ctx, result)
	}
	return result, nil
}
