package domain

import "context"

// Analysis is the immutable result of fetching and scoring a handle's
// recent tweets. Produced only by the tweet analysis step; cached and
// persisted as-is.
type Analysis struct {
	Handle       string `json:"handle"`
	DisplayName  string `json:"displayName"`
	AvatarURL    string `json:"avatarURL"`
	TotalTweets  int    `json:"totalTweets"`
	TweetCount   int    `json:"tweetCount"` // tweets classified as ETHMumbai-related
	MentionCount int    `json:"mentionCount"`
	HashtagCount int    `json:"hashtagCount"`
	Score        int    `json:"score"`
	Rank         string `json:"rank"`
}

// TweetService fetches and analyzes a handle's recent activity. It must be
// treated as unreliable: timeouts, network errors and malformed payloads all
// surface as errors, which callers degrade to "no data" rather than failing
// the request.
type TweetService interface {
	AnalyzeUser(ctx context.Context, handle string) (*Analysis, error)
}

// LeaderboardEntry is one ranked row of the public leaderboard.
type LeaderboardEntry struct {
	Position     int    `json:"position"`
	Handle       string `json:"handle"`
	DisplayName  string `json:"displayName"`
	AvatarURL    string `json:"profileImageUrl"`
	TweetCount   int    `json:"tweetCount"`
	MentionCount int    `json:"mentionCount"`
	HashtagCount int    `json:"hashtagCount"`
	Score        int    `json:"score"`
}

// LeaderboardPage is a page of ranked entries plus pagination totals.
type LeaderboardPage struct {
	Entries    []LeaderboardEntry `json:"leaderboard"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	Total      int                `json:"total"`
	TotalPages int                `json:"totalPages"`
	Version    int64              `json:"version"`
}

// LeaderboardCache is a best-effort page cache for the polling leaderboard
// endpoint. Implementations may drop entries at any time.
type LeaderboardCache interface {
	Get(ctx context.Context, version int64, page, limit int) (*LeaderboardPage, bool)
	Set(ctx context.Context, page *LeaderboardPage)
}
