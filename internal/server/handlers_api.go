package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/app"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/domain"
	apperrors "github.com/anuragShingare30/eth-mumbai-fanScore/internal/errors"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/score"
)

type checkRequest struct {
	Handle       string `json:"handle"`
	ForceRefresh bool   `json:"forceRefresh"`
	ReferralCode string `json:"referralCode"`
}

type userPayload struct {
	Handle          string `json:"handle"`
	DisplayName     string `json:"displayName"`
	ProfileImageURL string `json:"profileImageUrl"`
	TotalTweets     int    `json:"totalTweets"`
	TweetCount      int    `json:"tweetCount"`
	Score           int    `json:"score"`
}

type analysisPayload struct {
	EthMumbaiTweets   int `json:"ethMumbaiTweets"`
	EthMumbaiMentions int `json:"ethMumbaiMentions"`
	EthMumbaiHashtags int `json:"ethMumbaiHashtags"`
}

type rankPayload struct {
	score.Rank
	NextRank         *score.Rank `json:"nextRank,omitempty"`
	PointsToNextRank int         `json:"pointsToNextRank"`
}

type referralPayload struct {
	Code                string              `json:"code"`
	Count               int                 `json:"count"`
	Bonus               int                 `json:"bonus"`
	Tier                *score.ReferralTier `json:"tier,omitempty"`
	NextTier            *score.ReferralTier `json:"nextTier,omitempty"`
	ReferralsToNextTier int                 `json:"referralsToNextTier"`
}

type checkData struct {
	User                userPayload     `json:"user"`
	Analysis            analysisPayload `json:"analysis"`
	Rank                rankPayload     `json:"rank"`
	Referral            referralPayload `json:"referral"`
	LeaderboardPosition int             `json:"leaderboardPosition"`
}

type checkResponse struct {
	Success            bool      `json:"success"`
	Cached             bool      `json:"cached,omitempty"`
	FromDB             bool      `json:"fromDb,omitempty"`
	Stale              bool      `json:"stale,omitempty"`
	Data               checkData `json:"data"`
	LeaderboardVersion int64     `json:"leaderboardVersion"`
}

func (s *Server) handleCheck(c echo.Context) error {
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body").WithField("remote_ip", c.RealIP())
	}

	result, err := s.app.CheckScore(c.Request().Context(), app.CheckRequest{
		Handle:       req.Handle,
		CallerKey:    c.RealIP(),
		ForceRefresh: req.ForceRefresh,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		return err
	}

	response := checkResponse{
		Success:            true,
		Cached:             result.Cached,
		FromDB:             result.FromDB,
		Stale:              result.Stale,
		Data:               buildCheckData(result),
		LeaderboardVersion: result.Version,
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write check response: %w", err)
	}
	return nil
}

func buildCheckData(result *app.CheckResult) checkData {
	user := result.User

	return checkData{
		User: userPayload{
			Handle:          user.Handle,
			DisplayName:     user.DisplayName,
			ProfileImageURL: user.AvatarURL,
			TotalTweets:     user.TotalTweets,
			TweetCount:      user.TweetCount,
			Score:           user.Score,
		},
		Analysis: analysisPayload{
			EthMumbaiTweets:   user.TweetCount,
			EthMumbaiMentions: user.MentionCount,
			EthMumbaiHashtags: user.HashtagCount,
		},
		Rank:                buildRankPayload(user.Score),
		Referral:            buildReferralPayload(user),
		LeaderboardPosition: result.Position,
	}
}

func buildRankPayload(points int) rankPayload {
	payload := rankPayload{
		Rank:             score.RankFor(points),
		PointsToNextRank: score.PointsToNextRank(points),
	}
	if next, ok := score.NextRank(points); ok {
		payload.NextRank = &next
	}
	return payload
}

func buildReferralPayload(user *domain.User) referralPayload {
	payload := referralPayload{
		Code:                user.ReferralCode,
		Count:               user.ReferralCount,
		Bonus:               user.ReferralBonus,
		ReferralsToNextTier: score.ReferralsToNextTier(user.ReferralCount),
	}
	if tier, ok := score.ReferralTierFor(user.ReferralCount); ok {
		payload.Tier = &tier
	}
	if next, ok := score.NextReferralTier(user.ReferralCount); ok {
		payload.NextTier = &next
	}
	return payload
}

type leaderboardEntryPayload struct {
	Position        int        `json:"position"`
	Handle          string     `json:"handle"`
	DisplayName     string     `json:"displayName"`
	ProfileImageURL string     `json:"profileImageUrl"`
	TweetCount      int        `json:"tweetCount"`
	MentionCount    int        `json:"mentionCount"`
	HashtagCount    int        `json:"hashtagCount"`
	Score           int        `json:"score"`
	Rank            score.Rank `json:"rank"`
}

type paginationPayload struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type leaderboardData struct {
	Leaderboard []leaderboardEntryPayload `json:"leaderboard"`
	Pagination  paginationPayload         `json:"pagination"`
	Version     int64                     `json:"version"`
}

type leaderboardResponse struct {
	Success bool            `json:"success"`
	Data    leaderboardData `json:"data"`
}

func (s *Server) handleLeaderboard(c echo.Context) error {
	page := intQueryParam(c, "page", 1)
	limit := intQueryParam(c, "limit", 10)

	result, err := s.app.Leaderboard(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}

	entries := make([]leaderboardEntryPayload, 0, len(result.Entries))
	for _, entry := range result.Entries {
		entries = append(entries, leaderboardEntryPayload{
			Position:        entry.Position,
			Handle:          entry.Handle,
			DisplayName:     entry.DisplayName,
			ProfileImageURL: entry.AvatarURL,
			TweetCount:      entry.TweetCount,
			MentionCount:    entry.MentionCount,
			HashtagCount:    entry.HashtagCount,
			Score:           entry.Score,
			Rank:            score.RankFor(entry.Score),
		})
	}

	response := leaderboardResponse{
		Success: true,
		Data: leaderboardData{
			Leaderboard: entries,
			Pagination: paginationPayload{
				Page:       result.Page,
				Limit:      result.Limit,
				Total:      result.Total,
				TotalPages: result.TotalPages,
			},
			Version: result.Version,
		},
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write leaderboard response: %w", err)
	}
	return nil
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
