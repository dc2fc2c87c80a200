package twitter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/domain"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/score"
)

const (
	// maxPages caps pagination so a prolific account cannot stall a check.
	maxPages = 3

	// maxTweets stops pagination once enough history has been collected.
	maxTweets = 100
)

const ethMumbaiMention = "@ethmumbai"

// Matching is case-insensitive on lowered tweet text, so one lowercase
// pattern per tag family is enough.
var ethMumbaiHashtags = []string{
	"#ethmumbai",
	"#ethmumbai2026",
}

// Analyzer implements domain.TweetService on top of the scraper client.
type Analyzer struct {
	client *Client
}

var _ domain.TweetService = (*Analyzer)(nil)

func NewAnalyzer(client *Client) *Analyzer {
	return &Analyzer{client: client}
}

// AnalyzeUser resolves a handle, walks its recent tweets and counts
// ETHMumbai activity. Once the profile has resolved, a tweets-fetch
// failure at any page keeps what was collected so far: the profile with
// zero counts in the worst case, never a discarded fetch.
func (a *Analyzer) AnalyzeUser(ctx context.Context, handle string) (*domain.Analysis, error) {
	profile, err := a.client.FetchProfile(ctx, handle)
	if err != nil {
		return nil, err
	}

	var texts []string
	cursor := ""
	for page := 0; page < maxPages; page++ {
		tweetPage, err := a.client.FetchTweets(ctx, profile.ID, cursor)
		if err != nil {
			slog.Debug("Tweet pagination stopped early",
				"handle", profile.Handle,
				"page", page+1,
				"collected", len(texts),
				"error", err,
			)
			break
		}
		if len(tweetPage.Texts) == 0 {
			break
		}

		texts = append(texts, tweetPage.Texts...)
		cursor = tweetPage.Cursor
		if cursor == "" || len(texts) >= maxTweets {
			break
		}
	}

	matched, mentions, hashtags := countActivity(texts)
	total := score.Score(matched, mentions, hashtags)

	slog.Debug("Analyzed tweets",
		"handle", profile.Handle,
		"tweets", len(texts),
		"matched", matched,
		"mentions", mentions,
		"hashtags", hashtags,
		"score", total,
	)

	return &domain.Analysis{
		Handle:       profile.Handle,
		DisplayName:  profile.DisplayName,
		AvatarURL:    profile.AvatarURL,
		TotalTweets:  profile.TotalTweets,
		TweetCount:   matched,
		MentionCount: mentions,
		HashtagCount: hashtags,
		Score:        total,
		Rank:         score.RankFor(total).Name,
	}, nil
}

// countActivity classifies each tweet at most once per signal: a tweet
// with three hashtags still counts one hashtag hit, and a tweet carrying
// both a mention and a hashtag counts once toward the matched total.
func countActivity(texts []string) (matched, mentions, hashtags int) {
	for _, text := range texts {
		lower := strings.ToLower(text)
		related := false

		if strings.Contains(lower, ethMumbaiMention) {
			mentions++
			related = true
		}

		for _, tag := range ethMumbaiHashtags {
			if strings.Contains(lower, tag) {
				hashtags++
				related = true
				break
			}
		}

		if related {
			matched++
		}
	}
	return matched, mentions, hashtags
}
