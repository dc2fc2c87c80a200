package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/domain"
)

func TestCountActivity(t *testing.T) {
	tests := []struct {
		name     string
		texts    []string
		matched  int
		mentions int
		hashtags int
	}{
		{
			name: "no activity",
			texts: []string{
				"just setting up my twttr",
				"gm everyone",
			},
		},
		{
			name:     "mention only",
			texts:    []string{"excited for @ethmumbai this year"},
			matched:  1,
			mentions: 1,
		},
		{
			name:     "hashtag only",
			texts:    []string{"see you at #ETHMumbai"},
			matched:  1,
			hashtags: 1,
		},
		{
			name:     "mention and hashtag in one tweet count once toward matched",
			texts:    []string{"@ethmumbai is coming! #ethmumbai2026"},
			matched:  1,
			mentions: 1,
			hashtags: 1,
		},
		{
			name:     "multiple hashtags in one tweet count once",
			texts:    []string{"#ethmumbai #ETHMumbai2026 #ETHMUMBAI lets go"},
			matched:  1,
			hashtags: 1,
		},
		{
			name: "case insensitive matching",
			texts: []string{
				"shoutout to @ETHMumbai",
				"registered for #EthMumbai2026",
			},
			matched:  2,
			mentions: 1,
			hashtags: 1,
		},
		{
			name: "mixed feed",
			texts: []string{
				"gm",
				"@ethmumbai tickets are live",
				"builders assemble #ethmumbai",
				"lunch thread",
				"@ethmumbai see you there #ETHMumbai2026",
			},
			matched:  3,
			mentions: 2,
			hashtags: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, mentions, hashtags := countActivity(tt.texts)
			assert.Equal(t, tt.matched, matched, "matched")
			assert.Equal(t, tt.mentions, mentions, "mentions")
			assert.Equal(t, tt.hashtags, hashtags, "hashtags")
		})
	}
}

// timelinePage builds a scraper response with the given tweet texts and
// an optional bottom cursor.
func timelinePage(texts []string, cursor string) string {
	entries := make([]map[string]any, 0, len(texts)+1)
	for i, text := range texts {
		entries = append(entries, map[string]any{
			"entryId": fmt.Sprintf("tweet-%d", i),
			"content": map[string]any{
				"itemContent": map[string]any{
					"tweet_results": map[string]any{
						"result": map[string]any{
							"legacy": map[string]any{"full_text": text},
						},
					},
				},
			},
		})
	}
	if cursor != "" {
		entries = append(entries, map[string]any{
			"entryId": "cursor-bottom-0",
			"content": map[string]any{"value": cursor},
		})
	}

	payload := map[string]any{
		"result": map[string]any{
			"timeline": map[string]any{
				"instructions": []map[string]any{
					{"type": "TimelineAddEntries", "entries": entries},
				},
			},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func repeatTexts(text string, n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = text
	}
	return texts
}

func TestAnalyzeUserScoresActivity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			_, _ = w.Write([]byte(userFixtureFlat))
		case "/user-tweets":
			_, _ = w.Write([]byte(timelinePage([]string{
				"gm",
				"@ethmumbai lets build",
				"wagmi #ethmumbai",
				"@ethmumbai ship it #ETHMumbai2026",
			}, "")))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	analysis, err := NewAnalyzer(client).AnalyzeUser(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", analysis.Handle)
	assert.Equal(t, "Alice", analysis.DisplayName)
	assert.Equal(t, 420, analysis.TotalTweets)
	assert.Equal(t, 3, analysis.TweetCount)
	assert.Equal(t, 2, analysis.MentionCount)
	assert.Equal(t, 2, analysis.HashtagCount)
	// floor(3*1.0 + 2*0.5 + 2*0.3) = 4
	assert.Equal(t, 4, analysis.Score)
	assert.Equal(t, "ETHMumbai Explorer", analysis.Rank)
}

func TestAnalyzeUserPaginates(t *testing.T) {
	var tweetCalls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			_, _ = w.Write([]byte(userFixtureFlat))
		case "/user-tweets":
			tweetCalls++
			switch r.URL.Query().Get("cursor") {
			case "":
				_, _ = w.Write([]byte(timelinePage(repeatTexts("gm", 40), "PAGE2")))
			case "PAGE2":
				_, _ = w.Write([]byte(timelinePage(repeatTexts("#ethmumbai", 40), "PAGE3")))
			case "PAGE3":
				_, _ = w.Write([]byte(timelinePage(repeatTexts("gm", 40), "PAGE4")))
			default:
				t.Errorf("unexpected cursor %s", r.URL.Query().Get("cursor"))
			}
		}
	})

	analysis, err := NewAnalyzer(client).AnalyzeUser(context.Background(), "alice")
	require.NoError(t, err)

	// Pagination stops at the page cap even though a cursor remains.
	assert.Equal(t, 3, tweetCalls)
	assert.Equal(t, 40, analysis.HashtagCount)
}

func TestAnalyzeUserStopsAtTweetCap(t *testing.T) {
	var tweetCalls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			_, _ = w.Write([]byte(userFixtureFlat))
		case "/user-tweets":
			tweetCalls++
			_, _ = w.Write([]byte(timelinePage(repeatTexts("gm", 60), "MORE")))
		}
	})

	_, err := NewAnalyzer(client).AnalyzeUser(context.Background(), "alice")
	require.NoError(t, err)

	// 60 then 120 tweets collected; the cap stops the third page.
	assert.Equal(t, 2, tweetCalls)
}

func TestAnalyzeUserKeepsPartialResultsOnPageFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			_, _ = w.Write([]byte(userFixtureFlat))
		case "/user-tweets":
			if r.URL.Query().Get("cursor") == "" {
				_, _ = w.Write([]byte(timelinePage([]string{"@ethmumbai gm"}, "PAGE2")))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	analysis, err := NewAnalyzer(client).AnalyzeUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, analysis.MentionCount)
}

func TestAnalyzeUserFirstPageFailureKeepsProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			_, _ = w.Write([]byte(userFixtureFlat))
		case "/user-tweets":
			w.WriteHeader(http.StatusBadGateway)
		}
	})

	analysis, err := NewAnalyzer(client).AnalyzeUser(context.Background(), "alice")
	require.NoError(t, err)

	// The resolved profile survives a failed timeline fetch.
	assert.Equal(t, "Alice", analysis.DisplayName)
	assert.Equal(t, "https://pbs.twimg.com/profile_images/1/alice.jpg", analysis.AvatarURL)
	assert.Equal(t, 420, analysis.TotalTweets)
	assert.Equal(t, 0, analysis.Score)
	assert.Equal(t, "ETHMumbai Newbie", analysis.Rank)
}

func TestAnalyzeUserUnknownHandle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := NewAnalyzer(client).AnalyzeUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
