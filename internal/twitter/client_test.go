package twitter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/domain"
)

const userFixtureFlat = `{
	"user": {
		"result": {
			"rest_id": "12345",
			"legacy": {
				"name": "Alice",
				"screen_name": "alice",
				"profile_image_url_https": "https://pbs.twimg.com/profile_images/1/alice_normal.jpg",
				"statuses_count": 420
			}
		}
	}
}`

const userFixtureNested = `{
	"result": {
		"data": {
			"user": {
				"result": {
					"rest_id": "67890",
					"core": {
						"name": "Bob",
						"screen_name": "bob"
					},
					"avatar": {
						"image_url": "https://pbs.twimg.com/profile_images/2/bob_normal.png"
					},
					"legacy": {
						"statuses_count": 7
					}
				}
			}
		}
	}
}`

const userFixtureNoImage = `{
	"user": {
		"result": {
			"rest_id": "111",
			"legacy": {"screen_name": "carol", "statuses_count": 1}
		}
	}
}`

const timelineFixture = `{
	"result": {
		"timeline": {
			"instructions": [
				{"type": "TimelineClearCache"},
				{
					"type": "TimelineAddEntries",
					"entries": [
						{
							"entryId": "tweet-1",
							"content": {
								"itemContent": {
									"tweet_results": {
										"result": {"legacy": {"full_text": "gm from #ETHMumbai"}}
									}
								}
							}
						},
						{
							"entryId": "profile-conversation-1",
							"content": {
								"items": [
									{
										"item": {
											"itemContent": {
												"tweet_results": {
													"result": {"legacy": {"full_text": "thread reply @ethmumbai"}}
												}
											}
										}
									},
									{"item": {"itemContent": {"tweet_results": {}}}}
								]
							}
						},
						{
							"entryId": "cursor-top-1",
							"content": {"value": "TOP_CURSOR"}
						},
						{
							"entryId": "cursor-bottom-1",
							"content": {"value": "BOTTOM_CURSOR"}
						}
					]
				}
			]
		}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Host:    "twitter241.p.rapidapi.com",
	})
}

func TestFetchProfileFlatEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("username"))
		assert.Equal(t, "test-key", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "twitter241.p.rapidapi.com", r.Header.Get("x-rapidapi-host"))
		_, _ = w.Write([]byte(userFixtureFlat))
	})

	profile, err := client.FetchProfile(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "12345", profile.ID)
	assert.Equal(t, "alice", profile.Handle)
	assert.Equal(t, "Alice", profile.DisplayName)
	assert.Equal(t, "https://pbs.twimg.com/profile_images/1/alice.jpg", profile.AvatarURL)
	assert.Equal(t, 420, profile.TotalTweets)
}

func TestFetchProfileNestedEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(userFixtureNested))
	})

	profile, err := client.FetchProfile(context.Background(), "bob")
	require.NoError(t, err)

	assert.Equal(t, "67890", profile.ID)
	assert.Equal(t, "bob", profile.Handle)
	assert.Equal(t, "Bob", profile.DisplayName)
	assert.Equal(t, "https://pbs.twimg.com/profile_images/2/bob.png", profile.AvatarURL)
}

func TestFetchProfileAvatarFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(userFixtureNoImage))
	})

	profile, err := client.FetchProfile(context.Background(), "carol")
	require.NoError(t, err)
	assert.Equal(t, "https://api.dicebear.com/7.x/identicon/svg?seed=carol", profile.AvatarURL)
}

func TestFetchProfileMissingUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user": {"result": {}}}`))
	})

	_, err := client.FetchProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestFetchProfileNotFoundStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestFetchProfileUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchProfile(context.Background(), "alice")
	assert.ErrorIs(t, err, domain.ErrTweetUnavailable)
}

func TestFetchProfileWithoutAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://unused.invalid"})

	_, err := client.FetchProfile(context.Background(), "alice")
	assert.ErrorIs(t, err, domain.ErrTweetUnavailable)
}

func TestFetchTweetsParsesEntries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user-tweets", r.URL.Path)
		assert.Equal(t, "12345", r.URL.Query().Get("user"))
		assert.Equal(t, "40", r.URL.Query().Get("count"))
		assert.Empty(t, r.URL.Query().Get("cursor"))
		_, _ = w.Write([]byte(timelineFixture))
	})

	page, err := client.FetchTweets(context.Background(), "12345", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"gm from #ETHMumbai", "thread reply @ethmumbai"}, page.Texts)
	assert.Equal(t, "BOTTOM_CURSOR", page.Cursor)
}

func TestFetchTweetsPassesCursor(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "BOTTOM_CURSOR", r.URL.Query().Get("cursor"))
		_, _ = w.Write([]byte(`{"result": {"timeline": {"instructions": []}}}`))
	})

	page, err := client.FetchTweets(context.Background(), "12345", "BOTTOM_CURSOR")
	require.NoError(t, err)
	assert.Empty(t, page.Texts)
	assert.Empty(t, page.Cursor)
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	var requests int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 10; i++ {
		_, _ = client.FetchProfile(context.Background(), "alice")
	}

	assert.True(t, client.cb.IsOpen())
	assert.Less(t, requests, 10, "open breaker should short-circuit requests")
}
