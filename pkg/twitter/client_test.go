package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xid/pkg/config"
	"xid/pkg/errors"
	"xid/pkg/logger"
)

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

// newMockHTTPClient creates an HTTP client backed by the handler
func newMockHTTPClient(handler func(req *http.Request) (*http.Response, error)) *http.Client {
	return &http.Client{
		Transport: &mockRoundTripper{handler: handler},
		Timeout:   30 * time.Second,
	}
}

// newResponse creates a response with the given status, body and headers
func newResponse(req *http.Request, statusCode int, body string, headers map[string]string) *http.Response {
	resp := &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
		Request:    req,
	}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func newJSONResponse(req *http.Request, statusCode int, payload interface{}) *http.Response {
	body, _ := json.Marshal(payload)
	return newResponse(req, statusCode, string(body), nil)
}

func testCredentials() config.TwitterConfig {
	return config.TwitterConfig{
		APIKey:            "key",
		APISecret:         "secret",
		AccessToken:       "token",
		AccessTokenSecret: "token-secret",
	}
}

// newTestClient creates a client whose requests are served by handler
func newTestClient(t *testing.T, handler func(req *http.Request) (*http.Response, error)) *Client {
	t.Helper()
	client := NewClient(testCredentials(), 30*time.Second, logger.NewTestLogger())
	client.SetHTTPClient(newMockHTTPClient(handler))
	return client
}

func TestNewClient(t *testing.T) {
	client := NewClient(testCredentials(), 30*time.Second, logger.NewTestLogger())

	assert.NotNil(t, client)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, BaseURL, client.baseURL)
}

func TestAuthenticate(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "/2/users/me", req.URL.Path)
			return newJSONResponse(req, http.StatusOK, UserResponse{
				Data: &UserObject{ID: "12", Name: "Jack", Username: "jack"},
			}), nil
		})

		user, err := client.Authenticate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "12", user.ID)
		assert.Equal(t, "jack", user.Username)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			return newResponse(req, http.StatusUnauthorized, `{"title":"Unauthorized"}`, nil), nil
		})

		_, err := client.Authenticate(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeAuth))
	})
}

func TestLookupUser(t *testing.T) {
	t.Run("resolves user id", func(t *testing.T) {
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "/2/users/by/username/jack", req.URL.Path)
			return newJSONResponse(req, http.StatusOK, UserResponse{
				Data: &UserObject{ID: "12", Username: "jack"},
			}), nil
		})

		user, err := client.LookupUser(context.Background(), "jack")
		require.NoError(t, err)
		assert.Equal(t, "12", user.ID)
	})

	t.Run("unknown user reported as partial error", func(t *testing.T) {
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			return newJSONResponse(req, http.StatusOK, UserResponse{
				Errors: []APIError{{Title: "Not Found Error", Value: "nosuchuser"}},
			}), nil
		})

		_, err := client.LookupUser(context.Background(), "nosuchuser")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
		assert.Contains(t, err.Error(), "nosuchuser")
	})

	t.Run("unknown user as 404", func(t *testing.T) {
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			return newResponse(req, http.StatusNotFound, "", nil), nil
		})

		_, err := client.LookupUser(context.Background(), "nosuchuser")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
		assert.Contains(t, err.Error(), "nosuchuser")
	})
}

func TestFetchTimeline(t *testing.T) {
	created := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

	timeline := TimelineResponse{
		Data: []TweetObject{
			{
				ID:          "1001",
				Text:        "two cats",
				CreatedAt:   created,
				Attachments: &Attachments{MediaKeys: []string{"3_a", "3_b"}},
				PublicMetrics: &PublicMetrics{
					LikeCount:    5,
					RetweetCount: 2,
				},
			},
			{
				ID:        "1000",
				Text:      "no media here",
				CreatedAt: created.Add(-time.Hour),
			},
		},
		Includes: &Includes{
			Media: []MediaObject{
				{MediaKey: "3_a", Type: "photo", URL: "https://pbs.twimg.com/media/a.jpg"},
				{MediaKey: "3_b", Type: "video", URL: "https://video.twimg.com/b.mp4"},
			},
		},
		Meta: &Meta{ResultCount: 2, NextToken: "cursor-2"},
	}

	t.Run("parses page and joins media", func(t *testing.T) {
		var gotQuery url.Values
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "/2/users/12/tweets", req.URL.Path)
			gotQuery = req.URL.Query()
			return newJSONResponse(req, http.StatusOK, timeline), nil
		})

		page, err := client.FetchTimeline(context.Background(), "12", "jack", TimelineParams{
			PageSize: 100,
			Since:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		assert.Equal(t, "100", gotQuery.Get("max_results"))
		assert.Equal(t, "retweets,replies", gotQuery.Get("exclude"))
		assert.Equal(t, "attachments.media_keys", gotQuery.Get("expansions"))
		assert.Equal(t, "2025-01-15T00:00:00Z", gotQuery.Get("start_time"))

		require.Len(t, page.Posts, 2)
		assert.Equal(t, "cursor-2", page.NextToken)

		// First post keeps the photo only; the video attachment is dropped
		assert.Equal(t, []string{"https://pbs.twimg.com/media/a.jpg"}, page.Posts[0].Images)
		assert.Equal(t, 5, page.Posts[0].Likes)
		assert.Equal(t, 2, page.Posts[0].Retweets)
		assert.Equal(t, "jack", page.Posts[0].AuthorHandle)

		assert.Empty(t, page.Posts[1].Images)
	})

	t.Run("passes pagination token", func(t *testing.T) {
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "cursor-2", req.URL.Query().Get("pagination_token"))
			return newJSONResponse(req, http.StatusOK, TimelineResponse{
				Meta: &Meta{ResultCount: 0},
			}), nil
		})

		page, err := client.FetchTimeline(context.Background(), "12", "jack", TimelineParams{
			PageSize:        100,
			PaginationToken: "cursor-2",
		})
		require.NoError(t, err)
		assert.Empty(t, page.Posts)
		assert.Empty(t, page.NextToken)
	})

	t.Run("rate limit carries reset time", func(t *testing.T) {
		resetAt := time.Now().Add(5 * time.Minute).Truncate(time.Second)
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			return newResponse(req, http.StatusTooManyRequests, "", map[string]string{
				"x-rate-limit-reset": strconv.FormatInt(resetAt.Unix(), 10),
			}), nil
		})

		_, err := client.FetchTimeline(context.Background(), "12", "jack", TimelineParams{PageSize: 100})
		require.Error(t, err)
		assert.True(t, errors.IsRateLimit(err))
		assert.True(t, errors.RateLimitReset(err).Equal(resetAt))
	})

	t.Run("server error maps to network error", func(t *testing.T) {
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			return newResponse(req, http.StatusServiceUnavailable, "", nil), nil
		})

		_, err := client.FetchTimeline(context.Background(), "12", "jack", TimelineParams{PageSize: 100})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
	})

	t.Run("malformed body maps to parsing error", func(t *testing.T) {
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			return newResponse(req, http.StatusOK, "<html>not json</html>", nil), nil
		})

		_, err := client.FetchTimeline(context.Background(), "12", "jack", TimelineParams{PageSize: 100})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeParsing))
	})
}
