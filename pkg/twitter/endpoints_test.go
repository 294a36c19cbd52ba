package twitter

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserTweetsURL(t *testing.T) {
	raw := userTweetsURL("https://api.example.com/2", "12", TimelineParams{
		PageSize:        100,
		PaginationToken: "abc",
		Since:           time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	})

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/2/users/12/tweets", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "100", q.Get("max_results"))
	assert.Equal(t, "abc", q.Get("pagination_token"))
	assert.Equal(t, "2025-01-15T00:00:00Z", q.Get("start_time"))
	assert.Equal(t, "retweets,replies", q.Get("exclude"))
	assert.Contains(t, q.Get("tweet.fields"), "referenced_tweets")
	assert.Contains(t, q.Get("media.fields"), "url")
}

func TestUserTweetsURLClampsPageSize(t *testing.T) {
	tests := []struct {
		name     string
		pageSize int
		want     string
	}{
		{"below minimum", 1, "5"},
		{"above maximum", 500, "100"},
		{"in range", 42, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := userTweetsURL(BaseURL, "12", TimelineParams{PageSize: tt.pageSize})
			parsed, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, parsed.Query().Get("max_results"))
		})
	}
}

func TestUserTweetsURLOmitsOptionalParams(t *testing.T) {
	raw := userTweetsURL(BaseURL, "12", TimelineParams{PageSize: 100})
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	q := parsed.Query()
	assert.False(t, q.Has("start_time"))
	assert.False(t, q.Has("pagination_token"))
}

func TestOriginalQualityURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"query string stripped",
			"https://pbs.twimg.com/media/abc.jpg?format=jpg&name=small",
			"https://pbs.twimg.com/media/abc.jpg",
		},
		{
			"legacy size suffix stripped",
			"https://pbs.twimg.com/media/abc.jpg:large",
			"https://pbs.twimg.com/media/abc.jpg",
		},
		{
			"thumb suffix stripped",
			"https://pbs.twimg.com/media/abc.png:thumb",
			"https://pbs.twimg.com/media/abc.png",
		},
		{
			"already original",
			"https://pbs.twimg.com/media/abc.jpg",
			"https://pbs.twimg.com/media/abc.jpg",
		},
		{
			"query and suffix together",
			"https://pbs.twimg.com/media/abc.jpg:medium?name=orig",
			"https://pbs.twimg.com/media/abc.jpg:medium",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OriginalQualityURL(tt.in))
		})
	}
}

func TestExtFromURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://pbs.twimg.com/media/abc.jpg", "jpg"},
		{"https://pbs.twimg.com/media/abc.PNG?name=small", "png"},
		{"https://pbs.twimg.com/media/abc.webp:large", "webp"},
		{"https://pbs.twimg.com/media/abc", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtFromURL(tt.in), "url: %s", tt.in)
	}
}

func TestIsValidUsername(t *testing.T) {
	valid := []string{"jack", "a", "user_name", "User123", "fifteen_chars_x"}
	for _, name := range valid {
		assert.True(t, IsValidUsername(name), "expected valid: %s", name)
	}

	invalid := []string{"", "sixteen_chars_xx", "has space", "has-dash", "dot.name", "@jack"}
	for _, name := range invalid {
		assert.False(t, IsValidUsername(name), "expected invalid: %s", name)
	}
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "jack", SanitizeUsername("@jack"))
	assert.Equal(t, "jack", SanitizeUsername("  jack  "))
	assert.Equal(t, "jack", SanitizeUsername(" @jack "))
	assert.Equal(t, "jack", SanitizeUsername("jack"))
}
