package twitter

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

const (
	// BaseURL is the base URL for the Twitter v2 API
	BaseURL = "https://api.twitter.com/2"

	// MinPageSize is the smallest page the timeline endpoint accepts
	MinPageSize = 5

	// MaxPageSize is the largest page the timeline endpoint accepts
	MaxPageSize = 100
)

// timelineExclude drops retweets and replies server-side. Retweets are
// still re-checked client-side so the filter invariant holds regardless.
const timelineExclude = "retweets,replies"

// meURL constructs the URL for validating the authenticated user
func meURL(baseURL string) string {
	return baseURL + "/users/me"
}

// userByUsernameURL constructs the URL for resolving a username to a user ID
func userByUsernameURL(baseURL, username string) string {
	return fmt.Sprintf("%s/users/by/username/%s", baseURL, url.PathEscape(username))
}

// userTweetsURL constructs the URL for one page of a user's timeline
func userTweetsURL(baseURL, userID string, p TimelineParams) string {
	pageSize := p.PageSize
	if pageSize < MinPageSize {
		pageSize = MinPageSize
	} else if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	params := url.Values{}
	params.Set("max_results", strconv.Itoa(pageSize))
	params.Set("exclude", timelineExclude)
	params.Set("tweet.fields", "created_at,attachments,public_metrics,referenced_tweets")
	params.Set("media.fields", "type,url,width,height")
	params.Set("expansions", "attachments.media_keys")
	if !p.Since.IsZero() {
		params.Set("start_time", p.Since.UTC().Format("2006-01-02T15:04:05Z"))
	}
	if p.PaginationToken != "" {
		params.Set("pagination_token", p.PaginationToken)
	}

	return fmt.Sprintf("%s/users/%s/tweets?%s", baseURL, url.PathEscape(userID), params.Encode())
}

// sizeSuffixes are legacy pbs.twimg.com size markers appended to image URLs
var sizeSuffixes = []string{":large", ":medium", ":small", ":thumb"}

// OriginalQualityURL rewrites an image URL to its original-quality form by
// dropping the query string (name=small etc.) and any trailing size suffix.
func OriginalQualityURL(imageURL string) string {
	original := imageURL
	if idx := strings.Index(original, "?"); idx >= 0 {
		original = original[:idx]
	}
	for _, suffix := range sizeSuffixes {
		if strings.HasSuffix(original, suffix) {
			original = original[:len(original)-len(suffix)]
			break
		}
	}
	return original
}

// ExtFromURL extracts the lowercase file extension (without dot) from an
// image URL, ignoring query parameters and size suffixes. Returns an empty
// string when the URL carries no extension.
func ExtFromURL(imageURL string) string {
	clean := OriginalQualityURL(imageURL)
	parsed, err := url.Parse(clean)
	if err != nil {
		return ""
	}
	ext := path.Ext(parsed.Path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsValidUsername checks if a handle is valid according to X rules:
// 1-15 characters, letters, digits and underscores only.
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 15 {
		return false
	}
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_') {
			return false
		}
	}
	return true
}

// SanitizeUsername strips a leading @ and surrounding whitespace
func SanitizeUsername(username string) string {
	username = strings.TrimSpace(username)
	username = strings.TrimPrefix(username, "@")
	return username
}
