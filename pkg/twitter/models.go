package twitter

import "time"

// Post is one timeline item with its photo attachments resolved.
// Posts are immutable once built and ordered newest-first, as returned
// by the API.
type Post struct {
	ID           string
	CreatedAt    time.Time
	AuthorHandle string
	Text         string
	Likes        int
	Retweets     int
	IsRepost     bool
	Images       []string
}

// HasImages reports whether the post carries at least one photo attachment
func (p Post) HasImages() bool {
	return len(p.Images) > 0
}

// UserResponse is the response envelope for user lookup endpoints
type UserResponse struct {
	Data   *UserObject `json:"data"`
	Errors []APIError  `json:"errors,omitempty"`
}

// UserObject represents a user returned by the v2 API
type UserObject struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// TimelineResponse is the response envelope for the user tweets endpoint
type TimelineResponse struct {
	Data     []TweetObject `json:"data"`
	Includes *Includes     `json:"includes,omitempty"`
	Meta     *Meta         `json:"meta,omitempty"`
	Errors   []APIError    `json:"errors,omitempty"`
}

// TweetObject represents a single tweet in the v2 wire format
type TweetObject struct {
	ID               string            `json:"id"`
	Text             string            `json:"text"`
	CreatedAt        time.Time         `json:"created_at"`
	Attachments      *Attachments      `json:"attachments,omitempty"`
	ReferencedTweets []ReferencedTweet `json:"referenced_tweets,omitempty"`
	PublicMetrics    *PublicMetrics    `json:"public_metrics,omitempty"`
}

// Attachments holds the media keys attached to a tweet
type Attachments struct {
	MediaKeys []string `json:"media_keys"`
}

// ReferencedTweet marks a tweet as a retweet, quote or reply
type ReferencedTweet struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// PublicMetrics holds a tweet's engagement counts
type PublicMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

// Includes carries expanded objects referenced from the data section
type Includes struct {
	Media []MediaObject `json:"media"`
}

// MediaObject represents an expanded media attachment
type MediaObject struct {
	MediaKey string `json:"media_key"`
	Type     string `json:"type"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Meta holds pagination information for timeline responses
type Meta struct {
	ResultCount int    `json:"result_count"`
	NewestID    string `json:"newest_id,omitempty"`
	OldestID    string `json:"oldest_id,omitempty"`
	NextToken   string `json:"next_token,omitempty"`
}

// APIError is a partial error reported inside a 200 response
type APIError struct {
	Title        string `json:"title"`
	Detail       string `json:"detail"`
	Type         string `json:"type"`
	Value        string `json:"value,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
}

// mediaTypePhoto is the only media type the pipeline downloads.
// Videos and GIFs are out of scope.
const mediaTypePhoto = "photo"

// referencedTypeRetweet marks a pure re-share of another account's tweet
const referencedTypeRetweet = "retweeted"

// IsRetweet reports whether the tweet only re-shares another tweet
func (t TweetObject) IsRetweet() bool {
	for _, ref := range t.ReferencedTweets {
		if ref.Type == referencedTypeRetweet {
			return true
		}
	}
	return false
}

// buildPosts converts a timeline response into domain posts, joining each
// tweet's media keys against the expanded media includes. Only photo
// attachments with a URL are kept; tweet order is preserved.
func buildPosts(resp *TimelineResponse, authorHandle string) []Post {
	mediaByKey := make(map[string]MediaObject)
	if resp.Includes != nil {
		for _, m := range resp.Includes.Media {
			mediaByKey[m.MediaKey] = m
		}
	}

	posts := make([]Post, 0, len(resp.Data))
	for _, tweet := range resp.Data {
		post := Post{
			ID:           tweet.ID,
			CreatedAt:    tweet.CreatedAt,
			AuthorHandle: authorHandle,
			Text:         tweet.Text,
			IsRepost:     tweet.IsRetweet(),
		}
		if tweet.PublicMetrics != nil {
			post.Likes = tweet.PublicMetrics.LikeCount
			post.Retweets = tweet.PublicMetrics.RetweetCount
		}
		if tweet.Attachments != nil {
			for _, key := range tweet.Attachments.MediaKeys {
				media, ok := mediaByKey[key]
				if !ok || media.Type != mediaTypePhoto || media.URL == "" {
					continue
				}
				post.Images = append(post.Images, media.URL)
			}
		}
		posts = append(posts, post)
	}

	return posts
}
