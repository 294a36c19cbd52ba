package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dghubble/oauth1"

	"xid/pkg/config"
	"xid/pkg/errors"
	"xid/pkg/logger"
)

// defaultRateLimitWindow is assumed when a 429 response carries no
// x-rate-limit-reset header.
const defaultRateLimitWindow = 15 * time.Minute

// TimelineParams controls one page fetch of a user timeline
type TimelineParams struct {
	// Since excludes posts created strictly before this time (inclusive)
	Since time.Time
	// PaginationToken is the cursor returned by the previous page
	PaginationToken string
	// PageSize is the requested page size (clamped to the API bounds)
	PageSize int
}

// TimelinePage is one page of converted timeline posts
type TimelinePage struct {
	Posts     []Post
	NextToken string
}

// Client is a Twitter v2 API client signing requests with OAuth 1.0a
// user context
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a new API client from the four user-context secrets
func NewClient(creds config.TwitterConfig, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	oauthConfig := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)
	httpClient := oauthConfig.Client(oauth1.NoContext, token)
	httpClient.Timeout = timeout

	return &Client{
		httpClient: httpClient,
		baseURL:    BaseURL,
		logger:     log,
	}
}

// SetBaseURL overrides the API base URL (used by tests)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetHTTPClient overrides the underlying HTTP client (used by tests)
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// Authenticate verifies the configured credentials against the API and
// returns the authenticated user. Invalid or expired credentials produce
// an auth error.
func (c *Client) Authenticate(ctx context.Context) (*UserObject, error) {
	var response UserResponse
	if err := c.getJSON(ctx, meURL(c.baseURL), &response); err != nil {
		return nil, err
	}
	if response.Data == nil {
		return nil, errors.New(errors.ErrorTypeAuth, "credential check returned no user")
	}

	c.logger.DebugWithFields("authenticated", map[string]interface{}{
		"user_id":  response.Data.ID,
		"username": response.Data.Username,
	})

	return response.Data, nil
}

// LookupUser resolves a username to its user object. An unknown username
// produces a not_found error carrying the offending handle.
func (c *Client) LookupUser(ctx context.Context, username string) (*UserObject, error) {
	var response UserResponse
	err := c.getJSON(ctx, userByUsernameURL(c.baseURL, username), &response)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeNotFound) {
			return nil, errors.Newf(errors.ErrorTypeNotFound, "user @%s not found", username)
		}
		return nil, err
	}

	// The API reports unknown usernames as partial errors in a 200 body
	if response.Data == nil {
		return nil, errors.Newf(errors.ErrorTypeNotFound, "user @%s not found", username)
	}

	c.logger.DebugWithFields("resolved user", map[string]interface{}{
		"username": username,
		"user_id":  response.Data.ID,
	})

	return response.Data, nil
}

// FetchTimeline fetches one page of a user's timeline and converts it to
// domain posts. NextToken is empty when no further pages exist.
func (c *Client) FetchTimeline(ctx context.Context, userID, authorHandle string, params TimelineParams) (*TimelinePage, error) {
	url := userTweetsURL(c.baseURL, userID, params)

	c.logger.DebugWithFields("fetching timeline page", map[string]interface{}{
		"user_id":          userID,
		"pagination_token": params.PaginationToken,
	})

	var response TimelineResponse
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}

	page := &TimelinePage{
		Posts: buildPosts(&response, authorHandle),
	}
	if response.Meta != nil {
		page.NextToken = response.Meta.NextToken
	}

	c.logger.DebugWithFields("timeline page fetched", map[string]interface{}{
		"user_id":    userID,
		"post_count": len(page.Posts),
		"has_next":   page.NextToken != "",
	})

	return page, nil
}

// getJSON performs a GET request and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Newf(errors.ErrorTypeUnknown, "failed to create request: %v", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return errors.Newf(errors.ErrorTypeNetwork, "network error: %v", err)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Newf(errors.ErrorTypeNetwork, "failed to read response body: %v", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errors.Newf(errors.ErrorTypeParsing, "failed to parse JSON: %v", err)
	}

	return nil
}

// checkResponseStatus maps HTTP response codes onto the error taxonomy
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "invalid or expired credentials",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusNotFound:
		return &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		resetAt := parseRateLimitReset(resp.Header)
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status":   resp.StatusCode,
			"url":      resp.Request.URL.String(),
			"reset_at": resetAt,
		})
		return errors.NewRateLimit(resetAt)
	case resp.StatusCode >= 500:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	default:
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}
}

// parseRateLimitReset reads the documented reset header (unix seconds).
// Falls back to a full window from now when the header is missing.
func parseRateLimitReset(header http.Header) time.Time {
	if raw := header.Get("x-rate-limit-reset"); raw != "" {
		if epoch, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return time.Unix(epoch, 0)
		}
	}
	return time.Now().Add(defaultRateLimitWindow)
}
