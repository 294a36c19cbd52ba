package scraper

import (
	"context"

	"xid/pkg/twitter"
)

// TimelineClient is the API surface the pipeline needs from the Twitter
// client. Kept small so tests can substitute a fake.
type TimelineClient interface {
	// Authenticate verifies credentials and returns the authenticated user
	Authenticate(ctx context.Context) (*twitter.UserObject, error)

	// LookupUser resolves a username to its user object
	LookupUser(ctx context.Context, username string) (*twitter.UserObject, error)

	// FetchTimeline fetches one page of a user's timeline
	FetchTimeline(ctx context.Context, userID, authorHandle string, params twitter.TimelineParams) (*twitter.TimelinePage, error)
}

// ImageFetcher downloads original-quality image bytes
type ImageFetcher interface {
	// Fetch returns the image bytes and the derived file extension
	Fetch(ctx context.Context, imageURL string) ([]byte, string, error)
}
