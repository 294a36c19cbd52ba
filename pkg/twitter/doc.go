// Package twitter provides the Twitter v2 API client used by the
// download pipeline.
//
// The Client signs requests with OAuth 1.0a user context built from the
// four configured secrets and exposes three operations:
//
//   - Authenticate: verify credentials via /users/me
//   - LookupUser: resolve a username to a user ID
//   - FetchTimeline: fetch one page of a user's timeline with media
//     expansions and convert it to domain Posts
//
// Pagination follows the API's cursor contract: callers pass the
// returned NextToken back in until it comes up empty. Errors are mapped
// onto the shared taxonomy in pkg/errors; a 429 response becomes a rate
// limit error carrying the reset time from the x-rate-limit-reset
// header.
//
// The package also contains URL helpers for rewriting image URLs to
// their original-quality form.
package twitter
