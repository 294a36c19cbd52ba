// Package scraper orchestrates the download pipeline: authenticate,
// paginate the user's timeline, filter for original posts with images,
// download each image and write per-post output directories. The whole
// run is sequential; the rate limit waiter is the only suspension point.
package scraper
