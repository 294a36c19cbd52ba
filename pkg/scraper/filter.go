package scraper

import "xid/pkg/twitter"

// Filter returns the posts worth downloading: original posts (not
// reposts) with at least one image attachment. Pure and order-preserving.
func Filter(posts []twitter.Post) []twitter.Post {
	kept := make([]twitter.Post, 0, len(posts))
	for _, post := range posts {
		if post.IsRepost || !post.HasImages() {
			continue
		}
		kept = append(kept, post)
	}
	return kept
}
