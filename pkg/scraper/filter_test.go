package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"xid/pkg/twitter"
)

func TestFilter(t *testing.T) {
	posts := []twitter.Post{
		{ID: "1", Images: []string{"https://pbs.twimg.com/media/a.jpg"}},
		{ID: "2"}, // no images
		{ID: "3", IsRepost: true, Images: []string{"https://pbs.twimg.com/media/b.jpg"}},
		{ID: "4", Images: []string{"https://pbs.twimg.com/media/c.jpg", "https://pbs.twimg.com/media/d.jpg"}},
		{ID: "5", IsRepost: true},
	}

	kept := Filter(posts)

	// Every kept post is an original with images, order preserved
	assert.Len(t, kept, 2)
	assert.Equal(t, "1", kept[0].ID)
	assert.Equal(t, "4", kept[1].ID)
	for _, post := range kept {
		assert.False(t, post.IsRepost)
		assert.True(t, post.HasImages())
	}
}

func TestFilterEmptyInput(t *testing.T) {
	assert.Empty(t, Filter(nil))
	assert.Empty(t, Filter([]twitter.Post{}))
}
