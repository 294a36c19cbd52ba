package scraper

import (
	"context"
	"time"

	"xid/internal/downloader"
	"xid/pkg/config"
	"xid/pkg/logger"
	"xid/pkg/ratelimit"
	"xid/pkg/storage"
	"xid/pkg/twitter"
)

// Scraper drives the pipeline: authenticate, paginate the timeline,
// filter, download images and write per-post directories. Everything is
// sequential; the only suspension point is the rate limit waiter.
type Scraper struct {
	client  TimelineClient
	fetcher ImageFetcher
	storage *storage.Manager
	limiter ratelimit.Limiter
	waiter  *ratelimit.Waiter
	config  *config.Config
	logger  logger.Logger
}

// Summary reports what a run did
type Summary struct {
	PostsProcessed   int
	PostsSaved       int
	ImagesDownloaded int
	ImagesFailed     int
	OutputDir        string
}

// New creates a Scraper wired with the real client, downloader and
// storage manager
func New(cfg *config.Config, log logger.Logger) (*Scraper, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	storageManager, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		client:  twitter.NewClient(cfg.Twitter, cfg.Download.Timeout, log),
		fetcher: downloader.New(cfg.Download.Timeout, log),
		storage: storageManager,
		limiter: ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window),
		waiter:  ratelimit.NewWaiter(cfg.RateLimit.ResetMargin, cfg.RateLimit.NetworkRetries, log),
		config:  cfg,
		logger:  log,
	}, nil
}

// Run downloads all matching posts for the given username. A zero since
// time means no lower bound. Returns a summary even on error, describing
// the work completed so far.
func (s *Scraper) Run(ctx context.Context, username string, since time.Time) (*Summary, error) {
	username = twitter.SanitizeUsername(username)
	summary := &Summary{OutputDir: s.storage.BaseDir()}

	log := s.logger.WithField("username", username)
	log.Info("starting download run")

	var authedUser *twitter.UserObject
	err := s.waiter.Do(ctx, func() error {
		var opErr error
		authedUser, opErr = s.client.Authenticate(ctx)
		return opErr
	})
	if err != nil {
		return summary, err
	}
	log.WithField("authenticated_as", authedUser.Username).Debug("credentials verified")

	var user *twitter.UserObject
	err = s.waiter.Do(ctx, func() error {
		var opErr error
		user, opErr = s.client.LookupUser(ctx, username)
		return opErr
	})
	if err != nil {
		return summary, err
	}

	params := twitter.TimelineParams{
		Since:    since,
		PageSize: s.config.Download.PageSize,
	}

	for {
		// Client-side pacing before each API call
		if !s.limiter.Allow() {
			log.Warn("request budget exhausted, pacing")
			s.limiter.Wait()
		}

		var page *twitter.TimelinePage
		err := s.waiter.Do(ctx, func() error {
			var opErr error
			page, opErr = s.client.FetchTimeline(ctx, user.ID, username, params)
			return opErr
		})
		if err != nil {
			return summary, err
		}

		posts, crossedBoundary := trimAtBoundary(page.Posts, since)
		summary.PostsProcessed += len(posts)

		reachedCap := false
		if s.config.Download.MaxPosts > 0 && summary.PostsProcessed >= s.config.Download.MaxPosts {
			over := summary.PostsProcessed - s.config.Download.MaxPosts
			posts = posts[:len(posts)-over]
			summary.PostsProcessed = s.config.Download.MaxPosts
			reachedCap = true
		}

		for _, post := range Filter(posts) {
			if err := s.writePost(ctx, post, summary); err != nil {
				return summary, err
			}
			summary.PostsSaved++
		}

		if crossedBoundary {
			log.Debug("reached start date boundary, stopping pagination")
			break
		}
		if reachedCap {
			log.WithField("max_posts", s.config.Download.MaxPosts).Debug("reached post cap, stopping pagination")
			break
		}
		if page.NextToken == "" {
			break
		}
		params.PaginationToken = page.NextToken
	}

	log.InfoWithFields("download run finished", map[string]interface{}{
		"posts_processed":   summary.PostsProcessed,
		"posts_saved":       summary.PostsSaved,
		"images_downloaded": summary.ImagesDownloaded,
		"images_failed":     summary.ImagesFailed,
		"output_dir":        summary.OutputDir,
	})

	return summary, nil
}

// writePost creates the post's directory, downloads its images and writes
// the metadata summary. A failed image download is logged and skipped; it
// never aborts the run. Filesystem failures do.
func (s *Scraper) writePost(ctx context.Context, post twitter.Post, summary *Summary) error {
	dir, err := s.storage.PostDir(post)
	if err != nil {
		return err
	}

	log := s.logger.WithFields(map[string]interface{}{
		"post_id": post.ID,
		"dir":     dir,
	})
	log.WithField("images", len(post.Images)).Debug("writing post")

	for idx, imageURL := range post.Images {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, ext, err := s.fetcher.Fetch(ctx, imageURL)
		if err != nil {
			summary.ImagesFailed++
			log.WithError(err).WithField("image_url", imageURL).Warn("image download failed, skipping")
			continue
		}

		if _, err := s.storage.SaveImage(dir, idx+1, ext, data); err != nil {
			return err
		}
		summary.ImagesDownloaded++
	}

	return s.storage.WriteMetadata(dir, post)
}

// trimAtBoundary cuts the newest-first post slice at the first post older
// than since and reports whether the boundary was crossed. A zero since
// keeps everything.
func trimAtBoundary(posts []twitter.Post, since time.Time) ([]twitter.Post, bool) {
	if since.IsZero() {
		return posts, false
	}
	for i, post := range posts {
		if post.CreatedAt.Before(since) {
			return posts[:i], true
		}
	}
	return posts, false
}
