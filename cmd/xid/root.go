package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"xid/pkg/auth"
	"xid/pkg/config"
	"xid/pkg/errors"
	"xid/pkg/logger"
	"xid/pkg/scraper"
	"xid/pkg/twitter"
)

var (
	// Version information, set at build time
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile  string
	logLevel    string
	quiet       bool
	accountName string
	maxPosts    int
	pageSize    int
	timeoutSecs int
)

// startDateLayout is the accepted format for the optional start date
const startDateLayout = "2006-01-02"

// rootCmd is the base command; running it executes the download pipeline
var rootCmd = &cobra.Command{
	Use:   "xid <username> [output_directory] [start_date]",
	Short: "Download a Twitter/X account's images with metadata",
	Long: `xid fetches a public X account's timeline, keeps only original posts
with photo attachments, downloads the images in original quality, and
writes each post into its own folder named after the post's timestamp
(YYYYMMDD_HHMMSS, UTC) together with a tweet.txt summary.

Credentials are the four Twitter API v2 user-context secrets, resolved
from (in order): the config file, TWITTER_* environment variables or a
.env file, and credentials stored via 'xid auth login'.`,
	Example: `  # Download all recent image posts
  xid jack

  # Download into a specific directory
  xid jack my_downloads

  # Only posts from 2025-01-15 onwards
  xid jack downloads 2025-01-15`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.RangeArgs(1, 3),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDownload,
}

// Execute runs the root command and maps errors to a non-zero exit
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .xid.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress the final summary on stdout")
	rootCmd.Flags().StringVarP(&accountName, "account", "a", "", "use a specific stored credential set")
	rootCmd.Flags().IntVar(&maxPosts, "max-posts", 0, "maximum number of posts to process (default 200)")
	rootCmd.Flags().IntVar(&pageSize, "page-size", 0, "timeline page size, 5-100 (default 100)")
	rootCmd.Flags().IntVar(&timeoutSecs, "timeout", 0, "HTTP timeout in seconds (default 30)")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func runDownload(cmd *cobra.Command, args []string) error {
	username := twitter.SanitizeUsername(args[0])
	if !twitter.IsValidUsername(username) {
		return errors.Newf(errors.ErrorTypeConfiguration, "invalid username %q", args[0])
	}

	flags := map[string]interface{}{"log-level": logLevel}
	if len(args) > 1 {
		flags["output"] = args[1]
	}
	if maxPosts > 0 {
		flags["max-posts"] = maxPosts
	}
	if pageSize > 0 {
		flags["page-size"] = pageSize
	}
	if timeoutSecs > 0 {
		flags["timeout"] = timeoutSecs
	}

	var since time.Time
	if len(args) > 2 {
		parsed, err := time.Parse(startDateLayout, args[2])
		if err != nil {
			return errors.Newf(errors.ErrorTypeConfiguration, "invalid start date %q (expected yyyy-mm-dd)", args[2])
		}
		since = parsed.UTC()
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return errors.Newf(errors.ErrorTypeConfiguration, "%v", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return errors.Newf(errors.ErrorTypeConfiguration, "%v", err)
	}
	log := logger.GetLogger()

	if err := resolveCredentials(cfg, accountName); err != nil {
		return err
	}

	s, err := scraper.New(cfg, log)
	if err != nil {
		return err
	}

	// An interrupt stops the run cleanly; the post being written may be
	// left incomplete.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := s.Run(ctx, username, since)
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Printf("Done! Processed %d posts\n", summary.PostsProcessed)
		fmt.Printf("  Saved %d posts with images (%d images, %d failed)\n",
			summary.PostsSaved, summary.ImagesDownloaded, summary.ImagesFailed)
		fmt.Printf("  Files saved to: %s\n", summary.OutputDir)
	}

	return nil
}

// resolveCredentials fills cfg.Twitter from stored credentials when the
// config file and environment did not provide all four secrets. Fails
// before any network call when no complete set can be found.
func resolveCredentials(cfg *config.Config, label string) error {
	if cfg.HasCredentials() {
		return nil
	}

	manager, err := auth.NewManager()
	if err == nil {
		if creds, rerr := manager.Retrieve(label); rerr == nil && creds.Complete() {
			cfg.Twitter.APIKey = creds.APIKey
			cfg.Twitter.APISecret = creds.APISecret
			cfg.Twitter.AccessToken = creds.AccessToken
			cfg.Twitter.AccessTokenSecret = creds.AccessTokenSecret
			return nil
		}
	}

	return errors.New(errors.ErrorTypeConfiguration,
		"missing Twitter API credentials: set TWITTER_API_KEY, TWITTER_API_SECRET, "+
			"TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_TOKEN_SECRET (or run 'xid auth login')")
}
