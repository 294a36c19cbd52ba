package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"xid/pkg/errors"
	"xid/pkg/twitter"
)

// dirNameFormat derives the per-post directory name from the post's
// creation time. The API timestamp is used as-is, in UTC.
const dirNameFormat = "20060102_150405"

// metadataFile is the per-post text summary written next to the images
const metadataFile = "tweet.txt"

// Manager writes per-post output directories under a base directory
type Manager struct {
	baseDir string
}

// NewManager creates a storage manager rooted at baseDir. The base
// directory is created immediately, so a run that matches zero posts
// still leaves an (empty) output directory behind.
func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.Newf(errors.ErrorTypeFilesystem, "failed to create output directory: %v", err)
	}
	return &Manager{baseDir: baseDir}, nil
}

// BaseDir returns the base output directory path
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// PostDir creates (idempotently) and returns the directory for a post.
//
// Two different posts created within the same second get distinct
// directories: the second one is disambiguated with a numeric suffix
// (20240101_120000_2, _3, ...). A directory whose tweet.txt carries the
// same post ID is reused, so re-running the pipeline overwrites
// deterministically instead of duplicating.
func (m *Manager) PostDir(post twitter.Post) (string, error) {
	base := post.CreatedAt.UTC().Format(dirNameFormat)

	for attempt := 1; ; attempt++ {
		name := base
		if attempt > 1 {
			name = fmt.Sprintf("%s_%d", base, attempt)
		}
		dir := filepath.Join(m.baseDir, name)

		info, err := os.Stat(dir)
		switch {
		case os.IsNotExist(err):
			if err := os.MkdirAll(dir, 0755); err != nil {
				return "", errors.Newf(errors.ErrorTypeFilesystem, "failed to create post directory: %v", err)
			}
			return dir, nil
		case err != nil:
			return "", errors.Newf(errors.ErrorTypeFilesystem, "failed to stat post directory: %v", err)
		case !info.IsDir():
			return "", errors.Newf(errors.ErrorTypeFilesystem, "output path %s exists and is not a directory", dir)
		}

		// Existing directory: reuse when it belongs to this post
		if readPostID(dir) == post.ID {
			return dir, nil
		}
	}
}

// SaveImage writes image bytes as image_<index>.<ext> inside dir.
// The file is written via a temporary file and an atomic rename.
func (m *Manager) SaveImage(dir string, index int, ext string, data []byte) (string, error) {
	filename := filepath.Join(dir, fmt.Sprintf("image_%d.%s", index, ext))
	if err := writeFileAtomic(filename, data); err != nil {
		return "", err
	}
	return filename, nil
}

// WriteMetadata writes the post's tweet.txt summary: one field per line
// (id, creation time, author handle, text, like count, repost count)
// followed by the list of image URLs.
func (m *Manager) WriteMetadata(dir string, post twitter.Post) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Tweet ID: %s\n", post.ID)
	fmt.Fprintf(&b, "Created at: %s\n", post.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "Author: @%s\n", post.AuthorHandle)
	fmt.Fprintf(&b, "Text: %s\n", post.Text)
	fmt.Fprintf(&b, "Likes: %d\n", post.Likes)
	fmt.Fprintf(&b, "Retweets: %d\n", post.Retweets)

	if len(post.Images) > 0 {
		b.WriteString("\nImage URLs:\n")
		for idx, url := range post.Images {
			fmt.Fprintf(&b, "  %d. %s\n", idx+1, url)
		}
	}

	return writeFileAtomic(filepath.Join(dir, metadataFile), []byte(b.String()))
}

// writeFileAtomic writes data to a temporary file and renames it into place
func writeFileAtomic(filename string, data []byte) error {
	tempFile := filename + ".tmp"

	out, err := os.Create(tempFile)
	if err != nil {
		return errors.Newf(errors.ErrorTypeFilesystem, "failed to create temporary file: %v", err)
	}

	_, writeErr := out.Write(data)
	closeErr := out.Close()

	if writeErr != nil {
		os.Remove(tempFile)
		return errors.Newf(errors.ErrorTypeFilesystem, "failed to write %s: %v", filename, writeErr)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return errors.Newf(errors.ErrorTypeFilesystem, "failed to close %s: %v", filename, closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return errors.Newf(errors.ErrorTypeFilesystem, "failed to rename temporary file: %v", err)
	}

	return nil
}

// readPostID extracts the post ID from a directory's tweet.txt.
// Returns an empty string when the file is missing or malformed.
func readPostID(dir string) string {
	f, err := os.Open(filepath.Join(dir, metadataFile))
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		line := scanner.Text()
		if id, ok := strings.CutPrefix(line, "Tweet ID: "); ok {
			return strings.TrimSpace(id)
		}
	}
	return ""
}
