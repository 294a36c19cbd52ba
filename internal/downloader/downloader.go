// Package downloader fetches original-quality image bytes from the X
// image CDN. Downloads are sequential; the pipeline has no competing
// work, so there is nothing to parallelize.
package downloader

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"xid/pkg/errors"
	"xid/pkg/logger"
	"xid/pkg/twitter"
)

// defaultExt is used when neither the response nor the URL reveals a type
const defaultExt = "jpg"

// extByContentType maps image content types onto file extensions
var extByContentType = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Downloader fetches image bytes over plain HTTPS. Image CDN URLs are
// public, so requests are unsigned.
type Downloader struct {
	httpClient *http.Client
	logger     logger.Logger
}

// New creates a downloader with the given request timeout
func New(timeout time.Duration, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Downloader{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// SetHTTPClient overrides the underlying HTTP client (used by tests)
func (d *Downloader) SetHTTPClient(httpClient *http.Client) {
	d.httpClient = httpClient
}

// Fetch downloads the original-quality bytes for the given image URL and
// returns them along with the file extension derived from the response
// content type, falling back to the URL path. Non-2xx responses and empty
// bodies produce a download error.
func (d *Downloader) Fetch(ctx context.Context, imageURL string) ([]byte, string, error) {
	originalURL := twitter.OriginalQualityURL(imageURL)

	d.logger.DebugWithFields("downloading image", map[string]interface{}{
		"url":          imageURL,
		"original_url": originalURL,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, originalURL, nil)
	if err != nil {
		return nil, "", errors.Newf(errors.ErrorTypeDownload, "failed to create request: %v", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, "", errors.Newf(errors.ErrorTypeDownload, "request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &errors.Error{
			Type:    errors.ErrorTypeDownload,
			Message: "image request failed",
			Code:    resp.StatusCode,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Newf(errors.ErrorTypeDownload, "failed to read image data: %v", err)
	}
	if len(data) == 0 {
		return nil, "", errors.New(errors.ErrorTypeDownload, "empty response body")
	}

	ext := extFromResponse(resp.Header.Get("Content-Type"), originalURL)

	d.logger.DebugWithFields("image downloaded", map[string]interface{}{
		"url":  originalURL,
		"size": len(data),
		"ext":  ext,
	})

	return data, ext, nil
}

// extFromResponse derives a file extension from the content type header,
// falling back to the URL path extension
func extFromResponse(contentType, imageURL string) string {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			if ext, ok := extByContentType[strings.ToLower(mediaType)]; ok {
				return ext
			}
		}
	}
	if ext := twitter.ExtFromURL(imageURL); ext != "" {
		return ext
	}
	return defaultExt
}
