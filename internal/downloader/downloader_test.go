package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xid/pkg/errors"
	"xid/pkg/logger"
)

func newTestDownloader() *Downloader {
	return New(5*time.Second, logger.NewTestLogger())
}

func TestFetch(t *testing.T) {
	t.Run("downloads image bytes", func(t *testing.T) {
		imageData := []byte("fake-jpeg-bytes")
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write(imageData)
		}))
		defer server.Close()

		data, ext, err := newTestDownloader().Fetch(context.Background(), server.URL+"/media/abc.jpg")
		require.NoError(t, err)
		assert.Equal(t, imageData, data)
		assert.Equal(t, "jpg", ext)
	})

	t.Run("strips size parameters before requesting", func(t *testing.T) {
		var gotURL string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotURL = r.URL.String()
			w.Write([]byte("data"))
		}))
		defer server.Close()

		_, _, err := newTestDownloader().Fetch(context.Background(), server.URL+"/media/abc.jpg?format=jpg&name=small")
		require.NoError(t, err)
		assert.Equal(t, "/media/abc.jpg", gotURL)
	})

	t.Run("non-2xx response is a download error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, _, err := newTestDownloader().Fetch(context.Background(), server.URL+"/media/gone.jpg")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeDownload))

		var typed *errors.Error
		require.ErrorAs(t, err, &typed)
		assert.Equal(t, http.StatusNotFound, typed.Code)
	})

	t.Run("empty body is a download error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		_, _, err := newTestDownloader().Fetch(context.Background(), server.URL+"/media/empty.jpg")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeDownload))
	})

	t.Run("unreachable host is a download error", func(t *testing.T) {
		_, _, err := newTestDownloader().Fetch(context.Background(), "http://127.0.0.1:1/media/abc.jpg")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeDownload))
	})
}

func TestExtFromResponse(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		url         string
		want        string
	}{
		{"jpeg content type", "image/jpeg", "https://pbs.twimg.com/media/a", "jpg"},
		{"png with charset", "image/png; charset=utf-8", "https://pbs.twimg.com/media/a", "png"},
		{"webp content type", "image/webp", "https://pbs.twimg.com/media/a", "webp"},
		{"unknown type falls back to url", "application/octet-stream", "https://pbs.twimg.com/media/a.png", "png"},
		{"missing header falls back to url", "", "https://pbs.twimg.com/media/a.gif", "gif"},
		{"nothing known defaults to jpg", "", "https://pbs.twimg.com/media/a", "jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extFromResponse(tt.contentType, tt.url))
		})
	}
}
