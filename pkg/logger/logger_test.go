package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xid/pkg/config"
)

func TestNew(t *testing.T) {
	t.Run("valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "warning", "error", "disabled"} {
			log, err := New(&config.LoggingConfig{Level: level})
			require.NoError(t, err, "level %s", level)
			assert.NotNil(t, log)
		}
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := New(&config.LoggingConfig{Level: "verbose"})
		assert.Error(t, err)
	})
}

func TestGetLoggerNeverNil(t *testing.T) {
	assert.NotNil(t, GetLogger())
}

func TestTestLoggerCapturesMessages(t *testing.T) {
	log := NewTestLogger()

	log.Info("starting up")
	log.WarnWithFields("slow response", map[string]interface{}{"duration_ms": 1200})
	log.Error("it broke")

	messages := log.Messages()
	require.Len(t, messages, 3)

	assert.Equal(t, "INFO", messages[0].Level)
	assert.Equal(t, "starting up", messages[0].Message)
	assert.Equal(t, 1200, messages[1].Fields["duration_ms"])

	assert.True(t, log.HasMessage("ERROR", "broke"))
	assert.False(t, log.HasMessage("INFO", "broke"))

	log.Reset()
	assert.Empty(t, log.Messages())
}

func TestTestLoggerWithFields(t *testing.T) {
	log := NewTestLogger()

	// Derived loggers record into the parent's buffer
	child := log.WithField("post_id", "123")
	child.Warn("download failed")

	grandchild := child.WithFields(map[string]interface{}{"image_url": "https://example.com/a.jpg"})
	grandchild.InfoWithFields("retrying", map[string]interface{}{"attempt": 2})

	messages := log.Messages()
	require.Len(t, messages, 2)

	assert.Equal(t, "123", messages[0].Fields["post_id"])

	// Fields accumulate through the chain
	assert.Equal(t, "123", messages[1].Fields["post_id"])
	assert.Equal(t, "https://example.com/a.jpg", messages[1].Fields["image_url"])
	assert.Equal(t, 2, messages[1].Fields["attempt"])
}

func TestTestLoggerWithError(t *testing.T) {
	log := NewTestLogger()

	log.WithError(errors.New("connection reset")).Error("request failed")

	messages := log.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "connection reset", messages[0].Fields["error"])

	// A nil error adds nothing
	same := log.WithError(nil)
	assert.Equal(t, Logger(log), same)
}
