package logger

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger is a Logger implementation for tests that captures all messages
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	zerolog  *zerolog.Logger
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	nopLogger := zerolog.Nop()
	return &TestLogger{
		messages: make([]LogMessage, 0),
		zerolog:  &nopLogger,
	}
}

func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		copied[k] = v
	}

	l.messages = append(l.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  copied,
	})
}

func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.log("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.log("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.log("FATAL", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

// fieldLogger wraps a TestLogger and stamps preset fields on every message
type fieldLogger struct {
	parent *TestLogger
	fields map[string]interface{}
}

func (f *fieldLogger) merged(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(f.fields)+len(fields))
	for k, v := range f.fields {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (f *fieldLogger) Debug(msg string) { f.parent.log("DEBUG", msg, f.fields) }
func (f *fieldLogger) Info(msg string)  { f.parent.log("INFO", msg, f.fields) }
func (f *fieldLogger) Warn(msg string)  { f.parent.log("WARN", msg, f.fields) }
func (f *fieldLogger) Error(msg string) { f.parent.log("ERROR", msg, f.fields) }
func (f *fieldLogger) Fatal(msg string) { f.parent.log("FATAL", msg, f.fields) }

func (f *fieldLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	f.parent.log("DEBUG", msg, f.merged(fields))
}

func (f *fieldLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	f.parent.log("INFO", msg, f.merged(fields))
}

func (f *fieldLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	f.parent.log("WARN", msg, f.merged(fields))
}

func (f *fieldLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	f.parent.log("ERROR", msg, f.merged(fields))
}

func (f *fieldLogger) WithField(key string, value interface{}) Logger {
	return f.WithFields(map[string]interface{}{key: value})
}

func (f *fieldLogger) WithFields(fields map[string]interface{}) Logger {
	return &fieldLogger{parent: f.parent, fields: f.merged(fields)}
}

func (f *fieldLogger) WithError(err error) Logger {
	if err == nil {
		return f
	}
	return f.WithField("error", err.Error())
}

func (f *fieldLogger) GetZerolog() *zerolog.Logger {
	return f.parent.zerolog
}

// WithField returns a logger that includes the given field on every message
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a logger that includes the given fields on every message.
// Messages are still recorded in this TestLogger.
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	copied := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &fieldLogger{parent: l, fields: copied}
}

// WithError adds an error field
func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// GetZerolog returns a no-op zerolog instance
func (l *TestLogger) GetZerolog() *zerolog.Logger {
	return l.zerolog
}

// Messages returns all captured messages
func (l *TestLogger) Messages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// HasMessage reports whether any captured message at the given level
// contains the given substring
func (l *TestLogger) HasMessage(level, substring string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if m.Level == level && strings.Contains(m.Message, substring) {
			return true
		}
	}
	return false
}

// Reset clears all captured messages
func (l *TestLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = l.messages[:0]
}
