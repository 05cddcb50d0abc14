package testenv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogWriter is a zerolog output that prints message index (starting
// from 0), level and message content, without the timestamp.
// This allows test log output to be deterministic.
type TestLogWriter struct {
	mu                  sync.Mutex
	out                 io.Writer
	index               int
	ignoreErrorPrefixes []string
	ignoreDebug         bool
	omitFields          map[string]bool
}

// TestLogWriterOption is a function that configures a TestLogWriter
type TestLogWriterOption func(*TestLogWriter)

// WithOutput writes to w instead of os.Stdout
func WithOutput(w io.Writer) TestLogWriterOption {
	return func(t *TestLogWriter) {
		t.out = w
	}
}

// WithIgnoreErrorPrefixes sets prefixes for error messages that should be ignored
func WithIgnoreErrorPrefixes(prefixes ...string) TestLogWriterOption {
	return func(t *TestLogWriter) {
		t.ignoreErrorPrefixes = append(t.ignoreErrorPrefixes, prefixes...)
	}
}

// WithIgnoreDebug configures the writer to ignore DEBUG level messages
func WithIgnoreDebug() TestLogWriterOption {
	return func(t *TestLogWriter) {
		t.ignoreDebug = true
	}
}

// WithOmitFields drops fields whose values change between runs, such as
// elapsed times.
func WithOmitFields(names ...string) TestLogWriterOption {
	return func(t *TestLogWriter) {
		for _, n := range names {
			t.omitFields[n] = true
		}
	}
}

func NewTestLogWriter(opts ...TestLogWriterOption) *TestLogWriter {
	t := &TestLogWriter{out: os.Stdout, omitFields: map[string]bool{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTestLogger returns a logger at debug level writing through a
// TestLogWriter.
func NewTestLogger(opts ...TestLogWriterOption) zerolog.Logger {
	return zerolog.New(NewTestLogWriter(opts...)).Level(zerolog.DebugLevel)
}

func (t *TestLogWriter) Write(p []byte) (int, error) {
	var event map[string]any
	dec := json.NewDecoder(bytes.NewReader(p))
	dec.UseNumber()
	if err := dec.Decode(&event); err != nil {
		return 0, err
	}

	level, _ := event[zerolog.LevelFieldName].(string)
	message, _ := event[zerolog.MessageFieldName].(string)
	delete(event, zerolog.LevelFieldName)
	delete(event, zerolog.MessageFieldName)
	delete(event, zerolog.TimestampFieldName)

	if level == zerolog.LevelDebugValue && t.ignoreDebug {
		return len(p), nil
	}
	if level == zerolog.LevelErrorValue {
		for _, prefix := range t.ignoreErrorPrefixes {
			if strings.HasPrefix(message, prefix) {
				return len(p), nil
			}
		}
	}

	keys := make([]string, 0, len(event))
	for k := range event {
		if !t.omitFields[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(&b, "[%d] %s: %s", t.index, strings.ToUpper(level), message)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, event[k])
	}
	b.WriteByte('\n')
	t.index++

	if _, err := io.WriteString(t.out, b.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}
