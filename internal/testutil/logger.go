// Package testutil holds test doubles shared across packages.
package testutil

import (
	"sync"

	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// RecordingLogger captures log calls for assertions. Loggers derived with
// With or Named share the parent's entries.
type RecordingLogger struct {
	name   string
	fields []logging.Field
	store  *entryStore
}

type entryStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ logging.Logger = (*RecordingLogger)(nil)

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{store: &entryStore{}}
}

func (l *RecordingLogger) record(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	l.store.entries = append(l.store.entries, LogEntry{Level: level, Logger: l.name, Message: msg, Fields: all})
}

func (l *RecordingLogger) Debug(msg string, fields ...logging.Field) { l.record("debug", msg, fields) }
func (l *RecordingLogger) Info(msg string, fields ...logging.Field)  { l.record("info", msg, fields) }
func (l *RecordingLogger) Warn(msg string, fields ...logging.Field)  { l.record("warn", msg, fields) }
func (l *RecordingLogger) Error(msg string, fields ...logging.Field) { l.record("error", msg, fields) }

// Fatal records at fatal level; it does not exit.
func (l *RecordingLogger) Fatal(msg string, fields ...logging.Field) { l.record("fatal", msg, fields) }

func (l *RecordingLogger) With(fields ...logging.Field) logging.Logger {
	merged := append(append([]logging.Field{}, l.fields...), fields...)
	return &RecordingLogger{name: l.name, fields: merged, store: l.store}
}

func (l *RecordingLogger) Named(name string) logging.Logger {
	if l.name != "" {
		name = l.name + "." + name
	}
	return &RecordingLogger{name: name, fields: l.fields, store: l.store}
}

// Entries returns a copy of everything logged so far.
func (l *RecordingLogger) Entries() []LogEntry {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	out := make([]LogEntry, len(l.store.entries))
	copy(out, l.store.entries)
	return out
}

// Has reports whether msg was logged at level.
func (l *RecordingLogger) Has(level, msg string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

// Field returns the named field of the first entry with msg.
func (l *RecordingLogger) Field(msg, key string) (logging.Field, bool) {
	for _, e := range l.Entries() {
		if e.Message != msg {
			continue
		}
		for _, f := range e.Fields {
			if f.Key == key {
				return f, true
			}
		}
	}
	return logging.Field{}, false
}

func (l *RecordingLogger) Reset() {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	l.store.entries = nil
}

//Personal.AI order the ending
