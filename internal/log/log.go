// Package log is fontpick's debug logger. Entries carry a level, a
// category and key=value fields; they go to a file, to a bounded in-memory
// history and to anyone listening through pubsub. Nothing is recorded
// until one of the Init functions runs (--debug or FONTPICK_DEBUG).
package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/fontpick/internal/pubsub"
)

// Level is an entry's severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Category names the subsystem an entry came from.
type Category string

const (
	CatCatalog Category = "catalog"
	CatPicker  Category = "picker"
	CatPreview Category = "preview"
	CatConfig  Category = "config"
	CatUI      Category = "ui"
	CatDB      Category = "db"
	CatCache   Category = "cache"
	CatTrace   Category = "trace"
)

const (
	historySize = 500
	timeLayout  = "2006-01-02T15:04:05"
)

// Entry is one log record.
type Entry struct {
	Time     time.Time
	Level    Level
	Category Category
	Message  string
	Fields   string
}

// String formats e the way it is written to the log file:
//
//	2026-10-15T10:45:00 [INFO] [catalog] Catalog loaded picker=main fonts=42
func (e Entry) String() string {
	s := fmt.Sprintf("%s [%s] [%s] %s", e.Time.Format(timeLayout), e.Level, e.Category, e.Message)
	if e.Fields != "" {
		s += " " + e.Fields
	}
	return s
}

// logger is the process-wide sink. history is a ring; next is the slot
// the following entry goes into and full reports whether it has wrapped.
type logger struct {
	mu       sync.Mutex
	out      io.Writer
	closer   io.Closer
	enabled  bool
	minLevel Level
	history  [historySize]Entry
	next     int
	full     bool
	events   *pubsub.Broker[Entry]
}

var defaultLogger *logger

// InitWithTeaLog logs to path through tea.LogToFile. The returned cleanup
// closes the file and may be called more than once.
func InitWithTeaLog(path, prefix string) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l := install(f, f)
	return l.release, nil
}

// InitWithWriter logs to w, which is never closed.
func InitWithWriter(w io.Writer) {
	install(w, nil)
}

func install(w io.Writer, c io.Closer) *logger {
	l := &logger{out: w, closer: c, enabled: true, events: pubsub.NewBroker[Entry]()}
	defaultLogger = l
	return l
}

func (l *logger) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer != nil {
		_ = l.closer.Close()
	}
	l.out, l.closer = nil, nil
}

// SetEnabled turns recording on or off.
func SetEnabled(on bool) {
	if l := defaultLogger; l != nil {
		l.mu.Lock()
		l.enabled = on
		l.mu.Unlock()
	}
}

// SetMinLevel drops entries below level.
func SetMinLevel(level Level) {
	if l := defaultLogger; l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

func Debug(cat Category, msg string, fields ...any) { record(LevelDebug, cat, msg, fields) }
func Info(cat Category, msg string, fields ...any) { record(LevelInfo, cat, msg, fields) }
func Warn(cat Category, msg string, fields ...any) { record(LevelWarn, cat, msg, fields) }
func Error(cat Category, msg string, fields ...any) { record(LevelError, cat, msg, fields) }

// ErrorErr logs at error level with err appended as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	text := "<nil>"
	if err != nil {
		text = err.Error()
	}
	record(LevelError, cat, msg, append(fields, "error", text))
}

// Recent returns up to n of the latest entries, oldest first. n <= 0
// returns everything kept.
func Recent(n int) []Entry {
	l := defaultLogger
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.next
	if l.full {
		size = historySize
	}
	if n <= 0 || n > size {
		n = size
	}
	out := make([]Entry, n)
	start := l.next - n
	for i := range out {
		out[i] = l.history[(start+i+historySize)%historySize]
	}
	return out
}

func formatFields(fields []any) string {
	var b strings.Builder
	for i := 0; i < len(fields); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i+1 == len(fields) {
			fmt.Fprintf(&b, "%v=<missing>", fields[i])
			break
		}
		fmt.Fprintf(&b, "%v=%v", fields[i], fields[i+1])
	}
	return b.String()
}

func record(level Level, cat Category, msg string, fields []any) {
	l := defaultLogger
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel {
		return
	}

	e := Entry{Time: time.Now(), Level: level, Category: cat, Message: msg, Fields: formatFields(fields)}
	l.history[l.next] = e
	l.next = (l.next + 1) % historySize
	if l.next == 0 {
		l.full = true
	}
	if l.out != nil {
		_, _ = io.WriteString(l.out, e.String()+"\n")
	}
	l.events.Publish(pubsub.Logged, e)
}

// LogEvent is the message a LogListener delivers.
type LogEvent = pubsub.Event[Entry]

// LogListener delivers log entries to the update loop.
type LogListener = pubsub.Listener[Entry]

// NewListener subscribes to new entries until ctx ends. It returns nil
// when logging was never initialized.
func NewListener(ctx context.Context) *LogListener {
	if defaultLogger == nil {
		return nil
	}
	return pubsub.Listen(ctx, defaultLogger.events)
}
