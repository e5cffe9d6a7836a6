package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Fields are structured key/value pairs attached to an entry
type Fields map[string]interface{}

// Logger provides leveled, structured logging in text or JSON lines.
// Child loggers created with WithField share the parent's sink.
type Logger struct {
	level      Level
	jsonFormat bool
	sink       *sink
	fields     Fields
	now        func() time.Time
}

// sink serializes writes from a logger and all of its children
type sink struct {
	mu   sync.Mutex
	out  io.Writer
	file *os.File
}

// NewLogger creates a logger writing to w (stderr when nil)
func NewLogger(level Level, jsonFormat bool, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		level:      level,
		jsonFormat: jsonFormat,
		sink:       &sink{out: w},
		fields:     Fields{},
		now:        time.Now,
	}
}

// NewFileLogger creates a logger that appends to path and mirrors to stderr
func NewFileLogger(path string, level Level, jsonFormat bool) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	l := NewLogger(level, jsonFormat, io.MultiWriter(f, os.Stderr))
	l.sink.file = f
	return l, nil
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewLogger(FATAL+1, false, io.Discard)
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
}

// log writes a log entry
func (l *Logger) log(level Level, message string, fields Fields) {
	if level < l.level {
		return
	}

	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	var line string
	if l.jsonFormat {
		entry := LogEntry{
			Timestamp: l.now().Format(time.RFC3339),
			Level:     level.String(),
			Message:   message,
			Fields:    merged,
		}
		data, err := json.Marshal(entry)
		if err != nil {
			data = []byte(fmt.Sprintf(`{"level":"ERROR","message":"failed to marshal log entry: %v"}`, err))
		}
		line = string(data)
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "[%s] %s: %s", l.now().Format("2006-01-02 15:04:05"), level.String(), message)
		// Sorted keys keep text lines stable for grepping
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, merged[k])
		}
		line = b.String()
	}

	l.sink.mu.Lock()
	fmt.Fprintln(l.sink.out, line)
	l.sink.mu.Unlock()

	if level == FATAL {
		os.Exit(1)
	}
}

func first(fields []Fields) Fields {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields ...Fields) { l.log(DEBUG, message, first(fields)) }

// Info logs an info message
func (l *Logger) Info(message string, fields ...Fields) { l.log(INFO, message, first(fields)) }

// Warn logs a warning message
func (l *Logger) Warn(message string, fields ...Fields) { l.log(WARN, message, first(fields)) }

// Error logs an error message
func (l *Logger) Error(message string, fields ...Fields) { l.log(ERROR, message, first(fields)) }

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(message string, fields ...Fields) { l.log(FATAL, message, first(fields)) }

// Enabled reports whether entries at level would be written
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	newFields := make(Fields, len(l.fields)+1)
	for k, v := range l.fields {
		newFields[k] = v
	}
	newFields[key] = value
	return &Logger{
		level:      l.level,
		jsonFormat: l.jsonFormat,
		sink:       l.sink,
		fields:     newFields,
		now:        l.now,
	}
}

// ParseLevel parses a log level string
func ParseLevel(level string) Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Close closes the log file if opened
func (l *Logger) Close() error {
	if l.sink.file != nil {
		return l.sink.file.Close()
	}
	return nil
}
