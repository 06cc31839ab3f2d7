package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
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
	}
	return "UNKNOWN"
}

// ParseLevel converts a string to a Level, defaulting to INFO
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Field is a key-value pair attached to a log entry
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for creating a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Config holds logger configuration
type Config struct {
	Level      Level
	FilePath   string // empty disables file output
	MaxSize    int64  // bytes before rotation
	MaxBackups int
	Console    bool // also write to stderr; off by default so the TUI stays clean
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	path := ""
	if home != "" {
		path = filepath.Join(home, ".zebra", "logs", "zebra.log")
	}
	return Config{
		Level:      INFO,
		FilePath:   path,
		MaxSize:    10 * 1024 * 1024,
		MaxBackups: 3,
	}
}

// Logger writes leveled, structured entries to a file and optionally stderr
type Logger struct {
	mu   sync.Mutex
	cfg  Config
	file *os.File
	size int64
}

var (
	global *Logger
	once   sync.Once
)

// Init initializes the global logger. Subsequent calls are no-ops.
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		global, err = New(cfg)
	})
	return err
}

// New creates a logger instance
func New(cfg Config) (*Logger, error) {
	l := &Logger{cfg: cfg}
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		if err := l.open(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Logger) open() error {
	f, err := os.OpenFile(l.cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	l.file = f
	l.size = info.Size()
	return nil
}

func (l *Logger) rotate() {
	l.file.Close()
	for i := l.cfg.MaxBackups - 1; i >= 1; i-- {
		os.Rename(
			fmt.Sprintf("%s.%d", l.cfg.FilePath, i),
			fmt.Sprintf("%s.%d", l.cfg.FilePath, i+1),
		)
	}
	os.Rename(l.cfg.FilePath, l.cfg.FilePath+".1")
	if err := l.open(); err != nil {
		l.file = nil
	}
}

func (l *Logger) log(level Level, msg string, fields []Field) {
	if level < l.cfg.Level {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	b.WriteString(" ")
	b.WriteString(level.String())
	b.WriteString(" ")
	b.WriteString(msg)
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	b.WriteString("\n")
	entry := b.String()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		if l.cfg.MaxSize > 0 && l.size+int64(len(entry)) > l.cfg.MaxSize {
			l.rotate()
		}
		if l.file != nil {
			n, _ := l.file.WriteString(entry)
			l.size += int64(n)
		}
	}
	if l.cfg.Console {
		os.Stderr.WriteString(entry)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Field) { l.log(DEBUG, msg, fields) }

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Field) { l.log(INFO, msg, fields) }

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Field) { l.log(WARN, msg, fields) }

// Error logs an error message
func (l *Logger) Error(msg string, fields ...Field) { l.log(ERROR, msg, fields) }

// Close flushes and closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Package-level functions write through the global logger. They are safe to
// call before Init; entries are simply dropped.

func Debug(msg string, fields ...Field) {
	if global != nil {
		global.Debug(msg, fields...)
	}
}

func Info(msg string, fields ...Field) {
	if global != nil {
		global.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...Field) {
	if global != nil {
		global.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...Field) {
	if global != nil {
		global.Error(msg, fields...)
	}
}

func Close() error {
	if global != nil {
		return global.Close()
	}
	return nil
}
