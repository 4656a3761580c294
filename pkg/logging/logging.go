// pkg/logging/logging.go - leveled key/value logging for spruce.
//
// Log lines go to stderr (reports own stdout) and optionally to a log file:
//
//	[2026-10-19 14:03:11] INFO  Archived file path=pkgs/Firefox-1.0.dmg

package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of the log message.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the LogLevel.
func (ll LogLevel) String() string {
	switch ll {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a configured level name to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "INFO", "":
		return LevelInfo, nil
	case "DEBUG":
		return LevelDebug, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// LoggerConfig holds configuration for the logger.
type LoggerConfig struct {
	Level   LogLevel
	Console io.Writer // defaults to os.Stderr
	LogFile string    // optional, appended to
}

// Logger writes leveled messages to the console and an optional file.
type Logger struct {
	mu       sync.Mutex
	logger   *log.Logger
	logLevel LogLevel
	logFile  *os.File
	now      func() time.Time
}

var (
	instanceMu sync.RWMutex
	instance   = &Logger{logger: log.New(os.Stderr, "", 0), logLevel: LevelInfo, now: time.Now}
)

// Init replaces the package logger. The previous log file, if any, is closed.
func Init(cfg LoggerConfig) error {
	l, err := newLogger(cfg)
	if err != nil {
		return err
	}
	instanceMu.Lock()
	old := instance
	instance = l
	instanceMu.Unlock()
	old.close()
	return nil
}

func newLogger(cfg LoggerConfig) (*Logger, error) {
	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}
	l := &Logger{logLevel: cfg.Level, now: time.Now}

	out := console
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", cfg.LogFile, err)
		}
		l.logFile = f
		out = io.MultiWriter(console, f)
	}
	l.logger = log.New(out, "", 0)
	return l, nil
}

// Close flushes and closes the log file of the package logger.
func Close() {
	instanceMu.RLock()
	l := instance
	instanceMu.RUnlock()
	l.close()
}

func (l *Logger) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile != nil {
		_ = l.logFile.Sync()
		_ = l.logFile.Close()
		l.logFile = nil
		l.logger.SetOutput(os.Stderr)
	}
}

// Enabled reports whether messages at level are written.
func Enabled(level LogLevel) bool {
	instanceMu.RLock()
	defer instanceMu.RUnlock()
	return level <= instance.logLevel
}

func (l *Logger) logMessage(level LogLevel, message string, keyValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level > l.logLevel {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %-5s %s", l.now().Format("2006-01-02 15:04:05"), level, message)
	for i := 0; i < len(keyValues); i += 2 {
		if i+1 < len(keyValues) {
			fmt.Fprintf(&b, " %v=%v", keyValues[i], keyValues[i+1])
		} else {
			fmt.Fprintf(&b, " %v", keyValues[i])
		}
	}
	l.logger.Println(b.String())
}

func current() *Logger {
	instanceMu.RLock()
	defer instanceMu.RUnlock()
	return instance
}

// Info logs informational messages.
func Info(message string, keyValues ...interface{}) {
	current().logMessage(LevelInfo, message, keyValues...)
}

// Debug logs debug messages.
func Debug(message string, keyValues ...interface{}) {
	current().logMessage(LevelDebug, message, keyValues...)
}

// Warn logs warning messages.
func Warn(message string, keyValues ...interface{}) {
	current().logMessage(LevelWarn, message, keyValues...)
}

// Error logs error messages.
func Error(message string, keyValues ...interface{}) {
	current().logMessage(LevelError, message, keyValues...)
}
