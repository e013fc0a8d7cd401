package internal

import (
	"log"
	"os"
	"strings"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// ParseLogLevel maps ERROR, WARN, INFO or DEBUG (any case) to a level,
// falling back to INFO.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

// Logger writes "[Component] message" lines through the standard logger,
// dropping messages above its level.
type Logger struct {
	component string
	level     LogLevel
}

// NewLogger creates a logger for component at the level named by LOG_LEVEL
func NewLogger(component string) *Logger {
	return &Logger{component: component, level: ParseLogLevel(os.Getenv("LOG_LEVEL"))}
}

func (l *Logger) printf(level LogLevel, tag, format string, args ...interface{}) {
	if l.level < level {
		return
	}
	log.Printf("["+l.component+"] "+tag+format, args...)
}

// Errorf logs error messages
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.printf(LogLevelError, "ERROR - ", format, args...)
}

// Warnf logs warning messages
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.printf(LogLevelWarn, "WARN - ", format, args...)
}

// Infof logs info messages
func (l *Logger) Infof(format string, args ...interface{}) {
	l.printf(LogLevelInfo, "", format, args...)
}

// Debugf logs debug messages
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.printf(LogLevelDebug, "", format, args...)
}
