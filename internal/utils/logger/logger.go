package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fatih/color"
)

type Logger struct {
	serviceName string
}

var (
	infoEmoji    = "ℹ️ "
	successEmoji = "✅ "
	warnEmoji    = "⚠️ "
	errorEmoji   = "❌ "
	debugEmoji   = "🔍 "
)

func New(serviceName string) *Logger {
	return &Logger{
		serviceName: serviceName,
	}
}

func (l *Logger) formatMessage(level, emoji, msg string) string {
	_, file, line, _ := runtime.Caller(2)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fileName := filepath.Base(file)

	return fmt.Sprintf("%s | %s | %s | %s:%d | %s | %s",
		emoji,
		timestamp,
		level,
		fileName,
		line,
		l.serviceName,
		msg,
	)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	color.Cyan(l.formatMessage("INFO", infoEmoji, fmt.Sprintf(msg, args...)))
}

func (l *Logger) Success(msg string, args ...interface{}) {
	color.Green(l.formatMessage("SUCCESS", successEmoji, fmt.Sprintf(msg, args...)))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	color.Yellow(l.formatMessage("WARN", warnEmoji, fmt.Sprintf(msg, args...)))
}

// Error logs the message and returns it wrapped around err so call sites can
// `return log.Error(...)` in one line.
func (l *Logger) Error(msg string, err error, args ...interface{}) error {
	args = append(args, err)
	color.Red(l.formatMessage("ERROR", errorEmoji, fmt.Sprintf(msg, args...)))
	return fmt.Errorf("%s: %w", msg, err)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	color.Magenta(l.formatMessage("DEBUG", debugEmoji, fmt.Sprintf(msg, args...)))
}
