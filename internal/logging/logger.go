// Package logging provides leveled, optionally colored logging with an
// optional plain-text file sink, built on charmbracelet/log.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/backmassage/arc2ipa/internal/config"
	"github.com/backmassage/arc2ipa/internal/term"
)

const timeFormat = "2006-01-02 15:04:05"

// SuccessLevel sits between info and warn; it is rendered as DONE.
const SuccessLevel = log.InfoLevel + 1

// Logger fans every line out to the console and, when configured, to a log
// file. Console colors follow the resolved color mode; the file is always plain.
type Logger struct {
	mu      sync.Mutex
	console *log.Logger
	file    *log.Logger
	f       *os.File
}

// NewLogger configures terminal colors from cfg and optionally opens
// cfg.LogFile for appending. Call Close() when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	profile := term.Configure(cfg.ColorMode, os.Stderr)
	l := New(os.Stderr, profile)

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.f = f
		l.file = newLogger(f, termenv.Ascii)
	}
	return l, nil
}

// New returns a console-only Logger writing to w with the given profile.
func New(w io.Writer, profile termenv.Profile) *Logger {
	return &Logger{console: newLogger(w, profile)}
}

func newLogger(w io.Writer, profile termenv.Profile) *log.Logger {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Level:           log.DebugLevel,
	})
	lg.SetColorProfile(profile)
	lg.SetStyles(styles())
	return lg
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Levels[SuccessLevel] = lipgloss.NewStyle().
		SetString("DONE").
		Bold(true).
		MaxWidth(4).
		Foreground(lipgloss.Color("42"))
	return s
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f != nil {
		err := l.f.Close()
		l.f = nil
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level log.Level, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console.Log(level, text)
	if l.file != nil {
		l.file.Log(level, text)
	}
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.line(log.InfoLevel, fmt.Sprintf(format, args...))
}

// Success logs at DONE level.
func (l *Logger) Success(format string, args ...interface{}) {
	l.line(SuccessLevel, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line(log.WarnLevel, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line(log.ErrorLevel, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level only when verbose; no-op otherwise.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.line(log.DebugLevel, fmt.Sprintf(format, args...))
}

// Block logs each non-empty line of text at ERROR level with an indent.
// Used for the tail of delegate output attached to a failure.
func (l *Logger) Block(text string) {
	for _, s := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if strings.TrimSpace(s) == "" {
			continue
		}
		l.line(log.ErrorLevel, "  "+s)
	}
}
