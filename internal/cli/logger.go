package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Level is a logging severity.
type Level int

// Logging levels, lowest first.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgCyan),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

// Logger writes "LEVEL: message" lines at or above a minimum level.
type Logger struct {
	out io.Writer
	min Level
}

// NewLogger creates a logger writing to out. Verbose lowers the threshold
// from INFO to DEBUG.
func NewLogger(out io.Writer, verbose bool) *Logger {
	min := LevelInfo
	if verbose {
		min = LevelDebug
	}
	return &Logger{out: out, min: min}
}

// Enabled reports whether messages at level l are written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.min
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	_, _ = levelColors[level].Fprint(l.out, level.String())
	_, _ = fmt.Fprintf(l.out, ": "+format+"\n", args...)
}

// Debugf logs at DEBUG level.
func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }

// Warnf logs at WARNING level.
func (l *Logger) Warnf(format string, args ...any) { l.logf(LevelWarn, format, args...) }

// Errorf logs at ERROR level.
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }
