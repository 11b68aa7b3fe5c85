// Package logging builds the zerolog logger shared by the CLI, shell and TUI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Build collects where log lines go and at which level.
type Build struct {
	writer io.Writer
	path   string
	level  string
}

type Logger struct {
	zerolog.Logger
	file *os.File
}

func New() *Build {
	return &Build{}
}

// FromPath appends to the file at path. It wins over FromWriter.
func (b *Build) FromPath(path string) *Build {
	b.path = strings.TrimSpace(path)
	return b
}

func (b *Build) FromWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

// Level sets the minimum level by name ("debug", "info", "warn", ...). Unknown or empty
// names mean "warn".
func (b *Build) Level(name string) *Build {
	b.level = name
	return b
}

// Make opens the sink. With neither a path nor a writer the logger discards everything.
func (b *Build) Make() (*Logger, error) {
	out := &Logger{}
	w := b.writer
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		out.file = f
		w = zerolog.SyncWriter(f)
	}
	if w == nil {
		out.Logger = zerolog.Nop()
		return out, nil
	}
	out.Logger = zerolog.New(w).Level(ParseLevel(b.level)).With().Timestamp().Logger()
	return out, nil
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func ParseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.WarnLevel
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return lvl
}
