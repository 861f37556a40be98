package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Sink consumes report lines in order.
type Sink interface {
	WriteLine(line string) error
}

// ColorMode controls whether a WriterSink colors its output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode accepts "", "auto", "always" and "never" in any case.
func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(s)); mode {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways, ColorNever:
		return mode, nil
	}
	return "", fmt.Errorf("unknown color mode %q (want auto, always or never)", s)
}

// WriterSink writes one line per result to an io.Writer.
type WriterSink struct {
	w     io.Writer
	color bool
}

// NewWriterSink wraps w. In auto mode color is used only when w is a
// terminal and NO_COLOR is unset.
func NewWriterSink(w io.Writer, mode ColorMode) *WriterSink {
	color := false
	switch mode {
	case ColorAlways:
		color = true
	case ColorAuto:
		color = isTerminal(w)
	}
	return &WriterSink{w: w, color: color}
}

func isTerminal(w io.Writer) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Color reports whether the sink emits ANSI colors.
func (s *WriterSink) Color() bool {
	return s.color
}

func (s *WriterSink) WriteLine(line string) error {
	_, err := io.WriteString(s.w, line+"\n")
	return err
}

// Lines collects report lines in memory.
type Lines struct {
	mu    sync.Mutex
	lines []string
}

func (l *Lines) WriteLine(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	return nil
}

// Lines returns a copy of the lines written so far.
func (l *Lines) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}
