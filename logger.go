package ponio

import (
	"fmt"
	"io"
	"strings"
)

// Logger accumulates diagnostic messages and writes them to Output on
// Flush. ROCK2, ROCK4 and PIROCK accept one through WithLogger and use it to
// report stabilized-degree clamps; no other driver, and no Range, logs to
// it. It keeps the same accumulate-then-flush shape as a plain-text Logger.
type Logger struct {
	Output io.Writer
	buff   strings.Builder
}

// NewLogger returns a Logger writing to w on Flush. A nil w discards output.
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{Output: w}
}

// Logf appends a formatted diagnostic line to the logger's buffer.
func (l *Logger) Logf(format string, a ...interface{}) {
	if l == nil {
		return
	}
	l.buff.WriteString(fmt.Sprintf(format, a...))
	if !strings.HasSuffix(format, "\n") {
		l.buff.WriteByte('\n')
	}
}

// Flush writes the accumulated buffer to Output and resets it.
func (l *Logger) Flush() {
	if l == nil {
		return
	}
	io.WriteString(l.Output, l.buff.String())
	l.buff.Reset()
}
