package output

import (
	"bufio"
	"io"

	"github.com/jmylchreest/notadecision/pkg/decision"
)

// ContentWriter writes only the content of each record, one per line
// group. With plain set, markup is reduced to text first; fallback records
// already hold raw text and are written as is.
type ContentWriter struct {
	w       *bufio.Writer
	plain   bool
	written int
}

// NewContentWriter creates a content writer.
func NewContentWriter(w io.Writer, plain bool) *ContentWriter {
	return &ContentWriter{
		w:     bufio.NewWriter(w),
		plain: plain,
	}
}

// Write writes the record content followed by a newline. Records after the
// first are separated by a blank line.
func (w *ContentWriter) Write(rec Record) error {
	content := rec.Content
	if w.plain && !rec.Fallback {
		text, err := decision.PlainText(content)
		if err != nil {
			return err
		}
		content = text
	}

	if w.written > 0 {
		if _, err := w.w.WriteString("\n"); err != nil {
			return err
		}
	}
	if _, err := w.w.WriteString(content); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	w.written++
	return nil
}

// Flush flushes the buffer.
func (w *ContentWriter) Flush() error {
	return w.w.Flush()
}
