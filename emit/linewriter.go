package emit

import (
	"bufio"
	"io"

	cerrors "github.com/ciftools/linguist/errors"
)

// lineWriter is the emitter's column-tracking output sink. It knows
// nothing about CIF syntax; it only knows how many characters have been
// written since the last newline, the way the teacher project's scanner
// tracks Pos{Line, Col} while consuming input rather than while producing
// it (sqlparser/scanner.go) — here the bookkeeping runs in the opposite
// direction, on write instead of read.
type lineWriter struct {
	w       *bufio.Writer
	column  int
	maxLine int
}

func newLineWriter(w io.Writer, maxLine int) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w), maxLine: maxLine}
}

// raw writes s verbatim, updating column; s may contain embedded
// newlines (e.g. a whitespace run's text, or a folded text field).
func (lw *lineWriter) raw(s string) error {
	for _, r := range s {
		if r == '\n' {
			lw.column = 0
		} else {
			lw.column++
		}
	}
	_, err := lw.w.WriteString(s)
	if err != nil {
		return cerrors.New(cerrors.IOError, "write failed: %v", err)
	}
	return nil
}

func (lw *lineWriter) newline() error { return lw.raw("\n") }

// ensureSpace implements spec.md §4.5 "Ensuring line length": before
// writing a token of length tokenLen, reserve space for a single
// separating space. If the token plus one space would overflow the
// physical line, emit a newline instead of a space.
func (lw *lineWriter) ensureSpace(tokenLen int) error {
	if lw.column == 0 {
		return nil
	}
	if lw.column+1+tokenLen > lw.maxLine {
		return lw.newline()
	}
	return lw.raw(" ")
}

func (lw *lineWriter) flush() error {
	if err := lw.w.Flush(); err != nil {
		return cerrors.New(cerrors.IOError, "flush failed: %v", err)
	}
	return nil
}
