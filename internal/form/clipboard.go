package form

import (
	"fmt"
	"io"
)

// Clipboard receives the short link when the user copies it.
type Clipboard interface {
	WriteText(text string) error
}

// WriterClipboard copies text to an io.Writer, one link per line.
type WriterClipboard struct {
	W io.Writer
}

func (c WriterClipboard) WriteText(text string) error {
	_, err := fmt.Fprintln(c.W, text)
	return err
}
