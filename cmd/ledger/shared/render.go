package shared

import (
	"io"

	"github.com/charmbracelet/glamour"
)

// Render writes the markdown document md to w. Unless raw is set the
// document is styled for the terminal.
func Render(w io.Writer, md string, raw bool) error {
	if raw {
		_, err := io.WriteString(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
