package views

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
)

// Markdown renders markdown content as a templ component. Descriptions and
// captions are trusted input written by the site owner, so the output is not
// sanitized further.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(content), &buf); err != nil {
			return err
		}
		_, err := io.Copy(w, &buf)
		return err
	})
}
