package photosite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/a-h/templ"
)

// ViewFuncs holds the templ components the engine calls when rendering
// pages. This is the inversion-of-control mechanism that lets users own and
// customize all templates; the views package provides a default set.
type ViewFuncs struct {
	Post       func(args PostArgs, rc RenderContext) templ.Component
	Section    func(args SectionArgs, rc RenderContext) templ.Component
	Tags       func(args TagsArgs, rc RenderContext) templ.Component
	Home       func(args HomeArgs, rc RenderContext) templ.Component
	Commenting func(rc RenderContext) templ.Component

	// Minimal renders a post without any site chrome, for use as feed
	// entry content.
	Minimal func(args PostArgs, rc RenderContext) templ.Component

	// Style renders the site stylesheet from the configured palette.
	Style func(colours map[string]ColourScheme) templ.Component
}

// FileRenderer is the default Renderer: it writes each page's templ
// component to its output path under Root.
type FileRenderer struct {
	Root  string
	Views ViewFuncs
}

// Render writes one page. An error is local to that page; the caller decides
// whether to continue.
func (r *FileRenderer) Render(page Page, rc RenderContext) error {
	cmp, err := r.component(page, rc)
	if err != nil {
		return err
	}
	out := filepath.Join(r.Root, filepath.FromSlash(page.Relative))
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := cmp.Render(context.Background(), f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (r *FileRenderer) component(page Page, rc RenderContext) (templ.Component, error) {
	switch page.Template {
	case TemplatePost:
		if args, ok := page.Args.(PostArgs); ok {
			return r.Views.Post(args, rc), nil
		}
	case TemplateSection:
		if args, ok := page.Args.(SectionArgs); ok {
			return r.Views.Section(args, rc), nil
		}
	case TemplateTags:
		if args, ok := page.Args.(TagsArgs); ok {
			return r.Views.Tags(args, rc), nil
		}
	case TemplateHome:
		if args, ok := page.Args.(HomeArgs); ok {
			return r.Views.Home(args, rc), nil
		}
	case TemplateCommenting:
		return r.Views.Commenting(rc), nil
	default:
		return nil, fmt.Errorf("unknown template %q", page.Template)
	}
	return nil, fmt.Errorf("template %q got %T arguments", page.Template, page.Args)
}
