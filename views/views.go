// Package views provides the default templ components for photosite pages.
// Sites that want different markup supply their own photosite.ViewFuncs
// instead.
package views

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/photosite"
)

// Default returns the stock view set.
func Default() photosite.ViewFuncs {
	return photosite.ViewFuncs{
		Post:       Post,
		Section:    Section,
		Tags:       Tags,
		Home:       Home,
		Commenting: Commenting,
		Minimal:    Minimal,
		Style:      Style,
	}
}

// pageWriter accumulates HTML output, remembering the first write error so
// component bodies can stay free of error plumbing.
type pageWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (p *pageWriter) write(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *pageWriter) writef(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *pageWriter) component(c templ.Component) {
	if p.err == nil {
		p.err = c.Render(p.ctx, p.w)
	}
}

func esc(s string) string {
	return html.EscapeString(s)
}

// chrome wraps a body in the shared page skeleton: head, stylesheet link,
// and the navigation bar.
func chrome(rc photosite.RenderContext, body func(p *pageWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{ctx: ctx, w: w}
		p.write("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
		p.write("<meta charset=\"utf-8\">\n")
		p.write("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		p.writef("<title>%s</title>\n", esc(rc.PageTitle))
		p.writef("<link rel=\"stylesheet\" href=\"%s/style.css\">\n", rc.PathToRoot)
		p.write("</head>\n<body>\n")
		if len(rc.Navbar) > 0 {
			p.write("<nav><ul>\n")
			for _, n := range rc.Navbar {
				p.writef("<li><a href=\"%s/%s\">%s</a></li>\n", rc.PathToRoot, n.Relative, esc(n.Label))
			}
			p.write("</ul></nav>\n")
		}
		p.write("<main>\n")
		body(p)
		p.write("</main>\n</body>\n</html>\n")
		return p.err
	})
}

// Post renders a full post page with navigation chrome.
func Post(args photosite.PostArgs, rc photosite.RenderContext) templ.Component {
	return chrome(rc, func(p *pageWriter) {
		postBody(p, args, rc, true)
	})
}

// Minimal renders a post without chrome, for feed entry content. Links come
// out absolute because the render context's PathToRoot is the site URL.
func Minimal(args photosite.PostArgs, rc photosite.RenderContext) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{ctx: ctx, w: w}
		postBody(p, args, rc, false)
		return p.err
	})
}

func postBody(p *pageWriter, args photosite.PostArgs, rc photosite.RenderContext, full bool) {
	e := args.Entry
	p.write("<article class=\"post\">\n")
	p.writef("<h1>%s</h1>\n", esc(e.Title))
	if e.Date != "" {
		p.writef("<time datetime=\"%s\">%s</time>\n", e.Date, e.Date)
	}

	for _, img := range e.Images {
		p.write("<figure>\n")
		p.writef("<img src=\"%s/images/%s\" alt=\"%s\">\n", rc.PathToRoot, img.File, esc(img.Alt))
		if img.Caption != "" {
			p.write("<figcaption>")
			p.component(Markdown(img.Caption))
			p.write("</figcaption>\n")
		}
		p.write("</figure>\n")
	}

	if e.Description != "" {
		p.write("<div class=\"description\">\n")
		p.component(Markdown(e.Description))
		p.write("</div>\n")
	}

	if full && len(e.Tags) > 0 {
		p.write("<ul class=\"tags\">\n")
		for _, tag := range e.Tags {
			path := joinTag(tag)
			p.writef("<li><a href=\"%s/tags/%s.html\">#%s</a></li>\n",
				rc.PathToRoot, args.TagSlugs[path], esc(path))
		}
		p.write("</ul>\n")
	}

	if full && (e.Backward != "" || e.Forward != "") {
		p.write("<nav class=\"pager\">\n")
		if e.Backward != "" {
			p.writef("<a class=\"backward\" href=\"%s\">&larr; earlier</a>\n", e.Backward)
		}
		if e.Forward != "" {
			p.writef("<a class=\"forward\" href=\"%s\">later &rarr;</a>\n", e.Forward)
		}
		p.write("</nav>\n")
	}

	if full && len(e.Comments) > 0 {
		p.write("<section class=\"comments\">\n<h2>Comments</h2>\n")
		for _, c := range e.Comments {
			name := c.User
			if display, ok := rc.Users[c.User]; ok {
				name = display
			}
			p.writef("<div class=\"comment\"><span class=\"author\">%s</span> %s</div>\n",
				esc(name), esc(c.Text))
		}
		p.write("</section>\n")
	}

	p.write("</article>\n")
}

func joinTag(tag []string) string {
	path := ""
	for i, part := range tag {
		if i > 0 {
			path += "/"
		}
		path += part
	}
	return path
}

// Section renders a section index: its description and the ordered entry
// list. Tag pages reuse this view with synthetic entries.
func Section(args photosite.SectionArgs, rc photosite.RenderContext) templ.Component {
	return chrome(rc, func(p *pageWriter) {
		p.writef("<h1>%s</h1>\n", esc(args.Section.Title))
		if args.Section.Description != "" {
			p.write("<div class=\"description\">\n")
			p.component(Markdown(args.Section.Description))
			p.write("</div>\n")
		}
		if args.Section.Slug != "" {
			p.write("<p class=\"feeds\"><a href=\"atom.xml\">atom</a> <a href=\"rss.xml\">rss</a></p>\n")
		}
		p.write("<ul class=\"entries\">\n")
		for _, e := range args.Entries {
			p.writef("<li><a href=\"%s\">%s</a> <time datetime=\"%s\">%s</time></li>\n",
				e.Slug, esc(e.Title), e.Date, e.Date)
		}
		p.write("</ul>\n")
	})
}

// Tags renders the tag hierarchy as nested lists.
func Tags(args photosite.TagsArgs, rc photosite.RenderContext) templ.Component {
	return chrome(rc, func(p *pageWriter) {
		p.writef("<h1>%s</h1>\n", esc(rc.PageTitle))
		writeTagTree(p, args.Tree)
	})
}

func writeTagTree(p *pageWriter, node *photosite.TagNode) {
	if len(node.Children) == 0 {
		return
	}
	p.write("<ul class=\"tag-tree\">\n")
	for _, child := range node.Children {
		p.writef("<li><a href=\"%s.html\">%s</a>", child.Path, esc(child.Name))
		writeTagTree(p, child)
		p.write("</li>\n")
	}
	p.write("</ul>\n")
}

// Home renders the home page: the site's sections with their icons and
// descriptions.
func Home(args photosite.HomeArgs, rc photosite.RenderContext) templ.Component {
	return chrome(rc, func(p *pageWriter) {
		p.writef("<h1>%s</h1>\n", esc(rc.PageTitle))
		p.write("<p class=\"feeds\"><a href=\"atom.xml\">atom</a> <a href=\"rss.xml\">rss</a></p>\n")
		p.write("<ul class=\"sections\">\n")
		for _, s := range args.Sections {
			label := s.Title
			if s.Icon != "" {
				label = s.Icon + " " + s.Title
			}
			p.writef("<li><a href=\"%s/index.html\">%s</a>", s.Slug, esc(label))
			if s.Description != "" {
				p.writef(" — %s", esc(s.Description))
			}
			p.write("</li>\n")
		}
		p.write("</ul>\n")
	})
}

// Commenting renders the how-to-comment help page shown when the site has a
// user directory.
func Commenting(rc photosite.RenderContext) templ.Component {
	return chrome(rc, func(p *pageWriter) {
		p.write("<h1>Commenting</h1>\n")
		p.writef("<p>Comments on %s are added by the site owner on your behalf: "+
			"send the post link and your comment, and it will appear under your "+
			"display name once the site is rebuilt.</p>\n", esc(rc.Domain))
		p.write("<p>If you don't have a display name yet, one will be picked for you.</p>\n")
	})
}

// Style renders style.css from the configured palette. The light scheme is
// the default; the dark scheme applies under prefers-color-scheme: dark.
func Style(colours map[string]photosite.ColourScheme) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{ctx: ctx, w: w}
		writeScheme(p, ":root", colours["light"])
		writeScheme(p, "@media (prefers-color-scheme: dark) { :root", colours["dark"])
		p.write("}\n")
		p.write(`
body {
    margin: 0;
    background: var(--page-background);
    color: var(--text);
    font-family: sans-serif;
}
main { max-width: 48rem; margin: 0 auto; padding: 1rem; }
article, .sections li, .entries li { background: var(--article-background); }
article { padding: 1rem; border-radius: 0.5rem; }
a { color: var(--link); }
h1, h2, time { color: var(--accent); }
nav ul, ul.tags, ul.sections, ul.entries { list-style: none; padding: 0; }
nav li, ul.tags li { display: inline-block; margin-right: 0.75rem; }
figure { margin: 1rem 0; }
figure img { max-width: 100%; height: auto; }
.pager { display: flex; justify-content: space-between; }
.comment .author { font-weight: bold; color: var(--accent); }
`)
		return p.err
	})
}

func writeScheme(p *pageWriter, selector string, scheme photosite.ColourScheme) {
	p.writef("%s {\n", selector)
	p.writef("    --page-background: %s;\n", scheme.Background.Page)
	p.writef("    --article-background: %s;\n", scheme.Background.Article)
	p.writef("    --text: %s;\n", scheme.Text.Text)
	p.writef("    --accent: %s;\n", scheme.Text.Accent)
	p.writef("    --link: %s;\n", scheme.Text.Link)
	p.write("}\n")
}
