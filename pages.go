package photosite

import (
	"log"
	"sort"
	"strings"
	"time"
)

// Template identifiers understood by the default renderer.
const (
	TemplatePost       = "post"
	TemplateSection    = "section"
	TemplateTags       = "tags"
	TemplateHome       = "home"
	TemplateCommenting = "commenting"
)

// Page describes one output file of the site: where it goes, which template
// renders it, and the arguments that template needs. Pages flagged Section
// appear in the navigation bar.
type Page struct {
	Relative string // output path relative to the build root
	Template string
	Title    string
	Args     any
	Date     time.Time // publish date, used for feed ordering
	Section  bool
	Icon     string // optional glyph shown before the title in navigation
}

// PathToRoot returns the relative path from this page back to the site root,
// for use in href prefixes.
func (p Page) PathToRoot() string {
	depth := strings.Count(p.Relative, "/")
	if depth == 0 {
		return "."
	}
	parts := make([]string, depth)
	for i := range parts {
		parts[i] = ".."
	}
	return strings.Join(parts, "/")
}

// PostArgs renders a single post (or an image permalink).
type PostArgs struct {
	Entry    *Entry
	TagSlugs map[string]string
}

// SectionArgs renders a section index: its metadata plus ordered entries.
// Tag pages reuse this shape with synthetic entries linking image permalinks.
type SectionArgs struct {
	Section SectionInfo
	Entries []*Entry
}

// TagsArgs renders the tag-tree index page.
type TagsArgs struct {
	Tree *TagNode
}

// HomeArgs renders the home page.
type HomeArgs struct {
	Sections []SectionInfo
}

// NavEntry is one link in the navigation bar.
type NavEntry struct {
	Relative string
	Label    string
}

// RenderContext is the shared state every template render receives.
type RenderContext struct {
	PageTitle  string
	PathToRoot string
	Navbar     []NavEntry
	Users      map[string]string // user id -> display name, for comments
	Domain     string
}

// Renderer turns page descriptions into written files. A failure is local to
// the page being rendered; the build keeps going.
type Renderer interface {
	Render(page Page, rc RenderContext) error
}

// pageRegistry accumulates every page the build produces.
type pageRegistry struct {
	pages []Page
}

func (reg *pageRegistry) add(p Page) {
	reg.pages = append(reg.pages, p)
}

// navbar derives the navigation bar from the pages flagged as sections,
// sorted by output path. An icon, when present, prefixes the title.
func (reg *pageRegistry) navbar() []NavEntry {
	var nav []NavEntry
	for _, p := range reg.pages {
		if !p.Section {
			continue
		}
		label := p.Title
		if p.Icon != "" {
			label = p.Icon + " " + p.Title
		}
		nav = append(nav, NavEntry{Relative: p.Relative, Label: label})
	}
	sort.Slice(nav, func(i, j int) bool {
		return nav[i].Relative < nav[j].Relative
	})
	return nav
}

// renderAll renders every accumulated page. A single page failing is logged
// and skipped so the rest of the site still builds.
func (reg *pageRegistry) renderAll(r Renderer, navbar []NavEntry, users map[string]string, domain string) {
	for _, p := range reg.pages {
		rc := RenderContext{
			PageTitle:  p.Title,
			PathToRoot: p.PathToRoot(),
			Navbar:     navbar,
			Users:      users,
			Domain:     domain,
		}
		if err := r.Render(p, rc); err != nil {
			log.Printf("photosite: building %s failed: %v", p.Relative, err)
		}
	}
}
