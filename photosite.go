// Package photosite is a static site generator for photos. It assembles
// curated ("blog") and filter-driven ("auto") sections of image posts from a
// photo library, gates tags through a persisted allow/deny store, threads
// navigation links between posts, merges reader comments, and emits Atom and
// RSS feeds alongside the generated pages.
//
// Users provide their own templ templates via the ViewFuncs struct (the
// views package ships a default set), and photosite handles the assembly
// pipeline, persistence, and feed generation.
package photosite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// App wires a site's on-disk configuration to the photo library, the view
// templates, and the decision provider, and runs builds.
type App struct {
	Site   *Site
	Photos PhotoStore
	Views  ViewFuncs

	asker    Asker
	renderer Renderer
}

// New creates an App for the given site. By default tag decisions are asked
// interactively on the console and pages are written through a FileRenderer;
// both can be replaced with options.
func New(site *Site, photos PhotoStore, views ViewFuncs, opts ...Option) *App {
	a := &App{
		Site:   site,
		Photos: photos,
		Views:  views,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.asker == nil {
		a.asker = NewConsoleAsker(os.Stdin, os.Stdout)
	}
	return a
}

// builder is the per-run build context threaded through section assembly:
// the image resolver cache, the tag index, the page registry, and the pages
// that feed the site-wide feeds. None of it survives the run; everything
// that must persist lives in the decision store.
type builder struct {
	photos    PhotoStore
	resolver  *resolver
	tags      *TagIndex
	feeds     *feedWriter
	registry  *pageRegistry
	blogPages []Page // every section post page, for the home feeds
	sections  []SectionInfo
}

// Build generates the whole site into the configured build directory. The
// pipeline is strictly sequential: sections in directory order, then tag
// pages, image permalinks, the home page, and finally rendering. Fatal
// errors abort the build; assets already copied and decisions already
// persisted are kept for the next run.
func (a *App) Build(ctx context.Context, fresh bool) error {
	cfg, err := a.Site.Config()
	if err != nil {
		return err
	}
	if cfg.Build == "" {
		return fmt.Errorf("photosite: site config has no build directory")
	}
	build := cfg.Build
	if fresh {
		if err := os.RemoveAll(build); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(build, 0o755); err != nil {
		return err
	}

	renderer := a.renderer
	if renderer == nil {
		renderer = &FileRenderer{Root: build, Views: a.Views}
	}

	if cfg.Favicon != "" {
		dst := filepath.Join(build, cfg.Favicon)
		if _, err := os.Stat(dst); errors.Is(err, fs.ErrNotExist) {
			if err := copyFile(filepath.Join(a.Site.Dir, cfg.Favicon), dst); err != nil {
				return fmt.Errorf("photosite: copy favicon: %w", err)
			}
		}
	}

	imagesDir := filepath.Join(build, "images")
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return err
	}

	if err := writeStylesheet(build, a.Views, cfg.Colours); err != nil {
		return fmt.Errorf("photosite: write stylesheet: %w", err)
	}

	store, err := a.Site.OpenDecisions()
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := a.Site.Users()
	if err != nil {
		return err
	}

	author := cfg.Author
	if author == "" {
		author = cfg.Name
	}

	tags := NewTagIndex(store, a.asker)
	b := &builder{
		photos:   a.Photos,
		resolver: newResolver(a.Photos, store, tags, imagesDir),
		tags:     tags,
		feeds: &feedWriter{
			site:   a.Site.Domain,
			root:   build,
			author: author,
			views:  a.Views,
			now:    time.Now,
		},
		registry: &pageRegistry{},
	}

	if users != nil {
		b.registry.add(Page{
			Relative: "commenting.html",
			Template: TemplateCommenting,
			Title:    "Commenting",
		})
	}

	// os.ReadDir sorts by name, so sections are processed in a fixed order.
	dirEntries, err := os.ReadDir(a.Site.Dir)
	if err != nil {
		return err
	}
	for _, de := range dirEntries {
		name := de.Name()
		switch {
		case de.IsDir() && strings.HasPrefix(name, "blog-"):
			if err := b.buildBlog(ctx, filepath.Join(a.Site.Dir, name)); err != nil {
				return err
			}
		case !de.IsDir() && strings.HasPrefix(name, "section-") && strings.HasSuffix(name, ".json"):
			if err := b.buildAuto(ctx, filepath.Join(a.Site.Dir, name)); err != nil {
				return err
			}
		}
	}

	b.tagPages()
	b.imagePages()

	home := Page{
		Relative: "index.html",
		Template: TemplateHome,
		Title:    cfg.Name,
		Args:     HomeArgs{Sections: b.sections},
	}
	b.registry.add(home)
	if err := b.feeds.write(home, b.blogPages, ""); err != nil {
		return err
	}

	if err := writeSitemap(build, a.Site.Domain, b.registry.pages); err != nil {
		return fmt.Errorf("photosite: write sitemap: %w", err)
	}

	b.registry.renderAll(renderer, b.registry.navbar(), users, a.Site.Domain)
	return nil
}

// tagPages registers one page per registered tag, listing its images
// ascending by creation time, plus the tag-tree index page.
func (b *builder) tagPages() {
	slugs := b.tags.Slugs()
	for _, tag := range b.tags.Tags() {
		var entries []*Entry
		for _, id := range b.tags.Images(tag) {
			info := b.resolver.cache[id]
			entries = append(entries, &Entry{
				Slug:   "../images/" + strconv.Itoa(id) + ".html",
				Title:  info.DisplayTitle(),
				Date:   info.Date,
				Posted: info.Taken,
			})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Posted.Before(entries[j].Posted)
		})
		b.registry.add(Page{
			Relative: "tags/" + slugs[tag] + ".html",
			Template: TemplateSection,
			Title:    tag,
			Args:     SectionArgs{Section: SectionInfo{Title: tag}, Entries: entries},
		})
	}

	b.registry.add(Page{
		Relative: "tags/index.html",
		Template: TemplateTags,
		Title:    "Tags",
		Args:     TagsArgs{Tree: b.tags.Tree()},
		Section:  true,
		Icon:     "#️⃣",
	})
}

// imagePages registers a permalink page for every image resolved during the
// build.
func (b *builder) imagePages() {
	for _, info := range b.resolver.resolved() {
		e := &Entry{
			Slug:   strconv.Itoa(info.ID) + ".html",
			Title:  info.DisplayTitle(),
			Date:   info.Date,
			Images: []*ImageInfo{info},
			Tags:   info.Tags,
		}
		b.registry.add(Page{
			Relative: "images/" + e.Slug,
			Template: TemplatePost,
			Title:    e.Title,
			Args:     PostArgs{Entry: e, TagSlugs: b.tags.Slugs()},
		})
	}
}

func writeStylesheet(root string, views ViewFuncs, colours map[string]ColourScheme) error {
	f, err := os.Create(filepath.Join(root, "style.css"))
	if err != nil {
		return err
	}
	if err := views.Style(colours).Render(context.Background(), f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
