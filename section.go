package photosite

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrMinRatingUnsupported is returned when an auto-section manifest requests
// minimum-rating filtering. The option exists in the manifest schema but has
// no implementation; requesting it is a configuration error rather than a
// silent no-op.
var ErrMinRatingUnsupported = errors.New("min-rating filtering is not implemented")

// buildBlog assembles a curated blog section from a blog-<slug> directory:
// post manifests processed ascending by their integer-timestamp filenames,
// navigation links threaded as entries are appended, and pending comments
// merged by slug.
func (b *builder) buildBlog(ctx context.Context, dir string) error {
	var cfg SectionConfig
	if err := readJSON(filepath.Join(dir, "config.json"), &cfg); err != nil {
		return fmt.Errorf("photosite: blog config in %s: %w", filepath.Base(dir), err)
	}
	comments := pendingComments(cfg)

	manifests, err := postManifests(dir)
	if err != nil {
		return err
	}

	var entries []*Entry
	seen := make(map[string]bool)
	for _, m := range manifests {
		var pc PostConfig
		if err := readJSON(m.path, &pc); err != nil {
			return fmt.Errorf("photosite: post manifest %s: %w", m.path, err)
		}
		slug := pc.Slug + ".html"
		if seen[slug] {
			return fmt.Errorf("photosite: blog %s: duplicate post slug %q", cfg.Slug, pc.Slug)
		}
		seen[slug] = true

		posted := time.Unix(m.timestamp, 0)
		e := &Entry{
			Slug:        slug,
			Title:       pc.Title,
			Description: pc.Description,
			Posted:      posted,
			Date:        posted.Format("2006-01-02"),
			Comments:    popComments(comments, pc.Slug),
		}
		tagSeen := make(map[string]bool)
		for _, id := range pc.Images {
			info, err := b.resolver.ResolveByID(ctx, id)
			if err != nil {
				return err
			}
			e.Images = append(e.Images, info)
			for _, tag := range info.Tags {
				key := strings.Join(tag, "/")
				if !tagSeen[key] {
					tagSeen[key] = true
					e.Tags = append(e.Tags, tag)
				}
			}
		}

		thread(entries, e)
		entries = append(entries, e)
	}

	warnUnusedComments(cfg.Slug, comments)
	return b.finishSection(cfg, entries)
}

// buildAuto assembles a filter-driven section from a section-<slug>.json
// manifest: one post per image matching the section's filters, ordered by
// creation date ascending. Posts take the image's effective date as their
// slug, disambiguated with the image id when two images share a date.
func (b *builder) buildAuto(ctx context.Context, path string) error {
	var cfg SectionConfig
	if err := readJSON(path, &cfg); err != nil {
		return fmt.Errorf("photosite: section manifest %s: %w", filepath.Base(path), err)
	}
	if cfg.MinRating != nil {
		return fmt.Errorf("photosite: section %s: %w", cfg.Slug, ErrMinRatingUnsupported)
	}
	comments := pendingComments(cfg)

	images, err := b.photos.SearchImages(ctx, Query{
		AllTags:  cfg.AllTags,
		NoTags:   cfg.NoTags,
		Creators: cfg.Creators,
	})
	if err != nil {
		return fmt.Errorf("photosite: search for section %s: %w", cfg.Slug, err)
	}

	var entries []*Entry
	dates := make(map[string]bool)
	for i := range images {
		img := &images[i]
		if img.Path == "" {
			continue
		}
		info, err := b.resolver.ResolveRecord(ctx, img)
		if err != nil {
			return err
		}

		var slug string
		if dates[info.Date] {
			slug = fmt.Sprintf("%s-%d.html", info.Date, info.ID)
		} else {
			slug = info.Date + ".html"
			dates[info.Date] = true
		}

		title := info.Title
		if title == "" {
			title = cfg.Title
		}
		e := &Entry{
			Slug:     slug,
			Title:    title,
			Date:     info.Date,
			Posted:   info.Taken,
			Images:   []*ImageInfo{info},
			Tags:     info.Tags,
			Comments: popComments(comments, strings.TrimSuffix(slug, ".html")),
		}

		thread(entries, e)
		entries = append(entries, e)
	}

	warnUnusedComments(cfg.Slug, comments)
	return b.finishSection(cfg, entries)
}

// finishSection registers a post page per entry and the section index page,
// then writes the section's Atom and RSS feeds next to the index.
func (b *builder) finishSection(cfg SectionConfig, entries []*Entry) error {
	info := cfg.Info()

	var postPages []Page
	for _, e := range entries {
		page := Page{
			Relative: info.Slug + "/" + e.Slug,
			Template: TemplatePost,
			Title:    e.Title,
			Args:     PostArgs{Entry: e, TagSlugs: b.tags.Slugs()},
			Date:     e.Posted,
		}
		b.registry.add(page)
		postPages = append(postPages, page)
		b.blogPages = append(b.blogPages, page)
	}

	index := Page{
		Relative: info.Slug + "/index.html",
		Template: TemplateSection,
		Title:    info.Title,
		Args:     SectionArgs{Section: info, Entries: entries},
		Section:  true,
		Icon:     info.Icon,
	}
	b.registry.add(index)

	if err := b.feeds.write(index, postPages, info.Description); err != nil {
		return err
	}

	b.sections = append(b.sections, info)
	return nil
}

// thread links a new entry into the section's navigation chain: the new
// entry's backward link points at the previous entry, whose forward link is
// filled in to point back.
func thread(entries []*Entry, e *Entry) {
	if len(entries) == 0 {
		return
	}
	prev := entries[len(entries)-1]
	prev.Forward = e.Slug
	e.Backward = prev.Slug
}

type postManifest struct {
	timestamp int64
	path      string
}

// postManifests lists a blog directory's <timestamp>.json files, ascending by
// timestamp. Non-numeric filenames (like config.json) are skipped.
func postManifests(dir string) ([]postManifest, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("photosite: read blog %s: %w", filepath.Base(dir), err)
	}
	var manifests []postManifest
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		stem := strings.TrimSuffix(f.Name(), ".json")
		if stem == f.Name() {
			continue
		}
		ts, err := strconv.ParseInt(stem, 10, 64)
		if err != nil {
			continue
		}
		manifests = append(manifests, postManifest{timestamp: ts, path: filepath.Join(dir, f.Name())})
	}
	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].timestamp < manifests[j].timestamp
	})
	return manifests, nil
}

func pendingComments(cfg SectionConfig) map[string][]Comment {
	pending := make(map[string][]Comment, len(cfg.Comments))
	for slug, comments := range cfg.Comments {
		pending[slug] = comments
	}
	return pending
}

func popComments(pending map[string][]Comment, slug string) []Comment {
	comments := pending[slug]
	delete(pending, slug)
	return comments
}

// warnUnusedComments reports comments whose slug matched no post. This is a
// warning, not an error: a typo in a comment slug shouldn't stop the site
// from building.
func warnUnusedComments(section string, pending map[string][]Comment) {
	if len(pending) == 0 {
		return
	}
	slugs := make([]string, 0, len(pending))
	for slug := range pending {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	log.Printf("photosite: %s: unused comments: %s", section, strings.Join(slugs, ", "))
}
