package photosite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var (
	// ErrSiteExists is returned when initializing a site that already has a
	// configuration directory.
	ErrSiteExists = errors.New("site configuration already exists")

	// ErrNoSite is returned when operating on a domain that was never
	// initialized.
	ErrNoSite = errors.New("site configuration doesn't exist")

	// ErrSectionExists is returned when creating a section whose manifest
	// already exists.
	ErrSectionExists = errors.New("section configuration already exists")
)

// reservedSlugs are section slugs that would collide with generated output
// directories.
var reservedSlugs = map[string]bool{"images": true, "tags": true}

// Site is the on-disk configuration of one photo site: its config.json,
// decision store, user directory, and section manifests, all under
// <config root>/site-<domain>.
type Site struct {
	Domain string
	Dir    string
}

// OpenSite returns the site for domain under configDir. The site must have
// been initialized.
func OpenSite(configDir, domain string) (*Site, error) {
	dir := filepath.Join(configDir, "site-"+domain)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("photosite: %s: %w", domain, ErrNoSite)
	}
	return &Site{Domain: domain, Dir: dir}, nil
}

// InitSite creates the configuration directory for a new site: config.json
// with the default palette, the decision store, and the build directory.
// A favicon, when given, is copied into the site directory.
func InitSite(configDir, domain, buildDir, name, favicon string) (*Site, error) {
	dir := filepath.Join(configDir, "site-"+domain)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("photosite: %s: %w", domain, ErrSiteExists)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	build, err := filepath.Abs(buildDir)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = domain
	}
	cfg := SiteConfig{
		Build:   build,
		Colours: DefaultColours(),
		Name:    name,
	}
	if favicon != "" {
		target := filepath.Join(dir, filepath.Base(favicon))
		if err := copyFile(favicon, target); err != nil {
			return nil, fmt.Errorf("photosite: copy favicon: %w", err)
		}
		cfg.Favicon = filepath.Base(favicon)
	}

	s := &Site{Domain: domain, Dir: dir}
	if err := writeJSON(s.configPath(), cfg); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(build, 0o755); err != nil {
		return nil, err
	}
	store, err := OpenDecisionStore(s.DecisionsPath())
	if err != nil {
		return nil, err
	}
	return s, store.Close()
}

func (s *Site) configPath() string {
	return filepath.Join(s.Dir, "config.json")
}

// DecisionsPath is the location of the site's decision store database.
func (s *Site) DecisionsPath() string {
	return filepath.Join(s.Dir, "db.sqlite3")
}

func (s *Site) usersPath() string {
	return filepath.Join(s.Dir, "users.json")
}

// Config reads the site configuration.
func (s *Site) Config() (SiteConfig, error) {
	var cfg SiteConfig
	if err := readJSON(s.configPath(), &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("photosite: read site config: %w", err)
	}
	return cfg, nil
}

// OpenDecisions opens the site's decision store.
func (s *Site) OpenDecisions() (*DecisionStore, error) {
	return OpenDecisionStore(s.DecisionsPath())
}

// CreateBlog creates a curated blog section: a blog-<slug> directory holding
// config.json. The slug is derived from the title when empty.
func (s *Site) CreateBlog(cfg SectionConfig) (string, error) {
	slug, err := s.sectionSlug(cfg)
	if err != nil {
		return "", err
	}
	cfg.Slug = slug
	dir := filepath.Join(s.Dir, "blog-"+slug)
	if _, err := os.Stat(dir); err == nil {
		return "", fmt.Errorf("photosite: blog %s: %w", slug, ErrSectionExists)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	// Filters are meaningless on a curated blog.
	cfg.Creators, cfg.MinRating, cfg.AllTags, cfg.NoTags = nil, nil, nil, nil
	return slug, writeJSON(filepath.Join(dir, "config.json"), cfg)
}

// CreateAuto creates a filter-driven section: a section-<slug>.json manifest.
// The slug is derived from the title when empty.
func (s *Site) CreateAuto(cfg SectionConfig) (string, error) {
	slug, err := s.sectionSlug(cfg)
	if err != nil {
		return "", err
	}
	cfg.Slug = slug
	path := filepath.Join(s.Dir, "section-"+slug+".json")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("photosite: section %s: %w", slug, ErrSectionExists)
	}
	return slug, writeJSON(path, cfg)
}

func (s *Site) sectionSlug(cfg SectionConfig) (string, error) {
	slug := cfg.Slug
	if slug == "" {
		slug = Slugify(cfg.Title)
	}
	if slug == "" || reservedSlugs[slug] {
		return "", fmt.Errorf("photosite: illegal slug: %q", slug)
	}
	return slug, nil
}

// AddPost writes a post manifest into the named blog, keyed by timestamp.
// Every referenced image is verified against the photo library first, so a
// bad id fails here instead of at build time. The slug defaults to the
// timestamp.
func (s *Site) AddPost(ctx context.Context, photos PhotoStore, blog string, pc PostConfig, timestamp int64) error {
	dir := filepath.Join(s.Dir, "blog-"+blog)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("photosite: unknown blog: %s", blog)
	}
	if pc.Slug == "" {
		pc.Slug = strconv.FormatInt(timestamp, 10)
	}
	for _, id := range pc.Images {
		if _, err := photos.GetImage(ctx, id); err != nil {
			return fmt.Errorf("photosite: image %d: %w", id, err)
		}
	}
	return writeJSON(filepath.Join(dir, strconv.FormatInt(timestamp, 10)+".json"), pc)
}

// AddComment appends a [user, text] comment under a post slug in the named
// blog or auto-section manifest. The user must exist in the user directory.
func (s *Site) AddComment(user, blog, section, slug, text string) error {
	users, err := s.Users()
	if err != nil {
		return err
	}
	if users == nil {
		return fmt.Errorf("photosite: user file doesn't exist")
	}
	if _, ok := users[user]; !ok {
		return fmt.Errorf("photosite: unknown user: %s", user)
	}

	var path string
	switch {
	case section != "":
		path = filepath.Join(s.Dir, "section-"+section+".json")
	case blog != "":
		path = filepath.Join(s.Dir, "blog-"+blog, "config.json")
	default:
		return fmt.Errorf("photosite: supply a blog or section")
	}

	var cfg SectionConfig
	if err := readJSON(path, &cfg); err != nil {
		return fmt.Errorf("photosite: unknown section: %w", err)
	}
	if cfg.Comments == nil {
		cfg.Comments = make(map[string][]Comment)
	}
	cfg.Comments[slug] = append(cfg.Comments[slug], Comment{User: user, Text: text})
	return writeJSON(path, cfg)
}

// ParseDate parses "YYYY-MM-DD HH:MM" or "YYYY-MM-DD" in local time and
// returns a unix timestamp for use as a post key.
func ParseDate(datestr string) (int64, error) {
	layout := "2006-01-02"
	if len(datestr) > len(layout) {
		layout = "2006-01-02 15:04"
	}
	t, err := time.ParseInLocation(layout, datestr, time.Local)
	if err != nil {
		return 0, fmt.Errorf("photosite: parse date %q: %w", datestr, err)
	}
	return t.Unix(), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
