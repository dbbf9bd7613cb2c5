package photosite

// SiteConfig is the persisted site configuration, stored as config.json in
// the site directory.
type SiteConfig struct {
	Build   string                  `json:"build"` // absolute path of the build output
	Colours map[string]ColourScheme `json:"colours"`
	Name    string                  `json:"name"`
	Favicon string                  `json:"favicon,omitempty"`
	Author  string                  `json:"author,omitempty"` // feed author name
}

// ColourScheme is one named theme ("light", "dark") in the site palette.
type ColourScheme struct {
	Background BackgroundColours `json:"background"`
	Text       TextColours       `json:"text"`
}

type BackgroundColours struct {
	Page    string `json:"page"`
	Article string `json:"article"`
}

type TextColours struct {
	Text   string `json:"text"`
	Accent string `json:"accent"`
	Link   string `json:"link"`
}

// DefaultColours returns the palette written by site initialization.
func DefaultColours() map[string]ColourScheme {
	return map[string]ColourScheme{
		"light": {
			Background: BackgroundColours{Page: "#397367", Article: "#C1DCEB"},
			Text:       TextColours{Text: "#0E1B18", Accent: "#613F75", Link: "#4D053D"},
		},
		"dark": {
			Background: BackgroundColours{Page: "#0E1B18", Article: "#142F3E"},
			Text:       TextColours{Text: "#FDD8F5", Accent: "#F7D3A1", Link: "#D7EADF"},
		},
	}
}

// SectionConfig is a section manifest: section-<slug>.json for auto-sections,
// blog-<slug>/config.json for blogs. The filter fields are only meaningful
// for auto-sections.
type SectionConfig struct {
	Title       string               `json:"title"`
	Slug        string               `json:"slug"`
	Description string               `json:"description,omitempty"`
	Creators    []string             `json:"creators,omitempty"`
	MinRating   *int                 `json:"min-rating,omitempty"`
	AllTags     []string             `json:"all-tags,omitempty"`
	NoTags      []string             `json:"no-tags,omitempty"`
	Icon        string               `json:"icon,omitempty"`
	Comments    map[string][]Comment `json:"comments,omitempty"`
}

// Info returns the section's display metadata.
func (c SectionConfig) Info() SectionInfo {
	return SectionInfo{
		Title:       c.Title,
		Slug:        c.Slug,
		Description: c.Description,
		Icon:        c.Icon,
	}
}

// PostConfig is one blog post manifest, stored as <timestamp>.json inside the
// blog directory.
type PostConfig struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Images      []int  `json:"images"`
}

// Option configures additional App behavior.
type Option func(*App)

// WithAsker replaces the interactive console decision provider.
func WithAsker(ask Asker) Option {
	return func(a *App) {
		a.asker = ask
	}
}

// WithRenderer replaces the default file-writing templ renderer.
func WithRenderer(r Renderer) Option {
	return func(a *App) {
		a.renderer = r
	}
}
