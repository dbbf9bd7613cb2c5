package photosite

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	atomTimeFormat = "2006-01-02T15:04:05Z"
	rssTimeFormat  = "Mon, 02 Jan 2006 15:04:05 -0000"
)

type atomFeed struct {
	XMLName  xml.Name    `xml:"feed"`
	Version  string      `xml:"version,attr"`
	XMLNS    string      `xml:"xmlns,attr"`
	ID       string      `xml:"id"`
	Title    string      `xml:"title"`
	Updated  string      `xml:"updated"`
	Author   atomAuthor  `xml:"author"`
	Links    []atomLink  `xml:"link"`
	Subtitle string      `xml:"subtitle,omitempty"`
	Entries  []atomEntry `xml:"entry"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr,omitempty"`
	Href string `xml:"href,attr,omitempty"`
}

type atomEntry struct {
	ID        string      `xml:"id"`
	Title     string      `xml:"title"`
	Published string      `xml:"published"`
	Updated   string      `xml:"updated"`
	Content   atomContent `xml:"content"`
	Link      atomLink    `xml:"link"`
	Summary   string      `xml:"summary"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	GUID        string        `xml:"guid"`
	PubDate     string        `xml:"pubDate"`
	Title       string        `xml:"title"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// feedWriter renders sibling Atom and RSS documents for feed-bearing pages.
type feedWriter struct {
	site   string // domain the site is hosted on
	root   string // build output directory
	author string
	views  ViewFuncs
	now    func() time.Time
}

// write emits atom.xml and rss.xml next to the given index page, listing the
// given post pages in descending date order regardless of input order.
func (w *feedWriter) write(index Page, posts []Page, description string) error {
	ordered := make([]Page, len(posts))
	copy(ordered, posts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.After(ordered[j].Date)
	})

	base := "https://" + w.site
	dir := path.Dir(index.Relative)
	feedURL := base
	if dir != "." {
		feedURL = base + "/" + dir
	}

	now := w.now().UTC()
	atom := atomFeed{
		Version: "1.0",
		XMLNS:   "http://www.w3.org/2005/Atom",
		ID:      w.site + "/" + index.Title,
		Title:   index.Title,
		Updated: now.Format(atomTimeFormat),
		Author:  atomAuthor{Name: w.author},
		Links: []atomLink{
			{Rel: "self", Href: feedURL + "/atom.xml"},
			{Rel: "alternate", Href: feedURL},
		},
		Subtitle: description,
	}
	rssDescription := description
	if rssDescription == "" {
		rssDescription = "..."
	}
	rss := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:         index.Title,
			LastBuildDate: now.Format(rssTimeFormat),
			Link:          feedURL,
			Description:   rssDescription,
		},
	}

	for _, p := range ordered {
		args, ok := p.Args.(PostArgs)
		if !ok {
			return fmt.Errorf("photosite: feed entry %s is not a post page", p.Relative)
		}
		postURL := base + "/" + p.Relative
		published := p.Date.UTC()

		content, err := w.renderEntry(p, args)
		if err != nil {
			return err
		}
		atom.Entries = append(atom.Entries, atomEntry{
			ID:        postURL,
			Title:     p.Title,
			Published: published.Format(atomTimeFormat),
			Updated:   published.Format(atomTimeFormat),
			Content:   atomContent{Type: "html", Body: content},
			Link:      atomLink{Rel: "alternate", Href: postURL},
			Summary:   args.Entry.Description,
		})

		// The item title carries an image count so aggregate posts are
		// recognizable in feed readers.
		itemTitle := p.Title
		if n := len(args.Entry.Images); n > 1 {
			itemTitle = fmt.Sprintf("%s (%d images)", p.Title, n)
		}
		item := rssItem{
			GUID:        postURL,
			PubDate:     published.Format(rssTimeFormat),
			Title:       itemTitle,
			Link:        postURL,
			Description: args.Entry.Description,
		}
		if len(args.Entry.Images) > 0 {
			enclosure, err := w.enclosure(args.Entry.Images[0])
			if err != nil {
				return err
			}
			item.Enclosure = enclosure
		}
		rss.Channel.Items = append(rss.Channel.Items, item)
	}

	outDir := filepath.Join(w.root, filepath.FromSlash(dir))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	if err := writeXML(filepath.Join(outDir, "atom.xml"), atom); err != nil {
		return err
	}
	return writeXML(filepath.Join(outDir, "rss.xml"), rss)
}

// renderEntry renders a post through the chrome-less minimal view for
// embedding as feed entry content. Asset links are absolute so they work
// inside feed readers.
func (w *feedWriter) renderEntry(p Page, args PostArgs) (string, error) {
	rc := RenderContext{
		PageTitle:  p.Title,
		PathToRoot: "https://" + w.site,
		Domain:     w.site,
	}
	var buf bytes.Buffer
	if err := w.views.Minimal(args, rc).Render(context.Background(), &buf); err != nil {
		return "", fmt.Errorf("photosite: render feed entry %s: %w", p.Relative, err)
	}
	return buf.String(), nil
}

// enclosure describes the post's first image: byte length from the copied
// asset, MIME type sniffed from the decoded image header. Resolution already
// guaranteed the file exists, so a read failure here is fatal.
func (w *feedWriter) enclosure(info *ImageInfo) (*rssEnclosure, error) {
	assetPath := filepath.Join(w.root, "images", info.File)
	data, err := os.ReadFile(assetPath)
	if err != nil {
		return nil, fmt.Errorf("photosite: read enclosure %s: %w", info.File, err)
	}
	mime, err := sniffImageMIME(data)
	if err != nil {
		return nil, fmt.Errorf("photosite: enclosure %s: %w", info.File, err)
	}
	return &rssEnclosure{
		URL:    fmt.Sprintf("https://%s/images/%s", w.site, info.File),
		Length: int64(len(data)),
		Type:   mime,
	}, nil
}

// sniffImageMIME determines an image's MIME type from its decoded format.
// The blank imports above register every format a photo library is likely to
// hold: jpeg, png, gif, webp, bmp, and tiff.
func sniffImageMIME(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	return "image/" + format, nil
}

func writeXML(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(xml.Header); err != nil {
		f.Close()
		return err
	}
	if err := xml.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
