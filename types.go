package photosite

import (
	"encoding/json"
	"fmt"
	"time"
)

// ImageInfo is a resolved image: library metadata plus the name of the asset
// copied into the build output. Immutable once resolved within a build.
type ImageInfo struct {
	ID      int
	File    string // filename under images/ in the build output
	Date    string // effective display date, YYYY-MM-DD
	Taken   time.Time
	Title   string
	Alt     string
	Caption string
	Tags    [][]string // authorized tag paths, split on "/"
}

// DisplayTitle returns the image title, or "Untitled" for untitled images.
func (i *ImageInfo) DisplayTitle() string {
	if i.Title == "" {
		return "Untitled"
	}
	return i.Title
}

// Comment is one reader comment attached to a post.
// On disk a comment is a two-element array: [user, text].
type Comment struct {
	User string
	Text string
}

func (c Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{c.User, c.Text})
}

func (c *Comment) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("comment must be a [user, text] pair: %w", err)
	}
	c.User, c.Text = pair[0], pair[1]
	return nil
}

// Entry is one post within a section: one or more images, a slug, navigation
// links to its neighbours, and any reader comments merged from the section
// manifest.
type Entry struct {
	Slug        string // page filename within the section directory, ends in .html
	Title       string
	Description string
	Date        string // YYYY-MM-DD
	Posted      time.Time
	Images      []*ImageInfo
	Tags        [][]string
	Backward    string // slug of the previous entry, "" at the head
	Forward     string // slug of the next entry, "" at the tail
	Comments    []Comment
}

// SectionInfo is the metadata of a section as shown in navigation and on the
// home page.
type SectionInfo struct {
	Title       string
	Slug        string
	Description string
	Icon        string
}
