package photosite

import (
	"context"
	"errors"
	"time"
)

// ErrUnknownImage is returned when a photo library has no image with the
// requested id, or the image has no resolvable path on disk.
var ErrUnknownImage = errors.New("unknown image")

// Image is one record in a photo library.
type Image struct {
	ID           int
	Path         string // full path of the original file
	CreationDate time.Time
	Title        string
	Alt          string
	Caption      string
	Creator      string
	EXIF         map[string]string
	Tags         []string // raw hierarchical tag paths, "/" separated
}

// Query selects images from a photo library.
type Query struct {
	AllTags  []string // only images carrying every one of these tags
	NoTags   []string // only images carrying none of these tags
	Creators []string // only images by one of these creators, if non-empty
}

// PhotoStore is the photo-library collaborator the builder reads images from.
// Implementations must return search results ordered by creation date
// ascending.
type PhotoStore interface {
	// GetImage returns the image with the given id. Unknown ids yield an
	// error wrapping ErrUnknownImage.
	GetImage(ctx context.Context, id int) (*Image, error)

	// SearchImages returns every image matching q, creation date ascending.
	SearchImages(ctx context.Context, q Query) ([]Image, error)
}
