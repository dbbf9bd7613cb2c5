package photosite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// exifDateKey is the EXIF field holding the capture time, formatted
// "2006:01:02 15:04:05".
const exifDateKey = "DateTimeOriginal"

// resolver memoizes image resolution for one build run. Resolving an image
// copies its original file into the build's asset directory (once), picks its
// effective display date, and runs its raw tags through the tag index.
type resolver struct {
	photos PhotoStore
	store  Decisions
	tags   *TagIndex
	dir    string // asset directory, <build>/images
	cache  map[int]*ImageInfo
}

func newResolver(photos PhotoStore, store Decisions, tags *TagIndex, dir string) *resolver {
	return &resolver{
		photos: photos,
		store:  store,
		tags:   tags,
		dir:    dir,
		cache:  make(map[int]*ImageInfo),
	}
}

// ResolveByID looks the image up in the photo library and resolves it.
// Unknown ids are fatal: downstream sections assume resolution succeeded.
func (r *resolver) ResolveByID(ctx context.Context, id int) (*ImageInfo, error) {
	if info, ok := r.cache[id]; ok {
		return info, nil
	}
	img, err := r.photos.GetImage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("photosite: image %d: %w", id, err)
	}
	return r.resolve(img)
}

// ResolveRecord resolves an image record already fetched from the library,
// for callers that got it from a search.
func (r *resolver) ResolveRecord(ctx context.Context, img *Image) (*ImageInfo, error) {
	if info, ok := r.cache[img.ID]; ok {
		return info, nil
	}
	return r.resolve(img)
}

func (r *resolver) resolve(img *Image) (*ImageInfo, error) {
	if img.Path == "" {
		return nil, fmt.Errorf("photosite: image %d has no file: %w", img.ID, ErrUnknownImage)
	}

	ext := strings.ToLower(filepath.Ext(img.Path))
	file := fmt.Sprintf("%d%s", img.ID, ext)
	dst := filepath.Join(r.dir, file)
	if _, err := os.Stat(dst); errors.Is(err, fs.ErrNotExist) {
		if err := copyFile(img.Path, dst); err != nil {
			return nil, fmt.Errorf("photosite: copy image %d: %w", img.ID, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("photosite: stat image %d: %w", img.ID, err)
	}

	date, err := r.effectiveDate(img)
	if err != nil {
		return nil, err
	}

	var tags [][]string
	for _, raw := range img.Tags {
		matched, err := r.tags.Authorize(raw, img.ID)
		if err != nil {
			return nil, err
		}
		if matched != nil {
			tags = append(tags, matched)
		}
	}

	info := &ImageInfo{
		ID:      img.ID,
		File:    file,
		Date:    date,
		Taken:   img.CreationDate,
		Title:   img.Title,
		Alt:     img.Alt,
		Caption: img.Caption,
		Tags:    tags,
	}
	r.cache[img.ID] = info
	return info, nil
}

// effectiveDate picks the image's display date by strict precedence:
// persisted override, then EXIF capture date, then creation timestamp.
func (r *resolver) effectiveDate(img *Image) (string, error) {
	date := img.CreationDate.Format("2006-01-02")
	if original, ok := img.EXIF[exifDateKey]; ok {
		date = strings.ReplaceAll(strings.SplitN(original, " ", 2)[0], ":", "-")
	}
	override, ok, err := r.store.ImageDate(img.ID)
	if err != nil {
		return "", fmt.Errorf("photosite: date override for image %d: %w", img.ID, err)
	}
	if ok {
		date = override
	}
	return date, nil
}

// resolved returns every image resolved so far, ordered by id.
func (r *resolver) resolved() []*ImageInfo {
	ids := make([]int, 0, len(r.cache))
	for id := range r.cache {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	infos := make([]*ImageInfo, len(ids))
	for i, id := range ids {
		infos[i] = r.cache[id]
	}
	return infos
}
