package photosite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteLibrary is a PhotoStore backed by a SQLite photo-library database:
// an images table plus an image_tags join table. It is the reference
// implementation used by the CLI; any other PhotoStore works with the
// builder just as well.
type SQLiteLibrary struct {
	db *sql.DB
}

// OpenLibrary opens (or creates) the photo-library database at path.
func OpenLibrary(path string) (*SQLiteLibrary, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
	`); err != nil {
		return nil, err
	}
	l := &SQLiteLibrary{db: db}
	if err := l.ensureSchema(); err != nil {
		return nil, err
	}
	return l, nil
}

// Close closes the underlying database connection.
func (l *SQLiteLibrary) Close() error {
	return l.db.Close()
}

func (l *SQLiteLibrary) ensureSchema() error {
	_, err := l.db.Exec(`
CREATE TABLE IF NOT EXISTS images (
    id INTEGER PRIMARY KEY,
    path TEXT NOT NULL,
    creation_date INTEGER NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    alt TEXT NOT NULL DEFAULT '',
    caption TEXT NOT NULL DEFAULT '',
    creator TEXT NOT NULL DEFAULT '',
    exif TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS image_tags (
    image INTEGER NOT NULL,
    tag TEXT NOT NULL,
    PRIMARY KEY (image, tag)
);
`)
	return err
}

// GetImage returns the image with the given id, with its tags attached.
func (l *SQLiteLibrary) GetImage(ctx context.Context, id int) (*Image, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT id, path, creation_date, title, alt, caption, creator, exif FROM images WHERE id = ?`, id)
	img, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownImage
	}
	if err != nil {
		return nil, err
	}
	if img.Tags, err = l.imageTags(ctx, id); err != nil {
		return nil, err
	}
	return img, nil
}

// SearchImages returns images matching q, creation date ascending. Required
// and excluded tags match both exact tags and more specific descendants, so
// querying "birds" also finds images tagged "birds/corvids/crow".
func (l *SQLiteLibrary) SearchImages(ctx context.Context, q Query) ([]Image, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT id, path, creation_date, title, alt, caption, creator, exif FROM images`)
	var clauses []string
	var params []any

	for _, tag := range q.AllTags {
		clauses = append(clauses,
			`EXISTS (SELECT 1 FROM image_tags t WHERE t.image = images.id AND (t.tag = ? OR t.tag LIKE ?))`)
		params = append(params, tag, tag+"/%")
	}
	for _, tag := range q.NoTags {
		clauses = append(clauses,
			`NOT EXISTS (SELECT 1 FROM image_tags t WHERE t.image = images.id AND (t.tag = ? OR t.tag LIKE ?))`)
		params = append(params, tag, tag+"/%")
	}
	if len(q.Creators) > 0 {
		placeholders := strings.Repeat("?, ", len(q.Creators))
		clauses = append(clauses, `creator IN (`+placeholders[:len(placeholders)-2]+`)`)
		for _, c := range q.Creators {
			params = append(params, c)
		}
	}
	if len(clauses) > 0 {
		query.WriteString(` WHERE ` + strings.Join(clauses, ` AND `))
	}
	query.WriteString(` ORDER BY creation_date ASC, id ASC`)

	rows, err := l.db.QueryContext(ctx, query.String(), params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		if img.Tags, err = l.imageTags(ctx, img.ID); err != nil {
			return nil, err
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

// AddImage inserts or replaces an image record, serializing its EXIF map and
// tags. Meant for ingest tooling and tests.
func (l *SQLiteLibrary) AddImage(ctx context.Context, img Image) error {
	exif := img.EXIF
	if exif == nil {
		exif = map[string]string{}
	}
	exifJSON, err := json.Marshal(exif)
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO images (id, path, creation_date, title, alt, caption, creator, exif)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		img.ID, img.Path, img.CreationDate.Unix(), img.Title, img.Alt, img.Caption, img.Creator, string(exifJSON))
	if err != nil {
		return err
	}
	if _, err := l.db.ExecContext(ctx, `DELETE FROM image_tags WHERE image = ?`, img.ID); err != nil {
		return err
	}
	for _, tag := range img.Tags {
		if _, err := l.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO image_tags (image, tag) VALUES (?, ?)`, img.ID, tag); err != nil {
			return err
		}
	}
	return nil
}

func (l *SQLiteLibrary) imageTags(ctx context.Context, id int) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT tag FROM image_tags WHERE image = ? ORDER BY tag`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImage(row rowScanner) (*Image, error) {
	var img Image
	var created int64
	var exifJSON string
	if err := row.Scan(&img.ID, &img.Path, &created, &img.Title, &img.Alt, &img.Caption, &img.Creator, &exifJSON); err != nil {
		return nil, err
	}
	img.CreationDate = time.Unix(created, 0)
	if err := json.Unmarshal([]byte(exifJSON), &img.EXIF); err != nil {
		return nil, fmt.Errorf("image %d: bad exif: %w", img.ID, err)
	}
	return &img, nil
}
