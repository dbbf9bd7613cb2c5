package photosite

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/a-h/templ"
)

// testViews is a minimal view set that renders recognizable plain text.
func testViews() ViewFuncs {
	text := func(s string) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, s)
			return err
		})
	}
	return ViewFuncs{
		Post: func(args PostArgs, rc RenderContext) templ.Component {
			return text(args.Entry.Title)
		},
		Section: func(args SectionArgs, rc RenderContext) templ.Component {
			return text(args.Section.Title)
		},
		Tags: func(args TagsArgs, rc RenderContext) templ.Component {
			return text("tags")
		},
		Home: func(args HomeArgs, rc RenderContext) templ.Component {
			return text("home")
		},
		Commenting: func(rc RenderContext) templ.Component {
			return text("commenting")
		},
		Minimal: func(args PostArgs, rc RenderContext) templ.Component {
			return text("<p>" + args.Entry.Title + "</p>")
		},
		Style: func(colours map[string]ColourScheme) templ.Component {
			return text("body {}")
		},
	}
}

// recordingRenderer captures pages instead of writing files.
type recordingRenderer struct {
	pages []Page
	rcs   []RenderContext
}

func (r *recordingRenderer) Render(p Page, rc RenderContext) error {
	r.pages = append(r.pages, p)
	r.rcs = append(r.rcs, rc)
	return nil
}

func (r *recordingRenderer) find(t *testing.T, relative string) (Page, RenderContext) {
	t.Helper()
	for i, p := range r.pages {
		if p.Relative == relative {
			return p, r.rcs[i]
		}
	}
	t.Fatalf("page %s was not rendered", relative)
	return Page{}, RenderContext{}
}

func setupSite(t *testing.T) *Site {
	t.Helper()
	tmp := t.TempDir()
	site, err := InitSite(filepath.Join(tmp, "config"), "example.com", filepath.Join(tmp, "build"), "Example", "")
	if err != nil {
		t.Fatalf("InitSite failed: %v", err)
	}
	return site
}

func TestThread(t *testing.T) {
	first := &Entry{Slug: "a.html"}
	second := &Entry{Slug: "b.html"}
	third := &Entry{Slug: "c.html"}

	entries := []*Entry{first}
	thread(entries, second)
	entries = append(entries, second)
	thread(entries, third)

	if first.Backward != "" || first.Forward != "b.html" {
		t.Errorf("first links = (%q, %q), want (\"\", \"b.html\")", first.Backward, first.Forward)
	}
	if second.Backward != "a.html" || second.Forward != "c.html" {
		t.Errorf("second links = (%q, %q), want (\"a.html\", \"c.html\")", second.Backward, second.Forward)
	}
	if third.Backward != "b.html" || third.Forward != "" {
		t.Errorf("third links = (%q, %q), want (\"b.html\", \"\")", third.Backward, third.Forward)
	}
}

func TestPostManifests(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"100.json", "5.json", "20.json", "config.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write %s failed: %v", name, err)
		}
	}

	manifests, err := postManifests(dir)
	if err != nil {
		t.Fatalf("postManifests failed: %v", err)
	}
	var got []int64
	for _, m := range manifests {
		got = append(got, m.timestamp)
	}
	// Numeric order, not lexical: 100 sorts after 20.
	if want := []int64{5, 20, 100}; !reflect.DeepEqual(got, want) {
		t.Errorf("timestamps = %v, want %v", got, want)
	}
}

func TestPopCommentsLeavesManifestAlone(t *testing.T) {
	cfg := SectionConfig{Comments: map[string][]Comment{
		"100": {{User: "a@example.com", Text: "hi"}},
	}}
	pending := pendingComments(cfg)

	got := popComments(pending, "100")
	if len(got) != 1 || got[0].Text != "hi" {
		t.Fatalf("popComments = %v", got)
	}
	if popComments(pending, "100") != nil {
		t.Error("second pop should return nothing")
	}
	if len(cfg.Comments["100"]) != 1 {
		t.Error("popping must not mutate the manifest's comment map")
	}
}

func TestBuildBlogSection(t *testing.T) {
	ctx := context.Background()
	site := setupSite(t)
	lib := &fakeLibrary{images: map[int]*Image{
		1: testImage(t, 1, time.Date(2021, 5, 4, 0, 0, 0, 0, time.UTC)),
		2: testImage(t, 2, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)),
	}}

	if _, err := site.CreateBlog(SectionConfig{Title: "Garden", Icon: "🌱"}); err != nil {
		t.Fatalf("CreateBlog failed: %v", err)
	}
	if err := site.AddPost(ctx, lib, "garden", PostConfig{Title: "First", Images: []int{1}}, 100); err != nil {
		t.Fatalf("AddPost failed: %v", err)
	}
	if err := site.AddPost(ctx, lib, "garden", PostConfig{Title: "Second", Images: []int{1, 2}}, 200); err != nil {
		t.Fatalf("AddPost failed: %v", err)
	}
	if _, err := site.AddUser("alice@example.com", "Alice", nil); err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	if err := site.AddComment("alice@example.com", "garden", "", "100", "Lovely"); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	rec := &recordingRenderer{}
	app := New(site, lib, testViews(), WithAsker(allowAll), WithRenderer(rec))
	if err := app.Build(ctx, false); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	first, _ := rec.find(t, "garden/100.html")
	entry := first.Args.(PostArgs).Entry
	if entry.Backward != "" || entry.Forward != "200.html" {
		t.Errorf("first links = (%q, %q), want (\"\", \"200.html\")", entry.Backward, entry.Forward)
	}
	if len(entry.Comments) != 1 || entry.Comments[0].Text != "Lovely" {
		t.Errorf("first comments = %v, want the merged comment", entry.Comments)
	}
	if entry.Posted.Unix() != 100 {
		t.Errorf("first posted = %d, want 100", entry.Posted.Unix())
	}

	second, _ := rec.find(t, "garden/200.html")
	entry = second.Args.(PostArgs).Entry
	if entry.Backward != "100.html" || entry.Forward != "" {
		t.Errorf("second links = (%q, %q), want (\"100.html\", \"\")", entry.Backward, entry.Forward)
	}
	if len(entry.Images) != 2 {
		t.Errorf("second has %d images, want 2", len(entry.Images))
	}

	// Section pages make up the navbar, icon first, sorted by path.
	_, rc := rec.find(t, "index.html")
	want := []NavEntry{
		{Relative: "garden/index.html", Label: "🌱 Garden"},
		{Relative: "tags/index.html", Label: "#️⃣ Tags"},
	}
	if !reflect.DeepEqual(rc.Navbar, want) {
		t.Errorf("navbar = %v, want %v", rc.Navbar, want)
	}

	// A user directory enables the commenting help page.
	rec.find(t, "commenting.html")
	// And every resolved image gets a permalink.
	rec.find(t, "images/1.html")
	rec.find(t, "images/2.html")

	cfg, err := site.Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	build := cfg.Build
	for _, name := range []string{
		"style.css", "sitemap.xml", "atom.xml", "rss.xml",
		filepath.Join("garden", "atom.xml"), filepath.Join("garden", "rss.xml"),
		filepath.Join("images", "1.png"), filepath.Join("images", "2.png"),
	} {
		if _, err := os.Stat(filepath.Join(build, name)); err != nil {
			t.Errorf("expected build output %s: %v", name, err)
		}
	}
}

func TestBuildAutoSection(t *testing.T) {
	ctx := context.Background()
	site := setupSite(t)

	img1 := testImage(t, 1, time.Date(2021, 5, 4, 8, 0, 0, 0, time.UTC))
	img1.Tags = []string{"flowers"}
	img2 := testImage(t, 2, time.Date(2021, 5, 4, 9, 0, 0, 0, time.UTC))
	img2.Tags = []string{"flowers/poppy"}
	img2.EXIF = map[string]string{"DateTimeOriginal": "2021:05:04 09:00:00"}
	other := testImage(t, 3, time.Date(2021, 5, 5, 0, 0, 0, 0, time.UTC))
	other.Tags = []string{"birds"}
	lib := &fakeLibrary{images: map[int]*Image{1: img1, 2: img2, 3: other}}

	if _, err := site.CreateAuto(SectionConfig{Title: "Meadow", AllTags: []string{"flowers"}}); err != nil {
		t.Fatalf("CreateAuto failed: %v", err)
	}

	rec := &recordingRenderer{}
	app := New(site, lib, testViews(), WithAsker(allowAll), WithRenderer(rec))
	if err := app.Build(ctx, false); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Both images share a display date; the second slug carries the image id.
	first, _ := rec.find(t, "meadow/2021-05-04.html")
	second, _ := rec.find(t, "meadow/2021-05-04-2.html")
	if first.Title != "Meadow" || second.Title != "Meadow" {
		t.Errorf("titles = %q, %q; untitled images fall back to the section title", first.Title, second.Title)
	}
	entry := first.Args.(PostArgs).Entry
	if entry.Forward != "2021-05-04-2.html" {
		t.Errorf("forward = %q, want the disambiguated slug", entry.Forward)
	}

	// The filtered-out image got no post, no permalink, no asset.
	for _, p := range rec.pages {
		if p.Relative == "images/3.html" {
			t.Error("image outside the filter must not be resolved")
		}
	}
}

func TestBuildMinRatingFatal(t *testing.T) {
	site := setupSite(t)
	rating := 3
	if _, err := site.CreateAuto(SectionConfig{Title: "Best", MinRating: &rating}); err != nil {
		t.Fatalf("CreateAuto failed: %v", err)
	}

	lib := &fakeLibrary{images: map[int]*Image{}}
	app := New(site, lib, testViews(), WithAsker(allowAll), WithRenderer(&recordingRenderer{}))
	if err := app.Build(context.Background(), false); !errors.Is(err, ErrMinRatingUnsupported) {
		t.Errorf("Build error = %v, want ErrMinRatingUnsupported", err)
	}
}

func TestBuildDuplicatePostSlug(t *testing.T) {
	ctx := context.Background()
	site := setupSite(t)
	lib := &fakeLibrary{images: map[int]*Image{
		1: testImage(t, 1, time.Now()),
	}}

	if _, err := site.CreateBlog(SectionConfig{Title: "Garden"}); err != nil {
		t.Fatalf("CreateBlog failed: %v", err)
	}
	if err := site.AddPost(ctx, lib, "garden", PostConfig{Title: "A", Slug: "dup", Images: []int{1}}, 100); err != nil {
		t.Fatalf("AddPost failed: %v", err)
	}
	if err := site.AddPost(ctx, lib, "garden", PostConfig{Title: "B", Slug: "dup", Images: []int{1}}, 200); err != nil {
		t.Fatalf("AddPost failed: %v", err)
	}

	app := New(site, lib, testViews(), WithAsker(allowAll), WithRenderer(&recordingRenderer{}))
	if err := app.Build(ctx, false); err == nil {
		t.Error("Build should fail on duplicate post slugs")
	}
}
