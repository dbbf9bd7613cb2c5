package photosite

import (
	"errors"
	"reflect"
	"testing"
)

func TestPathToRoot(t *testing.T) {
	tests := []struct {
		relative string
		want     string
	}{
		{"index.html", "."},
		{"garden/index.html", ".."},
		{"garden/2021-05-04.html", ".."},
		{"a/b/c.html", "../.."},
	}
	for _, tt := range tests {
		p := Page{Relative: tt.relative}
		if got := p.PathToRoot(); got != tt.want {
			t.Errorf("PathToRoot(%q) = %q, want %q", tt.relative, got, tt.want)
		}
	}
}

func TestNavbar(t *testing.T) {
	reg := &pageRegistry{}
	reg.add(Page{Relative: "zoo/index.html", Title: "Zoo", Section: true})
	reg.add(Page{Relative: "garden/2021.html", Title: "A Post"})
	reg.add(Page{Relative: "garden/index.html", Title: "Garden", Section: true, Icon: "🌱"})
	reg.add(Page{Relative: "tags/index.html", Title: "Tags", Section: true, Icon: "#️⃣"})

	got := reg.navbar()
	want := []NavEntry{
		{Relative: "garden/index.html", Label: "🌱 Garden"},
		{Relative: "tags/index.html", Label: "#️⃣ Tags"},
		{Relative: "zoo/index.html", Label: "Zoo"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("navbar = %v, want %v", got, want)
	}
}

// failingRenderer fails on one page and records the rest.
type failingRenderer struct {
	fail     string
	rendered []string
}

func (r *failingRenderer) Render(p Page, rc RenderContext) error {
	if p.Relative == r.fail {
		return errors.New("boom")
	}
	r.rendered = append(r.rendered, p.Relative)
	return nil
}

func TestRenderAllKeepsGoing(t *testing.T) {
	reg := &pageRegistry{}
	reg.add(Page{Relative: "a.html"})
	reg.add(Page{Relative: "b.html"})
	reg.add(Page{Relative: "c.html"})

	r := &failingRenderer{fail: "b.html"}
	reg.renderAll(r, nil, nil, "example.com")

	if want := []string{"a.html", "c.html"}; !reflect.DeepEqual(r.rendered, want) {
		t.Errorf("rendered = %v, want %v", r.rendered, want)
	}
}
