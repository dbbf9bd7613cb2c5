package photosite

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// TagIndex gates raw hierarchical tag paths through the persisted allow/deny
// store and accumulates the global tag → images index for one build run.
//
// Tags are slash-separated paths where every prefix is an independently
// authorizable ancestor: "birds/corvids/crow" is gated first as itself, then
// as "birds/corvids", then as "birds".
type TagIndex struct {
	store  Decisions
	ask    Asker
	images map[string][]int  // tag path -> image ids, in registration order
	slugs  map[string]string // tag path -> permanent URL-safe slug
}

// NewTagIndex returns an empty index backed by the given decision store and
// decision provider.
func NewTagIndex(store Decisions, ask Asker) *TagIndex {
	return &TagIndex{
		store:  store,
		ask:    ask,
		images: make(map[string][]int),
		slugs:  make(map[string]string),
	}
}

// Authorize walks tag from its most specific segment toward the root,
// right-truncating at "/". The first authorized prefix is attached to the
// image and returned, split into segments; that prefix and every shorter
// prefix above it are registered in the index. A prefix with no persisted
// decision is put to the Asker and the answer stored permanently. If every
// prefix up to the root is denied, Authorize returns nil.
func (ti *TagIndex) Authorize(tag string, imageID int) ([]string, error) {
	for tag != "" {
		allowed, ok, err := ti.store.TagDecision(tag)
		if err != nil {
			return nil, fmt.Errorf("photosite: tag decision %q: %w", tag, err)
		}
		if !ok {
			allowed, err = ti.ask.Ask(fmt.Sprintf("allow #%s?", tag))
			if err != nil {
				return nil, err
			}
			if err := ti.store.PutTagDecision(tag, allowed); err != nil {
				return nil, fmt.Errorf("photosite: persist tag decision %q: %w", tag, err)
			}
		}
		if allowed {
			ti.register(tag, imageID)
			return strings.Split(tag, "/"), nil
		}
		tag = parentTag(tag)
	}
	return nil, nil
}

// register records the image under tag and every ancestor prefix, assigning
// each path its permanent slug on first registration.
func (ti *TagIndex) register(tag string, imageID int) {
	for tag != "" {
		ids, ok := ti.images[tag]
		if !ok {
			ti.images[tag] = []int{imageID}
			ti.slugs[tag] = TagSlug(tag)
		} else if !slices.Contains(ids, imageID) {
			ti.images[tag] = append(ids, imageID)
		}
		tag = parentTag(tag)
	}
}

// Tags returns every registered tag path, sorted.
func (ti *TagIndex) Tags() []string {
	tags := make([]string, 0, len(ti.images))
	for tag := range ti.images {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Images returns the ids registered under an exact tag path, in registration
// order.
func (ti *TagIndex) Images(tag string) []int {
	return ti.images[tag]
}

// Slugs returns the tag path → slug table built so far. The returned map is
// shared, not copied; callers must treat it as read-only.
func (ti *TagIndex) Slugs() map[string]string {
	return ti.slugs
}

// TagNode is one level of the tag hierarchy as displayed on the tag index
// page. Children are sorted by name.
type TagNode struct {
	Name     string
	Path     string // slug of the full path down to this node
	Children []*TagNode
}

// Tree assembles the registered tags into a hierarchy rooted at an unnamed
// node.
func (ti *TagIndex) Tree() *TagNode {
	root := &TagNode{}
	for _, tag := range ti.Tags() {
		current := root
		var full []string
		for _, part := range strings.Split(tag, "/") {
			full = append(full, part)
			child := current.child(part)
			if child == nil {
				child = &TagNode{
					Name: part,
					Path: ti.slugs[strings.Join(full, "/")],
				}
				current.Children = append(current.Children, child)
			}
			current = child
		}
	}
	return root
}

func (n *TagNode) child(name string) *TagNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// TagSlug converts a tag path to its permanent URL-safe slug: ascii
// alphanumerics are lowercased and kept, the path separator becomes an
// underscore, '.' and '-' are kept, and every other character becomes '-'.
func TagSlug(tag string) string {
	var b strings.Builder
	for _, r := range tag {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
		case r == '/':
			b.WriteByte('_')
		case r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func parentTag(tag string) string {
	if i := strings.LastIndex(tag, "/"); i >= 0 {
		return tag[:i]
	}
	return ""
}
