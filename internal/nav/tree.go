package nav

import (
	"fmt"
	"html"
	"strings"

	"github.com/ziadkadry99/walkthrough/internal/catalog"
	"github.com/ziadkadry99/walkthrough/internal/deeplink"
)

// Tree is the navigation model: one group per chapter, one link per lecture.
type Tree struct {
	Groups []*Group
}

// Group is a chapter header with its lecture links.
type Group struct {
	Chapter  int
	Title    string
	Expanded bool
	Entries  []*TreeEntry
}

// TreeEntry is a lecture link.
type TreeEntry struct {
	ID      string // "chapter.lecture"
	Label   string // "lecture. title"
	Href    string
	Chapter int
	Lecture int
	Active  bool
}

// BuildTree builds the navigation tree for c. Only the chapter of current is
// expanded and only its entry is active; nothing is for a NotFound lecture.
func BuildTree(c *catalog.Catalog, base string, current catalog.Lecture) *Tree {
	activeID := EntryID(current)
	t := &Tree{}
	for _, ch := range c.Chapters() {
		g := &Group{
			Chapter:  ch.ID,
			Title:    ch.Title,
			Expanded: !current.IsError() && ch.ID == current.Chapter,
		}
		for _, v := range ch.Videos {
			id := catalog.Coordinate{Chapter: ch.ID, Lecture: v.ID}.String()
			g.Entries = append(g.Entries, &TreeEntry{
				ID:      id,
				Label:   fmt.Sprintf("%d. %s", v.ID, v.Title),
				Href:    deeplink.Build(base, ch.ID, v.ID, v.Title),
				Chapter: ch.ID,
				Lecture: v.ID,
				Active:  id == activeID,
			})
		}
		t.Groups = append(t.Groups, g)
	}
	return t
}

// Find returns the entry with the given ID, or nil.
func (t *Tree) Find(id string) *TreeEntry {
	for _, g := range t.Groups {
		for _, e := range g.Entries {
			if e.ID == id {
				return e
			}
		}
	}
	return nil
}

// ToHTML renders the tree as nested <ul><li> HTML for the sidebar.
func (t *Tree) ToHTML() string {
	var b strings.Builder
	b.WriteString("<ul class=\"chapters\">\n")
	for _, g := range t.Groups {
		expanded := ""
		if g.Expanded {
			expanded = " expanded"
		}
		fmt.Fprintf(&b, `<li class="chapter%s" data-chapter="%d"><span class="chapter-toggle">%s</span>`+"\n",
			expanded, g.Chapter, html.EscapeString(g.Title))
		b.WriteString("<ul class=\"lectures\">\n")
		for _, e := range g.Entries {
			active := ""
			if e.Active {
				active = ` class="active"`
			}
			fmt.Fprintf(&b, `<li><a id="%s" href="%s" data-chapter="%d" data-lecture="%d"%s>%s</a></li>`+"\n",
				e.ID, html.EscapeString(e.Href), e.Chapter, e.Lecture, active, html.EscapeString(e.Label))
		}
		b.WriteString("</ul>\n</li>\n")
	}
	b.WriteString("</ul>\n")
	return b.String()
}
