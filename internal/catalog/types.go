// Package catalog loads the chapter/lecture catalog and the narrative files
// that go with it.
package catalog

import "fmt"

// Lecture is a single video lecture of a chapter.
type Lecture struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Href  string `json:"href"`
	MD    string `json:"md"`

	// Chapter is the owning chapter's ID. It is not part of the catalog file;
	// lookups fill it in so a lecture carries its full coordinate.
	Chapter int `json:"chapter,omitempty"`

	// NotFound marks the sentinel lecture shown when resolution fails.
	NotFound bool `json:"notFound,omitempty"`
}

// Coordinate returns the lecture's (chapter, lecture) address.
func (l Lecture) Coordinate() Coordinate {
	return Coordinate{Chapter: l.Chapter, Lecture: l.ID}
}

// IsError reports whether l is the NotFound sentinel.
func (l Lecture) IsError() bool { return l.NotFound }

// Chapter groups an ordered list of lectures.
type Chapter struct {
	ID     int       `json:"id"`
	Title  string    `json:"title"`
	Videos []Lecture `json:"videos"`
}

// Coordinate is the 1-based address of a lecture within the catalog.
type Coordinate struct {
	Chapter int `json:"chapter"`
	Lecture int `json:"lecture"`
}

// String renders the coordinate as "chapter.lecture", the form used for nav entry IDs.
func (c Coordinate) String() string {
	return fmt.Sprintf("%d.%d", c.Chapter, c.Lecture)
}

// Catalog is the full ordered collection of chapters. It is immutable once loaded.
type Catalog struct {
	chapters []Chapter
}

// New builds a catalog from chapters. The slice is copied.
func New(chapters []Chapter) *Catalog {
	cp := make([]Chapter, len(chapters))
	for i, ch := range chapters {
		cp[i] = ch
		cp[i].Videos = append([]Lecture(nil), ch.Videos...)
	}
	return &Catalog{chapters: cp}
}

// Len returns the number of chapters.
func (c *Catalog) Len() int { return len(c.chapters) }

// Chapters returns a copy of the chapter list.
func (c *Catalog) Chapters() []Chapter {
	out := make([]Chapter, len(c.chapters))
	copy(out, c.chapters)
	return out
}

// Contains reports whether coord addresses an existing lecture.
func (c *Catalog) Contains(coord Coordinate) bool {
	if coord.Chapter < 1 || coord.Chapter > len(c.chapters) {
		return false
	}
	return coord.Lecture >= 1 && coord.Lecture <= len(c.chapters[coord.Chapter-1].Videos)
}

// Lookup returns the lecture at coord, annotated with its chapter ID.
// Indexes are positional: chapter N is the N-th chapter, lecture M the M-th
// video of that chapter.
func (c *Catalog) Lookup(coord Coordinate) (Lecture, bool) {
	if !c.Contains(coord) {
		return Lecture{}, false
	}
	ch := c.chapters[coord.Chapter-1]
	lec := ch.Videos[coord.Lecture-1]
	lec.Chapter = ch.ID
	return lec, true
}

// Lectures returns every lecture in catalog order, annotated with its chapter ID.
func (c *Catalog) Lectures() []Lecture {
	var out []Lecture
	for _, ch := range c.chapters {
		for _, v := range ch.Videos {
			v.Chapter = ch.ID
			out = append(out, v)
		}
	}
	return out
}
