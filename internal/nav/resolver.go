// Package nav decides which lecture to show for a deep link, a click or a
// back/forward navigation, and which side effects follow from it.
package nav

import (
	"errors"
	"fmt"

	"github.com/ziadkadry99/walkthrough/internal/catalog"
	"github.com/ziadkadry99/walkthrough/internal/deeplink"
	"github.com/ziadkadry99/walkthrough/internal/persist"
)

var (
	ErrMalformedDeepLink  = errors.New("malformed deep link")
	ErrOutOfRange         = errors.New("coordinate out of range")
	ErrUnknownLecture     = errors.New("unknown lecture")
	ErrAlreadyInitialized = errors.New("session already initialized")
	ErrNotInitialized     = errors.New("session not initialized")
)

// DefaultNotFound is the lecture shown when a deep link cannot be resolved.
var DefaultNotFound = catalog.Lecture{
	NotFound: true,
	Href:     "https://youtu.be/KuLFXr7OPpc",
	Title:    "Lecture not found",
	MD:       "404.md",
}

// Decision is the result of resolving a selection.
type Decision struct {
	Lecture catalog.Lecture

	// Persist is the coordinate to write as the persisted selection, or nil
	// when the persisted selection must stay untouched.
	Persist *catalog.Coordinate

	// Reset is set when a stored selection existed but could not be used.
	Reset bool

	// Err classifies a NotFound result. It is nil for every resolved lecture.
	Err error
}

// Resolver maps deep links, stored selections and clicks to lectures.
type Resolver struct {
	Catalog  *catalog.Catalog
	NotFound catalog.Lecture
}

// NewResolver returns a Resolver over c using DefaultNotFound.
func NewResolver(c *catalog.Catalog) *Resolver {
	return &Resolver{Catalog: c, NotFound: DefaultNotFound}
}

func (r *Resolver) notFound(err error) Decision {
	lec := r.NotFound
	lec.NotFound = true
	lec.Chapter = 0
	return Decision{Lecture: lec, Err: err}
}

func (r *Resolver) found(coord catalog.Coordinate, persist bool) (Decision, bool) {
	lec, ok := r.Catalog.Lookup(coord)
	if !ok {
		return Decision{}, false
	}
	d := Decision{Lecture: lec}
	if persist {
		c := coord
		d.Persist = &c
	}
	return d, true
}

// Initial resolves the lecture for a page load. The deep link in query wins
// over the stored selection, which wins over the first lecture. A deep link
// that is malformed or out of range yields the NotFound lecture and leaves
// the persisted selection unchanged.
func (r *Resolver) Initial(query, stored string) Decision {
	link := deeplink.Parse(query)
	switch link.Kind {
	case deeplink.Valid:
		coord := catalog.Coordinate{Chapter: link.Chapter, Lecture: link.Lecture}
		if d, ok := r.found(coord, true); ok {
			return d
		}
		return r.notFound(fmt.Errorf("%w: %s", ErrOutOfRange, coord))
	case deeplink.Malformed:
		return r.notFound(fmt.Errorf("%w: %q", ErrMalformedDeepLink, query))
	}

	reset := false
	if stored != "" {
		coord, err := persist.DecodeSelection(stored)
		if err == nil {
			if d, ok := r.found(coord, false); ok {
				return d
			}
		}
		reset = true
	}

	first := catalog.Coordinate{Chapter: 1, Lecture: 1}
	d, ok := r.found(first, true)
	if !ok {
		return r.notFound(fmt.Errorf("%w: catalog is empty", ErrOutOfRange))
	}
	d.Reset = reset
	return d
}

// Click resolves a lecture chosen from the navigation tree. The selection is
// always persisted.
func (r *Resolver) Click(chapter, lecture int) (Decision, error) {
	coord := catalog.Coordinate{Chapter: chapter, Lecture: lecture}
	d, ok := r.found(coord, true)
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownLecture, coord)
	}
	return d, nil
}
