// Package deeplink parses and builds the "?<chapter>.<lecture>.<slug>" query
// strings that address a single lecture.
package deeplink

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Kind classifies a parsed query string.
type Kind int

const (
	// Absent means the URL carries no query at all.
	Absent Kind = iota
	// Malformed means a query is present but has no coordinate prefix.
	Malformed
	// Valid means the query starts with "<chapter>.<lecture>.".
	Valid
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Malformed:
		return "malformed"
	case Valid:
		return "valid"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Result is the tagged outcome of Parse. Chapter and Lecture are 1-based and
// only meaningful when Kind is Valid. Bounds are not checked here.
type Result struct {
	Kind    Kind
	Chapter int
	Lecture int
}

var prefix = regexp.MustCompile(`^(\d+)\.(\d+)\.`)

// Parse classifies a raw query string. A single leading "?" is ignored.
// Anything after the second dot is the slug and carries no meaning.
func Parse(query string) Result {
	q := strings.TrimPrefix(query, "?")
	if q == "" {
		return Result{Kind: Absent}
	}
	m := prefix.FindStringSubmatch(q)
	if m == nil {
		return Result{Kind: Malformed}
	}
	ch, err := strconv.Atoi(m[1])
	if err != nil {
		return Result{Kind: Malformed}
	}
	lec, err := strconv.Atoi(m[2])
	if err != nil {
		return Result{Kind: Malformed}
	}
	return Result{Kind: Valid, Chapter: ch, Lecture: lec}
}

var slugReplacer = strings.NewReplacer(" -", "", ",", "")

// Slug turns a lecture title into the human-readable tail of a deep link:
// lowercased, every " -" and "," removed, remaining spaces turned into "-".
func Slug(title string) string {
	s := slugReplacer.Replace(strings.ToLower(title))
	return strings.ReplaceAll(s, " ", "-")
}

// Query returns the query string (without "?") addressing chapter.lecture.
func Query(chapter, lecture int, title string) string {
	return fmt.Sprintf("%d.%d.%s", chapter, lecture, url.QueryEscape(Slug(title)))
}

// Build returns the canonical deep link for a lecture relative to base.
func Build(base string, chapter, lecture int, title string) string {
	return base + "?" + Query(chapter, lecture, title)
}
