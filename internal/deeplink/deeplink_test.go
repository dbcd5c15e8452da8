package deeplink

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	tests := []struct {
		query string
		want  Result
	}{
		{"", Result{Kind: Absent}},
		{"?", Result{Kind: Absent}},
		{"?1.1.intro", Result{Kind: Valid, Chapter: 1, Lecture: 1}},
		{"2.3.setup-tools", Result{Kind: Valid, Chapter: 2, Lecture: 3}},
		{"?12.04.", Result{Kind: Valid, Chapter: 12, Lecture: 4}},
		{"?9.1.x", Result{Kind: Valid, Chapter: 9, Lecture: 1}},
		{"?abc", Result{Kind: Malformed}},
		{"?1.", Result{Kind: Malformed}},
		{"?1.2", Result{Kind: Malformed}},
		{"?a.1.x", Result{Kind: Malformed}},
		{"? 1.1.x", Result{Kind: Malformed}},
		{"?99999999999999999999999.1.x", Result{Kind: Malformed}},
	}
	for _, tt := range tests {
		got := Parse(tt.query)
		if got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Intro - Overview", "intro-overview"},
		{"Setup, Tools", "setup-tools"},
		{"Service Worker", "service-worker"},
		{"", ""},
		{"A - B, C", "a-b-c"},
	}
	for _, tt := range tests {
		if got := Slug(tt.title); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestBuild(t *testing.T) {
	got := Build("/", 2, 1, "Intro - Overview")
	if got != "/?2.1.intro-overview" {
		t.Errorf("Build = %q", got)
	}
	if got := Build("https://example.com/course/", 1, 3, "Q&A?"); !strings.HasPrefix(got, "https://example.com/course/?1.3.q%26a%3F") {
		t.Errorf("Build escaped = %q", got)
	}
}

func TestBuildParseRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ch := rapid.IntRange(1, 1000).Draw(t, "chapter")
		lec := rapid.IntRange(1, 1000).Draw(t, "lecture")
		title := rapid.StringMatching(`[[:print:]]{0,40}`).Draw(t, "title")

		link := Build("/", ch, lec, title)
		query := link[strings.Index(link, "?"):]
		got := Parse(query)
		if got.Kind != Valid || got.Chapter != ch || got.Lecture != lec {
			t.Fatalf("Parse(%q) = %+v, want %d.%d", query, got, ch, lec)
		}
	})
}
