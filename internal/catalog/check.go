package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Severity classifies a catalog issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a problem found by Check.
type Issue struct {
	Severity Severity
	Coord    Coordinate // zero for chapter-level issues
	Message  string
}

func (i Issue) String() string {
	if i.Coord.Lecture == 0 {
		return fmt.Sprintf("%s: chapter %d: %s", i.Severity, i.Coord.Chapter, i.Message)
	}
	return fmt.Sprintf("%s: lecture %s: %s", i.Severity, i.Coord, i.Message)
}

// Check validates the structure of c. Deep links are positional, so an ID that
// does not match its position produces links that resolve to another lecture.
func Check(c *Catalog) []Issue {
	var issues []Issue
	for ci, ch := range c.chapters {
		pos := ci + 1
		if ch.ID != pos {
			issues = append(issues, Issue{SeverityWarning, Coordinate{Chapter: pos}, fmt.Sprintf("id %d does not match position %d", ch.ID, pos)})
		}
		if strings.TrimSpace(ch.Title) == "" {
			issues = append(issues, Issue{SeverityWarning, Coordinate{Chapter: pos}, "empty title"})
		}
		if len(ch.Videos) == 0 {
			issues = append(issues, Issue{SeverityWarning, Coordinate{Chapter: pos}, "no lectures"})
		}
		for li, v := range ch.Videos {
			coord := Coordinate{Chapter: pos, Lecture: li + 1}
			if v.ID != li+1 {
				issues = append(issues, Issue{SeverityWarning, coord, fmt.Sprintf("id %d does not match position %d", v.ID, li+1)})
			}
			if strings.TrimSpace(v.Title) == "" {
				issues = append(issues, Issue{SeverityWarning, coord, "empty title"})
			}
			if v.MD == "" {
				issues = append(issues, Issue{SeverityError, coord, "missing md file name"})
			}
			if u, err := url.Parse(v.Href); err != nil || u.Scheme == "" || u.Host == "" {
				issues = append(issues, Issue{SeverityError, coord, fmt.Sprintf("invalid href %q", v.Href)})
			}
		}
	}
	return issues
}

// Progress receives updates while CheckNarratives fetches files.
type Progress interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// CheckNarratives fetches the narrative file of every lecture and reports the
// ones that cannot be fetched.
func CheckNarratives(ctx context.Context, c *Catalog, src Source, p Progress) []Issue {
	lectures := c.Lectures()
	if p != nil {
		p.Start(len(lectures))
		defer p.Finish()
	}

	var issues []Issue
	for i, lec := range lectures {
		if p != nil {
			p.Update(i+1, lec.MD)
		}
		if lec.MD == "" {
			continue
		}
		if _, err := src.Fetch(ctx, lec.MD); err != nil {
			issues = append(issues, Issue{SeverityError, lec.Coordinate(), err.Error()})
		}
	}
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
