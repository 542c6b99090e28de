// Package digest turns a filtered paper batch into day-grouped view models
// and a markdown digest document.
package digest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"paperdeck/internal/paper"
	"paperdeck/internal/tagstore"
)

// Entry is the view model for one paper row.
type Entry struct {
	Title         string
	Summary       string
	Published     string
	Categories    string // joined for display
	Link          string
	Identity      string
	InReadLater   bool
	StarredTopics []string
}

// DayGroup is one date's entries, for display.
type DayGroup struct {
	Date    string
	Display string
	Entries []Entry
}

// Group builds day groups from a filtered batch, newest date first.
// Papers keep their within-day order.
func Group(papers []paper.Dated, tags tagstore.Tags) []DayGroup {
	byDate := make(map[string][]Entry)
	for _, p := range papers {
		byDate[p.Date] = append(byDate[p.Date], newEntry(p, tags))
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	// ISO dates sort lexicographically, so reverse order is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	groups := make([]DayGroup, 0, len(dates))
	for _, d := range dates {
		groups = append(groups, DayGroup{
			Date:    d,
			Display: FormatDate(d),
			Entries: byDate[d],
		})
	}
	return groups
}

func newEntry(p paper.Dated, tags tagstore.Tags) Entry {
	id := p.Identity()
	return Entry{
		Title:         p.Title,
		Summary:       p.Summary,
		Published:     publishedDate(p.Published),
		Categories:    strings.Join(p.Paper.Categories, ", "),
		Link:          p.Link,
		Identity:      id,
		InReadLater:   tags.ReadLater[id],
		StarredTopics: tags.StarredTopics(id),
	}
}

// Markdown renders day groups as a digest document.
func Markdown(groups []DayGroup) string {
	if len(groups) == 0 {
		return "No papers match the current filters.\n"
	}

	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "## %s (%d papers)\n\n", g.Display, len(g.Entries))
		for _, e := range g.Entries {
			if e.Link != "" {
				fmt.Fprintf(&b, "### [%s](%s)\n\n", e.Title, e.Link)
			} else {
				fmt.Fprintf(&b, "### %s\n\n", e.Title)
			}
			if e.Categories != "" {
				fmt.Fprintf(&b, "*%s*", e.Categories)
				if e.Published != "" {
					fmt.Fprintf(&b, " · %s", e.Published)
				}
				b.WriteString("\n\n")
			}
			if e.Summary != "" {
				b.WriteString(e.Summary)
				b.WriteString("\n\n")
			}
		}
	}
	return b.String()
}

// FormatDate formats an ISO date for display ("Feb 06, 2026").
func FormatDate(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.Format("Jan 02, 2006")
}

// publishedDate trims a full timestamp ("2026-02-06T01:23:45Z") to its date.
func publishedDate(published string) string {
	if len(published) >= 10 {
		if _, err := time.Parse("2006-01-02", published[:10]); err == nil {
			return published[:10]
		}
	}
	return published
}
