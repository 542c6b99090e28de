// Package collect implements the daily fetch job: it pulls recent papers for
// the configured arXiv categories, keeps the ones published on the target
// day, and writes them to the paper_json directory alongside index.json.
package collect

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"paperdeck/internal/config"
	"paperdeck/internal/paper"
)

// DefaultAPIBase is the arXiv query API endpoint.
const DefaultAPIBase = "http://export.arxiv.org/api/query"

// Result holds the results of a collection run.
type Result struct {
	TotalFound int
	Saved      int
	Duplicates int
	Pruned     int
	Categories map[string]int
}

// Collector fetches daily paper batches from the arXiv Atom API.
type Collector struct {
	APIBase string

	categories []string
	maxResults int
	dir        string
	keepDays   int
	parser     *gofeed.Parser
}

// NewCollector creates a collector from the fetch and papers config.
func NewCollector(cfg *config.Config) *Collector {
	return &Collector{
		APIBase:    DefaultAPIBase,
		categories: cfg.Fetch.Categories,
		maxResults: cfg.Fetch.MaxResults,
		dir:        cfg.Papers.Dir,
		keepDays:   cfg.Papers.KeepDays,
		parser:     gofeed.NewParser(),
	}
}

// Run collects papers published on the given UTC date into
// <dir>/<date>.json, rewrites index.json, and prunes old daily files.
// A failed category is logged and skipped; the run only fails when
// nothing can be written.
func (c *Collector) Run(ctx context.Context, date string) (*Result, error) {
	r := &Result{Categories: make(map[string]int)}
	seen := make(map[string]struct{})
	papers := []paper.Paper{}

	for _, cat := range c.categories {
		entries, err := c.fetchCategory(ctx, cat)
		if err != nil {
			log.Printf("Failed to fetch %s: %v", cat, err)
			continue
		}

		kept := 0
		for _, p := range entries {
			if !publishedOn(p.Published, date) {
				continue
			}
			r.TotalFound++
			if _, dup := seen[p.ID]; dup {
				r.Duplicates++
				continue
			}
			seen[p.ID] = struct{}{}
			papers = append(papers, p)
			kept++
		}
		r.Categories[cat] = kept
		log.Printf("Fetched %s: %d papers for %s", cat, kept, date)
	}

	if err := WriteDay(c.dir, date, papers); err != nil {
		return nil, err
	}
	r.Saved = len(papers)

	pruned, err := Prune(c.dir, c.keepDays)
	if err != nil {
		log.Printf("Pruning old files: %v", err)
	}
	r.Pruned = pruned

	if err := RewriteIndex(c.dir); err != nil {
		return nil, err
	}

	log.Printf("Collection complete: %d found, %d saved, %d duplicates, %d pruned",
		r.TotalFound, r.Saved, r.Duplicates, r.Pruned)
	return r, nil
}

func (c *Collector) fetchCategory(ctx context.Context, category string) ([]paper.Paper, error) {
	q := url.Values{}
	q.Set("search_query", "cat:"+category)
	q.Set("sortBy", "submittedDate")
	q.Set("sortOrder", "descending")
	q.Set("max_results", fmt.Sprint(c.maxResults))

	feed, err := c.parser.ParseURLWithContext(c.APIBase+"?"+q.Encode(), ctx)
	if err != nil {
		return nil, err
	}

	papers := make([]paper.Paper, 0, len(feed.Items))
	for _, item := range feed.Items {
		if p := parseItem(item); p != nil {
			papers = append(papers, *p)
		}
	}
	return papers, nil
}

func parseItem(item *gofeed.Item) *paper.Paper {
	id := item.GUID
	if id == "" {
		id = item.Link
	}
	title := strings.TrimSpace(item.Title)
	if id == "" || title == "" {
		return nil
	}

	var published string
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC().Format(time.RFC3339)
	}

	var authors []string
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	return &paper.Paper{
		ID:         id,
		Title:      title,
		Summary:    strings.TrimSpace(item.Description),
		Published:  published,
		Link:       pdfLink(id),
		Categories: item.Categories,
		Authors:    authors,
	}
}

// pdfLink derives the PDF URL from an arXiv abs id.
func pdfLink(id string) string {
	if strings.Contains(id, "/abs/") {
		return strings.Replace(id, "/abs/", "/pdf/", 1) + ".pdf"
	}
	return id
}

// publishedOn reports whether a published timestamp falls on the given
// UTC date.
func publishedOn(published, date string) bool {
	t, err := time.Parse(time.RFC3339, published)
	if err != nil {
		return false
	}
	return t.UTC().Format("2006-01-02") == date
}

// Today returns today's UTC date as YYYY-MM-DD.
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}
