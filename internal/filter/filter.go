// Package filter implements the boolean predicates used to narrow a loaded
// paper batch: free-text and quoted-phrase terms, category allow-sets, and
// personal tag membership.
package filter

import (
	"strings"

	"paperdeck/internal/paper"
	"paperdeck/internal/tagstore"
)

// ExtractTerms parses a search query into match terms. Substrings inside
// double quotes become single phrase terms matched verbatim (except case);
// the rest splits on whitespace. Blank terms are dropped and everything is
// lowercased.
func ExtractTerms(query string) []string {
	var terms []string
	rest := query
	for {
		open := strings.IndexByte(rest, '"')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open+1:], '"')
		if end < 0 {
			break
		}
		phrase := rest[open+1 : open+1+end]
		if t := strings.TrimSpace(phrase); t != "" {
			terms = append(terms, strings.ToLower(t))
		}
		rest = rest[:open] + " " + rest[open+end+2:]
	}
	for _, word := range strings.Fields(rest) {
		word = strings.Trim(word, `"`)
		if word != "" {
			terms = append(terms, strings.ToLower(word))
		}
	}
	return terms
}

// Filter is the full set of active predicates. Zero-valued fields are
// vacuous: an empty Filter matches every paper.
type Filter struct {
	Terms         []string // from the search query, via ExtractTerms
	Chips         []string // active preset terms, unioned with Terms
	Categories    []string // allow-set; empty accepts everything
	TitleOnly     bool     // match terms against the title alone
	ReadLaterOnly bool
	Topic         string // only papers starred under this topic
	StarredOnly   bool   // only papers starred under any topic
}

// Match reports whether a paper passes every active predicate.
func (f Filter) Match(p paper.Paper, tags tagstore.Tags) bool {
	if !f.textMatch(p) {
		return false
	}
	if !f.categoryMatch(p) {
		return false
	}
	id := p.Identity()
	if f.ReadLaterOnly && !tags.ReadLater[id] {
		return false
	}
	if f.Topic != "" && !tags.Stars[f.Topic][id] {
		return false
	}
	if f.StarredOnly && !tags.StarredAnywhere(id) {
		return false
	}
	return true
}

func (f Filter) textMatch(p paper.Paper) bool {
	terms := append(append([]string(nil), f.Terms...), f.Chips...)
	if len(terms) == 0 {
		return true
	}
	haystack := strings.ToLower(p.Title)
	if !f.TitleOnly {
		haystack += " " + strings.ToLower(p.Summary)
	}
	for _, term := range terms {
		if term == "" {
			continue
		}
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

func (f Filter) categoryMatch(p paper.Paper) bool {
	if len(f.Categories) == 0 {
		return true
	}
	for _, allowed := range f.Categories {
		for _, c := range p.Categories {
			if c == allowed {
				return true
			}
		}
	}
	return false
}

// Apply filters a flat batch, preserving order.
func Apply(f Filter, papers []paper.Dated, tags tagstore.Tags) []paper.Dated {
	var out []paper.Dated
	for _, p := range papers {
		if f.Match(p.Paper, tags) {
			out = append(out, p)
		}
	}
	return out
}
