package server

import (
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"paperdeck/internal/digest"
	"paperdeck/internal/filter"
	"paperdeck/internal/paper"
	"paperdeck/internal/tagstore"
)

type chipState struct {
	Term      string
	Active    bool
	ToggleURL string
}

type catState struct {
	Name      string
	Active    bool
	ToggleURL string
}

type viewData struct {
	Query         string
	TitleOnly     bool
	ReadLaterOnly bool
	StarredOnly   bool
	Topic         string
	Days          int
	Date          string
	Dates         []string
	PrevDate      string
	NextDate      string
	Chips         []chipState
	Categories    []catState
	Topics        []string
	Groups        []digest.DayGroup
	Total         int
	ReturnTo      string
	DebounceMS    int
	Error         string
}

// buildFilter translates viewer query parameters into a filter.
func buildFilter(q url.Values) filter.Filter {
	return filter.Filter{
		Terms:         filter.ExtractTerms(q.Get("q")),
		Chips:         lowercaseAll(q["chip"]),
		Categories:    q["cat"],
		TitleOnly:     q.Get("title_only") == "1",
		ReadLaterOnly: q.Get("read_later") == "1",
		StarredOnly:   q.Get("starred") == "1",
		Topic:         q.Get("topic"),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	papers, dates, date, days := s.loadBatch(r)

	tags, err := s.store.Snapshot()
	if err != nil {
		log.Printf("Reading tag snapshot: %v", err)
		tags = tagstore.Tags{ReadLater: map[string]bool{}, Stars: map[string]map[string]bool{}}
	}

	f := buildFilter(q)
	matched := filter.Apply(f, papers, tags)
	groups := digest.Group(matched, tags)

	prev, next := neighbors(dates, date)

	data := viewData{
		Query:         q.Get("q"),
		TitleOnly:     f.TitleOnly,
		ReadLaterOnly: f.ReadLaterOnly,
		StarredOnly:   f.StarredOnly,
		Topic:         f.Topic,
		Days:          days,
		Date:          date,
		Dates:         dates,
		PrevDate:      prev,
		NextDate:      next,
		Chips:         s.chipStates(r.URL, f.Chips),
		Categories:    categoryStates(r.URL, papers, f.Categories),
		Topics:        tags.Topics,
		Groups:        groups,
		Total:         len(matched),
		ReturnTo:      r.URL.RequestURI(),
		DebounceMS:    s.cfg.Search.DebounceMS,
		Error:         q.Get("err"),
	}
	s.render(w, "index.html", data)
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	papers, _, _, _ := s.loadBatch(r)

	tags, err := s.store.Snapshot()
	if err != nil {
		log.Printf("Reading tag snapshot: %v", err)
		tags = tagstore.Tags{ReadLater: map[string]bool{}, Stars: map[string]map[string]bool{}}
	}

	f := buildFilter(r.URL.Query())
	groups := digest.Group(filter.Apply(f, papers, tags), tags)

	s.render(w, "digest.html", map[string]any{
		"Body": renderMarkdown(digest.Markdown(groups)),
	})
}

// loadBatch loads the requested papers: an explicit ?date=D day, or the
// most recent ?days=N (falling back to the configured default). Load
// failures degrade to an empty batch.
func (s *Server) loadBatch(r *http.Request) (papers []paper.Dated, dates []string, date string, days int) {
	q := r.URL.Query()

	days = s.cfg.Papers.Days
	if n, err := strconv.Atoi(q.Get("days")); err == nil && n > 0 {
		days = n
	}

	entries, err := s.source.Index(r.Context())
	if err != nil {
		log.Printf("Reading day index: %v", err)
	}
	for _, e := range entries {
		dates = append(dates, e.Date)
	}
	// Newest first for the picker.
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	date = q.Get("date")
	var loadDates []string
	if date != "" {
		loadDates = []string{date}
	} else {
		for i := 0; i < len(dates) && i < days; i++ {
			loadDates = append(loadDates, dates[i])
		}
	}

	papers = paper.Flatten(s.loader.LoadDates(r.Context(), loadDates))
	return papers, dates, date, days
}

// neighbors finds the dates on either side of date in the newest-first list,
// for prev/next navigation.
func neighbors(dates []string, date string) (prev, next string) {
	if date == "" {
		return "", ""
	}
	for i, d := range dates {
		if d != date {
			continue
		}
		// dates is newest first: previous day is after, next day before.
		if i+1 < len(dates) {
			prev = dates[i+1]
		}
		if i > 0 {
			next = dates[i-1]
		}
		return prev, next
	}
	return "", ""
}

func (s *Server) chipStates(u *url.URL, active []string) []chipState {
	activeSet := make(map[string]bool, len(active))
	for _, a := range active {
		activeSet[a] = true
	}
	chips := make([]chipState, 0, len(s.cfg.Search.Chips))
	for _, term := range s.cfg.Search.Chips {
		on := activeSet[strings.ToLower(term)]
		chips = append(chips, chipState{
			Term:      term,
			Active:    on,
			ToggleURL: toggleParam(u, "chip", strings.ToLower(term)),
		})
	}
	return chips
}

// categoryStates derives the selectable categories from the loaded papers,
// keeping any selected category visible even when no loaded paper carries it.
func categoryStates(u *url.URL, papers []paper.Dated, active []string) []catState {
	seen := make(map[string]bool)
	for _, p := range papers {
		for _, c := range p.Paper.Categories {
			seen[c] = true
		}
	}
	activeSet := make(map[string]bool, len(active))
	for _, a := range active {
		activeSet[a] = true
		seen[a] = true
	}

	names := make([]string, 0, len(seen))
	for c := range seen {
		names = append(names, c)
	}
	sort.Strings(names)

	cats := make([]catState, 0, len(names))
	for _, name := range names {
		cats = append(cats, catState{
			Name:      name,
			Active:    activeSet[name],
			ToggleURL: toggleParam(u, "cat", name),
		})
	}
	return cats
}

// toggleParam returns the current URL with one multi-valued parameter value
// added or removed.
func toggleParam(u *url.URL, key, value string) string {
	q := u.Query()
	values := q[key]
	var kept []string
	found := false
	for _, v := range values {
		if v == value {
			found = true
			continue
		}
		kept = append(kept, v)
	}
	if !found {
		kept = append(kept, value)
	}
	if len(kept) == 0 {
		q.Del(key)
	} else {
		q[key] = kept
	}
	out := *u
	out.RawQuery = q.Encode()
	return out.RequestURI()
}

func lowercaseAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	return out
}
