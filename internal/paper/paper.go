package paper

// Paper is one arXiv metadata record as stored in the daily JSON files.
type Paper struct {
	ID         string   `json:"id,omitempty"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Published  string   `json:"published,omitempty"`
	Link       string   `json:"link,omitempty"`
	Categories []string `json:"category"`
	Authors    []string `json:"authors,omitempty"`
}

// Identity returns the key used to associate personal tags with a paper:
// the arXiv id if present, else the link, else the title.
func (p Paper) Identity() string {
	if p.ID != "" {
		return p.ID
	}
	if p.Link != "" {
		return p.Link
	}
	return p.Title
}

// Dated is a paper plus the date of the daily file it came from.
type Dated struct {
	Paper
	Date string
}

// Day holds one daily file's papers.
type Day struct {
	Date   string
	Papers []Paper
}

// IndexEntry describes one available day in index.json.
type IndexEntry struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
