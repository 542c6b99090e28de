package paper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Source provides access to the daily paper files and their index.
type Source interface {
	// Index returns the available days, oldest first.
	Index(ctx context.Context) ([]IndexEntry, error)
	// Day returns the raw JSON for one day's file.
	Day(ctx context.Context, date string) ([]byte, error)
}

// DirSource reads daily files from a local paper_json directory.
type DirSource struct {
	Dir string
}

// NewDirSource creates a Source backed by a local directory.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

// Index reads index.json if present, otherwise lists <date>.json files.
func (s *DirSource) Index(ctx context.Context) ([]IndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, "index.json"))
	if err == nil {
		var entries []IndexEntry
		if jsonErr := json.Unmarshal(data, &entries); jsonErr == nil {
			sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
			return entries, nil
		}
	}

	// Fall back to the directory listing.
	names, err := filepath.Glob(filepath.Join(s.Dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.Dir, err)
	}
	var entries []IndexEntry
	for _, name := range names {
		date := strings.TrimSuffix(filepath.Base(name), ".json")
		if date == "index" || !validDate(date) {
			continue
		}
		entries = append(entries, IndexEntry{Date: date})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries, nil
}

// Day reads one day's file from disk.
func (s *DirSource) Day(ctx context.Context, date string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.Dir, date+".json"))
}

// HTTPSource reads daily files from a remote base URL.
type HTTPSource struct {
	BaseURL string
	client  *http.Client
}

// NewHTTPSource creates a Source backed by an HTTP base URL such as
// "https://example.org/paper_json".
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Index fetches index.json from the base URL.
func (s *HTTPSource) Index(ctx context.Context) ([]IndexEntry, error) {
	data, err := s.get(ctx, s.BaseURL+"/index.json")
	if err != nil {
		return nil, err
	}
	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing index.json: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries, nil
}

// Day fetches one day's file from the base URL.
func (s *HTTPSource) Day(ctx context.Context, date string) ([]byte, error) {
	return s.get(ctx, s.BaseURL+"/"+date+".json")
}

func (s *HTTPSource) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "paperdeck/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
