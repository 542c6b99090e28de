// Package fetch retrieves a paper's abstract page over HTTP and extracts
// readable text for terminal display.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// AbstractFetcher fetches abstract pages via HTTP + readability extraction.
type AbstractFetcher struct {
	client *http.Client
}

// NewAbstractFetcher creates a new abstract fetcher.
func NewAbstractFetcher(timeout time.Duration) *AbstractFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &AbstractFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Abstract holds the extracted abstract page content.
type Abstract struct {
	Title string
	Text  string
}

// Fetch retrieves the page at the given URL and extracts its readable text.
func (f *AbstractFetcher) Fetch(pageURL string) (*Abstract, error) {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "paperdeck/1.0 (paper viewer)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching %s: %s", pageURL, resp.Status)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", pageURL, err)
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("extracting text from %s: %w", pageURL, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return nil, fmt.Errorf("no extractable text at %s", pageURL)
	}
	return &Abstract{Title: article.Title, Text: text}, nil
}

// AbsURL maps an arXiv identity to its abstract page URL. PDF links go back
// to the abs page; anything else passes through.
func AbsURL(identity string) string {
	if strings.Contains(identity, "/pdf/") {
		return strings.TrimSuffix(strings.Replace(identity, "/pdf/", "/abs/", 1), ".pdf")
	}
	return identity
}
