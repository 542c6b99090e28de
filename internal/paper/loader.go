package paper

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// Loader loads daily paper batches from a Source. Each day is loaded
// independently: a missing file, fetch error, or non-array payload yields an
// empty day rather than failing the whole load.
type Loader struct {
	source Source
}

// NewLoader creates a Loader over the given source.
func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// LoadDays loads the most recent n available days. With no index and no
// files it returns an empty batch.
func (l *Loader) LoadDays(ctx context.Context, n int) ([]Day, error) {
	entries, err := l.source.Index(ctx)
	if err != nil {
		log.Printf("Reading day index: %v", err)
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	dates := make([]string, len(entries))
	for i, e := range entries {
		dates[i] = e.Date
	}
	return l.LoadDates(ctx, dates), nil
}

// LoadDates loads the given days concurrently and returns them newest first.
func (l *Loader) LoadDates(ctx context.Context, dates []string) []Day {
	days := make([]Day, len(dates))

	var wg sync.WaitGroup
	for i, date := range dates {
		wg.Add(1)
		go func(i int, date string) {
			defer wg.Done()
			days[i] = Day{Date: date, Papers: l.loadDay(ctx, date)}
		}(i, date)
	}
	wg.Wait()

	// Newest first. Dates are ISO strings, so reverse-lexicographic order
	// is reverse-chronological.
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
	return days
}

func (l *Loader) loadDay(ctx context.Context, date string) []Paper {
	data, err := l.source.Day(ctx, date)
	if err != nil {
		log.Printf("No papers for %s: %v", date, err)
		return nil
	}
	var papers []Paper
	if err := json.Unmarshal(data, &papers); err != nil {
		log.Printf("Malformed paper file for %s: %v", date, err)
		return nil
	}
	return papers
}

// Flatten concatenates a batch of days into one list, retaining each
// paper's origin date. No cross-day deduplication is performed.
func Flatten(days []Day) []Dated {
	var out []Dated
	for _, d := range days {
		for _, p := range d.Papers {
			out = append(out, Dated{Paper: p, Date: d.Date})
		}
	}
	return out
}
