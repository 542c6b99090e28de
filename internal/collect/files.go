package collect

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"paperdeck/internal/paper"
)

// WriteDay writes one day's papers to <dir>/<date>.json.
func WriteDay(dir, date string, papers []paper.Paper) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating paper directory: %w", err)
	}
	if papers == nil {
		papers = []paper.Paper{}
	}
	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, date+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Prune removes daily files beyond the keepDays most recent and returns how
// many were removed.
func Prune(dir string, keepDays int) (int, error) {
	if keepDays <= 0 {
		return 0, nil
	}
	dates, err := dayFiles(dir)
	if err != nil {
		return 0, err
	}
	if len(dates) <= keepDays {
		return 0, nil
	}

	pruned := 0
	for _, date := range dates[:len(dates)-keepDays] {
		if err := os.Remove(filepath.Join(dir, date+".json")); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

// RewriteIndex scans the daily files and rewrites index.json with one
// {date, count} entry per day, oldest first.
func RewriteIndex(dir string) error {
	dates, err := dayFiles(dir)
	if err != nil {
		return err
	}

	entries := make([]paper.IndexEntry, 0, len(dates))
	for _, date := range dates {
		data, err := os.ReadFile(filepath.Join(dir, date+".json"))
		if err != nil {
			return err
		}
		var papers []paper.Paper
		if err := json.Unmarshal(data, &papers); err != nil {
			// A malformed day still gets listed; the loader treats
			// it as empty.
			entries = append(entries, paper.IndexEntry{Date: date})
			continue
		}
		entries = append(entries, paper.IndexEntry{Date: date, Count: len(papers)})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "index.json"), data, 0o644)
}

// dayFiles returns the dates of the daily files in dir, oldest first.
func dayFiles(dir string) ([]string, error) {
	names, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	var dates []string
	for _, name := range names {
		date := strings.TrimSuffix(filepath.Base(name), ".json")
		if _, err := time.Parse("2006-01-02", date); err != nil {
			continue
		}
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}
