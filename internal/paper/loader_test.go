package paper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestIdentityPriority(t *testing.T) {
	p := Paper{ID: "http://arxiv.org/abs/2401.00001v1", Link: "http://arxiv.org/pdf/2401.00001v1.pdf", Title: "A Paper"}
	if p.Identity() != "http://arxiv.org/abs/2401.00001v1" {
		t.Errorf("expected id identity, got %q", p.Identity())
	}

	p.ID = ""
	if p.Identity() != "http://arxiv.org/pdf/2401.00001v1.pdf" {
		t.Errorf("expected link identity, got %q", p.Identity())
	}

	p.Link = ""
	if p.Identity() != "A Paper" {
		t.Errorf("expected title identity, got %q", p.Identity())
	}
}

func TestLoadDatesSkipsMissingDay(t *testing.T) {
	files := map[string]string{
		"/2026-02-04.json": `[{"title":"Day one","summary":"","category":["cs.AI"]}]`,
		"/2026-02-06.json": `[{"title":"Day three","summary":"","category":["cs.LG"]}]`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	loader := NewLoader(NewHTTPSource(srv.URL))
	days := loader.LoadDates(context.Background(), []string{"2026-02-04", "2026-02-05", "2026-02-06"})

	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if days[0].Date != "2026-02-06" {
		t.Errorf("expected newest day first, got %s", days[0].Date)
	}
	if len(days[1].Papers) != 0 {
		t.Errorf("expected empty day for 404, got %d papers", len(days[1].Papers))
	}

	flat := Flatten(days)
	if len(flat) != 2 {
		t.Fatalf("expected 2 papers total, got %d", len(flat))
	}
	if flat[0].Title != "Day three" || flat[1].Title != "Day one" {
		t.Errorf("unexpected order: %q, %q", flat[0].Title, flat[1].Title)
	}
}

func TestLoadDayMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	loader := NewLoader(NewHTTPSource(srv.URL))
	days := loader.LoadDates(context.Background(), []string{"2026-02-06"})
	if len(days[0].Papers) != 0 {
		t.Errorf("expected empty day for malformed payload, got %d papers", len(days[0].Papers))
	}
}

func TestLoadDaysUsesIndexTail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.json", `[{"date":"2026-02-04","count":1},{"date":"2026-02-05","count":1},{"date":"2026-02-06","count":1}]`)
	writeFile(t, dir, "2026-02-05.json", `[{"title":"B","summary":"","category":[]}]`)
	writeFile(t, dir, "2026-02-06.json", `[{"title":"C","summary":"","category":[]}]`)

	loader := NewLoader(NewDirSource(dir))
	days, err := loader.LoadDays(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Date != "2026-02-06" || days[1].Date != "2026-02-05" {
		t.Errorf("unexpected days: %s, %s", days[0].Date, days[1].Date)
	}
}

func TestDirSourceIndexFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2026-02-05.json", `[]`)
	writeFile(t, dir, "2026-02-06.json", `[]`)
	writeFile(t, dir, "notes.json", `[]`)

	entries, err := NewDirSource(dir).Index(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Date != "2026-02-05" {
		t.Errorf("expected oldest first, got %s", entries[0].Date)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}
