package server

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"paperdeck/internal/config"
	"paperdeck/internal/digest"
	"paperdeck/internal/paper"
	"paperdeck/internal/sync"
	"paperdeck/internal/tagstore"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for browsing papers and managing tags.
type Server struct {
	cfg    *config.Config
	store  *tagstore.Store
	loader *paper.Loader
	source paper.Source
	syncer *sync.Client
	pages  map[string]*template.Template
	mux    *http.ServeMux
}

// New creates a new Server. syncer may be nil.
func New(cfg *config.Config, store *tagstore.Store, source paper.Source, syncer *sync.Client) (*Server, error) {
	funcMap := template.FuncMap{
		"formatDate": digest.FormatDate,
		"starred": func(e digest.Entry, topic string) bool {
			for _, t := range e.StarredTopics {
				if t == topic {
					return true
				}
			}
			return false
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "topics.html", "digest.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{
		cfg:    cfg,
		store:  store,
		loader: paper.NewLoader(source),
		source: source,
		syncer: syncer,
		pages:  pages,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Routes
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/digest", s.handleDigest)
	s.mux.HandleFunc("/toggle/readlater", s.handleToggleReadLater)
	s.mux.HandleFunc("/toggle/star", s.handleToggleStar)
	s.mux.HandleFunc("/topics", s.handleTopics)
	s.mux.HandleFunc("/topics/add", s.handleTopicAdd)
	s.mux.HandleFunc("/topics/rename", s.handleTopicRename)
	s.mux.HandleFunc("/topics/delete", s.handleTopicDelete)
	s.mux.HandleFunc("/export/readlater.json", s.handleExportReadLater)
	s.mux.HandleFunc("/export/topic.json", s.handleExportTopic)
	s.mux.HandleFunc("/export/all.json", s.handleExportAll)
	s.mux.HandleFunc("/import", s.handleImport)
	s.mux.HandleFunc("/api/tags", s.handleAPITags)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// pushSync mirrors the tag state to the remote endpoint, fire-and-forget.
func (s *Server) pushSync() {
	if s.syncer == nil {
		return
	}
	go s.syncer.Push(context.Background())
}

// redirectBack sends the browser back to the form's return target, falling
// back to "/" for anything that is not a local path.
func redirectBack(w http.ResponseWriter, r *http.Request) {
	target := r.FormValue("return")
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Serve hydrates tags from the sync endpoint if configured, then starts the
// HTTP server on the given port.
func Serve(cfg *config.Config, store *tagstore.Store, source paper.Source, syncer *sync.Client, port int) error {
	srv, err := New(cfg, store, source, syncer)
	if err != nil {
		return err
	}

	syncer.Hydrate(context.Background())

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
