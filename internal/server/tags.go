package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"paperdeck/internal/tagstore"
)

const maxImportSize = 10 << 20

func (s *Server) handleToggleReadLater(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	id := r.FormValue("id")
	if id != "" {
		if _, err := s.store.ToggleReadLater(id); err != nil {
			log.Printf("Toggling read-later for %s: %v", id, err)
		} else {
			s.pushSync()
		}
	}
	redirectBack(w, r)
}

func (s *Server) handleToggleStar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	id := r.FormValue("id")
	topic := r.FormValue("topic")
	if id != "" && topic != "" {
		if _, err := s.store.ToggleStar(topic, id); err != nil {
			log.Printf("Toggling star for %s in %q: %v", id, topic, err)
		} else {
			s.pushSync()
		}
	}
	redirectBack(w, r)
}

type topicRow struct {
	Name  string
	Stars int
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.Topics()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rows := make([]topicRow, 0, len(names))
	for _, name := range names {
		stars, _ := s.store.StarsFor(name)
		rows = append(rows, topicRow{Name: name, Stars: len(stars)})
	}

	s.render(w, "topics.html", map[string]any{
		"Topics": rows,
		"Error":  r.URL.Query().Get("err"),
	})
}

func (s *Server) handleTopicAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/topics", http.StatusFound)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if err := s.store.AddTopic(name); err != nil {
		redirectTopicsErr(w, r, err)
		return
	}
	s.pushSync()
	http.Redirect(w, r, "/topics", http.StatusFound)
}

func (s *Server) handleTopicRename(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/topics", http.StatusFound)
		return
	}

	oldName := strings.TrimSpace(r.FormValue("old"))
	newName := strings.TrimSpace(r.FormValue("new"))
	if err := s.store.RenameTopic(oldName, newName); err != nil {
		redirectTopicsErr(w, r, err)
		return
	}
	s.pushSync()
	http.Redirect(w, r, "/topics", http.StatusFound)
}

func (s *Server) handleTopicDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/topics", http.StatusFound)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if err := s.store.DeleteTopic(name); err != nil {
		redirectTopicsErr(w, r, err)
		return
	}
	s.pushSync()
	http.Redirect(w, r, "/topics", http.StatusFound)
}

func redirectTopicsErr(w http.ResponseWriter, r *http.Request, err error) {
	http.Redirect(w, r, "/topics?err="+url.QueryEscape(err.Error()), http.StatusFound)
}

func (s *Server) handleExportReadLater(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.ExportReadLater()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	serveDownload(w, "read_later.json", data)
}

func (s *Server) handleExportTopic(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	data, err := s.store.ExportTopic(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	serveDownload(w, fmt.Sprintf("stars_%s.json", sanitizeFilename(name)), data)
}

func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.ExportAllJSON()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	serveDownload(w, "paperdeck_tags.json", data)
}

func serveDownload(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/topics", http.StatusFound)
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		redirectTopicsErr(w, r, fmt.Errorf("reading upload: %w", err))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		redirectTopicsErr(w, r, fmt.Errorf("no file uploaded"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		redirectTopicsErr(w, r, fmt.Errorf("reading upload: %w", err))
		return
	}

	dest := tagstore.Dest{}
	if r.FormValue("dest") == "topic" {
		dest.Topic = strings.TrimSpace(r.FormValue("topic"))
		if dest.Topic == "" {
			redirectTopicsErr(w, r, fmt.Errorf("topic destination requires a name"))
			return
		}
	}

	if err := s.store.Import(data, dest); err != nil {
		redirectTopicsErr(w, r, err)
		return
	}
	s.pushSync()
	http.Redirect(w, r, "/topics", http.StatusFound)
}

// handleAPITags implements the tag sync protocol: GET returns the full
// payload, POST replaces it wholesale.
func (s *Server) handleAPITags(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, err := s.store.ExportAllJSON()
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)

	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
		if err != nil {
			http.Error(w, "reading body", http.StatusBadRequest)
			return
		}
		var payload tagstore.Payload
		if err := json.Unmarshal(body, &payload); err != nil {
			http.Error(w, "malformed payload", http.StatusBadRequest)
			return
		}
		if err := s.store.Replace(payload); err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
