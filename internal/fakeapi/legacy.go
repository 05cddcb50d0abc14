package fakeapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/catchnotes/catchapi.go/pkg/constants"
)

// cursorPageSize is the batch size of the v1 cursor protocol.
const cursorPageSize = 20

func (s *Server) legacyRoutes(r *mux.Router) {
	r.HandleFunc("/v1/notes.json", s.authed(s.handleCursor)).Methods(http.MethodGet)
	r.HandleFunc("/v1/notes.json", s.authed(s.handleCreateNote)).Methods(http.MethodPost)
	r.HandleFunc("/v1/notes/{id}.json", s.authed(s.handleEditNote)).Methods(http.MethodPost)
	r.HandleFunc("/v1/notes/{id}.json", s.authed(s.handleDeleteNote)).Methods(http.MethodDelete)
	r.HandleFunc("/v1/images/{id}.json", s.authed(s.handleUploadImage)).Methods(http.MethodPost)
	r.HandleFunc("/viewImage.action", s.authed(s.handleViewImage)).Methods(http.MethodGet)
}

// handleCursor lists notes by cursor position: no cursor or 0 is every note,
// -1 the newest batch and n > 0 the n-th older batch.
func (s *Server) handleCursor(w http.ResponseWriter, r *http.Request, u *user) {
	all := s.store.userNotes(u)

	pos := 0
	if v := r.URL.Query().Get(constants.CursorParam); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid cursor")
			return
		}
		pos = p
	}

	start, end := 0, len(all)
	prev, next := 0, 0
	if pos != 0 {
		batch := max(pos, 0)
		start = min(batch*cursorPageSize, len(all))
		end = min(start+cursorPageSize, len(all))
		switch {
		case batch == 1:
			prev = -1
		case batch > 1:
			prev = batch - 1
		}
		if end < len(all) {
			next = batch + 1
		}
	}

	notes := make([]any, 0, end-start)
	for _, n := range all[start:end] {
		notes = append(notes, s.noteJSON(n))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"notes":           notes,
		"count":           len(all),
		"previous_cursor": prev,
		"next_cursor":     next,
	})
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request, u *user) {
	n := s.store.findNote(u, mux.Vars(r)["id"])
	if n == nil {
		s.writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if _, ok := s.readUpload(w, r, n, "image"); !ok {
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleViewImage serves the media with the given id, or the first image of
// the note with that id.
func (s *Server) handleViewImage(w http.ResponseWriter, r *http.Request, u *user) {
	id := r.URL.Query().Get(constants.ViewImageID)

	var data []byte
	if n, m := s.store.findMedia(id); m != nil && n.Owner == u {
		data = m.Data
	} else if n := s.store.findNote(u, id); n != nil {
		for _, m := range n.Media {
			if m.Type == "image" {
				data = m.Data
				break
			}
		}
	}
	if data == nil {
		s.writeError(w, http.StatusNotFound, "image not found")
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
