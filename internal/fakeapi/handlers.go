package fakeapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/catchnotes/catchapi.go/pkg/constants"
	"github.com/catchnotes/catchapi.go/pkg/models"
)

const maxUploadMemory = 32 << 20

type authedHandler func(w http.ResponseWriter, r *http.Request, u *user)

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/v2/user.json", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/v2/notes.json", s.authed(s.handleListNotes)).Methods(http.MethodGet)
	r.HandleFunc("/v2/notes.json", s.authed(s.handleCreateNote)).Methods(http.MethodPost)
	r.HandleFunc("/v2/notes/{id}.json", s.authed(s.handleGetNote)).Methods(http.MethodGet)
	r.HandleFunc("/v2/notes/{id}.json", s.authed(s.handleEditNote)).Methods(http.MethodPost)
	r.HandleFunc("/v2/notes/{id}.json", s.authed(s.handleDeleteNote)).Methods(http.MethodDelete)
	r.HandleFunc("/v2/media/{note}.json", s.authed(s.handleListMedia)).Methods(http.MethodGet)
	r.HandleFunc("/v2/media/{note}.json", s.authed(s.handleAddMedia)).Methods(http.MethodPost)
	r.HandleFunc("/v2/media/{note}/{media}.json", s.authed(s.handleDeleteMedia)).Methods(http.MethodDelete)
	r.HandleFunc("/v2/comments/{note}.json", s.authed(s.handleListComments)).Methods(http.MethodGet)
	r.HandleFunc("/v2/comments/{note}.json", s.authed(s.handleAddComment)).Methods(http.MethodPost)
	r.HandleFunc("/v2/comment/{id}.json", s.authed(s.handleDeleteComment)).Methods(http.MethodDelete)
	r.HandleFunc("/v2/tags.json", s.authed(s.handleTags)).Methods(http.MethodGet)
	r.HandleFunc("/files/{id}", s.handleFile).Methods(http.MethodGet)

	s.legacyRoutes(r)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// AddUser registers an account that can log in with name and password.
func (s *Server) AddUser(name, password, email string) {
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()
	st.users = append(st.users, &user{
		ID:       st.id(),
		Name:     name,
		Password: password,
		Email:    email,
		Created:  st.now().UTC(),
	})
}

// IssueToken returns the access token of the named user, creating one when
// needed. It returns "" for unknown users.
func (s *Server) IssueToken(name string) string {
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()
	u := st.findUserByName(name)
	if u == nil {
		return ""
	}
	return st.issueToken(u)
}

// NoteCount returns the number of notes the named user has.
func (s *Server) NoteCount(name string) int {
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()
	u := st.findUserByName(name)
	if u == nil {
		return 0
	}
	return len(st.userNotes(u))
}

// SeedNotes creates count notes for the named user, numbered from 1.
func (s *Server) SeedNotes(name string, count int) {
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()
	u := st.findUserByName(name)
	if u == nil {
		return
	}
	for i := 1; i <= count; i++ {
		st.addNote(u, "note "+strconv.Itoa(i), "seed")
	}
}

// authenticate resolves the caller from Basic Authentication, an access
// token in the query or Authorization header, or the cookie_epass cookie.
// The store lock must be held.
func (s *Server) authenticate(r *http.Request) (*user, bool) {
	st := s.store
	if name, password, ok := r.BasicAuth(); ok {
		u := st.findUserByName(name)
		if u == nil || u.Password != password {
			return nil, false
		}
		return u, true
	}
	if u := st.findUserByToken(r.URL.Query().Get(constants.AccessTokenParam)); u != nil {
		return u, true
	}
	if tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		if u := st.findUserByToken(tok); u != nil {
			return u, true
		}
	}
	if c, err := r.Cookie(constants.CookieName); err == nil {
		if u := st.findUserByToken(c.Value); u != nil {
			return u, true
		}
	}
	return nil, false
}

func (s *Server) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.store.mu.Lock()
		defer s.store.mu.Unlock()

		u, ok := s.authenticate(r)
		if !ok {
			s.writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h(w, r, u)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()

	u, ok := s.authenticate(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !s.NoTokens {
		st.issueToken(u)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"user": userJSON(u, !s.NoTokens)})
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request, u *user) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", constants.DefaultPageSize)

	all := s.store.userNotes(u)
	page := []any{}
	for i := offset; i < len(all) && i < offset+limit; i++ {
		page = append(page, s.noteJSON(all[i]))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"notes": page, "count": len(all)})
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request, u *user) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	source := r.PostForm.Get("source")
	if source == "" {
		source = "api"
	}
	reminder, ok := s.parseReminder(w, r)
	if !ok {
		return
	}
	n := s.store.addNote(u, r.PostForm.Get("text"), source)
	n.Reminder = reminder
	s.writeJSON(w, http.StatusOK, map[string]any{"notes": []any{s.noteJSON(n)}})
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request, u *user) {
	n := s.store.findNote(u, mux.Vars(r)["id"])
	if n == nil {
		s.writeError(w, http.StatusNotFound, "note not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"notes": []any{s.noteJSON(n)}})
}

func (s *Server) handleEditNote(w http.ResponseWriter, r *http.Request, u *user) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n := s.store.findNote(u, mux.Vars(r)["id"])
	if n == nil {
		s.writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if !s.checkRevision(w, r, n) {
		return
	}
	reminder, ok := s.parseReminder(w, r)
	if !ok {
		return
	}
	if r.PostForm.Has("text") {
		n.Text = r.PostForm.Get("text")
	}
	if !reminder.IsZero() {
		n.Reminder = reminder
	}
	s.store.touch(n)
	s.writeJSON(w, http.StatusOK, map[string]any{"notes": []any{s.noteJSON(n)}})
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request, u *user) {
	n := s.store.findNote(u, mux.Vars(r)["id"])
	if n == nil {
		s.writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if !s.checkRevision(w, r, n) {
		return
	}
	s.store.deleteNote(n)
	s.writeJSON(w, http.StatusOK, map[string]any{"status": constants.StatusOK})
}

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request, u *user) {
	n := s.store.findNote(u, mux.Vars(r)["note"])
	if n == nil {
		s.writeError(w, http.StatusNotFound, "note not found")
		return
	}
	media := make([]any, 0, len(n.Media))
	for _, m := range n.Media {
		media = append(media, s.mediaJSON(m))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"media": media})
}

func (s *Server) handleAddMedia(w http.ResponseWriter, r *http.Request, u *user) {
	n := s.store.findNote(u, mux.Vars(r)["note"])
	if n == nil {
		s.writeError(w, http.StatusNotFound, "note not found")
		return
	}
	m, ok := s.readUpload(w, r, n, "data")
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.mediaJSON(m))
}

func (s *Server) handleDeleteMedia(w http.ResponseWriter, r *http.Request, u *user) {
	vars := mux.Vars(r)
	n := s.store.findNote(u, vars["note"])
	if n == nil {
		s.writeError(w, http.StatusNotFound, "note not found")
		return
	}
	for i, m := range n.Media {
		if strconv.Itoa(m.ID) == vars["media"] {
			n.Media = append(n.Media[:i], n.Media[i+1:]...)
			s.store.touch(n)
			s.writeJSON(w, http.StatusOK, map[string]any{"status": constants.StatusOK})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "not_found"})
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request, u *user) {
	n := s.store.findNote(u, mux.Vars(r)["note"])
	if n == nil {
		s.writeError(w, http.StatusNotFound, "note not found")
		return
	}
	comments := make([]any, 0, len(n.Comments))
	for _, c := range n.Comments {
		comments = append(comments, commentJSON(c))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request, u *user) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n := s.store.findNote(u, mux.Vars(r)["note"])
	if n == nil {
		s.writeError(w, http.StatusNotFound, "note not found")
		return
	}
	now := s.store.now().UTC()
	c := &comment{
		ID:       s.store.id(),
		Author:   u,
		Text:     r.PostForm.Get("text"),
		Created:  now,
		Modified: now,
	}
	n.Comments = append(n.Comments, c)
	s.store.touch(n)
	s.writeJSON(w, http.StatusOK, map[string]any{"comments": []any{commentJSON(c)}})
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request, u *user) {
	id := mux.Vars(r)["id"]
	for _, n := range s.store.userNotes(u) {
		for i, c := range n.Comments {
			if strconv.Itoa(c.ID) == id {
				n.Comments = append(n.Comments[:i], n.Comments[i+1:]...)
				s.store.touch(n)
				s.writeJSON(w, http.StatusOK, map[string]any{"status": constants.StatusOK})
				return
			}
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "not_found"})
}

func (s *Server) handleTags(w http.ResponseWriter, _ *http.Request, u *user) {
	s.writeJSON(w, http.StatusOK, map[string]any{"tags": tagsJSON(s.store.userNotes(u))})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	_, m := s.store.findMedia(mux.Vars(r)["id"])
	if m == nil {
		s.writeError(w, http.StatusNotFound, "media not found")
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(m.Data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(m.Data)
}

// readUpload stores the file in the multipart part named part.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, n *note, part string) (*media, bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	f, header, err := r.FormFile(part)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing "+part+" part")
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return s.store.addMedia(n, header.Filename, data), true
}

// checkRevision rejects edits and deletes carrying a stale
// server_modified_at.
func (s *Server) checkRevision(w http.ResponseWriter, r *http.Request, n *note) bool {
	rev := r.FormValue(constants.ServerModifiedAtParam)
	if rev != "" && rev != strconv.Itoa(n.Revision) {
		s.writeError(w, http.StatusConflict, "note was modified")
		return false
	}
	return true
}

func (s *Server) parseReminder(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	v := r.FormValue("reminder_at")
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(models.TimestampLayout, v)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid reminder_at")
		return time.Time{}, false
	}
	return t, true
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}
