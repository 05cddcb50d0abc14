package fakeapi

import (
	"bytes"
	"crypto/md5" //nolint:gosec // the API reports md5 digests of uploads
	"encoding/hex"
	"image"
	_ "image/gif"  // register decoder for dimensions
	_ "image/jpeg" // register decoder for dimensions
	_ "image/png"  // register decoder for dimensions
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/catchnotes/catchapi.go/pkg/models"
)

const summaryLength = 100

type user struct {
	ID       int
	Name     string
	Password string
	Email    string
	Token    string
	Created  time.Time
}

type note struct {
	ID       int
	Owner    *user
	Created  time.Time
	Modified time.Time
	Reminder time.Time
	Revision int
	Text     string
	Source   string
	Media    []*media
	Comments []*comment
}

type media struct {
	ID       int
	Revision int
	Type     string
	Filename string
	Data     []byte
	MD5      string
	Width    int
	Height   int
	Created  time.Time
}

type comment struct {
	ID       int
	Author   *user
	Text     string
	Created  time.Time
	Modified time.Time
}

type store struct {
	mu     sync.Mutex
	now    func() time.Time
	nextID int
	users  []*user
	// notes are kept oldest first.
	notes []*note
}

func newStore() *store {
	return &store{now: time.Now, nextID: 1000}
}

func (st *store) id() int {
	st.nextID++
	return st.nextID
}

func (st *store) findUserByName(name string) *user {
	for _, u := range st.users {
		if u.Name == name {
			return u
		}
	}
	return nil
}

func (st *store) findUserByToken(token string) *user {
	if token == "" {
		return nil
	}
	for _, u := range st.users {
		if u.Token == token {
			return u
		}
	}
	return nil
}

// userNotes returns the notes of u, newest first.
func (st *store) userNotes(u *user) []*note {
	var out []*note
	for i := len(st.notes) - 1; i >= 0; i-- {
		if st.notes[i].Owner == u {
			out = append(out, st.notes[i])
		}
	}
	return out
}

func (st *store) findNote(u *user, id string) *note {
	for _, n := range st.notes {
		if n.Owner == u && strconv.Itoa(n.ID) == id {
			return n
		}
	}
	return nil
}

func (st *store) addNote(u *user, text, source string) *note {
	now := st.now().UTC()
	n := &note{
		ID:       st.id(),
		Owner:    u,
		Created:  now,
		Modified: now,
		Revision: 1,
		Text:     text,
		Source:   source,
	}
	st.notes = append(st.notes, n)
	return n
}

func (st *store) deleteNote(n *note) {
	for i, x := range st.notes {
		if x == n {
			st.notes = append(st.notes[:i], st.notes[i+1:]...)
			return
		}
	}
}

func (st *store) addMedia(n *note, filename string, data []byte) *media {
	sum := md5.Sum(data) //nolint:gosec
	m := &media{
		ID:       st.id(),
		Revision: 1,
		Type:     "file",
		Filename: filename,
		Data:     data,
		MD5:      hex.EncodeToString(sum[:]),
		Created:  st.now().UTC(),
	}
	if strings.HasPrefix(http.DetectContentType(data), "image/") {
		m.Type = "image"
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			m.Width, m.Height = cfg.Width, cfg.Height
		}
	}
	n.Media = append(n.Media, m)
	st.touch(n)
	return m
}

func (st *store) findMedia(id string) (*note, *media) {
	for _, n := range st.notes {
		for _, m := range n.Media {
			if strconv.Itoa(m.ID) == id {
				return n, m
			}
		}
	}
	return nil, nil
}

func (st *store) touch(n *note) {
	n.Modified = st.now().UTC()
	n.Revision++
}

func (st *store) issueToken(u *user) string {
	if u.Token == "" {
		u.Token = uuid.NewString()
	}
	return u.Token
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(models.TimestampLayout)
}

func summarize(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	if r := []rune(line); len(r) > summaryLength {
		return string(r[:summaryLength])
	}
	return line
}

// hashtags returns the #words of text in order of appearance.
func hashtags(text string) []string {
	tags := []string{}
	seen := map[string]bool{}
	for _, w := range strings.Fields(text) {
		if len(w) < 2 || w[0] != '#' {
			continue
		}
		t := strings.TrimRight(w[1:], ".,;:!?")
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

func userJSON(u *user, withToken bool) map[string]any {
	v := map[string]any{
		"id":         u.ID,
		"user_name":  u.Name,
		"created_at": formatTime(u.Created),
		"email":      u.Email,
	}
	if withToken {
		v["access_token"] = u.Token
	}
	return v
}

func (s *Server) mediaJSON(m *media) map[string]any {
	return map[string]any{
		"id":          strconv.Itoa(m.ID),
		"type":        m.Type,
		"md5":         m.MD5,
		"revision_id": m.Revision,
		"width":       m.Width,
		"height":      m.Height,
		"src":         s.URL() + "/files/" + strconv.Itoa(m.ID),
		"created_at":  formatTime(m.Created),
	}
}

func (s *Server) noteJSON(n *note) map[string]any {
	media := make([]any, 0, len(n.Media))
	for _, m := range n.Media {
		media = append(media, s.mediaJSON(m))
	}
	return map[string]any{
		"id":                 n.ID,
		"created_at":         formatTime(n.Created),
		"modified_at":        formatTime(n.Modified),
		"reminder_at":        formatTime(n.Reminder),
		"server_modified_at": strconv.Itoa(n.Revision),
		"text":               n.Text,
		"summary":            summarize(n.Text),
		"source":             n.Source,
		"source_url":         "https://catch.com/",
		"mode":               "private",
		"user":               map[string]any{"id": n.Owner.ID, "user_name": n.Owner.Name},
		"children":           len(n.Comments),
		"media":              media,
		"tags":               hashtags(n.Text),
		"location":           map[string]any{},
	}
}

func commentJSON(c *comment) map[string]any {
	return map[string]any{
		"id":          strconv.Itoa(c.ID),
		"text":        c.Text,
		"created_at":  formatTime(c.Created),
		"modified_at": formatTime(c.Modified),
		"user":        map[string]any{"id": c.Author.ID, "user_name": c.Author.Name},
	}
}

// tagsJSON counts the hashtags of notes.
func tagsJSON(notes []*note) []any {
	counts := map[string]int{}
	modified := map[string]time.Time{}
	for _, n := range notes {
		for _, t := range hashtags(n.Text) {
			counts[t]++
			if n.Modified.After(modified[t]) {
				modified[t] = n.Modified
			}
		}
	}
	names := make([]string, 0, len(counts))
	for t := range counts {
		names = append(names, t)
	}
	sort.Strings(names)

	out := make([]any, 0, len(names))
	for _, t := range names {
		out = append(out, map[string]any{
			"name":     t,
			"count":    strconv.Itoa(counts[t]),
			"modified": formatTime(modified[t]),
		})
	}
	return out
}
