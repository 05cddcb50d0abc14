package catchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/catchnotes/catchapi.go/pkg/formdata"
	"github.com/catchnotes/catchapi.go/pkg/logger"
	"github.com/catchnotes/catchapi.go/pkg/models"
)

const mediaTypeImage = "image"

func (f Fields) values() url.Values {
	return formdata.FromMap(f)
}

// parts returns the fields as multipart parts in key order.
func (f Fields) parts() []formdata.Part {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]formdata.Part, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, formdata.Field(k, f[k]))
	}
	return parts
}

func (s *Session) parseUser(env *models.UserEnvelope) (*User, error) {
	if env.User == nil {
		return nil, &ParseError{What: "user", Err: fmt.Errorf("no %q key in response", "user")}
	}
	m := env.User
	return &User{
		ID:          m.ID.String(),
		UserName:    m.UserName,
		CreatedAt:   m.CreatedAt.Time,
		Email:       m.Email,
		AccessToken: m.AccessToken,
		Extra:       m.Extra,
		session:     s,
	}, nil
}

// parseNotes builds notes from a listing. Entries without an id are skipped.
func (s *Session) parseNotes(ctx context.Context, ms []models.Note) ([]*Note, error) {
	notes := make([]*Note, 0, len(ms))
	for _, m := range ms {
		if m.ID.IsZero() {
			continue
		}
		n, err := s.newNote(ctx, m)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func (s *Session) newNote(ctx context.Context, m models.Note) (*Note, error) {
	n := &Note{session: s}
	if err := n.apply(ctx, m); err != nil {
		return nil, err
	}
	return n, nil
}

// apply replaces the note's server state with m.
func (n *Note) apply(ctx context.Context, m models.Note) error {
	n.ID = m.ID.String()
	n.CreatedAt = m.CreatedAt.Time
	n.ModifiedAt = m.ModifiedAt.Time
	n.ReminderAt = m.ReminderAt.Time
	n.ServerModifiedAt = string(m.ServerModifiedAt)
	n.Text = m.Text
	n.Summary = m.Summary
	n.Source = m.Source
	n.SourceURL = m.SourceURL
	n.Mode = m.Mode
	n.Children = int(m.Children)
	n.Extra = m.Extra

	n.Author = Author{}
	if m.User != nil {
		n.Author = Author{ID: m.User.ID.String(), UserName: m.User.UserName}
	}

	n.Tags = m.Tags
	if len(n.Tags) == 0 && len(m.Labels) > 0 {
		n.Tags = m.Labels
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}

	n.Location = nil
	if !m.Location.IsZero() {
		loc := *m.Location
		n.Location = &loc
	}

	n.Media = n.newImages(m.Media)
	if n.session.mediaData {
		n.fetchMediaData(ctx)
	}
	return nil
}

// fetchMediaData downloads every image that has a src. A failed download
// leaves that image's Data nil and is logged; the note is still returned.
func (n *Note) fetchMediaData(ctx context.Context) {
	for _, md := range n.Media {
		if md.Src == "" {
			continue
		}
		if _, err := md.FetchData(ctx); err != nil {
			n.session.log.Warn().
				Err(err).
				Str(logger.FieldNoteID, n.ID).
				Str("media_id", md.ID).
				Msg("media download failed")
		}
	}
}

// newImages keeps the image attachments of ms.
func (n *Note) newImages(ms []models.Media) []*Media {
	media := make([]*Media, 0, len(ms))
	for _, m := range ms {
		if m.Type != mediaTypeImage {
			continue
		}
		media = append(media, n.newMedia(m))
	}
	return media
}

func (n *Note) newMedia(m models.Media) *Media {
	return &Media{
		ID:         m.ID.String(),
		Type:       m.Type,
		MD5:        m.MD5,
		RevisionID: m.RevisionID.String(),
		Width:      int(m.Width),
		Height:     int(m.Height),
		Src:        m.Src,
		CreatedAt:  m.CreatedAt.Time,
		Extra:      m.Extra,
		note:       n,
	}
}

func (n *Note) newComment(m models.Comment) *Comment {
	c := &Comment{
		ID:               m.ID.String(),
		Text:             m.Text,
		CreatedAt:        m.CreatedAt.Time,
		ModifiedAt:       m.ModifiedAt.Time,
		ServerModifiedAt: string(m.ServerModifiedAt),
		Extra:            m.Extra,
		note:             n,
	}
	if m.User != nil {
		c.Author = Author{ID: m.User.ID.String(), UserName: m.User.UserName}
	}
	return c
}

func newTag(m models.Tag) Tag {
	return Tag{Name: m.Name, Count: int(m.Count), Modified: m.Modified.Time}
}

// decodeOne decodes a response that is either a bare object or an envelope
// holding a list of them under key, returning the first element.
func decodeOne[T any](s *Session, body []byte, key, what string) (T, error) {
	var zero T

	var members map[string]json.RawMessage
	if err := s.con.Decode(body, &members, what); err != nil {
		return zero, err
	}

	raw, ok := members[key]
	if !ok {
		var v T
		if err := s.con.Decode(body, &v, what); err != nil {
			return zero, err
		}
		return v, nil
	}

	var list []T
	if err := s.con.Decode(raw, &list, what); err != nil {
		return zero, err
	}
	if len(list) == 0 {
		return zero, &ParseError{What: what, Err: fmt.Errorf("empty %q list", key)}
	}
	return list[0], nil
}

func missingID(what string) error {
	return &ParseError{What: what, Err: fmt.Errorf("missing id")}
}
