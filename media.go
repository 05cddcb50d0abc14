package catchapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/catchnotes/catchapi.go/pkg/connection"
	"github.com/catchnotes/catchapi.go/pkg/constants"
	"github.com/catchnotes/catchapi.go/pkg/models"
)

// Media is an image attached to a note.
type Media struct {
	ID         string
	Type       string
	MD5        string
	RevisionID string
	Width      int
	Height     int
	Src        string
	CreatedAt  time.Time
	// Data holds the downloaded bytes, see FetchData.
	Data    []byte
	Extra   models.Extra
	Deleted bool

	note *Note
}

func (m *Media) Note() *Note {
	return m.note
}

// Delete removes the attachment from its note.
func (m *Media) Delete(ctx context.Context) error {
	if m.Deleted {
		return fmt.Errorf("media %s: %w", m.ID, ErrDeleted)
	}

	path := fmt.Sprintf(constants.MediaItem, url.PathEscape(m.note.ID), url.PathEscape(m.ID))
	if err := m.note.session.deleteWithStatus(ctx, path); err != nil {
		return err
	}

	m.Deleted = true
	m.note.removeMedia(m)
	return m.note.syncMarker(ctx)
}

// FetchData downloads the bytes at Src and stores them in Data.
func (m *Media) FetchData(ctx context.Context) ([]byte, error) {
	if m.Src == "" {
		return nil, &ParseError{What: "media", Err: fmt.Errorf("media %s has no src", m.ID)}
	}
	data, err := m.note.session.con.Do(ctx, &connection.Request{Path: m.Src})
	if err != nil {
		return nil, err
	}
	m.Data = data
	return data, nil
}

// deleteWithStatus issues a DELETE whose body reports {"status":"ok"}.
// Any other status is returned as an *APIError carrying the body.
func (s *Session) deleteWithStatus(ctx context.Context, path string) error {
	body, err := s.con.Do(ctx, &connection.Request{
		Method: http.MethodDelete,
		Path:   path,
	})
	if err != nil {
		return err
	}

	var st models.StatusEnvelope
	if err := s.con.Decode(body, &st, "status"); err != nil {
		return err
	}
	if st.Status != constants.StatusOK {
		return &APIError{
			Method:     http.MethodDelete,
			Path:       path,
			StatusCode: http.StatusOK,
			Status:     "unexpected status " + strconv.Quote(st.Status),
			Body:       body,
		}
	}
	return nil
}
