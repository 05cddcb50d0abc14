package catchapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/catchnotes/catchapi.go/pkg/connection"
	"github.com/catchnotes/catchapi.go/pkg/constants"
	"github.com/catchnotes/catchapi.go/pkg/formdata"
	"github.com/catchnotes/catchapi.go/pkg/models"
)

// Operations of the v1 API. Servers that predate the v2 surface only answer
// these.

// CursorInfo describes a page of the v1 cursor protocol.
type CursorInfo struct {
	PreviousCursor int
	NextCursor     int
	Count          int
}

// Image is the raw bytes of a v1 image.
type Image struct {
	ID          string
	Data        []byte
	ContentType string
}

// JSONCursor returns the raw listing at cursor position pos. -1 is the 20
// most recent notes, 1, 2, ... are progressively older batches and 0 is every
// note of the account.
func (s *Session) JSONCursor(ctx context.Context, pos int) ([]byte, error) {
	return s.con.Do(ctx, &connection.Request{
		Path:   constants.V1NotesPath,
		Params: url.Values{constants.CursorParam: {strconv.Itoa(pos)}},
	})
}

// NotesFromCursor returns the notes at cursor position pos.
func (s *Session) NotesFromCursor(ctx context.Context, pos int) ([]*Note, error) {
	body, err := s.JSONCursor(ctx, pos)
	if err != nil {
		return nil, err
	}
	return s.decodeNotes(ctx, body)
}

// CursorInfo returns the neighbouring cursor positions and the note count at
// position pos.
func (s *Session) CursorInfo(ctx context.Context, pos int) (*CursorInfo, error) {
	body, err := s.JSONCursor(ctx, pos)
	if err != nil {
		return nil, err
	}

	var env models.NotesEnvelope
	if err := s.con.Decode(body, &env, "cursor"); err != nil {
		return nil, err
	}
	if env.PreviousCursor == nil || env.NextCursor == nil || env.Count == nil {
		return nil, &ParseError{
			What: "cursor",
			Err:  fmt.Errorf("response lacks previous_cursor, next_cursor or count"),
		}
	}
	return &CursorInfo{
		PreviousCursor: int(*env.PreviousCursor),
		NextCursor:     int(*env.NextCursor),
		Count:          int(*env.Count),
	}, nil
}

// Notes lists every note of the account through the v1 API.
func (s *Session) Notes(ctx context.Context) ([]*Note, error) {
	body, err := s.con.Do(ctx, &connection.Request{Path: constants.V1NotesPath})
	if err != nil {
		return nil, err
	}
	return s.decodeNotes(ctx, body)
}

func (s *Session) decodeNotes(ctx context.Context, body []byte) ([]*Note, error) {
	var env models.NotesEnvelope
	if err := s.con.Decode(body, &env, "notes"); err != nil {
		return nil, err
	}
	return s.parseNotes(ctx, env.Notes)
}

// PostNoteV1 creates a note with text through the v1 API.
func (s *Session) PostNoteV1(ctx context.Context, text string) (*Note, error) {
	body, err := s.con.Do(ctx, &connection.Request{
		Method: http.MethodPost,
		Path:   constants.V1NotesPath,
		Params: url.Values{"text": {text}},
	})
	if err != nil {
		return nil, err
	}

	m, err := decodeOne[models.Note](s, body, "notes", "note")
	if err != nil {
		return nil, err
	}
	if m.ID.IsZero() {
		return nil, missingID("note")
	}
	return s.newNote(ctx, m)
}

// EditNoteV1 sends the note's staged fields through the v1 API and returns
// the raw response.
func (s *Session) EditNoteV1(ctx context.Context, n *Note) ([]byte, error) {
	if err := n.checkLive(); err != nil {
		return nil, err
	}
	return s.con.Do(ctx, &connection.Request{
		Method: http.MethodPost,
		Path:   n.path(constants.V1NotePath),
		Params: n.Fields().values(),
	})
}

// DeleteNoteV1 deletes the note with id through the v1 API.
func (s *Session) DeleteNoteV1(ctx context.Context, id string) error {
	_, err := s.con.Do(ctx, &connection.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf(constants.V1NotePath, url.PathEscape(id)),
	})
	return err
}

// UploadImage attaches data as an image named filename to the note with id.
func (s *Session) UploadImage(ctx context.Context, noteID, filename string, data []byte) error {
	body, contentType := formdata.Encode(formdata.File("image", filename, data))
	_, err := s.con.Do(ctx, &connection.Request{
		Method:      http.MethodPost,
		Path:        fmt.Sprintf(constants.V1ImagePath, url.PathEscape(noteID)),
		Body:        body,
		ContentType: contentType,
	})
	return err
}

// LoadImage reads the file at path and attaches it to the note with id.
func (s *Session) LoadImage(ctx context.Context, path, noteID string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &LocalInputError{Path: path, Err: err}
	}
	return s.UploadImage(ctx, noteID, filepath.Base(path), data)
}

// ImageData downloads the image with id.
func (s *Session) ImageData(ctx context.Context, id string) (*Image, error) {
	data, err := s.con.Do(ctx, &connection.Request{
		Path:   constants.ViewImagePath,
		Params: url.Values{constants.ViewImageID: {id}},
	})
	if err != nil {
		return nil, err
	}
	return &Image{ID: id, Data: data, ContentType: http.DetectContentType(data)}, nil
}
