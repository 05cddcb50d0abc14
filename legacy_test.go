package catchapi

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catchnotes/catchapi.go/internal/fakeapi"
	"github.com/catchnotes/catchapi.go/pkg/constants"
)

func TestLegacy_cursor(t *testing.T) {
	server := newFakeServer(t)
	server.SeedNotes("alice", 45)
	s, _ := login(t, server)
	ctx := context.Background()

	raw, err := s.JSONCursor(ctx, -1)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"next_cursor":1`)
	last, _ := server.LastRequest()
	assert.Equal(t, constants.V1NotesPath, last.Path)
	assert.Contains(t, last.Query, "cursor=-1")

	recent, err := s.NotesFromCursor(ctx, -1)
	require.NoError(t, err)
	require.Len(t, recent, 20)
	assert.Equal(t, "note 45", recent[0].Text)

	older, err := s.NotesFromCursor(ctx, 2)
	require.NoError(t, err)
	require.Len(t, older, 5)
	assert.Equal(t, "note 5", older[0].Text)

	all, err := s.NotesFromCursor(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 45)

	info, err := s.CursorInfo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, CursorInfo{PreviousCursor: -1, NextCursor: 2, Count: 45}, *info)

	notes, err := s.Notes(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 45)
}

func TestLegacy_cursorInfoMissingKeys(t *testing.T) {
	t.Parallel()

	s := newStubSession(t, func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{"notes":[],"count":3}`)
	})

	_, err := s.CursorInfo(context.Background(), -1)
	require.ErrorIs(t, err, ErrParse)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "cursor", pe.What)
}

func TestLegacy_notes(t *testing.T) {
	server := newFakeServer(t)
	s, _ := login(t, server)
	ctx := context.Background()

	n, err := s.PostNoteV1(ctx, "Harry says catch is da bomb")
	require.NoError(t, err)
	assert.Equal(t, "Harry says catch is da bomb", n.Text)
	last, _ := server.LastRequest()
	assert.Equal(t, constants.V1NotesPath, last.Path)
	assert.Equal(t, "text=Harry+says+catch+is+da+bomb", string(last.Body))

	n.Text = "Harry says coolio"
	raw, err := s.EditNoteV1(ctx, n)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Harry says coolio")

	require.NoError(t, s.DeleteNoteV1(ctx, n.ID))
	assert.Equal(t, 0, server.NoteCount("alice"))

	err = s.DeleteNoteV1(ctx, n.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestLegacy_images(t *testing.T) {
	server := newFakeServer(t)
	s, u := login(t, server)
	ctx := context.Background()

	n, err := u.PostNote(ctx, "with image", nil)
	require.NoError(t, err)

	data := pngBytes(t, 3, 3)
	require.NoError(t, s.LoadImage(ctx, writeTempFile(t, "myimage.png", data), n.ID))

	last, _ := server.LastRequest()
	assert.Equal(t, "/v1/images/"+n.ID+".json", last.Path)
	assert.True(t, strings.HasPrefix(last.Header.Get("Content-Type"), "multipart/form-data; boundary="))
	assert.Contains(t, string(last.Body), `name="image"; filename="myimage.png"`)
	assert.Contains(t, string(last.Body), "Content-Type: image/png")

	img, err := s.ImageData(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, data, img.Data)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, n.ID, img.ID)

	err = s.LoadImage(ctx, "/nonexistent/myimage.png", n.ID)
	require.ErrorIs(t, err, ErrLocalInput)
}

func TestLegacy_uploadRejected(t *testing.T) {
	server := newFakeServer(t)
	s, _ := login(t, server)
	server.AddStubResponse(fakeapi.ErrorStubResponse(http.MethodPost, "/v1/images/1.json", http.StatusRequestEntityTooLarge, "too large"))

	err := s.UploadImage(context.Background(), "1", "big.jpg", []byte("x"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.StatusCode)
	assert.JSONEq(t, `{"error":"too large"}`, string(apiErr.Body))
}
