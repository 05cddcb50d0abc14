package catchapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/catchnotes/catchapi.go/pkg/connection"
	"github.com/catchnotes/catchapi.go/pkg/constants"
	"github.com/catchnotes/catchapi.go/pkg/formdata"
	"github.com/catchnotes/catchapi.go/pkg/logger"
	"github.com/catchnotes/catchapi.go/pkg/models"
)

// Note is a note of the account. Fields may be changed locally and sent with
// Save.
type Note struct {
	ID         string
	CreatedAt  time.Time
	ModifiedAt time.Time
	ReminderAt time.Time
	// ServerModifiedAt is the server's revision marker, sent back verbatim on
	// edits and deletes.
	ServerModifiedAt string
	Text             string
	Summary          string
	Source           string
	SourceURL        string
	Mode             string
	Author           Author
	Children         int
	Media            []*Media
	Tags             []string
	Location         *models.Location
	Extra            models.Extra
	Deleted          bool

	session        *Session
	comments       []*Comment
	commentsLoaded bool
}

func (n *Note) Session() *Session {
	return n.session
}

// HasMedia reports whether the note has image attachments.
func (n *Note) HasMedia() bool {
	return len(n.Media) > 0
}

// Fields returns the editable state of the note as sent by Save.
func (n *Note) Fields() Fields {
	f := Fields{"text": n.Text}
	if !n.ReminderAt.IsZero() {
		f["reminder_at"] = n.ReminderAt.UTC().Format(models.TimestampLayout)
	}
	return f
}

func (n *Note) checkLive() error {
	if n.Deleted {
		return fmt.Errorf("note %s: %w", n.ID, ErrDeleted)
	}
	return nil
}

func (n *Note) path(format string) string {
	return fmt.Sprintf(format, url.PathEscape(n.ID))
}

// Edit sends fields to the server and replaces the note with the server's
// version. The revision marker is added unless fields carries one.
func (n *Note) Edit(ctx context.Context, fields Fields) error {
	if err := n.checkLive(); err != nil {
		return err
	}

	params := fields.values()
	if n.ServerModifiedAt != "" && !params.Has(constants.ServerModifiedAtParam) {
		params.Set(constants.ServerModifiedAtParam, n.ServerModifiedAt)
	}

	body, err := n.session.con.Do(ctx, &connection.Request{
		Method: http.MethodPost,
		Path:   n.path(constants.NotePath),
		Params: params,
	})
	if err != nil {
		return err
	}

	m, err := decodeOne[models.Note](n.session, body, "notes", "note")
	if err != nil {
		return err
	}
	if m.ID.IsZero() {
		return missingID("note")
	}
	return n.apply(ctx, m)
}

// Save sends the locally staged text and reminder.
func (n *Note) Save(ctx context.Context) error {
	return n.Edit(ctx, n.Fields())
}

// Delete removes the note from the server and marks it deleted.
func (n *Note) Delete(ctx context.Context) error {
	if err := n.checkLive(); err != nil {
		return err
	}

	params := url.Values{}
	if n.ServerModifiedAt != "" {
		params.Set(constants.ServerModifiedAtParam, n.ServerModifiedAt)
	}
	_, err := n.session.con.Do(ctx, &connection.Request{
		Method: http.MethodDelete,
		Path:   n.path(constants.NotePath),
		Params: params,
	})
	if err != nil {
		return err
	}

	n.Deleted = true
	n.session.log.Debug().Str(logger.FieldNoteID, n.ID).Msg("note deleted")
	return nil
}

// AddMedia uploads the file at path as an attachment. The file is read
// before any request is made.
func (n *Note) AddMedia(ctx context.Context, path string, fields Fields) (*Media, error) {
	if err := n.checkLive(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LocalInputError{Path: path, Err: err}
	}
	return n.AddMediaData(ctx, filepath.Base(path), data, fields)
}

// AddMediaData uploads data as an attachment named filename. The returned
// Media is valid even when reloading the note's revision marker fails.
func (n *Note) AddMediaData(ctx context.Context, filename string, data []byte, fields Fields) (*Media, error) {
	if err := n.checkLive(); err != nil {
		return nil, err
	}

	parts := append([]formdata.Part{formdata.File("data", filename, data)}, fields.parts()...)
	body, contentType := formdata.Encode(parts...)

	resp, err := n.session.con.Do(ctx, &connection.Request{
		Method:      http.MethodPost,
		Path:        n.path(constants.MediaPath),
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	m, err := decodeOne[models.Media](n.session, resp, "media", "media")
	if err != nil {
		return nil, err
	}
	if m.ID.IsZero() {
		return nil, missingID("media")
	}

	md := n.newMedia(m)
	n.Media = append(n.Media, md)
	return md, n.syncMarker(ctx)
}

// FetchMedia reloads the note's image attachments from the server.
func (n *Note) FetchMedia(ctx context.Context) ([]*Media, error) {
	var env models.MediaEnvelope
	err := n.session.con.Send(ctx, &connection.Request{Path: n.path(constants.MediaPath)}, &env)
	if err != nil {
		return nil, err
	}
	n.Media = n.newImages(env.Media)
	return n.Media, nil
}

// AddComment posts a comment on the note.
func (n *Note) AddComment(ctx context.Context, fields Fields) (*Comment, error) {
	if err := n.checkLive(); err != nil {
		return nil, err
	}

	body, err := n.session.con.Do(ctx, &connection.Request{
		Method: http.MethodPost,
		Path:   n.path(constants.CommentsPath),
		Params: fields.values(),
	})
	if err != nil {
		return nil, err
	}

	m, err := decodeOne[models.Comment](n.session, body, "comments", "comment")
	if err != nil {
		return nil, err
	}
	if m.ID.IsZero() {
		return nil, missingID("comment")
	}

	c := n.newComment(m)
	if n.commentsLoaded {
		n.comments = append(n.comments, c)
	}
	return c, n.syncMarker(ctx)
}

// Comments returns the note's comments, fetching them on first use.
func (n *Note) Comments(ctx context.Context) ([]*Comment, error) {
	if n.commentsLoaded {
		return n.comments, nil
	}
	return n.RefreshComments(ctx)
}

// RefreshComments fetches the comments even when they are cached.
func (n *Note) RefreshComments(ctx context.Context) ([]*Comment, error) {
	var env models.CommentsEnvelope
	err := n.session.con.Send(ctx, &connection.Request{Path: n.path(constants.CommentsPath)}, &env)
	if err != nil {
		return nil, err
	}

	all := env.All()
	comments := make([]*Comment, 0, len(all))
	for _, m := range all {
		comments = append(comments, n.newComment(m))
	}
	n.comments = comments
	n.commentsLoaded = true
	return comments, nil
}

// InvalidateComments drops the cached comments.
func (n *Note) InvalidateComments() {
	n.comments = nil
	n.commentsLoaded = false
}

// syncMarker reloads the revision marker. The server counts changes to a
// note's attachments and comments as modifications of the note, so a later
// Edit or Delete would otherwise be rejected as stale.
func (n *Note) syncMarker(ctx context.Context) error {
	body, err := n.session.con.Do(ctx, &connection.Request{Path: n.path(constants.NotePath)})
	if err != nil {
		return err
	}
	m, err := decodeOne[models.Note](n.session, body, "notes", "note")
	if err != nil {
		return err
	}
	n.ServerModifiedAt = string(m.ServerModifiedAt)
	if !m.ModifiedAt.IsZero() {
		n.ModifiedAt = m.ModifiedAt.Time
	}
	return nil
}

func (n *Note) removeMedia(m *Media) {
	n.Media = without(n.Media, m)
}

func (n *Note) removeComment(c *Comment) {
	n.comments = without(n.comments, c)
}

// without returns a copy of xs lacking x. Slices handed out earlier keep
// their elements.
func without[T comparable](xs []T, x T) []T {
	out := make([]T, 0, len(xs))
	for _, v := range xs {
		if v != x {
			out = append(out, v)
		}
	}
	return out
}
