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
	"github.com/catchnotes/catchapi.go/pkg/logger"
	"github.com/catchnotes/catchapi.go/pkg/models"
)

// User is an account of the notes API.
type User struct {
	ID          string
	UserName    string
	CreatedAt   time.Time
	Email       string
	AccessToken string
	Extra       models.Extra

	session *Session
}

// Author identifies the user who wrote a note or comment.
type Author struct {
	ID       string
	UserName string
}

func (u *User) Session() *Session {
	return u.session
}

// PostNote creates a note with text. Additional fields are sent as given.
func (u *User) PostNote(ctx context.Context, text string, fields Fields) (*Note, error) {
	params := fields.values()
	params.Set("text", text)

	body, err := u.session.con.Do(ctx, &connection.Request{
		Method: http.MethodPost,
		Path:   constants.NotesPath,
		Params: params,
	})
	if err != nil {
		return nil, err
	}

	m, err := decodeOne[models.Note](u.session, body, "notes", "note")
	if err != nil {
		return nil, err
	}
	if m.ID.IsZero() {
		return nil, missingID("note")
	}

	n, err := u.session.newNote(ctx, m)
	if err != nil {
		return nil, err
	}
	u.session.log.Debug().Str(logger.FieldNoteID, n.ID).Msg("note posted")
	return n, nil
}

// GetNote fetches the note with the given id.
func (u *User) GetNote(ctx context.Context, id string) (*Note, error) {
	body, err := u.session.con.Do(ctx, &connection.Request{
		Path: fmt.Sprintf(constants.NotePath, url.PathEscape(id)),
	})
	if err != nil {
		return nil, err
	}

	m, err := decodeOne[models.Note](u.session, body, "notes", "note")
	if err != nil {
		return nil, err
	}
	if m.ID.IsZero() {
		return nil, missingID("note")
	}
	return u.session.newNote(ctx, m)
}

// GetNotes fetches one page of notes and the total number of notes in the
// account. A limit of zero or less selects the default page size.
func (u *User) GetNotes(ctx context.Context, offset, limit int) ([]*Note, int, error) {
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	p, err := u.fetchPage(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	count := len(p.notes)
	if p.count != nil {
		count = *p.count
	}
	return p.notes, count, nil
}

type page struct {
	notes []*Note
	// received counts the entries the server sent, including skipped ones.
	received int
	count    *int
}

func (u *User) fetchPage(ctx context.Context, offset, limit int) (*page, error) {
	var env models.NotesEnvelope
	err := u.session.con.Send(ctx, &connection.Request{
		Path: constants.NotesPath,
		Params: url.Values{
			"offset": {strconv.Itoa(offset)},
			"limit":  {strconv.Itoa(limit)},
			"full":   {"true"},
		},
	}, &env)
	if err != nil {
		return nil, err
	}

	notes, err := u.session.parseNotes(ctx, env.Notes)
	if err != nil {
		return nil, err
	}

	p := &page{notes: notes, received: len(env.Notes)}
	if env.Count != nil {
		c := int(*env.Count)
		p.count = &c
	}
	return p, nil
}

// Tags lists the tags of the account with their usage counts.
func (u *User) Tags(ctx context.Context) ([]Tag, error) {
	var env models.TagsEnvelope
	err := u.session.con.Send(ctx, &connection.Request{Path: constants.TagsPath}, &env)
	if err != nil {
		return nil, err
	}

	tags := make([]Tag, 0, len(env.Tags))
	for _, t := range env.Tags {
		tags = append(tags, newTag(t))
	}
	return tags, nil
}
