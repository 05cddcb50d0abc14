package catchapi

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/catchnotes/catchapi.go/pkg/constants"
	"github.com/catchnotes/catchapi.go/pkg/models"
)

// Comment is a comment on a note.
type Comment struct {
	ID               string
	Text             string
	CreatedAt        time.Time
	ModifiedAt       time.Time
	ServerModifiedAt string
	Author           Author
	Extra            models.Extra
	Deleted          bool

	note *Note
}

func (c *Comment) Note() *Note {
	return c.note
}

// Delete removes the comment and drops it from the note's cached comments.
func (c *Comment) Delete(ctx context.Context) error {
	if c.Deleted {
		return fmt.Errorf("comment %s: %w", c.ID, ErrDeleted)
	}

	path := fmt.Sprintf(constants.CommentPath, url.PathEscape(c.ID))
	if err := c.note.session.deleteWithStatus(ctx, path); err != nil {
		return err
	}

	c.Deleted = true
	c.note.removeComment(c)
	return c.note.syncMarker(ctx)
}
