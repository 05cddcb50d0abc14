package models

// NotesEnvelope wraps note listings. Count is the total number of notes in
// the account; the cursor fields are only sent by the legacy API.
type NotesEnvelope struct {
	Notes          []Note `json:"notes"`
	Count          *Int   `json:"count,omitempty"`
	PreviousCursor *Int   `json:"previous_cursor,omitempty"`
	NextCursor     *Int   `json:"next_cursor,omitempty"`
}

type UserEnvelope struct {
	User *User `json:"user"`
}

type TagsEnvelope struct {
	Tags []Tag `json:"tags"`
}

// CommentsEnvelope accepts the legacy "notes" key as well.
type CommentsEnvelope struct {
	Comments []Comment `json:"comments"`
	Notes    []Comment `json:"notes,omitempty"`
}

// All returns the comments under whichever key the server used.
func (e *CommentsEnvelope) All() []Comment {
	if len(e.Comments) > 0 {
		return e.Comments
	}
	return e.Notes
}

type MediaEnvelope struct {
	Media []Media `json:"media"`
}

// StatusEnvelope is the body of media and comment deletes.
type StatusEnvelope struct {
	Status string `json:"status"`
}
