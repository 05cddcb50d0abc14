// Package catchapi is a client for the Catch notes REST API.
//
// # Sessions
//
// A [Session] holds the endpoint, timeout and exactly one credential mode:
// HTTP Basic Authentication, an access token or the cookie_epass session
// cookie. [Session.Login] authenticates with a username and password and
// switches the session to the access token the server issues.
//
//	s, err := catchapi.New("https://api.catch.com")
//	if err != nil {
//		return err
//	}
//	user, err := s.Login(ctx, "alice", "s3cret")
//
// # Entities
//
// [User], [Note], [Media] and [Comment] are plain structs that keep a
// reference to the session that produced them, so they can be edited and
// deleted in place. A deleted entity rejects further mutation with
// [ErrDeleted].
//
// # Pagination
//
// [User.Notes] returns a [NoteIterator] that walks the whole account in pages
// of 100 using the offset/limit protocol. [User.GetNotes] fetches a single
// page. The cursor protocol of the v1 API is available through
// [Session.JSONCursor], [Session.NotesFromCursor] and [Session.CursorInfo].
//
// # Errors
//
// Every error matches exactly one of [ErrConfiguration], [ErrTransport],
// [ErrAPI], [ErrParse], [ErrLocalInput] or [ErrDeleted] with errors.Is.
// Non-2xx responses are reported as [*APIError] carrying the raw body.
package catchapi
