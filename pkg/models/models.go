package models

import (
	"encoding/json"
	"reflect"
)

// UserRef is the abbreviated author object embedded in notes and comments.
type UserRef struct {
	ID       ID     `json:"id"`
	UserName string `json:"user_name"`
}

// User is the account object returned under the "user" key.
type User struct {
	ID          ID        `json:"id"`
	UserName    string    `json:"user_name"`
	CreatedAt   Timestamp `json:"created_at"`
	Email       string    `json:"email,omitempty"`
	AccessToken string    `json:"access_token,omitempty"`
	Extra       Extra     `json:"-"`
}

// Location is the optional position a note was taken at.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude,omitempty"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// IsZero reports whether the server sent an empty location object.
func (l *Location) IsZero() bool {
	return l == nil || *l == Location{}
}

// Media is one attachment of a note.
type Media struct {
	ID         ID        `json:"id"`
	Type       string    `json:"type"`
	MD5        string    `json:"md5,omitempty"`
	RevisionID ID        `json:"revision_id,omitempty"`
	Width      Int       `json:"width"`
	Height     Int       `json:"height"`
	Src        string    `json:"src"`
	CreatedAt  Timestamp `json:"created_at"`
	Extra      Extra     `json:"-"`
}

// Note is a note as the server sends it. Tags arrive as "tags" on current
// servers and as "labels" on the oldest ones.
type Note struct {
	ID               ID        `json:"id"`
	CreatedAt        Timestamp `json:"created_at"`
	ModifiedAt       Timestamp `json:"modified_at"`
	ReminderAt       Timestamp `json:"reminder_at"`
	ServerModifiedAt Marker    `json:"server_modified_at,omitempty"`
	Text             string    `json:"text"`
	Summary          string    `json:"summary"`
	Source           string    `json:"source"`
	SourceURL        string    `json:"source_url"`
	Mode             string    `json:"mode,omitempty"`
	User             *UserRef  `json:"user,omitempty"`
	Children         Int       `json:"children"`
	Media            []Media   `json:"media,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	Labels           []string  `json:"labels,omitempty"`
	Location         *Location `json:"location,omitempty"`
	Extra            Extra     `json:"-"`
}

// Comment is a comment attached to a note.
type Comment struct {
	ID               ID        `json:"id"`
	Text             string    `json:"text"`
	CreatedAt        Timestamp `json:"created_at"`
	ModifiedAt       Timestamp `json:"modified_at"`
	ServerModifiedAt Marker    `json:"server_modified_at,omitempty"`
	User             *UserRef  `json:"user,omitempty"`
	Extra            Extra     `json:"-"`
}

// Tag is a tag with its usage count.
type Tag struct {
	Name     string    `json:"name"`
	Count    Int       `json:"count"`
	Modified Timestamp `json:"modified"`
}

var (
	userKeys    = jsonKeys(reflect.TypeOf(User{}))
	mediaKeys   = jsonKeys(reflect.TypeOf(Media{}))
	noteKeys    = jsonKeys(reflect.TypeOf(Note{}))
	commentKeys = jsonKeys(reflect.TypeOf(Comment{}))
)

func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, userKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*u = User(p)
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	data, err := json.Marshal(plain(u))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, u.Extra)
}

func (m *Media) UnmarshalJSON(data []byte) error {
	type plain Media
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, mediaKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*m = Media(p)
	return nil
}

func (m Media) MarshalJSON() ([]byte, error) {
	type plain Media
	data, err := json.Marshal(plain(m))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, m.Extra)
}

func (n *Note) UnmarshalJSON(data []byte) error {
	type plain Note
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, noteKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*n = Note(p)
	return nil
}

func (n Note) MarshalJSON() ([]byte, error) {
	type plain Note
	data, err := json.Marshal(plain(n))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, n.Extra)
}

func (c *Comment) UnmarshalJSON(data []byte) error {
	type plain Comment
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, commentKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*c = Comment(p)
	return nil
}

func (c Comment) MarshalJSON() ([]byte, error) {
	type plain Comment
	data, err := json.Marshal(plain(c))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, c.Extra)
}
