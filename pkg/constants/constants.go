package constants

import "time"

// Version is reported in the default User-Agent.
const Version = "1.0.0"

const UserAgent = "go catchapi.go/" + Version

var (
	HTTPScheme       = "http"
	HTTPSecureScheme = "https"
)

const (
	DefaultHTTPPort  = 80
	DefaultHTTPSPort = 443
	DefaultTimeout   = 10 * time.Second
)

// Page sizes used by the two pagination entry points.
const (
	IteratorPageSize = 100
	DefaultPageSize  = 20
)

// MultipartBoundary is the boundary token the notes API expects on uploads.
const MultipartBoundary = "----------ThIs_Is_tHe_bouNdaRY_$"

const (
	StatusOK = "ok"

	AccessTokenParam      = "access_token"
	CookieName            = "cookie_epass"
	ServerModifiedAtParam = "server_modified_at"
)

// REST surface of the current (v2) API.
const (
	UserPath     = "/v2/user.json"
	NotesPath    = "/v2/notes.json"
	NotePath     = "/v2/notes/%s.json"
	MediaPath    = "/v2/media/%s.json"
	MediaItem    = "/v2/media/%s/%s.json"
	CommentsPath = "/v2/comments/%s.json"
	CommentPath  = "/v2/comment/%s.json"
	TagsPath     = "/v2/tags.json"
)

// REST surface of the legacy (v1) API.
const (
	V1NotesPath   = "/v1/notes.json"
	V1NotePath    = "/v1/notes/%s.json"
	V1ImagePath   = "/v1/images/%s.json"
	ViewImagePath = "/viewImage.action"
	ViewImageID   = "viewNodeId"
	CursorParam   = "cursor"
)
