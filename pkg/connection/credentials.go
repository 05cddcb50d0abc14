package connection

import (
	"encoding/base64"
	"net/http"

	"github.com/catchnotes/catchapi.go/pkg/constants"
)

// AuthMode is the credential mode in effect on a connection.
type AuthMode int

const (
	AuthNone AuthMode = iota
	AuthBasic
	AuthToken
)

func (m AuthMode) String() string {
	switch m {
	case AuthBasic:
		return "basic"
	case AuthToken:
		return "token"
	default:
		return "none"
	}
}

// TokenPlacement says where a token credential travels.
type TokenPlacement int

const (
	// TokenInQuery sends ?access_token=... on every request.
	TokenInQuery TokenPlacement = iota
	// TokenInHeader sends Authorization: Bearer ...
	TokenInHeader
	// TokenInCookie sends Cookie: cookie_epass=...
	TokenInCookie
)

// Credentials holds exactly one credential mode. The zero value has none.
type Credentials struct {
	mode      AuthMode
	username  string
	password  string
	token     string
	placement TokenPlacement
}

// BasicAuth returns username/password credentials.
func BasicAuth(username, password string) (Credentials, error) {
	if username == "" || password == "" {
		return Credentials{}, constants.ErrEmptyCredential
	}
	return Credentials{mode: AuthBasic, username: username, password: password}, nil
}

// Token returns opaque token credentials sent according to placement.
func Token(token string, placement TokenPlacement) (Credentials, error) {
	if token == "" {
		return Credentials{}, constants.ErrEmptyCredential
	}
	return Credentials{mode: AuthToken, token: token, placement: placement}, nil
}

// Cookie returns credentials carried in the cookie_epass cookie.
func Cookie(value string) (Credentials, error) {
	return Token(value, TokenInCookie)
}

func (c Credentials) Mode() AuthMode {
	return c.mode
}

func (c Credentials) Username() string {
	return c.username
}

func (c Credentials) Placement() TokenPlacement {
	return c.placement
}

// WithPlacement returns c sending its token according to p. Other modes are
// returned unchanged.
func (c Credentials) WithPlacement(p TokenPlacement) Credentials {
	if c.mode == AuthToken {
		c.placement = p
	}
	return c
}

// Apply attaches the credentials to req.
func (c Credentials) Apply(req *http.Request) error {
	switch c.mode {
	case AuthBasic:
		req.Header.Set("Authorization", BasicAuthHeader(c.username, c.password))
	case AuthToken:
		switch c.placement {
		case TokenInHeader:
			req.Header.Set("Authorization", "Bearer "+c.token)
		case TokenInCookie:
			req.Header.Set("Cookie", constants.CookieName+"="+c.token)
		default:
			q := req.URL.Query()
			q.Set(constants.AccessTokenParam, c.token)
			req.URL.RawQuery = q.Encode()
		}
	default:
		return constants.ErrNoCredentials
	}
	return nil
}

// BasicAuthHeader returns the Authorization header value for HTTP Basic
// Authentication.
func BasicAuthHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
