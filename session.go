package catchapi

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/catchnotes/catchapi.go/internal/codec"
	"github.com/catchnotes/catchapi.go/pkg/connection"
	"github.com/catchnotes/catchapi.go/pkg/constants"
	"github.com/catchnotes/catchapi.go/pkg/logger"
	"github.com/catchnotes/catchapi.go/pkg/models"
)

// TokenPlacement says where an access token travels on each request.
type TokenPlacement = connection.TokenPlacement

const (
	TokenInQuery  = connection.TokenInQuery
	TokenInHeader = connection.TokenInHeader
	TokenInCookie = connection.TokenInCookie
)

// Fields are the form fields of an edit, upload or comment.
type Fields map[string]string

// Session is an authenticated connection to the notes API. Credentials must
// not be changed while requests are in flight.
type Session struct {
	con       *connection.HTTPConnection
	log       zerolog.Logger
	mediaData bool
	placement TokenPlacement
}

type settings struct {
	cfg       *connection.Config
	mediaData bool
	placement TokenPlacement
}

// Option configures a Session.
type Option func(*settings)

func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.cfg.Timeout = d
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) {
		s.cfg.Logger = l
	}
}

// WithHTTPClient sends requests through a copy of c.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		s.cfg.HTTPClient = c
	}
}

func WithCodec(c codec.Codec) Option {
	return func(s *settings) {
		s.cfg.Marshaler = c
		s.cfg.Unmarshaler = c
	}
}

// WithMetrics records every request in m.
func WithMetrics(m *connection.Metrics) Option {
	return func(s *settings) {
		s.cfg.Metrics = m
	}
}

func WithUserAgent(ua string) Option {
	return func(s *settings) {
		s.cfg.UserAgent = ua
	}
}

// WithMediaData downloads the bytes of every image attachment while notes
// are parsed.
func WithMediaData(enabled bool) Option {
	return func(s *settings) {
		s.mediaData = enabled
	}
}

// WithTokenPlacement sets where access tokens are sent. The default is the
// access_token query parameter.
func WithTokenPlacement(p TokenPlacement) Option {
	return func(s *settings) {
		s.placement = p
	}
}

// New creates a Session for the API at rawURL. A URL without a scheme is
// taken to be https. No request is made until credentials are used.
func New(rawURL string, opts ...Option) (*Session, error) {
	cfg, err := connection.ParseConfig(rawURL)
	if err != nil {
		return nil, err
	}

	st := settings{cfg: cfg}
	for _, opt := range opts {
		opt(&st)
	}

	con, err := connection.NewHTTPConnection(cfg)
	if err != nil {
		return nil, err
	}

	return &Session{
		con:       con,
		log:       cfg.Logger,
		mediaData: st.mediaData,
		placement: st.placement,
	}, nil
}

// BaseURL returns scheme://host[:port] of the API.
func (s *Session) BaseURL() string {
	return s.con.BaseURL()
}

func (s *Session) Timeout() time.Duration {
	return s.con.Config().Timeout
}

func (s *Session) SetTimeout(d time.Duration) {
	s.con.SetTimeout(d)
}

// AuthMode reports the credential mode currently in effect.
func (s *Session) AuthMode() connection.AuthMode {
	return s.con.Credentials().Mode()
}

// SetCredentials switches the session to HTTP Basic Authentication.
func (s *Session) SetCredentials(username, password string) error {
	c, err := connection.BasicAuth(username, password)
	if err != nil {
		return err
	}
	s.con.SetCredentials(c)
	return nil
}

// SetToken switches the session to an access token.
func (s *Session) SetToken(token string) error {
	c, err := connection.Token(token, s.placement)
	if err != nil {
		return err
	}
	s.con.SetCredentials(c)
	return nil
}

// SetTokenPlacement changes where access tokens are sent, including the
// token currently in use.
func (s *Session) SetTokenPlacement(p TokenPlacement) {
	s.placement = p
	s.con.SetCredentials(s.con.Credentials().WithPlacement(p))
}

// SetCookie switches the session to the cookie_epass session cookie.
func (s *Session) SetCookie(value string) error {
	c, err := connection.Cookie(value)
	if err != nil {
		return err
	}
	s.con.SetCredentials(c)
	return nil
}

// Login authenticates username and password and returns the account. When the
// server issues an access token the session continues with it, otherwise it
// keeps using Basic Authentication.
func (s *Session) Login(ctx context.Context, username, password string) (*User, error) {
	creds, err := connection.BasicAuth(username, password)
	if err != nil {
		return nil, err
	}

	var env models.UserEnvelope
	err = s.con.Send(ctx, &connection.Request{
		Method: http.MethodPost,
		Path:   constants.UserPath,
		Auth:   &creds,
	}, &env)
	if err != nil {
		return nil, err
	}

	u, err := s.parseUser(&env)
	if err != nil {
		return nil, err
	}

	if u.AccessToken != "" {
		tok, err := connection.Token(u.AccessToken, s.placement)
		if err != nil {
			return nil, err
		}
		s.con.SetCredentials(tok)
	} else {
		s.con.SetCredentials(creds)
	}

	s.log.Debug().Str(logger.FieldUser, u.UserName).Msg("logged in")
	return u, nil
}

// CurrentUser returns the account the session's credentials belong to.
func (s *Session) CurrentUser(ctx context.Context) (*User, error) {
	var env models.UserEnvelope
	err := s.con.Send(ctx, &connection.Request{
		Method: http.MethodPost,
		Path:   constants.UserPath,
	}, &env)
	if err != nil {
		return nil, err
	}
	return s.parseUser(&env)
}
