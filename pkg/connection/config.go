package connection

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/catchnotes/catchapi.go/internal/codec"
	"github.com/catchnotes/catchapi.go/pkg/constants"
	"github.com/catchnotes/catchapi.go/pkg/jsoncodec"
	"github.com/rs/zerolog"
)

// Config describes where and how a connection talks to the notes API.
type Config struct {
	URL url.URL

	Scheme string
	Host   string
	Port   int
	// BaseURL is scheme://host[:port] without a trailing slash. The port is
	// only present when the URL names one.
	BaseURL string

	Timeout   time.Duration
	UserAgent string

	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler
	Logger      zerolog.Logger

	// HTTPClient replaces the default client. Its Timeout is overwritten
	// by Timeout.
	HTTPClient *http.Client
	Metrics    *Metrics
}

// NewConfig creates a new Config for the notes API endpoint specified by the URL.
// The scheme must be http or https; the port defaults to the scheme's
// well-known port.
func NewConfig(u *url.URL) (*Config, error) {
	scheme := strings.ToLower(u.Scheme)
	if scheme != constants.HTTPScheme && scheme != constants.HTTPSecureScheme {
		return nil, fmt.Errorf("%w: %q", constants.ErrUnsupportedScheme, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: %q", constants.ErrNoHost, u.String())
	}

	port := constants.DefaultHTTPPort
	if scheme == constants.HTTPSecureScheme {
		port = constants.DefaultHTTPSPort
	}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("%w: invalid port %q", constants.ErrConfiguration, p)
		}
		port = n
	}

	c := jsoncodec.New()
	return &Config{
		URL:         *u,
		Scheme:      scheme,
		Host:        host,
		Port:        port,
		BaseURL:     scheme + "://" + u.Host,
		Timeout:     constants.DefaultTimeout,
		UserAgent:   constants.UserAgent,
		Marshaler:   c,
		Unmarshaler: c,
		Logger:      zerolog.Nop(),
	}, nil
}

// ParseConfig parses rawURL and calls NewConfig. A bare host such as
// "api.catch.com" is taken to mean https.
func ParseConfig(rawURL string) (*Config, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = constants.HTTPSecureScheme + "://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrConfiguration, err)
	}
	return NewConfig(u)
}

// Validate checks the fields a connection cannot work without.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base url not set", constants.ErrConfiguration)
	}
	if c.Marshaler == nil || c.Unmarshaler == nil {
		return constants.ErrNoCodec
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", constants.ErrConfiguration)
	}
	return nil
}
