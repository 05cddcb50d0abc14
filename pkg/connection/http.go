package connection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/catchnotes/catchapi.go/pkg/constants"
	"github.com/catchnotes/catchapi.go/pkg/formdata"
	"github.com/catchnotes/catchapi.go/pkg/logger"
)

const formContentType = "application/x-www-form-urlencoded"

// HTTPConnection issues authenticated requests against the notes API.
// Credentials may be replaced between calls but not concurrently with them.
type HTTPConnection struct {
	cfg        *Config
	httpClient *http.Client
	creds      Credentials
}

func NewHTTPConnection(cfg *Config) (*HTTPConnection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	con := HTTPConnection{cfg: cfg}
	if cfg.HTTPClient != nil {
		con.SetHTTPClient(cfg.HTTPClient)
	} else {
		con.SetHTTPClient(&http.Client{})
	}
	con.SetTimeout(cfg.Timeout)

	return &con, nil
}

func (h *HTTPConnection) SetTimeout(timeout time.Duration) *HTTPConnection {
	h.cfg.Timeout = timeout
	h.httpClient.Timeout = timeout
	return h
}

// SetHTTPClient uses a copy of client, with its transport instrumented when
// metrics are configured.
func (h *HTTPConnection) SetHTTPClient(client *http.Client) *HTTPConnection {
	c := *client
	if h.cfg.Metrics != nil {
		c.Transport = h.cfg.Metrics.InstrumentRoundTripper(c.Transport)
	}
	if h.httpClient != nil {
		c.Timeout = h.cfg.Timeout
	}
	h.httpClient = &c
	return h
}

func (h *HTTPConnection) SetCredentials(c Credentials) *HTTPConnection {
	h.creds = c
	return h
}

func (h *HTTPConnection) Credentials() Credentials {
	return h.creds
}

func (h *HTTPConnection) Config() *Config {
	return h.cfg
}

func (h *HTTPConnection) BaseURL() string {
	return h.cfg.BaseURL
}

// Send performs r and decodes the response body into res.
func (h *HTTPConnection) Send(ctx context.Context, r *Request, res any) error {
	body, err := h.Do(ctx, r)
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}
	return h.Decode(body, res, r.Path)
}

// Decode unmarshals body into res, reporting failures as *ParseError.
func (h *HTTPConnection) Decode(body []byte, res any, what string) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return &ParseError{What: what, Err: errors.New("empty response body")}
	}
	if err := h.cfg.Unmarshaler.Unmarshal(body, res); err != nil {
		return &ParseError{What: what, Err: err}
	}
	return nil
}

// Do performs r and returns the raw body of a 2xx response.
func (h *HTTPConnection) Do(ctx context.Context, r *Request) ([]byte, error) {
	req, err := h.newRequest(ctx, r)
	if err != nil {
		return nil, err
	}
	return h.MakeRequest(req)
}

func (h *HTTPConnection) newRequest(ctx context.Context, r *Request) (*http.Request, error) {
	method := r.method()
	target, absolute := h.resolve(r.Path)

	var body []byte
	contentType := r.ContentType
	switch {
	case r.paramsInQuery():
		target = formdata.AppendQuery(target, r.Params)
	case r.Body != nil && r.ContentType != "":
		body = r.Body
	default:
		body = []byte(formdata.EncodeForm(r.Params))
		contentType = formContentType
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrConfiguration, err)
	}
	if body != nil {
		req.ContentLength = int64(len(body))
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", h.cfg.UserAgent)
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if r.NoAuth {
		return req, nil
	}
	if absolute && !h.sameHost(req.URL) {
		return req, nil
	}
	creds := h.creds
	if r.Auth != nil {
		creds = *r.Auth
	}
	if err := creds.Apply(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *HTTPConnection) resolve(path string) (target string, absolute bool) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, true
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return h.cfg.BaseURL + path, false
}

// sameHost reports whether u names the configured origin: scheme, host and
// port all match, with the scheme's default port filled in.
func (h *HTTPConnection) sameHost(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	if scheme != h.cfg.Scheme || !strings.EqualFold(u.Hostname(), h.cfg.Host) {
		return false
	}
	port := constants.DefaultHTTPPort
	if scheme == constants.HTTPSecureScheme {
		port = constants.DefaultHTTPSPort
	}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return false
		}
		port = n
	}
	return port == h.cfg.Port
}

// MakeRequest sends req and returns the body of a 2xx response.
func (h *HTTPConnection) MakeRequest(req *http.Request) ([]byte, error) {
	start := time.Now()
	path := req.URL.Path

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.cfg.Logger.Debug().
			Str(logger.FieldMethod, req.Method).
			Str(logger.FieldPath, path).
			Dur(logger.FieldElapsed, time.Since(start)).
			Err(err).
			Msg("request failed")
		return nil, &TransportError{Method: req.Method, Path: path, Err: err}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, Path: path, Err: err}
	}

	h.cfg.Logger.Debug().
		Str(logger.FieldMethod, req.Method).
		Str(logger.FieldPath, path).
		Int(logger.FieldStatus, resp.StatusCode).
		Dur(logger.FieldElapsed, time.Since(start)).
		Msg("request")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBytes, nil
	}

	return nil, &APIError{
		Method:     req.Method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       respBytes,
	}
}
