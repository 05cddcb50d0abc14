package connection

import (
	"net/http"
	"net/url"
)

// Request describes one call against the notes API.
type Request struct {
	Method string
	// Path is relative to the base URL, or an absolute URL (media downloads).
	Path   string
	Params url.Values

	// Body and ContentType, when both set, are sent verbatim instead of the
	// form-encoded Params.
	Body        []byte
	ContentType string

	Header http.Header

	// Auth overrides the connection credentials for this request only.
	Auth *Credentials
	// NoAuth sends the request without any credentials.
	NoAuth bool
}

func (r *Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// paramsInQuery reports whether Params travel in the query string.
func (r *Request) paramsInQuery() bool {
	switch r.method() {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		return true
	default:
		return false
	}
}
