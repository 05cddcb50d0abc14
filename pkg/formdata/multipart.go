package formdata

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"

	"github.com/catchnotes/catchapi.go/pkg/constants"
)

const (
	crlf               = "\r\n"
	defaultContentType = "application/octet-stream"
)

// Part is one section of a multipart body. A Part with an empty Filename is
// encoded as a plain form field.
type Part struct {
	Name     string
	Filename string
	Value    []byte
}

// Field returns a plain form field part.
func Field(name, value string) Part {
	return Part{Name: name, Value: []byte(value)}
}

// File returns a file part.
func File(name, filename string, data []byte) Part {
	return Part{Name: name, Filename: filename, Value: data}
}

// Encoder writes multipart/form-data bodies delimited by a fixed boundary.
// The notes API parses uploads strictly, so the layout is byte-exact:
//
//	--BOUNDARY
//	Content-Disposition: form-data; name="NAME"; filename="FILE"
//	Content-Type: TYPE
//
//	VALUE
//	--BOUNDARY--
//
// with CRLF line endings throughout.
type Encoder struct {
	boundary string
}

// NewEncoder returns an Encoder using [constants.MultipartBoundary].
func NewEncoder() *Encoder {
	return &Encoder{boundary: constants.MultipartBoundary}
}

// WithBoundary replaces the boundary token.
func (e *Encoder) WithBoundary(boundary string) *Encoder {
	e.boundary = boundary
	return e
}

func (e *Encoder) Boundary() string {
	return e.boundary
}

// ContentType is the header value matching the bodies this Encoder writes.
func (e *Encoder) ContentType() string {
	return "multipart/form-data; boundary=" + e.boundary
}

// Encode returns the body for parts, in order, and its Content-Type.
func (e *Encoder) Encode(parts []Part) (body []byte, contentType string) {
	var buf bytes.Buffer

	for _, p := range parts {
		buf.WriteString("--" + e.boundary + crlf)
		buf.WriteString(`Content-Disposition: form-data; name="` + escapeQuotes(p.Name) + `"`)
		if p.Filename != "" {
			buf.WriteString(`; filename="` + escapeQuotes(p.Filename) + `"`)
		}
		buf.WriteString(crlf)
		buf.WriteString("Content-Type: " + ContentTypeFor(p.Filename) + crlf)
		buf.WriteString(crlf)
		buf.Write(p.Value)
		buf.WriteString(crlf)
	}
	buf.WriteString("--" + e.boundary + "--" + crlf)

	return buf.Bytes(), e.ContentType()
}

// Encode encodes parts with the default boundary.
func Encode(parts ...Part) (body []byte, contentType string) {
	return NewEncoder().Encode(parts)
}

// ContentTypeFor guesses a media type from the extension of filename,
// falling back to application/octet-stream.
func ContentTypeFor(filename string) string {
	if filename == "" {
		return defaultContentType
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); t != "" {
		return t
	}
	return defaultContentType
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
