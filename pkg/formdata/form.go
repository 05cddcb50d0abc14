// Package formdata encodes request bodies for the notes API: URL-encoded
// forms for ordinary calls and multipart/form-data for uploads.
package formdata

import (
	"net/url"
	"strings"
)

// FromMap converts a single-valued field mapping into url.Values.
func FromMap(fields map[string]string) url.Values {
	values := make(url.Values, len(fields))
	for k, v := range fields {
		values.Set(k, v)
	}
	return values
}

// EncodeForm returns the application/x-www-form-urlencoded form of values,
// with keys in sorted order.
func EncodeForm(values url.Values) string {
	return values.Encode()
}

// AppendQuery appends values to path as a query string. The separator is
// "&" when path already carries a query and "?" otherwise. An empty values
// leaves path untouched.
func AppendQuery(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
		if strings.HasSuffix(path, "?") || strings.HasSuffix(path, "&") {
			sep = ""
		}
	}
	return path + sep + values.Encode()
}
