package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var nullJSON = []byte("null")

// ID identifies a user, note, media item or comment. Servers have sent ids
// both as JSON numbers and as strings; ID accepts either and always encodes
// as a string.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id ID) IsZero() bool {
	return id == ""
}

func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := flexString(data)
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	*id = ID(s)
	return nil
}

// Marker is the server-assigned revision stamp sent back on edits and deletes.
// It is opaque to the client and round-tripped verbatim.
type Marker string

func (m *Marker) UnmarshalJSON(data []byte) error {
	s, err := flexString(data)
	if err != nil {
		return fmt.Errorf("invalid revision marker: %w", err)
	}
	*m = Marker(s)
	return nil
}

// Int decodes a JSON number or a numeric string ("12"). Older servers
// quoted counters.
type Int int

func (i *Int) UnmarshalJSON(data []byte) error {
	s, err := flexString(data)
	if err != nil {
		return fmt.Errorf("invalid integer: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*i = 0
		return nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		*i = Int(n)
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.Trunc(f) != f {
		return fmt.Errorf("invalid integer %q", s)
	}
	*i = Int(f)

	return nil
}

// flexString returns the text of a JSON string or number literal.
// null yields "".
func flexString(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, nullJSON) {
		return "", nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
