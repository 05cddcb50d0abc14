package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the layout the notes API writes timestamps in.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp embeds time.Time and decodes the API's ISO-8601 strings,
// which carry fractional seconds. JSON null and "" decode to the zero value.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses an ISO-8601 timestamp with optional fractional seconds.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return Timestamp{t}, nil
}

func (d *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, nullJSON) {
		*d = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		*d = Timestamp{}
		return nil
	}

	t, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*d = t

	return nil
}

func (d Timestamp) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return nullJSON, nil
	}
	return json.Marshal(d.String())
}

func (d Timestamp) IsZero() bool {
	return d.Time.IsZero()
}

func (d Timestamp) String() string {
	return d.UTC().Format(TimestampLayout)
}
