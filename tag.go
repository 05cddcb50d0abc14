package catchapi

import "time"

// Tag is a tag of the account. Tags are read-only.
type Tag struct {
	Name     string
	Count    int
	Modified time.Time
}
