package ids

import "github.com/segmentio/ksuid"

// New returns a time-ordered, URL-safe identifier used for object keys and
// stream dedupe keys.
func New() string {
	return ksuid.New().String()
}
