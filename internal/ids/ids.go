package ids

import "github.com/segmentio/ksuid"

// New returns a time-sortable identifier for sessions and stored objects.
func New() string {
	return ksuid.New().String()
}
