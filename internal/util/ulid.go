package util

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// NewRunID returns a lexically sortable run identifier.
// ulid.Make is monotonic within a millisecond and safe for concurrent use.
func NewRunID() string {
	return ulid.Make().String()
}

// RunStartedAt recovers the creation time encoded in a run ID.
func RunStartedAt(runID string) (time.Time, error) {
	id, err := ulid.ParseStrict(runID)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()), nil
}
