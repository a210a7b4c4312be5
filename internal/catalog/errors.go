package catalog

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord marks an upstream record that cannot be turned into an episode.
var ErrMalformedRecord = errors.New("malformed episode record")

// RecordError reports which record and field failed to transform.
type RecordError struct {
	Index int
	ID    string
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("episode %d (%s): field %s: %v", e.Index, e.ID, e.Field, e.Err)
	}
	return fmt.Sprintf("episode %d: field %s: %v", e.Index, e.Field, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func (e *RecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
