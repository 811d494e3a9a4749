package batch

import (
	"errors"
	"fmt"
)

var ErrEmptyBatch = errors.New("empty batch")

// EmptyBatchError is returned when a batch holds no usable sequence: either
// no sequences at all, or only empty songs.
type EmptyBatchError struct {
	Size int
}

func (e *EmptyBatchError) Error() string {
	if e.Size == 0 {
		return "empty batch: no sequences"
	}
	return fmt.Sprintf("empty batch: all %d sequences are empty songs", e.Size)
}

func (e *EmptyBatchError) Unwrap() error {
	return ErrEmptyBatch
}
