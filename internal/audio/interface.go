package audio

import (
	"context"
	"io"
)

// Slicer cuts a time segment out of a recording.
type Slicer interface {
	Slice(ctx context.Context, src io.ReadSeeker, seg Segment, dst io.WriteSeeker) error
}

// Segment is a named span of a recording, in seconds.
type Segment struct {
	Name  string
	Start float64
	End   float64
}
