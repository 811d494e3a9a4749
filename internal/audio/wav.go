// Package audio slices utterances out of WAV recordings.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

var (
	ErrInvalidSegment = errors.New("invalid segment")
	ErrOutOfRange     = errors.New("segment outside recording")
)

type wavSlicer struct{}

func NewWavSlicer() *wavSlicer {
	return &wavSlicer{}
}

// Slice copies seg out of the WAV stream src into dst, keeping the source
// format. A segment running past the end of the recording is clipped.
func (w *wavSlicer) Slice(ctx context.Context, src io.ReadSeeker, seg Segment, dst io.WriteSeeker) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if seg.Start < 0 || seg.End <= seg.Start {
		return fmt.Errorf("%w: %s [%.3f, %.3f]", ErrInvalidSegment, seg.Name, seg.Start, seg.End)
	}

	streamer, format, err := wav.Decode(src)
	if err != nil {
		return fmt.Errorf("failed to decode wav: %w", err)
	}

	start := format.SampleRate.N(seconds(seg.Start))
	end := format.SampleRate.N(seconds(seg.End))
	if start >= streamer.Len() {
		return fmt.Errorf("%w: %s starts at sample %d of %d", ErrOutOfRange, seg.Name, start, streamer.Len())
	}
	end = min(end, streamer.Len())

	if err := streamer.Seek(start); err != nil {
		return fmt.Errorf("failed to seek to %.3fs: %w", seg.Start, err)
	}

	if err := wav.Encode(dst, beep.Take(end-start, streamer), format); err != nil {
		return fmt.Errorf("failed to encode segment %s: %w", seg.Name, err)
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
