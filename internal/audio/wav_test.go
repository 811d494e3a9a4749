package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceStreamer streams a fixed buffer of stereo samples.
type sliceStreamer struct {
	buf [][2]float64
	pos int
}

func (s *sliceStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	n = copy(samples, s.buf[s.pos:])
	s.pos += n
	return n, true
}

func (s *sliceStreamer) Err() error {
	return nil
}

const testRate = 8000

// writeTone writes one second of audio and returns its path.
func writeTone(t *testing.T) string {
	t.Helper()
	buf := make([][2]float64, testRate)
	for i := range buf {
		v := float64(i%100) / 100
		buf[i] = [2]float64{v, -v}
	}

	path := filepath.Join(t.TempDir(), "meeting.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, &sliceStreamer{buf: buf}, format))
	return path
}

func sliceTo(t *testing.T, src string, seg Segment) (string, error) {
	t.Helper()
	in, err := os.Open(src)
	require.NoError(t, err)
	defer in.Close()

	dst := filepath.Join(t.TempDir(), seg.Name+".wav")
	out, err := os.Create(dst)
	require.NoError(t, err)
	defer out.Close()

	return dst, NewWavSlicer().Slice(context.Background(), in, seg, out)
}

func decodedLen(t *testing.T, path string) (int, beep.Format) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	s, format, err := wav.Decode(f)
	require.NoError(t, err)
	defer s.Close()
	return s.Len(), format
}

func TestWavSlicer(t *testing.T) {
	src := writeTone(t)

	dst, err := sliceTo(t, src, Segment{Name: "utt1", Start: 0.25, End: 0.5})
	require.NoError(t, err)

	n, format := decodedLen(t, dst)
	assert.Equal(t, testRate/4, n)
	assert.Equal(t, beep.SampleRate(testRate), format.SampleRate)
	assert.Equal(t, 2, format.NumChannels)
}

func TestWavSlicerClipsAtEnd(t *testing.T) {
	src := writeTone(t)

	dst, err := sliceTo(t, src, Segment{Name: "tail", Start: 0.75, End: 3})
	require.NoError(t, err)

	n, _ := decodedLen(t, dst)
	assert.Equal(t, testRate/4, n)
}

func TestWavSlicerErrors(t *testing.T) {
	src := writeTone(t)

	_, err := sliceTo(t, src, Segment{Name: "backwards", Start: 0.5, End: 0.2})
	assert.ErrorIs(t, err, ErrInvalidSegment)

	_, err = sliceTo(t, src, Segment{Name: "late", Start: 2, End: 3})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestWavSlicerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewWavSlicer().Slice(ctx, nil, Segment{Start: 0, End: 1}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
