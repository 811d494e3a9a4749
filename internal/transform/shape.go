package transform

import (
	"fmt"

	"github.com/jaki95/eventseq/internal/domain"
	"github.com/jaki95/eventseq/internal/event"
)

// PadFixed makes every track exactly N tokens long: shorter tracks are
// right-padded, longer tracks keep their first N tokens with no marker.
type PadFixed struct {
	N     int
	Token string
}

func (t PadFixed) Name() string { return fmt.Sprintf("pad-fixed(%d)", t.N) }

func (t PadFixed) Accepts() domain.Kind { return domain.KindSymbolic | domain.KindMultiSymbolic }

func (t PadFixed) Produces(in domain.Kind) domain.Kind { return in }

func (t PadFixed) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}
	if t.N < 0 {
		return nil, fmt.Errorf("negative pad length %d", t.N)
	}
	pad := padToken(t.Token)
	return mapTracks(f, func(track []string) ([]string, error) {
		return padTo(track, t.N, pad), nil
	})
}

// PadLongest right-pads every track of a song to the song's longest track.
type PadLongest struct {
	Token string
}

func (t PadLongest) Name() string { return "pad-longest" }

func (t PadLongest) Accepts() domain.Kind { return domain.KindSymbolic | domain.KindMultiSymbolic }

func (t PadLongest) Produces(in domain.Kind) domain.Kind { return in }

func (t PadLongest) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}
	tracks, err := symbolicTracks(f)
	if err != nil {
		return nil, err
	}
	longest := 0
	for _, track := range tracks {
		longest = max(longest, len(track))
	}
	pad := padToken(t.Token)
	return mapTracks(f, func(track []string) ([]string, error) {
		return padTo(track, longest, pad), nil
	})
}

func padToken(tok string) string {
	if tok == "" {
		return event.Pad
	}
	return tok
}

func padTo(track []string, n int, pad string) []string {
	out := make([]string, n)
	copied := copy(out, track)
	for i := copied; i < n; i++ {
		out[i] = pad
	}
	return out
}

// TruncatePolicy decides what Cap does with tracks longer than the cap.
type TruncatePolicy string

const (
	// TruncateEnd keeps the first Cap tokens and overwrites the last kept
	// token with <end>; the overwritten event is lost.
	TruncateEnd TruncatePolicy = "truncate_end"
	// ErrorOnOverflow rejects tracks longer than the cap with an OverflowError.
	ErrorOnOverflow TruncatePolicy = "error_on_overflow"
)

// ParseTruncatePolicy maps a config value to a policy; "" means TruncateEnd.
func ParseTruncatePolicy(s string) (TruncatePolicy, error) {
	switch TruncatePolicy(s) {
	case "", TruncateEnd:
		return TruncateEnd, nil
	case ErrorOnOverflow:
		return ErrorOnOverflow, nil
	default:
		return "", fmt.Errorf("unknown truncate policy %q", s)
	}
}

// Cap imposes a maximum track length. A flat track is capped directly, a
// multi-track song track by track. Tracks within the cap are left untouched.
type Cap struct {
	Max    int
	Policy TruncatePolicy
}

func (t Cap) Name() string { return fmt.Sprintf("cap(%d)", t.Max) }

func (t Cap) Accepts() domain.Kind { return domain.KindSymbolic | domain.KindMultiSymbolic }

func (t Cap) Produces(in domain.Kind) domain.Kind { return in }

func (t Cap) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}
	if t.Max < 1 {
		return nil, fmt.Errorf("cap must be positive, got %d", t.Max)
	}
	return mapTracks(f, func(track []string) ([]string, error) {
		if len(track) <= t.Max {
			return track, nil
		}
		if t.Policy == ErrorOnOverflow {
			return nil, &OverflowError{Len: len(track), Cap: t.Max}
		}
		out := make([]string, t.Max)
		copy(out, track)
		out[t.Max-1] = event.End
		return out, nil
	})
}

// Flatten concatenates all tracks of a song, discarding track boundaries.
type Flatten struct{}

func (t Flatten) Name() string { return "flatten" }

func (t Flatten) Accepts() domain.Kind { return domain.KindMulti }

func (t Flatten) Produces(in domain.Kind) domain.Kind { return flatOf(in) }

func (t Flatten) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}
	mt := f.(domain.MultiTrack)
	switch mt.Kind() {
	case domain.KindMultiIndexed:
		tracks, err := mt.IndexedTracks()
		if err != nil {
			return nil, err
		}
		var out domain.Indexed
		for _, track := range tracks {
			out = append(out, track...)
		}
		return out, nil
	default:
		tracks, err := mt.SymbolicTracks()
		if err != nil {
			return nil, err
		}
		out := domain.Symbolic{}
		for _, track := range tracks {
			out = append(out, track...)
		}
		return out, nil
	}
}
