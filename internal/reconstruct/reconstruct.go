package reconstruct

import (
	"fmt"
	"io"
	"strings"

	"github.com/jaki95/eventseq/internal/event"
)

// Decoder maps vocabulary indices back to tokens.
type Decoder interface {
	Decode(indices []int) ([]string, error)
}

// Event is a timed note event. Step counts elementary wait steps from the
// start of the song.
type Event struct {
	Step       int
	Instrument string
	Pitch      uint8
	On         bool
}

// Result holds both views of one generated token stream: the symbolic tokens
// and the timed events derived from them.
type Result struct {
	Tokens []string
	Events []Event
	// Steps is the total length of the song in wait steps.
	Steps int
}

// Reconstruct maps predicted indices back to tokens and rebuilds the timed
// event stream. An index outside the vocabulary fails the whole stream.
func Reconstruct(indices []int, v Decoder) (*Result, error) {
	tokens, err := v.Decode(indices)
	if err != nil {
		return nil, fmt.Errorf("failed to decode predictions: %w", err)
	}
	return FromTokens(tokens), nil
}

// FromTokens expands wait tokens into time steps and collects note events.
// Control tokens are skipped; malformed waits count as zero-length silence and
// tokens that are neither notes nor waits are ignored.
func FromTokens(tokens []string) *Result {
	r := &Result{Tokens: tokens}
	step := 0
	for _, tok := range tokens {
		switch {
		case event.IsControl(tok):
		case event.IsWait(tok):
			step += event.ExpandWait(tok)
		default:
			n, ok := event.ParseNote(tok)
			if !ok {
				continue
			}
			r.Events = append(r.Events, Event{Step: step, Instrument: n.Instrument, Pitch: n.Pitch, On: n.On})
		}
	}
	r.Steps = step
	return r
}

// Text is the comma-joined token form.
func (r *Result) Text() string {
	return strings.Join(r.Tokens, ",")
}

// WriteText writes the comma-joined token form followed by a newline.
func (r *Result) WriteText(w io.Writer) error {
	if _, err := io.WriteString(w, r.Text()+"\n"); err != nil {
		return fmt.Errorf("failed to write tokens: %w", err)
	}
	return nil
}

// Instruments lists the instruments in order of first appearance.
func (r *Result) Instruments() []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range r.Events {
		if !seen[e.Instrument] {
			seen[e.Instrument] = true
			out = append(out, e.Instrument)
		}
	}
	return out
}
