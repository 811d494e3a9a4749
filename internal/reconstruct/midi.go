package reconstruct

import (
	"fmt"
	"io"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jaki95/eventseq/internal/event"
)

// MIDIOptions controls the timing of written MIDI files.
type MIDIOptions struct {
	TicksPerQuarter uint16
	StepsPerQuarter int
	Velocity        uint8
}

func (o MIDIOptions) withDefaults() MIDIOptions {
	if o.TicksPerQuarter == 0 {
		o.TicksPerQuarter = 480
	}
	if o.StepsPerQuarter <= 0 {
		o.StepsPerQuarter = 4
	}
	if o.Velocity == 0 {
		o.Velocity = 100
	}
	return o
}

// WriteMIDI writes the events as a multi-track standard MIDI file with one
// track per instrument. Melodic instruments get their own channel and a
// program change to the first program of their family; Drums play on the
// percussion channel. Notes still sounding at the end are released there.
// A stream without notes becomes a single conductor track that keeps its
// length in silence.
func (r *Result) WriteMIDI(w io.Writer, opts MIDIOptions) error {
	opts = opts.withDefaults()
	ticksPerStep := uint32(opts.TicksPerQuarter) / uint32(opts.StepsPerQuarter)
	if ticksPerStep == 0 {
		ticksPerStep = 1
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(opts.TicksPerQuarter)

	end := uint32(r.Steps) * ticksPerStep
	if len(r.Instruments()) == 0 {
		var tr smf.Track
		tr.Add(0, smf.MetaTrackSequenceName("conductor"))
		tr.Close(end)
		if err := s.Add(tr); err != nil {
			return fmt.Errorf("failed to add conductor track: %w", err)
		}
	}

	channels := assignChannels(r.Instruments())
	for _, instr := range r.Instruments() {
		ch := channels[instr]
		var tr smf.Track
		tr.Add(0, smf.MetaTrackSequenceName(instr))
		if program, ok := event.ProgramFor(instr); ok {
			tr.Add(0, midi.ProgramChange(ch, program))
		}

		var last uint32
		open := map[uint8]bool{}
		for _, e := range r.Events {
			if e.Instrument != instr {
				continue
			}
			at := uint32(e.Step) * ticksPerStep
			switch {
			case e.On:
				if open[e.Pitch] {
					tr.Add(at-last, midi.NoteOff(ch, e.Pitch))
					last = at
				}
				tr.Add(at-last, midi.NoteOn(ch, e.Pitch, opts.Velocity))
				open[e.Pitch] = true
			case open[e.Pitch]:
				tr.Add(at-last, midi.NoteOff(ch, e.Pitch))
				delete(open, e.Pitch)
			default:
				continue
			}
			last = at
		}

		for pitch := uint8(0); pitch < 128; pitch++ {
			if open[pitch] {
				tr.Add(end-last, midi.NoteOff(ch, pitch))
				last = end
			}
		}
		tr.Close(end - last)

		if err := s.Add(tr); err != nil {
			return fmt.Errorf("failed to add track %s: %w", instr, err)
		}
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write midi: %w", err)
	}
	return nil
}

// assignChannels gives every melodic instrument its own channel, skipping the
// percussion channel, and wraps around past the sixteenth.
func assignChannels(instruments []string) map[string]uint8 {
	out := make(map[string]uint8, len(instruments))
	next := uint8(0)
	for _, instr := range instruments {
		if instr == event.Drums {
			out[instr] = event.DrumChannel
			continue
		}
		if next == event.DrumChannel {
			next++
		}
		out[instr] = next % 16
		next = (next + 1) % 16
	}
	return out
}
