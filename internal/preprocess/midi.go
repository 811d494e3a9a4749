package preprocess

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jaki95/eventseq/internal/domain"
	"github.com/jaki95/eventseq/internal/event"
)

// SongFromSMF converts every MIDI track holding notes into a symbolic track.
// Note times are quantized to stepsPerQuarter steps per quarter note and the
// gaps between them become wait tokens. Instruments come from the channel
// and its current program. Tracks without notes are dropped.
func SongFromSMF(name string, s *smf.SMF, stepsPerQuarter int) (*domain.Song, error) {
	tpq, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format %v", s.TimeFormat)
	}
	if stepsPerQuarter < 1 {
		return nil, fmt.Errorf("steps per quarter must be positive, got %d", stepsPerQuarter)
	}
	ticksPerStep := uint64(tpq) / uint64(stepsPerQuarter)
	if ticksPerStep == 0 {
		ticksPerStep = 1
	}

	song := &domain.Song{Name: name}
	var programs [16]uint8

	for _, track := range s.Tracks {
		var tokens []string
		var tick uint64
		step := uint64(0)

		for _, ev := range track {
			tick += uint64(ev.Delta)

			var ch, key, vel, program uint8
			var tok string
			switch {
			case ev.Message.GetProgramChange(&ch, &program):
				programs[ch] = program
				continue
			case ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0:
				tok = event.NoteOn(event.InstrumentFor(ch, programs[ch]), key)
			case ev.Message.GetNoteOn(&ch, &key, &vel), ev.Message.GetNoteOff(&ch, &key, &vel):
				tok = event.NoteOff(event.InstrumentFor(ch, programs[ch]), key)
			default:
				continue
			}

			at := (tick + ticksPerStep/2) / ticksPerStep
			if at > step {
				tokens = append(tokens, event.Wait(int(at-step)))
			}
			step = at
			tokens = append(tokens, tok)
		}

		if len(tokens) > 0 {
			song.Tracks = append(song.Tracks, domain.Symbolic(tokens))
		}
	}

	return song, nil
}
