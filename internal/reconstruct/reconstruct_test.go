package reconstruct

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jaki95/eventseq/internal/event"
	"github.com/jaki95/eventseq/internal/vocab"
)

func testVocab(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.Build(vocab.Corpus{
		Instruments: []string{"Piano", "Drums"},
		MinPitch:    30,
		MaxPitch:    72,
		MaxWait:     8,
	})
	require.NoError(t, err)
	return v
}

func TestReconstructRoundTrip(t *testing.T) {
	v := testVocab(t)
	tokens := []string{event.Begin, "Piano_60", "wt_2", "Piano_off_60", "Drums_36", "wt_1", "Drums_off_36", event.End}

	idx, err := v.Encode(tokens)
	require.NoError(t, err)

	r, err := Reconstruct(idx, v)
	require.NoError(t, err)
	assert.Equal(t, tokens, r.Tokens)
	assert.Equal(t, "<begin>,Piano_60,wt_2,Piano_off_60,Drums_36,wt_1,Drums_off_36,<end>", r.Text())
	assert.Equal(t, []Event{
		{Step: 0, Instrument: "Piano", Pitch: 60, On: true},
		{Step: 2, Instrument: "Piano", Pitch: 60, On: false},
		{Step: 2, Instrument: "Drums", Pitch: 36, On: true},
		{Step: 3, Instrument: "Drums", Pitch: 36, On: false},
	}, r.Events)
	assert.Equal(t, 3, r.Steps)
	assert.Equal(t, []string{"Piano", "Drums"}, r.Instruments())
}

func TestReconstructUnknownIndex(t *testing.T) {
	v := testVocab(t)
	_, err := Reconstruct([]int{1, v.Len() + 3}, v)
	assert.ErrorIs(t, err, vocab.ErrUnknownIndex)
}

func TestFromTokensMalformedWait(t *testing.T) {
	r := FromTokens([]string{"Piano_60", "wt_x", "wt_-4", "Piano_off_60", "garbage", "wt_3"})
	assert.Equal(t, 3, r.Steps)
	require.Len(t, r.Events, 2)
	assert.Equal(t, 0, r.Events[1].Step)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FromTokens([]string{"Piano_60", "wt_1"}).WriteText(&buf))
	assert.Equal(t, "Piano_60,wt_1\n", buf.String())
}

type note struct {
	tick uint32
	ch   uint8
	key  uint8
	on   bool
}

func readNotes(t *testing.T, data []byte) (smf.MetricTicks, []note) {
	t.Helper()
	s, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)
	tpq, ok := s.TimeFormat.(smf.MetricTicks)
	require.True(t, ok)

	var notes []note
	for _, track := range s.Tracks {
		var tick uint32
		for _, ev := range track {
			tick += ev.Delta
			var ch, key, vel uint8
			switch {
			case ev.Message.GetNoteOn(&ch, &key, &vel):
				notes = append(notes, note{tick, ch, key, true})
			case ev.Message.GetNoteOff(&ch, &key, &vel):
				notes = append(notes, note{tick, ch, key, false})
			}
		}
	}
	return tpq, notes
}

func TestWriteMIDI(t *testing.T) {
	r := FromTokens([]string{event.Begin, "Piano_60", "wt_2", "Piano_off_60", "Drums_36", "wt_1", "Drums_off_36", event.End})

	var buf bytes.Buffer
	require.NoError(t, r.WriteMIDI(&buf, MIDIOptions{TicksPerQuarter: 480, StepsPerQuarter: 4}))

	tpq, notes := readNotes(t, buf.Bytes())
	assert.Equal(t, smf.MetricTicks(480), tpq)
	assert.ElementsMatch(t, []note{
		{0, 0, 60, true},
		{240, 0, 60, false},
		{240, event.DrumChannel, 36, true},
		{360, event.DrumChannel, 36, false},
	}, notes)
}

func TestWriteMIDIReleasesHangingNotes(t *testing.T) {
	r := FromTokens([]string{"Bass_40", "wt_4", "Bass_off_52"})

	var buf bytes.Buffer
	require.NoError(t, r.WriteMIDI(&buf, MIDIOptions{}))

	_, notes := readNotes(t, buf.Bytes())
	assert.Equal(t, []note{
		{0, 0, 40, true},
		{480, 0, 40, false},
	}, notes)
}

func TestAssignChannels(t *testing.T) {
	instruments := append([]string{event.Drums}, event.Families[:11]...)
	ch := assignChannels(instruments)
	assert.Equal(t, uint8(event.DrumChannel), ch[event.Drums])
	assert.Equal(t, uint8(0), ch["Piano"])
	assert.Equal(t, uint8(8), ch[event.Families[8]])
	assert.Equal(t, uint8(10), ch[event.Families[9]])
}

func TestWriteMIDIWithoutNotes(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		ticks  uint32
	}{
		{"end only", []string{event.End}, 0},
		{"waits only", []string{"wt_3", event.End}, 360},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, FromTokens(tt.tokens).WriteMIDI(&buf, MIDIOptions{TicksPerQuarter: 480, StepsPerQuarter: 4}))

			s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			require.Len(t, s.Tracks, 1)
			var tick uint32
			for _, ev := range s.Tracks[0] {
				tick += ev.Delta
			}
			assert.Equal(t, tt.ticks, tick)

			_, notes := readNotes(t, buf.Bytes())
			assert.Empty(t, notes)
		})
	}
}

func TestWriteMIDIRetriggersSoundingNote(t *testing.T) {
	r := FromTokens([]string{"Piano_60", "wt_2", "Piano_60", "wt_2", "Piano_off_60"})

	var buf bytes.Buffer
	require.NoError(t, r.WriteMIDI(&buf, MIDIOptions{TicksPerQuarter: 480, StepsPerQuarter: 4}))

	_, notes := readNotes(t, buf.Bytes())
	assert.Equal(t, []note{
		{0, 0, 60, true},
		{240, 0, 60, false},
		{240, 0, 60, true},
		{480, 0, 60, false},
	}, notes)
}
