package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateWait(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "no wait tokens",
			input:    []string{"Piano_60", "Bass_40"},
			expected: []string{"Piano_60", "Bass_40"},
		},
		{
			name:     "single run collapsed",
			input:    []string{"Piano_60", "wt_1", "wt_1", "Piano_62"},
			expected: []string{"Piano_60", "wt_2", "Piano_62"},
		},
		{
			name:     "trailing run aggregated",
			input:    []string{"Bass_40", "wt_2", "wt_3"},
			expected: []string{"Bass_40", "wt_5"},
		},
		{
			name:     "leading run and control tokens",
			input:    []string{Begin, "wt_1", "wt_1", "wt_1", "Piano_60", End},
			expected: []string{Begin, "wt_3", "Piano_60", End},
		},
		{
			name:     "malformed wait counts as silence",
			input:    []string{"wt_x", "wt_2"},
			expected: []string{"wt_2"},
		},
		{
			name:     "empty",
			input:    []string{},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AggregateWait(tt.input))
		})
	}
}

func TestAggregateWaitIdempotent(t *testing.T) {
	inputs := [][]string{
		{"Piano_60", "wt_1", "wt_1", "Piano_62", "wt_4"},
		{"wt_1", "wt_1", "wt_1"},
		{Begin, "Guitar_50", "wt_2", "Guitar_off_50", "wt_1", End},
	}
	for _, in := range inputs {
		once := AggregateWait(in)
		assert.Equal(t, once, AggregateWait(once))
	}
}

func TestBoundedAggregator(t *testing.T) {
	agg := Aggregator{MaxWait: 4}

	out := agg.Aggregate([]string{"Piano_60", "wt_3", "wt_3", "wt_4", "Piano_62"})
	assert.Equal(t, []string{"Piano_60", "wt_4", "wt_4", "wt_2", "Piano_62"}, out)
	assert.Equal(t, out, agg.Aggregate(out))

	assert.Equal(t, []string{"wt_4"}, agg.Aggregate([]string{"wt_2", "wt_2"}))
}

func TestExpandWait(t *testing.T) {
	assert.Equal(t, 3, ExpandWait("wt_3"))
	assert.Equal(t, 0, ExpandWait("wt_"))
	assert.Equal(t, 0, ExpandWait("wt_-2"))
	assert.Equal(t, 0, ExpandWait("wt_abc"))
	assert.Equal(t, 0, ExpandWait("Piano_60"))
}

func TestStripWait(t *testing.T) {
	out := StripWait([]string{Begin, "Piano_60", "wt_2", "Piano_62", "wt_1", End})
	assert.Equal(t, []string{Begin, "Piano_60", "Piano_62", End}, out)
}

func TestParseNote(t *testing.T) {
	n, ok := ParseNote("Piano_60")
	assert.True(t, ok)
	assert.Equal(t, Note{Instrument: "Piano", Pitch: 60, On: true}, n)

	n, ok = ParseNote("Bass_off_40")
	assert.True(t, ok)
	assert.Equal(t, Note{Instrument: "Bass", Pitch: 40, On: false}, n)

	for _, tok := range []string{"wt_2", Pad, Begin, "Piano_200", "Piano_x", "_60"} {
		_, ok := ParseNote(tok)
		assert.False(t, ok, tok)
	}

	assert.Equal(t, "Piano_60", NoteOn("Piano", 60))
	assert.Equal(t, "Piano_off_60", NoteOff("Piano", 60))
}

func TestTypeAndValue(t *testing.T) {
	assert.Equal(t, "Piano", Type("Piano_60"))
	assert.Equal(t, "60", Value("Piano_60"))
	assert.Equal(t, "off_60", Value("Piano_off_60"))
	assert.Equal(t, WaitType, Type("wt_12"))
	assert.Equal(t, Pad, Type(Pad))
	assert.Equal(t, "", Value(End))
	assert.True(t, IsTrivial([]string{Begin, End}))
	assert.False(t, IsTrivial([]string{Begin, "wt_1", End}))
}
