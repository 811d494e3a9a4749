package event

// Drums is the instrument name of everything played on the percussion channel.
const Drums = "Drums"

// DrumChannel is the zero-based General MIDI percussion channel.
const DrumChannel = 9

// Families lists the General MIDI program families in program order, eight
// programs each.
var Families = []string{
	"Piano",
	"ChromaticPercussion",
	"Organ",
	"Guitar",
	"Bass",
	"Strings",
	"Ensemble",
	"Brass",
	"Reed",
	"Pipe",
	"SynthLead",
	"SynthPad",
	"SynthEffects",
	"Ethnic",
	"Percussive",
	"SoundEffects",
}

// AllInstruments returns every GM family followed by Drums.
func AllInstruments() []string {
	out := make([]string, 0, len(Families)+1)
	out = append(out, Families...)
	return append(out, Drums)
}

// InstrumentFor maps a channel and program to an instrument name.
func InstrumentFor(channel, program uint8) string {
	if channel == DrumChannel {
		return Drums
	}
	idx := int(program / 8)
	if idx >= len(Families) {
		return Families[0]
	}
	return Families[idx]
}

// ProgramFor returns the first program of an instrument family, and false for
// unknown names and for Drums.
func ProgramFor(instrument string) (uint8, bool) {
	for i, f := range Families {
		if f == instrument {
			return uint8(i * 8), true
		}
	}
	return 0, false
}
