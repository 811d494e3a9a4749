package event

import (
	"fmt"
	"strconv"
	"strings"
)

// Control tokens shared by every vocabulary.
const (
	Pad   = "<pad>"
	Begin = "<begin>"
	End   = "<end>"
)

// WaitType is the reserved event type of wait-time tokens.
const WaitType = "wt"

const offPrefix = "off_"

// Type returns the event type of a token, i.e. the text before the first underscore.
// Control tokens and tokens without an underscore are their own type.
func Type(tok string) string {
	if i := strings.IndexByte(tok, '_'); i >= 0 {
		return tok[:i]
	}
	return tok
}

// Value returns the text after the first underscore, or "" if there is none.
func Value(tok string) string {
	if i := strings.IndexByte(tok, '_'); i >= 0 {
		return tok[i+1:]
	}
	return ""
}

func IsWait(tok string) bool {
	return Type(tok) == WaitType
}

func IsControl(tok string) bool {
	return tok == Pad || tok == Begin || tok == End
}

// IsTrivial reports whether seq is the encoding of an empty song.
func IsTrivial(seq []string) bool {
	return len(seq) == 2 && seq[0] == Begin && seq[1] == End
}

// Wait builds the wait token for n steps.
func Wait(n int) string {
	return WaitType + "_" + strconv.Itoa(n)
}

// NoteOn builds the note-on token of pitch for instrument.
func NoteOn(instrument string, pitch uint8) string {
	return fmt.Sprintf("%s_%d", instrument, pitch)
}

// NoteOff builds the note-off token of pitch for instrument.
func NoteOff(instrument string, pitch uint8) string {
	return fmt.Sprintf("%s_%s%d", instrument, offPrefix, pitch)
}

// Note is a parsed note event token.
type Note struct {
	Instrument string
	Pitch      uint8
	On         bool
}

// ParseNote parses a note-on or note-off token. ok is false for wait,
// control and malformed tokens.
func ParseNote(tok string) (n Note, ok bool) {
	typ, val := Type(tok), Value(tok)
	if typ == tok || typ == WaitType || typ == "" {
		return Note{}, false
	}

	n.Instrument = typ
	n.On = true
	if strings.HasPrefix(val, offPrefix) {
		n.On = false
		val = strings.TrimPrefix(val, offPrefix)
	}

	pitch, err := strconv.Atoi(val)
	if err != nil || pitch < 0 || pitch > 127 {
		return Note{}, false
	}
	n.Pitch = uint8(pitch)
	return n, true
}
