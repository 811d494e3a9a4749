package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jaki95/eventseq/internal/domain"
)

// ReadSong parses a clean data file: one track per line, comma separated.
// Blank lines are skipped, so a file never yields an empty track. A file
// whose fields are all integers is read as indexed tracks, anything else as
// symbolic tracks.
func ReadSong(r io.Reader) (domain.MultiTrack, error) {
	reader := csv.NewReader(r)
	reader.Comma = ','
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read song: %w", err)
		}
		rows = append(rows, trimFields(record))
	}

	if indices, ok := parseIndexed(rows); ok {
		song := make(domain.MultiTrack, len(indices))
		for i, idx := range indices {
			song[i] = domain.Indexed(idx)
		}
		return song, nil
	}

	song := make(domain.MultiTrack, len(rows))
	for i, row := range rows {
		song[i] = domain.Symbolic(row)
	}
	return song, nil
}

func trimFields(record []string) []string {
	out := make([]string, 0, len(record))
	for _, f := range record {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func parseIndexed(rows [][]string) ([][]int, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	out := make([][]int, len(rows))
	for i, row := range rows {
		out[i] = make([]int, len(row))
		for j, f := range row {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, false
			}
			out[i][j] = n
		}
	}
	return out, true
}

// WriteSong writes a form as clean data: a flat track as one line, a
// multi-track song as one line per non-empty track. Empty tracks are not
// written since ReadSong could not read them back.
func WriteSong(w io.Writer, f domain.Form) error {
	bw := bufio.NewWriter(w)
	if err := writeForm(bw, f); err != nil {
		return err
	}
	return bw.Flush()
}

func writeForm(w *bufio.Writer, f domain.Form) error {
	switch v := f.(type) {
	case domain.Symbolic:
		if len(v) == 0 {
			return nil
		}
		_, err := w.WriteString(strings.Join(v, ",") + "\n")
		return err
	case domain.Indexed:
		if len(v) == 0 {
			return nil
		}
		fields := make([]string, len(v))
		for i, n := range v {
			fields[i] = strconv.Itoa(n)
		}
		_, err := w.WriteString(strings.Join(fields, ",") + "\n")
		return err
	case domain.MultiTrack:
		for i, t := range v {
			if _, nested := t.(domain.MultiTrack); nested {
				return fmt.Errorf("track %d: nested multi-track songs cannot be written", i)
			}
			if err := writeForm(w, t); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported form %T", f)
	}
}
