package preprocess

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/jaki95/eventseq/internal/audio"
	"github.com/jaki95/eventseq/internal/progress"
	"github.com/jaki95/eventseq/internal/storage"
)

// Utterance is one row of a dataset's utterance table.
type Utterance struct {
	ID      string
	Meeting string
	Start   float64
	End     float64
}

// UtteranceStreamer cuts every utterance out of its meeting recording into
// clean_data/<year>/<meeting>/<utterance>.wav.
type UtteranceStreamer struct {
	store   storage.Storage
	loader  Loader
	dataset string
	slicer  audio.Slicer
	opts    StreamOptions

	meetings map[string][]Utterance
}

func NewUtteranceStreamer(store storage.Storage, loader Loader, dataset string, slicer audio.Slicer, opts StreamOptions) *UtteranceStreamer {
	return &UtteranceStreamer{store: store, loader: loader, dataset: dataset, slicer: slicer, opts: opts}
}

func (s *UtteranceStreamer) Stream(ctx context.Context) (*Summary, error) {
	if s.opts.Tracker != nil {
		s.opts.Tracker.UpdateProgress(progress.StageLoading, 0, "Reading utterance tables", nil)
	}
	meetings, err := LoadUtterances(s.store, s.dataset)
	if err != nil {
		return nil, err
	}
	s.meetings = meetings

	files, err := s.loader.Files(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.MkdirAll(storage.CleanDir); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", storage.CleanDir, err)
	}

	return run(ctx, files, "[cyan][1/1][reset] Slicing utterances...", s.opts, s.streamFile)
}

func (s *UtteranceStreamer) streamFile(ctx context.Context, p string) (outcome, error) {
	meeting := storage.Stem(p)
	year := path.Base(path.Dir(p))
	dir := path.Join(storage.CleanDir, year, meeting)

	var todo []Utterance
	for _, u := range s.meetings[meeting] {
		if !s.store.FileExists(path.Join(dir, u.ID+".wav")) {
			todo = append(todo, u)
		}
	}
	if len(todo) == 0 {
		return skipped, nil
	}

	content, err := s.loader.Read(ctx, p)
	if err != nil {
		return processed, err
	}
	if err := s.store.MkdirAll(dir); err != nil {
		return processed, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	for _, u := range todo {
		if err := s.sliceUtterance(ctx, content.Data, u, path.Join(dir, u.ID+".wav")); err != nil {
			return processed, fmt.Errorf("utterance %s: %w", u.ID, err)
		}
	}
	return processed, nil
}

func (s *UtteranceStreamer) sliceUtterance(ctx context.Context, data []byte, u Utterance, out string) error {
	tmp, err := os.CreateTemp(s.store.TempDir(), "utterance-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	seg := audio.Segment{Name: u.ID, Start: u.Start, End: u.End}
	if err := s.slicer.Slice(ctx, bytes.NewReader(data), seg, tmp); err != nil {
		return err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return writeAll(s.store, out, tmp)
}

// LoadUtterances reads every raw_data/<dataset>/text/*.tsv table and groups
// the utterances by meeting, ordered by start time. The meeting of an
// utterance is the second and third field of its underscore separated id.
func LoadUtterances(store storage.Storage, dataset string) (map[string][]Utterance, error) {
	dir := path.Join(storage.RawDir, dataset, "text")
	files, err := store.ListFiles(dir, ".tsv")
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &MissingFolderError{Path: dir}
	}
	if err != nil {
		return nil, err
	}

	meetings := map[string][]Utterance{}
	for _, f := range files {
		utts, err := readUtteranceTable(store, f)
		if err != nil {
			return nil, err
		}
		for _, u := range utts {
			meetings[u.Meeting] = append(meetings[u.Meeting], u)
		}
	}
	for _, utts := range meetings {
		sort.SliceStable(utts, func(i, j int) bool { return utts[i].Start < utts[j].Start })
	}
	return meetings, nil
}

func readUtteranceTable(store storage.Storage, p string) ([]Utterance, error) {
	r, err := store.GetReader(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer r.Close()

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", p, err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"utterance_id", "start_time", "end_time"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", p, required)
		}
	}

	var out []Utterance
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}

		u, err := parseUtterance(record, cols)
		if err != nil {
			slog.Warn("skipping utterance", "file", p, "line", line, "error", err)
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func parseUtterance(record []string, cols map[string]int) (Utterance, error) {
	field := func(name string) (string, error) {
		i := cols[name]
		if i >= len(record) {
			return "", fmt.Errorf("missing %s", name)
		}
		return strings.TrimSpace(record[i]), nil
	}

	id, err := field("utterance_id")
	if err != nil {
		return Utterance{}, err
	}
	parts := strings.Split(id, "_")
	if len(parts) < 3 {
		return Utterance{}, fmt.Errorf("utterance id %q has no meeting", id)
	}

	u := Utterance{ID: id, Meeting: strings.Join(parts[1:3], "_")}
	for _, t := range []struct {
		name string
		dst  *float64
	}{{"start_time", &u.Start}, {"end_time", &u.End}} {
		raw, err := field(t.name)
		if err != nil {
			return Utterance{}, err
		}
		if *t.dst, err = audio.ParseTimestamp(raw); err != nil {
			return Utterance{}, fmt.Errorf("%s: %w", t.name, err)
		}
	}
	return u, nil
}
