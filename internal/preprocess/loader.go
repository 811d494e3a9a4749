package preprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jaki95/eventseq/internal/domain"
	"github.com/jaki95/eventseq/internal/storage"
)

// Content is what a loader reads from one raw file.
type Content struct {
	Path string
	// Song is set by loaders of symbolic corpora.
	Song *domain.Song
	// Data holds the raw bytes of audio files.
	Data []byte
}

// Loader enumerates and reads the raw files of one corpus kind.
type Loader interface {
	Files(ctx context.Context) ([]string, error)
	Read(ctx context.Context, path string) (*Content, error)
	Extensions() []string
}

type fileLister struct {
	store   storage.Storage
	dir     string
	exts    []string
	shuffle bool
	seed    int64
}

func (l fileLister) files(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var files []string
	for _, ext := range l.exts {
		found, err := l.store.WalkFiles(l.dir, ext)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &MissingFolderError{Path: l.dir}
		}
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	sort.Strings(files)
	if l.shuffle {
		rand.New(rand.NewSource(l.seed)).Shuffle(len(files), func(i, j int) {
			files[i], files[j] = files[j], files[i]
		})
	}
	return files, nil
}

func (l fileLister) readAll(p string) ([]byte, error) {
	r, err := l.store.GetReader(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

// LoaderOptions are shared by every loader.
type LoaderOptions struct {
	Shuffle bool
	Seed    int64
}

// MIDILoader reads standard MIDI files from raw_data/ as multi-track songs.
type MIDILoader struct {
	lister          fileLister
	stepsPerQuarter int
}

func NewMIDILoader(store storage.Storage, stepsPerQuarter int, opts LoaderOptions) *MIDILoader {
	return &MIDILoader{
		lister: fileLister{
			store:   store,
			dir:     storage.RawDir,
			exts:    []string{".mid", ".midi"},
			shuffle: opts.Shuffle,
			seed:    opts.Seed,
		},
		stepsPerQuarter: stepsPerQuarter,
	}
}

func (l *MIDILoader) Files(ctx context.Context) ([]string, error) {
	return l.lister.files(ctx)
}

func (l *MIDILoader) Read(ctx context.Context, p string) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := l.lister.readAll(p)
	if err != nil {
		return nil, err
	}
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse midi %s: %w", p, err)
	}
	song, err := SongFromSMF(storage.Stem(p), s, l.stepsPerQuarter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return &Content{Path: p, Song: song}, nil
}

func (l *MIDILoader) Extensions() []string {
	return l.lister.exts
}

// WavLoader reads meeting recordings from raw_data/<dataset>/audio/.
type WavLoader struct {
	lister fileLister
}

func NewWavLoader(store storage.Storage, dataset string, opts LoaderOptions) *WavLoader {
	return &WavLoader{
		lister: fileLister{
			store:   store,
			dir:     path.Join(storage.RawDir, dataset, "audio"),
			exts:    []string{".wav"},
			shuffle: opts.Shuffle,
			seed:    opts.Seed,
		},
	}
}

func (l *WavLoader) Files(ctx context.Context) ([]string, error) {
	return l.lister.files(ctx)
}

func (l *WavLoader) Read(ctx context.Context, p string) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := l.lister.readAll(p)
	if err != nil {
		return nil, err
	}
	return &Content{Path: p, Data: data}, nil
}

func (l *WavLoader) Extensions() []string {
	return l.lister.exts
}
