package dataset

import (
	"fmt"

	"github.com/jaki95/eventseq/internal/batch"
	"github.com/jaki95/eventseq/internal/domain"
	"github.com/jaki95/eventseq/internal/storage"
	"github.com/jaki95/eventseq/internal/transform"
)

// Dataset is the list of songs named by a split manifest. Songs are read
// lazily and run through the pipeline on access.
type Dataset struct {
	store    storage.Storage
	files    []string
	pipeline *transform.Pipeline
}

// Open reads the manifest and prepares the dataset. A nil pipeline returns
// songs as stored.
func Open(store storage.Storage, manifest string, p *transform.Pipeline) (*Dataset, error) {
	r, err := store.GetReader(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", manifest, err)
	}
	defer r.Close()

	files, err := ReadManifest(r)
	if err != nil {
		return nil, err
	}
	return New(store, files, p), nil
}

func New(store storage.Storage, files []string, p *transform.Pipeline) *Dataset {
	return &Dataset{store: store, files: files, pipeline: p}
}

func (d *Dataset) Len() int {
	return len(d.files)
}

// Path returns the clean data file of song i.
func (d *Dataset) Path(i int) string {
	return d.files[i]
}

// Get loads song i and applies the pipeline.
func (d *Dataset) Get(i int) (domain.Form, error) {
	if i < 0 || i >= len(d.files) {
		return nil, fmt.Errorf("song %d out of range for dataset of %d", i, len(d.files))
	}

	r, err := d.store.GetReader(d.files[i])
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", d.files[i], err)
	}
	defer r.Close()

	song, err := ReadSong(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.files[i], err)
	}
	if d.pipeline == nil {
		return song, nil
	}

	out, err := d.pipeline.Apply(song)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.files[i], err)
	}
	return out, nil
}

// NumBatches is the number of batches of the given size, the last one
// possibly short.
func (d *Dataset) NumBatches(size int) int {
	if size < 1 {
		return 0
	}
	return (len(d.files) + size - 1) / size
}

// Batch collates batch n of the given size. The pipeline must produce flat
// indexed songs.
func (d *Dataset) Batch(n, size int, c batch.Collator) (*batch.Batch, error) {
	if n < 0 || n >= d.NumBatches(size) {
		return nil, fmt.Errorf("batch %d out of range", n)
	}

	start := n * size
	end := min(start+size, len(d.files))
	seqs := make([][]int, 0, end-start)
	for i := start; i < end; i++ {
		f, err := d.Get(i)
		if err != nil {
			return nil, err
		}
		idx, ok := f.(domain.Indexed)
		if !ok {
			return nil, &transform.ShapeMismatchError{Transform: "batch", Stage: -1, Want: domain.KindIndexed, Got: f.Kind()}
		}
		seqs = append(seqs, idx)
	}
	return c.Collate(seqs)
}

// Tokens loads every song as symbolic token tracks, e.g. to collect a
// vocabulary from the corpus. Indexed songs are rejected.
func (d *Dataset) Tokens() ([][][]string, error) {
	out := make([][][]string, 0, len(d.files))
	for i := range d.files {
		f, err := d.Get(i)
		if err != nil {
			return nil, err
		}
		mt, ok := f.(domain.MultiTrack)
		if !ok {
			if s, isSym := f.(domain.Symbolic); isSym {
				out = append(out, [][]string{s})
				continue
			}
			return nil, &transform.ShapeMismatchError{Transform: "tokens", Stage: -1, Want: domain.KindMultiSymbolic, Got: f.Kind()}
		}
		tracks, err := mt.SymbolicTracks()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.files[i], err)
		}
		out = append(out, tracks)
	}
	return out, nil
}
