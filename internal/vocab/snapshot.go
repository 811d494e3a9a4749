package vocab

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SnapshotVersion is the current vocabulary snapshot format.
const SnapshotVersion = 1

//go:embed snapshot_schema.json
var snapshotSchema []byte

type snapshot struct {
	Version  int      `json:"version"`
	Checksum string   `json:"checksum"`
	Tokens   []string `json:"tokens"`
}

// Save writes a versioned snapshot of v, to be stored next to model artifacts.
func (v *Vocabulary) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot{
		Version:  SnapshotVersion,
		Checksum: v.checksum,
		Tokens:   v.indexToToken,
	})
}

// Load reads a snapshot written by Save. The document is validated against
// the snapshot schema and the stored checksum must match the token list.
func Load(r io.Reader) (*Vocabulary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary snapshot: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(snapshotSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile snapshot schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to validate vocabulary snapshot: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, &VocabularyError{Reason: "invalid snapshot: " + strings.Join(msgs, "; ")}
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode vocabulary snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, &VocabularyError{Reason: fmt.Sprintf("unsupported snapshot version %d", snap.Version)}
	}

	v, err := newVocabulary(snap.Tokens)
	if err != nil {
		return nil, err
	}
	if err := v.Verify(snap.Checksum); err != nil {
		return nil, err
	}
	return v, nil
}
