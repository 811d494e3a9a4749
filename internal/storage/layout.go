package storage

import (
	"path"
	"strings"
)

// Corpus directory layout.
const (
	RawDir   = "raw_data"
	CleanDir = "clean_data"
)

// Manifest names produced by the split step.
const (
	TrainManifest = "train.txt"
	ValManifest   = "val.txt"
	TestManifest  = "test.txt"
)

// CleanPath returns the clean data path of a raw file with the given output
// extension. Subdirectories below raw_data/ are kept so files sharing a base
// name do not collide.
func CleanPath(rawPath, ext string) string {
	rel := path.Clean(rawPath)
	if r, ok := strings.CutPrefix(rel, RawDir+"/"); ok {
		rel = r
	} else {
		rel = path.Base(rel)
	}
	return path.Join(CleanDir, strings.TrimSuffix(rel, path.Ext(rel))+ext)
}

// Stem is the base name of p without its extension.
func Stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
