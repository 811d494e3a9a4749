package preprocess

import (
	"errors"
	"fmt"
)

var ErrMissingFolder = errors.New("missing folder")

// MissingFolderError is returned when a required input directory is absent.
type MissingFolderError struct {
	Path string
}

func (e *MissingFolderError) Error() string {
	return fmt.Sprintf("folder %s does not exist", e.Path)
}

func (e *MissingFolderError) Unwrap() error {
	return ErrMissingFolder
}
