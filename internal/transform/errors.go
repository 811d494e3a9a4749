package transform

import (
	"errors"
	"fmt"

	"github.com/jaki95/eventseq/internal/domain"
)

var (
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrOverflow      = errors.New("track exceeds maximum length")
)

// ShapeMismatchError reports a form handed to a transform that does not accept it.
type ShapeMismatchError struct {
	Transform string
	Stage     int
	Want      domain.Kind
	Got       domain.Kind
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("stage %d (%s): expected %s input, got %s", e.Stage, e.Transform, e.Want, e.Got)
}

func (e *ShapeMismatchError) Unwrap() error {
	return ErrShapeMismatch
}

// OverflowError is returned by Cap under the ErrorOnOverflow policy.
type OverflowError struct {
	Len int
	Cap int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("track of length %d exceeds cap %d", e.Len, e.Cap)
}

func (e *OverflowError) Unwrap() error {
	return ErrOverflow
}
