package carousel

import (
	"errors"
	"fmt"
)

// ErrInvalidIndex reports a selection index outside the ring. It
// indicates a caller bug (bad menu data) and fails loudly.
var ErrInvalidIndex = errors.New("carousel: item index out of range")

// ErrEmptyItems reports an attempt to build a ring with no items.
var ErrEmptyItems = errors.New("carousel: item list is empty")

// ErrDisposed reports an operation on a ring that has been torn down.
var ErrDisposed = errors.New("carousel: ring is disposed")

// IndexError carries the offending index and the ring size.
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("carousel: index %d out of range [0,%d)", e.Index, e.Count)
}

// Is makes IndexError match ErrInvalidIndex under errors.Is.
func (e *IndexError) Is(target error) bool {
	return target == ErrInvalidIndex
}
