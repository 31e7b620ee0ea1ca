package photo

import (
	"errors"
	"fmt"
)

// Kind classifies why a single file could not be organised.
type Kind int

const (
	KindIO Kind = iota
	KindInvalidImage
	KindPlacementExhausted
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io_failed"
	case KindInvalidImage:
		return "invalid_image"
	case KindPlacementExhausted:
		return "placement_exhausted"
	default:
		return "unknown"
	}
}

// Error is the failure of one file. It never aborts the run.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind carried by err, and false if err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
