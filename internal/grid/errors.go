package grid

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds   = errors.New("grid coordinates out of bounds")
	ErrUninitialized = errors.New("grid is not initialized or has zero size")
	ErrSize          = errors.New("grid size does not match buffer")
	ErrTooLarge      = errors.New("grid too large")
)

type BoundsError struct {
	X, Y          int
	Width, Height int
}

func (e *BoundsError) Error() string {
	if e == nil {
		return ErrOutOfBounds.Error()
	}
	return fmt.Sprintf("grid coordinates (%d,%d) out of bounds for %dx%d", e.X, e.Y, e.Width, e.Height)
}

func (e *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}

type SizeError struct {
	Width, Height int
	Len           int
}

func (e *SizeError) Error() string {
	if e == nil {
		return ErrSize.Error()
	}
	return fmt.Sprintf("%v: %dx%d needs %d values, got %d", ErrSize, e.Width, e.Height, max(e.Width, 0)*max(e.Height, 0), e.Len)
}

func (e *SizeError) Unwrap() error {
	return ErrSize
}
