package chl

import (
	"errors"
	"fmt"
)

var (
	ErrFormat    = errors.New("not a valid CHL document")
	ErrTruncated = errors.New("truncated CHL document")
	ErrIO        = errors.New("CHL i/o failure")
)

// VersionError reports a document version this codec cannot read.
type VersionError struct {
	Version uint16
}

func (e *VersionError) Error() string {
	if e == nil {
		return ErrFormat.Error()
	}
	return fmt.Sprintf("%v: unsupported version %d", ErrFormat, e.Version)
}

func (e *VersionError) Unwrap() error {
	return ErrFormat
}

func formatf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

func truncated(section string) error {
	return fmt.Errorf("%w: %s", ErrTruncated, section)
}

func ioFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
