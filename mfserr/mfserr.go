// Package mfserr defines the error kinds shared by the volume and macpaint
// packages: one sentinel per kind, carried through a private wrapper type
// so that errors.Is still resolves to the sentinel while the reported
// message stays exactly what the call site asked for.
package mfserr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Callers compare with errors.Is, never by message.
var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrDiskFull         = errors.New("disk full")
	ErrDirectoryFull    = errors.New("directory full")
	ErrNotFound         = errors.New("not found")
	ErrCorrupted        = errors.New("corrupted")
	ErrInvalidFormat    = errors.New("invalid format")
)

// kindError wraps a sentinel kind with a specific message while keeping
// errors.Is(err, kind) true via Unwrap.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// Wrap produces an error reporting as msg (formatted with args) that
// satisfies errors.Is(result, kind).
func Wrap(kind error, format string, args ...interface{}) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrapf attaches a lower-level cause to kind, appending the cause's text
// to the formatted message and keeping errors.Is(result, kind) true.
func Wrapf(kind error, cause error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, cause)
	}
	return &kindError{kind: kind, msg: msg}
}
