package registry

import (
	"errors"
	"fmt"
)

// Code is the numeric error code returned by a failed registry operation.
type Code uint32

const (
	CodeAlreadyRegistered Code = 101
	CodeNotFound          Code = 102
	CodeNotArtist         Code = 104
	CodeInvalidName       Code = 110
	CodeDuplicateFileHash Code = 111
)

// String returns the symbolic name of c.
func (c Code) String() string {
	switch c {
	case CodeAlreadyRegistered:
		return "ALREADY_REGISTERED"
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeNotArtist:
		return "NOT_ARTIST"
	case CodeInvalidName:
		return "INVALID_NAME"
	case CodeDuplicateFileHash:
		return "DUPLICATE_FILE_HASH"
	default:
		return fmt.Sprintf("CODE_%d", uint32(c))
	}
}

// Error is a rejection by the registry. It is caused by caller input or
// prior state and leaves the registry unchanged.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, uint32(e.Code), e.Message)
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrAlreadyRegistered = &Error{Code: CodeAlreadyRegistered, Message: "caller is already registered as an artist"}
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "record not found"}
	ErrNotArtist         = &Error{Code: CodeNotArtist, Message: "caller is not a registered artist"}
	ErrInvalidName       = &Error{Code: CodeInvalidName, Message: "name must not be empty"}
	ErrDuplicateFileHash = &Error{Code: CodeDuplicateFileHash, Message: "file hash is already registered"}
)

// CodeOf reports the registry code carried by err, if any.
func CodeOf(err error) (Code, bool) {
	var regErr *Error
	if errors.As(err, &regErr) {
		return regErr.Code, true
	}
	return 0, false
}
