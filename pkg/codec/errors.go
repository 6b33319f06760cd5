package codec

import (
	"errors"
	"fmt"
)

// DecodeErrorKind identifies why a serialized definition was rejected.
type DecodeErrorKind string

const (
	// DecodeUnparsable indicates the text is not well-formed JSON.
	DecodeUnparsable DecodeErrorKind = "unparsable"

	// DecodeMissingName indicates the decoded document has no non-empty name.
	DecodeMissingName DecodeErrorKind = "missing-name"

	// DecodeMissingGraph indicates neither a nested graph object nor sibling
	// nodes/connections fields are present.
	DecodeMissingGraph DecodeErrorKind = "missing-graph"

	// DecodeInvalidShape indicates the document parsed but its nodes or
	// connections violate the definition schema.
	DecodeInvalidShape DecodeErrorKind = "invalid-shape"
)

// DecodeError is returned by Decode for any rejected input. It is local and
// recoverable: the caller keeps the text buffer so the user can correct it.
type DecodeError struct {
	Kind   DecodeErrorKind
	Detail string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("decode failed (%s): %s", e.Kind, e.Detail)
	}

	if e.Err != nil {
		return fmt.Sprintf("decode failed (%s): %v", e.Kind, e.Err)
	}

	return fmt.Sprintf("decode failed (%s)", e.Kind)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// AsDecodeError unwraps err into a *DecodeError if it carries one.
func AsDecodeError(err error) (*DecodeError, bool) {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr, true
	}

	return nil, false
}

// IsDecodeError reports whether err carries a *DecodeError of any kind.
func IsDecodeError(err error) bool {
	_, ok := AsDecodeError(err)

	return ok
}
