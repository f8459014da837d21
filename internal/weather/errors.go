package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument is returned when a required key is missing or a
	// numeric value does not parse. Extraction never returns partial data.
	ErrMalformedDocument = errors.New("malformed forecast document")

	// ErrUpstream is returned when a response envelope carries no success payload.
	ErrUpstream = errors.New("upstream error")

	// ErrUnknownKind is returned for document kinds the backend does not serve.
	ErrUnknownKind = errors.New("unknown type")
)

func malformed(path string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedDocument, path, fmt.Sprintf(format, args...))
}
