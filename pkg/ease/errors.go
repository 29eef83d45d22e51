package ease

import "errors"

var (
	// ErrUnknownEase indicates a base name that is not registered.
	ErrUnknownEase = errors.New("ease: unknown ease")

	// ErrBadEaseParams indicates a malformed or out of range parameter list.
	ErrBadEaseParams = errors.New("ease: bad ease parameters")
)
