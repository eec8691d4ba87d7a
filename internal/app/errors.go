package app

import "errors"

var (
	// ErrInvalidCredentials is returned for unknown email and wrong password
	// alike. The message is identical in both cases so responses do not leak
	// which field was wrong.
	ErrInvalidCredentials = errors.New("Password or email is incorrect.")

	ErrFieldsRequired     = errors.New("Fullname, email and password are required")
	ErrEmailAlreadyExists = errors.New("User with this email already exists.")
	ErrEmailRequired      = errors.New("email is required")
	ErrArtistIDRequired   = errors.New("Artist ID is required")
)
