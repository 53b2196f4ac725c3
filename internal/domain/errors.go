package domain

import "errors"

// Error kinds recovered at the handler boundary. Handlers match these with
// errors.Is and turn them into a flash message plus redirect; anything else
// surfaces as a generic failure.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAuthRequired       = errors.New("authentication required")
	ErrValidation         = errors.New("validation failed")
	ErrFileType           = errors.New("file type not allowed")
	ErrNoFile             = errors.New("no file provided")
	ErrStorage            = errors.New("storage failure")
)
