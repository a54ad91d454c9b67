package errs

import "errors"

var (
	ErrValidation       = errors.New("validation")        // 400
	ErrNotAuthenticated = errors.New("not authenticated") // 401
	ErrUnauthorized     = errors.New("unauthorized")      // 403
	ErrNotFound         = errors.New("not found")         // 404
	ErrRemote           = errors.New("remote operation failed")
)
