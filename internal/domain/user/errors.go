package user

import "errors"

// Sentinel errors surfaced by the repository layer. The usecase maps them
// onto the HTTP error taxonomy.
var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrNotVerified   = errors.New("user not verified")
)
