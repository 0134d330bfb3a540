package service

import "errors"

// Sentinel errors returned by the service layer. The API layer translates
// each into its HTTP status exactly once; nothing below it speaks HTTP.
var (
	ErrNotFound           = errors.New("record not found")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
