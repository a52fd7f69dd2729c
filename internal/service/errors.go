package service

import "errors"

// Domain errors mapped to HTTP status codes by the server layer.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("already exists")
)
