package models

import "errors"

// ErrNotFound marks a missing transformer, inspection or annotation.
var ErrNotFound = errors.New("not found")

// ErrValidation marks an operation rejected for bad input or wrong state.
// The operation must not have mutated anything when this is returned.
var ErrValidation = errors.New("validation failed")
