package store

import "errors"

// ErrObjectNotFound is returned when an object key does not exist.
var ErrObjectNotFound = errors.New("object not found")
