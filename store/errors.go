package store

import "errors"

// ErrNotFound is returned by Get/GetKV when the requested item does not
// exist.
var ErrNotFound = errors.New("store: not found")
