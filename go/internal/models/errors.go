package models

import "errors"

// ErrNotFound marks a missing record. Stores wrap it so callers can match it
// without depending on a particular store.
var ErrNotFound = errors.New("not found")
