// Package repository defines the key-value store abstraction every
// persisted piece of state goes through, together with its in-memory,
// Redis and MySQL implementations and the sentinel errors they share.
// Values are JSON documents; callers never see the encoding.
package repository

import "errors"

// ErrNotFound is returned by Get when the key holds no value.  Handlers
// should translate it into an HTTP 404 response or a default value.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write cannot be applied because of the
// current state, such as registering an email that is already taken.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
