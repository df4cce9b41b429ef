// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates a request failed local validation before any remote call.
var ErrValidation = errors.New("validation failed")

// ErrConflict indicates the entity already exists or was concurrently modified.
var ErrConflict = errors.New("conflict")
