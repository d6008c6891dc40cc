package models

import "errors"

// Sentinel errors shared by the store, the gateway and the engine.
var (
	ErrDuplicateEntry            = errors.New("duplicate entry")
	ErrClassificationUnavailable = errors.New("classification unavailable")
	ErrNotFound                  = errors.New("not found")
	ErrInvalidInput              = errors.New("invalid input")
	ErrStorageUnavailable        = errors.New("storage unavailable")
)
