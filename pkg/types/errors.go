package types

import "errors"

// Identifier and payload errors.
var (
	ErrInvalidID   = errors.New("invalid entity ID")
	ErrInvalidData = errors.New("invalid entity data")
)

// State persistence errors.
var (
	ErrNoSnapshot      = errors.New("no snapshot stored")
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
	ErrStorageClosed   = errors.New("state storage is closed")
)

// Routing errors.
var (
	ErrNoRoute = errors.New("no route matches path")
)
