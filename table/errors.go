package table

import "errors"

var (
	// ErrSchema is returned for column length, name or dimension mismatches.
	ErrSchema = errors.New("schema mismatch")

	// ErrIndex is returned when a row index is outside [0, NumRows).
	ErrIndex = errors.New("row index out of range")
)
