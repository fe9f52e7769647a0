package codebook

import "errors"

var (
	// ErrInvalidMagic is returned when data is not a codebook artifact.
	ErrInvalidMagic = errors.New("codebook: invalid magic")

	// ErrInvalidVersion is returned for an unsupported format version.
	ErrInvalidVersion = errors.New("codebook: unsupported format version")

	// ErrCorrupted is returned when an artifact fails validation.
	ErrCorrupted = errors.New("codebook: artifact corrupted")

	// ErrChecksum is returned when the CRC32C trailer does not match.
	ErrChecksum = errors.New("codebook: checksum mismatch")

	// ErrInvalidGroup is returned for empty, duplicate or path-like group names.
	ErrInvalidGroup = errors.New("codebook: invalid group name")
)
