// Package hash provides the CRC32-Castagnoli checksums that guard codebook
// artifacts and object store uploads.
//
// # Usage
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For framed data with a trailing little-endian checksum:
//
//	framed := hash.AppendCRC32C(body)
//	body, ok := hash.CheckCRC32C(framed)
//
// Go's crc32 package uses SSE4.2 or the ARM CRC extension when available.
package hash
