package hash

import (
	"encoding/base64"
	"encoding/binary"
	"hash"
	"hash/crc32"
)

// TrailerSize is the size of the checksum appended by AppendCRC32C.
const TrailerSize = 4

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// AppendCRC32C appends the little-endian checksum of b to b.
func AppendCRC32C(b []byte) []byte {
	return binary.LittleEndian.AppendUint32(b, CRC32C(b))
}

// Trailer returns the checksum stored in the last four bytes of data, or 0
// if data is too short.
func Trailer(data []byte) uint32 {
	if len(data) < TrailerSize {
		return 0
	}
	return binary.LittleEndian.Uint32(data[len(data)-TrailerSize:])
}

// CheckCRC32C verifies the trailer written by AppendCRC32C and returns the
// body without it.
func CheckCRC32C(data []byte) ([]byte, bool) {
	if len(data) < TrailerSize {
		return nil, false
	}
	body := data[:len(data)-TrailerSize]
	return body, CRC32C(body) == Trailer(data)
}

// Base64CRC32C returns the checksum in the form object stores expect in
// x-amz-checksum-crc32c: base64 of the big-endian bytes.
func Base64CRC32C(data []byte) string {
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], CRC32C(data))
	return base64.StdEncoding.EncodeToString(sum[:])
}
