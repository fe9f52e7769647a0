// Package conv provides checked integer conversions.
//
// Use it where a value crosses into a fixed-width field of a persisted
// format (artifact headers, counts, lengths) and an overflow would silently
// corrupt the file. Provably bounded casts such as loop indices stay plain.
package conv
