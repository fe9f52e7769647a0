package blobstore

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/dev-reflct/splatq/internal/mmap"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrExists is returned by stores configured to never overwrite when the
// named blob already exists.
var ErrExists = os.ErrExist

// ErrInvalidOffset is returned by Blob.ReadAt for negative offsets.
var ErrInvalidOffset = mmap.ErrInvalidOffset

// CurrentName is the blob that names the most recently committed run.
// Stores with a commit log may serve it from elsewhere.
const CurrentName = "CURRENT"

// BlobStore is an abstraction for storing named, immutable blobs.
type BlobStore interface {
	// Open opens a blob for reading. Remote implementations bind ctx to
	// the reads of the returned blob.
	Open(ctx context.Context, name string) (Blob, error)

	// Create starts a streaming write. The blob becomes visible when the
	// writer is closed without error.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the sorted names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a stored blob.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a streaming writer for a new blob.
// Close commits the blob. Abort discards everything written so the blob
// never becomes visible; it is a no-op once Close or Abort has run.
type WritableBlob interface {
	io.WriteCloser
	Abort() error
}

// Mappable is an optional interface for Blobs whose contents are already in
// memory.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// ReadAll reads the whole named blob.
func ReadAll(ctx context.Context, store BlobStore, name string) ([]byte, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()

	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return append([]byte(nil), data...), nil
	}

	buf := make([]byte, b.Size())
	n, err := b.ReadAt(buf, 0)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == b.Size()) {
		return nil, err
	}
	return buf[:n], nil
}
