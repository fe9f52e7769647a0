package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/dev-reflct/splatq/blobstore"
	"github.com/dev-reflct/splatq/internal/hash"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	contentType = "application/octet-stream"

	// ChecksumKey is the user metadata key Put stores the CRC32C under.
	ChecksumKey = "Crc32c"
)

var errAborted = errors.New("minio: upload aborted")

// Options configures a Store.
type Options struct {
	// PartSize is the multipart part size for streaming uploads.
	// Default: 16MB
	PartSize uint64

	// NumThreads is the number of concurrent part uploads.
	// Default: 4
	NumThreads uint

	// SendContentMd5 asks the server to verify an MD5 of every part.
	SendContentMd5 bool

	// ChecksumMetadata records the CRC32C of Put payloads as user metadata.
	// Default: true
	ChecksumMetadata bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		PartSize:         16 << 20,
		NumThreads:       4,
		ChecksumMetadata: true,
	}
}

// Store implements blobstore.BlobStore for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
	opts   Options
}

// NewStore creates a new MinIO blob store.
// rootPrefix is prepended to all keys (e.g. "splats/").
func NewStore(client *minio.Client, bucket, rootPrefix string, optFns ...func(*Options)) *Store {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
		opts:   opts,
	}
}

// Dial connects to endpoint with static credentials.
func Dial(endpoint, accessKey, secretKey string, secure bool, bucket, rootPrefix string, optFns ...func(*Options)) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return NewStore(client, bucket, rootPrefix, optFns...), nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// putOptions builds upload options. data is nil for streaming uploads,
// whose checksum is not known up front.
func (s *Store) putOptions(data []byte) minio.PutObjectOptions {
	opts := minio.PutObjectOptions{
		ContentType:    contentType,
		PartSize:       s.opts.PartSize,
		NumThreads:     s.opts.NumThreads,
		SendContentMd5: s.opts.SendContentMd5,
	}
	if data != nil && s.opts.ChecksumMetadata {
		opts.UserMetadata = map[string]string{ChecksumKey: hash.Base64CRC32C(data)}
	}
	return opts
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

func translate(err error) error {
	if err != nil && isNotFound(err) {
		return fmt.Errorf("%w: %w", blobstore.ErrNotFound, err)
	}
	return err
}

// Open opens an existing blob for reading. Reads of the blob use ctx.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, translate(err)
	}
	return &blob{
		ctx:    ctx,
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   info.Size,
	}, nil
}

// Put writes a blob in a single request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), s.putOptions(data))
	return err
}

// Create starts a streaming upload. The object appears when Close returns
// nil; Abort discards it.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	pr, pw := io.Pipe()
	w := &writableBlob{pw: pw, cancel: cancel, done: make(chan error, 1)}

	key := s.key(name)
	opts := s.putOptions(nil)
	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, key, pr, -1, opts)
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w, nil
}

// Delete removes a blob. Missing blobs are not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List returns all blob names with the given prefix, sorted.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := s.key(prefix)
	if strings.HasSuffix(prefix, "/") {
		fullPrefix += "/"
	}

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    fullPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(strings.TrimPrefix(obj.Key, s.prefix), "/")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

type blob struct {
	ctx    context.Context
	client *minio.Client
	bucket string
	key    string
	size   int64
}

func (b *blob) Size() int64 { return b.size }

func (b *blob) Close() error { return nil }

// ReadAt issues one ranged GET per call.
func (b *blob) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, blobstore.ErrInvalidOffset
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= b.size {
		return 0, io.EOF
	}
	end := min(off+int64(len(p)), b.size)

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, end-1); err != nil {
		return 0, err
	}
	obj, err := b.client.GetObject(b.ctx, b.bucket, b.key, opts)
	if err != nil {
		return 0, translate(err)
	}
	defer obj.Close()

	want := int(end - off)
	n, err := io.ReadFull(obj, p[:want])
	if err != nil {
		return n, translate(err)
	}
	if want < len(p) {
		return n, io.EOF
	}
	return n, nil
}

type writableBlob struct {
	pw     *io.PipeWriter
	cancel context.CancelCauseFunc
	done   chan error

	mu     sync.Mutex
	closed bool
	err    error
}

func (w *writableBlob) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

// finish ends the upload once. A later Close returns the first result;
// a later Abort is a no-op.
func (w *writableBlob) finish(abort bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		if abort {
			return nil
		}
		return w.err
	}
	w.closed = true
	if abort {
		w.cancel(errAborted)
		_ = w.pw.CloseWithError(errAborted)
		<-w.done
		w.err = errAborted
		return nil
	}
	_ = w.pw.Close()
	w.err = <-w.done
	w.cancel(nil)
	return w.err
}

// Close completes the upload.
func (w *writableBlob) Close() error { return w.finish(false) }

// Abort cancels the upload. The object is not created.
func (w *writableBlob) Abort() error { return w.finish(true) }
