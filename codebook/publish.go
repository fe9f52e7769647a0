package codebook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dev-reflct/splatq"
	"github.com/dev-reflct/splatq/blobstore"
	"github.com/dev-reflct/splatq/codec"
	"github.com/dev-reflct/splatq/resource"
	"github.com/google/uuid"
)

// PublishOptions configures Publish and Load.
type PublishOptions struct {
	// Compression applies to every artifact payload.
	// Default: CompressionZstd
	Compression Compression

	// Codec encodes the manifest.
	// Default: codec.Default
	Codec codec.Codec

	// Resources throttles artifact IO. Nil means unlimited.
	Resources *resource.Controller

	// Logger receives one record per publish.
	Logger *splatq.Logger
}

func applyPublishOptions(optFns []func(*PublishOptions)) PublishOptions {
	o := PublishOptions{
		Compression: CompressionZstd,
		Codec:       codec.Default,
		Logger:      splatq.NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

func validateGroups(books []*Codebook) error {
	seen := make(map[string]struct{}, len(books))
	for _, cb := range books {
		g := cb.Group
		if g == "" || strings.ContainsAny(g, `/\`) || g == "." || g == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidGroup, g)
		}
		if _, dup := seen[g]; dup {
			return fmt.Errorf("%w: duplicate %q", ErrInvalidGroup, g)
		}
		seen[g] = struct{}{}
	}
	return nil
}

// Publish stores books as a new run and points CURRENT at it. Blobs are
// written first, then the manifest, then CURRENT; on failure the blobs of
// the incomplete run are removed and CURRENT is unchanged.
func Publish(ctx context.Context, store blobstore.BlobStore, books []*Codebook, optFns ...func(*PublishOptions)) (*Manifest, error) {
	o := applyPublishOptions(optFns)
	runID := uuid.NewString()

	m, err := publish(ctx, store, runID, books, o)
	o.Logger.LogPublish(ctx, runID, len(books), err)
	return m, err
}

func publish(ctx context.Context, store blobstore.BlobStore, runID string, books []*Codebook, o PublishOptions) (m *Manifest, err error) {
	if err := validateGroups(books); err != nil {
		return nil, err
	}

	var written []string
	defer func() {
		if err == nil {
			return
		}
		for _, name := range written {
			_ = store.Delete(context.WithoutCancel(ctx), name)
		}
	}()

	m = &Manifest{RunID: runID, Created: time.Now().UTC()}
	for _, cb := range books {
		data, applied, err := marshal(cb, o.Compression)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", cb.Group, err)
		}
		name := path.Join(runID, cb.Group+".spq")
		written = append(written, name)
		if err := writeBlob(ctx, store, name, data, o.Resources); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		m.Entries = append(m.Entries, Entry{
			Group:       cb.Group,
			Blob:        name,
			Columns:     cb.Centroids.ColumnNames(),
			K:           cb.K,
			Centroids:   cb.NumCentroids(),
			Rows:        cb.NumRows(),
			Iterations:  cb.Iterations,
			Converged:   cb.Converged,
			Degenerate:  cb.Degenerate,
			Compression: applied.String(),
			Size:        int64(len(data)),
			Checksum:    Checksum(data),
		})
	}

	mdata, err := o.Codec.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	mname := manifestName(runID, o.Codec)
	written = append(written, mname)
	if err := store.Put(ctx, mname, mdata); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	if err := store.Put(ctx, blobstore.CurrentName, []byte(mname)); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return m, nil
}

func writeBlob(ctx context.Context, store blobstore.BlobStore, name string, data []byte, rc *resource.Controller) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(resource.NewRateLimitedWriter(ctx, w, rc), bytes.NewReader(data)); err != nil {
		_ = w.Abort()
		return err
	}
	return w.Close()
}

// Current returns the manifest CURRENT points at.
func Current(ctx context.Context, store blobstore.BlobStore) (*Manifest, error) {
	ptr, err := blobstore.ReadAll(ctx, store, blobstore.CurrentName)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", blobstore.CurrentName, err)
	}
	name := strings.TrimSpace(string(ptr))
	c, err := codecForManifest(name)
	if err != nil {
		return nil, err
	}
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := c.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %w", ErrCorrupted, err)
	}
	return &m, nil
}

// Read loads and verifies the codebook of one manifest entry.
func Read(ctx context.Context, store blobstore.BlobStore, e Entry, optFns ...func(*PublishOptions)) (*Codebook, error) {
	o := applyPublishOptions(optFns)

	b, err := store.Open(ctx, e.Blob)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()

	if b.Size() != e.Size {
		return nil, fmt.Errorf("%w: %s is %d bytes, manifest says %d", ErrCorrupted, e.Blob, b.Size(), e.Size)
	}
	data, err := io.ReadAll(resource.NewRateLimitedReader(ctx, io.NewSectionReader(b, 0, b.Size()), o.Resources))
	if err != nil {
		return nil, err
	}
	if Checksum(data) != e.Checksum {
		return nil, fmt.Errorf("%w: %s", ErrChecksum, e.Blob)
	}
	cb, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Blob, err)
	}
	if cb.Group != e.Group {
		return nil, fmt.Errorf("%w: %s holds group %q", ErrCorrupted, e.Blob, cb.Group)
	}
	return cb, nil
}

// Load reads every codebook of the current run, in manifest order.
func Load(ctx context.Context, store blobstore.BlobStore, optFns ...func(*PublishOptions)) (*Manifest, []*Codebook, error) {
	m, err := Current(ctx, store)
	if err != nil {
		return nil, nil, err
	}
	books := make([]*Codebook, 0, len(m.Entries))
	for _, e := range m.Entries {
		cb, err := Read(ctx, store, e, optFns...)
		if err != nil {
			return nil, nil, err
		}
		books = append(books, cb)
	}
	return m, books, nil
}
