package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dev-reflct/splatq/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behavior every BlobStore must share.
func exerciseStore(t *testing.T, store BlobStore) {
	ctx := context.Background()

	t.Run("CreateOpenRead", func(t *testing.T) {
		data := []byte("positions codebook, k=256, labels packed")
		w, err := store.Create(ctx, "run-1/positions.spqc")
		require.NoError(t, err)
		n, err := w.Write(data[:10])
		require.NoError(t, err)
		require.Equal(t, 10, n)
		_, err = w.Write(data[10:])
		require.NoError(t, err)
		require.NoError(t, w.Close())

		_, err = w.Write([]byte("late"))
		assert.Error(t, err)

		b, err := store.Open(ctx, "run-1/positions.spqc")
		require.NoError(t, err)
		defer b.Close()
		assert.Equal(t, int64(len(data)), b.Size())

		buf := make([]byte, 9)
		n, err = b.ReadAt(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, "positions", string(buf[:n]))

		n, err = b.ReadAt(make([]byte, 100), 20)
		assert.Equal(t, len(data)-20, n)
		assert.Equal(t, io.EOF, err)

		n, err = b.ReadAt(buf, -1)
		assert.Zero(t, n)
		assert.ErrorIs(t, err, ErrInvalidOffset)
	})

	t.Run("AbortDiscards", func(t *testing.T) {
		w, err := store.Create(ctx, "aborted/positions.spqc")
		require.NoError(t, err)
		_, err = w.Write([]byte("half a codebook"))
		require.NoError(t, err)
		require.NoError(t, w.Abort())
		require.NoError(t, w.Abort())
		assert.Error(t, w.Close())

		_, err = store.Open(ctx, "aborted/positions.spqc")
		assert.ErrorIs(t, err, ErrNotFound)
		names, err := store.List(ctx, "aborted/")
		require.NoError(t, err)
		assert.Empty(t, names)

		// Abort after a committed Close leaves the blob in place.
		w, err = store.Create(ctx, "aborted/kept")
		require.NoError(t, err)
		_, err = w.Write([]byte("kept"))
		require.NoError(t, err)
		require.NoError(t, w.Close())
		require.NoError(t, w.Abort())
		got, err := ReadAll(ctx, store, "aborted/kept")
		require.NoError(t, err)
		assert.Equal(t, "kept", string(got))
	})

	t.Run("PutReadAll", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "run-1/manifest.json", []byte(`{"v":1}`)))
		got, err := ReadAll(ctx, store, "run-1/manifest.json")
		require.NoError(t, err)
		assert.Equal(t, `{"v":1}`, string(got))

		require.NoError(t, store.Put(ctx, "run-1/manifest.json", []byte(`{"v":2}`)))
		got, err = ReadAll(ctx, store, "run-1/manifest.json")
		require.NoError(t, err)
		assert.Equal(t, `{"v":2}`, string(got))
	})

	t.Run("PutEmpty", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "empty", nil))
		got, err := ReadAll(ctx, store, "empty")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("PutIsolation", func(t *testing.T) {
		data := []byte("abc")
		require.NoError(t, store.Put(ctx, "iso", data))
		data[0] = 'x'
		got, err := ReadAll(ctx, store, "iso")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "run-2/colors.spqc", []byte("c")))
		require.NoError(t, store.Put(ctx, "run-2/a.spqc", []byte("a")))

		names, err := store.List(ctx, "run-2/")
		require.NoError(t, err)
		assert.Equal(t, []string{"run-2/a.spqc", "run-2/colors.spqc"}, names)

		all, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Contains(t, all, "run-1/positions.spqc")
		assert.Contains(t, all, "empty")
	})

	t.Run("DeleteNotFound", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "run-2/a.spqc"))
		require.NoError(t, store.Delete(ctx, "run-2/a.spqc"))

		_, err := store.Open(ctx, "run-2/a.spqc")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = ReadAll(ctx, store, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ConcurrentPut", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.Put(ctx, "hot", []byte("same")))
			}()
		}
		wg.Wait()
		got, err := ReadAll(ctx, store, "hot")
		require.NoError(t, err)
		assert.Equal(t, "same", string(got))
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	exerciseStore(t, store)
	assert.Positive(t, store.Len())
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	exerciseStore(t, NewLocalStore(dir))

	// No temporary files survive completed or aborted writes.
	for _, sub := range []string{"run-1", "aborted"} {
		entries, err := os.ReadDir(filepath.Join(dir, sub))
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".tmp-")
		}
	}
}

func TestLocalStore_MissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "absent"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_MappedBytes(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	require.NoError(t, store.Put(context.Background(), "b", []byte("mapped")))

	b, err := store.Open(context.Background(), "b")
	require.NoError(t, err)
	m, ok := b.(Mappable)
	require.True(t, ok)
	data, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "mapped", string(data))

	require.NoError(t, b.Close())
	_, err = m.Bytes()
	assert.Error(t, err)
}

func TestLocalStore_ListPrefixDescends(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())
	for _, name := range []string{"a/b/c", "a/b/d", "a/x", "b/c", "top"} {
		require.NoError(t, store.Put(ctx, name, []byte(name)))
	}

	names, err := store.List(ctx, "a/b/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b/c", "a/b/d"}, names)

	names, err = store.List(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b/c", "a/b/d", "a/x"}, names)

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, names, 5)
}

func TestLocalStore_Faults(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		fault fs.Fault
	}{
		{name: "Write", fault: fs.Fault{FailAfterBytes: 3}},
		{name: "Sync", fault: fs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{name: "Close", fault: fs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{name: "Rename", fault: fs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			ffs := fs.NewFaultyFS(nil)
			ffs.AddRule("victim", tt.fault)
			store := NewLocalStore(dir, WithFileSystem(ffs))

			require.NoError(t, store.Put(ctx, "keep", []byte("ok")))
			err := store.Put(ctx, "victim", []byte("payload"))
			assert.ErrorIs(t, err, fs.ErrInjected)

			// Neither the blob nor its temporary file survives.
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "keep", entries[0].Name())

			_, err = store.Open(ctx, "victim")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
