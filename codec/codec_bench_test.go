package codec

import (
	"fmt"
	"testing"
	"time"
)

type benchEntry struct {
	Group      string   `json:"group"`
	Blob       string   `json:"blob"`
	Columns    []string `json:"columns"`
	K          int      `json:"k"`
	Rows       int      `json:"rows"`
	Iterations int      `json:"iterations"`
	Converged  bool     `json:"converged"`
	Checksum   uint32   `json:"checksum"`
}

type benchManifest struct {
	RunID   string       `json:"run_id"`
	Created time.Time    `json:"created"`
	Codec   string       `json:"codec"`
	Entries []benchEntry `json:"entries"`
}

func newBenchManifest() benchManifest {
	m := benchManifest{
		RunID:   "5f0c4b1e-2f55-4d36-9a3c-7d6f0b2c9e11",
		Created: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Codec:   "go-json",
	}
	for i := range 16 {
		m.Entries = append(m.Entries, benchEntry{
			Group:      fmt.Sprintf("group-%d", i),
			Blob:       fmt.Sprintf("run/group-%d.spq", i),
			Columns:    []string{"x", "y", "z"},
			K:          256,
			Rows:       1_000_000,
			Iterations: 10,
			Converged:  i%2 == 0,
			Checksum:   uint32(i) * 2654435761,
		})
	}
	return m
}

func benchmarkCodecMarshal(b *testing.B, c Codec, v any) {
	b.Helper()
	b.ReportAllocs()

	warm, err := c.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(warm)))

	var sink []byte
	b.ResetTimer()
	for b.Loop() {
		out, err := c.Marshal(v)
		if err != nil {
			b.Fatal(err)
		}
		sink = out
	}
	_ = sink
}

func benchmarkCodecUnmarshal[T any](b *testing.B, c Codec, data []byte, dst *T) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	var v T
	b.ResetTimer()
	for b.Loop() {
		if err := c.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
	if dst != nil {
		*dst = v
	}
}

func BenchmarkCodec_Marshal_Manifest(b *testing.B) {
	m := newBenchManifest()
	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, JSON{}, m) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, GoJSON{}, m) })
}

func BenchmarkCodec_Unmarshal_Manifest(b *testing.B) {
	data := MustMarshal(JSON{}, newBenchManifest())

	b.Run("stdlib", func(b *testing.B) {
		var sink benchManifest
		benchmarkCodecUnmarshal(b, JSON{}, data, &sink)
	})
	b.Run("go-json", func(b *testing.B) {
		var sink benchManifest
		benchmarkCodecUnmarshal(b, GoJSON{}, data, &sink)
	})
}
