package codebook

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dev-reflct/splatq/codec"
)

const manifestPrefix = "MANIFEST."

// Entry describes one published codebook.
type Entry struct {
	Group       string   `json:"group"`
	Blob        string   `json:"blob"`
	Columns     []string `json:"columns"`
	K           int      `json:"k"`
	Centroids   int      `json:"centroids"`
	Rows        int      `json:"rows"`
	Iterations  int      `json:"iterations"`
	Converged   bool     `json:"converged"`
	Degenerate  bool     `json:"degenerate,omitempty"`
	Compression string   `json:"compression"`
	Size        int64    `json:"size"`
	Checksum    uint32   `json:"checksum"`
}

// Manifest lists the codebooks of one run.
type Manifest struct {
	RunID   string    `json:"run_id"`
	Created time.Time `json:"created"`
	Entries []Entry   `json:"entries"`
}

// Entry returns the entry for group.
func (m *Manifest) Entry(group string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.Group == group {
			return e, true
		}
	}
	return Entry{}, false
}

// manifestName is the blob name of a run's manifest. The codec name is part
// of it so readers can pick the decoder before reading the manifest.
func manifestName(runID string, c codec.Codec) string {
	return path.Join(runID, manifestPrefix+c.Name())
}

func codecForManifest(name string) (codec.Codec, error) {
	base := path.Base(name)
	if !strings.HasPrefix(base, manifestPrefix) {
		return nil, fmt.Errorf("%w: %q is not a manifest", ErrCorrupted, name)
	}
	c, ok := codec.ByName(strings.TrimPrefix(base, manifestPrefix))
	if !ok {
		return nil, fmt.Errorf("%w: unknown manifest codec in %q", ErrCorrupted, name)
	}
	return c, nil
}
