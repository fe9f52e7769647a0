package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("msgpack")
	assert.False(t, ok)
	assert.Equal(t, "go-json", Default.Name())
}

func TestCodecsInteroperate(t *testing.T) {
	want := newBenchManifest()

	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				data, err := enc.Marshal(want)
				require.NoError(t, err)

				var got benchManifest
				require.NoError(t, dec.Unmarshal(data, &got))
				assert.Equal(t, want.RunID, got.RunID)
				assert.True(t, want.Created.Equal(got.Created))
				assert.Equal(t, want.Entries, got.Entries)
			})
		}
	}
}

func TestMustMarshal(t *testing.T) {
	assert.JSONEq(t, `{"a":1}`, string(MustMarshal(nil, map[string]int{"a": 1})))
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })

	var out map[string]int
	require.Error(t, GoJSON{}.Unmarshal([]byte("{"), &out))
}
