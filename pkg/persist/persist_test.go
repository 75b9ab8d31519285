package persist

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testState is a struct for round-trip testing.
type testState struct {
	Name   string         `json:"name"`
	Count  int            `json:"count"`
	Values map[string]int `json:"values"`
}

func sampleState() testState {
	return testState{
		Name:   "outcomes",
		Count:  42,
		Values: map[string]int{"clean": 40, "violations": 2},
	}
}

func TestJSONCodecRoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewJSONCodec()
	original := sampleState()

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, original))

	var restored testState

	require.NoError(t, codec.Decode(&buf, &restored))
	assert.Equal(t, original, restored)
}

func TestGobCodecRoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewGobCodec()
	original := sampleState()

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, original))

	var restored testState

	require.NoError(t, codec.Decode(&buf, &restored))
	assert.Equal(t, original, restored)
}

func TestLZ4CodecRoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewLZ4Codec(NewJSONCodec())
	original := sampleState()

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, original))

	var restored testState

	require.NoError(t, codec.Decode(&buf, &restored))
	assert.Equal(t, original, restored)
}

func TestLZ4CodecExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".json.lz4", NewLZ4Codec(NewJSONCodec()).Extension())
}

func TestPersisterSaveLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := NewPersister[testState](NewLZ4Codec(NewJSONCodec()))

	original := sampleState()
	require.NoError(t, p.Save(dir, "entry", &original))

	restored, err := p.Load(dir, "entry")
	require.NoError(t, err)
	assert.Equal(t, original, *restored)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "entry.json.lz4", entries[0].Name())
}

func TestPersisterLoadMissing(t *testing.T) {
	t.Parallel()

	p := NewPersister[testState](NewJSONCodec())

	_, err := p.Load(t.TempDir(), "absent")
	require.Error(t, err)
}

func TestPersisterLoadCorrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := NewPersister[testState](NewLZ4Codec(NewJSONCodec()))

	path := filepath.Join(dir, p.Filename("entry"))
	require.NoError(t, os.WriteFile(path, []byte("not lz4 at all"), 0o600))

	_, err := p.Load(dir, "entry")
	require.Error(t, err)
}
