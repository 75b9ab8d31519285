package persist

import (
	"fmt"
	"os"
	"path/filepath"
)

// Persister handles file I/O for one state type using a Codec. The filename
// is basename plus the codec's extension; writes go through a temp file and
// rename so readers never observe a partial state.
type Persister[T any] struct {
	codec Codec
}

// NewPersister creates a persister using the given codec.
func NewPersister[T any](codec Codec) *Persister[T] {
	return &Persister[T]{codec: codec}
}

// Filename returns the file name for a basename under this persister's codec.
func (p *Persister[T]) Filename(basename string) string {
	return basename + p.codec.Extension()
}

// Save encodes state into dir/basename with the codec extension.
func (p *Persister[T]) Save(dir, basename string, state *T) error {
	path := filepath.Join(dir, p.Filename(basename))

	tmp, err := os.CreateTemp(dir, basename+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	encodeErr := p.codec.Encode(tmp, state)
	closeErr := tmp.Close()

	if encodeErr != nil || closeErr != nil {
		_ = os.Remove(tmp.Name())

		if encodeErr != nil {
			return fmt.Errorf("encode state: %w", encodeErr)
		}

		return fmt.Errorf("close temp state file: %w", closeErr)
	}

	if renameErr := os.Rename(tmp.Name(), path); renameErr != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("commit state file: %w", renameErr)
	}

	return nil
}

// Load decodes dir/basename into a fresh state value.
func (p *Persister[T]) Load(dir, basename string) (*T, error) {
	path := filepath.Join(dir, p.Filename(basename))

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	var state T

	if decodeErr := p.codec.Decode(file, &state); decodeErr != nil {
		return nil, fmt.Errorf("decode state: %w", decodeErr)
	}

	return &state, nil
}
