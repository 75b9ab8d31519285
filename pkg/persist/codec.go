// Package persist stores arbitrary state values in files through pluggable
// codecs. The result cache keeps hook outcomes in LZ4-compressed JSON; gob
// is available for internal state that never leaves the machine.
package persist

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
)

// File extensions for the built-in codecs.
const (
	jsonExtension = ".json"
	gobExtension  = ".gob"
)

// defaultIndent is the indentation for pretty-printed JSON.
const defaultIndent = "  "

// Codec defines how state is serialized and deserialized.
type Codec interface {
	// Encode writes the state to the writer.
	Encode(w io.Writer, state any) error
	// Decode reads the state from the reader.
	Decode(r io.Reader, state any) error
	// Extension returns the file extension for this codec (e.g. ".json").
	Extension() string
}

// JSONCodec implements Codec using JSON with optional indentation.
type JSONCodec struct {
	// Indent is the indentation string. Empty means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with 2-space indentation.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode.
func (c *JSONCodec) Encode(w io.Writer, state any) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(state)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *JSONCodec) Decode(r io.Reader, state any) error {
	err := json.NewDecoder(r).Decode(state)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// GobCodec implements Codec using gob encoding.
type GobCodec struct{}

// NewGobCodec creates a gob codec.
func NewGobCodec() *GobCodec {
	return &GobCodec{}
}

// Encode implements Codec.Encode.
func (c *GobCodec) Encode(w io.Writer, state any) error {
	err := gob.NewEncoder(w).Encode(state)
	if err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *GobCodec) Decode(r io.Reader, state any) error {
	err := gob.NewDecoder(r).Decode(state)
	if err != nil {
		return fmt.Errorf("gob decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension.
func (c *GobCodec) Extension() string {
	return gobExtension
}
