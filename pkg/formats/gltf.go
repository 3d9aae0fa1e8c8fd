// Package formats provides parsers for 3D asset file formats.
// glTF 2.0 JSON scene description.
package formats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// glTF format errors.
var (
	ErrMalformedJSON = errors.New("malformed glTF JSON")
)

// Asset is the glTF asset metadata block.
type Asset struct {
	Version    string `json:"version"`
	Generator  string `json:"generator,omitempty"`
	MinVersion string `json:"minVersion,omitempty"`
	Copyright  string `json:"copyright,omitempty"`
}

// Mesh is a glTF mesh. Primitive contents are not interpreted.
type Mesh struct {
	Name       string            `json:"name,omitempty"`
	Primitives []json.RawMessage `json:"primitives,omitempty"`
}

// Buffer is a glTF buffer. A nil URI means the payload lives in the GLB
// binary chunk.
type Buffer struct {
	URI        *string `json:"uri,omitempty"`
	ByteLength uint64  `json:"byteLength"`
	Name       string  `json:"name,omitempty"`
}

// IsDataURI reports whether the buffer is embedded as a data: URI.
func (b Buffer) IsDataURI() bool {
	return b.URI != nil && strings.HasPrefix(*b.URI, "data:")
}

// IsExternal reports whether the buffer references a separate file.
func (b Buffer) IsExternal() bool {
	return b.URI != nil && !b.IsDataURI()
}

// BufferView is a byte range into a buffer. A nil Buffer means the
// required "buffer" property was absent.
type BufferView struct {
	Buffer     *int64 `json:"buffer"`
	ByteOffset uint64 `json:"byteOffset,omitempty"`
	ByteLength uint64 `json:"byteLength"`
	ByteStride uint64 `json:"byteStride,omitempty"`
}

// Accessor describes typed data in a buffer view. Only BufferView is
// checked; the rest is kept for reporting.
type Accessor struct {
	BufferView    *int64 `json:"bufferView,omitempty"`
	ByteOffset    uint64 `json:"byteOffset,omitempty"`
	ComponentType int64  `json:"componentType"`
	Count         int64  `json:"count"`
	Type          string `json:"type"`
}

// Scene is a decoded glTF document. Optional top-level properties are nil
// when absent so presence can be distinguished from emptiness.
type Scene struct {
	Asset       *Asset            `json:"asset"`
	Scene       *int64            `json:"scene,omitempty"`
	Scenes      []json.RawMessage `json:"scenes,omitempty"`
	Nodes       []json.RawMessage `json:"nodes,omitempty"`
	Meshes      []Mesh            `json:"meshes,omitempty"`
	Materials   []json.RawMessage `json:"materials,omitempty"`
	Buffers     []Buffer          `json:"buffers,omitempty"`
	BufferViews []BufferView      `json:"bufferViews,omitempty"`
	Accessors   []Accessor        `json:"accessors,omitempty"`
}

// PrimitiveCount returns the total number of primitives over all meshes.
func (s *Scene) PrimitiveCount() int {
	n := 0
	for _, m := range s.Meshes {
		n += len(m.Primitives)
	}
	return n
}

// ParseGLTF decodes a glTF JSON document. The document must be a single
// JSON object; trailing data is rejected.
func ParseGLTF(data []byte) (*Scene, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var scene Scene
	if err := dec.Decode(&scene); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after document", ErrMalformedJSON)
	}
	return &scene, nil
}

// ParseGLTFFile parses a glTF file from disk.
func ParseGLTFFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading glTF file: %w", err)
	}
	return ParseGLTF(data)
}
