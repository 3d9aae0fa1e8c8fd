// Package formats provides parsers for 3D asset file formats.
// GLB (binary glTF) container parser.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// GLB format errors.
var (
	ErrInvalidGLBMagic    = errors.New("invalid GLB magic: expected 'glTF'")
	ErrTruncatedGLBHeader = errors.New("truncated GLB header")
	ErrTruncatedGLBChunk  = errors.New("truncated GLB chunk")
	ErrFirstChunkNotJSON  = errors.New("first GLB chunk is not JSON")
)

const (
	glbMagic       = "glTF"
	glbHeaderSize  = 12
	glbChunkHeader = 8

	// GLBVersion is the container version defined by glTF 2.0.
	GLBVersion = 2
)

// Chunk type tags.
var (
	ChunkTypeJSON   = [4]byte{'J', 'S', 'O', 'N'}
	ChunkTypeBinary = [4]byte{'B', 'I', 'N', 0}
)

// ChunkKind classifies a chunk by its type tag.
type ChunkKind int

// Chunk kinds.
const (
	ChunkOther  ChunkKind = iota // Unknown tag, skipped by readers
	ChunkJSON                    // Scene description
	ChunkBinary                  // Payload for buffers without a URI
)

// String returns a human-readable chunk kind name.
func (k ChunkKind) String() string {
	switch k {
	case ChunkJSON:
		return "JSON"
	case ChunkBinary:
		return "BIN"
	default:
		return "Other"
	}
}

// GLBHeader is the fixed 12-byte container header.
type GLBHeader struct {
	Magic   [4]byte
	Version uint32
	Length  uint32 // Declared total length including the header
}

// Chunk is a length-prefixed, typed segment of a GLB container.
type Chunk struct {
	Kind    ChunkKind
	Type    [4]byte
	Length  uint32 // Declared payload length
	Payload []byte // Exactly Length bytes for complete chunks
}

// TypeString returns the chunk tag with trailing nulls removed.
func (c *Chunk) TypeString() string {
	return string(bytes.TrimRight(c.Type[:], "\x00"))
}

// GLB is a parsed binary glTF container.
type GLB struct {
	Header       GLBHeader
	ActualLength int     // Number of bytes actually present
	Chunks       []Chunk // Complete chunks in file order
	Trailing     int     // Bytes after the last chunk, too few for a chunk header
}

// LengthMismatch reports whether the declared length disagrees with the
// actual byte count.
func (g *GLB) LengthMismatch() bool {
	return int64(g.Header.Length) != int64(g.ActualLength)
}

// JSONChunk returns the leading JSON chunk, or nil.
func (g *GLB) JSONChunk() *Chunk {
	if len(g.Chunks) == 0 || g.Chunks[0].Kind != ChunkJSON {
		return nil
	}
	return &g.Chunks[0]
}

// BinaryChunk returns the second chunk if it is binary-tagged, or nil.
func (g *GLB) BinaryChunk() *Chunk {
	if len(g.Chunks) < 2 || g.Chunks[1].Kind != ChunkBinary {
		return nil
	}
	return &g.Chunks[1]
}

// glbState tracks progress through the container.
type glbState int

const (
	stateStart glbState = iota
	stateMagicRead
	stateVersionRead
	stateTotalLengthRead
	stateChunkHeaderRead
	stateChunkPayloadRead
	stateDone
)

func (s glbState) String() string {
	switch s {
	case stateStart:
		return "Start"
	case stateMagicRead:
		return "MagicRead"
	case stateVersionRead:
		return "VersionRead"
	case stateTotalLengthRead:
		return "TotalLengthRead"
	case stateChunkHeaderRead:
		return "ChunkHeaderRead"
	case stateChunkPayloadRead:
		return "ChunkPayloadRead"
	case stateDone:
		return "Done"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

func chunkKind(tag [4]byte) ChunkKind {
	switch tag {
	case ChunkTypeJSON:
		return ChunkJSON
	case ChunkTypeBinary:
		return ChunkBinary
	default:
		return ChunkOther
	}
}

// ParseGLB parses a GLB container from raw bytes.
//
// Once the header has been read, errors still return a non-nil *GLB holding
// the header and every chunk completed before the failure: ErrTruncatedGLBChunk
// and ErrFirstChunkNotJSON are partial results. Header errors return nil.
func ParseGLB(data []byte) (*GLB, error) {
	r := bytes.NewReader(data)
	glb := &GLB{ActualLength: len(data)}

	state := stateStart
	var pending Chunk

	for state != stateDone {
		switch state {
		case stateStart:
			if _, err := io.ReadFull(r, glb.Header.Magic[:]); err != nil {
				return nil, fmt.Errorf("%w: reading magic", ErrTruncatedGLBHeader)
			}
			if string(glb.Header.Magic[:]) != glbMagic {
				return nil, ErrInvalidGLBMagic
			}
			state = stateMagicRead

		case stateMagicRead:
			if err := binary.Read(r, binary.LittleEndian, &glb.Header.Version); err != nil {
				return nil, fmt.Errorf("%w: reading version", ErrTruncatedGLBHeader)
			}
			state = stateVersionRead

		case stateVersionRead:
			if err := binary.Read(r, binary.LittleEndian, &glb.Header.Length); err != nil {
				return nil, fmt.Errorf("%w: reading length", ErrTruncatedGLBHeader)
			}
			state = stateTotalLengthRead

		case stateTotalLengthRead, stateChunkPayloadRead:
			if r.Len() == 0 {
				if len(glb.Chunks) == 0 {
					return glb, fmt.Errorf("%w: no chunks", ErrFirstChunkNotJSON)
				}
				state = stateDone
				continue
			}
			if r.Len() < glbChunkHeader {
				// Too short to be a chunk: alignment padding after the
				// last chunk. The declared length check reports it.
				if len(glb.Chunks) > 0 {
					glb.Trailing = r.Len()
					state = stateDone
					continue
				}
				return glb, fmt.Errorf("%w: chunk %d header needs %d bytes, %d remain",
					ErrTruncatedGLBChunk, len(glb.Chunks), glbChunkHeader, r.Len())
			}
			pending = Chunk{}
			binary.Read(r, binary.LittleEndian, &pending.Length)
			r.Read(pending.Type[:])
			pending.Kind = chunkKind(pending.Type)
			if len(glb.Chunks) == 0 && pending.Kind != ChunkJSON {
				return glb, fmt.Errorf("%w: got %q", ErrFirstChunkNotJSON, pending.TypeString())
			}
			state = stateChunkHeaderRead

		case stateChunkHeaderRead:
			if uint64(r.Len()) < uint64(pending.Length) {
				return glb, fmt.Errorf("%w: %s chunk declares %d bytes, %d remain",
					ErrTruncatedGLBChunk, pending.Kind, pending.Length, r.Len())
			}
			pending.Payload = make([]byte, pending.Length)
			io.ReadFull(r, pending.Payload)
			glb.Chunks = append(glb.Chunks, pending)
			state = stateChunkPayloadRead
		}
	}

	return glb, nil
}

// ParseGLBFile parses a GLB file from disk.
func ParseGLBFile(path string) (*GLB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GLB file: %w", err)
	}
	return ParseGLB(data)
}

// EncodeGLB writes a GLB container holding a JSON chunk and an optional
// binary chunk. Chunks are padded to four bytes and the header length is
// computed from the result.
func EncodeGLB(w io.Writer, jsonData, bin []byte) error {
	jsonPadded := pad4(jsonData, ' ')
	total := glbHeaderSize + glbChunkHeader + len(jsonPadded)
	var binPadded []byte
	if bin != nil {
		binPadded = pad4(bin, 0)
		total += glbChunkHeader + len(binPadded)
	}

	var buf bytes.Buffer
	buf.WriteString(glbMagic)
	binary.Write(&buf, binary.LittleEndian, uint32(GLBVersion))
	binary.Write(&buf, binary.LittleEndian, uint32(total))

	binary.Write(&buf, binary.LittleEndian, uint32(len(jsonPadded)))
	buf.Write(ChunkTypeJSON[:])
	buf.Write(jsonPadded)

	if bin != nil {
		binary.Write(&buf, binary.LittleEndian, uint32(len(binPadded)))
		buf.Write(ChunkTypeBinary[:])
		buf.Write(binPadded)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func pad4(data []byte, fill byte) []byte {
	out := append([]byte(nil), data...)
	for len(out)%4 != 0 {
		out = append(out, fill)
	}
	return out
}
