package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// testChunk describes a chunk for createTestGLB.
type testChunk struct {
	tag     [4]byte
	length  uint32 // declared length
	payload []byte // bytes actually written
}

// createTestGLB builds a GLB byte stream. A zero totalLength is replaced by
// the real stream length.
func createTestGLB(magic string, version, totalLength uint32, chunks ...testChunk) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString(magic)
	binary.Write(buf, binary.LittleEndian, version)
	binary.Write(buf, binary.LittleEndian, totalLength)

	for _, c := range chunks {
		binary.Write(buf, binary.LittleEndian, c.length)
		buf.Write(c.tag[:])
		buf.Write(c.payload)
	}

	data := buf.Bytes()
	if totalLength == 0 {
		binary.LittleEndian.PutUint32(data[8:], uint32(len(data)))
	}
	return data
}

func jsonChunk(s string) testChunk {
	return testChunk{tag: ChunkTypeJSON, length: uint32(len(s)), payload: []byte(s)}
}

func binChunk(b []byte) testChunk {
	return testChunk{tag: ChunkTypeBinary, length: uint32(len(b)), payload: b}
}

func TestParseGLB_Valid(t *testing.T) {
	bin := make([]byte, 16)
	data := createTestGLB("glTF", 2, 0, jsonChunk(`{"asset":{"version":"2.0"}}`), binChunk(bin))

	glb, err := ParseGLB(data)
	if err != nil {
		t.Fatalf("ParseGLB failed: %v", err)
	}

	if glb.Header.Version != 2 {
		t.Errorf("expected version 2, got %d", glb.Header.Version)
	}
	if glb.LengthMismatch() {
		t.Errorf("unexpected length mismatch: declared %d, actual %d", glb.Header.Length, glb.ActualLength)
	}
	if len(glb.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(glb.Chunks))
	}
	if glb.JSONChunk() == nil {
		t.Error("JSONChunk() returned nil")
	}
	if bc := glb.BinaryChunk(); bc == nil || bc.Length != 16 || len(bc.Payload) != 16 {
		t.Errorf("BinaryChunk() = %+v, expected 16 byte chunk", bc)
	}
}

func TestParseGLB_HeaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"bad magic", createTestGLB("XXXX", 2, 0, jsonChunk(`{}`)), ErrInvalidGLBMagic},
		{"empty", []byte{}, ErrTruncatedGLBHeader},
		{"short magic", []byte("gl"), ErrTruncatedGLBHeader},
		{"missing version", []byte("glTF"), ErrTruncatedGLBHeader},
		{"missing length", []byte("glTF\x02\x00\x00\x00"), ErrTruncatedGLBHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			glb, err := ParseGLB(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
			if glb != nil {
				t.Error("expected nil GLB on header error")
			}
		})
	}
}

func TestParseGLB_FirstChunkNotJSON(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"binary first", createTestGLB("glTF", 2, 0, binChunk(make([]byte, 4)))},
		{"no chunks", createTestGLB("glTF", 2, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			glb, err := ParseGLB(tt.data)
			if !errors.Is(err, ErrFirstChunkNotJSON) {
				t.Fatalf("got error %v, want ErrFirstChunkNotJSON", err)
			}
			if glb == nil || len(glb.Chunks) != 0 {
				t.Errorf("expected header-only partial result, got %+v", glb)
			}
		})
	}
}

func TestParseGLB_Truncated(t *testing.T) {
	t.Run("json payload", func(t *testing.T) {
		c := jsonChunk(`{"asset":{}}`)
		c.length = 64
		glb, err := ParseGLB(createTestGLB("glTF", 2, 0, c))
		if !errors.Is(err, ErrTruncatedGLBChunk) {
			t.Fatalf("got error %v, want ErrTruncatedGLBChunk", err)
		}
		if glb == nil || len(glb.Chunks) != 0 {
			t.Errorf("expected no complete chunks, got %+v", glb)
		}
	})

	t.Run("bin payload", func(t *testing.T) {
		bc := binChunk(make([]byte, 8))
		bc.length = 100
		glb, err := ParseGLB(createTestGLB("glTF", 2, 0, jsonChunk(`{"asset":{}}`), bc))
		if !errors.Is(err, ErrTruncatedGLBChunk) {
			t.Fatalf("got error %v, want ErrTruncatedGLBChunk", err)
		}
		if glb == nil || glb.JSONChunk() == nil {
			t.Fatal("completed JSON chunk should be kept")
		}
		if glb.BinaryChunk() != nil {
			t.Error("truncated BIN chunk should not be returned")
		}
	})

	t.Run("first chunk header", func(t *testing.T) {
		data := createTestGLB("glTF", 2, 0)
		data = append(data, 0x01, 0x02, 0x03)
		glb, err := ParseGLB(data)
		if !errors.Is(err, ErrTruncatedGLBChunk) {
			t.Fatalf("got error %v, want ErrTruncatedGLBChunk", err)
		}
		if glb == nil || len(glb.Chunks) != 0 {
			t.Errorf("expected no complete chunks, got %+v", glb)
		}
	})
}

func TestParseGLB_TrailingPadding(t *testing.T) {
	for _, n := range []int{1, 4, 7} {
		data := createTestGLB("glTF", 2, 0, jsonChunk(`{"asset":{}}`))
		data = append(data, make([]byte, n)...)

		glb, err := ParseGLB(data)
		if err != nil {
			t.Fatalf("%d trailing bytes: ParseGLB failed: %v", n, err)
		}
		if len(glb.Chunks) != 1 || glb.Trailing != n {
			t.Errorf("%d trailing bytes: chunks=%d trailing=%d", n, len(glb.Chunks), glb.Trailing)
		}
		if !glb.LengthMismatch() {
			t.Errorf("%d trailing bytes: expected length mismatch", n)
		}
	}

	// Eight bytes are a chunk header, so a missing payload is truncation.
	data := createTestGLB("glTF", 2, 0, jsonChunk(`{"asset":{}}`))
	data = append(data, 0x10, 0, 0, 0, 'B', 'I', 'N', 0)
	if _, err := ParseGLB(data); !errors.Is(err, ErrTruncatedGLBChunk) {
		t.Errorf("got error %v, want ErrTruncatedGLBChunk", err)
	}
}

func TestParseGLBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.glb")
	data := createTestGLB("glTF", 2, 0, jsonChunk(`{"asset":{"version":"2.0"}}`), binChunk(make([]byte, 4)))
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	glb, err := ParseGLBFile(path)
	if err != nil {
		t.Fatalf("ParseGLBFile failed: %v", err)
	}
	if glb.BinaryChunk() == nil {
		t.Error("expected a BIN chunk")
	}

	if _, err := ParseGLBFile(filepath.Join(t.TempDir(), "missing.glb")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseGLB_LengthMismatch(t *testing.T) {
	data := createTestGLB("glTF", 2, 100, jsonChunk(`{"asset":{"version":"2.0"}}`))

	glb, err := ParseGLB(data)
	if err != nil {
		t.Fatalf("ParseGLB failed: %v", err)
	}
	if !glb.LengthMismatch() {
		t.Errorf("expected mismatch: declared %d, actual %d", glb.Header.Length, glb.ActualLength)
	}
}

func TestParseGLB_OtherChunk(t *testing.T) {
	other := testChunk{tag: [4]byte{'E', 'X', 'T', 'R'}, length: 4, payload: []byte{1, 2, 3, 4}}
	glb, err := ParseGLB(createTestGLB("glTF", 2, 0, jsonChunk(`{}`), other))
	if err != nil {
		t.Fatalf("ParseGLB failed: %v", err)
	}
	if len(glb.Chunks) != 2 || glb.Chunks[1].Kind != ChunkOther {
		t.Errorf("expected trailing Other chunk, got %+v", glb.Chunks)
	}
	if glb.BinaryChunk() != nil {
		t.Error("Other chunk must not be returned as binary chunk")
	}
	if glb.Chunks[1].TypeString() != "EXTR" {
		t.Errorf("TypeString() = %q, want EXTR", glb.Chunks[1].TypeString())
	}
}

func TestEncodeGLB_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeGLB(&buf, []byte(`{"asset":{"version":"2.0"}}`), []byte{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("EncodeGLB failed: %v", err)
	}

	glb, err := ParseGLB(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseGLB failed: %v", err)
	}
	if glb.LengthMismatch() {
		t.Error("encoded header length should match")
	}
	if glb.JSONChunk().Length%4 != 0 || glb.BinaryChunk().Length != 8 {
		t.Errorf("chunks not padded: json %d, bin %d", glb.JSONChunk().Length, glb.BinaryChunk().Length)
	}
}

func TestChunkKind_String(t *testing.T) {
	tests := []struct {
		kind ChunkKind
		want string
	}{
		{ChunkJSON, "JSON"},
		{ChunkBinary, "BIN"},
		{ChunkOther, "Other"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
