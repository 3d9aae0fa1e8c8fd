package validate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Faultbox/meshlint/pkg/formats"
)

const binScene = `{"asset":{"version":"2.0"},"meshes":[{"primitives":[{}]}],` +
	`"buffers":[{"byteLength":6}],"bufferViews":[{"buffer":0,"byteLength":6}]}`

func TestValidateGLB_Valid(t *testing.T) {
	var buf bytes.Buffer
	if err := formats.EncodeGLB(&buf, []byte(binScene), make([]byte, 6)); err != nil {
		t.Fatalf("EncodeGLB failed: %v", err)
	}

	r := newTestValidator().ValidateGLB("model.glb", buf.Bytes(), t.TempDir())
	if !r.Passed || len(r.Findings) != 0 {
		t.Fatalf("expected clean pass, got %v", r.Findings)
	}
	if r.Stats.BinaryChunk != 8 {
		t.Errorf("binary chunk = %d, want 8", r.Stats.BinaryChunk)
	}
	if r.Stats.Buffers != 1 {
		t.Errorf("buffers = %d, want 1", r.Stats.Buffers)
	}
}

func TestValidateGLB_BadMagic(t *testing.T) {
	data := createTestGLB(0, jsonChunk(minimalScene))
	copy(data, "XXXX")

	r := newTestValidator().ValidateGLB("model.glb", data, "")
	if r.Passed {
		t.Error("expected failure")
	}
	if len(r.Findings) != 1 || r.Findings[0].Code != CodeBadMagic {
		t.Errorf("findings = %v, want single BadMagic", r.Findings)
	}
	if r.Stats.Meshes != 0 {
		t.Error("no scene should be decoded after bad magic")
	}
}

func TestValidateGLB_LengthMismatch(t *testing.T) {
	// 12 header + 8 chunk header + 70 payload = 90 bytes.
	const scene = `{"asset":{"version":"2.0"},"meshes":[{"primitives":[{}]}]}`
	doc := scene + strings.Repeat(" ", 70-len(scene))
	data := createTestGLB(100, testChunk{tag: "JSON", payload: []byte(doc)})
	if len(data) != 90 {
		t.Fatalf("fixture is %d bytes, want 90", len(data))
	}

	r := newTestValidator().ValidateGLB("model.glb", data, "")
	if !r.Passed {
		t.Errorf("length mismatch alone must pass, got %v", r.Findings)
	}
	if !hasFinding(r, CodeLengthMismatch) {
		t.Fatalf("expected LengthMismatch, got %v", r.Findings)
	}
	if findingSeverity(t, r, CodeLengthMismatch) != SeverityWarning {
		t.Error("LengthMismatch should be a warning")
	}
}

func TestValidateGLB_Errors(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		codes []string
	}{
		{
			name:  "short header",
			data:  []byte("glTF\x02\x00"),
			codes: []string{CodeTruncatedHeader},
		},
		{
			name:  "binary first",
			data:  createTestGLB(0, binChunk(4), jsonChunk(minimalScene)),
			codes: []string{CodeFirstChunkNotJSON},
		},
		{
			name:  "no chunks",
			data:  createTestGLB(0),
			codes: []string{CodeFirstChunkNotJSON},
		},
		{
			name:  "truncated json",
			data:  createTestGLB(0, jsonChunk(minimalScene))[:40],
			codes: []string{CodeLengthMismatch, CodeTruncatedChunk},
		},
		{
			name:  "missing bin chunk",
			data:  createTestGLB(0, jsonChunk(binScene)),
			codes: []string{CodeMissingBinaryPayload},
		},
		{
			name:  "malformed json chunk",
			data:  createTestGLB(0, jsonChunk(`{"asset":`)),
			codes: []string{CodeMalformedJSON},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestValidator().ValidateGLB("model.glb", tt.data, "")
			if r.Passed {
				t.Error("expected failure")
			}
			if len(r.Findings) != len(tt.codes) {
				t.Fatalf("findings = %v, want %v", r.Findings, tt.codes)
			}
			for i, code := range tt.codes {
				if r.Findings[i].Code != code {
					t.Errorf("finding %d = %s, want %s", i, r.Findings[i].Code, code)
				}
			}
		})
	}
}

func TestValidateGLB_TruncatedBinKeepsSceneFindings(t *testing.T) {
	doc := `{"asset":{"version":"2.0"},"meshes":[{"primitives":[{}]}],` +
		`"buffers":[{"byteLength":16}],"bufferViews":[{"buffer":3,"byteLength":16}]}`
	data := createTestGLB(0, jsonChunk(doc), binChunk(16))
	data = data[:len(data)-4]

	r := newTestValidator().ValidateGLB("model.glb", data, "")
	if !hasFinding(r, CodeInvalidBufferReference) {
		t.Errorf("scene checks should still run: %v", r.Findings)
	}
	if !hasFinding(r, CodeTruncatedChunk) {
		t.Errorf("expected TruncatedChunk, got %v", r.Findings)
	}
	if hasFinding(r, CodeMissingBinaryPayload) {
		t.Error("binary payload checks should be skipped after truncation")
	}
}

func TestValidateGLB_ChunkWarnings(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		code string
	}{
		{
			name: "bin larger than padding",
			data: createTestGLB(0, jsonChunk(binScene), binChunk(12)),
			code: CodeBufferChunkSizeMismatch,
		},
		{
			name: "bin smaller than buffer",
			data: createTestGLB(0, jsonChunk(binScene), binChunk(4)),
			code: CodeBufferChunkSizeMismatch,
		},
		{
			name: "padding after last chunk",
			data: append(createTestGLB(0, jsonChunk(minimalScene)), 0, 0, 0, 0),
			code: CodeLengthMismatch,
		},
		{
			name: "unexpected second chunk",
			data: createTestGLB(0, jsonChunk(minimalScene), testChunk{tag: "EXTR", payload: make([]byte, 4)}),
			code: CodeUnexpectedChunk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestValidator().ValidateGLB("model.glb", tt.data, "")
			if !r.Passed {
				t.Errorf("expected pass, got %v", r.Findings)
			}
			if !hasFinding(r, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, r.Findings)
			}
		})
	}
}

func TestValidateGLB_UnsupportedVersion(t *testing.T) {
	data := createTestGLB(0, jsonChunk(minimalScene))
	data[4] = 1

	r := newTestValidator().ValidateGLB("model.glb", data, "")
	if !r.Passed {
		t.Errorf("version warning alone must pass, got %v", r.Findings)
	}
	if !hasFinding(r, CodeUnsupportedVersion) {
		t.Errorf("expected UnsupportedVersion, got %v", r.Findings)
	}
}

func TestChunkFits(t *testing.T) {
	tests := []struct {
		byteLength, chunkLen uint64
		want                 bool
	}{
		{6, 6, true},
		{6, 8, true},
		{6, 5, false},
		{6, 12, false},
		{8, 8, true},
		{8, 9, false},
		{0, 0, true},
	}
	for _, tt := range tests {
		if got := chunkFits(tt.byteLength, tt.chunkLen); got != tt.want {
			t.Errorf("chunkFits(%d, %d) = %v, want %v", tt.byteLength, tt.chunkLen, got, tt.want)
		}
	}
}
