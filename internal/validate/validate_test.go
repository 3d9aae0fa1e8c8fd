package validate

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// minimalScene has an asset block and one renderable primitive.
const minimalScene = `{"asset":{"version":"2.0"},"meshes":[{"primitives":[{"attributes":{"POSITION":0}}]}]}`

func hasFinding(r Report, code string) bool {
	return r.Has(code)
}

func findingSeverity(t *testing.T, r Report, code string) Severity {
	t.Helper()
	for _, f := range r.Findings {
		if f.Code == code {
			return f.Severity
		}
	}
	t.Fatalf("no %s finding in %v", code, r.Findings)
	return 0
}

func newTestValidator() *Validator {
	return New(DefaultOptions(), nil)
}

type testChunk struct {
	tag     string
	payload []byte
}

// createTestGLB builds a GLB stream. A zero totalLength is replaced by the
// real length.
func createTestGLB(totalLength uint32, chunks ...testChunk) []byte {
	var body bytes.Buffer
	for _, c := range chunks {
		binary.Write(&body, binary.LittleEndian, uint32(len(c.payload)))
		var tag [4]byte
		copy(tag[:], c.tag)
		body.Write(tag[:])
		body.Write(c.payload)
	}

	if totalLength == 0 {
		totalLength = uint32(12 + body.Len())
	}

	var buf bytes.Buffer
	buf.WriteString("glTF")
	binary.Write(&buf, binary.LittleEndian, uint32(2))
	binary.Write(&buf, binary.LittleEndian, totalLength)
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func jsonChunk(doc string) testChunk {
	p := []byte(doc)
	for len(p)%4 != 0 {
		p = append(p, ' ')
	}
	return testChunk{tag: "JSON", payload: p}
}

func binChunk(n int) testChunk {
	return testChunk{tag: "BIN\x00", payload: make([]byte, n)}
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}
