package encoding

import (
	"bytes"
	"testing"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"plain utf8", []byte("v 1 2 3\n"), "v 1 2 3\n"},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "v 1 2 3\n"...), "v 1 2 3\n"},
		{"utf16le bom", []byte{0xFF, 0xFE, 'v', 0, ' ', 0, '1', 0}, "v 1"},
		{"utf16be bom", []byte{0xFE, 0xFF, 0, 'f', 0, ' ', 0, '2'}, "f 2"},
		{"empty", []byte{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.data)
			if err != nil {
				t.Fatalf("DecodeText failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasBOM(t *testing.T) {
	if !HasBOM([]byte{0xEF, 0xBB, 0xBF, 'v'}) {
		t.Error("expected UTF-8 BOM to be detected")
	}
	if !HasBOM([]byte{0xFF, 0xFE}) {
		t.Error("expected UTF-16LE BOM to be detected")
	}
	if HasBOM([]byte("v 1 2 3")) {
		t.Error("plain text should not report a BOM")
	}
}

func TestTrimChunkPadding(t *testing.T) {
	got := TrimChunkPadding([]byte(`{"asset":{}}   `))
	if !bytes.Equal(got, []byte(`{"asset":{}}`)) {
		t.Errorf("spaces not trimmed: %q", got)
	}

	got = TrimChunkPadding([]byte{1, 2, 0, 0})
	if !bytes.Equal(got, []byte{1, 2}) {
		t.Errorf("null bytes not trimmed: %v", got)
	}
}
