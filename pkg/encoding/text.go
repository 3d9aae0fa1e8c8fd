// Package encoding provides text encoding utilities for mesh source files.
package encoding

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeText converts raw mesh source bytes to a UTF-8 string.
// A leading byte order mark selects the encoding (UTF-8, UTF-16LE or UTF-16BE)
// and is stripped. Without a BOM the data is read as UTF-8; invalid sequences
// become U+FFFD so they surface later as malformed tokens.
func DecodeText(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("decoding text: %w", err)
	}
	return string(result), nil
}

// HasBOM reports whether data starts with a UTF-8 or UTF-16 byte order mark.
func HasBOM(data []byte) bool {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return true
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return true
	}
	return false
}

// TrimChunkPadding removes the trailing spaces and null bytes that binary
// containers use to align chunk payloads to four bytes.
func TrimChunkPadding(data []byte) []byte {
	return bytes.TrimRight(data, " \x00")
}
