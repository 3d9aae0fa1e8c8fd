package validate

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/meshlint/pkg/encoding"
	"github.com/Faultbox/meshlint/pkg/formats"
)

// ValidateGLB validates a binary glTF container. The JSON chunk goes through
// the same scene checks as a .gltf file, followed by the checks that tie
// buffers to the binary chunk.
func (v *Validator) ValidateGLB(file string, data []byte, baseDir string) Report {
	r := newReport(file, FormatBinaryScene)

	glb, err := formats.ParseGLB(data)
	if glb == nil {
		if errors.Is(err, formats.ErrInvalidGLBMagic) {
			r.errorf(CodeBadMagic, "not a GLB container: expected magic \"glTF\"")
		} else {
			r.errorf(CodeTruncatedHeader, "%v", err)
		}
		return r.finish()
	}

	if glb.Header.Version != formats.GLBVersion {
		r.warnf(CodeUnsupportedVersion, "container version %d, expected %d", glb.Header.Version, formats.GLBVersion)
	}
	if glb.LengthMismatch() {
		r.warnf(CodeLengthMismatch, "header declares %d bytes, stream has %d", glb.Header.Length, glb.ActualLength)
	}

	if errors.Is(err, formats.ErrFirstChunkNotJSON) {
		r.errorf(CodeFirstChunkNotJSON, "%v", err)
		return r.finish()
	}

	truncated := errors.Is(err, formats.ErrTruncatedGLBChunk)
	jc := glb.JSONChunk()
	if jc == nil {
		r.errorf(CodeTruncatedChunk, "%v", err)
		return r.finish()
	}
	r.Stats.JSONChunk = jc.Length

	scene, perr := formats.ParseGLTF(encoding.TrimChunkPadding(jc.Payload))
	if perr != nil {
		r.errorf(CodeMalformedJSON, "JSON chunk: %v", perr)
	} else {
		fillSceneStats(&r.Stats, scene)
		r.add(v.checkScene(scene, baseDir, sourceGLB)...)
	}

	if truncated {
		r.errorf(CodeTruncatedChunk, "%v", err)
		return r.finish()
	}

	if len(glb.Chunks) > 1 && glb.Chunks[1].Kind != formats.ChunkBinary {
		r.warnf(CodeUnexpectedChunk, "second chunk has type %q, expected BIN", glb.Chunks[1].TypeString())
	}
	if glb.Trailing > 0 {
		v.log.Debug("ignoring bytes after last chunk", zap.String("file", file), zap.Int("bytes", glb.Trailing))
	}
	for i := 2; i < len(glb.Chunks); i++ {
		v.log.Debug("skipping extra chunk", zap.Int("chunk", i), zap.String("type", glb.Chunks[i].TypeString()))
	}

	bin := glb.BinaryChunk()
	if bin != nil {
		r.Stats.BinaryChunk = bin.Length
	}
	if scene != nil {
		checkBinaryPayload(r, scene, bin)
	}

	return r.finish()
}

// checkBinaryPayload ties buffers without a URI to the BIN chunk.
func checkBinaryPayload(r *Report, scene *formats.Scene, bin *formats.Chunk) {
	for i, buf := range scene.Buffers {
		if buf.URI != nil {
			continue
		}
		if bin == nil {
			r.errorf(CodeMissingBinaryPayload, "buffer %d has no uri and the container has no BIN chunk", i)
			continue
		}
		if !chunkFits(buf.ByteLength, uint64(bin.Length)) {
			r.warnf(CodeBufferChunkSizeMismatch, "buffer %d declares %d bytes, BIN chunk holds %d",
				i, buf.ByteLength, bin.Length)
		}
	}
}

// chunkFits reports whether a BIN chunk of chunkLen bytes holds a buffer of
// byteLength bytes plus at most the padding needed for 4-byte alignment.
func chunkFits(byteLength, chunkLen uint64) bool {
	aligned := (byteLength + 3) &^ 3
	return chunkLen >= byteLength && chunkLen <= aligned
}
