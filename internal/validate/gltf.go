package validate

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/meshlint/pkg/formats"
)

// sceneSource says where buffers without a URI get their bytes.
type sceneSource int

const (
	sourceJSON sceneSource = iota // .gltf: no embedded payload exists
	sourceGLB                     // .glb: the BIN chunk, checked by the caller
)

// ValidateGLTF validates a glTF JSON document. External buffer URIs are
// resolved against baseDir.
func (v *Validator) ValidateGLTF(file string, data []byte, baseDir string) Report {
	r := newReport(file, FormatJSONScene)

	scene, err := formats.ParseGLTF(data)
	if err != nil {
		r.errorf(CodeMalformedJSON, "%v", err)
		return r.finish()
	}

	fillSceneStats(&r.Stats, scene)
	r.add(v.checkScene(scene, baseDir, sourceJSON)...)
	return r.finish()
}

// ValidateScene runs the scene checks on an already decoded glTF document
// and returns the findings in check order.
func (v *Validator) ValidateScene(scene *formats.Scene, baseDir string) []Finding {
	return v.checkScene(scene, baseDir, sourceJSON)
}

func (v *Validator) checkScene(scene *formats.Scene, baseDir string, src sceneSource) []Finding {
	r := &Report{}

	// 1. Asset block.
	if scene.Asset == nil {
		r.errorf(CodeMissingAssetBlock, "required 'asset' block is missing")
	}

	// 2. At least one mesh with a primitive.
	if len(scene.Meshes) == 0 {
		r.errorf(CodeNoRenderablePrimitives, "no meshes declared")
	} else if scene.PrimitiveCount() == 0 {
		r.errorf(CodeNoRenderablePrimitives, "%d meshes declared but none has primitives", len(scene.Meshes))
	}

	// 3. Buffer payloads.
	for i, buf := range scene.Buffers {
		v.log.Debug("checking buffer", zap.String("buffer", describeBuffer(i, buf)))
		switch {
		case buf.IsDataURI():
			// Self-contained, not size-checked.
		case buf.IsExternal():
			checkExternalBuffer(r, i, buf, baseDir)
		case src == sourceJSON:
			r.errorf(CodeMissingBinaryPayload, "buffer %d has no uri and the file has no binary chunk", i)
		}
	}

	// 4. bufferView -> buffer.
	for i, bv := range scene.BufferViews {
		if bv.Buffer == nil {
			r.errorf(CodeInvalidBufferReference, "bufferView %d has no buffer index", i)
			continue
		}
		if idx := *bv.Buffer; idx < 0 || idx >= int64(len(scene.Buffers)) {
			r.errorf(CodeInvalidBufferReference, "bufferView %d references buffer %d, only %d declared",
				i, idx, len(scene.Buffers))
		}
	}

	// 5. accessor -> bufferView.
	for i, acc := range scene.Accessors {
		if acc.BufferView == nil {
			continue
		}
		if idx := *acc.BufferView; idx < 0 || idx >= int64(len(scene.BufferViews)) {
			r.errorf(CodeInvalidBufferViewReference, "accessor %d references bufferView %d, only %d declared",
				i, idx, len(scene.BufferViews))
		}
	}

	return r.Findings
}

func checkExternalBuffer(r *Report, i int, buf formats.Buffer, baseDir string) {
	uri := *buf.URI
	rel, err := url.PathUnescape(uri)
	if err != nil {
		rel = uri
	}
	path := filepath.Join(baseDir, filepath.FromSlash(rel))

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		r.errorf(CodeBufferFileMissing, "buffer %d file not found: %s", i, uri)
		return
	}

	if buf.ByteLength > 0 && uint64(info.Size()) != buf.ByteLength {
		r.warnf(CodeBufferSizeMismatch, "buffer %d file %s is %d bytes, byteLength declares %d",
			i, uri, info.Size(), buf.ByteLength)
	}
}

func fillSceneStats(s *Stats, scene *formats.Scene) {
	if scene.Asset != nil {
		s.AssetVersion = scene.Asset.Version
	}
	s.Meshes = len(scene.Meshes)
	s.Primitives = scene.PrimitiveCount()
	s.Buffers = len(scene.Buffers)
}

// describeBuffer is used in debug logs.
func describeBuffer(i int, buf formats.Buffer) string {
	switch {
	case buf.IsDataURI():
		return fmt.Sprintf("buffer %d (data uri, %d bytes)", i, buf.ByteLength)
	case buf.IsExternal():
		return fmt.Sprintf("buffer %d (%s, %d bytes)", i, *buf.URI, buf.ByteLength)
	default:
		return fmt.Sprintf("buffer %d (binary chunk, %d bytes)", i, buf.ByteLength)
	}
}
