// Package formats provides parsers for 3D asset file formats: Wavefront OBJ
// text meshes, glTF 2.0 JSON scene descriptions and GLB binary containers.
//
// Parsers take raw bytes and come in ParseX/ParseXFile pairs. Errors are
// sentinel values, wrapped with context, so callers can use errors.Is.
package formats
