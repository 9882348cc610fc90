package voxscene

import "fmt"

// ParseError reports malformed, truncated or unsupported input bytes.
// A ParseError aborts the whole file load; no partial scene is returned.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("vox: parse error at offset %d: %s", e.Offset, e.Msg)
	}
	return fmt.Sprintf("vox: parse error: %s", e.Msg)
}

func parseErrorf(offset int, format string, args ...any) *ParseError {
	return &ParseError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// DanglingReferenceError reports a scene-graph record referencing an ID
// that was never defined anywhere in the file.
type DanglingReferenceError struct {
	Kind string // "node" or "model"
	From int32  // referencing node ID
	ID   int32  // missing ID
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("vox: node %d references undefined %s %d", e.From, e.Kind, e.ID)
}

// AtlasOverflowError reports more distinct materials in use than the atlas
// has addressable cells. Conformant files cannot trigger this (the palette
// itself has only 256 slots) but the invariant is checked anyway.
type AtlasOverflowError struct {
	Distinct int
	Capacity int
}

func (e *AtlasOverflowError) Error() string {
	return fmt.Sprintf("vox: %d distinct materials exceed atlas capacity of %d cells", e.Distinct, e.Capacity)
}

// ChunkWarning records an unknown chunk tag that was skipped during parsing.
// Warnings are non-fatal; they are collected on the Scene in file order.
type ChunkWarning struct {
	Tag    string
	Offset int
	Size   int
}

func (w ChunkWarning) String() string {
	return fmt.Sprintf("skipped unknown chunk %q (%d bytes) at offset %d", w.Tag, w.Size, w.Offset)
}
