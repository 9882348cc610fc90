package voxscene

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// voxReader is a little-endian cursor over an in-memory buffer with a sticky
// error. Once a read fails, every subsequent read returns zero values and the
// first error is kept, so parse functions can read a whole payload and check
// Err() once at the end.
type voxReader struct {
	data []byte
	pos  int
	base int // offset of data[0] in the original file buffer
	err  error
}

func newVoxReader(data []byte, base int) *voxReader {
	return &voxReader{data: data, base: base}
}

func (r *voxReader) failf(format string, args ...any) {
	if r.err == nil {
		r.err = parseErrorf(r.base+r.pos, format, args...)
	}
}

func (r *voxReader) Err() error { return r.err }

func (r *voxReader) Remaining() int { return len(r.data) - r.pos }

func (r *voxReader) ReadBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.failf("truncated: need %d bytes, have %d", n, len(r.data)-r.pos)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *voxReader) ReadUint8() uint8 {
	b := r.ReadBytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *voxReader) ReadUint32() uint32 {
	b := r.ReadBytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *voxReader) ReadInt32() int32 {
	return int32(r.ReadUint32())
}

// ReadString reads a length-prefixed string as used by .vox dicts.
func (r *voxReader) ReadString() string {
	n := r.ReadInt32()
	if r.err != nil {
		return ""
	}
	if n < 0 {
		r.failf("negative string length %d", n)
		return ""
	}
	return string(r.ReadBytes(int(n)))
}

// ReadDict reads a .vox DICT: an int32 pair count followed by key/value
// strings. Unknown keys are tolerated for forward compatibility.
func (r *voxReader) ReadDict() voxDict {
	d := voxDict{}
	n := r.ReadInt32()
	if r.err != nil {
		return d
	}
	if n < 0 {
		r.failf("negative dict size %d", n)
		return d
	}
	for i := int32(0); i < n; i++ {
		key := r.ReadString()
		val := r.ReadString()
		if r.err != nil {
			return d
		}
		if d.fields == nil {
			d.fields = map[string]string{}
		}
		d.fields[key] = val
	}
	return d
}

// RequireEOF fails the reader if the chunk payload has trailing bytes.
func (r *voxReader) RequireEOF(tag string) {
	if r.err == nil && r.Remaining() != 0 {
		r.failf("%d trailing bytes in %s chunk", r.Remaining(), tag)
	}
}

// voxDict holds the string key/value attributes of a parsed DICT.
type voxDict struct {
	fields map[string]string
}

func (d voxDict) String(key, def string) string {
	if v, ok := d.fields[key]; ok {
		return v
	}
	return def
}

func (d voxDict) Float(key string, def float32) float32 {
	v, ok := d.fields[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		return def
	}
	return float32(f)
}

func (d voxDict) Bool(key string, def bool) bool {
	switch d.fields[key] {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}

func (d voxDict) Int(key string, def int32) int32 {
	v, ok := d.fields[key]
	if !ok {
		return def
	}
	i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return def
	}
	return int32(i)
}

// Int3 parses a space-separated integer triple, as in the "_t" attribute.
func (d voxDict) Int3(key string, def [3]int32) [3]int32 {
	v, ok := d.fields[key]
	if !ok {
		return def
	}
	parts := strings.Fields(v)
	if len(parts) != 3 {
		return def
	}
	var out [3]int32
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return def
		}
		out[i] = int32(n)
	}
	return out
}
