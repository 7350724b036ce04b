// Package grid reads NTv2 and NTv1 binary datum-shift grid files.
//
// An NTv2 file contains an arbitrary number of sub-files, where each sub-file
// is a grid. There is at least one grid (the parent), and potentially many
// sub-grids of higher density. At the beginning is an overview header block of
// information common to all sub-files, then a header specific to each sub-file
// followed by that sub-file's cell data. NTv1 files use the same record layout
// with different record names, no sub-grids and no accuracy information, so a
// single reader handles both variants.
//
// Reference: https://github.com/Esri/ntv2-file-routines
package grid

import (
	"encoding/binary"
	"io"
	"math"
	"math/bits"
	"strings"
)

const (
	// recordLength is the size of a record, for both header and data records.
	// For header records this is the size of the key plus the size of the value.
	recordLength = 16

	// keyLength is the maximum number of characters for a key in a header record.
	keyLength = 8
)

// recordReader reads fixed-length records from a byte stream through an
// internal buffer. Byte order is detected once at stream start and applies
// to every subsequent integer and floating-point read.
type recordReader struct {
	src   io.Reader
	order binary.ByteOrder
	buf   []byte
	pos   int // First unread byte in buf
	limit int // End of valid bytes in buf
}

// newRecordReader creates a reader over src with the given buffer size.
// Records are small but may be many, so the buffer should be at least 4096 bytes.
func newRecordReader(src io.Reader, bufferSize int) *recordReader {
	if bufferSize < recordLength {
		bufferSize = 4096
	}
	return &recordReader{
		src:   src,
		order: binary.BigEndian,
		buf:   make([]byte, bufferSize),
	}
}

// ensure refills the buffer so that at least n bytes are available,
// or fails if the source is exhausted before n bytes could be buffered.
func (r *recordReader) ensure(n int) error {
	if r.limit-r.pos >= n {
		return nil
	}
	copy(r.buf, r.buf[r.pos:r.limit])
	r.limit -= r.pos
	r.pos = 0
	for r.limit < n {
		m, err := r.src.Read(r.buf[r.limit:])
		if m > 0 {
			r.limit += m
			continue
		}
		if err == io.EOF {
			return &ErrTruncated{Needed: n, Remaining: r.limit}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// detectOrder chooses the byte order from the integer field found at the given
// offset of the current record. That field is expected to be a small positive
// count (a header record count, usually 11 or 12), so of the two possible
// readings the unsigned-smaller one is the plausible interpretation. Must be
// called exactly once, before any other integer or floating-point read.
func (r *recordReader) detectOrder(probeOffset int) error {
	if err := r.ensure(probeOffset + 4); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(r.buf[r.pos+probeOffset:])
	if n > bits.ReverseBytes32(n) {
		r.order = binary.LittleEndian
	}
	return nil
}

// int32 reads a signed 32-bit integer. The caller must have ensured 4 bytes.
func (r *recordReader) int32() int32 {
	v := r.order.Uint32(r.buf[r.pos:])
	r.pos += 4
	return int32(v)
}

// float32 reads a 32-bit IEEE float. The caller must have ensured 4 bytes.
func (r *recordReader) float32() float32 {
	v := r.order.Uint32(r.buf[r.pos:])
	r.pos += 4
	return math.Float32frombits(v)
}

// float64 reads a 64-bit IEEE double. The caller must have ensured 8 bytes.
func (r *recordReader) float64() float64 {
	v := r.order.Uint64(r.buf[r.pos:])
	r.pos += 8
	return math.Float64frombits(v)
}

// ascii reads a fixed-length run of bytes as 7-bit ASCII, with trailing
// spaces and control bytes stripped. The caller must have ensured n bytes.
func (r *recordReader) ascii(n int) string {
	end := r.pos + n
	start := r.pos
	r.pos = end
	for end > start && r.buf[end-1] <= ' ' {
		end--
	}
	return strings.TrimSpace(string(r.buf[start:end]))
}

// skip advances past n already-buffered bytes.
func (r *recordReader) skip(n int) {
	r.pos += n
}
