package schem

import (
	"fmt"
	"io"
)

// maxVarintLen32 is the longest encoding of a uint32 varint.
const maxVarintLen32 = 5

func appendUVarint(dst []byte, x uint32) []byte {
	v := x
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// zigzag maps a signed 32-bit value onto the unsigned range using
// two's-complement wraparound, matching the game client's decoder.
func zigzag(n int32) uint32 {
	return uint32((n << 1) ^ (n >> 31))
}

func unzigzag(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}

// Writer is an append-only byte sink with the primitives the schematic
// container is built from.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer { return &Writer{buf: make([]byte, 0, 256)} }

// Varint writes v as an unsigned base-128 little-endian varint.
func (w *Writer) Varint(v uint32) {
	w.buf = appendUVarint(w.buf, v)
}

// Zigzag writes a signed value as a zigzag varint.
func (w *Writer) Zigzag(n int32) {
	w.Varint(zigzag(n))
}

// Bytes writes a zigzag length prefix followed by b.
func (w *Writer) Bytes(b []byte) {
	w.Zigzag(int32(len(b)))
	w.buf = append(w.buf, b...)
}

// Str writes the UTF-8 bytes of s with a length prefix.
func (w *Writer) Str(s string) {
	w.Bytes([]byte(s))
}

func (w *Writer) U8(v int) {
	w.buf = append(w.buf, byte(v&0xFF))
}

// Raw appends b verbatim.
func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *Writer) Len() int { return len(w.buf) }

// Finalize returns a copy of everything written so far.
func (w *Writer) Finalize() []byte {
	out := make([]byte, len(w.buf))
	copy(out, w.buf)
	return out
}

// Reader walks a buffer produced by Writer.
type Reader struct {
	data []byte
	pos  int
}

func NewReader(b []byte) *Reader { return &Reader{data: b} }

func (r *Reader) Varint() (uint32, error) {
	var x uint32
	var s uint
	for i := 0; i < maxVarintLen32; i++ {
		if r.pos >= len(r.data) {
			return 0, fmt.Errorf("varint at %d: %w", r.pos, io.ErrUnexpectedEOF)
		}
		b := r.data[r.pos]
		r.pos++
		if i == maxVarintLen32-1 && b > 0x0F {
			return 0, fmt.Errorf("varint at %d overflows 32 bits: %w", r.pos-maxVarintLen32, ErrMalformed)
		}
		if b < 0x80 {
			return x | uint32(b)<<s, nil
		}
		x |= uint32(b&0x7F) << s
		s += 7
	}
	return 0, fmt.Errorf("varint at %d: %w", r.pos-maxVarintLen32, ErrMalformed)
}

func (r *Reader) Zigzag() (int32, error) {
	v, err := r.Varint()
	if err != nil {
		return 0, err
	}
	return unzigzag(v), nil
}

// Bytes reads a length-prefixed byte field. The returned slice aliases the
// underlying buffer.
func (r *Reader) Bytes() ([]byte, error) {
	n, err := r.Zigzag()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("negative field length %d: %w", n, ErrMalformed)
	}
	return r.Raw(int(n))
}

func (r *Reader) Str() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) U8() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("byte at %d: %w", r.pos, io.ErrUnexpectedEOF)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *Reader) Raw(n int) ([]byte, error) {
	if n < 0 || n > len(r.data)-r.pos {
		return nil, fmt.Errorf("%d bytes at %d: %w", n, r.pos, io.ErrUnexpectedEOF)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) Remaining() int { return len(r.data) - r.pos }
