package frame

import (
	"encoding/binary"
	"math"
)

// Placeholder is a reserved region of the encoder's output buffer captured
// by position and width, to be filled in later once its true value is
// known (spec §4.C's "deferred-write primitive", used for framesize).
//
// A Placeholder must be committed via Replace before the Encoder's output
// is read; an Encoder that still has outstanding placeholders when Bytes
// is called panics, since that indicates a bug in the caller's encoding
// sequence rather than a recoverable protocol error (§9's design note: the
// reference implementation's Placeholder borrows the encoder's buffer by
// value, which only works because the underlying cursor is a raw shared
// pointer; here the Placeholder instead holds a pointer back to the same
// Encoder, so there is nothing to detach).
type Placeholder struct {
	enc   *Encoder
	pos   int
	width int
	done  bool
}

// Replace serializes v into the placeholder's reserved region. Replace can
// only be called once; v is constrained to the reserved width, and a value
// too large to fit is an encoder programming error, not a wire error,
// since framesize placeholders are always sized for the field they back.
func (p *Placeholder) Replace(v uint64) {
	if p.done {
		panic("frame: placeholder already committed")
	}
	switch p.width {
	case 2:
		if v > math.MaxUint16 {
			panic("frame: placeholder value overflows reserved width")
		}
		binary.BigEndian.PutUint16(p.enc.buf[p.pos:], uint16(v))
	default:
		panic("frame: unsupported placeholder width")
	}
	p.done = true
	p.enc.removePending(p)
}

// Encoder appends a C37.118 message to an internal byte buffer using
// big-endian primitives, per spec §4.C.
type Encoder struct {
	buf     []byte
	pending []*Placeholder
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) removePending(p *Placeholder) {
	for i, q := range e.pending {
		if q == p {
			e.pending = append(e.pending[:i], e.pending[i+1:]...)
			return
		}
	}
}

// Bytes returns the encoded buffer. It panics if any Placeholder reserved
// via this Encoder was never committed with Replace.
func (e *Encoder) Bytes() []byte {
	if len(e.pending) != 0 {
		panic("frame: encoder has uncommitted placeholders")
	}
	return e.buf
}

// Len reports the number of bytes written so far.
func (e *Encoder) Len() int { return len(e.buf) }

func (e *Encoder) U8(v uint8) { e.buf = append(e.buf, v) }

func (e *Encoder) U16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *Encoder) I16(v int16) { e.U16(uint16(v)) }

func (e *Encoder) U32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *Encoder) I32(v int32) { e.U32(uint32(v)) }

func (e *Encoder) F32(v float32) { e.U32(math.Float32bits(v)) }

// Name1 writes a fixed 16-byte, space-padded ASCII field, truncating
// values longer than 16 bytes.
func (e *Encoder) Name1(s string) {
	var b [16]byte
	for i := range b {
		b[i] = ' '
	}
	copy(b[:], s)
	e.buf = append(e.buf, b[:]...)
}

// Name3 writes a length-prefixed (u8) ASCII field, truncating values
// longer than 255 bytes.
func (e *Encoder) Name3(s string) {
	if len(s) > 255 {
		s = s[:255]
	}
	e.U8(uint8(len(s)))
	e.buf = append(e.buf, s...)
}

// ReserveU16 reserves two bytes for a value to be written later via the
// returned Placeholder's Replace method.
func (e *Encoder) ReserveU16() *Placeholder {
	p := &Placeholder{enc: e, pos: len(e.buf), width: 2}
	e.buf = append(e.buf, 0, 0)
	e.pending = append(e.pending, p)
	return p
}
