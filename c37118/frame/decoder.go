package frame

import (
	"encoding/binary"
	"math"
)

// Decoder reads a C37.118 message out of a byte slice using big-endian
// primitives, tracking how many bytes remain so that a truncated frame
// surfaces as StatusMissingBytes rather than a slice-bounds panic (spec
// §4.C, §7 S3).
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps buf for sequential decoding.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Pos reports the current read offset.
func (d *Decoder) Pos() int { return d.pos }

// Remaining reports how many bytes are left to read.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

func (d *Decoder) need(n int) error {
	if d.Remaining() < n {
		return errf(StatusMissingBytes, "decoder")
	}
	return nil
}

func (d *Decoder) U8() (uint8, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	v := d.buf[d.pos]
	d.pos++
	return v, nil
}

func (d *Decoder) U16() (uint16, error) {
	if err := d.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(d.buf[d.pos:])
	d.pos += 2
	return v, nil
}

func (d *Decoder) I16() (int16, error) {
	v, err := d.U16()
	return int16(v), err
}

func (d *Decoder) U32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *Decoder) I32() (int32, error) {
	v, err := d.U32()
	return int32(v), err
}

func (d *Decoder) F32() (float32, error) {
	v, err := d.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Name1 reads a fixed 16-byte ASCII field, trimming trailing spaces.
func (d *Decoder) Name1() (string, error) {
	if err := d.need(16); err != nil {
		return "", err
	}
	b := d.buf[d.pos : d.pos+16]
	d.pos += 16
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return string(b[:end]), nil
}

// Name3 reads a u8-length-prefixed ASCII field.
func (d *Decoder) Name3() (string, error) {
	n, err := d.U8()
	if err != nil {
		return "", err
	}
	if err := d.need(int(n)); err != nil {
		return "", err
	}
	s := string(d.buf[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s, nil
}

// Bytes reads n raw bytes.
func (d *Decoder) Bytes(n int) ([]byte, error) {
	if err := d.need(n); err != nil {
		return nil, err
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}
