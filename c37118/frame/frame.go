// Package frame implements the IEEE C37.118 wire codec: framing, CRC,
// and per-message-type body encoding, grounded on
// original_source/lib/nodes/c37_118/parser.cpp.
package frame

import "github.com/villas-go/villasnode/c37118/types"

const (
	syncLeader  = 0xAA
	syncVerMask = 0x0F
	headerLen   = 2 + 2 + 2 + 4 + 4 // sync + framesize + idcode + soc + fracsec
	crcLen      = 2
)

// EncodeFrame serializes f, computing FRAMESIZE and CHK. ctx is required
// only for Data frames, since a Data frame's wire layout is driven
// entirely by the previously captured Config-2 context (spec §3); ctx is
// reset to the start of its PMU list before encoding begins.
func EncodeFrame(f *types.Frame, ctx *Context) ([]byte, error) {
	e := NewEncoder()

	e.U8(syncLeader)
	e.U8(byte(f.Type)<<4 | (f.Version & syncVerMask))
	sizePlaceholder := e.ReserveU16()
	e.U16(f.IDCode)
	e.U32(f.Soc)
	e.U32(f.Fracsec)

	switch f.Type {
	case types.FrameData:
		if ctx == nil {
			return nil, errf(StatusMissingConfig, "EncodeFrame")
		}
		if f.Data == nil {
			return nil, errf(StatusInvalidValue, "EncodeFrame")
		}
		ctx.Reset()
		encodeData(e, f.Data)
	case types.FrameHeader:
		if f.Header == nil {
			return nil, errf(StatusInvalidValue, "EncodeFrame")
		}
		encodeHeader(e, f.Header)
	case types.FrameConfig1:
		if f.Config1 == nil {
			return nil, errf(StatusInvalidValue, "EncodeFrame")
		}
		encodeConfig1(e, f.Config1)
	case types.FrameConfig2:
		if f.Config2 == nil {
			return nil, errf(StatusInvalidValue, "EncodeFrame")
		}
		encodeConfig1(e, &f.Config2.Config1)
	case types.FrameCommand:
		if f.Command == nil {
			return nil, errf(StatusInvalidValue, "EncodeFrame")
		}
		encodeCommand(e, f.Command)
	case types.FrameConfig3:
		return nil, errf(StatusUnimplemented, "EncodeFrame")
	default:
		return nil, errf(StatusInvalidValue, "EncodeFrame")
	}

	sizePlaceholder.Replace(uint64(e.Len() + crcLen))
	buf := e.Bytes()
	crc := CRC(buf)
	out := make([]byte, 0, len(buf)+crcLen)
	out = append(out, buf...)
	out = append(out, byte(crc>>8), byte(crc))
	return out, nil
}

// DecodeFrame parses a complete frame out of buf, verifying its CRC before
// dispatching to a per-type body decoder. ctx is required to decode Data
// frames and is left untouched if decoding fails at or before the CRC
// check (spec §7 S4: "a checksum failure leaves the context untouched").
func DecodeFrame(buf []byte, ctx *Context) (*types.Frame, error) {
	if len(buf) < headerLen+crcLen {
		return nil, errf(StatusMissingBytes, "DecodeFrame")
	}

	d := NewDecoder(buf)
	sync, err := d.U8()
	if err != nil {
		return nil, err
	}
	if sync != syncLeader {
		return nil, errf(StatusInvalidValue, "DecodeFrame")
	}
	typeVer, err := d.U8()
	if err != nil {
		return nil, err
	}
	frameType := types.FrameType(typeVer >> 4)
	version := typeVer & syncVerMask

	framesize, err := d.U16()
	if err != nil {
		return nil, err
	}
	// framesize below headerLen+crcLen would back-slice past the start of
	// frameBuf below; a stream transport may also hand DecodeFrame a
	// buffer carrying a following frame's bytes after this one (spec §3;
	// original_source/lib/nodes/c37_118/parser.cpp's Parser::deserialize
	// slices exactly contentsize/messagesize bytes and tolerates trailing
	// data), so only a short buffer is a missing-bytes error.
	if int(framesize) < headerLen+crcLen {
		return nil, errf(StatusInvalidSlice, "DecodeFrame")
	}
	if len(buf) < int(framesize) {
		return nil, errf(StatusMissingBytes, "DecodeFrame")
	}
	frameBuf := buf[:framesize]

	// CRC covers everything except the trailing checksum itself. All
	// subsequent body reads are bounded by frameBuf, not buf.
	body := frameBuf[:len(frameBuf)-crcLen]
	want := CRC(body)
	got := uint16(frameBuf[len(frameBuf)-2])<<8 | uint16(frameBuf[len(frameBuf)-1])
	if got != want {
		return nil, errf(StatusInvalidChecksum, "DecodeFrame")
	}

	f := &types.Frame{Version: version, Type: frameType}
	if f.IDCode, err = d.U16(); err != nil {
		return nil, err
	}
	if f.Soc, err = d.U32(); err != nil {
		return nil, err
	}
	if f.Fracsec, err = d.U32(); err != nil {
		return nil, err
	}

	// Body decoding reads out of the same Decoder, but must not run past
	// the checksum trailer.
	bodyDecoder := &Decoder{buf: body, pos: d.pos}

	switch frameType {
	case types.FrameData:
		if ctx == nil {
			return nil, errf(StatusMissingConfig, "DecodeFrame")
		}
		ctx.Reset()
		if f.Data, err = decodeData(bodyDecoder, ctx); err != nil {
			return nil, err
		}
	case types.FrameHeader:
		if f.Header, err = decodeHeader(bodyDecoder); err != nil {
			return nil, err
		}
	case types.FrameConfig1:
		if f.Config1, err = decodeConfig1(bodyDecoder); err != nil {
			return nil, err
		}
	case types.FrameConfig2:
		c1, derr := decodeConfig1(bodyDecoder)
		if derr != nil {
			return nil, derr
		}
		f.Config2 = &types.Config2{Config1: *c1}
	case types.FrameCommand:
		if f.Command, err = decodeCommand(bodyDecoder); err != nil {
			return nil, err
		}
	case types.FrameConfig3:
		return nil, errf(StatusUnimplemented, "DecodeFrame")
	default:
		return nil, errf(StatusInvalidValue, "DecodeFrame")
	}

	return f, nil
}
