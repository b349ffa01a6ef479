package frame

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/villas-go/villasnode/c37118/types"
)

// testStationConfig2 builds the literal Config-2 used across the S1/S2/S3
// scenarios: one PMU, station "TESTSTATION     ", idcode 1, format 0x0006
// (rectangular float32 phasors, float32 analogs, int16 freq/dfreq), 2
// phasor channels, 1 analog channel, no digital channels.
func testStationConfig2() *types.Config2 {
	return &types.Config2{Config1: types.Config1{
		TimeBase: 1000000,
		DataRate: 50,
		Pmus: []types.PmuConfig1{
			{
				Station: "TESTSTATION     ",
				IDCode:  1,
				Format:  0x0006,
				PhInfo:  []types.ChannelInfo{{}, {}},
				AnInfo:  []types.ChannelInfo{{}},
				Fnom:    0,
				CfgCnt:  0,
			},
		},
	}}
}

func testConfig2() *types.Config2 {
	return &types.Config2{Config1: types.Config1{
		TimeBase: 1000000,
		DataRate: 30,
		Pmus: []types.PmuConfig1{
			{
				Station: "STATION1",
				IDCode:  7,
				Format:  types.FormatPhasorF32,
				PhInfo:  []types.ChannelInfo{{Name: "VA", Unit: 0}},
				AnInfo:  []types.ChannelInfo{{Name: "AN1", Unit: 0}},
				DgInfo:  []types.DigitalInfo{{Name: [16]string{"D0"}, Unit: 0}},
				Fnom:    0,
				CfgCnt:  1,
			},
		},
	}}
}

func TestCRCKnownZero(t *testing.T) {
	if got := CRC(nil); got != 0xFFFF {
		t.Fatalf("CRC(nil) = %#x, want 0xffff", got)
	}
}

func TestConfig2RoundTrip(t *testing.T) {
	cfg := testConfig2()
	f := &types.Frame{Type: types.FrameConfig2, Version: 1, IDCode: 7, Config2: cfg}

	buf, err := EncodeFrame(f, nil)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	got, err := DecodeFrame(buf, nil)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got.Type != types.FrameConfig2 || got.IDCode != 7 {
		t.Fatalf("unexpected header: %+v", got)
	}
	if len(got.Config2.Pmus) != 1 || got.Config2.Pmus[0].Station != "STATION1" {
		t.Fatalf("unexpected pmu config: %+v", got.Config2.Pmus)
	}
}

func TestDataRoundTripUsesContext(t *testing.T) {
	cfg := testConfig2()
	ctx := ContextFromConfig2(cfg)

	data := &types.Data{Pmus: []types.PmuData{
		{
			Stat:   0,
			Phasor: []types.Phasor{{Kind: types.PhasorRectFloat32, RealF32: 1.5, ImagF32: -0.5}},
			Freq:   types.Freq{Kind: types.FreqInt16, I16: 2000},
			Dfreq:  types.Freq{Kind: types.FreqInt16, I16: 0},
			Analog: []types.Analog{{Kind: types.AnalogInt16, I16: 42}},
			Digital: []uint16{0xFFFF},
		},
	}}
	f := &types.Frame{Type: types.FrameData, Version: 1, IDCode: 7, Data: data}

	buf, err := EncodeFrame(f, ctx)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	got, err := DecodeFrame(buf, ctx)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(got.Data.Pmus) != 1 {
		t.Fatalf("expected 1 pmu, got %d", len(got.Data.Pmus))
	}
	p := got.Data.Pmus[0]
	if p.Phasor[0].RealF32 != 1.5 || p.Phasor[0].ImagF32 != -0.5 {
		t.Fatalf("unexpected phasor: %+v", p.Phasor[0])
	}
	if p.Analog[0].I16 != 42 {
		t.Fatalf("unexpected analog: %+v", p.Analog[0])
	}
}

func TestDecodeFrameToleratesTrailingBytes(t *testing.T) {
	cfg := testConfig2()
	f := &types.Frame{Type: types.FrameConfig2, Version: 1, IDCode: 7, Config2: cfg}

	buf, err := EncodeFrame(f, nil)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	// A stream transport hands DecodeFrame a buffer that may already
	// carry a following frame's bytes; framesize, not len(buf), delimits
	// the current frame.
	extended := append(append([]byte{}, buf...), buf...)

	got, err := DecodeFrame(extended, nil)
	if err != nil {
		t.Fatalf("DecodeFrame with trailing bytes: %v", err)
	}
	if got.Type != types.FrameConfig2 || got.IDCode != 7 {
		t.Fatalf("unexpected header: %+v", got)
	}
	if len(got.Config2.Pmus) != 1 || got.Config2.Pmus[0].Station != "STATION1" {
		t.Fatalf("unexpected pmu config: %+v", got.Config2.Pmus)
	}
}

func TestDecodeFrameShortBufferIsMissingBytes(t *testing.T) {
	cfg := testConfig2()
	f := &types.Frame{Type: types.FrameConfig2, Version: 1, IDCode: 7, Config2: cfg}

	buf, err := EncodeFrame(f, nil)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	truncated := buf[:len(buf)-1]
	if _, err := DecodeFrame(truncated, nil); StatusOf(err) != StatusMissingBytes {
		t.Fatalf("expected StatusMissingBytes, got %v", err)
	}
}

func TestDecodeFrameTinyFramesizeIsInvalidSlice(t *testing.T) {
	cfg := testConfig2()
	f := &types.Frame{Type: types.FrameConfig2, Version: 1, IDCode: 7, Config2: cfg}

	buf, err := EncodeFrame(f, nil)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	// Overwrite FRAMESIZE (bytes 2-3) with a value smaller than
	// headerLen+crcLen, which would back-slice past frameBuf's start.
	buf[2], buf[3] = 0, 1

	if _, err := DecodeFrame(buf, nil); StatusOf(err) != StatusInvalidSlice {
		t.Fatalf("expected StatusInvalidSlice, got %v", err)
	}
}

func TestDataFrameWithoutContextIsMissingConfig(t *testing.T) {
	f := &types.Frame{Type: types.FrameData, Data: &types.Data{}}
	if _, err := EncodeFrame(f, nil); StatusOf(err) != StatusMissingConfig {
		t.Fatalf("expected StatusMissingConfig, got %v", err)
	}
}

func TestCorruptChecksumLeavesContextUntouched(t *testing.T) {
	cfg := testConfig2()
	ctx := ContextFromConfig2(cfg)
	f := &types.Frame{Type: types.FrameData, Data: &types.Data{Pmus: []types.PmuData{
		{Phasor: []types.Phasor{{Kind: types.PhasorRectFloat32}}, Freq: types.Freq{Kind: types.FreqInt16}, Dfreq: types.Freq{Kind: types.FreqInt16}, Analog: []types.Analog{{Kind: types.AnalogInt16}}, Digital: []uint16{0}},
	}}}

	buf, err := EncodeFrame(f, ctx)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	buf[len(buf)-1] ^= 0xFF

	before := ctx.pmuIndex
	if _, err := DecodeFrame(buf, ctx); StatusOf(err) != StatusInvalidChecksum {
		t.Fatalf("expected StatusInvalidChecksum, got %v", err)
	}
	if ctx.pmuIndex != before {
		t.Fatalf("context was mutated on checksum failure: %d != %d", ctx.pmuIndex, before)
	}
}

func TestS1EncodeConfig2FrameSize(t *testing.T) {
	cfg := testStationConfig2()
	f := &types.Frame{Type: types.FrameConfig2, Version: 1, IDCode: 1, Config2: cfg}

	buf, err := EncodeFrame(f, nil)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	// pmuSize is one PMU's config record (Name1(16) + IDCode(2) +
	// Format(2) + phnmr/annmr/dgnmr(2 each) + 2 phasor names(32) + 1
	// analog name(16) + 2 phasor units(8) + 1 analog unit(4) + Fnom(2) +
	// CfgCnt(2)) preceded by the frame-level TimeBase(4) and NumPMU(2).
	const pmuSize = 4 + 2 + (16 + 2 + 2 + 2 + 2 + 2 + 32 + 16 + 8 + 4 + 2 + 2)
	want := 14 + pmuSize + 2 + 2
	if len(buf) != want {
		t.Fatalf("frame size = %d, want %d", len(buf), want)
	}
	if buf[0]>>4 != 0xA {
		t.Fatalf("sync leader high nibble = %#x, want 0xa", buf[0]>>4)
	}
	if types.FrameType(buf[1]>>4) != types.FrameConfig2 {
		t.Fatalf("type nibble = %#x, want %#x", buf[1]>>4, types.FrameConfig2)
	}
}

func TestS2DecodeConfig2ReportsFormat(t *testing.T) {
	cfg := testStationConfig2()
	f := &types.Frame{Type: types.FrameConfig2, Version: 1, IDCode: 1, Config2: cfg}

	buf, err := EncodeFrame(f, nil)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	got, err := DecodeFrame(buf, nil)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(got.Config2.Pmus) != 1 {
		t.Fatalf("num_pmu = %d, want 1", len(got.Config2.Pmus))
	}
	if got.Config2.Pmus[0].Format != 0x0006 {
		t.Fatalf("format = %#x, want 0x0006", got.Config2.Pmus[0].Format)
	}
}

func TestS3PhasorToComplexMatchesPolarInput(t *testing.T) {
	ctx := ContextFromConfig2(testStationConfig2())

	// format 0x0006 selects rectangular float32 phasors (format&0x3 == 2),
	// so the polar magnitude/phase given here are converted to their
	// rectangular wire representation before encoding; ToComplex on the
	// decoded value must still recover the original polar magnitude and
	// argument.
	polarToRect := func(mag, phase float64) types.Phasor {
		return types.Phasor{
			Kind:    types.PhasorRectFloat32,
			RealF32: float32(mag * math.Cos(phase)),
			ImagF32: float32(mag * math.Sin(phase)),
		}
	}

	data := &types.Data{Pmus: []types.PmuData{{
		Phasor: []types.Phasor{
			polarToRect(1.0, 0.0),
			polarToRect(1.0, math.Pi/2),
		},
		Freq:   types.Freq{Kind: types.FreqInt16, I16: 50000},
		Dfreq:  types.Freq{Kind: types.FreqInt16, I16: 0},
		Analog: []types.Analog{{Kind: types.AnalogFloat32, F32: 2.5}},
	}}}
	f := &types.Frame{Type: types.FrameData, IDCode: 1, Data: data}

	buf, err := EncodeFrame(f, ctx)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	got, err := DecodeFrame(buf, ctx)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}

	c := got.Data.Pmus[0].Phasor[1].ToComplex()
	if mag := cmplx.Abs(c); math.Abs(mag-1.0) > 1e-6 {
		t.Fatalf("magnitude = %v, want 1.0 +-1e-6", mag)
	}
	if arg := cmplx.Phase(c); math.Abs(arg-math.Pi/2) > 1e-6 {
		t.Fatalf("argument = %v, want pi/2 +-1e-6", arg)
	}
}

func TestS5DecodeDataFrameWithoutContextIsMissingConfig(t *testing.T) {
	cfg := testConfig2()
	ctx := ContextFromConfig2(cfg)
	f := &types.Frame{Type: types.FrameData, Data: &types.Data{Pmus: []types.PmuData{
		{Phasor: []types.Phasor{{Kind: types.PhasorRectFloat32}}, Freq: types.Freq{Kind: types.FreqInt16}, Dfreq: types.Freq{Kind: types.FreqInt16}, Analog: []types.Analog{{Kind: types.AnalogInt16}}, Digital: []uint16{0}},
	}}}
	buf, err := EncodeFrame(f, ctx)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	if _, err := DecodeFrame(buf, nil); StatusOf(err) != StatusMissingConfig {
		t.Fatalf("expected StatusMissingConfig, got %v", err)
	}
}

func TestUncommittedPlaceholderPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for uncommitted placeholder")
		}
	}()
	e := NewEncoder()
	e.ReserveU16()
	e.Bytes()
}

func TestConfig3IsUnimplementedNotPanic(t *testing.T) {
	f := &types.Frame{Type: types.FrameConfig3, Config3: &types.Config3{}}
	if _, err := EncodeFrame(f, nil); StatusOf(err) != StatusUnimplemented {
		t.Fatalf("expected StatusUnimplemented, got %v", err)
	}
}
