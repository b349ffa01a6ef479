package frame

import "github.com/villas-go/villasnode/c37118/types"

// decodePhasor dispatches on the low two format bits (types.PhasorKind's
// order matches format&0x3 directly, per c37118/types's doc comment);
// encodePhasor dispatches on the Phasor's own Kind.
func encodePhasor(e *Encoder, p types.Phasor) {
	switch p.Kind {
	case types.PhasorRectInt16:
		e.I16(p.RealI16)
		e.I16(p.ImagI16)
	case types.PhasorPolarInt16:
		e.U16(p.MagU16)
		e.I16(p.PhaseI16)
	case types.PhasorRectFloat32:
		e.F32(p.RealF32)
		e.F32(p.ImagF32)
	case types.PhasorPolarFloat32:
		e.F32(p.MagF32)
		e.F32(p.PhaseF32)
	}
}

func decodePhasor(d *Decoder, format uint16) (types.Phasor, error) {
	kind := types.PhasorKind(format & 0x3)
	var p types.Phasor
	p.Kind = kind
	var err error
	switch kind {
	case types.PhasorRectInt16:
		if p.RealI16, err = d.I16(); err != nil {
			return p, err
		}
		p.ImagI16, err = d.I16()
	case types.PhasorPolarInt16:
		if p.MagU16, err = d.U16(); err != nil {
			return p, err
		}
		p.PhaseI16, err = d.I16()
	case types.PhasorRectFloat32:
		if p.RealF32, err = d.F32(); err != nil {
			return p, err
		}
		p.ImagF32, err = d.F32()
	case types.PhasorPolarFloat32:
		if p.MagF32, err = d.F32(); err != nil {
			return p, err
		}
		p.PhaseF32, err = d.F32()
	}
	return p, err
}

func encodeAnalog(e *Encoder, a types.Analog) {
	if a.Kind == types.AnalogFloat32 {
		e.F32(a.F32)
	} else {
		e.I16(a.I16)
	}
}

func decodeAnalog(d *Decoder, format uint16) (types.Analog, error) {
	var a types.Analog
	var err error
	if format&types.FormatAnalogF32 != 0 {
		a.Kind = types.AnalogFloat32
		a.F32, err = d.F32()
	} else {
		a.Kind = types.AnalogInt16
		a.I16, err = d.I16()
	}
	return a, err
}

func encodeFreq(e *Encoder, f types.Freq) {
	if f.Kind == types.FreqFloat32 {
		e.F32(f.F32)
	} else {
		e.I16(f.I16)
	}
}

func decodeFreq(d *Decoder, format uint16) (types.Freq, error) {
	var f types.Freq
	var err error
	if format&types.FormatFreqF32 != 0 {
		f.Kind = types.FreqFloat32
		f.F32, err = d.F32()
	} else {
		f.Kind = types.FreqInt16
		f.I16, err = d.I16()
	}
	return f, err
}

func encodePmuData(e *Encoder, p types.PmuData) {
	e.U16(p.Stat)
	for _, ph := range p.Phasor {
		encodePhasor(e, ph)
	}
	encodeFreq(e, p.Freq)
	encodeFreq(e, p.Dfreq)
	for _, a := range p.Analog {
		encodeAnalog(e, a)
	}
	for _, dg := range p.Digital {
		e.U16(dg)
	}
}

func decodePmuData(d *Decoder, ctx *Context) (types.PmuData, error) {
	var out types.PmuData
	format, ok := ctx.Format()
	if !ok {
		return out, errf(StatusMissingConfig, "decodePmuData")
	}
	nph, _ := ctx.Phnmr()
	nan, _ := ctx.Annmr()
	ndg, _ := ctx.Dgnmr()

	var err error
	if out.Stat, err = d.U16(); err != nil {
		return out, err
	}
	out.Phasor = make([]types.Phasor, nph)
	for i := 0; i < nph; i++ {
		if out.Phasor[i], err = decodePhasor(d, format); err != nil {
			return out, err
		}
	}
	if out.Freq, err = decodeFreq(d, format); err != nil {
		return out, err
	}
	if out.Dfreq, err = decodeFreq(d, format); err != nil {
		return out, err
	}
	out.Analog = make([]types.Analog, nan)
	for i := 0; i < nan; i++ {
		if out.Analog[i], err = decodeAnalog(d, format); err != nil {
			return out, err
		}
	}
	out.Digital = make([]uint16, ndg)
	for i := 0; i < ndg; i++ {
		if out.Digital[i], err = d.U16(); err != nil {
			return out, err
		}
	}
	return out, nil
}

// decodeData walks a Data frame's PMUs in context PMU order, per spec §3's
// Context contract; encodeData writes data.Pmus in slice order without
// consulting the context. The caller is responsible for calling
// ctx.Reset() at frame boundaries (Encode/DecodeFrame do this).
func encodeData(e *Encoder, data *types.Data) {
	for _, p := range data.Pmus {
		encodePmuData(e, p)
	}
}

func decodeData(d *Decoder, ctx *Context) (*types.Data, error) {
	if ctx == nil {
		return nil, errf(StatusMissingConfig, "decodeData")
	}
	out := &types.Data{Pmus: make([]types.PmuData, 0, ctx.NumPMU())}
	for i := 0; i < ctx.NumPMU(); i++ {
		p, err := decodePmuData(d, ctx)
		if err != nil {
			return nil, err
		}
		out.Pmus = append(out.Pmus, p)
		ctx.NextPMU()
	}
	return out, nil
}

func encodeChannelInfoVec(e *Encoder, infos []types.ChannelInfo) {
	for _, c := range infos {
		e.Name1(c.Name)
	}
}

func encodeDigitalInfoVec(e *Encoder, infos []types.DigitalInfo) {
	for _, dg := range infos {
		for _, name := range dg.Name {
			e.Name1(name)
		}
	}
}

func encodePmuConfig1(e *Encoder, p types.PmuConfig1) {
	e.Name1(p.Station)
	e.U16(p.IDCode)
	e.U16(p.Format)
	e.U16(uint16(len(p.PhInfo)))
	e.U16(uint16(len(p.AnInfo)))
	e.U16(uint16(len(p.DgInfo)))
	encodeChannelInfoVec(e, p.PhInfo)
	encodeChannelInfoVec(e, p.AnInfo)
	encodeDigitalInfoVec(e, p.DgInfo)
	for _, c := range p.PhInfo {
		e.U32(c.Unit)
	}
	for _, c := range p.AnInfo {
		e.U32(c.Unit)
	}
	for _, dg := range p.DgInfo {
		e.U32(dg.Unit)
	}
	e.U16(p.Fnom)
	e.U16(p.CfgCnt)
}

func decodePmuConfig1(d *Decoder) (types.PmuConfig1, error) {
	var p types.PmuConfig1
	var err error
	if p.Station, err = d.Name1(); err != nil {
		return p, err
	}
	if p.IDCode, err = d.U16(); err != nil {
		return p, err
	}
	if p.Format, err = d.U16(); err != nil {
		return p, err
	}
	var phnmr, annmr, dgnmr uint16
	if phnmr, err = d.U16(); err != nil {
		return p, err
	}
	if annmr, err = d.U16(); err != nil {
		return p, err
	}
	if dgnmr, err = d.U16(); err != nil {
		return p, err
	}
	p.PhInfo = make([]types.ChannelInfo, phnmr)
	for i := range p.PhInfo {
		if p.PhInfo[i].Name, err = d.Name1(); err != nil {
			return p, err
		}
	}
	p.AnInfo = make([]types.ChannelInfo, annmr)
	for i := range p.AnInfo {
		if p.AnInfo[i].Name, err = d.Name1(); err != nil {
			return p, err
		}
	}
	p.DgInfo = make([]types.DigitalInfo, dgnmr)
	for i := range p.DgInfo {
		for j := range p.DgInfo[i].Name {
			if p.DgInfo[i].Name[j], err = d.Name1(); err != nil {
				return p, err
			}
		}
	}
	for i := range p.PhInfo {
		if p.PhInfo[i].Unit, err = d.U32(); err != nil {
			return p, err
		}
	}
	for i := range p.AnInfo {
		if p.AnInfo[i].Unit, err = d.U32(); err != nil {
			return p, err
		}
	}
	for i := range p.DgInfo {
		if p.DgInfo[i].Unit, err = d.U32(); err != nil {
			return p, err
		}
	}
	if p.Fnom, err = d.U16(); err != nil {
		return p, err
	}
	if p.CfgCnt, err = d.U16(); err != nil {
		return p, err
	}
	return p, nil
}

func encodeConfig1(e *Encoder, c *types.Config1) {
	e.U32(c.TimeBase)
	e.U16(uint16(len(c.Pmus)))
	for _, p := range c.Pmus {
		encodePmuConfig1(e, p)
	}
	e.U16(c.DataRate)
}

func decodeConfig1(d *Decoder) (*types.Config1, error) {
	c := &types.Config1{}
	var err error
	if c.TimeBase, err = d.U32(); err != nil {
		return nil, err
	}
	var numpmu uint16
	if numpmu, err = d.U16(); err != nil {
		return nil, err
	}
	c.Pmus = make([]types.PmuConfig1, numpmu)
	for i := range c.Pmus {
		if c.Pmus[i], err = decodePmuConfig1(d); err != nil {
			return nil, err
		}
	}
	if c.DataRate, err = d.U16(); err != nil {
		return nil, err
	}
	return c, nil
}

func encodeHeader(e *Encoder, h *types.Header) {
	e.buf = append(e.buf, h.Data...)
}

func decodeHeader(d *Decoder) (*types.Header, error) {
	b, err := d.Bytes(d.Remaining())
	if err != nil {
		return nil, err
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return &types.Header{Data: cp}, nil
}

func encodeCommand(e *Encoder, c *types.Command) {
	e.U16(c.Cmd)
	e.buf = append(e.buf, c.Ext...)
}

func decodeCommand(d *Decoder) (*types.Command, error) {
	c := &types.Command{}
	var err error
	if c.Cmd, err = d.U16(); err != nil {
		return nil, err
	}
	ext, err := d.Bytes(d.Remaining())
	if err != nil {
		return nil, err
	}
	c.Ext = append([]byte(nil), ext...)
	return c, nil
}
