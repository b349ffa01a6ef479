package frame

import "github.com/villas-go/villasnode/c37118/types"

// Context is a captured Config-2 frame used to drive format-dependent
// decoding/encoding of Data frames on the same stream, per spec §3. A
// rolling PMU index advances while a Data frame's PMUs are processed and
// resets at every frame boundary, so a Context can be reused safely across
// many Data frames without accumulating state between them.
type Context struct {
	cfg      types.Config2
	pmuIndex int
}

// NewContext captures cfg for use decoding/encoding subsequent Data
// frames.
func NewContext(cfg types.Config2) *Context {
	return &Context{cfg: cfg}
}

// Reset rewinds the rolling PMU index to the start of the frame.
func (c *Context) Reset() { c.pmuIndex = 0 }

// NumPMU returns the configured PMU count.
func (c *Context) NumPMU() int { return len(c.cfg.Pmus) }

func (c *Context) current() (types.PmuConfig1, bool) {
	if c.pmuIndex < 0 || c.pmuIndex >= len(c.cfg.Pmus) {
		return types.PmuConfig1{}, false
	}
	return c.cfg.Pmus[c.pmuIndex], true
}

// Format returns the current PMU's format bitmask.
func (c *Context) Format() (uint16, bool) {
	p, ok := c.current()
	if !ok {
		return 0, false
	}
	return p.Format, true
}

// Phnmr, Annmr, Dgnmr return the current PMU's phasor/analog/digital
// counts.
func (c *Context) Phnmr() (int, bool) {
	p, ok := c.current()
	if !ok {
		return 0, false
	}
	return len(p.PhInfo), true
}

func (c *Context) Annmr() (int, bool) {
	p, ok := c.current()
	if !ok {
		return 0, false
	}
	return len(p.AnInfo), true
}

func (c *Context) Dgnmr() (int, bool) {
	p, ok := c.current()
	if !ok {
		return 0, false
	}
	return len(p.DgInfo), true
}

// NextPMU advances the rolling PMU index.
func (c *Context) NextPMU() { c.pmuIndex++ }

// ContextFromConfig2 builds a Context from a decoded Config-2 frame. The
// caller decides when to install it (spec §3: "Config-2 frames install a
// new context used for subsequent Data frames on the same stream" is a
// stream-level policy, not something Decode does implicitly).
func ContextFromConfig2(c *types.Config2) *Context {
	return NewContext(*c)
}
