// Package pathcfg is the configuration surface a path is built from,
// mirroring spec §6's "Path configuration surface". Parsing a
// configuration file is out of this codebase's scope (spec §1); Config is
// the seam a config loader would populate before calling path.New.
package pathcfg

// HookConfig names one hook to attach to a path and its priority/history
// window, mirroring the ordered "hooks" list of §6.
type HookConfig struct {
	Name     string
	Priority int
	History  int
}

// Config is the abstract, transport-agnostic surface described in §6:
// input node name, one or more output node names, an optional fixed rate,
// queue depth, sample width, and an ordered hook list.
type Config struct {
	In        string
	Out       []string
	Rate      float64 // Hz, 0 means inline emit
	QueueLen  int     // samples, power of two; spec default is implementation-defined >= 1024
	SampleLen int     // signal count per sample
	Hooks     []HookConfig
}

// DefaultQueueLen is used when a Config does not specify one, satisfying
// spec §6's "default implementation-defined >= 1024".
const DefaultQueueLen = 1024

// Normalize fills in defaults left zero-valued by a partially specified
// Config; it does not validate node names against a registry, since node
// lookup is outside this package's scope.
func (c *Config) Normalize() {
	if c.QueueLen == 0 {
		c.QueueLen = DefaultQueueLen
	}
	if c.SampleLen == 0 {
		c.SampleLen = 1
	}
}
