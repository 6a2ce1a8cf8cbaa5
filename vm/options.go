package vm

// DefaultStackSize is the default shadow stack capacity in slots.
const DefaultStackSize = 256 * 1024

// DefaultGCThreshold is the default number of allocations between
// opportunistic collections.
const DefaultGCThreshold = 10000

// Options configures an Engine.
type Options struct {
	// StackSize is the shadow stack capacity in Val slots.
	StackSize int

	// GCThreshold is the number of allocations after which the next
	// allocation triggers a collection. Zero selects DefaultGCThreshold; a
	// negative value disables opportunistic collection, leaving only
	// explicit Collect calls.
	GCThreshold int

	// ForceGC runs a full collection before every allocation. Slow, but
	// shakes out missing roots.
	ForceGC bool
}

// DefaultOptions returns the options NewEngine uses for zero fields.
func DefaultOptions() Options {
	return Options{
		StackSize:   DefaultStackSize,
		GCThreshold: DefaultGCThreshold,
	}
}

func (o Options) withDefaults() Options {
	if o.StackSize <= 0 {
		o.StackSize = DefaultStackSize
	}
	if o.GCThreshold == 0 {
		o.GCThreshold = DefaultGCThreshold
	}
	return o
}
