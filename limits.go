package toon

// Default resource ceilings. They bound adversarial documents and values so
// a single call cannot exhaust memory or CPU.
const (
	DefaultMaxDepth       = 64
	DefaultMaxArrayLength = 50000
	DefaultMaxTotalNodes  = 250000
)

// defaultDisallowedKeys are the canonical prototype-chain property names.
// They are rejected as object or tabular keys in both directions, regardless
// of strict mode.
var defaultDisallowedKeys = []string{"__proto__", "constructor", "prototype"}

// Limits configures the resource ceilings and key denylist shared by Encode
// and Decode. Zero fields take the package defaults; a nil DisallowedKeys
// means the default denylist, while an explicit empty slice disables it.
type Limits struct {
	MaxDepth       int      // maximum combined object/array nesting (default 64)
	MaxArrayLength int      // maximum elements per array or tabular block (default 50000)
	MaxTotalNodes  int      // maximum scalar/row-cell count per call (default 250000)
	DisallowedKeys []string // keys rejected unconditionally (default prototype-chain names)
}

// DefaultLimits returns the default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:       DefaultMaxDepth,
		MaxArrayLength: DefaultMaxArrayLength,
		MaxTotalNodes:  DefaultMaxTotalNodes,
		DisallowedKeys: defaultDisallowedKeys,
	}
}

// limitState is the per-call view of Limits: resolved ceilings, the denylist
// as a set, and the mutable node counter. It is never shared between calls.
type limitState struct {
	maxDepth       int
	maxArrayLength int
	maxTotalNodes  int
	denied         map[string]struct{}
	nodes          int
}

func newLimitState(l Limits) *limitState {
	s := &limitState{
		maxDepth:       l.MaxDepth,
		maxArrayLength: l.MaxArrayLength,
		maxTotalNodes:  l.MaxTotalNodes,
	}
	if s.maxDepth <= 0 {
		s.maxDepth = DefaultMaxDepth
	}
	if s.maxArrayLength <= 0 {
		s.maxArrayLength = DefaultMaxArrayLength
	}
	if s.maxTotalNodes <= 0 {
		s.maxTotalNodes = DefaultMaxTotalNodes
	}
	keys := l.DisallowedKeys
	if keys == nil {
		keys = defaultDisallowedKeys
	}
	s.denied = make(map[string]struct{}, len(keys))
	for _, k := range keys {
		s.denied[k] = struct{}{}
	}
	return s
}

func (s *limitState) keyAllowed(key string) bool {
	_, denied := s.denied[key]
	return !denied
}

// countNodes charges n scalar/cell units against the node budget.
func (s *limitState) countNodes(n int) error {
	s.nodes += n
	if s.nodes > s.maxTotalNodes {
		return errorf("node budget exceeded: more than %d nodes", s.maxTotalNodes)
	}
	return nil
}

func (s *limitState) checkDepth(depth int) error {
	if depth > s.maxDepth {
		return errorf("maximum depth %d exceeded", s.maxDepth)
	}
	return nil
}

func (s *limitState) checkArrayLength(n int) error {
	if n > s.maxArrayLength {
		return errorf("array length %d exceeds maximum %d", n, s.maxArrayLength)
	}
	return nil
}
