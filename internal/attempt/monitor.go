package attempt

import "strings"

// ViolationKind classifies an integrity violation. Each kind has its own counter.
type ViolationKind string

const (
	ViolationTab        ViolationKind = "tab"
	ViolationFullscreen ViolationKind = "fullscreen"
)

// BlockThreshold is the per-kind count at which an attempt gets blocked.
const BlockThreshold = 3

// Signal is a raw integrity signal reported by the client.
type Signal struct {
	Type string `json:"type"`          // visibility_hidden, blur, keydown, fullscreen_exit
	Key  string `json:"key,omitempty"` // key combination for keydown, e.g. "Alt+Tab"
}

// Signal types understood by Classify.
const (
	SignalVisibilityHidden = "visibility_hidden"
	SignalBlur             = "blur"
	SignalKeyDown          = "keydown"
	SignalFullscreenExit   = "fullscreen_exit"
)

var disallowedKeys = map[string]struct{}{
	"alt+tab":  {},
	"ctrl+tab": {},
	"ctrl+w":   {},
	"f11":      {},
}

// Classify maps a client signal to a violation kind. ok is false for signals
// that are not violations (harmless keys, unknown types).
func Classify(sig Signal) (kind ViolationKind, ok bool) {
	switch strings.ToLower(strings.TrimSpace(sig.Type)) {
	case SignalVisibilityHidden, SignalBlur:
		return ViolationTab, true
	case SignalFullscreenExit:
		return ViolationFullscreen, true
	case SignalKeyDown:
		if _, bad := disallowedKeys[normalizeCombo(sig.Key)]; bad {
			return ViolationTab, true
		}
	}
	return "", false
}

// normalizeCombo lowercases a key combination and spells modifiers one way:
// "Control + W" and "ctrl+w" both become "ctrl+w".
func normalizeCombo(combo string) string {
	parts := strings.Split(strings.ToLower(combo), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "control" {
			p = "ctrl"
		}
		parts[i] = p
	}
	return strings.Join(parts, "+")
}

// ViolationReport is the outcome of reporting one violation.
type ViolationReport struct {
	Kind              ViolationKind `json:"kind"`
	Count             int           `json:"count"`
	ShouldBlock       bool          `json:"should_block"`
	RequestFullscreen bool          `json:"request_fullscreen"`
}

// Monitor counts violations per kind for one active attempt. Counts are
// monotonic and are not deduplicated: a burst of identical events counts
// every event. The zero value is not usable; call NewMonitor.
type Monitor struct {
	counts    map[ViolationKind]int
	threshold int
}

// NewMonitor returns a monitor with all counters at zero.
func NewMonitor() *Monitor {
	return &Monitor{counts: make(map[ViolationKind]int, 2), threshold: BlockThreshold}
}

// Reset zeroes every counter. Only a fresh entry into the active state calls it.
func (m *Monitor) Reset() {
	for k := range m.counts {
		delete(m.counts, k)
	}
}

// Report counts one violation of kind.
func (m *Monitor) Report(kind ViolationKind) ViolationReport {
	m.counts[kind]++
	n := m.counts[kind]
	return ViolationReport{
		Kind:              kind,
		Count:             n,
		ShouldBlock:       n >= m.threshold,
		RequestFullscreen: kind == ViolationFullscreen,
	}
}

// Count returns the current count of kind.
func (m *Monitor) Count(kind ViolationKind) int {
	return m.counts[kind]
}

// Counts returns a copy of all counters.
func (m *Monitor) Counts() map[ViolationKind]int {
	out := make(map[ViolationKind]int, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}
