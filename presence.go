package textrec

import "strings"

// Presence records where a cell's value came from.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Raw text appeared in the input.
	PresenceDefaultApplied                      // Default value was applied.
)

// Has reports whether all flags in f are set.
func (p Presence) Has(f Presence) bool { return p&f == f }

func (p Presence) String() string {
	var parts []string
	if p.Has(PresenceSeen) {
		parts = append(parts, "seen")
	}
	if p.Has(PresenceDefaultApplied) {
		parts = append(parts, "default")
	}
	if len(parts) == 0 {
		return "absent"
	}
	return strings.Join(parts, "|")
}
