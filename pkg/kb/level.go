package kb

import (
	"fmt"
	"strings"
)

// Level is the severity of a safety decision. Levels form the ordered
// lattice Info < Warn < RequireInfo < Block.
type Level int

const (
	// Info lets the assistant proceed silently.
	Info Level = iota
	// Warn adds a cautionary note.
	Warn
	// RequireInfo asks a clarifying question first.
	RequireInfo
	// Block refuses and offers alternatives.
	Block
)

var levelNames = [...]string{"INFO", "WARN", "REQUIRE_INFO", "BLOCK"}

// String returns the wire name of the level.
func (l Level) String() string {
	if l < Info || l > Block {
		return levelNames[Info]
	}
	return levelNames[l]
}

// Weight is the position of the level in the lattice.
func (l Level) Weight() int {
	if l < Info || l > Block {
		return 0
	}
	return int(l)
}

// ParseLevel converts a level name to Level. Unknown names are
// reported with ok=false and map to Info.
func ParseLevel(s string) (Level, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	for i, v := range levelNames {
		if v == s {
			return Level(i), true
		}
	}
	return Info, false
}

// Max returns the more severe of two levels.
func Max(a, b Level) Level {
	if b.Weight() > a.Weight() {
		return b
	}
	return a
}

// MaxOf merges any number of levels. Empty input gives Info.
func MaxOf(levels ...Level) Level {
	res := Info
	for _, l := range levels {
		res = Max(res, l)
	}
	return res
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	lvl, ok := ParseLevel(string(b))
	if !ok {
		return fmt.Errorf("unknown block level %q", string(b))
	}
	*l = lvl
	return nil
}
