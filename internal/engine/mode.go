package engine

import (
	"fmt"
	"strings"
)

// Mode selects what a click on a target cell does while a piece is selected.
type Mode int

const (
	ModeMove Mode = iota
	ModePromote
	ModeAttack
	ModeDemote
)

// Modes lists every mode in button order.
var Modes = []Mode{ModeMove, ModePromote, ModeAttack, ModeDemote}

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeMove:
		return "move"
	case ModePromote:
		return "promote"
	case ModeAttack:
		return "attack"
	case ModeDemote:
		return "demote"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= ModeMove && m <= ModeDemote
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "move", "m":
		return ModeMove, nil
	case "promote", "p":
		return ModePromote, nil
	case "attack", "a":
		return ModeAttack, nil
	case "demote", "d":
		return ModeDemote, nil
	}
	return ModeMove, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
