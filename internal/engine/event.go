package engine

import (
	"time"

	"github.com/hailam/rankwar/internal/board"
)

// EventKind identifies an engine transition.
type EventKind int

const (
	EventSelect EventKind = iota
	EventDeselect
	EventMove
	EventPromote
	EventAttack
	EventDemote
	EventEndTurn
	EventModeChange
	EventRejected
	EventGameOver
	EventReset
)

var eventNames = [...]string{
	EventSelect:     "select",
	EventDeselect:   "deselect",
	EventMove:       "move",
	EventPromote:    "promote",
	EventAttack:     "attack",
	EventDemote:     "demote",
	EventEndTurn:    "end_turn",
	EventModeChange: "mode_change",
	EventRejected:   "rejected",
	EventGameOver:   "game_over",
	EventReset:      "reset",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event describes one transition. Fields that do not apply to Kind are zero.
type Event struct {
	Kind   EventKind   `json:"kind"`
	GameID string      `json:"game_id"`
	Player board.Color `json:"player"`
	Mode   Mode        `json:"mode"`
	From   board.Cell  `json:"from"`
	To     board.Cell  `json:"to"`
	Cost   int         `json:"cost,omitempty"`

	// Rank is the resulting rank of the piece acted upon.
	Rank int `json:"rank,omitempty"`

	// Captured holds the pieces a move removed from the board.
	Captured []board.Piece `json:"captured,omitempty"`
	Killed   bool          `json:"killed,omitempty"`

	Winner   board.Color   `json:"winner"`
	Turn     int           `json:"turn"`
	Duration time.Duration `json:"duration,omitempty"`

	Err     error  `json:"-"`
	Message string `json:"message,omitempty"`
}

// Removed reports whether the event took pieces off the board.
func (ev Event) Removed() bool {
	return len(ev.Captured) > 0 || ev.Killed
}
