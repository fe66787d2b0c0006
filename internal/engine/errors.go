package engine

import (
	"errors"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/rules"
)

var (
	// ErrInsufficientMoves is returned when an action costs more than the
	// moves left this turn.
	ErrInsufficientMoves = errors.New("insufficient moves")

	// ErrNoSelection is returned when an action needs a selected piece.
	ErrNoSelection = errors.New("no piece selected")

	// ErrInvalidMode is returned for an unknown mode.
	ErrInvalidMode = errors.New("invalid mode")
)

// Describe converts an engine error into the message shown to the player.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if it, ok := rules.AsInvalidTarget(err); ok {
		return it.Message()
	}
	switch {
	case errors.Is(err, ErrInsufficientMoves):
		return "Not enough moves left for this action."
	case errors.Is(err, ErrNoSelection):
		return "Select one of your pieces first."
	case errors.Is(err, ErrInvalidMode):
		return "Unknown mode."
	case errors.Is(err, board.ErrOutOfBounds):
		return "That cell is off the board."
	}
	return err.Error()
}
