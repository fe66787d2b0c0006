package rules

import (
	"errors"
	"fmt"

	"github.com/hailam/rankwar/internal/board"
)

// Action identifies the kind of action being validated.
type Action int

const (
	ActionMove Action = iota
	ActionPromote
	ActionAttack
	ActionDemote
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionPromote:
		return "promote"
	case ActionAttack:
		return "attack"
	case ActionDemote:
		return "demote"
	default:
		return "unknown"
	}
}

// Reason explains why a target was rejected.
type Reason int

const (
	ReasonBlockedByOwnPiece Reason = iota
	ReasonNotLine
	ReasonOutOfRange
	ReasonNotAdjacentFriendly
	ReasonRankSumExceeded
	ReasonNoEnemy
	ReasonRankTooHigh
	ReasonNotAdjacent
	ReasonCellOccupied
	ReasonRankTooLow
)

// String returns a short identifier for the reason.
func (r Reason) String() string {
	switch r {
	case ReasonBlockedByOwnPiece:
		return "blocked_by_own_piece"
	case ReasonNotLine:
		return "not_straight_or_diagonal"
	case ReasonOutOfRange:
		return "out_of_range"
	case ReasonNotAdjacentFriendly:
		return "not_adjacent_friendly"
	case ReasonRankSumExceeded:
		return "rank_sum_exceeded"
	case ReasonNoEnemy:
		return "no_enemy"
	case ReasonRankTooHigh:
		return "rank_too_high"
	case ReasonNotAdjacent:
		return "not_adjacent"
	case ReasonCellOccupied:
		return "cell_occupied"
	case ReasonRankTooLow:
		return "rank_too_low"
	default:
		return "unknown"
	}
}

// InvalidTargetError is returned when a target cell violates the rule of the
// attempted action.
type InvalidTargetError struct {
	Action Action
	Reason Reason
	Target board.Cell
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid %s target %s: %s", e.Action, e.Target, e.Reason)
}

// Message returns the text shown to the player.
func (e *InvalidTargetError) Message() string {
	switch e.Reason {
	case ReasonBlockedByOwnPiece:
		return "Cell occupied by your piece."
	case ReasonNotLine:
		return "Moves must be straight or diagonal."
	case ReasonOutOfRange:
		return "Target is beyond this piece's movement range."
	case ReasonNotAdjacentFriendly:
		return "Promotion requires adjacent friendly piece."
	case ReasonRankSumExceeded:
		return "Cannot promote beyond rank 5."
	case ReasonNoEnemy:
		return "No enemy piece to attack."
	case ReasonRankTooHigh:
		return "Cannot attack an equal or higher-ranked piece."
	case ReasonNotAdjacent:
		if e.Action == ActionDemote {
			return "Demotion requires an adjacent empty cell."
		}
		return "Attack requires adjacent enemy piece."
	case ReasonCellOccupied:
		return "Demotion requires an empty cell."
	case ReasonRankTooLow:
		return "A rank-1 piece cannot be split."
	default:
		return "Invalid target."
	}
}

func invalid(a Action, r Reason, tx, ty int) error {
	return &InvalidTargetError{Action: a, Reason: r, Target: board.Cell{X: tx, Y: ty}}
}

// AsInvalidTarget unwraps err into an *InvalidTargetError.
func AsInvalidTarget(err error) (*InvalidTargetError, bool) {
	var it *InvalidTargetError
	if errors.As(err, &it) {
		return it, true
	}
	return nil, false
}
