// Package rules implements the legality checks for moves, promotions,
// attacks and demotions. All functions are pure: they read the board and
// never modify it.
package rules

import "github.com/hailam/rankwar/internal/board"

// Fixed action costs, in movement points.
const (
	PromoteCost = 2
	AttackCost  = 1
	DemoteCost  = 1
)

// MovementRange returns how many cells a piece of the given rank may travel.
// Rank-1 pieces are the fastest.
func MovementRange(rank int) int {
	switch rank {
	case 1:
		return 5
	case 2:
		return 2
	default:
		return 1
	}
}

// MoveCost returns the budget spent moving a piece of the given rank over
// distance cells.
func MoveCost(rank, distance int) int {
	return rank * distance
}

func checkBounds(b *board.Board, tx, ty int) error {
	_, err := b.Get(tx, ty)
	return err
}

// HopVictim returns the cell of the enemy piece that a move of p to (tx, ty)
// jumps over. A hop needs a distance greater than one and an enemy on the
// first cell in the direction of travel.
func HopVictim(b *board.Board, p *board.Piece, tx, ty int) (board.Cell, bool) {
	if board.Distance(p.X, p.Y, tx, ty) <= 1 {
		return board.Cell{}, false
	}
	mx := p.X + board.Sign(tx-p.X)
	my := p.Y + board.Sign(ty-p.Y)
	mid := b.At(mx, my)
	if mid == nil || mid.Owner == p.Owner {
		return board.Cell{}, false
	}
	return board.Cell{X: mx, Y: my}, true
}

// CheckMove validates moving p to (tx, ty).
//
// The target must be on the board. A hop over an adjacent enemy is legal
// whatever the target holds and however far it is; otherwise the target must
// not hold a friendly piece and must lie on a straight or diagonal line within
// MovementRange.
func CheckMove(b *board.Board, p *board.Piece, tx, ty int) error {
	if err := checkBounds(b, tx, ty); err != nil {
		return err
	}
	if _, ok := HopVictim(b, p, tx, ty); ok {
		return nil
	}
	if target := b.At(tx, ty); target != nil && target.Owner == p.Owner {
		return invalid(ActionMove, ReasonBlockedByOwnPiece, tx, ty)
	}
	adx, ady := board.Abs(tx-p.X), board.Abs(ty-p.Y)
	if adx != 0 && ady != 0 && adx != ady {
		return invalid(ActionMove, ReasonNotLine, tx, ty)
	}
	if max(adx, ady) > MovementRange(p.Rank) {
		return invalid(ActionMove, ReasonOutOfRange, tx, ty)
	}
	return nil
}

// CanMove reports whether p may move to (tx, ty).
func CanMove(b *board.Board, p *board.Piece, tx, ty int) bool {
	return CheckMove(b, p, tx, ty) == nil
}

// PossibleMoves scans every offset within the piece's movement range and
// returns the legal targets in row-major order.
func PossibleMoves(b *board.Board, p *board.Piece) []board.Cell {
	r := MovementRange(p.Rank)
	var out []board.Cell
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			tx, ty := p.X+dx, p.Y+dy
			if CanMove(b, p, tx, ty) {
				out = append(out, board.Cell{X: tx, Y: ty})
			}
		}
	}
	return out
}

// CheckPromote validates merging p into the piece at (tx, ty).
func CheckPromote(b *board.Board, p *board.Piece, tx, ty int) error {
	if err := checkBounds(b, tx, ty); err != nil {
		return err
	}
	target := b.At(tx, ty)
	if target == nil || target == p || target.Owner != p.Owner || board.Distance(p.X, p.Y, tx, ty) != 1 {
		return invalid(ActionPromote, ReasonNotAdjacentFriendly, tx, ty)
	}
	if p.Rank+target.Rank > board.MaxRank {
		return invalid(ActionPromote, ReasonRankSumExceeded, tx, ty)
	}
	return nil
}

// PromoteTargets returns the adjacent friendly pieces p can merge into.
func PromoteTargets(b *board.Board, p *board.Piece) []board.Cell {
	return adjacentWhere(p, func(c board.Cell) bool {
		return CheckPromote(b, p, c.X, c.Y) == nil
	})
}

// CanPromote reports whether any adjacent friendly piece can absorb p.
func CanPromote(b *board.Board, p *board.Piece) bool {
	return len(PromoteTargets(b, p)) > 0
}

// CheckAttack validates p attacking the piece at (tx, ty). Only an adjacent
// enemy of strictly lower rank can be attacked.
func CheckAttack(b *board.Board, p *board.Piece, tx, ty int) error {
	if err := checkBounds(b, tx, ty); err != nil {
		return err
	}
	defender := b.At(tx, ty)
	if defender == nil || defender.Owner == p.Owner {
		return invalid(ActionAttack, ReasonNoEnemy, tx, ty)
	}
	if p.Rank <= defender.Rank {
		return invalid(ActionAttack, ReasonRankTooHigh, tx, ty)
	}
	if board.Distance(p.X, p.Y, tx, ty) != 1 {
		return invalid(ActionAttack, ReasonNotAdjacent, tx, ty)
	}
	return nil
}

// AttackTargets returns the adjacent enemies p can attack.
func AttackTargets(b *board.Board, p *board.Piece) []board.Cell {
	return adjacentWhere(p, func(c board.Cell) bool {
		return CheckAttack(b, p, c.X, c.Y) == nil
	})
}

// CanAttack reports whether p outranks an adjacent enemy. It follows the
// same rule CheckAttack enforces, so the Attack button is offered exactly
// when an attack would succeed.
func CanAttack(b *board.Board, p *board.Piece) bool {
	return len(AttackTargets(b, p)) > 0
}

// CheckDemote validates splitting a rank-1 piece off p into (tx, ty).
func CheckDemote(b *board.Board, p *board.Piece, tx, ty int) error {
	if err := checkBounds(b, tx, ty); err != nil {
		return err
	}
	if p.Rank <= board.MinRank {
		return invalid(ActionDemote, ReasonRankTooLow, tx, ty)
	}
	if b.At(tx, ty) != nil {
		return invalid(ActionDemote, ReasonCellOccupied, tx, ty)
	}
	if board.Distance(p.X, p.Y, tx, ty) != 1 {
		return invalid(ActionDemote, ReasonNotAdjacent, tx, ty)
	}
	return nil
}

// DemoteTargets returns the adjacent empty cells p can split into.
func DemoteTargets(b *board.Board, p *board.Piece) []board.Cell {
	return adjacentWhere(p, func(c board.Cell) bool {
		return CheckDemote(b, p, c.X, c.Y) == nil
	})
}

// CanDemote reports whether p can split into an adjacent empty cell.
func CanDemote(b *board.Board, p *board.Piece) bool {
	return len(DemoteTargets(b, p)) > 0
}

func adjacentWhere(p *board.Piece, keep func(board.Cell) bool) []board.Cell {
	var out []board.Cell
	for _, c := range board.Neighbors(p.X, p.Y) {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
