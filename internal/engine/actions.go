package engine

import (
	"fmt"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/rules"
)

// put writes to a cell the rules package has already checked.
func (e *Engine) put(x, y int, p *board.Piece) {
	if err := e.board.Set(x, y, p); err != nil {
		panic(fmt.Sprintf("engine: unchecked cell: %v", err))
	}
}

// attemptMove relocates p to (tx, ty) for rank*distance moves. A hop removes
// the jumped enemy, and any piece on the landing cell is displaced.
func (e *Engine) attemptMove(p *board.Piece, tx, ty int) error {
	if err := rules.CheckMove(e.board, p, tx, ty); err != nil {
		return e.reject(err)
	}
	cost := rules.MoveCost(p.Rank, board.Distance(p.X, p.Y, tx, ty))
	if cost > e.movesLeft {
		return e.insufficient(cost)
	}

	from := p.Cell()
	var captured []board.Piece
	if victim, ok := rules.HopVictim(e.board, p, tx, ty); ok {
		captured = append(captured, *e.board.At(victim.X, victim.Y))
		e.put(victim.X, victim.Y, nil)
	}
	if occupant := e.board.At(tx, ty); occupant != nil {
		captured = append(captured, *occupant)
	}
	e.put(from.X, from.Y, nil)
	p.X, p.Y = tx, ty
	e.put(tx, ty, p)
	e.movesLeft -= cost
	e.clearSelection()
	e.message = ""

	e.log.Debugw("piece moved", "game", e.gameID, "player", e.turn, "from", from, "to", p.Cell(),
		"cost", cost, "captured", len(captured), "moves_left", e.movesLeft)
	e.emit(Event{Kind: EventMove, Player: e.turn, Mode: ModeMove, From: from, To: p.Cell(),
		Cost: cost, Rank: p.Rank, Captured: captured})
	e.checkGameOver()
	return nil
}

// attemptPromote merges p into the friendly piece at (tx, ty).
func (e *Engine) attemptPromote(p *board.Piece, tx, ty int) error {
	if err := rules.CheckPromote(e.board, p, tx, ty); err != nil {
		return e.reject(err)
	}
	if rules.PromoteCost > e.movesLeft {
		return e.insufficient(rules.PromoteCost)
	}

	target := e.board.At(tx, ty)
	from := p.Cell()
	e.put(from.X, from.Y, nil)
	target.Rank += p.Rank
	e.movesLeft -= rules.PromoteCost
	e.clearSelection()
	e.message = ""

	e.log.Debugw("piece promoted", "game", e.gameID, "player", e.turn, "from", from, "to", target.Cell(),
		"rank", target.Rank, "moves_left", e.movesLeft)
	e.emit(Event{Kind: EventPromote, Player: e.turn, Mode: ModePromote, From: from, To: target.Cell(),
		Cost: rules.PromoteCost, Rank: target.Rank})
	e.checkGameOver()
	return nil
}

// attemptAttack lowers the rank of the enemy at (tx, ty) by one, removing it
// at rank zero.
func (e *Engine) attemptAttack(p *board.Piece, tx, ty int) error {
	if err := rules.CheckAttack(e.board, p, tx, ty); err != nil {
		return e.reject(err)
	}
	if rules.AttackCost > e.movesLeft {
		return e.insufficient(rules.AttackCost)
	}

	defender := e.board.At(tx, ty)
	defender.Rank--
	killed := defender.Rank == 0
	var captured []board.Piece
	if killed {
		captured = append(captured, *defender)
		e.put(tx, ty, nil)
	}
	e.movesLeft -= rules.AttackCost
	e.clearSelection()
	e.message = ""

	e.log.Debugw("piece attacked", "game", e.gameID, "player", e.turn, "from", p.Cell(), "to", defender.Cell(),
		"rank", defender.Rank, "killed", killed, "moves_left", e.movesLeft)
	e.emit(Event{Kind: EventAttack, Player: e.turn, Mode: ModeAttack, From: p.Cell(), To: defender.Cell(),
		Cost: rules.AttackCost, Rank: defender.Rank, Captured: captured, Killed: killed})
	e.checkGameOver()
	return nil
}

// attemptDemote splits a rank-1 piece off p into the empty cell (tx, ty).
func (e *Engine) attemptDemote(p *board.Piece, tx, ty int) error {
	if err := rules.CheckDemote(e.board, p, tx, ty); err != nil {
		return e.reject(err)
	}
	if rules.DemoteCost > e.movesLeft {
		return e.insufficient(rules.DemoteCost)
	}

	p.Rank--
	e.put(tx, ty, board.NewPiece(board.MinRank, tx, ty, p.Owner))
	e.movesLeft -= rules.DemoteCost
	e.clearSelection()
	e.message = ""

	e.log.Debugw("piece demoted", "game", e.gameID, "player", e.turn, "from", p.Cell(),
		"to", board.Cell{X: tx, Y: ty}, "rank", p.Rank, "moves_left", e.movesLeft)
	e.emit(Event{Kind: EventDemote, Player: e.turn, Mode: ModeDemote, From: p.Cell(), To: board.Cell{X: tx, Y: ty},
		Cost: rules.DemoteCost, Rank: p.Rank})
	return nil
}
