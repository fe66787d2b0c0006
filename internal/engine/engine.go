// Package engine holds the game state and applies player input to it.
//
// An Engine is the single owner of the board and the turn state. Every
// entry point runs to completion and either applies its transition fully or
// leaves the state unchanged and records a message for the player. An Engine
// is not safe for concurrent use; adapters that serve several goroutines must
// serialize calls themselves.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/rules"
)

// MovesPerTurn is the budget a player starts each turn with.
const MovesPerTurn = 5

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithLayout starts the first game from b instead of the standard position.
// Later games always start from the standard position.
func WithLayout(b *board.Board) Option {
	return func(e *Engine) {
		if b != nil {
			e.start().board = b
		}
	}
}

// WithTurn sets the player to move and their remaining budget for the first
// turn.
func WithTurn(player board.Color, movesLeft int) Option {
	return func(e *Engine) {
		st := e.start()
		st.player = player
		st.movesLeft = movesLeft
	}
}

// startPosition collects the WithLayout and WithTurn inputs for New.
type startPosition struct {
	board     *board.Board
	player    board.Color
	movesLeft int
}

func (e *Engine) start() *startPosition {
	if e.pending == nil {
		e.pending = &startPosition{player: board.Red, movesLeft: MovesPerTurn}
	}
	return e.pending
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
		e.startedAt = now()
	}
}

// Engine is the turn controller and win detector for one hot-seat game.
type Engine struct {
	board     *board.Board
	turn      board.Color
	movesLeft int
	mode      Mode
	selected  *board.Cell
	targets   []board.Cell
	message   string

	turnCount  int
	gameID     uuid.UUID
	startedAt  time.Time
	lastWinner board.Color

	log       *zap.SugaredLogger
	now       func() time.Time
	listeners []func(Event)
	pending   *startPosition
}

// New creates an engine at the initial position: Red to move with a full
// budget. WithLayout and WithTurn are applied through Setup; if Setup rejects
// them the rejection is logged and the standard position is kept.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:        zap.NewNop().Sugar(),
		now:        time.Now,
		lastWinner: board.NoColor,
	}
	e.newGame()
	for _, opt := range opts {
		opt(e)
	}
	if st := e.pending; st != nil {
		e.pending = nil
		b := st.board
		if b == nil {
			b = e.board
		}
		if err := e.Setup(b, st.player, st.movesLeft); err != nil {
			e.log.Warnw("ignoring invalid start position", "error", err)
		}
	}
	return e
}

// newGame restores the standard starting position and default turn state.
func (e *Engine) newGame() {
	e.board = board.NewStartingBoard()
	e.turn = board.Red
	e.movesLeft = MovesPerTurn
	e.mode = ModeMove
	e.selected = nil
	e.targets = nil
	e.message = ""
	e.turnCount = 1
	e.gameID = uuid.New()
	e.startedAt = e.now()
}

// Subscribe registers fn to be called synchronously after every transition.
func (e *Engine) Subscribe(fn func(Event)) {
	e.listeners = append(e.listeners, fn)
}

func (e *Engine) emit(ev Event) {
	ev.GameID = e.gameID.String()
	if ev.Turn == 0 {
		ev.Turn = e.turnCount
	}
	for _, fn := range e.listeners {
		fn(ev)
	}
}

// Reset abandons the current game and starts a new one.
func (e *Engine) Reset() {
	old := e.gameID
	e.newGame()
	e.log.Infow("game reset", "previous", old, "game", e.gameID)
	e.emit(Event{Kind: EventReset, Player: e.turn})
}

// Setup replaces the position and turn state, clearing any selection. The
// board is copied.
func (e *Engine) Setup(b *board.Board, player board.Color, movesLeft int) error {
	if b == nil {
		return fmt.Errorf("nil board")
	}
	if err := b.Validate(); err != nil {
		return err
	}
	if player != board.Red && player != board.Blue {
		return fmt.Errorf("invalid player %v", player)
	}
	if movesLeft < 0 || movesLeft > MovesPerTurn {
		return fmt.Errorf("moves left must be in [0,%d], got %d", MovesPerTurn, movesLeft)
	}
	e.board = b.Clone()
	e.turn = player
	e.movesLeft = movesLeft
	e.mode = ModeMove
	e.clearSelection()
	e.message = ""
	e.log.Debugw("position set up", "game", e.gameID, "layout", e.board.Layout(), "player", player, "moves_left", movesLeft)
	return nil
}

// OnCellClicked handles a click on (x, y).
//
// Without a selection, clicking one of the current player's pieces selects
// it and anything else does nothing. With a selection, clicking the selected
// cell deselects, clicking another friendly piece in Move mode reselects, and
// any other click attempts the current mode's action on that cell.
func (e *Engine) OnCellClicked(x, y int) error {
	if _, err := e.board.Get(x, y); err != nil {
		return e.reject(err)
	}
	clicked := e.board.At(x, y)
	sel := e.selectedPiece()

	if sel == nil {
		if clicked != nil && clicked.Owner == e.turn {
			e.selectPiece(clicked)
		}
		return nil
	}
	if sel == clicked {
		e.deselect()
		return nil
	}

	switch e.mode {
	case ModeMove:
		if clicked != nil && clicked.Owner == e.turn {
			e.selectPiece(clicked)
			return nil
		}
		return e.attemptMove(sel, x, y)
	case ModePromote:
		return e.attemptPromote(sel, x, y)
	case ModeAttack:
		return e.attemptAttack(sel, x, y)
	case ModeDemote:
		return e.attemptDemote(sel, x, y)
	}
	return e.reject(fmt.Errorf("%w: %d", ErrInvalidMode, int(e.mode)))
}

// OnModeSelected switches the action mode. The selection is kept and its
// targets are recomputed for the new mode.
func (e *Engine) OnModeSelected(m Mode) error {
	if !m.Valid() {
		return e.reject(fmt.Errorf("%w: %d", ErrInvalidMode, int(m)))
	}
	e.mode = m
	e.refreshTargets()
	e.message = ""
	e.log.Debugw("mode changed", "game", e.gameID, "player", e.turn, "mode", m)
	e.emit(Event{Kind: EventModeChange, Player: e.turn, Mode: m})
	return nil
}

// OnEndTurn passes the turn to the other player with a fresh budget.
func (e *Engine) OnEndTurn() {
	prev := e.turn
	e.turn = prev.Other()
	e.movesLeft = MovesPerTurn
	e.mode = ModeMove
	e.clearSelection()
	e.message = ""
	e.turnCount++
	e.log.Debugw("turn ended", "game", e.gameID, "player", prev, "next", e.turn, "turn", e.turnCount)
	e.emit(Event{Kind: EventEndTurn, Player: prev})
}

func (e *Engine) selectedPiece() *board.Piece {
	if e.selected == nil {
		return nil
	}
	return e.board.At(e.selected.X, e.selected.Y)
}

func (e *Engine) selectPiece(p *board.Piece) {
	c := p.Cell()
	e.selected = &c
	e.refreshTargets()
	e.message = ""
	e.log.Debugw("piece selected", "game", e.gameID, "player", e.turn, "cell", c, "rank", p.Rank, "targets", len(e.targets))
	e.emit(Event{Kind: EventSelect, Player: e.turn, Mode: e.mode, From: c, Rank: p.Rank})
}

func (e *Engine) deselect() {
	from := *e.selected
	e.clearSelection()
	e.message = ""
	e.emit(Event{Kind: EventDeselect, Player: e.turn, From: from})
}

func (e *Engine) clearSelection() {
	e.selected = nil
	e.targets = nil
}

// refreshTargets recomputes the highlighted cells for the selection and mode.
func (e *Engine) refreshTargets() {
	p := e.selectedPiece()
	if p == nil {
		e.targets = nil
		return
	}
	switch e.mode {
	case ModeMove:
		// A friendly cell is always a reselection click, never a move.
		e.targets = e.targets[:0]
		for _, c := range rules.PossibleMoves(e.board, p) {
			if q := e.board.At(c.X, c.Y); q == nil || q.Owner != p.Owner {
				e.targets = append(e.targets, c)
			}
		}
	case ModePromote:
		e.targets = rules.PromoteTargets(e.board, p)
	case ModeAttack:
		e.targets = rules.AttackTargets(e.board, p)
	case ModeDemote:
		e.targets = rules.DemoteTargets(e.board, p)
	}
}

// reject records err as the current message and reports it to listeners.
func (e *Engine) reject(err error) error {
	e.message = Describe(err)
	e.log.Debugw("action rejected", "game", e.gameID, "player", e.turn, "mode", e.mode, "error", err)
	e.emit(Event{Kind: EventRejected, Player: e.turn, Mode: e.mode, Err: err, Message: e.message})
	return err
}

func (e *Engine) insufficient(cost int) error {
	return e.reject(fmt.Errorf("%w: need %d, have %d", ErrInsufficientMoves, cost, e.movesLeft))
}

// checkGameOver ends the game when a side has no pieces left. The engine
// then starts a new game and keeps the result as the current message.
func (e *Engine) checkGameOver() bool {
	winner := board.NoColor
	switch {
	case e.board.Count(board.Red) == 0:
		winner = board.Blue
	case e.board.Count(board.Blue) == 0:
		winner = board.Red
	}
	if winner == board.NoColor {
		return false
	}

	elapsed := e.now().Sub(e.startedAt)
	e.log.Infow("game over", "game", e.gameID, "winner", winner, "turns", e.turnCount, "duration", elapsed)
	e.emit(Event{Kind: EventGameOver, Player: e.turn, Winner: winner, Duration: elapsed})

	e.lastWinner = winner
	e.newGame()
	e.message = fmt.Sprintf("%s wins!", winner)
	e.emit(Event{Kind: EventReset, Player: e.turn, Winner: winner, Message: e.message})
	return true
}

// Message returns the current user-facing message, or "".
func (e *Engine) Message() string { return e.message }

// GameID identifies the current game.
func (e *Engine) GameID() uuid.UUID { return e.gameID }

// CurrentPlayer returns the player to move.
func (e *Engine) CurrentPlayer() board.Color { return e.turn }

// MovesLeft returns the remaining budget this turn.
func (e *Engine) MovesLeft() int { return e.movesLeft }

// Mode returns the active action mode.
func (e *Engine) Mode() Mode { return e.mode }

// Turn returns the 1-based turn counter of the current game.
func (e *Engine) Turn() int { return e.turnCount }

// LastWinner returns the winner of the most recently finished game, or
// board.NoColor.
func (e *Engine) LastWinner() board.Color { return e.lastWinner }

// Selected returns the selected cell, if any.
func (e *Engine) Selected() (board.Cell, bool) {
	if e.selected == nil {
		return board.Cell{}, false
	}
	return *e.selected, true
}

// Board returns a copy of the board.
func (e *Engine) Board() *board.Board { return e.board.Clone() }

// Layout returns the position in layout notation.
func (e *Engine) Layout() string { return e.board.Layout() }

// BoardState returns a copy of the grid for rendering.
func (e *Engine) BoardState() BoardState {
	var s BoardState
	e.board.ForEachPiece(func(p *board.Piece) {
		s[p.Y][p.X] = &PieceView{Rank: p.Rank, Owner: p.Owner}
	})
	return s
}

// TurnState returns the current turn state. LegalTargets is a copy.
func (e *Engine) TurnState() TurnState {
	ts := TurnState{
		CurrentPlayer: e.turn,
		MovesLeft:     e.movesLeft,
		LegalTargets:  append([]board.Cell{}, e.targets...),
		Mode:          e.mode,
		Turn:          e.turnCount,
	}
	if e.selected != nil {
		c := *e.selected
		ts.Selected = &c
	}
	return ts
}

// ButtonVisibility reports which action buttons apply to the selection.
func (e *Engine) ButtonVisibility() ButtonVisibility {
	p := e.selectedPiece()
	if p == nil {
		return ButtonVisibility{}
	}
	return ButtonVisibility{
		PromoteAvailable: rules.CanPromote(e.board, p),
		AttackAvailable:  rules.CanAttack(e.board, p),
		DemoteAvailable:  rules.CanDemote(e.board, p),
	}
}

// Snapshot returns the full read-only state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		GameID:     e.gameID.String(),
		Board:      e.BoardState(),
		Turn:       e.TurnState(),
		Buttons:    e.ButtonVisibility(),
		Red:        SideStats{Pieces: e.board.Count(board.Red), Strength: e.board.Strength(board.Red)},
		Blue:       SideStats{Pieces: e.board.Count(board.Blue), Strength: e.board.Strength(board.Blue)},
		Message:    e.message,
		LastWinner: e.lastWinner,
	}
}
