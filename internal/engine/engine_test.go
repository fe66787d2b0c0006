package engine

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/rules"
)

func newTestEngine(t *testing.T, layout string, player board.Color, moves int) *Engine {
	t.Helper()
	b, err := board.ParseLayout(layout)
	if err != nil {
		t.Fatalf("ParseLayout(%q): %v", layout, err)
	}
	return New(WithLayout(b), WithTurn(player, moves))
}

func click(t *testing.T, e *Engine, x, y int) {
	t.Helper()
	if err := e.OnCellClicked(x, y); err != nil {
		t.Fatalf("OnCellClicked(%d,%d): %v", x, y, err)
	}
}

func setMode(t *testing.T, e *Engine, m Mode) {
	t.Helper()
	if err := e.OnModeSelected(m); err != nil {
		t.Fatalf("OnModeSelected(%s): %v", m, err)
	}
}

// state captures everything a failed action must leave untouched.
type state struct {
	layout    string
	turn      board.Color
	moves     int
	mode      Mode
	selected  *board.Cell
	targets   int
	turnCount int
}

func capture(e *Engine) state {
	ts := e.TurnState()
	return state{
		layout:    e.Layout(),
		turn:      ts.CurrentPlayer,
		moves:     ts.MovesLeft,
		mode:      ts.Mode,
		selected:  ts.Selected,
		targets:   len(ts.LegalTargets),
		turnCount: ts.Turn,
	}
}

func assertUnchanged(t *testing.T, before, after state) {
	t.Helper()
	if before.layout != after.layout {
		t.Errorf("board changed: %s -> %s", before.layout, after.layout)
	}
	if before.turn != after.turn || before.moves != after.moves || before.mode != after.mode ||
		before.targets != after.targets || before.turnCount != after.turnCount {
		t.Errorf("turn state changed: %+v -> %+v", before, after)
	}
	if (before.selected == nil) != (after.selected == nil) ||
		(before.selected != nil && *before.selected != *after.selected) {
		t.Errorf("selection changed: %v -> %v", before.selected, after.selected)
	}
}

func TestInitialState(t *testing.T) {
	e := New()

	if !e.Board().Equal(board.NewStartingBoard()) {
		t.Errorf("board is not the starting position:\n%s", e.Board())
	}
	ts := e.TurnState()
	if ts.CurrentPlayer != board.Red {
		t.Errorf("CurrentPlayer = %s, want Red", ts.CurrentPlayer)
	}
	if ts.MovesLeft != MovesPerTurn {
		t.Errorf("MovesLeft = %d, want %d", ts.MovesLeft, MovesPerTurn)
	}
	if ts.Selected != nil || len(ts.LegalTargets) != 0 {
		t.Errorf("unexpected selection %v / targets %v", ts.Selected, ts.LegalTargets)
	}
	if ts.Mode != ModeMove {
		t.Errorf("Mode = %s, want move", ts.Mode)
	}
	if ts.Turn != 1 {
		t.Errorf("Turn = %d, want 1", ts.Turn)
	}
	if bv := e.ButtonVisibility(); bv != (ButtonVisibility{}) {
		t.Errorf("ButtonVisibility = %+v, want all false", bv)
	}

	bs := e.BoardState()
	if v := bs.At(0, 0); v == nil || v.Owner != board.Blue || v.Rank != 1 {
		t.Errorf("BoardState(0,0) = %+v", v)
	}
	if v := bs.At(7, 7); v == nil || v.Owner != board.Red || v.Rank != 1 {
		t.Errorf("BoardState(7,7) = %+v", v)
	}
	if v := bs.At(3, 4); v != nil {
		t.Errorf("BoardState(3,4) = %+v, want empty", v)
	}

	snap := e.Snapshot()
	if snap.Red.Pieces != 24 || snap.Blue.Pieces != 24 || snap.Red.Strength != 24 {
		t.Errorf("side stats = %+v / %+v", snap.Red, snap.Blue)
	}
	if snap.LastWinner != board.NoColor {
		t.Errorf("LastWinner = %s, want NoColor", snap.LastWinner)
	}
}

func TestSelection(t *testing.T) {
	e := New()

	// Empty and enemy cells do nothing without a selection.
	click(t, e, 3, 3)
	click(t, e, 0, 0)
	if _, ok := e.Selected(); ok {
		t.Fatal("clicking empty/enemy cells should not select")
	}

	click(t, e, 2, 5)
	sel, ok := e.Selected()
	if !ok || sel != (board.Cell{X: 2, Y: 5}) {
		t.Fatalf("Selected = %v,%v, want (2,5)", sel, ok)
	}
	if n := len(e.TurnState().LegalTargets); n == 0 {
		t.Error("expected legal targets after selection")
	}

	// Another friendly piece in Move mode reselects.
	click(t, e, 4, 6)
	if sel, _ := e.Selected(); sel != (board.Cell{X: 4, Y: 6}) {
		t.Errorf("Selected = %v, want (4,6)", sel)
	}
	if e.MovesLeft() != MovesPerTurn {
		t.Errorf("reselect spent moves: %d", e.MovesLeft())
	}

	// The selected cell deselects.
	click(t, e, 4, 6)
	if _, ok := e.Selected(); ok {
		t.Error("clicking the selected piece should deselect")
	}
	if n := len(e.TurnState().LegalTargets); n != 0 {
		t.Errorf("LegalTargets = %d after deselect", n)
	}
}

func TestMoveCost(t *testing.T) {
	tests := []struct {
		name    string
		layout  string
		from    board.Cell
		to      board.Cell
		wantMov int
	}{
		{"rank1 distance5", "8/8/8/8/8/8/8/r1b16", board.Cell{X: 0, Y: 7}, board.Cell{X: 0, Y: 2}, 0},
		{"rank2 distance2", "8/8/8/3r24/8/8/8/b17", board.Cell{X: 3, Y: 3}, board.Cell{X: 5, Y: 5}, 1},
		{"rank3 distance1", "8/8/8/3r34/8/8/8/b17", board.Cell{X: 3, Y: 3}, board.Cell{X: 3, Y: 4}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.layout, board.Red, MovesPerTurn)
			click(t, e, tt.from.X, tt.from.Y)
			click(t, e, tt.to.X, tt.to.Y)

			if got := e.MovesLeft(); got != tt.wantMov {
				t.Errorf("MovesLeft = %d, want %d", got, tt.wantMov)
			}
			b := e.Board()
			if b.At(tt.from.X, tt.from.Y) != nil {
				t.Error("source cell not vacated")
			}
			p := b.At(tt.to.X, tt.to.Y)
			if p == nil || p.Owner != board.Red || p.X != tt.to.X || p.Y != tt.to.Y {
				t.Errorf("destination = %+v", p)
			}
			if _, ok := e.Selected(); ok {
				t.Error("selection not cleared after move")
			}
		})
	}
}

func TestMoveInsufficientMoves(t *testing.T) {
	e := newTestEngine(t, "8/8/8/3r34/8/8/8/b17", board.Red, 2)
	click(t, e, 3, 3)
	before := capture(e)

	err := e.OnCellClicked(3, 4)
	if !errors.Is(err, ErrInsufficientMoves) {
		t.Fatalf("err = %v, want ErrInsufficientMoves", err)
	}
	assertUnchanged(t, before, capture(e))
	if got := e.Message(); got != "Not enough moves left for this action." {
		t.Errorf("Message = %q", got)
	}
}

func TestMoveInvalidTarget(t *testing.T) {
	e := newTestEngine(t, "8/8/8/3r34/8/8/8/b17", board.Red, MovesPerTurn)
	click(t, e, 3, 3)
	before := capture(e)

	err := e.OnCellClicked(3, 6)
	it, ok := rules.AsInvalidTarget(err)
	if !ok || it.Reason != rules.ReasonOutOfRange {
		t.Fatalf("err = %v, want out-of-range InvalidTargetError", err)
	}
	assertUnchanged(t, before, capture(e))
	if e.Message() == "" {
		t.Error("expected a message for the failed move")
	}
}

func TestHopCapture(t *testing.T) {
	e := newTestEngine(t, "r1b16/8/8/8/8/8/8/7b1", board.Red, MovesPerTurn)

	var events []Event
	e.Subscribe(func(ev Event) { events = append(events, ev) })

	click(t, e, 0, 0)
	click(t, e, 2, 0)

	b := e.Board()
	if p := b.At(1, 0); p != nil {
		t.Errorf("hopped piece still on board: %v", p)
	}
	if p := b.At(2, 0); p == nil || p.Owner != board.Red {
		t.Errorf("attacker not at (2,0): %v", p)
	}
	if b.At(0, 0) != nil {
		t.Error("source not vacated")
	}
	if got := e.MovesLeft(); got != 3 {
		t.Errorf("MovesLeft = %d, want 3", got)
	}

	last := events[len(events)-1]
	if last.Kind != EventMove || len(last.Captured) != 1 || last.Captured[0].X != 1 {
		t.Errorf("last event = %+v, want move capturing (1,0)", last)
	}
}

func TestHopDisplacesLandingPiece(t *testing.T) {
	e := newTestEngine(t, "r1b1b15/8/8/8/8/8/8/7b1", board.Red, MovesPerTurn)
	click(t, e, 0, 0)
	click(t, e, 2, 0)

	snap := e.Snapshot()
	if snap.Blue.Pieces != 1 {
		t.Errorf("Blue pieces = %d, want 1", snap.Blue.Pieces)
	}
	if v := snap.Board.At(2, 0); v == nil || v.Owner != board.Red {
		t.Errorf("(2,0) = %+v, want Red", v)
	}
}

func TestPromote(t *testing.T) {
	e := newTestEngine(t, "8/8/8/3r2r33/8/8/8/b17", board.Red, MovesPerTurn)
	setMode(t, e, ModePromote)
	click(t, e, 3, 3)

	if bv := e.ButtonVisibility(); !bv.PromoteAvailable {
		t.Errorf("PromoteAvailable = false")
	}
	click(t, e, 4, 3)

	b := e.Board()
	if b.At(3, 3) != nil {
		t.Error("source piece not absorbed")
	}
	if p := b.At(4, 3); p == nil || p.Rank != 5 {
		t.Errorf("target = %v, want rank 5", p)
	}
	if got := e.MovesLeft(); got != 3 {
		t.Errorf("MovesLeft = %d, want 3", got)
	}
	if e.Mode() != ModePromote {
		t.Errorf("Mode = %s, want promote to persist", e.Mode())
	}
}

func TestPromoteFailures(t *testing.T) {
	e := newTestEngine(t, "8/8/8/3r3r33/8/8/r17/b17", board.Red, MovesPerTurn)
	setMode(t, e, ModePromote)
	click(t, e, 3, 3)
	before := capture(e)

	err := e.OnCellClicked(4, 3)
	if it, ok := rules.AsInvalidTarget(err); !ok || it.Reason != rules.ReasonRankSumExceeded {
		t.Fatalf("err = %v, want rank sum exceeded", err)
	}
	assertUnchanged(t, before, capture(e))
	sumMsg := e.Message()

	err = e.OnCellClicked(0, 6)
	if it, ok := rules.AsInvalidTarget(err); !ok || it.Reason != rules.ReasonNotAdjacentFriendly {
		t.Fatalf("err = %v, want not adjacent friendly", err)
	}
	assertUnchanged(t, before, capture(e))
	if e.Message() == sumMsg {
		t.Errorf("distinct failures share message %q", sumMsg)
	}
}

func TestPromoteInsufficientMoves(t *testing.T) {
	e := newTestEngine(t, "8/8/8/3r2r33/8/8/8/b17", board.Red, 1)
	setMode(t, e, ModePromote)
	click(t, e, 3, 3)
	before := capture(e)

	if err := e.OnCellClicked(4, 3); !errors.Is(err, ErrInsufficientMoves) {
		t.Fatalf("err = %v, want ErrInsufficientMoves", err)
	}
	assertUnchanged(t, before, capture(e))
}

func TestAttack(t *testing.T) {
	e := newTestEngine(t, "8/8/8/3r3b33/8/8/8/b17", board.Red, MovesPerTurn)
	setMode(t, e, ModeAttack)
	click(t, e, 3, 3)

	// Equal rank is rejected.
	before := capture(e)
	err := e.OnCellClicked(4, 3)
	if it, ok := rules.AsInvalidTarget(err); !ok || it.Reason != rules.ReasonRankTooHigh {
		t.Fatalf("err = %v, want rank too high", err)
	}
	assertUnchanged(t, before, capture(e))
	if got := e.Message(); got != "Cannot attack an equal or higher-ranked piece." {
		t.Errorf("Message = %q", got)
	}

	// Weaken the defender and try again.
	e2 := newTestEngine(t, "8/8/8/3r3b23/8/8/8/b17", board.Red, MovesPerTurn)
	setMode(t, e2, ModeAttack)
	click(t, e2, 3, 3)
	if !e2.ButtonVisibility().AttackAvailable {
		t.Error("AttackAvailable = false")
	}
	click(t, e2, 4, 3)

	if p := e2.Board().At(4, 3); p == nil || p.Rank != 1 {
		t.Errorf("defender = %v, want rank 1", p)
	}
	if got := e2.MovesLeft(); got != 4 {
		t.Errorf("MovesLeft = %d, want 4", got)
	}

	// A second attack in the same turn kills it.
	click(t, e2, 3, 3)
	click(t, e2, 4, 3)
	if p := e2.Board().At(4, 3); p != nil {
		t.Errorf("defender at rank 0 should be removed, got %v", p)
	}
	if got := e2.MovesLeft(); got != 3 {
		t.Errorf("MovesLeft = %d, want 3", got)
	}
}

func TestDemote(t *testing.T) {
	e := newTestEngine(t, "8/8/8/3r34/8/8/8/b17", board.Red, MovesPerTurn)
	setMode(t, e, ModeDemote)
	click(t, e, 3, 3)
	if !e.ButtonVisibility().DemoteAvailable {
		t.Error("DemoteAvailable = false")
	}
	click(t, e, 4, 4)

	b := e.Board()
	if p := b.At(3, 3); p == nil || p.Rank != 2 {
		t.Errorf("source = %v, want rank 2", p)
	}
	if p := b.At(4, 4); p == nil || p.Rank != 1 || p.Owner != board.Red {
		t.Errorf("split piece = %v, want r1", p)
	}
	if got := e.MovesLeft(); got != 4 {
		t.Errorf("MovesLeft = %d, want 4", got)
	}

	click(t, e, 3, 3)
	before := capture(e)
	err := e.OnCellClicked(4, 4)
	if it, ok := rules.AsInvalidTarget(err); !ok || it.Reason != rules.ReasonCellOccupied {
		t.Fatalf("err = %v, want cell occupied", err)
	}
	assertUnchanged(t, before, capture(e))
}

func TestModeChangeKeepsSelection(t *testing.T) {
	e := newTestEngine(t, "8/8/8/3r2r1b22/8/8/8/8", board.Red, MovesPerTurn)
	click(t, e, 4, 3)

	moveTargets := e.TurnState().LegalTargets
	if len(moveTargets) == 0 {
		t.Fatal("no move targets")
	}

	setMode(t, e, ModePromote)
	ts := e.TurnState()
	if ts.Selected == nil || *ts.Selected != (board.Cell{X: 4, Y: 3}) {
		t.Fatalf("selection lost on mode change: %v", ts.Selected)
	}
	if len(ts.LegalTargets) != 1 || ts.LegalTargets[0] != (board.Cell{X: 3, Y: 3}) {
		t.Errorf("promote targets = %v, want [(3,3)]", ts.LegalTargets)
	}

	setMode(t, e, ModeAttack)
	if got := e.TurnState().LegalTargets; len(got) != 0 {
		t.Errorf("attack targets = %v, want none for rank 1", got)
	}

	setMode(t, e, ModeDemote)
	if got := e.TurnState().LegalTargets; len(got) != 0 {
		t.Errorf("demote targets = %v, want none for rank 1", got)
	}

	if err := e.OnModeSelected(Mode(42)); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("err = %v, want ErrInvalidMode", err)
	}
}

func TestEndTurn(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *Engine)
	}{
		{"fresh", func(e *Engine) {}},
		{"selected in attack mode", func(e *Engine) {
			_ = e.OnModeSelected(ModeAttack)
			_ = e.OnCellClicked(0, 5)
		}},
		{"budget spent", func(e *Engine) {
			_ = e.OnCellClicked(0, 5)
			_ = e.OnCellClicked(0, 4)
			_ = e.OnCellClicked(1, 5)
			_ = e.OnCellClicked(1, 1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()
			tt.setup(e)
			e.OnEndTurn()

			ts := e.TurnState()
			if ts.CurrentPlayer != board.Blue {
				t.Errorf("CurrentPlayer = %s, want Blue", ts.CurrentPlayer)
			}
			if ts.MovesLeft != MovesPerTurn {
				t.Errorf("MovesLeft = %d, want %d", ts.MovesLeft, MovesPerTurn)
			}
			if ts.Selected != nil || len(ts.LegalTargets) != 0 {
				t.Errorf("selection not cleared: %v %v", ts.Selected, ts.LegalTargets)
			}
			if ts.Mode != ModeMove {
				t.Errorf("Mode = %s, want move", ts.Mode)
			}
			if ts.Turn != 2 {
				t.Errorf("Turn = %d, want 2", ts.Turn)
			}
		})
	}
}

func TestOutOfBoundsClick(t *testing.T) {
	e := New()
	before := capture(e)
	if err := e.OnCellClicked(8, 0); !errors.Is(err, board.ErrOutOfBounds) {
		t.Fatalf("err = %v, want ErrOutOfBounds", err)
	}
	assertUnchanged(t, before, capture(e))
	if e.Message() == "" {
		t.Error("expected a message")
	}
}

func TestGameOver(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	b, err := board.ParseLayout("8/8/8/3r2b13/8/8/8/8")
	if err != nil {
		t.Fatal(err)
	}
	e := New(WithLayout(b), WithClock(func() time.Time { return now }))
	firstID := e.GameID()

	var kinds []EventKind
	var over Event
	e.Subscribe(func(ev Event) {
		kinds = append(kinds, ev.Kind)
		if ev.Kind == EventGameOver {
			over = ev
		}
	})

	now = start.Add(90 * time.Second)
	setMode(t, e, ModeAttack)
	click(t, e, 3, 3)
	click(t, e, 4, 3)

	if over.Winner != board.Red {
		t.Fatalf("winner = %s, want Red", over.Winner)
	}
	if over.Duration != 90*time.Second {
		t.Errorf("duration = %s, want 90s", over.Duration)
	}
	n := len(kinds)
	if n < 3 || kinds[n-3] != EventAttack || kinds[n-2] != EventGameOver || kinds[n-1] != EventReset {
		t.Errorf("event tail = %v, want attack, game_over, reset", kinds)
	}

	if !e.Board().Equal(board.NewStartingBoard()) {
		t.Error("board not reset to the starting position")
	}
	ts := e.TurnState()
	if ts.CurrentPlayer != board.Red || ts.MovesLeft != MovesPerTurn || ts.Mode != ModeMove || ts.Selected != nil {
		t.Errorf("turn state not reset: %+v", ts)
	}
	if e.Message() != "Red wins!" {
		t.Errorf("Message = %q, want %q", e.Message(), "Red wins!")
	}
	if e.LastWinner() != board.Red {
		t.Errorf("LastWinner = %s", e.LastWinner())
	}
	if e.GameID() == firstID {
		t.Error("game id not renewed")
	}
}

func TestSetup(t *testing.T) {
	e := New()
	b, _ := board.ParseLayout("8/8/8/3b34/8/8/8/r17")

	if err := e.Setup(b, board.Blue, 3); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if e.CurrentPlayer() != board.Blue || e.MovesLeft() != 3 {
		t.Errorf("turn = %s/%d", e.CurrentPlayer(), e.MovesLeft())
	}
	if e.Layout() != "8/8/8/3b34/8/8/8/r17" {
		t.Errorf("Layout = %q", e.Layout())
	}
	if err := e.Setup(b, board.Blue, 9); err == nil {
		t.Error("Setup accepted moves > MovesPerTurn")
	}
	if err := e.Setup(b, board.NoColor, 3); err == nil {
		t.Error("Setup accepted NoColor")
	}
}

func TestReset(t *testing.T) {
	e := New()
	click(t, e, 0, 5)
	click(t, e, 0, 4)
	e.OnEndTurn()

	var got []EventKind
	e.Subscribe(func(ev Event) { got = append(got, ev.Kind) })
	e.Reset()

	if !e.Board().Equal(board.NewStartingBoard()) || e.CurrentPlayer() != board.Red || e.Turn() != 1 {
		t.Error("Reset did not restore the initial game")
	}
	if len(got) != 1 || got[0] != EventReset {
		t.Errorf("events = %v, want [reset]", got)
	}
}

func TestSnapshotJSON(t *testing.T) {
	e := New()
	click(t, e, 0, 5)

	data, err := json.Marshal(e.Snapshot())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded struct {
		Turn struct {
			CurrentPlayer string `json:"current_player"`
			Mode          string `json:"mode"`
			Selected      *board.Cell
		} `json:"turn"`
		Board [][]*PieceView `json:"board"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Turn.CurrentPlayer != "red" || decoded.Turn.Mode != "move" {
		t.Errorf("turn = %+v", decoded.Turn)
	}
	if decoded.Turn.Selected == nil || *decoded.Turn.Selected != (board.Cell{X: 0, Y: 5}) {
		t.Errorf("selected = %v", decoded.Turn.Selected)
	}
	if len(decoded.Board) != board.Size || decoded.Board[0][0] == nil || decoded.Board[3][3] != nil {
		t.Errorf("board JSON malformed")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("fly"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("err = %v, want ErrInvalidMode", err)
	}
}

func TestActionInsufficientMoves(t *testing.T) {
	tests := []struct {
		name   string
		layout string
		mode   Mode
		target board.Cell
	}{
		{"attack", "8/8/8/3r3b23/8/8/8/b17", ModeAttack, board.Cell{X: 4, Y: 3}},
		{"demote", "8/8/8/3r34/8/8/8/b17", ModeDemote, board.Cell{X: 4, Y: 4}},
		{"promote", "8/8/8/3r2r33/8/8/8/b17", ModePromote, board.Cell{X: 4, Y: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.layout, board.Red, 0)
			setMode(t, e, tt.mode)
			click(t, e, 3, 3)
			before := capture(e)

			err := e.OnCellClicked(tt.target.X, tt.target.Y)
			if !errors.Is(err, ErrInsufficientMoves) {
				t.Fatalf("err = %v, want ErrInsufficientMoves", err)
			}
			assertUnchanged(t, before, capture(e))
			if got := e.Message(); got != "Not enough moves left for this action." {
				t.Errorf("Message = %q", got)
			}
		})
	}
}

func TestAttackFailureMessages(t *testing.T) {
	// r3 at (3,3); equal-rank b3 adjacent, b1 two cells away, (3,4) empty.
	e := newTestEngine(t, "8/8/8/3r3b31b11/8/8/8/8", board.Red, MovesPerTurn)
	setMode(t, e, ModeAttack)
	click(t, e, 3, 3)
	if e.ButtonVisibility().AttackAvailable {
		t.Error("AttackAvailable with no weaker adjacent enemy")
	}

	tests := []struct {
		target board.Cell
		reason rules.Reason
	}{
		{board.Cell{X: 4, Y: 3}, rules.ReasonRankTooHigh},
		{board.Cell{X: 3, Y: 4}, rules.ReasonNoEnemy},
		{board.Cell{X: 6, Y: 3}, rules.ReasonNotAdjacent},
	}
	seen := make(map[string]rules.Reason)
	for _, tt := range tests {
		before := capture(e)
		err := e.OnCellClicked(tt.target.X, tt.target.Y)
		if it, ok := rules.AsInvalidTarget(err); !ok || it.Reason != tt.reason {
			t.Fatalf("attack %s: err = %v, want %s", tt.target, err, tt.reason)
		}
		assertUnchanged(t, before, capture(e))

		msg := e.Message()
		if msg == "" {
			t.Errorf("attack %s: empty message", tt.target)
		}
		if prev, dup := seen[msg]; dup {
			t.Errorf("%s and %s share message %q", prev, tt.reason, msg)
		}
		seen[msg] = tt.reason
	}
}

func TestHopEndsGame(t *testing.T) {
	e := newTestEngine(t, "r1b16/8/8/8/8/8/8/8", board.Red, MovesPerTurn)

	var kinds []EventKind
	var move, over Event
	e.Subscribe(func(ev Event) {
		kinds = append(kinds, ev.Kind)
		switch ev.Kind {
		case EventMove:
			move = ev
		case EventGameOver:
			over = ev
		}
	})

	click(t, e, 0, 0)
	click(t, e, 2, 0)

	if len(move.Captured) != 1 || move.Captured[0].Owner != board.Blue {
		t.Errorf("move captured = %+v, want the last Blue piece", move.Captured)
	}
	if over.Winner != board.Red {
		t.Fatalf("winner = %s, want Red", over.Winner)
	}
	n := len(kinds)
	if n < 3 || kinds[n-3] != EventMove || kinds[n-2] != EventGameOver || kinds[n-1] != EventReset {
		t.Errorf("event tail = %v, want move, game_over, reset", kinds)
	}
	if !e.Board().Equal(board.NewStartingBoard()) {
		t.Errorf("board not reset:\n%s", e.Board())
	}
	if e.CurrentPlayer() != board.Red || e.MovesLeft() != MovesPerTurn || e.Message() != "Red wins!" {
		t.Errorf("after reset: player %s, moves %d, message %q", e.CurrentPlayer(), e.MovesLeft(), e.Message())
	}
}

func TestStartOptionsValidated(t *testing.T) {
	e := New(WithTurn(board.NoColor, 99))
	if e.CurrentPlayer() != board.Red || e.MovesLeft() != MovesPerTurn {
		t.Errorf("invalid WithTurn applied: player %s, moves %d", e.CurrentPlayer(), e.MovesLeft())
	}

	e = New(WithTurn(board.Blue, MovesPerTurn+1))
	if e.MovesLeft() != MovesPerTurn || e.CurrentPlayer() != board.Red {
		t.Errorf("budget above cap applied: player %s, moves %d", e.CurrentPlayer(), e.MovesLeft())
	}

	bad := board.NewBoard()
	if err := bad.Set(0, 0, board.NewPiece(1, 3, 3, board.Red)); err != nil {
		t.Fatal(err)
	}
	e = New(WithLayout(bad))
	if !e.Board().Equal(board.NewStartingBoard()) {
		t.Errorf("invalid layout applied:\n%s", e.Board())
	}

	good, err := board.ParseLayout("8/8/8/3b34/8/8/8/r17")
	if err != nil {
		t.Fatal(err)
	}
	e = New(WithTurn(board.Blue, 2), WithLayout(good))
	if e.CurrentPlayer() != board.Blue || e.MovesLeft() != 2 || e.Layout() != "8/8/8/3b34/8/8/8/r17" {
		t.Errorf("valid options not applied: %s/%d %s", e.CurrentPlayer(), e.MovesLeft(), e.Layout())
	}
}
