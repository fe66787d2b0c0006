package engine

import "github.com/hailam/rankwar/internal/board"

// PieceView is the read-only view of a piece handed to adapters.
type PieceView struct {
	Rank  int         `json:"rank"`
	Owner board.Color `json:"owner"`
}

// BoardState is a copy of the grid, indexed [y][x]. Empty cells are nil.
type BoardState [board.Size][board.Size]*PieceView

// At returns the view at (x, y), or nil when empty or off the board.
func (s *BoardState) At(x, y int) *PieceView {
	if !board.InBounds(x, y) {
		return nil
	}
	return s[y][x]
}

// TurnState describes whose turn it is and what is selected.
type TurnState struct {
	CurrentPlayer board.Color  `json:"current_player"`
	MovesLeft     int          `json:"moves_left"`
	Selected      *board.Cell  `json:"selected,omitempty"`
	LegalTargets  []board.Cell `json:"legal_targets"`
	Mode          Mode         `json:"mode"`
	Turn          int          `json:"turn"`
}

// IsTarget reports whether (x, y) is in LegalTargets.
func (t TurnState) IsTarget(x, y int) bool {
	for _, c := range t.LegalTargets {
		if c.X == x && c.Y == y {
			return true
		}
	}
	return false
}

// ButtonVisibility tells adapters which action buttons to show for the
// current selection.
type ButtonVisibility struct {
	PromoteAvailable bool `json:"promote_available"`
	AttackAvailable  bool `json:"attack_available"`
	DemoteAvailable  bool `json:"demote_available"`
}

// SideStats summarises one player's material.
type SideStats struct {
	Pieces   int `json:"pieces"`
	Strength int `json:"strength"`
}

// Snapshot bundles everything an adapter needs to render one frame.
type Snapshot struct {
	GameID     string           `json:"game_id"`
	Board      BoardState       `json:"board"`
	Turn       TurnState        `json:"turn"`
	Buttons    ButtonVisibility `json:"buttons"`
	Red        SideStats        `json:"red"`
	Blue       SideStats        `json:"blue"`
	Message    string           `json:"message"`
	LastWinner board.Color      `json:"last_winner"`
}
