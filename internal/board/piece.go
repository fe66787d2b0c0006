package board

import "fmt"

// Color represents the owner of a piece or the player to move.
type Color uint8

const (
	Red Color = iota
	Blue
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Blue:
		return "Blue"
	default:
		return "NoColor"
	}
}

// Char returns the layout character for the color.
func (c Color) Char() byte {
	switch c {
	case Red:
		return 'r'
	case Blue:
		return 'b'
	default:
		return '?'
	}
}

// ParseColor parses "red"/"r" or "blue"/"b" (case-insensitive).
func ParseColor(s string) (Color, error) {
	switch s {
	case "red", "Red", "RED", "r", "R":
		return Red, nil
	case "blue", "Blue", "BLUE", "b", "B":
		return Blue, nil
	default:
		return NoColor, fmt.Errorf("invalid color: %q", s)
	}
}

// MarshalText encodes the color as "red" or "blue".
func (c Color) MarshalText() ([]byte, error) {
	switch c {
	case Red:
		return []byte("red"), nil
	case Blue:
		return []byte("blue"), nil
	default:
		return []byte("none"), nil
	}
}

// UnmarshalText decodes "red" or "blue".
func (c *Color) UnmarshalText(b []byte) error {
	if string(b) == "none" {
		*c = NoColor
		return nil
	}
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Rank limits.
const (
	MinRank = 1
	MaxRank = 5
)

// Piece is a ranked token owned by one player.
// X and Y always mirror the cell the piece occupies on its board.
type Piece struct {
	Rank  int   `json:"rank"`
	X     int   `json:"x"`
	Y     int   `json:"y"`
	Owner Color `json:"owner"`
}

// NewPiece creates a piece at (x, y).
func NewPiece(rank, x, y int, owner Color) *Piece {
	return &Piece{Rank: rank, X: x, Y: y, Owner: owner}
}

// Cell returns the piece's position.
func (p *Piece) Cell() Cell {
	return Cell{X: p.X, Y: p.Y}
}

// IsValid reports whether the piece has a legal rank and owner.
func (p *Piece) IsValid() bool {
	return p.Rank >= MinRank && p.Rank <= MaxRank && p.Owner < NoColor
}

// String returns the layout token, e.g. "r3".
func (p *Piece) String() string {
	if p == nil {
		return "."
	}
	return fmt.Sprintf("%c%d", p.Owner.Char(), p.Rank)
}
