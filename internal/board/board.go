// Package board implements the 8x8 grid of ranked pieces.
package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOutOfBounds is returned for coordinates outside [0, Size).
var ErrOutOfBounds = errors.New("coordinates out of bounds")

// StartRows is the number of rows each side fills at game start.
const StartRows = 3

// Board is an 8x8 grid where each cell holds at most one piece.
// Cells are indexed [y][x].
//
// The board does not keep piece coordinates in sync by itself; callers that
// relocate a piece must update the piece's X and Y as well.
type Board struct {
	cells [Size][Size]*Piece
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{}
}

// NewStartingBoard returns the initial position: rows 0-2 hold rank-1 Blue
// pieces, rows 5-7 hold rank-1 Red pieces.
func NewStartingBoard() *Board {
	b := NewBoard()
	for y := 0; y < StartRows; y++ {
		for x := 0; x < Size; x++ {
			b.cells[y][x] = NewPiece(MinRank, x, y, Blue)
			ry := Size - y - 1
			b.cells[ry][x] = NewPiece(MinRank, x, ry, Red)
		}
	}
	return b
}

func outOfBounds(x, y int) error {
	return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
}

// Get returns the piece at (x, y), or nil if the cell is empty.
func (b *Board) Get(x, y int) (*Piece, error) {
	if !InBounds(x, y) {
		return nil, outOfBounds(x, y)
	}
	return b.cells[y][x], nil
}

// At returns the piece at (x, y), or nil if the cell is empty or off the board.
func (b *Board) At(x, y int) *Piece {
	if !InBounds(x, y) {
		return nil
	}
	return b.cells[y][x]
}

// Set stores p (or nil to clear) at (x, y).
func (b *Board) Set(x, y int, p *Piece) error {
	if !InBounds(x, y) {
		return outOfBounds(x, y)
	}
	b.cells[y][x] = p
	return nil
}

// Place stores p at its own coordinates.
func (b *Board) Place(p *Piece) error {
	return b.Set(p.X, p.Y, p)
}

// ForEachPiece calls fn for every piece in row-major order.
func (b *Board) ForEachPiece(fn func(p *Piece)) {
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if p := b.cells[y][x]; p != nil {
				fn(p)
			}
		}
	}
}

// Count returns the number of pieces owned by c.
func (b *Board) Count(c Color) int {
	n := 0
	b.ForEachPiece(func(p *Piece) {
		if p.Owner == c {
			n++
		}
	})
	return n
}

// Strength returns the sum of ranks of the pieces owned by c.
func (b *Board) Strength(c Color) int {
	n := 0
	b.ForEachPiece(func(p *Piece) {
		if p.Owner == c {
			n += p.Rank
		}
	})
	return n
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	nb := NewBoard()
	b.ForEachPiece(func(p *Piece) {
		cp := *p
		nb.cells[p.Y][p.X] = &cp
	})
	return nb
}

// Equal reports whether both boards hold the same pieces on the same cells.
func (b *Board) Equal(o *Board) bool {
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			p, q := b.cells[y][x], o.cells[y][x]
			if (p == nil) != (q == nil) {
				return false
			}
			if p != nil && *p != *q {
				return false
			}
		}
	}
	return true
}

// Validate checks the board invariants: every piece is valid, its stored
// coordinates match its cell, and no piece occupies two cells.
func (b *Board) Validate() error {
	seen := make(map[*Piece]Cell)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			p := b.cells[y][x]
			if p == nil {
				continue
			}
			if !p.IsValid() {
				return fmt.Errorf("invalid piece %s at (%d,%d)", p, x, y)
			}
			if p.X != x || p.Y != y {
				return fmt.Errorf("piece at (%d,%d) records position (%d,%d)", x, y, p.X, p.Y)
			}
			if prev, ok := seen[p]; ok {
				return fmt.Errorf("piece at (%d,%d) also occupies %s", x, y, prev)
			}
			seen[p] = Cell{X: x, Y: y}
		}
	}
	return nil
}

// String returns an ASCII diagram of the board.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("   0  1  2  3  4  5  6  7\n")
	for y := 0; y < Size; y++ {
		fmt.Fprintf(&sb, "%d ", y)
		for x := 0; x < Size; x++ {
			p := b.cells[y][x]
			if p == nil {
				sb.WriteString(" . ")
			} else {
				fmt.Fprintf(&sb, " %s", p)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
