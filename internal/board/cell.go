package board

import "fmt"

// Size is the width and height of the board.
const Size = 8

// Cell is a board coordinate. X is the column, Y the row; (0,0) is the
// top-left cell on Blue's side.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds returns true if (x, y) lies on the board.
func InBounds(x, y int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size
}

// InBounds returns true if the cell lies on the board.
func (c Cell) InBounds() bool {
	return InBounds(c.X, c.Y)
}

// String returns "(x,y)".
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Distance returns the Chebyshev distance between two cells.
func Distance(fx, fy, tx, ty int) int {
	return max(Abs(tx-fx), Abs(ty-fy))
}

// Neighbors returns the in-bounds cells adjacent to (x, y), in row-major order.
func Neighbors(x, y int) []Cell {
	out := make([]Cell, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if InBounds(x+dx, y+dy) {
				out = append(out, Cell{X: x + dx, Y: y + dy})
			}
		}
	}
	return out
}

// Abs returns the absolute value of v.
func Abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Sign returns -1, 0 or 1.
func Sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
