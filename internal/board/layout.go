package board

import (
	"fmt"
	"strings"
)

// StartLayout is the layout string for the starting position.
const StartLayout = "b1b1b1b1b1b1b1b1/b1b1b1b1b1b1b1b1/b1b1b1b1b1b1b1b1/8/8/r1r1r1r1r1r1r1r1/r1r1r1r1r1r1r1r1/r1r1r1r1r1r1r1r1"

// ParseLayout parses a layout string into a board.
//
// Rows are listed from y=0 to y=7 and separated by '/'. Within a row a piece
// is written as its owner letter ('r' or 'b') followed by its rank, and a
// bare digit 1-8 skips that many empty cells.
func ParseLayout(layout string) (*Board, error) {
	rows := strings.Split(strings.TrimSpace(layout), "/")
	if len(rows) != Size {
		return nil, fmt.Errorf("invalid layout: need %d rows, got %d", Size, len(rows))
	}

	b := NewBoard()
	for y, row := range rows {
		x := 0
		for i := 0; i < len(row); i++ {
			ch := row[i]
			switch {
			case ch == 'r' || ch == 'b':
				if i+1 >= len(row) {
					return nil, fmt.Errorf("invalid layout: row %d: piece %q has no rank", y, ch)
				}
				rank := int(row[i+1] - '0')
				if rank < MinRank || rank > MaxRank {
					return nil, fmt.Errorf("invalid layout: row %d: invalid rank %q", y, row[i+1])
				}
				if x >= Size {
					return nil, fmt.Errorf("invalid layout: row %d too long", y)
				}
				owner := Red
				if ch == 'b' {
					owner = Blue
				}
				b.cells[y][x] = NewPiece(rank, x, y, owner)
				x++
				i++
			case ch >= '1' && ch <= '8':
				x += int(ch - '0')
			default:
				return nil, fmt.Errorf("invalid layout: row %d: unexpected %q", y, ch)
			}
		}
		if x != Size {
			return nil, fmt.Errorf("invalid layout: row %d has %d cells", y, x)
		}
	}
	return b, nil
}

// Layout returns the layout string for the board.
func (b *Board) Layout() string {
	var sb strings.Builder
	for y := 0; y < Size; y++ {
		if y > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for x := 0; x < Size; x++ {
			p := b.cells[y][x]
			if p == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(p.String())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	return sb.String()
}
