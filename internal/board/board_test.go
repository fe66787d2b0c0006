package board

import (
	"errors"
	"testing"
)

func TestStartingBoard(t *testing.T) {
	b := NewStartingBoard()

	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			p, err := b.Get(x, y)
			if err != nil {
				t.Fatalf("Get(%d,%d): %v", x, y, err)
			}
			switch {
			case y < StartRows:
				if p == nil || p.Owner != Blue || p.Rank != 1 {
					t.Errorf("(%d,%d): expected rank-1 Blue piece, got %v", x, y, p)
				}
			case y >= Size-StartRows:
				if p == nil || p.Owner != Red || p.Rank != 1 {
					t.Errorf("(%d,%d): expected rank-1 Red piece, got %v", x, y, p)
				}
			default:
				if p != nil {
					t.Errorf("(%d,%d): expected empty, got %v", x, y, p)
				}
			}
		}
	}

	if got := b.Count(Red); got != 24 {
		t.Errorf("Count(Red) = %d, want 24", got)
	}
	if got := b.Count(Blue); got != 24 {
		t.Errorf("Count(Blue) = %d, want 24", got)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestOutOfBounds(t *testing.T) {
	b := NewBoard()

	coords := [][2]int{{-1, 0}, {0, -1}, {8, 0}, {0, 8}, {100, -100}}
	for _, c := range coords {
		if InBounds(c[0], c[1]) {
			t.Errorf("InBounds(%d,%d) = true", c[0], c[1])
		}
		if _, err := b.Get(c[0], c[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Get(%d,%d) err = %v, want ErrOutOfBounds", c[0], c[1], err)
		}
		if err := b.Set(c[0], c[1], nil); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Set(%d,%d) err = %v, want ErrOutOfBounds", c[0], c[1], err)
		}
		if p := b.At(c[0], c[1]); p != nil {
			t.Errorf("At(%d,%d) = %v, want nil", c[0], c[1], p)
		}
	}
}

func TestSetAndForEach(t *testing.T) {
	b := NewBoard()
	p := NewPiece(3, 2, 4, Red)
	if err := b.Place(p); err != nil {
		t.Fatalf("Place: %v", err)
	}
	q := NewPiece(2, 7, 0, Blue)
	if err := b.Place(q); err != nil {
		t.Fatalf("Place: %v", err)
	}

	var visited []*Piece
	b.ForEachPiece(func(p *Piece) { visited = append(visited, p) })
	if len(visited) != 2 || visited[0] != q || visited[1] != p {
		t.Fatalf("ForEachPiece visited %v, want [b2 r3] in row-major order", visited)
	}

	if got := b.Strength(Red); got != 3 {
		t.Errorf("Strength(Red) = %d, want 3", got)
	}
	if err := b.Set(2, 4, nil); err != nil {
		t.Fatalf("Set nil: %v", err)
	}
	if b.Count(Red) != 0 {
		t.Error("expected Red piece to be cleared")
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := NewStartingBoard()
	c := b.Clone()
	if !b.Equal(c) {
		t.Fatal("clone differs from original")
	}

	p := c.At(0, 0)
	p.Rank = 4
	if b.At(0, 0).Rank != 1 {
		t.Error("mutating clone changed original")
	}
	if b.Equal(c) {
		t.Error("Equal should detect rank change")
	}
}

func TestValidate(t *testing.T) {
	b := NewBoard()
	p := NewPiece(1, 1, 1, Red)
	b.Set(2, 2, p)
	if err := b.Validate(); err == nil {
		t.Error("expected position mismatch error")
	}

	b = NewBoard()
	b.Place(NewPiece(6, 0, 0, Blue))
	if err := b.Validate(); err == nil {
		t.Error("expected invalid rank error")
	}

	b = NewBoard()
	p = NewPiece(1, 0, 0, Blue)
	b.Place(p)
	b.Set(1, 0, p)
	if err := b.Validate(); err == nil {
		t.Error("expected shared piece error")
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		fx, fy, tx, ty int
		want           int
	}{
		{0, 0, 0, 0, 0},
		{0, 0, 1, 1, 1},
		{0, 0, 2, 1, 2},
		{3, 3, 0, 7, 4},
		{7, 0, 0, 7, 7},
	}
	for _, tc := range tests {
		if got := Distance(tc.fx, tc.fy, tc.tx, tc.ty); got != tc.want {
			t.Errorf("Distance(%d,%d,%d,%d) = %d, want %d", tc.fx, tc.fy, tc.tx, tc.ty, got, tc.want)
		}
	}
}

func TestNeighbors(t *testing.T) {
	if n := Neighbors(0, 0); len(n) != 3 {
		t.Errorf("corner has %d neighbors, want 3", len(n))
	}
	if n := Neighbors(0, 4); len(n) != 5 {
		t.Errorf("edge has %d neighbors, want 5", len(n))
	}
	if n := Neighbors(4, 4); len(n) != 8 {
		t.Errorf("center has %d neighbors, want 8", len(n))
	}
}

func TestColor(t *testing.T) {
	if Red.Other() != Blue || Blue.Other() != Red {
		t.Error("Other() should swap Red and Blue")
	}

	var c Color
	if err := c.UnmarshalText([]byte("blue")); err != nil || c != Blue {
		t.Errorf("UnmarshalText(blue) = %v, %v", c, err)
	}
	if _, err := ParseColor("green"); err == nil {
		t.Error("expected error for unknown color")
	}
}
