package board

import "testing"

func TestStartLayoutMatchesStartingBoard(t *testing.T) {
	b, err := ParseLayout(StartLayout)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	if !b.Equal(NewStartingBoard()) {
		t.Errorf("StartLayout differs from NewStartingBoard:\n%s", b)
	}
	if got := NewStartingBoard().Layout(); got != StartLayout {
		t.Errorf("Layout() = %q, want %q", got, StartLayout)
	}
}

func TestParseLayout(t *testing.T) {
	b, err := ParseLayout("r12b34/8/8/3r54/8/8/8/7b1")
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	t.Log("\n" + b.String())

	checks := []struct {
		x, y  int
		owner Color
		rank  int
	}{
		{0, 0, Red, 1},
		{3, 0, Blue, 3},
		{3, 3, Red, 5},
		{7, 7, Blue, 1},
	}
	for _, c := range checks {
		p := b.At(c.x, c.y)
		if p == nil || p.Owner != c.owner || p.Rank != c.rank || p.X != c.x || p.Y != c.y {
			t.Errorf("(%d,%d) = %v, want %c%d", c.x, c.y, p, c.owner.Char(), c.rank)
		}
	}
	if got := b.Count(Red) + b.Count(Blue); got != 4 {
		t.Errorf("piece count = %d, want 4", got)
	}
	if got := b.Layout(); got != "r12b34/8/8/3r54/8/8/8/7b1" {
		t.Errorf("round trip = %q", got)
	}
}

func TestParseLayoutErrors(t *testing.T) {
	bad := []string{
		"",
		"8/8/8/8/8/8/8",
		"8/8/8/8/8/8/8/8/8",
		"9/8/8/8/8/8/8/8",
		"7/8/8/8/8/8/8/8",
		"r6 7/8/8/8/8/8/8/8",
		"r07/8/8/8/8/8/8/8",
		"x17/8/8/8/8/8/8/8",
		"8r1/8/8/8/8/8/8/8",
		"7r/8/8/8/8/8/8/8",
	}
	for _, s := range bad {
		if _, err := ParseLayout(s); err == nil {
			t.Errorf("ParseLayout(%q): expected error", s)
		}
	}
}
