package shared

import "testing"

func TestLine(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want []string
	}{
		{name: "file", from: "a1", to: "a4", want: []string{"a2", "a3"}},
		{name: "diagonal", from: "c1", to: "f4", want: []string{"d2", "e3"}},
		{name: "adjacent", from: "e4", to: "e5", want: nil},
		{name: "knight jump", from: "b1", to: "c3", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Line(MustSquare(tt.from), MustSquare(tt.to))
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i, sq := range got {
				if sq.String() != tt.want[i] {
					t.Fatalf("index %d: expected %s, got %s", i, tt.want[i], sq)
				}
			}
		})
	}
}

func TestNeighborsClipsAtEdge(t *testing.T) {
	if got := len(Neighbors(MustSquare("a1"), 1)); got != 3 {
		t.Fatalf("expected 3 neighbours of a1, got %d", got)
	}
	if got := len(Neighbors(MustSquare("d4"), 1)); got != 8 {
		t.Fatalf("expected 8 neighbours of d4, got %d", got)
	}
}

func TestSquareCoordinates(t *testing.T) {
	sq, ok := SquareAt(3, 4)
	if !ok {
		t.Fatal("expected (3,4) in bounds")
	}
	if sq.String() != "d5" || sq.X() != 3 || sq.Y() != 4 {
		t.Fatalf("unexpected square %s (%d,%d)", sq, sq.X(), sq.Y())
	}
	if InBounds(8, 0) || InBounds(0, -1) {
		t.Fatal("expected out of bounds")
	}
}
