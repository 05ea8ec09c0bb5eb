package shared

import (
	"fmt"
	"strings"
)

// Color identifies a side. White is side A and always moves first.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Index() int { return int(c) }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w", "a":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return White, false
	}
}

type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

// PieceTypeCount sizes per-type tables.
const PieceTypeCount = 6

var AllPieceTypes = [PieceTypeCount]PieceType{Pawn, Knight, Bishop, Rook, Queen, King}

func (p PieceType) String() string {
	switch p {
	case Pawn:
		return "P"
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return fmt.Sprintf("piece(%d)", p)
	}
}

// Name returns the lower-case long name used in config keys and JSON.
func (p PieceType) Name() string {
	switch p {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "?"
	}
}

func ParsePieceType(s string) (PieceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p", "pawn":
		return Pawn, true
	case "n", "knight":
		return Knight, true
	case "b", "bishop":
		return Bishop, true
	case "r", "rook":
		return Rook, true
	case "q", "queen":
		return Queen, true
	case "k", "king":
		return King, true
	default:
		return 0, false
	}
}

type Element uint8

const (
	ElementFire Element = iota
	ElementIce
	ElementEarth
	ElementLightning
	ElementShadow
	ElementNone Element = 255
)

// ElementCount sizes per-element tables; ElementNone is not counted.
const ElementCount = 5

var AllElements = [ElementCount]Element{ElementFire, ElementIce, ElementEarth, ElementLightning, ElementShadow}

func (e Element) Valid() bool { return e < ElementCount }

func (e Element) String() string {
	switch e {
	case ElementFire:
		return "Fire"
	case ElementIce:
		return "Ice"
	case ElementEarth:
		return "Earth"
	case ElementLightning:
		return "Lightning"
	case ElementShadow:
		return "Shadow"
	case ElementNone:
		return "None"
	default:
		return "?"
	}
}

func ParseElement(s string) (Element, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fire":
		return ElementFire, true
	case "ice":
		return ElementIce, true
	case "earth":
		return ElementEarth, true
	case "lightning":
		return ElementLightning, true
	case "shadow":
		return ElementShadow, true
	case "none", "":
		return ElementNone, true
	default:
		return ElementNone, false
	}
}

func ElementStrings() []string {
	out := make([]string, len(AllElements))
	for i, e := range AllElements {
		out[i] = e.String()
	}
	return out
}

// Square indexes the board as rank*8+file. File is the x coordinate and
// rank the y coordinate; white starts on ranks 0 and 1.
type Square uint8

func (s Square) Rank() int { return int(s) >> 3 }
func (s Square) File() int { return int(s) & 7 }

// X and Y expose the square as board coordinates.
func (s Square) X() int { return s.File() }
func (s Square) Y() int { return s.Rank() }

func (s Square) String() string {
	file := byte('a' + s.File())
	rank := byte('1' + s.Rank())
	return string([]byte{file, rank})
}

func (s Square) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Square) UnmarshalText(text []byte) error {
	sq, ok := CoordToSquare(strings.ToLower(strings.TrimSpace(string(text))))
	if !ok {
		return fmt.Errorf("invalid square %q", string(text))
	}
	*s = sq
	return nil
}

func CoordToSquare(coord string) (Square, bool) {
	if len(coord) != 2 {
		return 0, false
	}
	file := coord[0]
	rank := coord[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return 0, false
	}
	r := int(rank - '1')
	c := int(file - 'a')
	return Square(r*8 + c), true
}

// InBounds reports whether (x, y) lies on the 8x8 board.
func InBounds(x, y int) bool { return x >= 0 && x < 8 && y >= 0 && y < 8 }

// SquareAt converts board coordinates to a Square.
func SquareAt(x, y int) (Square, bool) { return SquareFromCoords(y, x) }

// MustSquare parses algebraic coordinates and panics on bad input. Intended
// for fixtures and tests.
func MustSquare(coord string) Square {
	sq, ok := CoordToSquare(coord)
	if !ok {
		panic(fmt.Sprintf("invalid square %q", coord))
	}
	return sq
}
