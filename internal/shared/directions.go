package shared

// Line returns the squares strictly between from and to when both lie on a
// shared rank, file or diagonal. It returns nil otherwise.
func Line(from, to Square) []Square {
	dr := to.Rank() - from.Rank()
	df := to.File() - from.File()
	stepR := normalize(dr)
	stepF := normalize(df)

	aligned := false
	switch {
	case dr == 0 && df != 0:
		stepR = 0
		aligned = true
	case df == 0 && dr != 0:
		stepF = 0
		aligned = true
	case abs(dr) == abs(df) && dr != 0:
		aligned = true
	}

	if !aligned {
		return nil
	}

	distance := max(abs(dr), abs(df)) - 1
	if distance <= 0 {
		return nil
	}

	squares := make([]Square, 0, distance)
	rank := from.Rank()
	file := from.File()
	for i := 0; i < distance; i++ {
		rank += stepR
		file += stepF
		sq, ok := SquareFromCoords(rank, file)
		if !ok {
			return nil
		}
		squares = append(squares, sq)
	}
	return squares
}

// Aligned reports whether two distinct squares share a rank, file or diagonal.
func Aligned(from, to Square) bool {
	dr := abs(to.Rank() - from.Rank())
	df := abs(to.File() - from.File())
	if dr == 0 && df == 0 {
		return false
	}
	return dr == 0 || df == 0 || dr == df
}

// Diagonal reports whether two distinct squares share a diagonal.
func Diagonal(from, to Square) bool {
	dr := abs(to.Rank() - from.Rank())
	df := abs(to.File() - from.File())
	return dr != 0 && dr == df
}

// Orthogonal reports whether two distinct squares share a rank or file.
func Orthogonal(from, to Square) bool {
	if from == to {
		return false
	}
	return from.Rank() == to.Rank() || from.File() == to.File()
}

// Distance is the Chebyshev (king-move) distance between two squares.
func Distance(a, b Square) int {
	return max(abs(a.Rank()-b.Rank()), abs(a.File()-b.File()))
}

// Neighbors returns the squares within the given Chebyshev radius of center,
// excluding center itself, in rank-major order.
func Neighbors(center Square, radius int) []Square {
	out := make([]Square, 0, (2*radius+1)*(2*radius+1)-1)
	for dr := -radius; dr <= radius; dr++ {
		for df := -radius; df <= radius; df++ {
			if dr == 0 && df == 0 {
				continue
			}
			if sq, ok := SquareFromCoords(center.Rank()+dr, center.File()+df); ok {
				out = append(out, sq)
			}
		}
	}
	return out
}

func SquareFromCoords(rank, file int) (Square, bool) {
	if rank < 0 || rank > 7 || file < 0 || file > 7 {
		return 0, false
	}
	return Square(rank*8 + file), true
}

func normalize(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
