package game

import (
	"fmt"

	"github.com/notnil/chess"
)

// NewEngineFromFEN builds an engine from a FEN position. Castling rights
// decide whether kings and rooks count as moved; pawns off their start rank
// count as moved. En passant targets and move clocks are ignored.
func NewEngineFromFEN(fen string, opts ...Option) (*Engine, error) {
	e := newEngine(opts...)
	if err := e.LoadFEN(fen); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadFEN replaces the position and clears the side configuration.
func (e *Engine) LoadFEN(fen string) error {
	apply, err := chess.FEN(fen)
	if err != nil {
		return fmt.Errorf("parse fen: %w", err)
	}
	pos := chess.NewGame(apply).Position()

	e.clear()
	rights := pos.CastleRights()
	board := pos.Board()
	for i := 0; i < 64; i++ {
		p := board.Piece(chess.Square(i))
		pt, ok := fromChessType(p.Type())
		if !ok {
			continue
		}
		color := White
		if p.Color() == chess.Black {
			color = Black
		}
		at := Square(i)
		e.spawn(color, pt, at, movedFromFEN(color, pt, at, rights))
	}
	toMove := White
	if pos.Turn() == chess.Black {
		toMove = Black
	}
	e.finishSetup(toMove)
	return nil
}

func fromChessType(t chess.PieceType) (PieceType, bool) {
	switch t {
	case chess.Pawn:
		return Pawn, true
	case chess.Knight:
		return Knight, true
	case chess.Bishop:
		return Bishop, true
	case chess.Rook:
		return Rook, true
	case chess.Queen:
		return Queen, true
	case chess.King:
		return King, true
	default:
		return 0, false
	}
}

func movedFromFEN(c Color, pt PieceType, sq Square, rights chess.CastleRights) bool {
	cc := chess.White
	home := 0
	if c == Black {
		cc = chess.Black
		home = 7
	}
	switch pt {
	case Pawn:
		return sq.Rank() != pawnStartRank(c)
	case King:
		if sq.Rank() != home || sq.File() != 4 {
			return true
		}
		return !rights.CanCastle(cc, chess.KingSide) && !rights.CanCastle(cc, chess.QueenSide)
	case Rook:
		if sq.Rank() != home {
			return true
		}
		switch sq.File() {
		case 7:
			return !rights.CanCastle(cc, chess.KingSide)
		case 0:
			return !rights.CanCastle(cc, chess.QueenSide)
		}
		return true
	}
	return false
}
