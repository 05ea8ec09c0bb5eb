package game

// Result names the state of the game for the side to move.
type Result string

const (
	ResultOngoing        Result = "ongoing"
	ResultCheck          Result = "check"
	ResultCheckmate      Result = "checkmate"
	ResultStalemate      Result = "stalemate"
	ResultNoLegalActions Result = "no-legal-actions"
	ResultKingLost       Result = "king-lost"
)

type GameStatus struct {
	InCheck  bool   `json:"inCheck"`
	GameOver bool   `json:"gameOver"`
	Result   Result `json:"result"`
	Winner   *Color `json:"winner,omitempty"`
}

func (e *Engine) Status() GameStatus { return e.status }

func (e *Engine) GameOver() bool { return e.status.GameOver }

// hasLegalAction reports whether c can move a piece or activate an ability.
func (e *Engine) hasLegalAction(c Color) bool {
	if e.board.HasLegalMove(c) {
		return true
	}
	for _, pc := range e.board.AllPieces(c) {
		if e.AbilityAvailable(pc) && !pc.Active.TargetSquares(pc, e.board, e.ledger).Empty() {
			return true
		}
	}
	return false
}

// temporarilyStuck reports whether any of c's pieces is held by a status
// that will wear off.
func (e *Engine) temporarilyStuck(c Color) bool {
	for _, pc := range e.board.AllPieces(c) {
		if pc.Immobile() {
			return true
		}
	}
	return false
}

func (e *Engine) refreshStatus() {
	current := e.turn
	e.status = GameStatus{Result: ResultOngoing}

	for _, c := range [2]Color{White, Black} {
		if e.setup && e.board.King(c) == nil {
			winner := c.Opposite()
			e.status = GameStatus{GameOver: true, Result: ResultKingLost, Winner: &winner}
			return
		}
	}

	inCheck := e.board.IsKingInCheck(current)
	e.status.InCheck = inCheck
	if inCheck {
		e.status.Result = ResultCheck
	}
	if e.hasLegalAction(current) {
		return
	}
	switch {
	case inCheck:
		winner := current.Opposite()
		e.status.GameOver = true
		e.status.Result = ResultCheckmate
		e.status.Winner = &winner
	case e.temporarilyStuck(current):
		e.status.Result = ResultNoLegalActions
	default:
		e.status.GameOver = true
		e.status.Result = ResultStalemate
	}
}
