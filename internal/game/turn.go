package game

import (
	"go.uber.org/zap"

	"elemental_chess/internal/effects"
)

// Event is a notable outcome reported with a turn result.
type Event string

const (
	EventMoved          Event = "moved"
	EventCaptured       Event = "captured"
	EventAbility        Event = "ability"
	EventForfeit        Event = "forfeit"
	EventCheck          Event = "check"
	EventCheckmate      Event = "checkmate"
	EventStalemate      Event = "stalemate"
	EventNoLegalActions Event = "no-legal-actions"
)

// TurnResult summarises one applied action and the turn boundary after it.
type TurnResult struct {
	Turn       Color                  `json:"turn"`
	TurnNumber int                    `json:"turnNumber"`
	Status     GameStatus             `json:"status"`
	Events     []Event                `json:"events,omitempty"`
	Expired    []effects.SquareEffect `json:"expired,omitempty"`
}

// maxConsecutivePasses ends the game when both sides are left without an
// action in a row.
const maxConsecutivePasses = 2

// EndTurn hands the move to the other side. The square ledger ticks once.
// Pieces of the side about to move tick their cooldowns; pieces of the side
// that just moved tick their statuses. Every passive's OnTurnStart then
// fires.
func (e *Engine) EndTurn() TurnResult {
	e.turn = e.turn.Opposite()
	e.turnNumber++

	result := TurnResult{}
	result.Expired = e.ledger.TickAll()

	pieces := append(e.board.AllPieces(White), e.board.AllPieces(Black)...)
	for _, pc := range pieces {
		if pc.Color == e.turn {
			pc.Cooldown.Tick()
			continue
		}
		for _, st := range pc.Statuses.Tick() {
			e.logger.Debug("status expired", zap.Stringer("piece", pc), zap.Stringer("status", st))
		}
	}
	for _, pc := range pieces {
		if pc.Passive == nil || e.board.PieceAt(pc.Square) != pc {
			continue
		}
		pc.Passive.OnTurnStart(e, pc, e.turn)
	}
	e.board.RecalculateAttacks()

	e.refreshStatus()
	result.Turn = e.turn
	result.TurnNumber = e.turnNumber
	result.Status = e.status
	switch e.status.Result {
	case ResultCheck:
		result.Events = append(result.Events, EventCheck)
	case ResultCheckmate:
		result.Events = append(result.Events, EventCheckmate)
	case ResultStalemate:
		result.Events = append(result.Events, EventStalemate)
	case ResultNoLegalActions:
		result.Events = append(result.Events, EventNoLegalActions)
		e.passes++
		e.logger.Info("side has no legal actions, passing",
			zap.Stringer("color", e.turn),
			zap.Int("turn", e.turnNumber))
		if e.passes >= maxConsecutivePasses {
			e.status = GameStatus{GameOver: true, Result: ResultStalemate}
			result.Status = e.status
			result.Events = append(result.Events, EventStalemate)
			return result
		}
		next := e.EndTurn()
		next.Events = append(result.Events, next.Events...)
		next.Expired = append(result.Expired, next.Expired...)
		return next
	}
	return result
}

// Turn returns the side to move.
func (e *Engine) Turn() Color { return e.turn }

// TurnNumber counts turn boundaries since the game started.
func (e *Engine) TurnNumber() int { return e.turnNumber }
