package game

import (
	"elemental_chess/internal/cooldown"
	"elemental_chess/internal/effects"
)

// HistoryEntry is one recorded action. Intermediate legs of a compound
// action are never recorded.
type HistoryEntry struct {
	Seq      int        `json:"seq"`
	Turn     int        `json:"turn"`
	Color    Color      `json:"color"`
	Piece    PieceType  `json:"piece"`
	From     Square     `json:"from"`
	To       Square     `json:"to"`
	Captured *PieceType `json:"captured,omitempty"`
	Ability  string     `json:"ability,omitempty"`
	Note     string     `json:"note,omitempty"`
}

func (e *Engine) appendHistory(entry HistoryEntry) {
	entry.Seq = len(e.history) + 1
	entry.Turn = e.turnNumber
	e.history = append(e.history, entry)
	if e.action != nil {
		e.action.recorded = true
	}
}

// History returns a copy of the recorded entries.
func (e *Engine) History() []HistoryEntry {
	out := make([]HistoryEntry, len(e.history))
	copy(out, e.history)
	return out
}

// snapshot captures everything an ability may touch so a failed or
// self-checking activation can be rolled back.
type snapshot struct {
	grid    [64]*Piece
	pieces  []pieceSnapshot
	ledger  *effects.Ledger
	history int
}

type pieceSnapshot struct {
	ptr      *Piece
	value    Piece
	cooldown *cooldown.Tracker
}

func (e *Engine) snapshot() snapshot {
	s := snapshot{
		grid:    e.board.grid,
		ledger:  e.ledger.Clone(),
		history: len(e.history),
	}
	for _, pc := range e.board.grid {
		if pc == nil {
			continue
		}
		ps := pieceSnapshot{ptr: pc, value: pc.clone()}
		ps.cooldown = pc.Cooldown
		s.pieces = append(s.pieces, ps)
	}
	return s
}

func (e *Engine) restore(s snapshot) {
	e.board.grid = s.grid
	for _, ps := range s.pieces {
		cd := ps.value.Cooldown
		*ps.ptr = ps.value
		if ps.cooldown != nil && cd != nil {
			*ps.cooldown = *cd
		}
		ps.ptr.Cooldown = ps.cooldown
	}
	e.board.rebuildOccupancy()
	e.ledger.Restore(s.ledger)
	e.history = e.history[:s.history]
}
