package game

import (
	"elemental_chess/internal/cooldown"
	"elemental_chess/internal/effects"
)

// PieceState is a serializable view of a piece.
type PieceState struct {
	ID           int                    `json:"id"`
	Color        Color                  `json:"color"`
	ColorName    string                 `json:"colorName"`
	Type         PieceType              `json:"type"`
	TypeName     string                 `json:"typeName"`
	Square       Square                 `json:"square"`
	HasMoved     bool                   `json:"hasMoved"`
	Element      string                 `json:"element,omitempty"`
	Passive      string                 `json:"passive,omitempty"`
	Active       string                 `json:"active,omitempty"`
	Cooldown     *cooldown.Tracker      `json:"cooldown,omitempty"`
	Statuses     []effects.StatusEffect `json:"statuses,omitempty"`
	ImmuneTo     []string               `json:"immuneTo,omitempty"`
	AbilityReady bool                   `json:"abilityReady"`
}

// SideState is a serializable view of one side's draft.
type SideState struct {
	Configured bool     `json:"configured"`
	Element    string   `json:"element"`
	Types      []string `json:"types,omitempty"`
}

// BoardState is a serializable snapshot of the match for collaborators.
type BoardState struct {
	MatchID    string                 `json:"matchId"`
	Ready      bool                   `json:"ready"`
	Turn       Color                  `json:"turn"`
	TurnName   string                 `json:"turnName"`
	TurnNumber int                    `json:"turnNumber"`
	Status     GameStatus             `json:"status"`
	Sides      [2]SideState           `json:"sides"`
	Pieces     []PieceState           `json:"pieces"`
	Effects    []effects.SquareEffect `json:"effects"`
	History    []HistoryEntry         `json:"history"`
}

// State returns a snapshot of the match.
func (e *Engine) State() BoardState {
	st := BoardState{
		MatchID:    e.id.String(),
		Ready:      e.Ready(),
		Turn:       e.turn,
		TurnName:   e.turn.String(),
		TurnNumber: e.turnNumber,
		Status:     e.status,
		Effects:    e.ledger.All(),
		History:    e.History(),
	}
	for _, c := range [2]Color{White, Black} {
		side := SideState{Configured: e.configured[c], Element: e.sides[c].Element.String()}
		for _, pt := range e.sides[c].Types {
			side.Types = append(side.Types, pt.Name())
		}
		st.Sides[c] = side
		for _, pc := range e.board.AllPieces(c) {
			st.Pieces = append(st.Pieces, e.pieceState(pc))
		}
	}
	return st
}

func (e *Engine) pieceState(pc *Piece) PieceState {
	ps := PieceState{
		ID:        pc.ID,
		Color:     pc.Color,
		ColorName: pc.Color.String(),
		Type:      pc.Type,
		TypeName:  pc.Type.Name(),
		Square:    pc.Square,
		HasMoved:  pc.HasMoved,
		Statuses:  pc.Statuses.List(),
	}
	if pc.Elemental() {
		ps.Element = pc.Element.String()
		ps.Passive = pc.PassiveName
		ps.Active = pc.ActiveName
	}
	if pc.Cooldown != nil {
		cd := *pc.Cooldown
		ps.Cooldown = &cd
	}
	for _, t := range pc.Immunities.StatusList() {
		ps.ImmuneTo = append(ps.ImmuneTo, t.String())
	}
	for _, t := range pc.Immunities.SquareList() {
		ps.ImmuneTo = append(ps.ImmuneTo, t.String())
	}
	ps.AbilityReady = pc.Color == e.turn && e.AbilityAvailable(pc)
	return ps
}
