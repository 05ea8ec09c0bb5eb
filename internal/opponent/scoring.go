package opponent

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"elemental_chess/internal/effects"
	"elemental_chess/internal/game"
)

// Difficulty selects the scoring function.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts the three level names, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// usesAbilities reports whether the level considers ability candidates.
func (d Difficulty) usesAbilities() bool { return d == Medium || d == Hard }

func (d Difficulty) noise() float64 {
	switch d {
	case Easy:
		return 1.0
	case Medium:
		return 0.5
	default:
		return 0.1
	}
}

const (
	materialWeight    = 10.0
	checkBonus        = 4.0
	developmentBonus  = 1.5
	centreWeight      = 0.4
	abilityBase       = 1.0
	abilityHitWeight  = 2.0
	easyExposure      = 3.0
	hangingWeight     = 8.0
	badTradeWeight    = 10.0
	abilityHitBonus   = 0.5
)

// scorer evaluates one candidate against the current position. It may
// simulate the move on the board but must leave it unchanged.
type scorer func(s *scoring, c Candidate) float64

type scoring struct {
	board *game.Board
	color game.Color
	rng   *rand.Rand
	noise float64
}

func (s *scoring) jitter() float64 {
	if s.noise <= 0 || s.rng == nil {
		return 0
	}
	return (s.rng.Float64()*2 - 1) * s.noise
}

func scorerFor(d Difficulty) scorer {
	switch d {
	case Easy:
		return scoreEasy
	case Hard:
		return scoreHard
	default:
		return scoreMedium
	}
}

// scoreEasy plays badly on purpose: it likes walking into attacks and avoids
// taking material.
func scoreEasy(s *scoring, c Candidate) float64 {
	score := s.jitter()
	if victim := s.board.PieceAt(c.Target); victim != nil && victim.Color != s.color {
		score -= float64(victim.Value())
	}
	exposed := false
	s.board.Simulate(c.Piece, c.Target, func(b *game.Board) {
		exposed = b.IsSquareAttackedBy(c.Target, s.color.Opposite())
	})
	if exposed {
		score += easyExposure
	}
	return score
}

func scoreMedium(s *scoring, c Candidate) float64 {
	return s.positional(c) + s.jitter()
}

// scoreHard adds hanging-piece and bad-trade penalties to the medium
// heuristics.
func scoreHard(s *scoring, c Candidate) float64 {
	score := s.positional(c) + s.jitter()
	if c.IsAbility {
		return score
	}
	victim := s.board.PieceAt(c.Target)
	enemy := s.color.Opposite()

	var attacked, defended bool
	s.board.Simulate(c.Piece, c.Target, func(b *game.Board) {
		attacked = b.IsSquareAttackedBy(c.Target, enemy)
		defended = b.IsSquareAttackedBy(c.Target, s.color)
	})
	if !attacked {
		return score
	}
	if victim != nil && victim.Color == enemy {
		if net := victim.Value() - c.Piece.Value(); net < 0 {
			score += float64(net) * badTradeWeight
		}
		return score
	}
	if !defended {
		score -= float64(c.Piece.Value()) * hangingWeight
	}
	return score
}

// positional is the shared heuristic: material, centre control, checks and
// development for moves; hit value and status for abilities.
func (s *scoring) positional(c Candidate) float64 {
	if c.IsAbility {
		return s.abilityValue(c)
	}
	score := centreWeight * centrality(c.Target)
	if victim := s.board.PieceAt(c.Target); victim != nil && victim.Color != s.color {
		score += float64(victim.Value()) * materialWeight
	}
	if s.board.GivesCheck(c.Piece, c.Target) {
		score += checkBonus
	}
	if developing(c.Piece) {
		score += developmentBonus
	}
	return score
}

func (s *scoring) abilityValue(c Candidate) float64 {
	score := abilityBase
	target := s.board.PieceAt(c.Target)
	switch {
	case target == nil:
		score += centreWeight * centrality(c.Target)
	case target.Color != s.color:
		score += float64(target.Value())*abilityHitWeight + abilityHitBonus
		if target.HasStatus(effects.Marked) {
			score += abilityHitBonus
		}
	}
	return score
}

// centrality is 0 on the rim and 3 on the four centre squares.
func centrality(sq game.Square) float64 {
	df := float64(sq.File()) - 3.5
	dr := float64(sq.Rank()) - 3.5
	return 3.5 - max(abs(df), abs(dr))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// developing reports whether moving pc takes an undeveloped minor piece off
// its back rank.
func developing(pc *game.Piece) bool {
	if pc.HasMoved || (pc.Type != game.Knight && pc.Type != game.Bishop) {
		return false
	}
	home := 0
	if pc.Color == game.Black {
		home = 7
	}
	return pc.Square.Rank() == home
}
