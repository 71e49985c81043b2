// Package rules generates the legal moves for a Sho position.
//
// Move generation is pure: it reads a board, the moving player and the
// pending move values and returns candidates without mutating anything.
package rules

import "github.com/louisbranch/sho/internal/services/sho/domain/board"

// MoveType classifies how a move resolves on its target.
type MoveType string

const (
	MovePlace  MoveType = "PLACE"
	MoveStack  MoveType = "STACK"
	MoveKill   MoveType = "KILL"
	MoveFinish MoveType = "FINISH"
)

// GrantsBonus reports whether ending a turn segment with this move type
// keeps the active player on roll.
func (t MoveType) GrantsBonus() bool {
	return t == MoveKill || t == MoveStack
}

// Player is one seat's coin counts. Coins on the board are read from the
// board itself.
type Player struct {
	Seat          board.Seat `json:"seat"`
	CoinsInHand   int        `json:"coins_in_hand"`
	CoinsFinished int        `json:"coins_finished"`
}

// NewPlayer returns a seat with every coin in hand.
func NewPlayer(seat board.Seat) Player {
	return Player{Seat: seat, CoinsInHand: board.CoinsPerPlayer}
}

// Move is one legal option for the active player.
type Move struct {
	SourceIndex    int      `json:"source"`
	TargetIndex    int      `json:"target"`
	ConsumedValues []int    `json:"consumed"`
	Type           MoveType `json:"type"`
}

// Matches reports whether the move goes from source to target.
func (m Move) Matches(source, target int) bool {
	return m.SourceIndex == source && m.TargetIndex == target
}

// Combined reports whether the move spends more than one pool value.
func (m Move) Combined() bool {
	return len(m.ConsumedValues) > 1
}

// MovingStackSize returns how many coins leave source. The first coins
// played from a full hand move as a pair.
func MovingStackSize(source int, b board.Board, player Player) int {
	if source == board.Hand {
		switch {
		case player.CoinsInHand <= 0:
			return 0
		case player.CoinsInHand == board.CoinsPerPlayer:
			return 2
		default:
			return 1
		}
	}
	shell, ok := b.Get(source)
	if !ok || shell.Owner != player.Seat {
		return 0
	}
	return shell.StackSize
}

// ComputeMoves evaluates every distinct pool value from source, then the
// combined value of the whole pool. The combined candidate is dropped when
// a single-value candidate already lands on the same target.
func ComputeMoves(source int, values []int, b board.Board, player Player, ninerMode bool) []Move {
	var moves []Move
	seen := make(map[int]bool, len(values))
	for _, value := range values {
		if value <= 0 || seen[value] {
			continue
		}
		seen[value] = true
		if move, reason := evaluate(source, value, []int{value}, b, player, ninerMode); reason == BlockNone {
			moves = append(moves, move)
		}
	}

	if len(values) > 1 {
		total := sum(values)
		move, reason := evaluate(source, total, append([]int(nil), values...), b, player, ninerMode)
		if reason == BlockNone && !targets(moves, move.TargetIndex) {
			moves = append(moves, move)
		}
	}
	return moves
}

// AvailableMoves lists every legal move for the active seat: hand moves
// first, then board sources in ascending shell order.
func AvailableMoves(active board.Seat, b board.Board, players [2]Player, values []int, ninerMode bool) []Move {
	if !active.Valid() || len(values) == 0 {
		return nil
	}
	player := players[active.Index()]

	var moves []Move
	if player.CoinsInHand > 0 {
		moves = append(moves, ComputeMoves(board.Hand, values, b, player, ninerMode)...)
	}
	for _, shell := range b.Occupied(active) {
		moves = append(moves, ComputeMoves(shell.Index, values, b, player, ninerMode)...)
	}
	return moves
}

// Find returns the available move from source to target.
func Find(moves []Move, source, target int) (Move, bool) {
	for _, move := range moves {
		if move.Matches(source, target) {
			return move, true
		}
	}
	return Move{}, false
}

// ConsumeValues removes one occurrence of each consumed value from pool and
// returns the remainder as a new slice.
func ConsumeValues(pool, consumed []int) []int {
	remaining := append([]int(nil), pool...)
	for _, value := range consumed {
		for i, candidate := range remaining {
			if candidate == value {
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	if len(remaining) == 0 {
		return nil
	}
	return remaining
}

func evaluate(source, distance int, consumed []int, b board.Board, player Player, ninerMode bool) (Move, BlockReason) {
	moving := MovingStackSize(source, b, player)
	if moving == 0 {
		return Move{}, BlockNoSource
	}

	move := Move{SourceIndex: source, TargetIndex: source + distance, ConsumedValues: consumed}
	if move.TargetIndex > board.Size {
		move.Type = MoveFinish
		return move, BlockNone
	}

	target, _ := b.Get(move.TargetIndex)
	switch {
	case target.Empty():
		move.Type = MovePlace
	case target.Owner == player.Seat:
		if !ninerMode && target.StackSize+moving == board.CoinsPerPlayer {
			return Move{}, BlockNinerLimit
		}
		move.Type = MoveStack
	default:
		if moving < target.StackSize {
			return Move{}, BlockStackTooSmall
		}
		move.Type = MoveKill
	}
	return move, BlockNone
}

func targets(moves []Move, target int) bool {
	for _, move := range moves {
		if move.TargetIndex == target {
			return true
		}
	}
	return false
}

func sum(values []int) int {
	total := 0
	for _, value := range values {
		total += value
	}
	return total
}
