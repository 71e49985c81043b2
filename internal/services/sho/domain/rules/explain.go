package rules

import "github.com/louisbranch/sho/internal/services/sho/domain/board"

// BlockReason explains why a source/target pair is not a legal move.
type BlockReason string

const (
	// BlockNone means the pair is legal.
	BlockNone BlockReason = "NONE"
	// BlockNoSource means the mover has nothing to move from the source.
	BlockNoSource BlockReason = "NO_SOURCE"
	// BlockNoDistance means no pool value, alone or combined, reaches the target.
	BlockNoDistance BlockReason = "NO_DISTANCE"
	// BlockStackTooSmall means the opponent's stack on the target is larger.
	BlockStackTooSmall BlockReason = "STACK_TOO_SMALL"
	// BlockNinerLimit means the move would build a nine-coin stack.
	BlockNinerLimit BlockReason = "NINER_LIMIT"
)

// Explain runs the same legality checks as ComputeMoves for one pair and
// reports the first reason it is blocked.
func Explain(source, target int, values []int, b board.Board, player Player, ninerMode bool) BlockReason {
	if source != board.Hand && !board.InRange(source) {
		return BlockNoSource
	}
	if MovingStackSize(source, b, player) == 0 {
		return BlockNoSource
	}

	distance := target - source
	candidates := make([][]int, 0, len(values)+1)
	seen := make(map[int]bool, len(values))
	for _, value := range values {
		if value <= 0 || seen[value] {
			continue
		}
		seen[value] = true
		candidates = append(candidates, []int{value})
	}
	if len(values) > 1 {
		candidates = append(candidates, append([]int(nil), values...))
	}

	for _, consumed := range candidates {
		if sum(consumed) != distance {
			continue
		}
		_, reason := evaluate(source, distance, consumed, b, player, ninerMode)
		return reason
	}
	return BlockNoDistance
}
