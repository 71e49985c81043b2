package engine

import (
	"fmt"

	"github.com/louisbranch/sho/internal/services/sho/domain/board"
	"github.com/louisbranch/sho/internal/services/sho/domain/dice"
	"github.com/louisbranch/sho/internal/services/sho/domain/rules"
)

// Phase is the turn state machine position.
type Phase int

const (
	// PhaseSetup is the zero state before Start.
	PhaseSetup Phase = iota
	PhaseRolling
	PhaseMoving
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseSetup:    "SETUP",
	PhaseRolling:  "ROLLING",
	PhaseMoving:   "MOVING",
	PhaseGameOver: "GAME_OVER",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MarshalText renders the phase name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePhase resolves a phase name.
func ParsePhase(name string) (Phase, bool) {
	for phase, candidate := range phaseNames {
		if candidate == name {
			return phase, true
		}
	}
	return PhaseSetup, false
}

// Options selects rule variants for one game.
type Options struct {
	// NinerMode allows stacks to reach exactly nine coins.
	NinerMode bool `json:"niner_mode"`
}

// State is a full game position. Copy it freely: transitions never write
// through it.
type State struct {
	Phase               Phase
	Board               board.Board
	Players             [2]rules.Player
	Active              board.Seat
	Pool                []int
	WaitingForBonusRoll bool
	Options             Options
	// Turn counts hand-overs between seats, starting at 1.
	Turn     int
	LastRoll dice.Roll
	// LastMove is the most recently applied move, nil before the first one.
	LastMove *rules.Move
	Winner   board.Seat
}

// Player returns the counts for seat.
func (s State) Player(seat board.Seat) rules.Player {
	if !seat.Valid() {
		return rules.Player{}
	}
	return s.Players[seat.Index()]
}

// ActivePlayer returns the counts for the seat on turn.
func (s State) ActivePlayer() rules.Player {
	return s.Player(s.Active)
}

// PoolValues returns a copy of the pending move values.
func (s State) PoolValues() []int {
	return append([]int(nil), s.Pool...)
}

// Over reports whether the game has a winner.
func (s State) Over() bool {
	return s.Phase == PhaseGameOver
}

// HasWon is the win predicate for a single player.
func HasWon(player rules.Player) bool {
	return player.CoinsFinished >= board.CoinsPerPlayer
}

// clone deep-copies the parts of s that are backed by shared storage.
func (s State) clone() State {
	next := s
	next.Pool = s.PoolValues()
	if s.LastMove != nil {
		move := *s.LastMove
		move.ConsumedValues = append([]int(nil), s.LastMove.ConsumedValues...)
		next.LastMove = &move
	}
	return next
}

// Validate checks coin conservation and shell ownership for both seats.
func (s State) Validate() error {
	for _, shell := range s.Board.Shells() {
		if (shell.StackSize > 0) != shell.Owner.Valid() {
			return fmt.Errorf("shell %d: stack %d with owner %s", shell.Index, shell.StackSize, shell.Owner)
		}
	}
	for _, player := range s.Players {
		if player.CoinsInHand < 0 || player.CoinsFinished < 0 {
			return fmt.Errorf("%s: negative coin count", player.Seat)
		}
		total := player.CoinsInHand + player.CoinsFinished + s.Board.CoinsOnBoard(player.Seat)
		if total != board.CoinsPerPlayer {
			return fmt.Errorf("%s: %d coins accounted for, want %d", player.Seat, total, board.CoinsPerPlayer)
		}
	}
	return nil
}
