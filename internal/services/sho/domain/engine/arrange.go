package engine

import (
	"fmt"

	"github.com/louisbranch/sho/internal/services/sho/domain/board"
)

// WithShell returns a copy of state with one shell overwritten. It is meant
// for building positions in tests and scenarios; coin counts are not
// rebalanced, so pair it with WithPlayer and check Validate.
func (s State) WithShell(index int, owner board.Seat, stackSize int) (State, error) {
	next := s.clone()
	if err := next.Board.SetShell(index, stackSize, owner, false); err != nil {
		return s, err
	}
	return next, nil
}

// WithPlayer returns a copy of state with one seat's coin counts replaced.
func (s State) WithPlayer(seat board.Seat, inHand, finished int) (State, error) {
	if !seat.Valid() {
		return s, fmt.Errorf("invalid seat %d", seat)
	}
	next := s.clone()
	next.Players[seat.Index()].CoinsInHand = inHand
	next.Players[seat.Index()].CoinsFinished = finished
	return next, nil
}

// WithActive returns a copy of state with seat on turn.
func (s State) WithActive(seat board.Seat) (State, error) {
	if !seat.Valid() {
		return s, fmt.Errorf("invalid seat %d", seat)
	}
	next := s.clone()
	next.Active = seat
	return next, nil
}
