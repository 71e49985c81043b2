package engine

import (
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/sho/internal/platform/errors"
	"github.com/louisbranch/sho/internal/services/sho/domain/board"
	"github.com/louisbranch/sho/internal/services/sho/domain/dice"
	"github.com/louisbranch/sho/internal/services/sho/domain/rules"
)

// PaRaBonus is the move value granted by a double-ones roll.
const PaRaBonus = 2

// Operation names used in INVALID_PHASE metadata.
const (
	OpStart = "start"
	OpRoll  = "roll"
	OpMove  = "move"
	OpSkip  = "skip"
)

// NewGame returns a fresh game with seat one to roll.
func NewGame(options Options) State {
	return State{
		Phase:   PhaseRolling,
		Board:   board.New(),
		Players: [2]rules.Player{rules.NewPlayer(board.SeatOne), rules.NewPlayer(board.SeatTwo)},
		Active:  board.SeatOne,
		Options: options,
		Turn:    1,
	}
}

// Start begins a game from SETUP or restarts a finished one.
func Start(state State, options Options) (State, error) {
	if state.Phase != PhaseSetup && state.Phase != PhaseGameOver {
		return state, invalidPhase(OpStart, state.Phase)
	}
	return NewGame(options), nil
}

// Roll throws the dice for the active seat. A Pa Ra keeps the game in
// ROLLING and marks the seat as owed a bonus roll; repeated Pa Ras still
// grant a single bonus value.
func Roll(state State, roller dice.Roller) (State, dice.Roll, error) {
	if state.Phase != PhaseRolling {
		return state, dice.Roll{}, invalidPhase(OpRoll, state.Phase)
	}
	if roller == nil {
		return state, dice.Roll{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "dice roller is required", map[string]string{"Field": "roller"})
	}
	roll, err := roller.Roll()
	if err != nil {
		return state, dice.Roll{}, err
	}

	next := state.clone()
	next.LastRoll = roll
	if roll.IsPaRa() {
		next.WaitingForBonusRoll = true
		return next, roll, nil
	}
	if state.WaitingForBonusRoll {
		next.Pool = []int{PaRaBonus, roll.Total()}
	} else {
		next.Pool = []int{roll.Total()}
	}
	next.WaitingForBonusRoll = false
	next.Phase = PhaseMoving
	return next, roll, nil
}

// AvailableMoves lists the legal moves for the pending pool. Outside MOVING
// there are none.
func AvailableMoves(state State) []rules.Move {
	if state.Phase != PhaseMoving {
		return nil
	}
	return rules.AvailableMoves(state.Active, state.Board, state.Players, state.Pool, state.Options.NinerMode)
}

// Explain reports why source to target is not an available move for the
// active seat.
func Explain(state State, source, target int) rules.BlockReason {
	return rules.Explain(source, target, state.Pool, state.Board, state.ActivePlayer(), state.Options.NinerMode)
}

// ApplyMove plays the available move from source to target.
func ApplyMove(state State, source, target int) (State, error) {
	if state.Phase != PhaseMoving {
		return state, invalidPhase(OpMove, state.Phase)
	}
	move, ok := rules.Find(AvailableMoves(state), source, target)
	if !ok {
		reason := Explain(state, source, target)
		return state, apperrors.WithMetadata(
			apperrors.CodeIllegalMove,
			fmt.Sprintf("no legal move %d -> %d for %s: %s", source, target, state.Active, reason),
			map[string]string{
				"Source": strconv.Itoa(source),
				"Target": strconv.Itoa(target),
				"Reason": string(reason),
			},
		)
	}

	next := state.clone()
	mover := next.Active.Index()
	moving := rules.MovingStackSize(source, next.Board, next.Players[mover])
	opening := source == board.Hand && moving == 2

	if source == board.Hand {
		next.Players[mover].CoinsInHand -= moving
	} else {
		next.Board.Clear(source)
	}

	if err := resolve(&next, move, moving, opening); err != nil {
		return state, apperrors.Wrap(apperrors.CodeUnknown, "resolve move", err)
	}

	next.Pool = rules.ConsumeValues(next.Pool, move.ConsumedValues)
	next.LastMove = &move

	if HasWon(next.Players[mover]) {
		next.Phase = PhaseGameOver
		next.Winner = next.Active
		next.Pool = nil
		return next, nil
	}
	if len(next.Pool) > 0 && len(AvailableMoves(next)) > 0 {
		return next, nil
	}

	next.Pool = nil
	next.Phase = PhaseRolling
	if !move.Type.GrantsBonus() {
		next.passTurn()
	}
	return next, nil
}

// SkipTurn forfeits the rest of a turn that has no legal move.
func SkipTurn(state State) (State, error) {
	if state.Phase != PhaseMoving {
		return state, invalidPhase(OpSkip, state.Phase)
	}
	if moves := AvailableMoves(state); len(moves) > 0 {
		return state, apperrors.WithMetadata(
			apperrors.CodeSkipWithLegalMoves,
			fmt.Sprintf("skip with %d legal moves", len(moves)),
			map[string]string{"Moves": strconv.Itoa(len(moves))},
		)
	}
	next := state.clone()
	next.Pool = nil
	next.Phase = PhaseRolling
	next.passTurn()
	return next, nil
}

func resolve(next *State, move rules.Move, moving int, opening bool) error {
	mover := next.Active
	switch move.Type {
	case rules.MoveFinish:
		next.Players[mover.Index()].CoinsFinished += moving
		return nil
	case rules.MoveKill:
		target, _ := next.Board.Get(move.TargetIndex)
		victim := target.Owner
		next.Players[victim.Index()].CoinsInHand += target.StackSize
		return next.Board.SetShell(move.TargetIndex, moving, mover, false)
	case rules.MoveStack:
		target, _ := next.Board.Get(move.TargetIndex)
		return next.Board.SetShell(move.TargetIndex, target.StackSize+moving, mover, false)
	case rules.MovePlace:
		return next.Board.SetShell(move.TargetIndex, moving, mover, opening)
	default:
		return fmt.Errorf("unknown move type %q", move.Type)
	}
}

func (s *State) passTurn() {
	s.WaitingForBonusRoll = false
	s.Active = s.Active.Other()
	s.Turn++
}

func invalidPhase(operation string, phase Phase) error {
	return apperrors.WithMetadata(
		apperrors.CodeInvalidPhase,
		fmt.Sprintf("%s not allowed in %s", operation, phase),
		map[string]string{"Operation": operation, "Phase": phase.String()},
	)
}
