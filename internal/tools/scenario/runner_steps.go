package scenario

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/sho/internal/platform/errors"
	"github.com/louisbranch/sho/internal/services/sho/app"
	"github.com/louisbranch/sho/internal/services/sho/domain/board"
	"github.com/louisbranch/sho/internal/services/sho/domain/dice"
	"github.com/louisbranch/sho/internal/services/sho/domain/engine"
	"github.com/louisbranch/sho/internal/services/sho/domain/rules"
)

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	if state.rejection != nil && step.Kind != "expect_rejected" {
		err := state.rejection
		state.rejection = nil
		if failure := r.assertf("unexpected rejection %s: %v", apperrors.CodeOf(err), err); failure != nil {
			return failure
		}
	}
	if state.arranged && !strings.HasPrefix(step.Kind, "setup_") {
		if err := r.validatePosition(ctx, state); err != nil {
			return err
		}
	}
	if step.Kind != "options" {
		if err := r.ensureGame(ctx, state); err != nil {
			return err
		}
	}

	switch step.Kind {
	case "options":
		return r.runOptions(state, step)
	case "restart":
		return r.runRestart(ctx, state, step)
	case "roll":
		return r.runRoll(ctx, state, step)
	case "move":
		return r.runMove(ctx, state, step)
	case "skip":
		_, err := r.table.Skip(ctx, state.gameID)
		state.rejection = err
		return nil
	case "setup_shell":
		return r.runSetupShell(ctx, state, step)
	case "setup_player":
		return r.runSetupPlayer(ctx, state, step)
	case "setup_active":
		return r.runSetupActive(ctx, state, step)
	case "expect_phase":
		return r.runExpectPhase(ctx, state, step)
	case "expect_pool":
		return r.runExpectPool(ctx, state, step)
	case "expect_active":
		return r.runExpectActive(ctx, state, step)
	case "expect_bonus_roll":
		return r.runExpectBonusRoll(ctx, state, step)
	case "expect_shell":
		return r.runExpectShell(ctx, state, step)
	case "expect_hand":
		return r.runExpectCount(ctx, state, step, "coins in hand", func(p app.PlayerView) int { return p.CoinsInHand })
	case "expect_finished":
		return r.runExpectCount(ctx, state, step, "coins finished", func(p app.PlayerView) int { return p.CoinsFinished })
	case "expect_winner":
		return r.runExpectWinner(ctx, state, step)
	case "expect_move":
		return r.runExpectMove(ctx, state, step)
	case "expect_blocked":
		return r.runExpectBlocked(ctx, state, step)
	case "expect_rejected":
		return r.runExpectRejected(state, step)
	default:
		return r.failf("unknown step kind %q", step.Kind)
	}
}

// finish checks what a scenario may leave unasserted.
func (r *Runner) finish(ctx context.Context, state *scenarioState) error {
	if state.rejection != nil {
		err := state.rejection
		state.rejection = nil
		if failure := r.assertf("unexpected rejection %s: %v", apperrors.CodeOf(err), err); failure != nil {
			return failure
		}
	}
	if state.arranged {
		return r.validatePosition(ctx, state)
	}
	return nil
}

func (r *Runner) ensureGame(ctx context.Context, state *scenarioState) error {
	if state.started() {
		return nil
	}
	sequence, err := dice.NewSequence()
	if err != nil {
		return err
	}
	view, err := r.table.Create(ctx, app.CreateOptions{
		ID:      state.name,
		Options: state.options,
		Roller:  sequence,
	})
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	state.gameID = view.ID
	state.dice = sequence
	r.logf("game %s created (niner mode %t)", view.ID, view.NinerMode)
	return nil
}

func (r *Runner) validatePosition(ctx context.Context, state *scenarioState) error {
	current, err := r.table.State(ctx, state.gameID)
	if err != nil {
		return err
	}
	if err := current.Validate(); err != nil {
		return r.failf("arranged position is invalid: %v", err)
	}
	state.arranged = false
	return nil
}

func (r *Runner) view(ctx context.Context, state *scenarioState) (app.GameView, error) {
	view, err := r.table.Get(ctx, state.gameID)
	if err != nil {
		return app.GameView{}, fmt.Errorf("get game: %w", err)
	}
	return view, nil
}

func (r *Runner) runOptions(state *scenarioState, step Step) error {
	if state.started() {
		return r.failf("options must come before the first play step")
	}
	state.options.NinerMode = optionalBool(step.Args, "niner", state.options.NinerMode)
	return nil
}

func (r *Runner) runRestart(ctx context.Context, state *scenarioState, step Step) error {
	options := engine.Options{NinerMode: optionalBool(step.Args, "niner", state.options.NinerMode)}
	if _, err := r.table.Restart(ctx, state.gameID, options); err != nil {
		state.rejection = err
		return nil
	}
	state.options = options
	return nil
}

func (r *Runner) runRoll(ctx context.Context, state *scenarioState, step Step) error {
	die1, ok := readInt(step.Args, "die1")
	if !ok {
		return r.failf("roll die1 is required")
	}
	die2, ok := readInt(step.Args, "die2")
	if !ok {
		return r.failf("roll die2 is required")
	}
	if err := state.dice.Push(dice.Roll{Die1: die1, Die2: die2}); err != nil {
		return r.failf("roll %d,%d: %v", die1, die2, err)
	}
	_, roll, err := r.table.Roll(ctx, state.gameID)
	if err != nil {
		// The queued roll was never consumed; drain it so later rolls line up.
		_, _ = state.dice.Roll()
		state.rejection = err
		return nil
	}
	r.logf("rolled %s", roll)
	return nil
}

func (r *Runner) runMove(ctx context.Context, state *scenarioState, step Step) error {
	source, target, err := r.readPair(step, "move")
	if err != nil {
		return err
	}
	view, err := r.table.ApplyMove(ctx, state.gameID, source, target)
	if err != nil {
		state.rejection = err
		return nil
	}
	if view.LastMove != nil {
		r.logf("moved %d -> %d (%s)", source, target, view.LastMove.Type)
	}
	return nil
}

func (r *Runner) runSetupShell(ctx context.Context, state *scenarioState, step Step) error {
	index, ok := readInt(step.Args, "index")
	if !ok {
		return r.failf("setup_shell index is required")
	}
	seat := optionalInt(step.Args, "seat", 0)
	stack := optionalInt(step.Args, "stack", 0)
	if _, err := r.table.Arrange(ctx, state.gameID, func(current engine.State) (engine.State, error) {
		return current.WithShell(index, board.Seat(seat), stack)
	}); err != nil {
		return r.failf("setup_shell %d: %v", index, err)
	}
	state.arranged = true
	return nil
}

func (r *Runner) runSetupPlayer(ctx context.Context, state *scenarioState, step Step) error {
	seat, ok := readInt(step.Args, "seat")
	if !ok {
		return r.failf("setup_player seat is required")
	}
	if _, err := r.table.Arrange(ctx, state.gameID, func(current engine.State) (engine.State, error) {
		player := current.Player(board.Seat(seat))
		inHand := optionalInt(step.Args, "hand", player.CoinsInHand)
		finished := optionalInt(step.Args, "finished", player.CoinsFinished)
		return current.WithPlayer(board.Seat(seat), inHand, finished)
	}); err != nil {
		return r.failf("setup_player %d: %v", seat, err)
	}
	state.arranged = true
	return nil
}

func (r *Runner) runSetupActive(ctx context.Context, state *scenarioState, step Step) error {
	seat, ok := readInt(step.Args, "seat")
	if !ok {
		return r.failf("setup_active seat is required")
	}
	if _, err := r.table.Arrange(ctx, state.gameID, func(current engine.State) (engine.State, error) {
		return current.WithActive(board.Seat(seat))
	}); err != nil {
		return r.failf("setup_active %d: %v", seat, err)
	}
	state.arranged = true
	return nil
}

func (r *Runner) runExpectPhase(ctx context.Context, state *scenarioState, step Step) error {
	want := requiredString(step.Args, "phase")
	if _, ok := engine.ParsePhase(want); !ok {
		return r.failf("unknown phase %q", want)
	}
	view, err := r.view(ctx, state)
	if err != nil {
		return err
	}
	if view.Phase != want {
		return r.assertf("phase = %s, want %s", view.Phase, want)
	}
	return nil
}

func (r *Runner) runExpectPool(ctx context.Context, state *scenarioState, step Step) error {
	want, err := readIntList(step.Args, "pool")
	if err != nil {
		return r.failf("expect_pool: %v", err)
	}
	view, err := r.view(ctx, state)
	if err != nil {
		return err
	}
	if !equalInts(view.Pool, want) {
		return r.assertf("pool = %v, want %v", view.Pool, want)
	}
	return nil
}

func (r *Runner) runExpectActive(ctx context.Context, state *scenarioState, step Step) error {
	want, ok := readInt(step.Args, "seat")
	if !ok {
		return r.failf("expect_active seat is required")
	}
	view, err := r.view(ctx, state)
	if err != nil {
		return err
	}
	if view.Active != want {
		return r.assertf("active seat = %d, want %d", view.Active, want)
	}
	return nil
}

func (r *Runner) runExpectBonusRoll(ctx context.Context, state *scenarioState, step Step) error {
	want := optionalBool(step.Args, "waiting", true)
	view, err := r.view(ctx, state)
	if err != nil {
		return err
	}
	if view.WaitingForBonusRoll != want {
		return r.assertf("waiting for bonus roll = %t, want %t", view.WaitingForBonusRoll, want)
	}
	return nil
}

func (r *Runner) runExpectShell(ctx context.Context, state *scenarioState, step Step) error {
	index, ok := readInt(step.Args, "index")
	if !ok {
		return r.failf("expect_shell index is required")
	}
	view, err := r.view(ctx, state)
	if err != nil {
		return err
	}
	shell := view.Shell(index)
	if want, ok := readInt(step.Args, "stack"); ok && shell.StackSize != want {
		return r.assertf("shell %d stack = %d, want %d", index, shell.StackSize, want)
	}
	if want, ok := readInt(step.Args, "owner"); ok && shell.Owner != want {
		return r.assertf("shell %d owner = %d, want %d", index, shell.Owner, want)
	}
	if want, ok := readBool(step.Args, "sho_mo"); ok && shell.IsShoMo != want {
		return r.assertf("shell %d sho-mo = %t, want %t", index, shell.IsShoMo, want)
	}
	return nil
}

func (r *Runner) runExpectCount(ctx context.Context, state *scenarioState, step Step, label string, count func(app.PlayerView) int) error {
	seat, ok := readInt(step.Args, "seat")
	if !ok {
		return r.failf("%s seat is required", step.Kind)
	}
	want, ok := readInt(step.Args, "count")
	if !ok {
		return r.failf("%s count is required", step.Kind)
	}
	view, err := r.view(ctx, state)
	if err != nil {
		return err
	}
	if got := count(view.Player(board.Seat(seat))); got != want {
		return r.assertf("seat %d %s = %d, want %d", seat, label, got, want)
	}
	return nil
}

func (r *Runner) runExpectWinner(ctx context.Context, state *scenarioState, step Step) error {
	want, ok := readInt(step.Args, "seat")
	if !ok {
		return r.failf("expect_winner seat is required")
	}
	view, err := r.view(ctx, state)
	if err != nil {
		return err
	}
	if view.Phase != engine.PhaseGameOver.String() || view.Winner != want {
		return r.assertf("winner = %d in %s, want %d", view.Winner, view.Phase, want)
	}
	return nil
}

func (r *Runner) runExpectMove(ctx context.Context, state *scenarioState, step Step) error {
	source, target, err := r.readPair(step, "expect_move")
	if err != nil {
		return err
	}
	moves, err := r.table.Moves(ctx, state.gameID)
	if err != nil {
		return fmt.Errorf("list moves: %w", err)
	}
	move, ok := rules.Find(moves, source, target)
	if !ok {
		return r.assertf("move %d -> %d not offered in %v", source, target, moves)
	}
	if want := requiredString(step.Args, "type"); want != "" && string(move.Type) != want {
		return r.assertf("move %d -> %d type = %s, want %s", source, target, move.Type, want)
	}
	return nil
}

func (r *Runner) runExpectBlocked(ctx context.Context, state *scenarioState, step Step) error {
	source, target, err := r.readPair(step, "expect_blocked")
	if err != nil {
		return err
	}
	reason, err := r.table.Explain(ctx, state.gameID, source, target)
	if err != nil {
		return fmt.Errorf("explain move: %w", err)
	}
	if reason == rules.BlockNone {
		return r.assertf("move %d -> %d is legal, want blocked", source, target)
	}
	if want := requiredString(step.Args, "reason"); want != "" && string(reason) != want {
		return r.assertf("move %d -> %d blocked by %s, want %s", source, target, reason, want)
	}
	return nil
}

func (r *Runner) runExpectRejected(state *scenarioState, step Step) error {
	want := requiredString(step.Args, "code")
	err := state.rejection
	state.rejection = nil
	if err == nil {
		return r.assertf("expected rejection %s, previous step succeeded", want)
	}
	if got := apperrors.CodeOf(err); string(got) != want {
		return r.assertf("rejection code = %s, want %s (%v)", got, want, err)
	}
	return nil
}

func (r *Runner) readPair(step Step, kind string) (int, int, error) {
	source, ok := readInt(step.Args, "source")
	if !ok {
		return 0, 0, r.failf("%s source is required", kind)
	}
	target, ok := readInt(step.Args, "target")
	if !ok {
		return 0, 0, r.failf("%s target is required", kind)
	}
	return source, target, nil
}
