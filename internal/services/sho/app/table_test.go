package app

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	apperrors "github.com/louisbranch/sho/internal/platform/errors"
	"github.com/louisbranch/sho/internal/platform/random"
	"github.com/louisbranch/sho/internal/services/sho/domain/board"
	"github.com/louisbranch/sho/internal/services/sho/domain/dice"
	"github.com/louisbranch/sho/internal/services/sho/domain/engine"
	"github.com/louisbranch/sho/internal/services/sho/notify"
	"github.com/louisbranch/sho/internal/services/sho/storage"
	"github.com/louisbranch/sho/internal/services/sho/storage/sqlite"
)

type alertRecorder struct {
	mu     sync.Mutex
	alerts []Alert
}

func (r *alertRecorder) record(_ context.Context, alert Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
}

func scripted(t *testing.T, faces ...[2]int) *dice.Sequence {
	t.Helper()
	seq, err := dice.NewSequence()
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	for _, f := range faces {
		if err := seq.Push(dice.Roll{Die1: f[0], Die2: f[1]}); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	return seq
}

func newTestTable(t *testing.T) (*Table, *notify.Memory, *alertRecorder) {
	t.Helper()
	publisher := &notify.Memory{}
	alerts := &alertRecorder{}
	table := NewTable(Config{
		Publisher: publisher,
		Alerter:   alerts.record,
		Seeder:    random.FixedSeeder(99),
		Clock:     func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) },
	})
	return table, publisher, alerts
}

func TestCreateAndGet(t *testing.T) {
	table, publisher, _ := newTestTable(t)
	ctx := context.Background()

	view, err := table.Create(ctx, CreateOptions{Options: engine.Options{NinerMode: true}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.ID == "" || view.Phase != "ROLLING" || view.Active != 1 || !view.NinerMode {
		t.Fatalf("view = %+v", view)
	}
	if view.Seed != 99 {
		t.Fatalf("seed = %d, want 99", view.Seed)
	}
	for _, player := range view.Players {
		if player.CoinsInHand != 9 {
			t.Fatalf("player = %+v", player)
		}
	}

	got, err := table.Get(ctx, view.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, view) {
		t.Fatalf("get = %+v, want %+v", got, view)
	}
	if !reflect.DeepEqual(publisher.Kinds(), []storage.Kind{storage.KindStarted}) {
		t.Fatalf("kinds = %v", publisher.Kinds())
	}
	if !reflect.DeepEqual(table.List(ctx), []string{view.ID}) {
		t.Fatalf("list = %v", table.List(ctx))
	}
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	table, _, _ := newTestTable(t)
	ctx := context.Background()
	if _, err := table.Create(ctx, CreateOptions{ID: "same"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := table.Create(ctx, CreateOptions{ID: "same"}); !apperrors.HasCode(err, apperrors.CodeInvalidArgument) {
		t.Fatalf("err = %v, want INVALID_ARGUMENT", err)
	}
}

func TestTableDefaultsApplyToNewGames(t *testing.T) {
	table := NewTable(Config{
		Publisher: notify.Nop{},
		Alerter:   func(context.Context, Alert) {},
		Seeder:    random.FixedSeeder(1),
		Defaults:  engine.Options{NinerMode: true},
	})
	view, err := table.Create(context.Background(), CreateOptions{ID: "niner"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !view.NinerMode {
		t.Fatalf("view = %+v, want niner mode", view)
	}
}

func TestUnknownGame(t *testing.T) {
	table, _, _ := newTestTable(t)
	ctx := context.Background()
	if _, err := table.Get(ctx, "missing"); !apperrors.HasCode(err, apperrors.CodeGameNotFound) {
		t.Fatalf("get: err = %v", err)
	}
	if _, _, err := table.Roll(ctx, "missing"); !apperrors.HasCode(err, apperrors.CodeGameNotFound) {
		t.Fatalf("roll: err = %v", err)
	}
	if _, err := table.ApplyMove(ctx, "missing", 0, 7); !apperrors.HasCode(err, apperrors.CodeGameNotFound) {
		t.Fatalf("move: err = %v", err)
	}
	if _, err := table.Skip(ctx, "missing"); !apperrors.HasCode(err, apperrors.CodeGameNotFound) {
		t.Fatalf("skip: err = %v", err)
	}
}

func TestSeededGamesReplay(t *testing.T) {
	table, _, _ := newTestTable(t)
	ctx := context.Background()
	seed := int64(1234)

	a, _ := table.Create(ctx, CreateOptions{Seed: &seed})
	b, _ := table.Create(ctx, CreateOptions{Seed: &seed})
	for i := 0; i < 5; i++ {
		_, rollA, errA := table.Roll(ctx, a.ID)
		_, rollB, errB := table.Roll(ctx, b.ID)
		if errA != nil || errB != nil {
			t.Fatalf("roll %d: %v %v", i, errA, errB)
		}
		if rollA != rollB {
			t.Fatalf("roll %d diverged: %v vs %v", i, rollA, rollB)
		}
		stateA, _ := table.State(ctx, a.ID)
		if stateA.Phase == engine.PhaseMoving {
			break
		}
	}
}

func TestTurnFlowRecordsEntries(t *testing.T) {
	table, publisher, alerts := newTestTable(t)
	ctx := context.Background()
	view, err := table.Create(ctx, CreateOptions{ID: "g1", Roller: scripted(t, [2]int{1, 1}, [2]int{2, 5})})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	view, roll, err := table.Roll(ctx, view.ID)
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if !roll.IsPaRa() || !view.WaitingForBonusRoll {
		t.Fatalf("roll=%v view=%+v", roll, view)
	}
	if len(alerts.alerts) != 1 || alerts.alerts[0].Kind != AlertPaRa {
		t.Fatalf("alerts = %+v", alerts.alerts)
	}
	if alerts.alerts[0].Message != "Pa Ra! Seat 1 rolled double ones and rolls again" {
		t.Fatalf("alert message = %q", alerts.alerts[0].Message)
	}

	view, _, err = table.Roll(ctx, view.ID)
	if err != nil {
		t.Fatalf("bonus roll: %v", err)
	}
	if !reflect.DeepEqual(view.Pool, []int{2, 7}) {
		t.Fatalf("pool = %v", view.Pool)
	}

	moves, err := table.Moves(ctx, view.ID)
	if err != nil || len(moves) == 0 {
		t.Fatalf("moves = %v, err = %v", moves, err)
	}

	if _, err := table.ApplyMove(ctx, view.ID, 0, 5); !apperrors.HasCode(err, apperrors.CodeIllegalMove) {
		t.Fatalf("err = %v, want ILLEGAL_MOVE", err)
	}
	view, err = table.ApplyMove(ctx, view.ID, 0, 2)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if shell := view.Shell(2); shell.StackSize != 2 || !shell.IsShoMo {
		t.Fatalf("shell 2 = %+v", shell)
	}

	want := []storage.Kind{storage.KindStarted, storage.KindPaRa, storage.KindRolled, storage.KindRejected, storage.KindMoved}
	if !reflect.DeepEqual(publisher.Kinds(), want) {
		t.Fatalf("kinds = %v, want %v", publisher.Kinds(), want)
	}
	rejected := publisher.Entries()[3]
	if rejected.Code != string(apperrors.CodeIllegalMove) || rejected.Target != 5 {
		t.Fatalf("rejected entry = %+v", rejected)
	}
	moved := publisher.Entries()[4]
	if moved.MoveType != "PLACE" || moved.Target != 2 || !reflect.DeepEqual(moved.Pool, []int{7}) {
		t.Fatalf("moved entry = %+v", moved)
	}
}

func TestSkipAndExplain(t *testing.T) {
	table, _, _ := newTestTable(t)
	ctx := context.Background()
	view, _ := table.Create(ctx, CreateOptions{ID: "g", Roller: scripted(t, [2]int{1, 2})})

	_, err := table.Arrange(ctx, view.ID, func(s engine.State) (engine.State, error) {
		var err error
		if s, err = s.WithShell(10, board.SeatOne, 1); err != nil {
			return s, err
		}
		if s, err = s.WithShell(13, board.SeatTwo, 4); err != nil {
			return s, err
		}
		if s, err = s.WithPlayer(board.SeatOne, 0, 8); err != nil {
			return s, err
		}
		return s.WithPlayer(board.SeatTwo, 5, 0)
	})
	if err != nil {
		t.Fatalf("arrange: %v", err)
	}
	if _, _, err := table.Roll(ctx, view.ID); err != nil {
		t.Fatalf("roll: %v", err)
	}

	reason, err := table.Explain(ctx, view.ID, 10, 13)
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if reason != "STACK_TOO_SMALL" {
		t.Fatalf("reason = %s", reason)
	}

	view, err = table.Skip(ctx, view.ID)
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if view.Active != 2 || view.Phase != "ROLLING" {
		t.Fatalf("view = %+v", view)
	}
	if _, err := table.Skip(ctx, view.ID); !apperrors.HasCode(err, apperrors.CodeInvalidPhase) {
		t.Fatalf("err = %v, want INVALID_PHASE", err)
	}
}

func TestWinAndRestart(t *testing.T) {
	table, publisher, alerts := newTestTable(t)
	ctx := context.Background()
	view, _ := table.Create(ctx, CreateOptions{ID: "g", Roller: scripted(t, [2]int{3, 3})})
	_, err := table.Arrange(ctx, view.ID, func(s engine.State) (engine.State, error) {
		s, err := s.WithShell(60, board.SeatOne, 1)
		if err != nil {
			return s, err
		}
		return s.WithPlayer(board.SeatOne, 0, 8)
	})
	if err != nil {
		t.Fatalf("arrange: %v", err)
	}
	if _, err := table.Restart(ctx, view.ID, engine.Options{}); !apperrors.HasCode(err, apperrors.CodeInvalidPhase) {
		t.Fatalf("restart mid-game: err = %v", err)
	}

	if _, _, err := table.Roll(ctx, view.ID); err != nil {
		t.Fatalf("roll: %v", err)
	}
	view, err = table.ApplyMove(ctx, view.ID, 60, 66)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if view.Phase != "GAME_OVER" || view.Winner != 1 {
		t.Fatalf("view = %+v", view)
	}
	kinds := publisher.Kinds()
	if kinds[len(kinds)-1] != storage.KindWon {
		t.Fatalf("kinds = %v", kinds)
	}
	if last := alerts.alerts[len(alerts.alerts)-1]; last.Kind != AlertWon || last.Seat != 1 {
		t.Fatalf("alert = %+v", last)
	}

	view, err = table.Restart(ctx, view.ID, engine.Options{NinerMode: true})
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if view.Phase != "ROLLING" || !view.NinerMode || len(view.Shells) != 0 {
		t.Fatalf("restarted = %+v", view)
	}
}

func TestJournalSink(t *testing.T) {
	ctx := context.Background()
	journal, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer journal.Close()

	table := NewTable(Config{Journal: journal, Alerter: func(context.Context, Alert) {}})
	view, _ := table.Create(ctx, CreateOptions{ID: "j", Roller: scripted(t, [2]int{3, 4})})
	if _, _, err := table.Roll(ctx, view.ID); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if _, err := table.ApplyMove(ctx, view.ID, 0, 7); err != nil {
		t.Fatalf("apply: %v", err)
	}

	page, err := journal.ListEntries(ctx, storage.ListRequest{GameID: "j"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var kinds []storage.Kind
	for _, entry := range page.Entries {
		kinds = append(kinds, entry.Kind)
	}
	want := []storage.Kind{storage.KindStarted, storage.KindRolled, storage.KindMoved}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	if page.Entries[1].Die1 != 3 || page.Entries[1].Die2 != 4 || page.Entries[2].Seq != 3 {
		t.Fatalf("entries = %+v", page.Entries)
	}
}

func TestConcurrentCallsAreSerialized(t *testing.T) {
	table, _, _ := newTestTable(t)
	ctx := context.Background()
	seed := int64(5)
	view, _ := table.Create(ctx, CreateOptions{Seed: &seed})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				state, err := table.State(ctx, view.ID)
				if err != nil {
					return
				}
				switch state.Phase {
				case engine.PhaseRolling:
					_, _, _ = table.Roll(ctx, view.ID)
				case engine.PhaseMoving:
					moves, _ := table.Moves(ctx, view.ID)
					if len(moves) == 0 {
						_, _ = table.Skip(ctx, view.ID)
						continue
					}
					_, _ = table.ApplyMove(ctx, view.ID, moves[0].SourceIndex, moves[0].TargetIndex)
				}
			}
		}()
	}
	wg.Wait()

	state, err := table.State(ctx, view.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if err := state.Validate(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}
