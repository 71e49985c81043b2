// Package app hosts concurrent Sho games behind one Table.
//
// The Table owns per-game locking, dice sources, tracing and the journal and
// broker sinks. Rules live in the domain engine; the Table only sequences
// transitions and records what happened.
package app

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/louisbranch/sho/internal/platform/errors"
	"github.com/louisbranch/sho/internal/platform/id"
	"github.com/louisbranch/sho/internal/platform/otel"
	"github.com/louisbranch/sho/internal/platform/random"
	"github.com/louisbranch/sho/internal/services/sho/domain/board"
	"github.com/louisbranch/sho/internal/services/sho/domain/dice"
	"github.com/louisbranch/sho/internal/services/sho/domain/engine"
	"github.com/louisbranch/sho/internal/services/sho/domain/rules"
	"github.com/louisbranch/sho/internal/services/sho/notify"
	"github.com/louisbranch/sho/internal/services/sho/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/sho/internal/services/sho/app"

// Config wires a Table's collaborators. Every field is optional.
type Config struct {
	Journal   storage.Journal
	Publisher notify.Publisher
	Alerter   Alerter
	Seeder    random.Seeder
	// Locale selects the language of alert messages.
	Locale string
	Clock  func() time.Time
	// Defaults turns rule variants on for every game created at this table.
	Defaults engine.Options
}

// CreateOptions configures a new game.
type CreateOptions struct {
	// ID overrides the generated game id.
	ID      string
	Options engine.Options
	// Seed replays a previous game's dice when set.
	Seed *int64
	// Roller replaces the seeded dice entirely.
	Roller dice.Roller
}

type game struct {
	mu     sync.Mutex
	id     string
	seed   int64
	roller dice.Roller
	state  engine.State
}

// Table hosts games by id.
type Table struct {
	mu    sync.RWMutex
	games map[string]*game

	journal   storage.Journal
	publisher notify.Publisher
	alerter   Alerter
	seeder    random.Seeder
	locale    string
	defaults  engine.Options
	now       func() time.Time
	tracer    trace.Tracer
}

// NewTable builds a Table from cfg.
func NewTable(cfg Config) *Table {
	t := &Table{
		games:     make(map[string]*game),
		journal:   cfg.Journal,
		publisher: cfg.Publisher,
		alerter:   cfg.Alerter,
		seeder:    cfg.Seeder,
		locale:    cfg.Locale,
		defaults:  cfg.Defaults,
		now:       cfg.Clock,
		tracer:    otel.Tracer(tracerName),
	}
	if t.publisher == nil {
		t.publisher = notify.Nop{}
	}
	if t.alerter == nil {
		t.alerter = LogAlerter
	}
	if t.seeder == nil {
		t.seeder = random.NewSeed
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// Journal returns the configured journal, or nil.
func (t *Table) Journal() storage.Journal {
	return t.journal
}

// Create starts a new game.
func (t *Table) Create(ctx context.Context, opts CreateOptions) (GameView, error) {
	gameID := opts.ID
	if gameID == "" {
		generated, err := id.NewID()
		if err != nil {
			return GameView{}, apperrors.Wrap(apperrors.CodeUnknown, "generate game id", err)
		}
		gameID = generated
	}

	g := &game{id: gameID, roller: opts.Roller}
	if g.roller == nil {
		seeder := t.seeder
		if opts.Seed != nil {
			seeder = random.FixedSeeder(*opts.Seed)
		}
		roller, seed, err := dice.NewRoller(seeder)
		if err != nil {
			return GameView{}, apperrors.Wrap(apperrors.CodeUnknown, "seed dice", err)
		}
		g.roller = roller
		g.seed = seed
	}
	options := opts.Options
	options.NinerMode = options.NinerMode || t.defaults.NinerMode
	state, err := engine.Start(engine.State{}, options)
	if err != nil {
		return GameView{}, err
	}
	g.state = state

	t.mu.Lock()
	if _, exists := t.games[gameID]; exists {
		t.mu.Unlock()
		return GameView{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "game id already in use", map[string]string{"Field": "id"})
	}
	t.games[gameID] = g
	t.mu.Unlock()

	t.record(ctx, g, t.entry(g, storage.KindStarted, state))
	return NewGameView(g.id, g.seed, state), nil
}

// Get returns the current view of a game.
func (t *Table) Get(_ context.Context, gameID string) (GameView, error) {
	g, err := t.lookup(gameID)
	if err != nil {
		return GameView{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return NewGameView(g.id, g.seed, g.state), nil
}

// State returns the raw engine state of a game.
func (t *Table) State(_ context.Context, gameID string) (engine.State, error) {
	g, err := t.lookup(gameID)
	if err != nil {
		return engine.State{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state, nil
}

// List returns every hosted game id in sorted order.
func (t *Table) List(context.Context) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.games))
	for gameID := range t.games {
		ids = append(ids, gameID)
	}
	sort.Strings(ids)
	return ids
}

// Moves lists the legal moves for a game's pending pool.
func (t *Table) Moves(_ context.Context, gameID string) ([]rules.Move, error) {
	g, err := t.lookup(gameID)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return engine.AvailableMoves(g.state), nil
}

// Explain reports why a move is blocked for the active seat.
func (t *Table) Explain(_ context.Context, gameID string, source, target int) (rules.BlockReason, error) {
	g, err := t.lookup(gameID)
	if err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return engine.Explain(g.state, source, target), nil
}

// Roll throws the dice for the active seat.
func (t *Table) Roll(ctx context.Context, gameID string) (GameView, dice.Roll, error) {
	ctx, span := t.tracer.Start(ctx, "sho.roll", trace.WithAttributes(attribute.String("sho.game_id", gameID)))
	defer span.End()

	g, err := t.lookup(gameID)
	if err != nil {
		failSpan(span, err)
		return GameView{}, dice.Roll{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	span.SetAttributes(attribute.Int("sho.seat", int(g.state.Active)))
	next, roll, err := engine.Roll(g.state, g.roller)
	if err != nil {
		failSpan(span, err)
		t.reject(ctx, g, engine.OpRoll, err)
		return NewGameView(g.id, g.seed, g.state), dice.Roll{}, err
	}
	span.SetAttributes(
		attribute.Int("sho.die1", roll.Die1),
		attribute.Int("sho.die2", roll.Die2),
		attribute.Bool("sho.pa_ra", roll.IsPaRa()),
	)

	previous := g.state
	g.state = next

	entry := t.entry(g, storage.KindRolled, next)
	entry.Seat = int(previous.Active)
	entry.Die1, entry.Die2 = roll.Die1, roll.Die2
	if roll.IsPaRa() {
		entry.Kind = storage.KindPaRa
	}
	t.record(ctx, g, entry)
	if roll.IsPaRa() {
		t.alert(ctx, g.id, AlertPaRa, previous.Active)
	}
	return NewGameView(g.id, g.seed, next), roll, nil
}

// ApplyMove plays a move for the active seat.
func (t *Table) ApplyMove(ctx context.Context, gameID string, source, target int) (GameView, error) {
	ctx, span := t.tracer.Start(ctx, "sho.apply_move", trace.WithAttributes(
		attribute.String("sho.game_id", gameID),
		attribute.Int("sho.source", source),
		attribute.Int("sho.target", target),
	))
	defer span.End()

	g, err := t.lookup(gameID)
	if err != nil {
		failSpan(span, err)
		return GameView{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	previous := g.state
	span.SetAttributes(attribute.Int("sho.seat", int(previous.Active)))
	next, err := engine.ApplyMove(previous, source, target)
	if err != nil {
		failSpan(span, err)
		t.reject(ctx, g, engine.OpMove, err)
		return NewGameView(g.id, g.seed, previous), err
	}
	g.state = next

	move := next.LastMove
	span.SetAttributes(attribute.String("sho.move_type", string(move.Type)))
	entry := t.entry(g, storage.KindMoved, next)
	entry.Seat = int(previous.Active)
	entry.Turn = previous.Turn
	entry.Source, entry.Target = move.SourceIndex, move.TargetIndex
	entry.MoveType = string(move.Type)
	t.record(ctx, g, entry)

	if next.Over() {
		won := t.entry(g, storage.KindWon, next)
		won.Seat = int(next.Winner)
		t.record(ctx, g, won)
		t.alert(ctx, g.id, AlertWon, next.Winner)
	}
	return NewGameView(g.id, g.seed, next), nil
}

// Skip forfeits the rest of a turn with no legal move.
func (t *Table) Skip(ctx context.Context, gameID string) (GameView, error) {
	ctx, span := t.tracer.Start(ctx, "sho.skip_turn", trace.WithAttributes(attribute.String("sho.game_id", gameID)))
	defer span.End()

	g, err := t.lookup(gameID)
	if err != nil {
		failSpan(span, err)
		return GameView{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	previous := g.state
	span.SetAttributes(attribute.Int("sho.seat", int(previous.Active)))
	next, err := engine.SkipTurn(previous)
	if err != nil {
		failSpan(span, err)
		t.reject(ctx, g, engine.OpSkip, err)
		return NewGameView(g.id, g.seed, previous), err
	}
	g.state = next

	entry := t.entry(g, storage.KindSkipped, next)
	entry.Seat = int(previous.Active)
	entry.Turn = previous.Turn
	t.record(ctx, g, entry)
	return NewGameView(g.id, g.seed, next), nil
}

// Restart begins a finished game again with fresh options. The dice source
// carries on from where it was.
func (t *Table) Restart(ctx context.Context, gameID string, options engine.Options) (GameView, error) {
	g, err := t.lookup(gameID)
	if err != nil {
		return GameView{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	options.NinerMode = options.NinerMode || t.defaults.NinerMode
	next, err := engine.Start(g.state, options)
	if err != nil {
		t.reject(ctx, g, engine.OpStart, err)
		return NewGameView(g.id, g.seed, g.state), err
	}
	g.state = next
	t.record(ctx, g, t.entry(g, storage.KindStarted, next))
	return NewGameView(g.id, g.seed, next), nil
}

// Arrange replaces a game's state through fn. Scenario fixtures use it to
// set up positions; the result must still conserve coins.
func (t *Table) Arrange(_ context.Context, gameID string, fn func(engine.State) (engine.State, error)) (GameView, error) {
	g, err := t.lookup(gameID)
	if err != nil {
		return GameView{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	next, err := fn(g.state)
	if err != nil {
		return NewGameView(g.id, g.seed, g.state), apperrors.Wrap(apperrors.CodeInvalidArgument, "arrange position", err)
	}
	g.state = next
	return NewGameView(g.id, g.seed, next), nil
}

func (t *Table) lookup(gameID string) (*game, error) {
	t.mu.RLock()
	g, ok := t.games[gameID]
	t.mu.RUnlock()
	if !ok {
		return nil, apperrors.WithMetadata(
			apperrors.CodeGameNotFound,
			fmt.Sprintf("game %q not found", gameID),
			map[string]string{"GameID": gameID},
		)
	}
	return g, nil
}

func (t *Table) entry(g *game, kind storage.Kind, state engine.State) storage.Entry {
	return storage.Entry{
		GameID: g.id,
		Kind:   kind,
		Seat:   int(state.Active),
		Turn:   state.Turn,
		Pool:   state.PoolValues(),
		Phase:  state.Phase.String(),
		At:     t.now().UTC(),
	}
}

func (t *Table) reject(ctx context.Context, g *game, operation string, cause error) {
	entry := t.entry(g, storage.KindRejected, g.state)
	entry.Code = string(apperrors.CodeOf(cause))
	entry.Detail = operation + ": " + cause.Error()
	if appErr, ok := apperrors.As(cause); ok {
		entry.Source, _ = strconv.Atoi(appErr.Metadata["Source"])
		entry.Target, _ = strconv.Atoi(appErr.Metadata["Target"])
	}
	t.record(ctx, g, entry)
}

// record sends one entry to the journal and then the broker. Sink failures
// are logged and never undo the transition.
func (t *Table) record(ctx context.Context, g *game, entry storage.Entry) {
	if t.journal != nil {
		stored, err := t.journal.Append(ctx, entry)
		if err != nil {
			log.Printf("journal append %s/%s: %v", g.id, entry.Kind, err)
		} else {
			entry = stored
		}
	}
	if err := t.publisher.Publish(ctx, entry); err != nil {
		log.Printf("publish %s/%s: %v", g.id, entry.Kind, err)
	}
}

func (t *Table) alert(ctx context.Context, gameID string, kind AlertKind, seat board.Seat) {
	t.alerter(ctx, Alert{
		GameID:  gameID,
		Kind:    kind,
		Seat:    int(seat),
		Message: alertMessage(t.locale, kind, int(seat)),
	})
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
}
