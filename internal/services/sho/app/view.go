package app

import (
	"github.com/louisbranch/sho/internal/services/sho/domain/board"
	"github.com/louisbranch/sho/internal/services/sho/domain/dice"
	"github.com/louisbranch/sho/internal/services/sho/domain/engine"
	"github.com/louisbranch/sho/internal/services/sho/domain/rules"
)

// PlayerView is one seat's public counts.
type PlayerView struct {
	Seat          int `json:"seat"`
	CoinsInHand   int `json:"coins_in_hand"`
	CoinsOnBoard  int `json:"coins_on_board"`
	CoinsFinished int `json:"coins_finished"`
}

// ShellView is one occupied shell.
type ShellView struct {
	Index     int  `json:"index"`
	StackSize int  `json:"stack_size"`
	Owner     int  `json:"owner"`
	IsShoMo   bool `json:"is_sho_mo"`
}

// GameView is the observable state of one game.
type GameView struct {
	ID                  string       `json:"id"`
	Seed                int64        `json:"seed,omitempty"`
	Phase               string       `json:"phase"`
	Active              int          `json:"active"`
	Turn                int          `json:"turn"`
	Pool                []int        `json:"pool"`
	WaitingForBonusRoll bool         `json:"waiting_for_bonus_roll"`
	NinerMode           bool         `json:"niner_mode"`
	Winner              int          `json:"winner,omitempty"`
	LastRoll            *dice.Roll   `json:"last_roll,omitempty"`
	LastMove            *rules.Move  `json:"last_move,omitempty"`
	Players             []PlayerView `json:"players"`
	Shells              []ShellView  `json:"shells"`
}

// NewGameView projects an engine state for observers.
func NewGameView(gameID string, seed int64, state engine.State) GameView {
	view := GameView{
		ID:                  gameID,
		Seed:                seed,
		Phase:               state.Phase.String(),
		Active:              int(state.Active),
		Turn:                state.Turn,
		Pool:                state.PoolValues(),
		WaitingForBonusRoll: state.WaitingForBonusRoll,
		NinerMode:           state.Options.NinerMode,
		Winner:              int(state.Winner),
		Players:             make([]PlayerView, 0, len(state.Players)),
		Shells:              []ShellView{},
	}
	if view.Pool == nil {
		view.Pool = []int{}
	}
	if !state.LastRoll.IsZero() {
		roll := state.LastRoll
		view.LastRoll = &roll
	}
	if state.LastMove != nil {
		move := *state.LastMove
		move.ConsumedValues = append([]int(nil), state.LastMove.ConsumedValues...)
		view.LastMove = &move
	}
	for _, player := range state.Players {
		view.Players = append(view.Players, PlayerView{
			Seat:          int(player.Seat),
			CoinsInHand:   player.CoinsInHand,
			CoinsOnBoard:  state.Board.CoinsOnBoard(player.Seat),
			CoinsFinished: player.CoinsFinished,
		})
	}
	for _, shell := range state.Board.Shells() {
		if shell.StackSize == 0 {
			continue
		}
		view.Shells = append(view.Shells, ShellView{
			Index:     shell.Index,
			StackSize: shell.StackSize,
			Owner:     int(shell.Owner),
			IsShoMo:   shell.IsShoMo,
		})
	}
	return view
}

// Shell returns the view of one shell, empty when unoccupied.
func (v GameView) Shell(index int) ShellView {
	for _, shell := range v.Shells {
		if shell.Index == index {
			return shell
		}
	}
	return ShellView{Index: index}
}

// Player returns the counts for seat.
func (v GameView) Player(seat board.Seat) PlayerView {
	for _, player := range v.Players {
		if player.Seat == int(seat) {
			return player
		}
	}
	return PlayerView{Seat: int(seat)}
}
