package rules

import (
	"testing"

	"github.com/louisbranch/sho/internal/services/sho/domain/board"
)

func TestExplain(t *testing.T) {
	b := board.New()
	mustSet(t, &b, 10, 2, board.SeatOne)
	mustSet(t, &b, 14, 7, board.SeatOne)
	mustSet(t, &b, 17, 3, board.SeatTwo)
	mustSet(t, &b, 40, 1, board.SeatTwo)
	player := Player{Seat: board.SeatOne, CoinsInHand: 1}

	tests := []struct {
		name   string
		source int
		target int
		values []int
		niner  bool
		want   BlockReason
	}{
		{name: "legal place", source: 10, target: 13, values: []int{3}, want: BlockNone},
		{name: "empty source shell", source: 11, target: 14, values: []int{3}, want: BlockNoSource},
		{name: "opponent source shell", source: 40, target: 43, values: []int{3}, want: BlockNoSource},
		{name: "source off the path", source: 70, target: 73, values: []int{3}, want: BlockNoSource},
		{name: "no value reaches", source: 10, target: 15, values: []int{3}, want: BlockNoDistance},
		{name: "opponent stack larger", source: 10, target: 17, values: []int{7}, want: BlockStackTooSmall},
		{name: "nine stack without niner", source: 10, target: 14, values: []int{4}, want: BlockNinerLimit},
		{name: "nine stack with niner", source: 10, target: 14, values: []int{4}, niner: true, want: BlockNone},
		{name: "combined value", source: 10, target: 19, values: []int{2, 7}, want: BlockNone},
		{name: "hand source", source: board.Hand, target: 13, values: []int{13}, want: BlockNone},
		{name: "finish", source: 10, target: 73, values: []int{2, 61}, want: BlockNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Explain(tt.source, tt.target, tt.values, b, player, tt.niner)
			if got != tt.want {
				t.Fatalf("reason = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExplainAgreesWithComputeMoves(t *testing.T) {
	b := board.New()
	mustSet(t, &b, 5, 3, board.SeatOne)
	mustSet(t, &b, 8, 6, board.SeatOne)
	mustSet(t, &b, 9, 4, board.SeatTwo)
	mustSet(t, &b, 12, 2, board.SeatTwo)
	player := Player{Seat: board.SeatOne}
	values := []int{3, 4}

	legal := ComputeMoves(5, values, b, player, false)
	for target := 6; target <= 20; target++ {
		_, isLegal := Find(legal, 5, target)
		reason := Explain(5, target, values, b, player, false)
		if isLegal != (reason == BlockNone) {
			t.Fatalf("target %d: legal=%v reason=%s", target, isLegal, reason)
		}
	}
}
