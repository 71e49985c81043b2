package dice

import (
	"testing"

	apperrors "github.com/louisbranch/sho/internal/platform/errors"
	"github.com/louisbranch/sho/internal/platform/random"
)

func TestRollClassification(t *testing.T) {
	tests := []struct {
		name      string
		roll      Roll
		wantPaRa  bool
		wantTotal int
	}{
		{name: "double ones", roll: Roll{Die1: 1, Die2: 1}, wantPaRa: true, wantTotal: 2},
		{name: "one and two", roll: Roll{Die1: 1, Die2: 2}, wantTotal: 3},
		{name: "three and four", roll: Roll{Die1: 3, Die2: 4}, wantTotal: 7},
		{name: "double sixes", roll: Roll{Die1: 6, Die2: 6}, wantTotal: 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.roll.IsPaRa(); got != tt.wantPaRa {
				t.Fatalf("IsPaRa = %v, want %v", got, tt.wantPaRa)
			}
			if got := tt.roll.Total(); got != tt.wantTotal {
				t.Fatalf("Total = %d, want %d", got, tt.wantTotal)
			}
		})
	}
}

func TestNewRollRejectsInvalidFace(t *testing.T) {
	for _, faces := range [][2]int{{0, 3}, {3, 7}, {-1, -1}} {
		_, err := NewRoll(faces[0], faces[1])
		if !apperrors.HasCode(err, apperrors.CodeDiceInvalidFace) {
			t.Fatalf("faces %v: err = %v, want DICE_INVALID_FACE", faces, err)
		}
	}
}

func TestSeededRollerIsDeterministic(t *testing.T) {
	a := NewSeededRoller(42)
	b := NewSeededRoller(42)
	for i := 0; i < 50; i++ {
		ra, err := a.Roll()
		if err != nil {
			t.Fatalf("roll a: %v", err)
		}
		rb, err := b.Roll()
		if err != nil {
			t.Fatalf("roll b: %v", err)
		}
		if ra != rb {
			t.Fatalf("roll %d diverged: %v vs %v", i, ra, rb)
		}
		if ra.Die1 < 1 || ra.Die1 > Faces || ra.Die2 < 1 || ra.Die2 > Faces {
			t.Fatalf("roll out of range: %v", ra)
		}
	}
}

func TestNewRollerUsesSeeder(t *testing.T) {
	roller, seed, err := NewRoller(random.FixedSeeder(7))
	if err != nil {
		t.Fatalf("new roller: %v", err)
	}
	if seed != 7 {
		t.Fatalf("seed = %d, want 7", seed)
	}
	want, _ := NewSeededRoller(7).Roll()
	got, _ := roller.Roll()
	if got != want {
		t.Fatalf("roll = %v, want %v", got, want)
	}
}

func TestFixedSourceDrivesRoller(t *testing.T) {
	source, err := NewFixedSource(3, 4, 1, 1)
	if err != nil {
		t.Fatalf("fixed source: %v", err)
	}
	roller := NewSourceRoller(source)
	first, err := roller.Roll()
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if first != (Roll{Die1: 3, Die2: 4}) {
		t.Fatalf("first = %v", first)
	}
	second, _ := roller.Roll()
	if !second.IsPaRa() {
		t.Fatalf("second = %v, want pa ra", second)
	}
	third, _ := roller.Roll()
	if third != (Roll{Die1: 1, Die2: 1}) {
		t.Fatalf("expected last face to repeat, got %v", third)
	}
}

func TestNewFixedSourceRejectsInvalidFace(t *testing.T) {
	if _, err := NewFixedSource(2, 9); !apperrors.HasCode(err, apperrors.CodeDiceInvalidFace) {
		t.Fatalf("err = %v, want DICE_INVALID_FACE", err)
	}
}

type brokenSource struct{}

func (brokenSource) Intn(int) int { return 6 }

func TestSourceRollerRejectsOutOfRangeSource(t *testing.T) {
	_, err := NewSourceRoller(brokenSource{}).Roll()
	if !apperrors.HasCode(err, apperrors.CodeDiceInvalidFace) {
		t.Fatalf("err = %v, want DICE_INVALID_FACE", err)
	}
}

func TestSequence(t *testing.T) {
	seq, err := NewSequence(Roll{Die1: 1, Die2: 1}, Roll{Die1: 2, Die2: 5})
	if err != nil {
		t.Fatalf("new sequence: %v", err)
	}
	if seq.Remaining() != 2 {
		t.Fatalf("remaining = %d", seq.Remaining())
	}
	first, _ := seq.Roll()
	second, _ := seq.Roll()
	if !first.IsPaRa() || second.Total() != 7 {
		t.Fatalf("rolls = %v %v", first, second)
	}
	if _, err := seq.Roll(); !apperrors.HasCode(err, apperrors.CodeDiceSequenceExhausted) {
		t.Fatalf("err = %v, want DICE_SEQUENCE_EXHAUSTED", err)
	}
	if err := seq.Push(Roll{Die1: 7, Die2: 1}); err == nil {
		t.Fatal("expected invalid push to fail")
	}
	if seq.Remaining() != 0 {
		t.Fatal("expected rejected push to leave the script empty")
	}
}
