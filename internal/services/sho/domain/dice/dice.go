// Package dice rolls the two six-sided dice that drive a Sho turn.
//
// # Determinism
//
// Randomness always comes from an injected Source or a scripted Sequence;
// the package never touches a global generator. Two rollers built from the
// same seed produce the same rolls in the same order.
package dice

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"

	apperrors "github.com/louisbranch/sho/internal/platform/errors"
	"github.com/louisbranch/sho/internal/platform/random"
)

// Faces is the number of sides on each die.
const Faces = 6

// Roll is the outcome of throwing both dice.
type Roll struct {
	Die1 int `json:"die1"`
	Die2 int `json:"die2"`
}

// NewRoll validates both faces.
func NewRoll(die1, die2 int) (Roll, error) {
	for _, face := range []int{die1, die2} {
		if err := validateFace(face); err != nil {
			return Roll{}, err
		}
	}
	return Roll{Die1: die1, Die2: die2}, nil
}

// IsPaRa reports a double-ones roll.
func (r Roll) IsPaRa() bool {
	return r.Die1 == 1 && r.Die2 == 1
}

// Total is the sum of both dice.
func (r Roll) Total() int {
	return r.Die1 + r.Die2
}

// IsZero reports whether the roll was never thrown.
func (r Roll) IsZero() bool {
	return r.Die1 == 0 && r.Die2 == 0
}

func (r Roll) String() string {
	return fmt.Sprintf("(%d,%d)", r.Die1, r.Die2)
}

// Roller produces dice rolls.
type Roller interface {
	Roll() (Roll, error)
}

// Source is the randomness a roller draws from. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// NewSeededSource returns a deterministic source for seed.
func NewSeededSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// SourceRoller draws each die independently and uniformly from a Source.
type SourceRoller struct {
	source Source
}

// NewSourceRoller wraps source.
func NewSourceRoller(source Source) *SourceRoller {
	return &SourceRoller{source: source}
}

// NewSeededRoller returns a roller over a deterministic source.
func NewSeededRoller(seed int64) *SourceRoller {
	return NewSourceRoller(NewSeededSource(seed))
}

// NewRoller returns a roller seeded from seeder, or from crypto/rand when
// seeder is nil. The seed is returned so the game can be replayed.
func NewRoller(seeder random.Seeder) (*SourceRoller, int64, error) {
	if seeder == nil {
		seeder = random.NewSeed
	}
	seed, err := seeder()
	if err != nil {
		return nil, 0, fmt.Errorf("seed dice: %w", err)
	}
	return NewSeededRoller(seed), seed, nil
}

// Roll throws both dice. A source that yields a value outside the die range
// is reported as DICE_INVALID_FACE rather than silently clamped.
func (r *SourceRoller) Roll() (Roll, error) {
	die1 := rollDie(r.source)
	die2 := rollDie(r.source)
	return NewRoll(die1, die2)
}

// rollDie rolls a single die.
func rollDie(source Source) int {
	return source.Intn(Faces) + 1
}

func validateFace(face int) error {
	if face < 1 || face > Faces {
		return apperrors.WithMetadata(
			apperrors.CodeDiceInvalidFace,
			fmt.Sprintf("die face %d outside 1..%d", face, Faces),
			map[string]string{"Value": strconv.Itoa(face)},
		)
	}
	return nil
}

// Sequence replays scripted rolls in order. It is safe for concurrent use.
type Sequence struct {
	mu    sync.Mutex
	rolls []Roll
}

// NewSequence validates and queues rolls.
func NewSequence(rolls ...Roll) (*Sequence, error) {
	s := &Sequence{}
	if err := s.Push(rolls...); err != nil {
		return nil, err
	}
	return s, nil
}

// Push appends rolls to the end of the script.
func (s *Sequence) Push(rolls ...Roll) error {
	for _, roll := range rolls {
		if _, err := NewRoll(roll.Die1, roll.Die2); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolls = append(s.rolls, rolls...)
	return nil
}

// Roll pops the next scripted roll.
func (s *Sequence) Roll() (Roll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rolls) == 0 {
		return Roll{}, apperrors.New(apperrors.CodeDiceSequenceExhausted, "dice sequence exhausted")
	}
	next := s.rolls[0]
	s.rolls = s.rolls[1:]
	return next, nil
}

// Remaining reports how many scripted rolls are left.
func (s *Sequence) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rolls)
}

// FixedSource is a Source that returns scripted die faces. Once the faces
// run out it keeps returning the last one.
type FixedSource struct {
	faces []int
	next  int
}

// NewFixedSource scripts faces, each in 1..6.
func NewFixedSource(faces ...int) (*FixedSource, error) {
	for _, face := range faces {
		if err := validateFace(face); err != nil {
			return nil, err
		}
	}
	return &FixedSource{faces: append([]int(nil), faces...)}, nil
}

// Intn returns the next scripted face as a zero-based draw.
func (f *FixedSource) Intn(int) int {
	if len(f.faces) == 0 {
		return 0
	}
	if f.next >= len(f.faces) {
		return f.faces[len(f.faces)-1] - 1
	}
	face := f.faces[f.next]
	f.next++
	return face - 1
}
