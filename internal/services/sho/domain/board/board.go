// Package board models the 64-shell spiral path and its occupancy.
//
// A Board is a plain value: copying it copies every shell, so a game state
// that embeds a Board can be transitioned without sharing storage with the
// state it came from. The package performs no legality checks; callers own
// the game invariants.
package board

import "fmt"

const (
	// Size is the number of shells on the path.
	Size = 64
	// Hand is the pseudo-index used for coins that are not on the board yet.
	Hand = 0
	// CoinsPerPlayer is the number of coins each seat plays with.
	CoinsPerPlayer = 9
)

// Seat identifies one of the two players.
type Seat int

const (
	// SeatNone marks an unowned shell.
	SeatNone Seat = iota
	// SeatOne opens the game.
	SeatOne
	// SeatTwo plays second.
	SeatTwo
)

// Valid reports whether the seat is one of the two player seats.
func (s Seat) Valid() bool {
	return s == SeatOne || s == SeatTwo
}

// Other returns the opposing seat. SeatNone has no opponent.
func (s Seat) Other() Seat {
	switch s {
	case SeatOne:
		return SeatTwo
	case SeatTwo:
		return SeatOne
	default:
		return SeatNone
	}
}

// Index returns the zero-based player slot for the seat.
func (s Seat) Index() int {
	return int(s) - 1
}

func (s Seat) String() string {
	switch s {
	case SeatOne:
		return "P1"
	case SeatTwo:
		return "P2"
	default:
		return "none"
	}
}

// Shell is the occupancy of one path position.
type Shell struct {
	Index     int
	StackSize int
	Owner     Seat
	IsShoMo   bool
}

// Empty reports whether no coins sit on the shell.
func (s Shell) Empty() bool {
	return s.StackSize == 0
}

// Board holds the 64 shells, indexed 1..64.
type Board struct {
	shells [Size]Shell
}

// New returns a board with every shell empty.
func New() Board {
	var b Board
	for i := range b.shells {
		b.shells[i] = Shell{Index: i + 1}
	}
	return b
}

// InRange reports whether index names a shell on the path.
func InRange(index int) bool {
	return index >= 1 && index <= Size
}

// Get returns the shell at index, or false when index is off the path.
func (b Board) Get(index int) (Shell, bool) {
	if !InRange(index) {
		return Shell{}, false
	}
	shell := b.shells[index-1]
	shell.Index = index
	return shell, true
}

// SetShell replaces the occupancy of one shell. A zero stack clears the
// owner and the Sho-mo flag so that an empty shell is never owned.
func (b *Board) SetShell(index, stackSize int, owner Seat, isShoMo bool) error {
	if !InRange(index) {
		return fmt.Errorf("shell %d out of range 1..%d", index, Size)
	}
	if stackSize < 0 {
		return fmt.Errorf("shell %d: negative stack %d", index, stackSize)
	}
	if stackSize > 0 && !owner.Valid() {
		return fmt.Errorf("shell %d: stack %d without owner", index, stackSize)
	}
	if stackSize == 0 {
		owner = SeatNone
		isShoMo = false
	}
	b.shells[index-1] = Shell{Index: index, StackSize: stackSize, Owner: owner, IsShoMo: isShoMo}
	return nil
}

// Clear empties the shell at index.
func (b *Board) Clear(index int) {
	if InRange(index) {
		b.shells[index-1] = Shell{Index: index}
	}
}

// Shells returns every shell in path order.
func (b Board) Shells() []Shell {
	out := make([]Shell, Size)
	copy(out, b.shells[:])
	return out
}

// Occupied returns the non-empty shells owned by seat in ascending order.
func (b Board) Occupied(seat Seat) []Shell {
	var out []Shell
	for _, shell := range b.shells {
		if shell.StackSize > 0 && shell.Owner == seat {
			out = append(out, shell)
		}
	}
	return out
}

// CoinsOnBoard sums the stacks owned by seat.
func (b Board) CoinsOnBoard(seat Seat) int {
	total := 0
	for _, shell := range b.shells {
		if shell.Owner == seat {
			total += shell.StackSize
		}
	}
	return total
}
