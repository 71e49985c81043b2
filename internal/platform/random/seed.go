// Package random provides cryptographic seed generation for the dice sources.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

// Seeder produces seeds for pseudo-random dice sources.
type Seeder func() (int64, error)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	return seedFrom(crand.Reader)
}

// FixedSeeder returns a Seeder that always yields seed.
func FixedSeeder(seed int64) Seeder {
	return func() (int64, error) { return seed, nil }
}

func seedFrom(r io.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
