// Package sqlite implements the game journal on SQLite.
//
// Entries are appended inside a transaction that assigns the next per-game
// sequence number. Listing pages by sequence and accepts AIP-160 filters
// translated by the storage/filter package.
package sqlite
