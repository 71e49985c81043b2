// Package engine is the Sho turn state machine.
//
// A game is a State value. Start, Roll, ApplyMove and SkipTurn take the
// current State and return the next one; the input is never modified. When
// an operation is rejected the returned State is the input unchanged and the
// error carries a machine-readable code from the platform errors package.
//
// Phases advance as follows:
//
//	SETUP     --Start-->      ROLLING
//	ROLLING   --Roll(1,1)-->  ROLLING (waiting for bonus roll)
//	ROLLING   --Roll-->       MOVING  (pool [total] or [2, total])
//	MOVING    --ApplyMove-->  MOVING | ROLLING | GAME_OVER
//	MOVING    --SkipTurn-->   ROLLING (other seat)
//	GAME_OVER --Start-->      ROLLING
package engine
