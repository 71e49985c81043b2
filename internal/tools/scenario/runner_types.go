package scenario

import (
	"github.com/louisbranch/sho/internal/services/sho/domain/dice"
	"github.com/louisbranch/sho/internal/services/sho/domain/engine"
)

type scenarioState struct {
	name    string
	gameID  string
	options engine.Options
	dice    *dice.Sequence
	// arranged is set once a setup step has edited the position and cleared
	// when the position has been validated.
	arranged bool
	// rejection is the error from the last move, roll or skip that failed.
	// The next step must be expect_rejected.
	rejection error
}

func (s *scenarioState) started() bool {
	return s.gameID != ""
}
