// Package errors provides structured, localizable rejection errors.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeGameNotFound    Code = "GAME_NOT_FOUND"

	// Rule engine rejections
	CodeIllegalMove        Code = "ILLEGAL_MOVE"
	CodeInvalidPhase       Code = "INVALID_PHASE"
	CodeSkipWithLegalMoves Code = "SKIP_WITH_LEGAL_MOVES"

	// Dice errors
	CodeDiceInvalidFace       Code = "DICE_INVALID_FACE"
	CodeDiceSequenceExhausted Code = "DICE_SEQUENCE_EXHAUSTED"

	// Journal errors
	CodeJournalInvalidFilter    Code = "JOURNAL_INVALID_FILTER"
	CodeJournalInvalidPageToken Code = "JOURNAL_INVALID_PAGE_TOKEN"
	CodeJournalUnavailable      Code = "JOURNAL_UNAVAILABLE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument,
		CodeDiceInvalidFace,
		CodeJournalInvalidFilter,
		CodeJournalInvalidPageToken:
		return http.StatusBadRequest

	// The request was well formed but the game state does not allow it.
	case CodeIllegalMove,
		CodeInvalidPhase,
		CodeSkipWithLegalMoves,
		CodeDiceSequenceExhausted:
		return http.StatusConflict

	case CodeGameNotFound:
		return http.StatusNotFound

	case CodeJournalUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
