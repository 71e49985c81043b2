package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := WithMetadata(CodeIllegalMove, "no move 0->7", map[string]string{"Source": "0"})
	if !stderrors.Is(err, New(CodeIllegalMove, "")) {
		t.Fatal("expected errors.Is to match by code")
	}
	if stderrors.Is(err, New(CodeInvalidPhase, "")) {
		t.Fatal("expected different codes not to match")
	}
}

func TestCodeOfWrappedError(t *testing.T) {
	cause := stderrors.New("disk full")
	wrapped := fmt.Errorf("append entry: %w", Wrap(CodeUnknown, "journal append failed", cause))
	if got := CodeOf(wrapped); got != CodeUnknown {
		t.Fatalf("code = %s, want %s", got, CodeUnknown)
	}
	if !stderrors.Is(wrapped, cause) {
		t.Fatal("expected cause to be reachable")
	}

	phase := fmt.Errorf("roll: %w", New(CodeInvalidPhase, "roll while MOVING"))
	if !HasCode(phase, CodeInvalidPhase) {
		t.Fatal("expected HasCode to find wrapped code")
	}
	if HasCode(nil, CodeInvalidPhase) {
		t.Fatal("expected nil error to carry no code")
	}
	if CodeOf(stderrors.New("plain")) != CodeUnknown {
		t.Fatal("expected plain error to map to unknown")
	}
}

func TestLocalize(t *testing.T) {
	err := WithMetadata(CodeInvalidPhase, "roll while MOVING", map[string]string{
		"Operation": "roll",
		"Phase":     "MOVING",
	})
	if got := err.Localize("en-US"); got != "Cannot roll while the game is MOVING" {
		t.Fatalf("localized = %q", got)
	}
	if got := err.Localize("pt-BR"); got != "Não é possível roll com o jogo em MOVING" {
		t.Fatalf("localized = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeIllegalMove, http.StatusConflict},
		{CodeInvalidPhase, http.StatusConflict},
		{CodeSkipWithLegalMoves, http.StatusConflict},
		{CodeGameNotFound, http.StatusNotFound},
		{CodeJournalUnavailable, http.StatusServiceUnavailable},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Fatalf("%s status = %d, want %d", tt.code, got, tt.want)
		}
	}
}
