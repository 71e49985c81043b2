package app

import (
	"context"
	"log"

	i18ncatalog "github.com/louisbranch/sho/internal/platform/i18n/catalog"
)

// AlertKind names an alert-class event.
type AlertKind string

const (
	AlertPaRa AlertKind = "pa_ra"
	AlertWon  AlertKind = "won"
)

// Alert is a notable moment a presentation layer may want to call out.
type Alert struct {
	GameID  string
	Kind    AlertKind
	Seat    int
	Message string
}

// Alerter receives alerts after the transition that raised them.
type Alerter func(ctx context.Context, alert Alert)

// LogAlerter writes alerts to the standard logger.
func LogAlerter(_ context.Context, alert Alert) {
	log.Printf("alert: game=%s %s", alert.GameID, alert.Message)
}

// alertMessage renders the localized alert text.
func alertMessage(locale string, kind AlertKind, seat int) string {
	printer := i18ncatalog.Default().Printer(locale)
	return printer.Sprintf("game.alert."+string(kind), seat)
}
