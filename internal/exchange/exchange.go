package exchange

import (
	"latbot/internal/models"
)

type EventType string

const (
	EventTypePrice     EventType = "Price"
	EventTypeAuth      EventType = "Auth"
	EventTypeReconnect EventType = "Reconnect"
)

// Event is what the WS sessions hand to the engine. Order acknowledgments
// do not travel here: they stay inside the trading-session/recorder pair.
type Event struct {
	Type  EventType
	Price *models.PriceObservation
	Auth  *models.AuthResult
}
