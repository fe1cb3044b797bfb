package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide string
type OrderType string
type TimeInForce string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"

	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"

	TimeInForceGTC TimeInForce = "gtc"
	TimeInForceIOC TimeInForce = "ioc"
	TimeInForceFOK TimeInForce = "fok"
)

// Gate.io acknowledgment status codes, carried as strings on the wire.
const (
	StatusAuthOK        = "200"
	StatusOrderAccepted = "201"
	StatusOrderRejected = "400"
)

// OrderRequest is a single order submission. ReqID is assigned by the
// trading session at send time and is immutable afterwards.
type OrderRequest struct {
	ReqID       string          `json:"req_id"`
	Symbol      string          `json:"symbol"`
	Side        OrderSide       `json:"side"`
	Type        OrderType       `json:"type"`
	Qty         decimal.Decimal `json:"qty"`
	Price       decimal.Decimal `json:"price"`
	TimeInForce TimeInForce     `json:"time_in_force"`
}

// PriceObservation is the latest best ask seen on the book-ticker feed.
// Ask is positive once set and never rolls back to unset.
type PriceObservation struct {
	Symbol     string          `json:"symbol"`
	Ask        decimal.Decimal `json:"ask"`
	ObservedAt time.Time       `json:"observed_at"`
}

// AuthResult crosses the trading-session boundary after a login ack.
type AuthResult struct {
	OK  bool   `json:"ok"`
	UID string `json:"uid"`
}
