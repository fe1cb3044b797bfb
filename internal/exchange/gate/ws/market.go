package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"latbot/internal/exchange"
	"latbot/internal/logger"
	"latbot/internal/metrics"
	"latbot/internal/models"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MarketClient owns the public book-ticker session. It is supervised by its
// own Run loop: a dropped connection is closed, the fixed backoff elapses
// and the subscribe handshake is replayed, same policy as the trading
// session.
type MarketClient struct {
	url     string
	symbol  string
	log     *logger.Logger
	backoff time.Duration

	conn   *websocket.Conn
	events chan exchange.Event

	// price-log throttle, read/written only by the read loop
	lastLoggedAsk decimal.Decimal
	lastLoggedAt  time.Time
}

func NewMarketClient(url, symbol string, backoff time.Duration, log *logger.Logger) *MarketClient {
	return &MarketClient{
		url:     url,
		symbol:  symbol,
		log:     log,
		backoff: backoff,
		events:  make(chan exchange.Event, 100),
	}
}

func (c *MarketClient) Events() <-chan exchange.Event {
	return c.events
}

func (c *MarketClient) logEntry() *logrus.Entry {
	return c.log.WithComponent("market_ws").WithField("symbol", c.symbol)
}

// Run dials, subscribes and reads until the connection drops, then retries
// forever with a fixed backoff. Returns when ctx is cancelled.
func (c *MarketClient) Run(ctx context.Context) {
	for {
		if err := c.connectAndRead(ctx); err != nil {
			c.logEntry().WithError(err).Warn("Market session ended.")
		}

		if c.conn != nil {
			_ = c.conn.Close()
			c.conn = nil
		}

		metrics.Reconnects.WithLabelValues("market").Inc()

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.backoff):
		}
	}
}

func (c *MarketClient) connectAndRead(ctx context.Context) error {
	c.logEntry().WithField("url", c.url).Info("Connecting to market WS.")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial market ws: %w", err)
	}
	c.conn = conn
	c.conn.SetReadLimit(2 << 20)

	if err := c.subscribe(); err != nil {
		return fmt.Errorf("subscribe book ticker: %w", err)
	}

	c.logEntry().Info("Subscribed to book ticker.")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read market ws: %w", err)
		}

		c.handleMessage(data)
	}
}

func (c *MarketClient) subscribe() error {
	msg := subscribeRequest{
		Time:    time.Now().Unix(),
		Channel: channelBookTicker,
		Event:   eventSubscribe,
		Payload: []string{c.symbol},
	}
	return c.conn.WriteJSON(msg)
}

// handleMessage parses one inbound frame. Malformed or non-matching frames
// are skipped; the read loop keeps running.
func (c *MarketClient) handleMessage(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logEntry().WithError(err).Warn("Failed to parse market WS message.")
		return
	}

	if env.channelName() != channelBookTicker || env.eventName() != eventUpdate {
		return
	}

	var tick bookTickerResult
	if err := json.Unmarshal(env.Result, &tick); err != nil {
		c.logEntry().WithError(err).Warn("Failed to parse book ticker result.")
		return
	}
	if tick.Symbol != c.symbol {
		return
	}

	ask, err := decimal.NewFromString(tick.Ask)
	if err != nil {
		c.logEntry().WithError(err).WithField("ask", tick.Ask).Warn("Bad ask price in book ticker.")
		return
	}
	if ask.Sign() <= 0 {
		return
	}

	obs := models.PriceObservation{
		Symbol:     c.symbol,
		Ask:        ask,
		ObservedAt: time.Now(),
	}

	metrics.PriceUpdates.Inc()
	c.maybeLogPrice(ask)

	c.events <- exchange.Event{Type: exchange.EventTypePrice, Price: &obs}
}

// maybeLogPrice throttles the per-update log line: only when the ask moved
// or 5s passed since the last line. The data path is never throttled.
func (c *MarketClient) maybeLogPrice(ask decimal.Decimal) {
	now := time.Now()
	if c.lastLoggedAt.IsZero() || !ask.Equal(c.lastLoggedAsk) || now.Sub(c.lastLoggedAt) > 5*time.Second {
		c.logEntry().WithField("ask", ask.String()).Info("Book ticker update.")
		c.lastLoggedAsk = ask
		c.lastLoggedAt = now
	}
}
