package ws

import (
	"testing"
	"time"

	"latbot/internal/exchange"
	"latbot/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error"})
}

func newTestMarketClient() *MarketClient {
	return NewMarketClient("wss://example.invalid/ws", "ALCH_USDT", time.Second, testLogger())
}

func drainPrice(t *testing.T, c *MarketClient) *exchange.Event {
	t.Helper()
	select {
	case ev := <-c.Events():
		return &ev
	default:
		return nil
	}
}

func TestMarketHandleMessageUpdatesPrice(t *testing.T) {
	c := newTestMarketClient()

	c.handleMessage([]byte(`{
		"time": 1712345678,
		"channel": "spot.book_ticker",
		"event": "update",
		"result": {"s": "ALCH_USDT", "b": "24.98", "a": "25.00", "t": 1712345678000}
	}`))

	ev := drainPrice(t, c)
	if ev == nil {
		t.Fatal("expected a price event")
	}
	if ev.Type != exchange.EventTypePrice || ev.Price == nil {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if got := ev.Price.Ask.String(); got != "25" {
		t.Errorf("ask = %s, want 25", got)
	}
	if ev.Price.ObservedAt.IsZero() {
		t.Error("observed_at not set")
	}
}

func TestMarketHandleMessageSkipsMalformedJSON(t *testing.T) {
	c := newTestMarketClient()

	c.handleMessage([]byte(`{not json`))
	if ev := drainPrice(t, c); ev != nil {
		t.Fatalf("malformed frame produced event: %+v", ev)
	}

	// The loop keeps going: a valid frame right after is still processed.
	c.handleMessage([]byte(`{"channel":"spot.book_ticker","event":"update","result":{"s":"ALCH_USDT","a":"30.10"}}`))
	if ev := drainPrice(t, c); ev == nil {
		t.Fatal("valid frame after malformed one was not processed")
	}
}

func TestMarketHandleMessageFilters(t *testing.T) {
	c := newTestMarketClient()

	tests := []struct {
		name string
		raw  string
	}{
		{"wrong channel", `{"channel":"spot.trades","event":"update","result":{"s":"ALCH_USDT","a":"25.00"}}`},
		{"wrong event", `{"channel":"spot.book_ticker","event":"subscribe","result":{"s":"ALCH_USDT","a":"25.00"}}`},
		{"wrong symbol", `{"channel":"spot.book_ticker","event":"update","result":{"s":"BTC_USDT","a":"25.00"}}`},
		{"zero ask", `{"channel":"spot.book_ticker","event":"update","result":{"s":"ALCH_USDT","a":"0"}}`},
		{"bad ask", `{"channel":"spot.book_ticker","event":"update","result":{"s":"ALCH_USDT","a":"n/a"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.handleMessage([]byte(tt.raw))
			if ev := drainPrice(t, c); ev != nil {
				t.Errorf("frame produced event: %+v", ev)
			}
		})
	}
}
