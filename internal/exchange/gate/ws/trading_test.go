package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"latbot/internal/exchange"
	"latbot/internal/models"

	"github.com/shopspring/decimal"
)

type fakeRecorder struct {
	mu        sync.Mutex
	sent      []string
	responses []string
	statuses  []string
}

func (f *fakeRecorder) OnSent(reqID string, sentAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, reqID)
}

func (f *fakeRecorder) OnResponse(reqID string, receivedAt time.Time, status string, result json.RawMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, reqID)
	f.statuses = append(f.statuses, status)
}

func newTestTradingClient(rec AckRecorder) *TradingClient {
	signer, _ := NewSigner("secret")
	return NewTradingClient("wss://example.invalid/ws", "key", signer, time.Second, 30*time.Second, rec, testLogger())
}

func validOrder() models.OrderRequest {
	return models.OrderRequest{
		Symbol:      "ALCH_USDT",
		Side:        models.OrderSideBuy,
		Type:        models.OrderTypeLimit,
		Qty:         decimal.NewFromFloat(50),
		Price:       decimal.RequireFromString("25.00"),
		TimeInForce: models.TimeInForceFOK,
	}
}

func TestSubmitOrderNotAuthenticated(t *testing.T) {
	rec := &fakeRecorder{}
	c := newTestTradingClient(rec)

	_, err := c.SubmitOrder(context.Background(), validOrder())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if len(rec.sent) != 0 {
		t.Errorf("precondition failure still recorded a send: %v", rec.sent)
	}
}

func TestSubmitOrderInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.OrderRequest)
	}{
		{"zero qty", func(o *models.OrderRequest) { o.Qty = decimal.Zero }},
		{"negative qty", func(o *models.OrderRequest) { o.Qty = decimal.NewFromInt(-1) }},
		{"zero price", func(o *models.OrderRequest) { o.Price = decimal.Zero }},
		{"negative price", func(o *models.OrderRequest) { o.Price = decimal.NewFromInt(-5) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			c := newTestTradingClient(rec)
			// Parameter validation applies regardless of session state.
			c.setState(StateAuthenticated)

			ord := validOrder()
			tt.mutate(&ord)

			_, err := c.SubmitOrder(context.Background(), ord)
			if !errors.Is(err, ErrInvalidOrderParams) {
				t.Fatalf("expected ErrInvalidOrderParams, got %v", err)
			}
			if len(rec.sent) != 0 {
				t.Errorf("precondition failure still recorded a send: %v", rec.sent)
			}
		})
	}
}

func TestHandleLoginSuccess(t *testing.T) {
	rec := &fakeRecorder{}
	c := newTestTradingClient(rec)
	c.setState(StateAuthenticating)

	c.handleMessage([]byte(`{
		"header": {"channel": "spot.login", "event": "api", "status": "200"},
		"data": {"result": {"uid": "42"}}
	}`), time.Now())

	if got := c.State(); got != StateAuthenticated {
		t.Errorf("state = %s, want %s", got, StateAuthenticated)
	}

	select {
	case ev := <-c.Events():
		if ev.Type != exchange.EventTypeAuth || ev.Auth == nil || !ev.Auth.OK || ev.Auth.UID != "42" {
			t.Errorf("unexpected auth event: %+v", ev)
		}
	default:
		t.Fatal("expected an auth event")
	}
}

func TestHandleLoginFailure(t *testing.T) {
	rec := &fakeRecorder{}
	c := newTestTradingClient(rec)
	c.setState(StateAuthenticating)

	c.handleMessage([]byte(`{
		"header": {"channel": "spot.login", "event": "api", "status": "401", "message": "bad signature"}
	}`), time.Now())

	if got := c.State(); got == StateAuthenticated {
		t.Error("failed login moved state to Authenticated")
	}

	select {
	case ev := <-c.Events():
		if ev.Type != exchange.EventTypeAuth || ev.Auth == nil || ev.Auth.OK {
			t.Errorf("unexpected auth event: %+v", ev)
		}
	default:
		t.Fatal("expected an auth event")
	}
}

func TestHandleOrderAckForwarded(t *testing.T) {
	rec := &fakeRecorder{}
	c := newTestTradingClient(rec)

	c.handleMessage([]byte(`{
		"header": {"channel": "spot.order_place", "event": "api", "status": "201", "request_id": "1712345678901"},
		"result": {"id": "987"}
	}`), time.Now())

	if len(rec.responses) != 1 || rec.responses[0] != "1712345678901" {
		t.Fatalf("responses = %v, want [1712345678901]", rec.responses)
	}
	if rec.statuses[0] != models.StatusOrderAccepted {
		t.Errorf("status = %s, want %s", rec.statuses[0], models.StatusOrderAccepted)
	}
}

func TestHandleMessageIgnoresOthers(t *testing.T) {
	rec := &fakeRecorder{}
	c := newTestTradingClient(rec)

	frames := []string{
		`{not json`,
		`{"channel": "spot.pong", "event": ""}`,
		`{"channel": "spot.balances", "event": "update"}`,
		`{"header": {"channel": "spot.order_place", "event": "api", "status": "201"}}`, // no request id
	}
	for _, raw := range frames {
		c.handleMessage([]byte(raw), time.Now())
	}

	if len(rec.responses) != 0 {
		t.Errorf("unexpected recorder calls: %v", rec.responses)
	}
	select {
	case ev := <-c.Events():
		t.Errorf("unexpected event: %+v", ev)
	default:
	}
}
