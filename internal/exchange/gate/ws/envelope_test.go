package ws

import (
	"encoding/json"
	"testing"
)

func TestEnvelopeHeaderFirst(t *testing.T) {
	raw := []byte(`{
		"header": {"channel": "spot.login", "event": "api", "status": "200", "request_id": "h-1"},
		"channel": "spot.other", "event": "update", "status": "400", "request_id": "t-1"
	}`)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := env.channelName(); got != "spot.login" {
		t.Errorf("channelName() = %s, want spot.login", got)
	}
	if got := env.eventName(); got != "api" {
		t.Errorf("eventName() = %s, want api", got)
	}
	if got := env.statusCode(); got != "200" {
		t.Errorf("statusCode() = %s, want 200", got)
	}
	if got := env.reqID(); got != "h-1" {
		t.Errorf("reqID() = %s, want h-1", got)
	}
}

func TestEnvelopeTopLevelFallback(t *testing.T) {
	raw := []byte(`{"channel": "spot.book_ticker", "event": "update", "result": {"s": "ALCH_USDT"}}`)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := env.channelName(); got != "spot.book_ticker" {
		t.Errorf("channelName() = %s, want spot.book_ticker", got)
	}
	if got := env.eventName(); got != "update" {
		t.Errorf("eventName() = %s, want update", got)
	}
}

func TestEnvelopeReqIDPayloadFallback(t *testing.T) {
	raw := []byte(`{"channel": "spot.order_place", "event": "api", "payload": {"req_id": "1712345678901"}}`)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := env.reqID(); got != "1712345678901" {
		t.Errorf("reqID() = %s, want 1712345678901", got)
	}
}

func TestEnvelopeAuthUID(t *testing.T) {
	raw := []byte(`{
		"header": {"channel": "spot.login", "event": "api", "status": "200"},
		"data": {"result": {"uid": "123456", "api_key": "k"}}
	}`)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := env.authUID(); got != "123456" {
		t.Errorf("authUID() = %s, want 123456", got)
	}
}

func TestEnvelopeErrMessage(t *testing.T) {
	raw := []byte(`{"header": {"status": "401", "message": "signature mismatch"}}`)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := env.errMessage(); got != "signature mismatch" {
		t.Errorf("errMessage() = %s, want signature mismatch", got)
	}
}
