package ws

import (
	"encoding/json"
)

// envelope is the generic inbound frame. Gate.io places channel, event,
// status and request_id inside a header object for api-style replies and at
// the top level for stream updates. Accessors below read the header first,
// then the top level, then the payload; that single precedence rule is
// applied to every message type.
type envelope struct {
	Time      int64           `json:"time"`
	Channel   string          `json:"channel"`
	Event     string          `json:"event"`
	Status    string          `json:"status"`
	RequestID string          `json:"request_id"`
	Message   string          `json:"message"`
	Header    envelopeHeader  `json:"header"`
	Payload   envelopePayload `json:"payload"`
	Result    json.RawMessage `json:"result"`
	Data      envelopeData    `json:"data"`
	Error     json.RawMessage `json:"error"`
}

type envelopeHeader struct {
	Channel   string `json:"channel"`
	Event     string `json:"event"`
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
}

type envelopePayload struct {
	ReqID string `json:"req_id"`
}

type envelopeData struct {
	Result json.RawMessage `json:"result"`
}

func (e *envelope) channelName() string {
	if e.Header.Channel != "" {
		return e.Header.Channel
	}
	return e.Channel
}

func (e *envelope) eventName() string {
	if e.Header.Event != "" {
		return e.Header.Event
	}
	return e.Event
}

func (e *envelope) statusCode() string {
	if e.Header.Status != "" {
		return e.Header.Status
	}
	return e.Status
}

func (e *envelope) reqID() string {
	if e.Header.RequestID != "" {
		return e.Header.RequestID
	}
	if e.RequestID != "" {
		return e.RequestID
	}
	return e.Payload.ReqID
}

func (e *envelope) errMessage() string {
	if e.Header.Message != "" {
		return e.Header.Message
	}
	if e.Message != "" {
		return e.Message
	}
	if len(e.Error) > 0 {
		return string(e.Error)
	}
	return "status " + e.statusCode()
}

// authResult is the nested result of a successful spot.login reply.
type authResult struct {
	UID    string `json:"uid"`
	APIKey string `json:"api_key"`
}

func (e *envelope) authUID() string {
	var res authResult
	if err := json.Unmarshal(e.Data.Result, &res); err != nil {
		return ""
	}
	return res.UID
}
