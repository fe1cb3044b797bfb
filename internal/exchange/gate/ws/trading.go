package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"latbot/internal/exchange"
	"latbot/internal/logger"
	"latbot/internal/metrics"
	"latbot/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type SessionState string

const (
	StateDisconnected   SessionState = "Disconnected"
	StateConnecting     SessionState = "Connecting"
	StateAuthenticating SessionState = "Authenticating"
	StateAuthenticated  SessionState = "Authenticated"
)

var (
	ErrNotAuthenticated   = errors.New("trading session not authenticated")
	ErrInvalidOrderParams = errors.New("invalid order parameters")
)

// AckRecorder receives send/acknowledgment timestamps for outstanding
// requests. OnSent is called before the frame hits the socket, so an ack can
// never race past its own pending record.
type AckRecorder interface {
	OnSent(reqID string, sentAt time.Time)
	OnResponse(reqID string, receivedAt time.Time, status string, result json.RawMessage)
}

// TradingClient owns the authenticated session: login handshake, keepalive,
// order submission and ack correlation. Disconnected → Connecting →
// Authenticating → Authenticated; any transport error drops back to
// Disconnected and Run retries forever after a fixed backoff.
type TradingClient struct {
	url       string
	apiKey    string
	signer    *Signer
	log       *logger.Logger
	recorder  AckRecorder
	backoff   time.Duration
	keepalive time.Duration

	events chan exchange.Event

	mu    sync.Mutex // guards conn and state
	conn  *websocket.Conn
	state SessionState

	writeMu sync.Mutex // serializes socket writes (keepalive vs. order submit)
}

func NewTradingClient(url, apiKey string, signer *Signer, backoff, keepalive time.Duration, recorder AckRecorder, log *logger.Logger) *TradingClient {
	return &TradingClient{
		url:       url,
		apiKey:    apiKey,
		signer:    signer,
		log:       log,
		recorder:  recorder,
		backoff:   backoff,
		keepalive: keepalive,
		events:    make(chan exchange.Event, 100),
		state:     StateDisconnected,
	}
}

func (c *TradingClient) Events() <-chan exchange.Event {
	return c.events
}

func (c *TradingClient) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *TradingClient) setState(s SessionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *TradingClient) logEntry() *logrus.Entry {
	return c.log.WithComponent("trading_ws")
}

// Run drives the session until ctx is cancelled: dial, login, keepalive,
// read loop, and on any transport error a fixed-backoff retry. Login is not
// re-sent mid-connection; a failed login waits for the next reconnect.
func (c *TradingClient) Run(ctx context.Context) {
	for {
		if err := c.connectAndRead(ctx); err != nil {
			c.logEntry().WithError(err).Warn("Trading session ended.")
		}

		c.teardown()
		metrics.Reconnects.WithLabelValues("trading").Inc()
		c.events <- exchange.Event{Type: exchange.EventTypeReconnect}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.backoff):
		}
	}
}

func (c *TradingClient) connectAndRead(ctx context.Context) error {
	c.setState(StateConnecting)
	c.logEntry().WithField("url", c.url).Info("Connecting to trading WS.")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial trading ws: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateAuthenticating
	c.mu.Unlock()
	conn.SetReadLimit(2 << 20)

	if err := c.login(); err != nil {
		return fmt.Errorf("send login: %w", err)
	}

	keepaliveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.keepaliveLoop(keepaliveCtx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read trading ws: %w", err)
		}
		receivedAt := time.Now()

		c.handleMessage(data, receivedAt)
	}
}

func (c *TradingClient) teardown() {
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
	c.mu.Unlock()
}

// login signs the empty-parameter canonical string and sends the
// spot.login api request.
func (c *TradingClient) login() error {
	ts := time.Now().Unix()
	reqID := "auth-" + uuid.New().String()

	msg := loginRequest{
		Time:    ts,
		Channel: channelLogin,
		Event:   eventAPI,
		Payload: loginPayload{
			APIKey:    c.apiKey,
			Signature: c.signer.Sign(channelLogin, nil, ts),
			Timestamp: strconv.FormatInt(ts, 10),
			ReqID:     reqID,
		},
	}

	c.logEntry().WithField("req_id", reqID).Info("Sending login request.")
	return c.writeJSON(msg)
}

// keepaliveLoop pings on a fixed interval while the connection is up. A
// failed ping just ends the loop; the read loop is already driving the
// reconnect by then.
func (c *TradingClient) keepaliveLoop(ctx context.Context) {
	ticker := time.NewTicker(c.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msg := pingRequest{Time: time.Now().Unix(), Channel: channelPing}
			if err := c.writeJSON(msg); err != nil {
				return
			}
			c.logEntry().Debug("Ping sent.")
		}
	}
}

// SubmitOrder validates, serializes and sends one order, returning its
// request ID. The sent-at stamp is taken after serialization, immediately
// before the pending-record insert and the socket write: the measured
// window covers the write call and the network, not the JSON encode.
func (c *TradingClient) SubmitOrder(ctx context.Context, ord models.OrderRequest) (string, error) {
	if ord.Qty.Sign() <= 0 || ord.Price.Sign() <= 0 {
		return "", ErrInvalidOrderParams
	}
	if c.State() != StateAuthenticated {
		return "", ErrNotAuthenticated
	}

	now := time.Now()
	reqID := strconv.FormatInt(now.UnixMilli(), 10)

	msg := orderPlaceRequest{
		Time:    now.Unix(),
		Channel: channelOrderPlace,
		Event:   eventAPI,
		Payload: orderPayload{
			ReqID: reqID,
			ReqParam: orderParam{
				CurrencyPair: strings.ToLower(ord.Symbol),
				Side:         string(ord.Side),
				Type:         string(ord.Type),
				Amount:       ord.Qty.String(),
				Price:        ord.Price.String(),
				TimeInForce:  string(ord.TimeInForce),
			},
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal order request: %w", err)
	}

	c.logEntry().WithFields(logrus.Fields{
		"req_id": reqID,
		"side":   ord.Side,
		"symbol": ord.Symbol,
		"qty":    ord.Qty.String(),
		"price":  ord.Price.String(),
	}).Info("Placing order.")

	sentAt := time.Now()
	c.recorder.OnSent(reqID, sentAt)

	if err := c.write(data); err != nil {
		return "", fmt.Errorf("send order request: %w", err)
	}

	return reqID, nil
}

func (c *TradingClient) writeJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(data)
}

func (c *TradingClient) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("trading ws not connected")
	}

	return conn.WriteMessage(websocket.TextMessage, data)
}

// handleMessage dispatches one inbound frame. Parse errors are logged and
// the frame dropped; they never end the read loop.
func (c *TradingClient) handleMessage(data []byte, receivedAt time.Time) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logEntry().WithError(err).Warn("Failed to parse trading WS message.")
		return
	}

	channel := env.channelName()
	event := env.eventName()

	switch {
	case channel == channelLogin && event == eventAPI:
		c.handleLogin(&env, data)
	case channel == channelPing || channel == channelPong:
		c.logEntry().Debug("Pong received.")
	case channel == channelOrderPlace && event == eventAPI:
		c.handleOrderAck(&env, receivedAt)
	default:
		c.logEntry().WithFields(logrus.Fields{"channel": channel, "event": event}).Debug("Ignoring WS message.")
	}
}

func (c *TradingClient) handleLogin(env *envelope, raw []byte) {
	c.logEntry().WithField("raw", string(raw)).Debug("Login response.")

	if env.statusCode() != models.StatusAuthOK {
		metrics.AuthFailures.Inc()
		c.logEntry().WithField("error", env.errMessage()).Warn("Authentication failed.")
		c.events <- exchange.Event{Type: exchange.EventTypeAuth, Auth: &models.AuthResult{OK: false}}
		return
	}

	uid := env.authUID()
	c.setState(StateAuthenticated)
	c.logEntry().WithField("uid", uid).Info("Authenticated.")
	c.events <- exchange.Event{Type: exchange.EventTypeAuth, Auth: &models.AuthResult{OK: true, UID: uid}}
}

func (c *TradingClient) handleOrderAck(env *envelope, receivedAt time.Time) {
	reqID := env.reqID()
	if reqID == "" {
		c.logEntry().Warn("Order ack without request id.")
		return
	}

	status := env.statusCode()
	entry := c.logEntry().WithFields(logrus.Fields{"request_id": reqID, "status": status})
	switch status {
	case models.StatusOrderAccepted:
		entry.WithField("result", string(env.Result)).Info("Order accepted.")
	case models.StatusOrderRejected:
		entry.WithField("error", env.errMessage()).Warn("Order rejected.")
	default:
		entry.Info("Order response.")
	}

	c.recorder.OnResponse(reqID, receivedAt, status, env.Result)
}
