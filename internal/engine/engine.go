package engine

import (
	"context"
	"strings"
	"time"

	"latbot/internal/config"
	"latbot/internal/exchange"
	"latbot/internal/logger"
	"latbot/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// OrderSubmitter is the slice of the trading session the engine needs.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, ord models.OrderRequest) (string, error)
}

// Engine consumes events from both sessions and drives the trigger: when a
// positive ask and a successful login have both been seen and the latch is
// still open, it waits the configured delay and submits exactly one order.
type Engine struct {
	cfg     *config.Config
	trader  OrderSubmitter
	trigger *TriggerState
	log     *logger.Logger

	marketEvents  <-chan exchange.Event
	tradingEvents <-chan exchange.Event
}

func New(cfg *config.Config, trader OrderSubmitter, marketEvents, tradingEvents <-chan exchange.Event, log *logger.Logger) *Engine {
	return &Engine{
		cfg:           cfg,
		trader:        trader,
		trigger:       NewTriggerState(),
		log:           log,
		marketEvents:  marketEvents,
		tradingEvents: tradingEvents,
	}
}

func (e *Engine) logEntry() *logrus.Entry {
	return e.log.WithComponent("engine").WithField("symbol", e.cfg.Bot.Symbol)
}

// Run processes session events until ctx is cancelled or both event
// channels close.
func (e *Engine) Run(ctx context.Context) {
	market := e.marketEvents
	trading := e.tradingEvents

	for market != nil || trading != nil {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-market:
			if !ok {
				e.logEntry().Warn("Market event channel closed.")
				market = nil
				continue
			}
			e.handleEvent(ctx, ev)
		case ev, ok := <-trading:
			if !ok {
				e.logEntry().Warn("Trading event channel closed.")
				trading = nil
				continue
			}
			e.handleEvent(ctx, ev)
		}
	}
}

func (e *Engine) handleEvent(ctx context.Context, ev exchange.Event) {
	switch ev.Type {
	case exchange.EventTypePrice:
		if ev.Price != nil {
			e.trigger.ObservePrice(ev.Price.Ask)
			e.evaluate(ctx)
		}
	case exchange.EventTypeAuth:
		if ev.Auth != nil {
			e.trigger.SetAuthenticated(ev.Auth.OK)
			e.evaluate(ctx)
		}
	case exchange.EventTypeReconnect:
		e.logEntry().Info("Trading session reconnecting.")
	}
}

// evaluate runs after every price update and every auth change. The latch
// inside Arm makes it idempotent under any interleaving.
func (e *Engine) evaluate(ctx context.Context) {
	ask, armed := e.trigger.Arm()
	if !armed {
		return
	}
	go e.fire(ctx, ask)
}

// fire waits the fixed pre-order delay, then submits at the ask captured
// when the trigger armed. The price is deliberately frozen for the delay
// window rather than re-read at fire time.
func (e *Engine) fire(ctx context.Context, ask decimal.Decimal) {
	e.logEntry().WithFields(logrus.Fields{
		"ask":   ask.String(),
		"delay": e.cfg.Bot.PreOrderDelay.String(),
	}).Info("Trigger armed, waiting before placing order.")

	select {
	case <-ctx.Done():
		return
	case <-time.After(e.cfg.Bot.PreOrderDelay):
	}

	ord := models.OrderRequest{
		Symbol:      e.cfg.Bot.Symbol,
		Side:        models.OrderSide(strings.ToLower(e.cfg.Bot.Side)),
		Type:        models.OrderType(strings.ToLower(e.cfg.Bot.OrderType)),
		Qty:         decimal.NewFromFloat(e.cfg.Bot.OrderQty),
		Price:       ask,
		TimeInForce: models.TimeInForce(strings.ToLower(e.cfg.Bot.TimeInForce)),
	}

	reqID, err := e.trader.SubmitOrder(ctx, ord)
	if err != nil {
		e.logEntry().WithError(err).Error("Order submission failed.")
		return
	}

	e.logEntry().WithField("request_id", reqID).Info("Order submitted, measuring latency.")
}
