package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"latbot/internal/config"
	"latbot/internal/engine"
	"latbot/internal/exchange/gate/ws"
	"latbot/internal/logger"
	"latbot/internal/metrics"
)

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Runtime.Log.Level,
		Format:     cfg.Runtime.Log.Format,
		Output:     cfg.Runtime.Log.File,
		MaxSize:    cfg.Runtime.Log.MaxSize,
		MaxBackups: cfg.Runtime.Log.MaxBackups,
		MaxAge:     cfg.Runtime.Log.MaxAge,
		Compress:   cfg.Runtime.Log.Compress,
	})

	log.WithSymbol(cfg.Bot.Symbol).Info("Latency client started.")

	signer, err := ws.NewSigner(cfg.Exchange.Secret)
	if err != nil {
		log.WithError(err).Fatal("Cannot build request signer.")
	}

	recorder := engine.NewRecorder(log, nil)

	market := ws.NewMarketClient(cfg.Exchange.WSUrl, cfg.Bot.Symbol, cfg.Bot.ReconnectBackoff, log)
	trading := ws.NewTradingClient(cfg.Exchange.WSUrl, cfg.Exchange.ApiKey, signer,
		cfg.Bot.ReconnectBackoff, cfg.Bot.KeepaliveInterval, recorder, log)

	eng := engine.New(cfg, trading, market.Events(), trading.Events(), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go market.Run(ctx)
	go trading.Run(ctx)
	go eng.Run(ctx)

	if cfg.Runtime.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.Runtime.MetricsAddr, mux); err != nil {
				log.WithError(err).Warn("Metrics listener stopped.")
			}
		}()
	}

	<-sigCh

	cancel()

	log.Info("Latency client stopped.")
}
