package config

import (
	"errors"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingCredentials = errors.New("missing api credentials")

type Config struct {
	Exchange ExchangeConfig
	Bot      BotConfig
	Runtime  RuntimeConfig
}

type ExchangeConfig struct {
	WSUrl  string
	ApiKey string
	Secret string
}

type BotConfig struct {
	Symbol      string
	Side        string
	OrderQty    float64
	OrderType   string
	TimeInForce string

	PreOrderDelay     time.Duration
	KeepaliveInterval time.Duration
	ReconnectBackoff  time.Duration
}

type RuntimeConfig struct {
	MetricsAddr string
	Log         LogConfig
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

func Load() (*Config, error) {
	cfg := &Config{}
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	viper.ReadInConfig()

	viper.SetDefault("bot.side", "buy")
	viper.SetDefault("bot.order_type", "limit")
	viper.SetDefault("bot.time_in_force", "fok")
	viper.SetDefault("bot.pre_order_delay", "10s")
	viper.SetDefault("bot.keepalive_interval", "30s")
	viper.SetDefault("bot.reconnect_backoff", "3s")
	viper.SetDefault("exchange.ws_url", "wss://api.gateio.ws/ws/v4/")

	cfg.Exchange = ExchangeConfig{
		WSUrl:  viper.GetString("exchange.ws_url"),
		ApiKey: envSub("exchange.api_key"),
		Secret: envSub("exchange.secret"),
	}

	cfg.Bot = BotConfig{
		Symbol:            viper.GetString("bot.symbol"),
		Side:              viper.GetString("bot.side"),
		OrderQty:          viper.GetFloat64("bot.order_qty"),
		OrderType:         viper.GetString("bot.order_type"),
		TimeInForce:       viper.GetString("bot.time_in_force"),
		PreOrderDelay:     viper.GetDuration("bot.pre_order_delay"),
		KeepaliveInterval: viper.GetDuration("bot.keepalive_interval"),
		ReconnectBackoff:  viper.GetDuration("bot.reconnect_backoff"),
	}

	cfg.Runtime = RuntimeConfig{
		MetricsAddr: viper.GetString("runtime.metrics_addr"),
		Log: LogConfig{
			Level:      viper.GetString("runtime.log.level"),
			Format:     viper.GetString("runtime.log.format"),
			File:       viper.GetString("runtime.log.file"),
			MaxSize:    viper.GetInt("runtime.log.max_size"),
			MaxBackups: viper.GetInt("runtime.log.max_backups"),
			MaxAge:     viper.GetInt("runtime.log.max_age"),
			Compress:   viper.GetBool("runtime.log.compress"),
		},
	}

	if cfg.Exchange.ApiKey == "" || cfg.Exchange.Secret == "" {
		return nil, ErrMissingCredentials
	}

	return cfg, nil
}

func envSub(key string) string {
	val := viper.GetString(key)
	if val == "" {
		return ""
	}

	re := regexp.MustCompile(`\$\{(\w+)\}`)
	return re.ReplaceAllStringFunc(val, func(match string) string {
		envKey := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(envKey)
	})
}
