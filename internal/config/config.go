package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

var (
	ServiceName    = "trading-client"
	ServiceVersion = ""
)

var (
	Env *EnvConfig
)

type EnvConfig struct {
	Env                     string                 `mapstructure:"env"`
	Log                     LogConfig              `mapstructure:"log"`
	GracefulShutdownTimeout time.Duration          `mapstructure:"graceful_shutdown_timeout"`
	Port                    map[string]string      `mapstructure:"port"`
	Session                 SessionConfig          `mapstructure:"session"`
	Trading                 TradingConfig          `mapstructure:"trading"`
	Notification            NotificationConfig     `mapstructure:"notification"`
	Markets                 []MarketConfig         `mapstructure:"markets"`
	MarketFeed              MarketFeedConfig       `mapstructure:"market_feed"`
	Redis                   map[string]RedisConfig `mapstructure:"redis"`
	NatsJetstream           NatsJetstreamConfig    `mapstructure:"nats_jetstream"`
}

type LogConfig struct {
	ShowCaller bool   `mapstructure:"show_caller"`
	LogLevel   string `mapstructure:"log_level"`
}

type SessionConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	Issuer     string        `mapstructure:"issuer"`
}

type TradingConfig struct {
	DefaultPair string `mapstructure:"default_pair"`
	// FallbackReferencePrice is used by percentage sizing when no price has
	// been entered. Zero disables the fallback and rejects the action.
	FallbackReferencePrice decimal.Decimal `mapstructure:"fallback_reference_price"`
	SubmitLatency          time.Duration   `mapstructure:"submit_latency"`
	AutoFillDelay          time.Duration   `mapstructure:"auto_fill_delay"`
}

type NotificationConfig struct {
	DisplayWindow time.Duration `mapstructure:"display_window"`
	FadeDuration  time.Duration `mapstructure:"fade_duration"`
	MaxActive     int           `mapstructure:"max_active"`
}

type MarketConfig struct {
	Pair      string          `mapstructure:"pair"`
	LastPrice decimal.Decimal `mapstructure:"last_price"`
	Change24h decimal.Decimal `mapstructure:"change_24h"`
	High24h   decimal.Decimal `mapstructure:"high_24h"`
	Low24h    decimal.Decimal `mapstructure:"low_24h"`
	Volume24h decimal.Decimal `mapstructure:"volume_24h"`
}

type MarketFeedConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	URL     string            `mapstructure:"url"`
	Pairs   map[string]string `mapstructure:"pairs"` // pair -> feed symbol
}

type RedisConfig struct {
	CacheDSN string `mapstructure:"cache_dsn"`
}

type NatsJetstreamConfig struct {
	URL             string                   `mapstructure:"url"`
	MaxRetries      int                      `mapstructure:"max_retries"`
	ReconnectFactor float64                  `mapstructure:"reconnect_factor"`
	MinJitter       time.Duration            `mapstructure:"min_jitter"`
	MaxJitter       time.Duration            `mapstructure:"max_jitter"`
	TimeoutHandler  map[string]time.Duration `mapstructure:"timeout_handler"`
}

func LoadConfig(configPath string) error {
	viper.Reset()

	configPath = strings.TrimSpace(configPath)
	if configPath == "" {
		viper.SetConfigName("config")
		viper.SetConfigType("yml")
		viper.AddConfigPath(".")
	} else {
		ext := strings.ToLower(filepath.Ext(configPath))
		if ext == ".yml" || ext == ".yaml" {
			viper.SetConfigFile(configPath)
		} else {
			viper.SetConfigName(filepath.Base(configPath))
			viper.SetConfigType("yml")
			configDir := filepath.Dir(configPath)
			if configDir == "." || configDir == "" {
				viper.AddConfigPath(".")
			} else {
				viper.AddConfigPath(configDir)
			}
		}
	}

	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	err = viper.Unmarshal(&Env)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config file: %w", err)
	}

	return nil
}
