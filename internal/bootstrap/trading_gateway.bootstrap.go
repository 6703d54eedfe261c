package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ghalbir/trading-client/internal/client"
	"github.com/ghalbir/trading-client/internal/config"
	"github.com/ghalbir/trading-client/internal/constant"
	"github.com/ghalbir/trading-client/internal/entity"
	tradingHandler "github.com/ghalbir/trading-client/internal/handler/trading/http"
	"github.com/ghalbir/trading-client/internal/infrastructure"
	"github.com/ghalbir/trading-client/internal/service/exchange"
	"github.com/ghalbir/trading-client/internal/service/identity"
	"github.com/ghalbir/trading-client/internal/service/lifecycle"
	"github.com/ghalbir/trading-client/internal/service/marketdata"
	"github.com/ghalbir/trading-client/internal/service/notification"
	"github.com/ghalbir/trading-client/internal/util"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func StartTradingGateway(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nc, js, err := infrastructure.NewJetstream()
	util.ContinueOrFatal(err)

	tokenStore, err := identity.NewRedisTokenStore(config.Env.Redis["session"].CacheDSN)
	util.ContinueOrFatal(err)

	identityService := identity.NewService(
		identity.NewUserStore(),
		tokenStore,
		config.Env.Session.SigningKey,
		config.Env.Session.Issuer,
		config.Env.Session.TokenTTL,
	)

	priceCache := marketdata.NewCache()
	priceCache.Seed(config.Env.Markets)

	if config.Env.MarketFeed.Enabled {
		feed := marketdata.NewFeed(config.Env.MarketFeed, priceCache)
		go func() {
			if err := feed.Run(ctx); err != nil {
				logrus.Errorf("market feed stopped: %v", err)
			}
		}()
	}

	gateway := exchange.NewSimGateway(
		exchange.WithLatency(config.Env.Trading.SubmitLatency),
	)

	lifecycleManager := lifecycle.NewManager(gateway, js)
	filler := exchange.NewFiller(lifecycleManager, priceCache, config.Env.Trading.AutoFillDelay)

	notifications := notification.NewQueue(
		notification.WithDisplayWindow(config.Env.Notification.DisplayWindow, config.Env.Notification.FadeDuration),
		notification.WithMaxActive(config.Env.Notification.MaxActive),
	)

	pair := config.Env.Trading.DefaultPair
	if pair == "" {
		pair = constant.DefaultPair
	}

	app := client.NewApp(client.Config{
		Pair:                   pair,
		FallbackReferencePrice: config.Env.Trading.FallbackReferencePrice,
		Identity:               identityService,
		Prices:                 priceCache,
		Lifecycle:              lifecycleManager,
		Notifications:          notifications,
		Filler:                 filler,
		Balances: map[string]decimal.Decimal{
			"GBR":  decimal.NewFromInt(10),
			"USDT": decimal.NewFromInt(1000),
		},
	})

	publishers := make([]entity.Publisher, 0)
	publishers = append(publishers, lifecycleManager)
	for _, v := range publishers {
		err = v.JetstreamEventInit(ctx)
		util.ContinueOrFatal(err)
	}

	subscribers := make([]entity.Subscriber, 0)
	subscribers = append(subscribers, notification.NewRelay(js, notifications, config.Env.NatsJetstream.TimeoutHandler["order_event"]))
	for _, v := range subscribers {
		err = v.JetstreamEventSubscribe(ctx)
		util.ContinueOrFatal(err)
	}

	router := client.NewRouter(app, priceCache)

	httpHandler := tradingHandler.NewTradingHTTPHandler(app, router, identityService)
	httpMux := http.NewServeMux()
	httpHandler.Register(httpMux)
	infrastructure.RegisterHealthEndpoints(httpMux)

	httpPort := fmt.Sprintf(":%s", config.Env.Port["trading_gateway_http"])
	httpServer := infrastructure.NewHTTPServerWithConfig(infrastructure.HTTPServerConfig{
		Addr:            httpPort,
		ShutdownTimeout: config.Env.GracefulShutdownTimeout,
	}, httpMux)

	go func() {
		err := httpServer.Start()
		if err != nil {
			logrus.Error(err)
		}
	}()
	logrus.Info(fmt.Sprintf("http server started on %s", httpPort))

	wait := gracefulShutdown(ctx, config.Env.GracefulShutdownTimeout, map[string]operation{
		"market feed": func(ctx context.Context) error {
			cancel()
			return nil
		},
		"http": func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
		"redis": func(ctx context.Context) error {
			return tokenStore.Close()
		},
		"nats connection": func(ctx context.Context) error {
			return infrastructure.CloseJetstream(nc)
		},
	})

	<-wait
}
