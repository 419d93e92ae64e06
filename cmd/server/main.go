package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"tokenhost/internal/cron"
	"tokenhost/internal/currency"
	currencyservice "tokenhost/internal/currency/service"
	"tokenhost/internal/events"
	"tokenhost/internal/events/sink/kafka"
	"tokenhost/internal/events/sink/redisstream"
	"tokenhost/internal/events/sink/webhook"
	eventsservice "tokenhost/internal/events/service"
	jwttoken "tokenhost/internal/jwt_token"
	"tokenhost/internal/membership"
	membershipservice "tokenhost/internal/membership/service"
	"tokenhost/internal/platform/config"
	"tokenhost/internal/platform/httpserver"
	"tokenhost/internal/platform/logger"
	"tokenhost/internal/platform/metrics"
	"tokenhost/internal/rbac"
	"tokenhost/internal/recurrence"
	"tokenhost/internal/state"
	httptransport "tokenhost/internal/transport/http"
	"tokenhost/pkg/domain"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	mx := metrics.New()

	initializer, err := domain.ParseAccount(cfg.Initializer)
	if err != nil {
		log.Error("invalid initializer account", "error", err)
		os.Exit(1)
	}
	self, err := domain.ParseAccount(cfg.SelfID)
	if err != nil {
		log.Error("invalid self identity", "error", err)
		os.Exit(1)
	}

	appState := state.New(
		currency.NewToken(currency.Info{
			Name:     cfg.TokenName,
			Symbol:   cfg.TokenSymbol,
			Decimals: cfg.TokenDecimals,
		}),
		membership.NewRegistry(),
		rbac.Single(initializer, self),
	)

	busOpts := []events.BusOption{events.WithLogger(log), events.WithMetrics(mx)}
	var closers []func()
	if cfg.RedisAddr != "" {
		sink := redisstream.New(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), cfg.RedisStream)
		busOpts = append(busOpts, events.WithSinks(sink))
		closers = append(closers, func() { _ = sink.Close() })
		log.Info("redis stream sink enabled", "addr", cfg.RedisAddr, "stream", cfg.RedisStream)
	}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := kafka.Connect(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka sink unavailable", "error", err)
			os.Exit(1)
		}
		busOpts = append(busOpts, events.WithSinks(sink))
		closers = append(closers, sink.Close)
		log.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	bus := events.NewBus(webhook.New(cfg.EventDeliveryTimeout), busOpts...)

	scheduler := cron.NewMemory()
	manager := recurrence.New(scheduler, recurrence.WithLogger(log), recurrence.WithMetrics(mx))
	scheduler.Bind(manager.HandleFire)

	currencySvc := currencyservice.New(appState, bus,
		currencyservice.WithLogger(log),
		currencyservice.WithMetrics(mx),
		currencyservice.WithRecurrence(manager),
	)
	manager.Bind(currencySvc)

	membershipSvc := membershipservice.New(appState, bus,
		membershipservice.WithLogger(log),
		membershipservice.WithMetrics(mx),
	)
	eventsSvc := eventsservice.New(appState, bus, eventsservice.WithLogger(log))

	router := httptransport.NewRouter(httptransport.Deps{
		Currency:   currencySvc,
		Membership: membershipSvc,
		Events:     eventsSvc,
		Validator:  jwttoken.NewService(cfg.JWTSigningKey, cfg.SelfID),
		Logger:     log,
	})
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting tokenhost", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
	}

	scheduler.Stop()
	for _, closeFn := range closers {
		closeFn()
	}
	log.Info("tokenhost stopped")
}
