package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/projectlibrary/internal/auth"
	"github.com/MrJamesThe3rd/projectlibrary/internal/cache"
	"github.com/MrJamesThe3rd/projectlibrary/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/projectlibrary/internal/catalog/store"
	"github.com/MrJamesThe3rd/projectlibrary/internal/config"
	"github.com/MrJamesThe3rd/projectlibrary/internal/customrequest"
	requestStore "github.com/MrJamesThe3rd/projectlibrary/internal/customrequest/store"
	"github.com/MrJamesThe3rd/projectlibrary/internal/database"
	"github.com/MrJamesThe3rd/projectlibrary/internal/download"
	downloadStore "github.com/MrJamesThe3rd/projectlibrary/internal/download/store"
	"github.com/MrJamesThe3rd/projectlibrary/internal/gateway"
	apiHttp "github.com/MrJamesThe3rd/projectlibrary/internal/http"
	accountHandler "github.com/MrJamesThe3rd/projectlibrary/internal/http/account"
	catalogHandler "github.com/MrJamesThe3rd/projectlibrary/internal/http/catalog"
	requestHandler "github.com/MrJamesThe3rd/projectlibrary/internal/http/customrequest"
	downloadHandler "github.com/MrJamesThe3rd/projectlibrary/internal/http/download"
	orderHandler "github.com/MrJamesThe3rd/projectlibrary/internal/http/order"
	paymentHandler "github.com/MrJamesThe3rd/projectlibrary/internal/http/payment"
	"github.com/MrJamesThe3rd/projectlibrary/internal/identity"
	identityStore "github.com/MrJamesThe3rd/projectlibrary/internal/identity/store"
	"github.com/MrJamesThe3rd/projectlibrary/internal/kafka"
	"github.com/MrJamesThe3rd/projectlibrary/internal/logger"
	"github.com/MrJamesThe3rd/projectlibrary/internal/notify"
	"github.com/MrJamesThe3rd/projectlibrary/internal/order"
	orderStore "github.com/MrJamesThe3rd/projectlibrary/internal/order/store"
	"github.com/MrJamesThe3rd/projectlibrary/internal/storage"
	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

// notifier is what the order and custom request services need from the
// notification sink.
type notifier interface {
	order.Notifier
	customrequest.Notifier
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := cfg.ValidateAPI(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger.Init(cfg.App.Env)

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	files, err := storage.NewLocal(cfg.Storage.Path)
	if err != nil {
		return err
	}

	var sink notifier = notify.NewMailer(newSender(cfg), cfg.App.Name, cfg.AdminAddress())

	// The producer runs on its own context and is closed once the server has drained.
	closeProducer := func() {}

	if len(cfg.Kafka.Brokers) > 0 {
		producerCtx, cancelProducer := context.WithCancel(context.Background())

		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, 256)
		producer.Start(producerCtx)

		closeProducer = func() {
			cancelProducer()
			producer.WaitClosed()
		}
		defer closeProducer()

		sink = notify.NewPublisher(producer, "api")
		slog.Info("notifications routed through kafka", "topic", cfg.Kafka.Topic)
	}

	gw := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret, cfg.Gateway.Timeout,
		gateway.WithRetry(cfg.Gateway.MaxAttempts, 500*time.Millisecond))

	validate := validation.New()

	var (
		orders = orderStore.New(db)

		catalogService  = catalog.NewService(catalogStore.New(db))
		identityService = identity.NewService(identityStore.New(db), validate)
		orderService    = order.NewService(orders, catalogService, gw, validate, cfg.Gateway.Currency).
				WithNotifier(sink, identityService)
		downloadService = download.NewService(downloadStore.New(db), orders, files)
		requestService  = customrequest.NewService(requestStore.New(db), validate, sink)
	)

	if cfg.Redis.Addr != "" {
		rdb, err := cache.New(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer rdb.Close()

		orderService.WithReplayGuard(cache.NewReplayGuard(rdb))
	}

	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	var (
		catalogH  = catalogHandler.NewHandler(catalogService, orderService)
		accountH  = accountHandler.NewHandler(identityService, tokens)
		orderH    = orderHandler.NewHandler(orderService)
		paymentH  = paymentHandler.NewHandler(orderService)
		downloadH = downloadHandler.NewHandler(downloadService)
		requestH  = requestHandler.NewHandler(requestService)
	)

	router := apiHttp.New(apiHttp.Options{
		Tokens:         tokens,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
		Health:         db.PingContext,
	}, catalogH, accountH, orderH, paymentH, downloadH, requestH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", srv.Addr, err)
	}

	slog.Info("starting server", "port", srv.Addr)

	return serve(ctx, srv, ln, 15*time.Second, closeProducer)
}

func newSender(cfg *config.Config) notify.Sender {
	if cfg.SMTP.Host == "" {
		slog.Warn("SMTP_HOST not set, emails are logged instead of sent")
		return notify.LogSender{}
	}

	return notify.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
}
